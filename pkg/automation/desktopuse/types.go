package desktopuse

type openApplicationRequest struct {
	AppName string `json:"app_name"`
}

type elementRequest struct {
	SelectorChain []string `json:"selector_chain"`
	TimeoutMs     int64    `json:"timeout_ms,omitempty"`
}

type typeTextRequest struct {
	SelectorChain []string `json:"selector_chain"`
	Text          string   `json:"text"`
	TimeoutMs     int64    `json:"timeout_ms,omitempty"`
}

type getTextRequest struct {
	SelectorChain []string `json:"selector_chain"`
	MaxDepth      int      `json:"max_depth,omitempty"`
	TimeoutMs     int64    `json:"timeout_ms,omitempty"`
}

type boundsResponse struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type textResponse struct {
	Text string `json:"text"`
}
