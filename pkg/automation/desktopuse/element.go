package desktopuse

import (
	"context"

	"github.com/devicelab-dev/desktop-runner/pkg/automation"
)

// Element is a selector bound to a client.
type Element struct {
	client   *Client
	selector string
}

// chain wraps the selector in the server's selector_chain form.
func (e *Element) chain() []string {
	return []string{e.selector}
}

func (e *Element) timeoutMs() int64 {
	return e.client.locateTimeout.Milliseconds()
}

// Bounds fetches the element's rectangle.
func (e *Element) Bounds(ctx context.Context) (automation.Rect, error) {
	var resp boundsResponse
	req := elementRequest{SelectorChain: e.chain(), TimeoutMs: e.timeoutMs()}
	if err := e.client.request(ctx, "/get_bounds", req, &resp); err != nil {
		return automation.Rect{}, err
	}
	return automation.Rect{X: resp.X, Y: resp.Y, Width: resp.Width, Height: resp.Height}, nil
}

// Click clicks the element.
func (e *Element) Click(ctx context.Context) error {
	req := elementRequest{SelectorChain: e.chain(), TimeoutMs: e.timeoutMs()}
	return e.client.request(ctx, "/click", req, nil)
}

// TypeUnit types one unit of text into the element.
func (e *Element) TypeUnit(ctx context.Context, unit string) error {
	req := typeTextRequest{SelectorChain: e.chain(), Text: unit, TimeoutMs: e.timeoutMs()}
	return e.client.request(ctx, "/type_text", req, nil)
}

// Text reads the element's text content.
func (e *Element) Text(ctx context.Context) (string, error) {
	var resp textResponse
	req := getTextRequest{SelectorChain: e.chain(), MaxDepth: 5, TimeoutMs: e.timeoutMs()}
	if err := e.client.request(ctx, "/get_text", req, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}
