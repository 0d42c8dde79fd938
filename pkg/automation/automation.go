// Package automation defines the capability interface over a desktop
// automation server. The executor drives the UI only through these types.
package automation

import "context"

// Client launches applications and resolves selectors.
// Selector syntax (e.g. "name:Seven", "role:window") is interpreted entirely
// by the implementation.
type Client interface {
	// LaunchApplication opens the application identified by an executable
	// name or path.
	LaunchApplication(ctx context.Context, identifier string) error

	// Locate returns a handle for selector. Implementations may resolve
	// lazily; the handle is only known to be reachable once a call on it succeeds.
	Locate(ctx context.Context, selector string) (Handle, error)
}

// Handle is a transient reference to a located UI element.
type Handle interface {
	// Bounds fetches the element's screen rectangle. Used as the cheap
	// existence probe.
	Bounds(ctx context.Context) (Rect, error)

	// Click performs a left click on the element.
	Click(ctx context.Context) error

	// TypeUnit sends a single unit of text input (one character).
	TypeUnit(ctx context.Context, unit string) error

	// Text reads the element's current text.
	Text(ctx context.Context) (string, error)
}

// Rect represents element position and size
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

