// Package mock provides a scripted automation client for testing without a desktop.
package mock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devicelab-dev/desktop-runner/pkg/automation"
)

// ErrNotFound is returned by Bounds for selectors that are not (yet) present.
var ErrNotFound = errors.New("mock: element not found")

// Config configures mock client behavior.
type Config struct {
	// LaunchError makes every LaunchApplication call fail.
	LaunchError error
	// CallDelay adds artificial latency to every call.
	CallDelay time.Duration
}

// Element scripts the behavior of one selector.
type Element struct {
	Text   string
	Bounds automation.Rect

	// MissingProbes makes the first N Bounds calls fail with ErrNotFound.
	MissingProbes int

	// ClickErrors are returned by successive clicks, one per call, before
	// ClickErr applies.
	ClickErrors []error
	ClickErr    error
	TypeErr     error
	TextErr     error
}

// Call records one adapter invocation.
type Call struct {
	Method   string
	Selector string
	Arg      string
}

// Client is a mock implementation of automation.Client.
type Client struct {
	Config Config

	elements map[string]*Element
	calls    []Call
	probes   map[string]int
	typed    map[string]string
}

// New creates a new mock client.
func New(cfg Config) *Client {
	return &Client{
		Config:   cfg,
		elements: make(map[string]*Element),
		probes:   make(map[string]int),
		typed:    make(map[string]string),
	}
}

// AddElement registers a scripted element and returns the client for chaining.
func (c *Client) AddElement(selector string, el *Element) *Client {
	if el == nil {
		el = &Element{}
	}
	c.elements[selector] = el
	return c
}

// LaunchApplication simulates launching an application.
func (c *Client) LaunchApplication(ctx context.Context, identifier string) error {
	c.record(Call{Method: "launch", Arg: identifier})
	if err := c.pause(ctx); err != nil {
		return err
	}
	return c.Config.LaunchError
}

// Locate always succeeds; reachability is decided by the handle's Bounds.
func (c *Client) Locate(ctx context.Context, selector string) (automation.Handle, error) {
	c.record(Call{Method: "locate", Selector: selector})
	if err := c.pause(ctx); err != nil {
		return nil, err
	}
	return &handle{client: c, selector: selector}, nil
}

// Calls returns every recorded call in order.
func (c *Client) Calls() []Call {
	out := make([]Call, len(c.calls))
	copy(out, c.calls)
	return out
}

// CallCount counts recorded calls with the given method.
func (c *Client) CallCount(method string) int {
	n := 0
	for _, call := range c.calls {
		if call.Method == method {
			n++
		}
	}
	return n
}

// Probes returns how many Bounds calls were made for selector.
func (c *Client) Probes(selector string) int {
	return c.probes[selector]
}

// Typed returns the text typed into selector so far.
func (c *Client) Typed(selector string) string {
	return c.typed[selector]
}

func (c *Client) record(call Call) {
	c.calls = append(c.calls, call)
}

func (c *Client) pause(ctx context.Context) error {
	if c.Config.CallDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(c.Config.CallDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type handle struct {
	client   *Client
	selector string
}

func (h *handle) element() (*Element, error) {
	el, ok := h.client.elements[h.selector]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, h.selector)
	}
	return el, nil
}

func (h *handle) Bounds(ctx context.Context) (automation.Rect, error) {
	h.client.probes[h.selector]++
	h.client.record(Call{Method: "bounds", Selector: h.selector})
	if err := h.client.pause(ctx); err != nil {
		return automation.Rect{}, err
	}
	el, err := h.element()
	if err != nil {
		return automation.Rect{}, err
	}
	if el.MissingProbes > 0 {
		el.MissingProbes--
		return automation.Rect{}, fmt.Errorf("%w: %s", ErrNotFound, h.selector)
	}
	return el.Bounds, nil
}

func (h *handle) Click(ctx context.Context) error {
	h.client.record(Call{Method: "click", Selector: h.selector})
	if err := h.client.pause(ctx); err != nil {
		return err
	}
	el, err := h.element()
	if err != nil {
		return err
	}
	if len(el.ClickErrors) > 0 {
		next := el.ClickErrors[0]
		el.ClickErrors = el.ClickErrors[1:]
		return next
	}
	return el.ClickErr
}

func (h *handle) TypeUnit(ctx context.Context, unit string) error {
	h.client.record(Call{Method: "type", Selector: h.selector, Arg: unit})
	if err := h.client.pause(ctx); err != nil {
		return err
	}
	el, err := h.element()
	if err != nil {
		return err
	}
	if el.TypeErr != nil {
		return el.TypeErr
	}
	h.client.typed[h.selector] += unit
	return nil
}

func (h *handle) Text(ctx context.Context) (string, error) {
	h.client.record(Call{Method: "text", Selector: h.selector})
	if err := h.client.pause(ctx); err != nil {
		return "", err
	}
	el, err := h.element()
	if err != nil {
		return "", err
	}
	if el.TextErr != nil {
		return "", el.TextErr
	}
	return el.Text, nil
}
