// Package generator turns a natural-language application description into
// executable test cases using a large language model.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"

	"github.com/devicelab-dev/desktop-runner/pkg/apps"
	"github.com/devicelab-dev/desktop-runner/pkg/logger"
	"github.com/devicelab-dev/desktop-runner/pkg/testcase"
)

// Generator produces test cases for an application. It may return fewer
// cases than requested; an empty list means there is nothing to run.
type Generator interface {
	Generate(ctx context.Context, description, appName string, count int) ([]testcase.TestCase, error)
}

// DefaultTemperature is used when no temperature option is given.
const DefaultTemperature = 0.7

// LLMGenerator generates test cases by prompting an llms.Model.
type LLMGenerator struct {
	model       llms.Model
	temperature float64
}

// Option configures an LLMGenerator.
type Option func(*LLMGenerator)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(g *LLMGenerator) { g.temperature = t }
}

// New creates a generator backed by model.
func New(model llms.Model, opts ...Option) (*LLMGenerator, error) {
	if model == nil {
		return nil, errors.New("generator: model is required")
	}
	g := &LLMGenerator{model: model, temperature: DefaultTemperature}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate asks the model for count test cases. Model and parse failures are
// logged and yield an empty list; only context cancellation is returned.
func (g *LLMGenerator) Generate(ctx context.Context, description, appName string, count int) ([]testcase.TestCase, error) {
	if count <= 0 {
		return []testcase.TestCase{}, nil
	}

	executable := apps.Alias(appName)
	prompt := BuildPrompt(description, executable, count)

	logger.Info("Generating %d test cases for %s", count, appName)
	text, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("generate test cases: %w", ctxErr)
		}
		logger.Error("Error generating test cases: %v", err)
		return []testcase.TestCase{}, nil
	}
	if strings.TrimSpace(text) == "" {
		logger.Error("Error generating test cases: empty response from model")
		return []testcase.TestCase{}, nil
	}

	cases, err := ParseResponse(text)
	if err != nil {
		logger.Error("Error parsing model response as JSON: %v", err)
		logger.Debug("Raw model response (first 500 chars): %s", head(text, 500))
		return []testcase.TestCase{}, nil
	}

	for i := range cases {
		if cases[i].ID == "" {
			cases[i].ID = uuid.NewString()
		}
		if cases[i].Application == "" {
			cases[i].Application = executable
		}
	}

	logger.Info("Parsed %d test cases", len(cases))
	return cases, nil
}

var (
	jsonFence  = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	plainFence = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// ExtractJSON returns the contents of the first ```json fence, else the
// first plain fence, else the whole text.
func ExtractJSON(text string) string {
	if m := jsonFence.FindStringSubmatch(text); m != nil && m[1] != "" {
		return m[1]
	}
	if m := plainFence.FindStringSubmatch(text); m != nil && m[1] != "" {
		return m[1]
	}
	return strings.TrimSpace(text)
}

// ParseResponse decodes a model response into test cases. The payload must
// be a JSON array.
func ParseResponse(text string) ([]testcase.TestCase, error) {
	payload := ExtractJSON(text)
	if !strings.HasPrefix(payload, "[") {
		return nil, errors.New("response is not a JSON array of test cases")
	}
	var cases []testcase.TestCase
	if err := json.Unmarshal([]byte(payload), &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
