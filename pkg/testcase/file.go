package testcase

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseError represents a case file parsing error with location info.
type ParseError struct {
	Path    string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// LoadFile reads test cases from a JSON or YAML file.
func LoadFile(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is user-provided case file
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes test cases. YAML is a superset of JSON, but JSON input is
// decoded with encoding/json so field errors carry JSON offsets.
func Parse(data []byte, sourcePath string) ([]TestCase, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, &ParseError{Path: sourcePath, Message: "empty test case file"}
	}

	var cases []TestCase
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		if strings.HasPrefix(trimmed, "{") {
			var single TestCase
			if err := json.Unmarshal(data, &single); err != nil {
				return nil, &ParseError{Path: sourcePath, Message: fmt.Sprintf("invalid json: %v", err)}
			}
			return []TestCase{single}, nil
		}
		if err := json.Unmarshal(data, &cases); err != nil {
			return nil, &ParseError{Path: sourcePath, Message: fmt.Sprintf("invalid json: %v", err)}
		}
		return cases, nil
	}

	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, &ParseError{Path: sourcePath, Message: fmt.Sprintf("invalid yaml: %v", err)}
	}
	return cases, nil
}

// SaveFile writes test cases as indented JSON, creating parent directories.
func SaveFile(path string, cases []TestCase) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if cases == nil {
		cases = []TestCase{}
	}
	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal test cases: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// FileName returns the conventional file name for an application's cases.
func FileName(appName string) string {
	return fmt.Sprintf("%s-test-cases.json", appName)
}
