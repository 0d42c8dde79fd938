package generator

import (
	"fmt"
	"strings"
)

var builtinDescriptions = map[string]string{
	"calculator": "Windows Calculator app with number buttons 0-9, operations buttons (+, -, *, /), equals button, and result display.",
	"notepad":    "Windows Notepad text editor with a main text area, file menu, edit menu, and standard text editing functionality.",
	"whatsapp":   "WhatsApp desktop app with chat list, message area, and contact information panel.",
}

// Description returns the description used to prompt for appName. Overrides
// are keyed by lowercase application name and win over the built-ins.
func Description(appName string, overrides map[string]string) string {
	key := strings.ToLower(strings.TrimSpace(appName))
	if d, ok := overrides[key]; ok && d != "" {
		return d
	}
	if d, ok := builtinDescriptions[key]; ok {
		return d
	}
	return fmt.Sprintf("%s desktop application", appName)
}

const promptTemplate = `
Generate %d test cases for automated UI testing of the following application:

Application Description:
%s

Each test case should follow this JSON structure in an array:
[
  {
    "id": "unique-test-id",
    "name": "Test Name",
    "description": "Detailed test description",
    "application": "%s",
    "steps": [
      {
        "action": "click|type|verify|wait",
        "selector": "name:ButtonName or role:button",
        "value": "text to type or verify (if applicable)",
        "description": "Description of this step"
      }
    ],
    "expectedResults": ["Expected result 1", "Expected result 2"]
  }
]

Use realistic UI selectors that might exist in this application.
Selectors use the form name:<accessible name> or role:<control role>.
Wait steps take a value in milliseconds.
For Windows, Calculator is launched with 'calc', Notepad with 'notepad', etc.
Return the test cases as a valid JSON array wrapped in code blocks.
`

// BuildPrompt renders the generation prompt.
func BuildPrompt(description, executable string, count int) string {
	return fmt.Sprintf(promptTemplate, count, description, executable)
}
