// Package apps maps friendly application names to the executable identifiers
// understood by the automation server.
package apps

import (
	"fmt"
	"os"
	"strings"

	"github.com/devicelab-dev/desktop-runner/pkg/core"
	"github.com/devicelab-dev/desktop-runner/pkg/logger"
)

// WhatsAppFallback is launched when no local install is found.
const WhatsAppFallback = "WhatsApp.exe"

var aliases = map[string]string{
	"calculator": "calc",
	"notepad":    "notepad",
	"paint":      "mspaint",
	"wordpad":    "wordpad",
	"browser":    "msedge",
}

// Resolver resolves application names. The zero value uses the real
// filesystem and environment.
type Resolver struct {
	// Exists reports whether a file exists. Defaults to os.Stat.
	Exists func(path string) bool
	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(key string) string
}

// Alias maps a friendly name to its executable using only the static alias
// table. Unknown names, WhatsApp included, pass through unchanged.
func Alias(name string) string {
	if exe, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return exe
	}
	return name
}

// IsExplicitPath returns true if name looks like a path to an executable
// rather than an alias.
func IsExplicitPath(name string) bool {
	return strings.Contains(strings.ToLower(name), ".exe") ||
		strings.ContainsAny(name, `\/`)
}

// Resolve returns the identifier to launch. Explicit paths must exist.
func (r Resolver) Resolve(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", core.ErrLaunch.WithMessage("no application specified")
	}
	if IsExplicitPath(name) {
		if !r.exists(name) {
			return "", core.ErrLaunch.
				WithMessage(fmt.Sprintf("Provided executable path not found: %s", name)).
				WithDetails(map[string]interface{}{"path": name})
		}
		return name, nil
	}
	return r.ExecutableName(name), nil
}

// ExecutableName maps an alias to its executable. Unknown names pass through.
func (r Resolver) ExecutableName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "whatsapp" {
		return r.whatsApp()
	}
	return Alias(name)
}

func (r Resolver) whatsApp() string {
	user := r.getenv("USERNAME")
	if user == "" {
		user = "default"
	}
	candidates := []string{
		`C:\Users\` + user + `\AppData\Local\WhatsApp\WhatsApp.exe`,
		`C:\Users\` + user + `\AppData\Local\Programs\WhatsApp\WhatsApp.exe`,
	}
	for _, p := range candidates {
		if r.exists(p) {
			logger.Info("Found WhatsApp executable at: %s", p)
			return p
		}
	}
	logger.Warn("WhatsApp executable not found in common locations, falling back to %s", WhatsAppFallback)
	return WhatsAppFallback
}

func (r Resolver) exists(path string) bool {
	if r.Exists != nil {
		return r.Exists(path)
	}
	_, err := os.Stat(path)
	return err == nil
}

func (r Resolver) getenv(key string) string {
	if r.Getenv != nil {
		return r.Getenv(key)
	}
	return os.Getenv(key)
}
