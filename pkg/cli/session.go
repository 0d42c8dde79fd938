package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/desktop-runner/pkg/config"
	"github.com/devicelab-dev/desktop-runner/pkg/logger"
	"github.com/devicelab-dev/desktop-runner/pkg/testcase"
)

// session holds the resolved configuration for one command invocation.
type session struct {
	cfg       config.Config
	outputDir string // empty for commands that write no reports
	out       io.Writer
}

// openSession loads .env and config, applies flags and starts logging.
// Reports go to a timestamped directory when withOutput is set.
func openSession(c *cli.Context, withOutput bool) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, out: c.App.Writer}

	logPath := c.String("log-file")
	if withOutput {
		s.outputDir = resolveOutputDir(cfg.Output, c.Bool("flatten"), time.Now())
		if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		if logPath == "" {
			logPath = filepath.Join(s.outputDir, "desktop-runner.log")
		}
	}

	if c.Bool("verbose") {
		_ = logger.SetLevel("debug")
	}
	if logPath != "" {
		if err := logger.Init(logPath); err != nil {
			fmt.Fprintf(s.out, "Warning: Failed to initialize logger: %v\n", err)
		}
	}

	logger.Info("=== desktop-runner %s ===", Version)
	logger.Info("Server: %s", cfg.ServerURL)
	if s.outputDir != "" {
		logger.Info("Output directory: %s", s.outputDir)
	}
	return s, nil
}

func (s *session) close() {
	logger.Close()
}

// application returns the positional app argument, falling back to config.
func (s *session) application(c *cli.Context) (string, error) {
	if app := strings.TrimSpace(c.Args().First()); app != "" {
		return app, nil
	}
	if s.cfg.Application != "" {
		return s.cfg.Application, nil
	}
	return "", fmt.Errorf("an application name or path is required")
}

// loadConfig merges, lowest precedence first: defaults, config file,
// flags (and their environment variables).
func loadConfig(c *cli.Context) (config.Config, error) {
	if err := config.LoadEnv(c.String("env-file")); err != nil {
		return config.Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	var (
		file *config.Config
		err  error
	)
	if path := c.String("config"); path != "" {
		file, err = config.Load(path)
	} else {
		file, err = config.Discover()
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	cfg := *file
	applyFlags(c, &cfg)
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg.WithDefaults(), nil
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("server-url") {
		cfg.ServerURL = c.String("server-url")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("retries") {
		n := c.Int("retries")
		cfg.Timing.ActionRetries = &n
	}
	if c.IsSet("action-timeout") {
		cfg.ActionTimeout = c.Duration("action-timeout")
	}
	if c.IsSet("case-timeout") {
		cfg.CaseTimeout = c.Duration("case-timeout")
	}
	if c.IsSet("count") {
		cfg.Count = c.Int("count")
	}
	if c.IsSet("description") {
		cfg.Description = c.String("description")
	}
	if c.IsSet("provider") {
		cfg.Generator.Provider = c.String("provider")
	}
	if c.IsSet("model") {
		cfg.Generator.Model = c.String("model")
	}
	if c.IsSet("cases-dir") {
		cfg.CasesDir = c.String("cases-dir")
	}
}

// resolveOutputDir determines the report directory.
// - default: <output>/<timestamp>/
// - --flatten: <output>/
func resolveOutputDir(output string, flatten bool, now time.Time) string {
	if output == "" {
		output = config.DefaultOutput
	}
	if flatten {
		return filepath.Clean(output)
	}
	return filepath.Join(output, now.Format("2006-01-02_15-04-05"))
}

// caseFileName derives the saved cases file name from an app name or path.
func caseFileName(app string) string {
	name := app
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if strings.EqualFold(filepath.Ext(name), ".exe") {
		name = name[:len(name)-len(".exe")]
	}
	name = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
	if name == "" {
		name = "app"
	}
	return testcase.FileName(name)
}
