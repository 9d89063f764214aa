package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atomicstack/mdns-dashboard/internal/app"
	"github.com/atomicstack/mdns-dashboard/internal/mdns"
	uistate "github.com/atomicstack/mdns-dashboard/internal/ui/state"
	"github.com/spf13/pflag"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envQuery     = "MDNS_DASHBOARD_QUERY"
	envInterface = "MDNS_DASHBOARD_INTERFACE"
	envTrace     = "MDNS_DASHBOARD_TRACE"
	envLogFile   = "MDNS_DASHBOARD_LOG_FILE"
	envMatch     = "MDNS_DASHBOARD_MATCH"
	envRefresh   = "MDNS_DASHBOARD_REFRESH"
)

// DefaultRefresh is the redraw interval when none is configured.
const DefaultRefresh = 250 * time.Millisecond

// Binding holds flag values registered on a flag set until they are parsed.
type Binding struct {
	fs        *pflag.FlagSet
	query     *string
	iface     *string
	trace     *bool
	logFile   *string
	match     *string
	refresh   *time.Duration
	refreshIn string
}

// Bind registers the application flags on fs. Environment values in environ
// become the flag defaults so explicit flags always win.
func Bind(fs *pflag.FlagSet, environ []string) *Binding {
	env := parseEnv(environ)
	b := &Binding{fs: fs}
	b.query = fs.StringP("query", "q", envOrDefault(env, envQuery, mdns.ServiceTypeEnumeration), "DNS-SD query to browse")
	b.iface = fs.StringP("interface", "i", envOrDefault(env, envInterface, ""), "network interface to browse on (default all)")
	b.trace = fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	b.logFile = fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")
	b.match = fs.String("match", envOrDefault(env, envMatch, string(uistate.MatchRegex)), "filter match mode: regex or fuzzy")
	b.refresh = fs.Duration("refresh", DefaultRefresh, "redraw interval")
	b.refreshIn = envOrDefault(env, envRefresh, "")
	return b
}

// Config resolves the bound flags after fs has parsed args.
func (b *Binding) Config(args []string) (Config, error) {
	refresh := *b.refresh
	if !b.fs.Changed("refresh") && strings.TrimSpace(b.refreshIn) != "" {
		parsed, err := time.ParseDuration(b.refreshIn)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", envRefresh, err)
		}
		refresh = parsed
	}
	mode, err := uistate.ParseMatchMode(*b.match)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		App: app.Config{
			Query:     strings.TrimSpace(*b.query),
			Interface: strings.TrimSpace(*b.iface),
			MatchMode: mode,
			Refresh:   refresh,
		},
		Logging: Logging{
			FilePath: *b.logFile,
			Trace:    *b.trace,
		},
		Flags: map[string]string{
			"query":     *b.query,
			"interface": *b.iface,
			"trace":     strconv.FormatBool(*b.trace),
			"logFile":   *b.logFile,
			"match":     *b.match,
			"refresh":   refresh.String(),
		},
		Args: append([]string(nil), args...),
	}
	return cfg, nil
}

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	fs := pflag.NewFlagSet("mdns-dashboard", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	b := Bind(fs, environ)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return b.Config(args)
}

// Validate rejects configuration the application cannot run with.
func Validate(cfg Config) error {
	if cfg.App.Query == "" {
		return fmt.Errorf("query must not be empty")
	}
	if cfg.App.Refresh <= 0 {
		return fmt.Errorf("refresh must be > 0 (got %s)", cfg.App.Refresh)
	}
	switch cfg.App.MatchMode {
	case uistate.MatchRegex, uistate.MatchFuzzy:
	default:
		return fmt.Errorf("unknown match mode %q", cfg.App.MatchMode)
	}
	return nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
