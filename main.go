package main

import (
	"fmt"
	"os"

	"github.com/atomicstack/mdns-dashboard/internal/app"
	"github.com/atomicstack/mdns-dashboard/internal/config"
	"github.com/atomicstack/mdns-dashboard/internal/logging"
	"github.com/atomicstack/mdns-dashboard/internal/logging/events"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd(os.Args[1:], os.Environ(), app.Run).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command line for argv. run is called with the
// resolved application config once flags and environment are parsed.
func newRootCmd(argv, environ []string, run func(app.Config) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mdns-dashboard",
		Short:        "Browse mDNS services on the local network",
		Long:         "mdns-dashboard discovers DNS-SD service types on the local network and shows\ntheir resolved instances in a live terminal dashboard.",
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}
	cmd.SetArgs(argv)
	binding := config.Bind(cmd.Flags(), environ)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		runtimeCfg, err := binding.Config(argv)
		if err == nil {
			err = config.Validate(runtimeCfg)
		}
		if err != nil {
			return fmt.Errorf("configuration: %w", err)
		}
		runtimeCfg.App.Version = version

		logging.Configure(runtimeCfg.Logging.FilePath)
		logging.SetTraceEnabled(runtimeCfg.Logging.Trace)
		defer logging.Sync()

		traceStartup(runtimeCfg)

		if err := run(runtimeCfg.App); err != nil {
			logging.Error(err)
			return err
		}
		return nil
	}
	return cmd
}

func traceStartup(cfg config.Config) {
	events.App.Start(startupTracePayload(cfg))
}

// startupTracePayload bundles runtime context for trace logging.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	payload := map[string]interface{}{
		"argv":    cfg.Args,
		"flags":   flags,
		"config":  cfg,
		"version": version,
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	} else {
		payload["executableError"] = err.Error()
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	payload["tty"] = collectTTYDetails()
	return payload
}

type ttyDetails struct {
	Detected *ttyDetected     `json:"detected,omitempty"`
	Probes   []ttyProbeResult `json:"probes"`
}

type ttyDetected struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ttyProbeResult struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// collectTTYDetails checks whether the standard descriptors are terminals and
// records their size.
func collectTTYDetails() ttyDetails {
	probes := []struct {
		name string
		file *os.File
	}{
		{"stdin", os.Stdin},
		{"stdout", os.Stdout},
		{"stderr", os.Stderr},
	}
	results := make([]ttyProbeResult, 0, len(probes))
	var detected *ttyDetected
	for _, probe := range probes {
		entry := ttyProbeResult{Name: probe.name}
		fd := int(probe.file.Fd())
		if term.IsTerminal(fd) {
			entry.IsTerminal = true
			width, height, err := term.GetSize(fd)
			if err != nil {
				entry.Error = err.Error()
			} else {
				entry.Width, entry.Height = width, height
				if detected == nil {
					detected = &ttyDetected{Source: probe.name, Width: width, Height: height}
				}
			}
		}
		results = append(results, entry)
	}
	return ttyDetails{Detected: detected, Probes: results}
}
