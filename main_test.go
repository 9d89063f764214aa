package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/mdns-dashboard/internal/app"
	"github.com/atomicstack/mdns-dashboard/internal/config"
	uistate "github.com/atomicstack/mdns-dashboard/internal/ui/state"
)

func TestCollectTTYDetailsIncludesStandardDescriptors(t *testing.T) {
	info := collectTTYDetails()
	if len(info.Probes) != 3 {
		t.Fatalf("expected 3 probe entries, got %d", len(info.Probes))
	}
	expected := []string{"stdin", "stdout", "stderr"}
	for i, name := range expected {
		if info.Probes[i].Name != name {
			t.Fatalf("expected probe %d name %q, got %q", i, name, info.Probes[i].Name)
		}
	}
}

func TestStartupTracePayloadIncludesFlags(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			Query:     "_http._tcp.local.",
			Interface: "en0",
			MatchMode: uistate.MatchFuzzy,
			Refresh:   time.Second,
		},
		Logging: config.Logging{
			FilePath: "trace.log",
			Trace:    true,
		},
		Flags: map[string]string{
			"query":     "_http._tcp.local.",
			"interface": "en0",
			"match":     "fuzzy",
		},
		Args: []string{"--query", "_http._tcp.local."},
	}

	payload := startupTracePayload(cfg)

	flagsValue, ok := payload["flags"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected flags map in payload")
	}
	if flagsValue["query"] != "_http._tcp.local." {
		t.Fatalf("expected query flag, got %v", flagsValue["query"])
	}
	if flagsValue["interface"] != "en0" {
		t.Fatalf("expected interface en0, got %v", flagsValue["interface"])
	}
	if flagsValue["match"] != "fuzzy" {
		t.Fatalf("expected fuzzy match, got %v", flagsValue["match"])
	}
	if flagsValue["trace"] != true {
		t.Fatalf("expected trace flag true, got %v", flagsValue["trace"])
	}
	if flagsValue["logFile"] != "trace.log" {
		t.Fatalf("expected log file trace.log, got %v", flagsValue["logFile"])
	}
	if payload["version"] != version {
		t.Fatalf("expected version %q, got %v", version, payload["version"])
	}

	if _, ok := payload["tty"].(ttyDetails); !ok {
		t.Fatalf("expected tty details in payload")
	}
	if cfgValue, ok := payload["config"].(config.Config); !ok {
		t.Fatalf("expected config in payload")
	} else if cfgValue.App != cfg.App {
		t.Fatalf("expected app config %#v, got %#v", cfg.App, cfgValue.App)
	}
}

func TestRootCommandPassesResolvedConfig(t *testing.T) {
	var got app.Config
	calls := 0
	argv := []string{"-q", "_ipp._tcp.local.", "--match", "fuzzy", "--refresh", "2s"}
	cmd := newRootCmd(argv, nil, func(cfg app.Config) error {
		calls++
		got = cfg
		return nil
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected run to be called once, got %d", calls)
	}
	if got.Query != "_ipp._tcp.local." || got.MatchMode != uistate.MatchFuzzy || got.Refresh != 2*time.Second {
		t.Fatalf("unexpected config %#v", got)
	}
	if got.Version != version {
		t.Fatalf("expected version %q, got %q", version, got.Version)
	}
}

func TestRootCommandRejectsBadMatchMode(t *testing.T) {
	called := false
	cmd := newRootCmd([]string{"--match", "glob"}, nil, func(app.Config) error {
		called = true
		return nil
	})
	var stderr bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown match mode") {
		t.Fatalf("expected match mode error, got %v", err)
	}
	if called {
		t.Fatalf("run must not be called with invalid configuration")
	}
	if !strings.Contains(stderr.String(), "configuration") {
		t.Fatalf("expected error on stderr, got %q", stderr.String())
	}
}

func TestRootCommandRejectsPositionalArgs(t *testing.T) {
	cmd := newRootCmd([]string{"extra"}, nil, func(app.Config) error {
		t.Fatalf("run must not be called")
		return nil
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected positional args to be rejected")
	}
}

func TestRootCommandPrintsVersion(t *testing.T) {
	cmd := newRootCmd([]string{"--version"}, nil, func(app.Config) error {
		t.Fatalf("run must not be called for --version")
		return nil
	})
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout.String(), version) {
		t.Fatalf("expected version in output, got %q", stdout.String())
	}
}
