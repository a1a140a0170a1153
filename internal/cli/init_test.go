package cli

import (
	"context"
	"log/slog"
	"testing"

	"salesbook/internal/config"
	applog "salesbook/internal/log"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger("debug")
	if logger.Component() != applog.ComponentApp {
		t.Errorf("component = %q", logger.Component())
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("default logger should be at debug level")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("DATA_BACKEND", "postgres")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestOpenBackend_Memory(t *testing.T) {
	cfg := &config.Config{DataBackend: config.BackendMemory, IDPolicy: "max_plus_one"}
	res, err := OpenBackend(context.Background(), slog.Default(), cfg)
	if err != nil {
		t.Fatalf("OpenBackend() error = %v", err)
	}
	defer res.Cleanup()
	if res.Store == nil || res.Publisher != nil {
		t.Errorf("unexpected backend %+v", res)
	}
}
