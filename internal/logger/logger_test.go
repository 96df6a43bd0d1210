package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogger() {
	Init(Options{})
}

func TestInit_Levels(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		logged    []string
		notLogged []string
	}{
		{
			name:      "default is info",
			logged:    []string{"info msg", "warn msg", "error msg"},
			notLogged: []string{"debug msg"},
		},
		{
			name:   "debug",
			opts:   Options{Debug: true},
			logged: []string{"debug msg", "info msg", "warn msg", "error msg"},
		},
		{
			name:      "quiet",
			opts:      Options{Quiet: true},
			logged:    []string{"error msg"},
			notLogged: []string{"debug msg", "info msg", "warn msg"},
		},
		{
			name:      "quiet wins over debug",
			opts:      Options{Debug: true, Quiet: true},
			logged:    []string{"error msg"},
			notLogged: []string{"debug msg", "info msg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			opts := tt.opts
			opts.Output = buf
			Init(opts)
			defer resetLogger()

			Debug("debug msg")
			Info("info msg")
			Warn("warn msg")
			Error("error msg")

			for _, msg := range tt.logged {
				assert.Contains(t, buf.String(), msg)
			}
			for _, msg := range tt.notLogged {
				assert.NotContains(t, buf.String(), msg)
			}
		})
	}
}

func TestInit_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{JSON: true, Output: buf})
	defer resetLogger()

	Info("synced", "slug", "hello-world")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "synced", entry["msg"])
	assert.Equal(t, "hello-world", entry["slug"])
}

func TestInit_CustomLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Logger: slog.New(slog.NewTextHandler(buf, nil)), Quiet: true})
	defer resetLogger()

	Info("from custom")
	assert.Contains(t, buf.String(), "from custom")
}

func TestWith(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	With("component", "cache").Info("hit")
	assert.Contains(t, buf.String(), "component=cache")
	assert.Contains(t, buf.String(), "hit")
}
