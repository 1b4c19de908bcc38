package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/GoCampusAuth/GoCampusAuth/internal/logger"
)

func TestLogger(t *testing.T) {
	type testCase struct {
		name             string
		cfg              logger.Log
		wantErr          error
		shouldHaveOutput bool
		outputIsJSON     bool
	}

	testCases := []testCase{
		{
			name: "missing service name",
			cfg: logger.Log{
				LogLevel: "info",
				AppName:  "test",
			},
			wantErr: logger.ErrServiceNameIsEmpty,
		},
		{
			name: "missing app name",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
			},
			wantErr: logger.ErrAppNameIsEmpty,
		},
		{
			name: "console enabled log level info",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true},
			},
			shouldHaveOutput: true,
			outputIsJSON:     true,
		},
		{
			name: "console enabled console writer enabled",
			cfg: logger.Log{
				LogLevel:    "info",
				ServiceName: "test",
				AppName:     "test",
				Console:     logger.Console{Enabled: true, UseConsoleWriter: true},
			},
			shouldHaveOutput: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Init must run while stdout is captured: the console writers
			// bind os.Stdout at Init time.
			var initErr error

			out := captureStdout(t, func() {
				initErr = logger.Init(tc.cfg)
				if initErr != nil {
					return
				}

				log.Info().Msg("hello")
			})

			if tc.wantErr != nil {
				if !errors.Is(initErr, tc.wantErr) {
					t.Fatalf("Init() error = %v, want %v", initErr, tc.wantErr)
				}

				return
			}

			if initErr != nil {
				t.Fatalf("Init() error = %v", initErr)
			}

			if tc.shouldHaveOutput && !strings.Contains(out, "hello") {
				t.Errorf("expected log output, got %q", out)
			}

			if tc.outputIsJSON {
				var decoded map[string]interface{}
				if err := json.Unmarshal([]byte(out), &decoded); err != nil {
					t.Errorf("expected JSON output, got %q: %v", out, err)
				}
			}
		})
	}
}

// captureStdout redirects os.Stdout while fn runs and returns what was written.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	orig := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = orig

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)

	return buf.String()
}
