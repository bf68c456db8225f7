package logging_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/rigour-dev/rigour/internal/logging"
)

// restoreDefaults resets the default logger state mutated by Setup so tests
// do not leak configuration into each other.
func restoreDefaults(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		log.SetLevel(log.InfoLevel)
		log.SetOutput(os.Stderr)
		log.SetFormatter(log.TextFormatter)
	})
}

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		quiet   bool
		want    log.Level
	}{
		{name: "default is info", want: log.InfoLevel},
		{name: "verbose enables debug", verbose: true, want: log.DebugLevel},
		{name: "quiet enables error", quiet: true, want: log.ErrorLevel},
		{name: "quiet wins over verbose", verbose: true, quiet: true, want: log.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restoreDefaults(t)
			logging.Setup(tt.verbose, tt.quiet, false)
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestNew_ComponentPrefix(t *testing.T) {
	restoreDefaults(t)

	var buf bytes.Buffer
	logging.Setup(false, false, false)
	logging.SetOutput(&buf)

	logger := logging.New("engine")
	logger.Info("plan executed", "plan_id", "p-1")

	out := buf.String()
	assert.Contains(t, out, "engine")
	assert.Contains(t, out, "plan executed")
	assert.Contains(t, out, "p-1")
}

func TestSetup_JSONFormat(t *testing.T) {
	restoreDefaults(t)

	var buf bytes.Buffer
	logging.Setup(false, false, true)
	logging.SetOutput(&buf)

	logging.New("runner").Info("batch done", "total", 3)

	out := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(out, "{"), "JSON formatter should emit objects, got: %s", out)
	assert.Contains(t, out, `"msg"`)
}
