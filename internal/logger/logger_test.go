package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
	}
	for level, want := range cases {
		for _, format := range []string{"json", "console"} {
			l, err := NewLogger(level, format, "diabetesguard")
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(want), "%s/%s", level, format)
			if want > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(want-1), "%s/%s", level, format)
			}
		}
	}
}
