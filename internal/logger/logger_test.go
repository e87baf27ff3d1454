package logger

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{"debug", "debug", zerolog.DebugLevel},
		{"info", "info", zerolog.InfoLevel},
		{"warn", "warn", zerolog.WarnLevel},
		{"error", "error", zerolog.ErrorLevel},
		{"mixed case", "DEBUG", zerolog.DebugLevel},
		{"unknown falls back to info", "verbose", zerolog.InfoLevel},
		{"empty falls back to info", "", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.level)
			if l.GetLevel() != tt.want {
				t.Errorf("Got level %v, want %v", l.GetLevel(), tt.want)
			}
		})
	}
}
