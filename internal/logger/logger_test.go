package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		debugMode bool
		wantDebug bool
	}{
		{"info by default", false, false},
		{"debug mode", true, true},
	}
	for _, tt := range tests {
		prod, err := NewProductionLogger(tt.debugMode)
		if err != nil {
			t.Fatalf("%s: NewProductionLogger() error = %v", tt.name, err)
		}
		if got := prod.Core().Enabled(zapcore.DebugLevel); got != tt.wantDebug {
			t.Errorf("%s: production debug enabled = %v, want %v", tt.name, got, tt.wantDebug)
		}
		if !prod.Core().Enabled(zapcore.InfoLevel) {
			t.Errorf("%s: production logger should log info", tt.name)
		}

		dev, err := NewDevelopmentLogger(tt.debugMode)
		if err != nil {
			t.Fatalf("%s: NewDevelopmentLogger() error = %v", tt.name, err)
		}
		if got := dev.Core().Enabled(zapcore.DebugLevel); got != tt.wantDebug {
			t.Errorf("%s: development debug enabled = %v, want %v", tt.name, got, tt.wantDebug)
		}
	}
}

func TestSync_NilLogger(t *testing.T) {
	t.Parallel()

	if err := Sync(nil); err != nil {
		t.Errorf("Sync(nil) = %v, want nil", err)
	}
}
