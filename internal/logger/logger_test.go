package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, WarnLevel)

	log.Infow("hidden", "page", 1)
	log.Warnw("dataset empty", "source", "sample")
	_ = log.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, `"source": "sample"`) {
		t.Fatalf("output=%q", out)
	}
}

func TestToZapLevel_UnknownFallsBackToInfo(t *testing.T) {
	if got := toZapLevel("verbose"); got != defaultZapLevel {
		t.Fatalf("level=%v, want %v", got, defaultZapLevel)
	}
}
