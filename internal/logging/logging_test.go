package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_Level(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"WARN", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"chatty", logrus.InfoLevel},
	}

	for _, tt := range tests {
		log, err := New(tt.in, "", &bytes.Buffer{})
		if err != nil {
			t.Fatalf("New(%q) failed: %v", tt.in, err)
		}
		if log.GetLevel() != tt.want {
			t.Errorf("New(%q) level = %s, want %s", tt.in, log.GetLevel(), tt.want)
		}
	}
}

func TestNew_WritesToFileAndWriter(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "naysayer.log")

	log, err := New("info", path, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	log.WithField("product", "robot vacuum").Info("Analysis finished")
	log.Debug("hidden")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	for name, out := range map[string]string{"writer": buf.String(), "file": string(data)} {
		if !strings.Contains(out, "Analysis finished") || !strings.Contains(out, `product="robot vacuum"`) {
			t.Errorf("%s missing entry: %q", name, out)
		}
		if strings.Contains(out, "hidden") {
			t.Errorf("%s contains debug entry at info level", name)
		}
	}
}

func TestNew_BadFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := New("info", filepath.Join(blocker, "x.log"), &bytes.Buffer{}); err == nil {
		t.Error("expected error when the log directory cannot be created")
	}
}
