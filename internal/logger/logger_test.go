package logger

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(os.Stdout)
		SetLevel(INFO)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in     string
		want   LogLevel
		wantOK bool
	}{
		{"debug", DEBUG, true},
		{" WARN ", WARN, true},
		{"Error", ERROR, true},
		{"verbose", INFO, false},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseLevel(tc.in)
			if ok != tc.wantOK {
				t.Fatalf("ParseLevel(%q) ok = %v, want %v", tc.in, ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLog(t)
	SetLevel(WARN)

	Debug("hidden debug")
	Info("hidden info")
	Warn("visible %s", "warn")
	Error("visible error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below WARN were written: %q", out)
	}
	if !strings.Contains(out, "[WARN] visible warn") {
		t.Errorf("missing warn line in %q", out)
	}
	if !strings.Contains(out, "[ERROR] visible error") {
		t.Errorf("missing error line in %q", out)
	}
}

func TestInitWithFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "volumescope.log")
	Init(Options{Level: "debug", File: logPath})
	t.Cleanup(func() {
		_ = Close()
		Init(Options{})
	})

	if GetCurrentLevel() != DEBUG {
		t.Fatalf("level = %v, want DEBUG", GetCurrentLevel())
	}

	Debug("written to file")
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "[DEBUG] written to file") {
		t.Errorf("log file content = %q", string(data))
	}
}
