package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLevels(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			logFile := filepath.Join(dir, tc.level+".log")
			cfg := FileConfig{Path: logFile, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1}
			if err := InitWithFileConfig(tc.level, cfg, false); err != nil {
				t.Fatalf("InitWithFileConfig() error: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("reading log file: %v", err)
			}
			for _, want := range tc.expected {
				if !strings.Contains(string(content), want) {
					t.Errorf("level %s missing from output", want)
				}
			}
			for _, exclude := range tc.excluded {
				if strings.Contains(string(content), exclude) {
					t.Errorf("level %s leaked through filter %s", exclude, tc.level)
				}
			}
		})
	}
}

func TestLogRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "maptool.log")

	// 1MB is the smallest size lumberjack rotates at.
	cfg := FileConfig{Path: logFile, MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 1}
	if err := InitWithFileConfig("debug", cfg, false); err != nil {
		t.Fatalf("InitWithFileConfig() error: %v", err)
	}
	defer Sync()

	filler := strings.Repeat("x", 200)
	for i := 0; i < 15000; i++ {
		Sugar.Infof("entry %d: %s", i, filler)
	}
	Sync()

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	rotated := 0
	for _, f := range files {
		if f.Name() != "maptool.log" && strings.Contains(f.Name(), ".log") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Errorf("no rotated log files in %v", files)
	}
}

func TestDebugBeforeInit(t *testing.T) {
	Log = nil
	Sugar = nil
	// Library code logs through Debug before main initializes the
	// logger; that must not panic.
	Debug("early message")
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/maptool.log")
	if cfg.Path != "/tmp/maptool.log" {
		t.Errorf("Path = %q", cfg.Path)
	}
	if cfg.MaxSizeMB != 50 || cfg.MaxBackups != 3 || cfg.MaxAgeDays != 7 || !cfg.Compress {
		t.Errorf("defaults = %+v", cfg)
	}
}
