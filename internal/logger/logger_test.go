package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInitLevelFallback(t *testing.T) {
	if err := Init(Config{Level: "nonsense"}); err != nil {
		t.Fatal(err)
	}
	if logrus.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level, got %s", logrus.GetLevel())
	}

	if err := Init(Config{Level: "debug"}); err != nil {
		t.Fatal(err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", logrus.GetLevel())
	}
}

func TestInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "journal.log")
	if err := Init(Config{Level: "info", OutputFile: path, MaxSize: 1}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	Component("test").Info("hello file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello file") || !strings.Contains(string(data), "component=test") {
		t.Fatalf("unexpected log contents: %s", data)
	}
}
