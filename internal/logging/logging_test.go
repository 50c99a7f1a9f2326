package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/zhouzirui/summachat/backend/internal/config"
)

func TestInitJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := initWithWriter(&buf, config.LogConfig{Level: "debug", Format: "json"})

	logger.Debug("hello", "session", "abc")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected json line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "hello" || entry["session"] != "abc" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := initWithWriter(&buf, config.LogConfig{Level: "chatty"})

	if logger.GetLevel() != log.InfoLevel {
		t.Fatalf("expected info level, got %v", logger.GetLevel())
	}

	logger.Debug("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("debug line should be filtered at info level")
	}
}
