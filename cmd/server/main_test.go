package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/andresuchdata/scm-dashboard/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestConfigureMode_ReleaseWritesJSON(t *testing.T) {
	t.Cleanup(func() { configureMode("debug", &bytes.Buffer{}) })

	var buf bytes.Buffer
	configureMode("release", &buf)

	if gin.Mode() != gin.ReleaseMode {
		t.Fatalf("gin mode = %s, want release", gin.Mode())
	}
	if logger.Log.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("log level = %s, want info", logger.Log.GetLevel())
	}

	logger.Log.Info().Str("port", "8080").Msg("Starting server")
	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("release logs must be JSON, got %q: %v", buf.String(), err)
	}
	if line["message"] != "Starting server" || line["port"] != "8080" {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestConfigureMode_Debug(t *testing.T) {
	configureMode("debug", &bytes.Buffer{})
	if gin.Mode() != gin.DebugMode {
		t.Fatalf("gin mode = %s, want debug", gin.Mode())
	}
	if logger.Log.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("log level = %s, want debug", logger.Log.GetLevel())
	}
}
