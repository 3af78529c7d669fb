package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"daily_fact_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_ProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	Configure(l, &buf, &config.AppConfig{LogLevel: "warn", Environment: "production"})

	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
	l.Info("dropped")
	l.WithField("fact_id", 3).Warn("kept")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, float64(3), entry["fact_id"])
}

func TestConfigure_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	Configure(l, &buf, &config.AppConfig{LogLevel: "chatty", Environment: "development"})

	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
	assert.Contains(t, buf.String(), "Invalid log level")
}
