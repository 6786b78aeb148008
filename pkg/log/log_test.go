package log

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	originalLogger := logger
	defer func() { logger = originalLogger }()

	t.Run("TextFormat", func(t *testing.T) {
		err := Init(Config{Level: "warn", Format: "text", Output: "stdout"})
		assert.NoError(t, err)
		assert.Equal(t, logrus.WarnLevel, logger.Level)

		_, ok := logger.Formatter.(*logrus.TextFormatter)
		assert.True(t, ok)
	})

	t.Run("JSONFormat", func(t *testing.T) {
		err := Init(Config{Level: "debug", Format: "json", Output: "stdout"})
		assert.NoError(t, err)

		_, ok := logger.Formatter.(*logrus.JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("InvalidLevelDefaultsToInfo", func(t *testing.T) {
		err := Init(Config{Level: "nonsense", Format: "text", Output: "stdout"})
		assert.NoError(t, err)
		assert.Equal(t, logrus.InfoLevel, logger.Level)
	})

	t.Run("FileOutput", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "app.log")

		err := Init(Config{
			Level:      "error",
			Format:     "json",
			Output:     "file",
			Filename:   logFile,
			MaxSize:    10,
			MaxAge:     7,
			MaxBackups: 3,
		})
		require.NoError(t, err)

		Error("write something")

		_, err = os.Stat(logFile)
		assert.NoError(t, err)
	})
}

func TestLevelFiltering(t *testing.T) {
	originalLogger := logger
	defer func() { logger = originalLogger }()

	var buf bytes.Buffer
	logger = logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	Debug("debug line")
	Info("info line")
	Warn("warn line")
	Error("error line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "warn line")
	assert.Contains(t, out, "error line")
}

func TestStructuredFields(t *testing.T) {
	originalLogger := logger
	defer func() { logger = originalLogger }()

	var buf bytes.Buffer
	logger = logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	WithFields(logrus.Fields{
		"order_no":  "SF1001",
		"basket_id": 7,
	}).Info("Checkout committed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "SF1001", entry["order_no"])
	assert.Equal(t, float64(7), entry["basket_id"])
	assert.Equal(t, "Checkout committed", entry["msg"])
}

func TestWithError(t *testing.T) {
	originalLogger := logger
	defer func() { logger = originalLogger }()

	var buf bytes.Buffer
	logger = logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	WithError(assert.AnError).Warn("downstream call failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, assert.AnError.Error(), entry["error"])
}

func TestGetLoggerLazyInit(t *testing.T) {
	originalLogger := logger
	defer func() { logger = originalLogger }()

	logger = nil
	assert.NotNil(t, GetLogger())
}
