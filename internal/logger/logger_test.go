package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/deppfellow/garage/internal/config"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerService(t *testing.T) {
	t.Run("Should stay disabled without a license key", func(t *testing.T) {
		ls := NewLoggerService(config.DefaultObservabilityConfig())

		assert.Nil(t, ls.GetApplication())
		assert.NotPanics(t, ls.Shutdown)
	})

	t.Run("Should tolerate a nil service", func(t *testing.T) {
		var ls *LoggerService

		assert.Nil(t, ls.GetApplication())
		assert.NotPanics(t, ls.Shutdown)
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Should write JSON lines tagged with service and environment", func(t *testing.T) {
		cfg := config.DefaultObservabilityConfig()
		cfg.Environment = "production"

		var buf bytes.Buffer
		log := newLogger(cfg, nil, &buf)
		log.Info().Str("record_id", "7").Msg("record created")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "record created", line["message"])
		assert.Equal(t, config.ServiceName, line["service"])
		assert.Equal(t, "production", line["environment"])
		assert.Equal(t, "7", line["record_id"])
	})

	t.Run("Should drop events below the configured level", func(t *testing.T) {
		cfg := config.DefaultObservabilityConfig()
		cfg.Logging.Level = "warn"

		var buf bytes.Buffer
		log := newLogger(cfg, nil, &buf)
		log.Info().Msg("hidden")

		assert.Empty(t, buf.String())
		assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
	})

	t.Run("Should use console output for the console format", func(t *testing.T) {
		cfg := config.DefaultObservabilityConfig()
		cfg.Logging.Format = "console"

		var buf bytes.Buffer
		log := newLogger(cfg, nil, &buf)
		log.Info().Msg("hello")

		assert.Contains(t, buf.String(), "hello")
		assert.False(t, json.Valid(buf.Bytes()))
	})
}

func TestGetPgxTraceLogLevel(t *testing.T) {
	t.Run("Should map zerolog levels onto tracelog levels", func(t *testing.T) {
		assert.Equal(t, tracelog.LogLevelDebug, GetPgxTraceLogLevel(zerolog.DebugLevel))
		assert.Equal(t, tracelog.LogLevelInfo, GetPgxTraceLogLevel(zerolog.InfoLevel))
		assert.Equal(t, tracelog.LogLevelWarn, GetPgxTraceLogLevel(zerolog.WarnLevel))
		assert.Equal(t, tracelog.LogLevelError, GetPgxTraceLogLevel(zerolog.ErrorLevel))
		assert.Equal(t, tracelog.LogLevelNone, GetPgxTraceLogLevel(zerolog.Disabled))
	})
}

func TestWithTraceContext(t *testing.T) {
	t.Run("Should return the logger unchanged without a transaction", func(t *testing.T) {
		var buf bytes.Buffer
		log := zerolog.New(&buf)

		traced := WithTraceContext(log, nil)
		traced.Info().Msg("x")

		assert.NotContains(t, buf.String(), "trace.id")
	})
}
