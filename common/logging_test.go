package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewConsoleLogger(t *testing.T) {
	// ensures that the console logger emits messages
	// to the provided writer.
	OverrideConfig(Config{OpenFileLimit: 64, LogLevel: "info"})
	buf := bytes.NewBuffer(nil)
	log := NewConsoleLogger(zapcore.AddSync(buf))
	log.Infof("hello %s", "world")
	assert.Contains(t, buf.String(), "hello world")
}

func TestNewJSONLogger(t *testing.T) {
	// ensures that the JSON logger emits structured messages
	// to the provided writer.
	OverrideConfig(Config{OpenFileLimit: 64, LogLevel: "info"})
	buf := bytes.NewBuffer(nil)
	log := NewJSONLogger(zapcore.AddSync(buf))
	log.Info("structured")
	assert.Contains(t, buf.String(), `"msg":"structured"`)
	assert.Contains(t, buf.String(), `"level":"info"`)
}

func TestLoggerRespectsLevel(t *testing.T) {
	// ensures that debug messages are suppressed when the
	// configured level is higher.
	OverrideConfig(Config{OpenFileLimit: 64, LogLevel: "warn"})
	buf := bytes.NewBuffer(nil)
	log := NewJSONLogger(zapcore.AddSync(buf))
	log.Debug("hidden")
	log.Info("also hidden")
	log.Warn("visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestLoggerMultipleWriters(t *testing.T) {
	// ensures that all writers receive a copy of each message.
	OverrideConfig(Config{OpenFileLimit: 64, LogLevel: "info"})
	first := bytes.NewBuffer(nil)
	second := bytes.NewBuffer(nil)
	log := NewJSONLogger(zapcore.AddSync(first), zapcore.AddSync(second))
	log.Info("copied")
	assert.Contains(t, first.String(), "copied")
	assert.Contains(t, second.String(), "copied")
}

func TestLevelForName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, zapcore.DebugLevel, levelForName("debug"))
	assert.Equal(t, zapcore.InfoLevel, levelForName("info"))
	assert.Equal(t, zapcore.WarnLevel, levelForName("warn"))
	assert.Equal(t, zapcore.ErrorLevel, levelForName("error"))
	assert.Equal(t, zapcore.FatalLevel, levelForName("fatal"))
	assert.Equal(t, zapcore.InfoLevel, levelForName("bogus"))
}

func TestNewRandInstanceUID(t *testing.T) {
	t.Parallel()
	uid, err := NewRandInstanceUID()
	assert.NoError(t, err)
	assert.True(t, len(uid) <= 64)
	assert.Equal(t, 0, bytes.Index([]byte(uid), []byte(UIDRoot)))
}
