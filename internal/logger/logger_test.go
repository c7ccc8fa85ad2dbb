package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewAppLogger_LevelMapping(t *testing.T) {
	l := NewAppLogger(&Config{LogLevel: "WARN"}).(*appLogger)
	assert.Equal(t, zapcore.WarnLevel, l.getLoggerLevel())

	l = NewAppLogger(&Config{LogLevel: "nonsense"}).(*appLogger)
	assert.Equal(t, zapcore.InfoLevel, l.getLoggerLevel())
}

func TestAppLogger_With(t *testing.T) {
	l := NewAppLogger(&Config{LogLevel: "debug", DevMode: true, Encoder: "console"})
	l.InitLogger()

	child := l.With(zap.String("component", "test"))
	assert.NotNil(t, child.Logger())
	assert.NotSame(t, l.Logger(), child.Logger())
	child.Infof("hello %s", "world")
}

func TestNewAppLogger_NilConfig(t *testing.T) {
	l := NewAppLogger(nil)
	l.InitLogger()
	assert.NotNil(t, l.Logger())
}
