// Package logging provides a shared logger and log utilities to be used in all internal packages.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

var (
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	L *zap.Logger        = newLogger(level, zapcore.Lock(os.Stderr), isTerminal(os.Stderr))
	S *zap.SugaredLogger = L.Sugar()
)

// Levels lists the names accepted by SetLevel.
var Levels = []string{"debug", "info", "warn", "error"}

// SetLevel changes the level of L and S. name is one of Levels.
func SetLevel(name string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return fmt.Errorf("invalid log level %q, expected one of %s", name, strings.Join(Levels, ", "))
	}
	switch lvl {
	case zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel:
	default:
		return fmt.Errorf("invalid log level %q, expected one of %s", name, strings.Join(Levels, ", "))
	}
	level.SetLevel(lvl)
	return nil
}

// UseWriter replaces the output of L and S. It is used by tests and by
// commands that need the terminal for themselves.
func UseWriter(w io.Writer) {
	ws, ok := w.(zapcore.WriteSyncer)
	if !ok {
		ws = zapcore.AddSync(w)
	}
	L = newLogger(level, zapcore.Lock(ws), isTerminal(w))
	S = L.Sugar()
}

func newLogger(enab zapcore.LevelEnabler, writer zapcore.WriteSyncer, terminal bool) *zap.Logger {
	var encoder zapcore.Encoder
	if terminal {
		encoder = zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			MessageKey: "message",

			LevelKey:    "level",
			EncodeLevel: zapcore.CapitalColorLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.ISO8601TimeEncoder,
		})
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	core := redactingCore{Core: zapcore.NewCore(encoder, writer, enab)}
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func Debugf(format string, args ...interface{}) {
	S.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	S.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	S.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	S.Errorf(format, args...)
}
