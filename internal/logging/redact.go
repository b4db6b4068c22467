package logging

import (
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

const invalidHeaderFieldValue = "invalid header field value"

var bearerToken = regexp.MustCompile(`(?i)(bearer)\s+[^\s"'\\,]+`)

// Redact removes bearer tokens from s. net/http includes the rejected header
// value in "invalid header field value" errors, so that value is dropped
// entirely.
func Redact(s string) string {
	if idx := strings.Index(s, invalidHeaderFieldValue); idx >= 0 {
		idx += len(invalidHeaderFieldValue)
		if forKey := strings.Index(s[idx:], "for key"); forKey >= 0 {
			s = s[:idx] + " " + s[idx+forKey:]
		} else {
			s = s[:idx]
		}
	}
	return bearerToken.ReplaceAllString(s, "$1 [redacted]")
}

// redactingCore applies Redact to every message and string field before it
// is encoded.
type redactingCore struct {
	zapcore.Core
}

func (c redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return redactingCore{Core: c.Core.With(redactFields(fields))}
}

func (c redactingCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return ce.AddCore(entry, c)
	}
	return ce
}

func (c redactingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	entry.Message = Redact(entry.Message)
	return c.Core.Write(entry, redactFields(fields))
}

func redactFields(fields []zapcore.Field) []zapcore.Field {
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		if f.Type == zapcore.StringType {
			f.String = Redact(f.String)
		}
		out[i] = f
	}
	return out
}
