// Package logging adapts zap to the client's Logger interface and to go-retryablehttp.
package logging

import (
	"fmt"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/fivetwenty-io/vehicle-client/pkg/vapi"
)

// New builds a zap logger. Verbose selects the development config with debug output.
func New(verbose bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)

	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}

	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	return logger, nil
}

// ZapLogger implements vapi.Logger on top of a zap logger.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps logger. A nil logger discards everything.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ZapLogger{logger: logger}
}

func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, toZapFields(fields)...)
}

func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, toZapFields(fields)...)
}

func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, toZapFields(fields)...)
}

func (l *ZapLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, toZapFields(fields)...)
}

func toZapFields(fields map[string]interface{}) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields))
	for key, value := range fields {
		zapFields = append(zapFields, zap.Any(key, value))
	}

	return zapFields
}

// LeveledAdapter lets go-retryablehttp log through a vapi.Logger.
type LeveledAdapter struct {
	logger vapi.Logger
}

var _ retryablehttp.LeveledLogger = (*LeveledAdapter)(nil)

// Leveled wraps logger for use as retryablehttp.Client.Logger.
func Leveled(logger vapi.Logger) *LeveledAdapter {
	return &LeveledAdapter{logger: logger}
}

func (a *LeveledAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, pairs(keysAndValues))
}

func (a *LeveledAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, pairs(keysAndValues))
}

func (a *LeveledAdapter) Debug(msg string, keysAndValues ...interface{}) {
	a.logger.Debug(msg, pairs(keysAndValues))
}

func (a *LeveledAdapter) Warn(msg string, keysAndValues ...interface{}) {
	a.logger.Warn(msg, pairs(keysAndValues))
}

// pairs folds alternating keys and values into a field map. A trailing key without
// a value is kept under "extra".
func pairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 >= len(keysAndValues) {
			fields["extra"] = keysAndValues[i]

			break
		}

		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}

	return fields
}
