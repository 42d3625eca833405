package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// L is the process-wide logger. Init replaces it; until then it is a no-op
// so tests can use packages that log without setup.
var L = zap.NewNop()

// Init builds the logger for the given environment. Production gets JSON
// output, everything else gets the console encoder.
func Init(env string) error {
	var (
		l   *zap.Logger
		err error
	)
	if env == "production" {
		l, err = zap.NewProduction()
	} else {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l, err = cfg.Build()
	}
	if err != nil {
		return err
	}
	L = l
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = L.Sync()
}
