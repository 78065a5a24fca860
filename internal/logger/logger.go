package logger

import (
	"go.uber.org/zap"
)

var log *zap.Logger

// Init builds the global logger. Development mode switches to the
// human-readable console encoder.
func Init(isDev bool) error {
	var err error
	if isDev {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	return err
}

func L() *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
