package utils

import (
	"go.uber.org/zap"
)

// NewLogger returns a development logger when env is "development" and a
// production logger otherwise
func NewLogger(env string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	return logger
}
