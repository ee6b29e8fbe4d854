package logger

import (
	"os"

	"peipao-bot/config"

	"github.com/op/go-logging"
)

var logger *logging.Logger

func init() {
	InitLogger(config.GetLogLevel())
}

func InitLogger(level config.LogLevel) {
	newLogger := logging.MustGetLogger(config.GetName())

	var logLevel logging.Level
	switch level {
	case config.Debug:
		logLevel = logging.DEBUG
	case config.Info:
		logLevel = logging.INFO
	case config.Warn:
		logLevel = logging.WARNING
	case config.Error:
		logLevel = logging.ERROR
	default:
		logLevel = logging.INFO
	}

	format := logging.MustStringFormatter(
		`%{time:2006/01/02 15:04:05} %{level} - %{message}`,
	)
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	backendFormatter := logging.NewBackendFormatter(backend, format)
	backendLeveled := logging.AddModuleLevel(backendFormatter)
	backendLeveled.SetLevel(logLevel, "")
	newLogger.SetBackend(backendLeveled)

	logger = newLogger
}

func Debug(args ...any) {
	logger.Debug(args...)
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Info(args ...any) {
	logger.Info(args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Warning(args ...any) {
	logger.Warning(args...)
}

func Warningf(format string, args ...any) {
	logger.Warningf(format, args...)
}

func Error(args ...any) {
	logger.Error(args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}
