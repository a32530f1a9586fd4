// Package utils
package utils

import (
	"log"
	"os"
	"sync"
)

var (
	logger  *log.Logger
	once    sync.Once
	logFile = "rsi-bot.log"
)

// SetLogFile overrides the log file path. Must be called before the first
// GetLogger call to take effect.
func SetLogFile(path string) {
	logFile = path
}

func GetLogger() *log.Logger {
	once.Do(func() {
		file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			// Containers and tests often have no writable cwd.
			logger = log.New(os.Stderr, "RSI Bot: ", log.LstdFlags)
			return
		}
		logger = log.New(file, "RSI Bot: ", log.LstdFlags)
	})
	return logger
}
