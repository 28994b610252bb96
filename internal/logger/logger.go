package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus logger with the service name attached.
type Logger struct {
	*logrus.Logger
	service string
}

// New creates a JSON logger. The level comes from LOG_LEVEL, info by default.
func New(serviceName string) *Logger {
	return NewWithOutput(serviceName, os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewWithOutput is New with an explicit sink and level name.
func NewWithOutput(serviceName string, out io.Writer, level string) *Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	log.SetOutput(out)

	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return &Logger{Logger: log, service: serviceName}
}

// Entry returns an entry carrying the service field.
func (l *Logger) Entry() *logrus.Entry {
	return l.WithField("service", l.service)
}

// WithGame adds the game and user ids.
func (l *Logger) WithGame(gameID, userID string) *logrus.Entry {
	return l.Entry().WithFields(logrus.Fields{"game_id": gameID, "user_id": userID})
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *Logger {
	return NewWithOutput("test", io.Discard, "panic")
}
