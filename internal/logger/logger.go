package logger

import (
	"fmt"
	"io"
	"os"

	"artnet2magichome/internal/config"
	"github.com/sirupsen/logrus"
)

type Log struct {
	*logrus.Entry
}

// NewLogger конструктор.
func NewLogger(cfg config.LogConf) (*Log, error) {
	log, err := newLogrus(cfg.Level, os.Stdout)
	if err != nil {
		return nil, err
	}
	// Disable concurrency mutex as we use Stdout.
	log.SetNoLock()
	log.Debug("set level: ", log.Level)

	return &Log{Entry: log.WithFields(nil)}, nil
}

// New returns a logger writing to out. Used by tests and tools.
func New(level string, out io.Writer) (*Log, error) {
	log, err := newLogrus(level, out)
	if err != nil {
		return nil, err
	}
	return &Log{Entry: log.WithFields(nil)}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Log {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &Log{Entry: log.WithFields(nil)}
}

func newLogrus(level string, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()

	log.SetOutput(out)

	log.Formatter = &logrus.TextFormatter{
		TimestampFormat:  "2006-01-02 15:04:05.0000",
		DisableColors:    false,
		ForceColors:      out == os.Stdout,
		FullTimestamp:    true,
		QuoteEmptyFields: true,
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logger. Error in settings (level: %s): %w", level, err)
	}
	log.SetLevel(lvl)

	return log, nil
}

// With will add the fields to the formatted log entry.
func (l *Log) With(fields Fields) *Log {
	return &Log{Entry: l.WithFields(logrus.Fields(fields))}
}

func (l *Log) GetLevel() string {
	return l.Logger.Level.String()
}

// Fields are a representation of formatted log fields.
type Fields map[string]interface{}

// Logger интерфейс для регистратора.
type Logger interface {
	// GetLevel возвращает текущий установленный уровень логирования.
	GetLevel() string
	With(fields Fields) *Log
}
