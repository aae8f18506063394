package observability

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a structured logger writing to out at the given
// level. Unparseable levels fall back to info.
func NewLogger(out io.Writer, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}
