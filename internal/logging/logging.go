package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Setup configures the global logrus logger. An unknown level falls back to
// info and is reported once the logger is usable.
func Setup(level string) {
	SetupWithOutput(level, os.Stdout)
}

func SetupWithOutput(level string, out io.Writer) {
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.Warnf("unknown LOG_LEVEL %q, using info", level)
		return
	}
	logrus.SetLevel(lvl)
}
