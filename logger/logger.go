// file: logger/logger.go

package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the application-wide structured logger.
var Log = logrus.New()

// Init configures the shared logger. An unknown level falls back to info,
// and any format other than "text" produces JSON lines.
func Init(opts ...string) {
	level, format := "info", "json"
	if len(opts) > 0 && opts[0] != "" {
		level = opts[0]
	}
	if len(opts) > 1 && opts[1] != "" {
		format = opts[1]
	}

	Log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if strings.EqualFold(format, "text") {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	Log.SetFormatter(&logrus.JSONFormatter{})
}
