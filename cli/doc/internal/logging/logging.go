// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultLevel keeps routine runs quiet.
const DefaultLevel = log.WarnLevel

// Level picks the first non-empty of flag, DOC_LOG_LEVEL and the settings
// value. DOC_DEBUG=1 overrides all of them.
func Level(flag, settings string) string {
	if os.Getenv("DOC_DEBUG") == "1" {
		return "debug"
	}
	for _, v := range []string{flag, os.Getenv("DOC_LOG_LEVEL"), settings} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return DefaultLevel.String()
}

// Setup points the standard logger at w and applies level. An unknown level
// logs a warning and keeps DefaultLevel.
func Setup(w io.Writer, level string) {
	log.SetOutput(w)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.SetLevel(DefaultLevel)
		log.Warnf("invalid log level %s, defaulting to %s", level, DefaultLevel)
		return
	}
	log.SetLevel(parsed)
}
