// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// plainFormatter emits "LEVEL: message" lines without timestamps, for
// interactive use where the terminal scrollback is the timeline.
type plainFormatter struct{}

func (f *plainFormatter) Format(entry *log.Entry) ([]byte, error) {
	return []byte(fmt.Sprintf("%s: %s\n", entry.Level.String(), entry.Message)), nil
}

// Setup configures the global logger. format is "plain" or "time"; an empty
// logFile logs to stderr only, otherwise output is mirrored to the file in
// append mode. Returns a close func for the log file (no-op when unused).
func Setup(level, format, logFile string) (func(), error) {
	closer := func() {}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return closer, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)

	switch format {
	case "time":
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableColors:   true,
		})
	case "plain", "":
		log.SetFormatter(&plainFormatter{})
	default:
		return closer, fmt.Errorf("invalid log format %q (want plain or time)", format)
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return closer, fmt.Errorf("failed to open log file: %w", err)
		}
		log.SetOutput(io.MultiWriter(os.Stderr, f))
		closer = func() { f.Close() }
	} else {
		log.SetOutput(os.Stderr)
	}

	return closer, nil
}
