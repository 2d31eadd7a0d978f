package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New creates the process logger. Verbose mode lowers the level to debug;
// components receive the logger as an explicit dependency, never via a global.
func New(verbose bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "reportbot",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
