package dynamicfee

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/0xhaz/Dynamic-Fee/statedb"
	"github.com/0xhaz/Dynamic-Fee/verifier"
	"github.com/btcsuite/btclog"
)

// Subsystem defines the logging code for this subsystem.
const Subsystem = "DYNF"

// log is a logger that is initialized with no output filters. This means the
// package will not perform any logging by default until the caller requests
// it.
var log btclog.Logger

// The default amount of logging is none.
func init() {
	DisableLog()
}

// DisableLog disables all library log output. Logging output is disabled by
// default until UseLogger is called.
func DisableLog() {
	log = btclog.Disabled
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// SetupLoggers initializes all package-global logger variables from a single
// backend writing to the given writer, with the given level applied to every
// subsystem.
func SetupLoggers(w io.Writer, level string) error {
	logLevel, ok := btclog.LevelFromString(level)
	if !ok {
		return fmt.Errorf("invalid log level %v, supported levels "+
			"are: %v", level, SupportedLogLevels())
	}

	backend := btclog.NewBackend(w)
	for subsystem, use := range map[string]func(btclog.Logger){
		Subsystem:          UseLogger,
		verifier.Subsystem: verifier.UseLogger,
		statedb.Subsystem:  statedb.UseLogger,
	} {
		logger := backend.Logger(subsystem)
		logger.SetLevel(logLevel)
		use(logger)
	}

	return nil
}

// SupportedLogLevels returns the log levels SetupLoggers accepts.
func SupportedLogLevels() string {
	levels := []string{
		"trace", "debug", "info", "warn", "error", "critical", "off",
	}
	return strings.Join(levels, ", ")
}

// SetupDefaultLoggers wires all subsystems to stdout at the given level.
func SetupDefaultLoggers(level string) error {
	return SetupLoggers(os.Stdout, level)
}
