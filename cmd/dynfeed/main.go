package main

import (
	"fmt"
	"os"
	"path/filepath"

	dynamicfee "github.com/0xhaz/Dynamic-Fee"
	"github.com/jessevdk/go-flags"
)

var defaultConfigFilename = "dynfeed.conf"

func main() {
	err := start()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}
}

func start() error {
	config := dynamicfee.DefaultConfig()

	// Parse command line flags.
	parser := flags.NewParser(config, flags.Default)
	parser.SubcommandsOptional = true

	_, err := parser.Parse()
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		return nil
	}
	if err != nil {
		return err
	}

	// Parse ini file.
	configFile := filepath.Join(config.BaseDir, defaultConfigFilename)
	if err := flags.IniParse(configFile, config); err != nil {
		// If it's a parsing related error, then we'll return
		// immediately, otherwise we can proceed as possibly the
		// config file doesn't exist which is OK.
		if _, ok := err.(*flags.IniError); ok {
			return err
		}
	}

	// Parse command line flags again to restore flags overwritten by ini
	// parse.
	_, err = parser.Parse()
	if err != nil {
		return err
	}

	// Show the version and exit if the version flag was specified.
	if config.ShowVersion {
		fmt.Printf("dynfeed version %v\n", dynamicfee.Version())
		os.Exit(0)
	}

	return dynamicfee.RunDaemon(config)
}
