package dynamicfee

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// DefaultBaseDir is the default root data directory where the daemon
	// stores its database and logs. On UNIX like systems this resolves to
	// ~/.dynfee.
	DefaultBaseDir = defaultBaseDir()

	// DefaultRPCListen is the default address the JSON-RPC server listens
	// on.
	DefaultRPCListen = "localhost:8780"

	defaultLogLevel = "info"
)

// Config holds the daemon configuration.
type Config struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	BaseDir     string `long:"basedir" description:"The base directory where the daemon stores all its data"`
	RPCListen   string `long:"rpclisten" description:"Address to listen on for JSON-RPC clients"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`

	Owner              string `long:"owner" description:"Hex encoded address of the administrative owner"`
	CommitmentEndpoint string `long:"commitmentendpoint" description:"Base URL of the proof verification service's commitment lookup"`

	BaseFee        uint32 `long:"basefee" description:"Flat fee component in hundredths of a basis point (0 for default)"`
	CommissionRate uint32 `long:"commissionrate" description:"Commission rate in parts of 10000 (0 for default)"`
}

// DefaultConfig returns the daemon configuration with all defaults filled in.
func DefaultConfig() *Config {
	return &Config{
		BaseDir:    DefaultBaseDir,
		RPCListen:  DefaultRPCListen,
		DebugLevel: defaultLogLevel,
	}
}

// Validate makes sure the configuration is sane and fills in derived values.
func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("basedir must be set")
	}
	if c.CommitmentEndpoint == "" {
		return fmt.Errorf("commitmentendpoint must be set")
	}
	if c.Owner == "" {
		return fmt.Errorf("owner must be set")
	}
	if !common.IsHexAddress(c.Owner) {
		return fmt.Errorf("invalid owner address: %v", c.Owner)
	}

	return nil
}

// OwnerAddress returns the parsed owner address. Validate must have been
// called before.
func (c *Config) OwnerAddress() common.Address {
	return common.HexToAddress(c.Owner)
}

// defaultBaseDir computes the platform dependent default base directory.
func defaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dynfee"
	}
	return filepath.Join(home, ".dynfee")
}
