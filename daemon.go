package dynamicfee

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/0xhaz/Dynamic-Fee/statedb"
	"github.com/0xhaz/Dynamic-Fee/verifier"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout is the grace period in-flight requests get once the daemon
// received a termination signal.
const shutdownTimeout = 5 * time.Second

// RunDaemon opens the database, constructs the hook and serves the JSON-RPC
// API until the process receives an interrupt or termination signal.
func RunDaemon(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := SetupDefaultLoggers(cfg.DebugLevel); err != nil {
		return err
	}

	db, err := statedb.New(cfg.BaseDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Errorf("Unable to close database: %v", err)
		}
	}()

	hook, err := NewHook(HookConfig{
		Store: db,
		Commitments: verifier.NewHTTPCommitmentSource(
			cfg.CommitmentEndpoint,
		),
		Owner:          cfg.OwnerAddress(),
		BaseFee:        cfg.BaseFee,
		CommissionRate: cfg.CommissionRate,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    cfg.RPCListen,
		Handler: NewRPCServer(hook),
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	var eg errgroup.Group
	eg.Go(func() error {
		log.Infof("JSON-RPC server listening on %v", cfg.RPCListen)

		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	eg.Go(func() error {
		<-ctx.Done()
		log.Infof("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), shutdownTimeout,
		)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
