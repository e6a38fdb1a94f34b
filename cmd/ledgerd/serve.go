package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"isolateledger/internal/blob"
	"isolateledger/internal/infra/store"
	"isolateledger/internal/metrics"
	"isolateledger/internal/platform/logger"
	"isolateledger/pkg/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ledger daemon",
	Long: `Open the configured record store, watch all collections and expose
Prometheus metrics and a health endpoint.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := logger.New(cfg.GetString(cfgKeyLogMode))
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	recordStore, closeStore, err := store.Open(ctx, storeConfig())
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer func() { _ = closeStore() }()

	recorder := metrics.NewRecorder()
	collections := []string{domain.CollectionExtractions, domain.CollectionStorage, domain.CollectionPrimers}
	for _, collection := range collections {
		collection := collection
		cancel, err := recordStore.Subscribe(collection, func(snap domain.Snapshot) {
			recorder.SnapshotFanned(collection)
			log.Debugw("snapshot fanned out", "collection", collection, "records", len(snap.Records))
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", collection, err)
		}
		defer cancel()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.GetString(cfgKeyMetricsAddr),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infow("ledgerd listening", "addr", srv.Addr, "driver", cfg.GetString(cfgKeyStorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("serve metrics: %w", err)
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openBlob(ctx context.Context) (blob.Store, error) {
	switch driver := cfg.GetString(cfgKeyBlobDriver); blob.Driver(driver) {
	case blob.DriverFilesystem:
		return blob.NewFilesystem(cfg.GetString(cfgKeyBlobFSRoot))
	case blob.DriverS3:
		return blob.OpenS3FromEnv(ctx)
	case blob.DriverMemory:
		return blob.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
