package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"isolateledger/internal/export"
	"isolateledger/internal/grid"
	"isolateledger/internal/infra/store"
	"isolateledger/internal/platform/logger"
	"isolateledger/pkg/domain"
)

var (
	flagExportView    string
	flagExportFormats []string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the current ledger to export artifacts",
	Long: `Load the configured record store, project the chosen view with all
rows selected and write the artifacts to the blob store.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context())
	},
}

func init() {
	exportCmd.Flags().StringVar(&flagExportView, "view", "ledger", "view to export: ledger|loci|primers")
	exportCmd.Flags().StringSliceVar(&flagExportFormats, "format", []string{"csv"}, "artifact formats: csv,json")
}

func runExport(ctx context.Context) error {
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

	blobStore, err := openBlob(ctx)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	view := export.View(flagExportView)
	proj, err := projectView(recordStore, view)
	if err != nil {
		return err
	}

	formats := make([]export.Format, 0, len(flagExportFormats))
	for _, f := range flagExportFormats {
		formats = append(formats, export.Format(strings.ToLower(strings.TrimSpace(f))))
	}

	worker := export.NewWorker(blobStore, log, nil)
	infos, err := worker.Run(ctx, export.Input{View: view, Projection: proj, Formats: formats})
	if err != nil {
		return err
	}
	for _, info := range infos {
		fmt.Printf("%s\t%d bytes\n", info.Key, info.Size)
	}
	return nil
}

// projectView builds the full-selection projection of one view.
func projectView(recordStore domain.RecordStore, view export.View) (grid.Projection, error) {
	var (
		collection string
		columns    []grid.Column
	)
	switch view {
	case export.ViewLedger:
		collection = domain.CollectionExtractions
	case export.ViewLoci:
		collection = domain.CollectionExtractions
		columns = grid.LociColumns()
	case export.ViewPrimers:
		collection = domain.CollectionPrimers
		columns = grid.PrimerColumns()
	default:
		return grid.Projection{}, fmt.Errorf("unknown export view %s", view)
	}
	records, err := recordStore.List(collection)
	if err != nil {
		return grid.Projection{}, fmt.Errorf("list %s: %w", collection, err)
	}
	if columns == nil {
		columns = grid.LedgerColumns(records)
	}
	selection := grid.NewSelection()
	selection.SelectAll(records)
	return grid.Project(records, columns, selection), nil
}
