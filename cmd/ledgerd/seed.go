package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"isolateledger/internal/infra/store"
	"isolateledger/internal/ledger"
	"isolateledger/pkg/domain"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the storage-box catalog into the store",
	Long: `Insert the known storage boxes and their sites into the storage
collection. Boxes whose label already exists are left untouched, so the
command is safe to re-run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func runSeed(ctx context.Context) error {
	recordStore, closeStore, err := store.Open(ctx, storeConfig())
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer func() { _ = closeStore() }()

	svc := ledger.NewService(recordStore)
	added, err := svc.SeedStorage(boxCatalog)
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d storage boxes\n", added)
	return nil
}

// boxCatalog is the storage-box backup carried over from the previous
// system, labels and sites verbatim.
var boxCatalog = []domain.FieldPatch{
	{domain.FieldBoxLabel: "E1", domain.FieldBoxSite: "-80°C (1S24)"},
	{domain.FieldBoxLabel: "OP1", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "AG1", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "G2", domain.FieldBoxSite: "-80°C (1S24)"},
	{domain.FieldBoxLabel: "UCE1", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "AG2", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "HD3", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "Eva L.", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "E2", domain.FieldBoxSite: "-80°C (1S24)"},
	{domain.FieldBoxLabel: "UCE2", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "Nekola", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "G1", domain.FieldBoxSite: "-80°C (Freezer room, D31)"},
	{domain.FieldBoxLabel: "G3", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "VYŘAZENO", domain.FieldBoxSite: ""},
	{domain.FieldBoxLabel: "G4", domain.FieldBoxSite: "extraction room -20, new freezer"},
	{domain.FieldBoxLabel: "HD1", domain.FieldBoxSite: "-80°C (1S24)"},
	{domain.FieldBoxLabel: "HD2", domain.FieldBoxSite: "-80°C (1S24)"},
	{domain.FieldBoxLabel: "NE1", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "HD5", domain.FieldBoxSite: "-80°C (1S24)"},
	{domain.FieldBoxLabel: "DF1", domain.FieldBoxSite: "-80°C (1S24)"},
	{domain.FieldBoxLabel: "HD7", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "NE2", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "NE3", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "green rack", domain.FieldBoxSite: "in the fridge"},
	{domain.FieldBoxLabel: "P1", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "HD6", domain.FieldBoxSite: "extraction room -20"},
	{domain.FieldBoxLabel: "Jeff Haplotrema extractions", domain.FieldBoxSite: "-80°C (1S24)"},
	{domain.FieldBoxLabel: "P2", domain.FieldBoxSite: "-80°C (1S24)"},
	{domain.FieldBoxLabel: "S1", domain.FieldBoxSite: "-80°C (1S24)"},
}
