package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecorderExposesCounters(t *testing.T) {
	rec := NewRecorder()
	rec.PatchApplied("extractions")
	rec.PatchApplied("extractions")
	rec.SnapshotFanned("extractions")
	rec.ExportRendered("csv")
	rec.RevertTaken()
	rec.SampleCreated()

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	text := string(body)

	for _, want := range []string{
		`isolateledger_patches_applied_total{collection="extractions"} 2`,
		`isolateledger_snapshots_fanned_out_total{collection="extractions"} 1`,
		`isolateledger_exports_rendered_total{format="csv"} 1`,
		`isolateledger_reverts_taken_total 1`,
		`isolateledger_samples_created_total 1`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("exposition missing %q:\n%s", want, text)
		}
	}
}
