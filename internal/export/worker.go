// Package export renders grid projections to flat artifacts and stores
// them through the blob layer. Exports run asynchronously on a single
// worker; callers enqueue a projection and poll the job by id.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"isolateledger/internal/blob"
	"isolateledger/internal/grid"
	"isolateledger/internal/platform/logger"
)

// Format is an artifact encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// View identifies which grid view is being exported; it fixes the artifact
// file name.
type View string

const (
	ViewLedger  View = "ledger"
	ViewLoci    View = "loci"
	ViewPrimers View = "primers"
)

// Artifact base names per view. The CSV names are the ones users have had
// bookmarked since the original ledger.
var viewBaseNames = map[View]string{
	ViewLedger:  "db-mollusca-all",
	ViewLoci:    "PCR-genomic-loci",
	ViewPrimers: "primers",
}

// ArtifactName returns the fixed blob key of a view/format pair.
func ArtifactName(view View, format Format) (string, error) {
	base, ok := viewBaseNames[view]
	if !ok {
		return "", fmt.Errorf("unknown export view %s", view)
	}
	return base + "." + string(format), nil
}

// Status is the lifecycle stage of an export job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Job tracks one export request.
type Job struct {
	ID          string      `json:"id"`
	View        View        `json:"view"`
	Formats     []Format    `json:"formats"`
	Status      Status      `json:"status"`
	Error       string      `json:"error,omitempty"`
	Artifacts   []blob.Info `json:"artifacts,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

func (j Job) clone() Job {
	dup := j
	dup.Formats = append([]Format(nil), j.Formats...)
	dup.Artifacts = append([]blob.Info(nil), j.Artifacts...)
	return dup
}

// Input is an enqueue request: the projection to serialize and where it
// came from.
type Input struct {
	View       View
	Projection grid.Projection
	Formats    []Format
}

// Metrics counts rendered artifacts.
type Metrics interface {
	ExportRendered(format string)
}

type nopMetrics struct{}

func (nopMetrics) ExportRendered(string) {}

type task struct {
	id    string
	input Input
}

// Worker executes export jobs one at a time.
type Worker struct {
	store   blob.Store
	log     *logger.Logger
	metrics Metrics

	queue chan task
	mu    sync.RWMutex
	jobs  map[string]*Job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker builds an export worker writing to store. log and metrics may
// be nil.
func NewWorker(store blob.Store, log *logger.Logger, metrics Metrics) *Worker {
	if log == nil {
		log = logger.NewNop()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		store:   store,
		log:     log,
		metrics: metrics,
		queue:   make(chan task, 16),
		jobs:    make(map[string]*Job),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins processing queued exports.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop halts the worker and waits for the in-flight job, if any.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case t := <-w.queue:
			w.process(t)
		}
	}
}

// Enqueue schedules an export and returns the queued job snapshot.
func (w *Worker) Enqueue(ctx context.Context, input Input) (Job, error) {
	if _, ok := viewBaseNames[input.View]; !ok {
		return Job{}, fmt.Errorf("unknown export view %s", input.View)
	}
	formats := input.Formats
	if len(formats) == 0 {
		formats = []Format{FormatCSV}
	}
	seen := make(map[Format]struct{}, len(formats))
	uniq := make([]Format, 0, len(formats))
	for _, f := range formats {
		if f != FormatCSV && f != FormatJSON {
			return Job{}, fmt.Errorf("unsupported export format %s", f)
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		uniq = append(uniq, f)
	}
	input.Formats = uniq

	now := time.Now().UTC()
	job := Job{
		ID:        uuid.NewString(),
		View:      input.View,
		Formats:   uniq,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	w.mu.Lock()
	w.jobs[job.ID] = &job
	snapshot := job.clone()
	w.mu.Unlock()

	select {
	case w.queue <- task{id: job.ID, input: input}:
	default:
		w.fail(job.ID, "export queue full")
		return Job{}, fmt.Errorf("export queue full")
	}
	w.log.Infow("export queued", "job", job.ID, "view", input.View, "rows", len(input.Projection.Rows))
	return snapshot, nil
}

// Get returns a snapshot of one job.
func (w *Worker) Get(id string) (Job, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	job, ok := w.jobs[id]
	if !ok {
		return Job{}, false
	}
	return job.clone(), true
}

// Run renders an export synchronously, bypassing the queue. The daemon's
// one-shot export command uses it.
func (w *Worker) Run(ctx context.Context, input Input) ([]blob.Info, error) {
	if len(input.Formats) == 0 {
		input.Formats = []Format{FormatCSV}
	}
	var infos []blob.Info
	for _, format := range input.Formats {
		info, err := w.render(ctx, input.View, format, input.Projection)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (w *Worker) process(t task) {
	w.setStatus(t.id, StatusRunning, "")
	var infos []blob.Info
	for _, format := range t.input.Formats {
		info, err := w.render(w.ctx, t.input.View, format, t.input.Projection)
		if err != nil {
			w.log.Errorw("export failed", "job", t.id, "view", t.input.View, "error", err)
			w.fail(t.id, err.Error())
			return
		}
		infos = append(infos, info)
	}
	w.complete(t.id, infos)
	w.log.Infow("export finished", "job", t.id, "view", t.input.View, "artifacts", len(infos))
}

func (w *Worker) render(ctx context.Context, view View, format Format, proj grid.Projection) (blob.Info, error) {
	name, err := ArtifactName(view, format)
	if err != nil {
		return blob.Info{}, err
	}
	payload, contentType, err := materialize(format, proj)
	if err != nil {
		return blob.Info{}, err
	}
	info, err := w.store.Put(ctx, name, bytes.NewReader(payload), blob.PutOptions{ContentType: contentType})
	if err != nil {
		return blob.Info{}, fmt.Errorf("store artifact %s: %w", name, err)
	}
	w.metrics.ExportRendered(string(format))
	return info, nil
}

// materialize encodes a projection. CSV writes the header row then one row
// per selected record, quoting handled by encoding/csv; JSON wraps the same
// data with the total row count.
func materialize(format Format, proj grid.Projection) ([]byte, string, error) {
	switch format {
	case FormatCSV:
		buf := &bytes.Buffer{}
		writer := csv.NewWriter(buf)
		if err := writer.Write(proj.Header); err != nil {
			return nil, "", err
		}
		for _, row := range proj.Rows {
			if err := writer.Write(row); err != nil {
				return nil, "", err
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/csv", nil
	case FormatJSON:
		payload, err := json.Marshal(proj)
		if err != nil {
			return nil, "", fmt.Errorf("marshal projection: %w", err)
		}
		return payload, "application/json", nil
	default:
		return nil, "", fmt.Errorf("unsupported export format %s", format)
	}
}

func (w *Worker) setStatus(id string, status Status, message string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if job, ok := w.jobs[id]; ok {
		job.Status = status
		job.Error = message
		job.UpdatedAt = now
	}
	w.mu.Unlock()
}

func (w *Worker) complete(id string, artifacts []blob.Info) {
	now := time.Now().UTC()
	w.mu.Lock()
	if job, ok := w.jobs[id]; ok {
		job.Status = StatusSucceeded
		job.Error = ""
		job.Artifacts = artifacts
		job.UpdatedAt = now
		job.CompletedAt = &now
	}
	w.mu.Unlock()
}

func (w *Worker) fail(id, reason string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if job, ok := w.jobs[id]; ok {
		job.Status = StatusFailed
		job.Error = reason
		job.UpdatedAt = now
		job.CompletedAt = &now
	}
	w.mu.Unlock()
}
