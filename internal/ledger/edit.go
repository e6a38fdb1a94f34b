package ledger

import (
	"strconv"
	"strings"
	"time"

	"isolateledger/pkg/domain"
)

// CellState is the lifecycle of one cell's local edit buffer.
type CellState int

const (
	// CellClean means the displayed value equals the last-known store value.
	CellClean CellState = iota
	// CellDirty means the user typed into the buffer; nothing written yet.
	CellDirty
	// CellCommitting means a patch was issued and the confirming snapshot
	// has not arrived.
	CellCommitting
)

// RevertEntry remembers one committed edit: enough to restore the prior
// value of exactly that cell, plus the display label for select cells.
type RevertEntry struct {
	RowKey string
	Field  string
	Value  any
	Label  string
}

// RevertSlot is the single-level undo memory. The session owns one slot and
// hands it to every cell editor by reference; each confirming commit
// overwrites whatever the slot held before. Edits to the locality code
// never land here since reverting a locality selection would need a
// nine-field atomic restore.
type RevertSlot struct {
	entry  RevertEntry
	filled bool
}

// Store overwrites the slot with a new last-edit entry.
func (s *RevertSlot) Store(entry RevertEntry) {
	s.entry = entry
	s.filled = true
}

// Filled reports whether a revert target is available.
func (s *RevertSlot) Filled() bool { return s.filled }

// Peek returns the current entry without consuming it.
func (s *RevertSlot) Peek() (RevertEntry, bool) { return s.entry, s.filled }

// Take consumes the slot. It fails with domain.ErrEmptyRevertSlot when no
// edit is stored; a second revert after a successful one is therefore a
// refused no-op.
func (s *RevertSlot) Take() (RevertEntry, error) {
	if !s.filled {
		return RevertEntry{}, domain.ErrEmptyRevertSlot
	}
	entry := s.entry
	s.entry = RevertEntry{}
	s.filled = false
	return entry, nil
}

// Clear empties the slot.
func (s *RevertSlot) Clear() {
	s.entry = RevertEntry{}
	s.filled = false
}

// RevertPatch consumes the slot and returns the write restoring the
// remembered cell to its prior value.
func RevertPatch(slot *RevertSlot) (rowKey string, patch domain.FieldPatch, err error) {
	entry, err := slot.Take()
	if err != nil {
		return "", nil, err
	}
	return entry.RowKey, domain.FieldPatch{entry.Field: entry.Value}, nil
}

// EditorConfig selects the commit behavior of one cell editor.
type EditorConfig struct {
	Field string
	Kind  domain.FieldKind
	// NoConfirm commits exactly like the default editor but never populates
	// the revert slot. Used for low-stakes annotation and marker columns.
	NoConfirm bool
}

// CellEditor is the per-cell finite-state buffer. It produces patches; the
// caller routes them to the store and feeds observed snapshot values back
// through Observe.
type CellEditor struct {
	rowKey  string
	cfg     EditorConfig
	slot    *RevertSlot
	initial any
	pending any
	buffer  string
	state   CellState
}

// NewCellEditor builds an editor for one cell. initial is the store value
// the cell currently shows; slot is the shared revert slot (may be nil for
// editors that never record reverts).
func NewCellEditor(rowKey string, initial any, cfg EditorConfig, slot *RevertSlot) *CellEditor {
	return &CellEditor{
		rowKey:  rowKey,
		cfg:     cfg,
		slot:    slot,
		initial: initial,
		buffer:  domain.Stringify(initial),
		state:   CellClean,
	}
}

// State returns the current lifecycle state.
func (e *CellEditor) State() CellState { return e.state }

// Display returns what the cell shows right now: the dirty buffer while
// editing, otherwise the last-known value.
func (e *CellEditor) Display() string {
	if e.state == CellClean {
		return domain.Stringify(e.initial)
	}
	return e.buffer
}

// Input records a keystroke-level buffer update. The display changes
// immediately; nothing is written.
func (e *CellEditor) Input(raw string) {
	e.buffer = raw
	e.state = CellDirty
}

// Commit ends the edit. An empty buffer is a discard: no write, no revert
// slot change, state back to clean. Otherwise the buffer is normalized per
// the field kind, the prior value is remembered in the revert slot (unless
// the editor opted out or the field is the locality code), and the patch to
// issue is returned with wrote=true.
func (e *CellEditor) Commit() (patch domain.FieldPatch, wrote bool) {
	if e.state != CellDirty {
		return nil, false
	}
	raw := strings.TrimSpace(e.buffer)
	if raw == "" {
		e.buffer = domain.Stringify(e.initial)
		e.state = CellClean
		return nil, false
	}
	value := normalizeValue(e.cfg.Kind, raw)
	if e.slot != nil && !e.cfg.NoConfirm && e.cfg.Field != domain.FieldLocalityCode {
		e.slot.Store(RevertEntry{RowKey: e.rowKey, Field: e.cfg.Field, Value: e.initial})
	}
	e.pending = value
	e.state = CellCommitting
	return domain.FieldPatch{e.cfg.Field: value}, true
}

// Observe feeds a snapshot-delivered value back into the editor. A clean
// cell just tracks the store; a committing cell returns to clean once the
// store echoes the written value (or any other writer's newer one).
func (e *CellEditor) Observe(value any) {
	switch e.state {
	case CellClean:
		e.initial = value
	case CellCommitting:
		e.initial = value
		e.pending = nil
		e.buffer = domain.Stringify(value)
		e.state = CellClean
	}
}

// BoxSelection is the prior state of a box select cell: stored key and the
// label the select displayed.
type BoxSelection struct {
	Value string
	Label string
}

// CommitBoxSelection builds the single patch of a box select commit: the
// box key plus its denormalized payload from the resolver. The prior
// selection, value and label both, goes into the revert slot so one revert
// restores the reference field and its visual state together.
func CommitBoxSelection(rowKey string, prior BoxSelection, opt BoxOption, slot *RevertSlot) domain.FieldPatch {
	if slot != nil {
		slot.Store(RevertEntry{RowKey: rowKey, Field: domain.FieldBox, Value: prior.Value, Label: prior.Label})
	}
	patch := opt.Patch()
	patch[domain.FieldBox] = opt.Key
	return patch
}

// normalizeValue converts a committed raw string into the stored
// representation for the field kind. Unparseable dates and numbers commit
// as typed rather than failing the edit.
func normalizeValue(kind domain.FieldKind, raw string) any {
	switch kind {
	case domain.KindNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
		return raw
	case domain.KindDate:
		if iso, ok := normalizeDate(raw); ok {
			return iso
		}
		return raw
	default:
		return raw
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"2.1.2006",
	time.RFC3339,
}

// normalizeDate canonicalizes the accepted input representations to an ISO
// yyyy-mm-dd string.
func normalizeDate(raw string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
