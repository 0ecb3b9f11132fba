package envelope

// history.go implements linear undo/redo over signatureFields snapshots:
// an append-only log with a movable cursor. New edits truncate any entries
// after the cursor (the discarded future is unreachable afterwards).

// HistoryEntry is an immutable snapshot of the field set at a point in time.
type HistoryEntry struct {
	Fields   []SignatureField
	Checksum string
}

// History holds the ordered snapshot log and the cursor. The zero value is
// not usable; call NewHistory with the initial field set.
type History struct {
	entries []HistoryEntry
	cursor  int
}

// NewHistory creates a history whose first entry is a snapshot of the given
// fields.
func NewHistory(fields []SignatureField) (*History, error) {
	sum, err := FieldsChecksum(fields)
	if err != nil {
		return nil, WrapInternalError(err, "failed to snapshot initial fields")
	}
	return &History{
		entries: []HistoryEntry{{Fields: CloneFields(fields), Checksum: sum}},
		cursor:  0,
	}, nil
}

// Record appends a snapshot of newFields and advances the cursor to it.
//
// If newFields matches the snapshot currently under the cursor it is a
// no-op: undo/redo-triggered re-renders must not create duplicate entries.
// Otherwise any entries after the cursor are discarded first (standard
// linear-undo semantics).
func (h *History) Record(newFields []SignatureField) error {
	sum, err := FieldsChecksum(newFields)
	if err != nil {
		return WrapInternalError(err, "failed to snapshot fields")
	}
	if sum == h.entries[h.cursor].Checksum {
		return nil
	}

	h.entries = append(h.entries[:h.cursor+1], HistoryEntry{
		Fields:   CloneFields(newFields),
		Checksum: sum,
	})
	h.cursor = len(h.entries) - 1
	return nil
}

// Undo moves the cursor back one entry and returns that snapshot. At the
// first entry it is a no-op and returns the current snapshot with ok=false.
func (h *History) Undo() ([]SignatureField, bool) {
	if h.cursor == 0 {
		return CloneFields(h.entries[h.cursor].Fields), false
	}
	h.cursor--
	return CloneFields(h.entries[h.cursor].Fields), true
}

// Redo moves the cursor forward one entry and returns that snapshot. At the
// tail it is a no-op and returns the current snapshot with ok=false.
func (h *History) Redo() ([]SignatureField, bool) {
	if h.cursor >= len(h.entries)-1 {
		return CloneFields(h.entries[h.cursor].Fields), false
	}
	h.cursor++
	return CloneFields(h.entries[h.cursor].Fields), true
}

// Current returns the snapshot under the cursor.
func (h *History) Current() []SignatureField {
	return CloneFields(h.entries[h.cursor].Fields)
}

// CanUndo reports whether an undo would move the cursor.
func (h *History) CanUndo() bool { return h.cursor > 0 }

// CanRedo reports whether a redo would move the cursor.
func (h *History) CanRedo() bool { return h.cursor < len(h.entries)-1 }

// Len returns the number of entries in the log.
func (h *History) Len() int { return len(h.entries) }
