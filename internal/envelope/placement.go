package envelope

// placement.go converts absolute pixel drop coordinates from the editor
// canvas into page-relative percentage positions.
//
// The editor renders pages as a continuous vertical strip, so a drop point's
// absolute Y spans multiple pages. Page membership and the page-relative
// offset are derived from a fixed page-height constant rather than measured
// per page.

import (
	"math"
)

// A4 page geometry at CSS pixel density (96dpi).
const (
	PageHeightMM = 297.0
	PxPerMM      = 96.0 / 25.4

	// PageHeightPx is the fixed per-page height used to derive page indexes
	// from absolute drop coordinates.
	PageHeightPx = PageHeightMM * PxPerMM
)

// DropPoint is an absolute pixel coordinate within the editor canvas.
// Y is measured from the top of page 1, across page boundaries.
type DropPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ContainerGeometry describes the rendered page container the drop point is
// relative to.
type ContainerGeometry struct {
	WidthPx float64 `json:"widthPx"`
}

// Position is the page-relative placement computed from a drop point.
type Position struct {
	X    float64
	Y    float64
	Page int
}

// ComputePosition converts an absolute drop point into (x%, y%, page).
//
// page = floor(y / pageHeight) + 1 (1-based); y% is the remainder within
// that page; x% is relative to the container width. The result is
// deterministic for a fixed container geometry.
func ComputePosition(p DropPoint, geom ContainerGeometry) (Position, error) {
	if geom.WidthPx <= 0 {
		return Position{}, NewValidationError("container width must be positive")
	}
	if p.X < 0 || p.Y < 0 {
		return Position{}, NewValidationError("drop point must not be negative")
	}

	page := int(math.Floor(p.Y/PageHeightPx)) + 1
	yWithinPage := math.Mod(p.Y, PageHeightPx)

	pos := Position{
		X:    p.X / geom.WidthPx * 100,
		Y:    yWithinPage / PageHeightPx * 100,
		Page: page,
	}

	// A drop on the far edge still belongs to the page.
	pos.X = math.Min(pos.X, 100)

	return pos, nil
}

// PlaceField creates a new field of the given type at the drop point and
// returns the extended field slice. The input slice is not mutated.
func PlaceField(fields []SignatureField, t FieldType, recipientIndex int, p DropPoint, geom ContainerGeometry) ([]SignatureField, SignatureField, error) {
	if !ValidFieldType(t) {
		return nil, SignatureField{}, NewValidationError("unsupported field type: " + string(t))
	}
	if recipientIndex < 0 {
		return nil, SignatureField{}, NewValidationError("recipient index must not be negative")
	}

	pos, err := ComputePosition(p, geom)
	if err != nil {
		return nil, SignatureField{}, err
	}

	f := NewField(t, recipientIndex)
	f.X = pos.X
	f.Y = pos.Y
	f.Page = pos.Page

	out := CloneFields(fields)
	out = append(out, f)
	return out, f, nil
}

// MoveField recomputes a field's (x, y, page) from a new drop point,
// identically to placement. Type and recipient assignment are unchanged.
func MoveField(fields []SignatureField, fieldID string, p DropPoint, geom ContainerGeometry) ([]SignatureField, error) {
	pos, err := ComputePosition(p, geom)
	if err != nil {
		return nil, err
	}

	out := CloneFields(fields)
	for i := range out {
		if out[i].ID == fieldID {
			out[i].X = pos.X
			out[i].Y = pos.Y
			out[i].Page = pos.Page
			return out, nil
		}
	}
	return nil, NewReferenceError("field not found: " + fieldID)
}

// DeleteField removes the field with the given id and returns the new slice.
func DeleteField(fields []SignatureField, fieldID string) ([]SignatureField, error) {
	out := make([]SignatureField, 0, len(fields))
	found := false
	for _, f := range CloneFields(fields) {
		if f.ID == fieldID {
			found = true
			continue
		}
		out = append(out, f)
	}
	if !found {
		return nil, NewReferenceError("field not found: " + fieldID)
	}
	return out, nil
}

// ReassignFieldRecipient points a field at a different recipient position.
func ReassignFieldRecipient(fields []SignatureField, fieldID string, newIndex int) ([]SignatureField, error) {
	if newIndex < 0 {
		return nil, NewValidationError("recipient index must not be negative")
	}
	out := CloneFields(fields)
	for i := range out {
		if out[i].ID == fieldID {
			out[i].RecipientIndex = newIndex
			return out, nil
		}
	}
	return nil, NewReferenceError("field not found: " + fieldID)
}

// ReconcileRemovedRecipient adjusts field back-references after the
// recipient at the given position was removed: fields owned by that
// recipient are deleted, and references above it shift down one so they
// keep denoting the same people.
func ReconcileRemovedRecipient(fields []SignatureField, removed int) []SignatureField {
	out := make([]SignatureField, 0, len(fields))
	for _, f := range CloneFields(fields) {
		switch {
		case f.RecipientIndex == removed:
			// owner gone, field goes with it
		case f.RecipientIndex > removed:
			f.RecipientIndex--
			out = append(out, f)
		default:
			out = append(out, f)
		}
	}
	return out
}
