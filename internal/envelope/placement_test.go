package envelope

import (
	"errors"
	"math"
	"testing"
)

func TestComputePosition(t *testing.T) {
	geom := ContainerGeometry{WidthPx: 800}

	tests := []struct {
		name     string
		point    DropPoint
		wantX    float64
		wantY    float64
		wantPage int
	}{
		{
			name:     "top left of page 1",
			point:    DropPoint{X: 0, Y: 0},
			wantX:    0,
			wantY:    0,
			wantPage: 1,
		},
		{
			name:     "middle of page 1",
			point:    DropPoint{X: 400, Y: PageHeightPx / 2},
			wantX:    50,
			wantY:    50,
			wantPage: 1,
		},
		{
			name:     "just past the page boundary lands on page 2",
			point:    DropPoint{X: 200, Y: PageHeightPx + 10},
			wantX:    25,
			wantY:    10 / PageHeightPx * 100,
			wantPage: 2,
		},
		{
			name:     "deep into page 4",
			point:    DropPoint{X: 800, Y: 3*PageHeightPx + PageHeightPx/4},
			wantX:    100,
			wantY:    25,
			wantPage: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := ComputePosition(tt.point, geom)
			if err != nil {
				t.Fatalf("ComputePosition failed: %v", err)
			}
			if math.Abs(pos.X-tt.wantX) > 1e-9 {
				t.Errorf("X = %v, want %v", pos.X, tt.wantX)
			}
			if math.Abs(pos.Y-tt.wantY) > 1e-9 {
				t.Errorf("Y = %v, want %v", pos.Y, tt.wantY)
			}
			if pos.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", pos.Page, tt.wantPage)
			}
		})
	}
}

// Placement must be deterministic: the same drop point and geometry always
// yield the same position.
func TestComputePositionDeterminism(t *testing.T) {
	geom := ContainerGeometry{WidthPx: 640}
	point := DropPoint{X: 123.4, Y: 2*PageHeightPx + 56.7}

	first, err := ComputePosition(point, geom)
	if err != nil {
		t.Fatalf("ComputePosition failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		pos, err := ComputePosition(point, geom)
		if err != nil {
			t.Fatalf("ComputePosition failed on repeat %d: %v", i, err)
		}
		if pos != first {
			t.Fatalf("repeat %d produced %+v, want %+v", i, pos, first)
		}
	}
}

func TestComputePositionRejectsBadInput(t *testing.T) {
	if _, err := ComputePosition(DropPoint{X: 10, Y: 10}, ContainerGeometry{}); err == nil {
		t.Error("expected error for zero-width container")
	}
	if _, err := ComputePosition(DropPoint{X: -1, Y: 10}, ContainerGeometry{WidthPx: 100}); err == nil {
		t.Error("expected error for negative drop point")
	}
}

func TestPlaceFieldDefaults(t *testing.T) {
	geom := ContainerGeometry{WidthPx: 800}

	fields, placed, err := PlaceField(nil, FieldTypeCheckbox, 0, DropPoint{X: 100, Y: 100}, geom)
	if err != nil {
		t.Fatalf("PlaceField failed: %v", err)
	}
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if placed.ID == "" {
		t.Error("placed field has no id")
	}
	if placed.DefaultChecked {
		t.Error("checkbox should default to unchecked")
	}

	_, attachment, err := PlaceField(fields, FieldTypeAttachment, 1, DropPoint{X: 10, Y: 10}, geom)
	if err != nil {
		t.Fatalf("PlaceField failed: %v", err)
	}
	if !attachment.IsRequired {
		t.Error("attachment should default to required")
	}
	if attachment.AttachmentType == "" {
		t.Error("attachment should carry a default attachment type")
	}

	_, dropdown, err := PlaceField(fields, FieldTypeDropdown, 0, DropPoint{X: 10, Y: 10}, geom)
	if err != nil {
		t.Fatalf("PlaceField failed: %v", err)
	}
	if len(dropdown.Options) != 3 {
		t.Errorf("dropdown should start with 3 placeholder options, got %d", len(dropdown.Options))
	}
}

func TestPlaceFieldDoesNotMutateInput(t *testing.T) {
	geom := ContainerGeometry{WidthPx: 800}
	original, _, err := PlaceField(nil, FieldTypeText, 0, DropPoint{X: 10, Y: 10}, geom)
	if err != nil {
		t.Fatalf("PlaceField failed: %v", err)
	}

	extended, _, err := PlaceField(original, FieldTypeDate, 0, DropPoint{X: 20, Y: 20}, geom)
	if err != nil {
		t.Fatalf("PlaceField failed: %v", err)
	}
	if len(original) != 1 {
		t.Errorf("input slice was mutated: len=%d", len(original))
	}
	if len(extended) != 2 {
		t.Errorf("expected 2 fields, got %d", len(extended))
	}
}

func TestMoveFieldKeepsTypeAndRecipient(t *testing.T) {
	geom := ContainerGeometry{WidthPx: 800}
	fields, placed, err := PlaceField(nil, FieldTypeSignature, 2, DropPoint{X: 40, Y: 40}, geom)
	if err != nil {
		t.Fatalf("PlaceField failed: %v", err)
	}

	moved, err := MoveField(fields, placed.ID, DropPoint{X: 400, Y: PageHeightPx + 50}, geom)
	if err != nil {
		t.Fatalf("MoveField failed: %v", err)
	}

	f := moved[0]
	if f.Type != FieldTypeSignature {
		t.Errorf("type changed to %s", f.Type)
	}
	if f.RecipientIndex != 2 {
		t.Errorf("recipientIndex changed to %d", f.RecipientIndex)
	}
	if f.Page != 2 {
		t.Errorf("Page = %d, want 2", f.Page)
	}
	if f.X != 50 {
		t.Errorf("X = %v, want 50", f.X)
	}
}

func TestMoveFieldUnknownID(t *testing.T) {
	_, err := MoveField(nil, "nope", DropPoint{X: 1, Y: 1}, ContainerGeometry{WidthPx: 100})
	if err == nil {
		t.Fatal("expected error for unknown field id")
	}
	var envErr *EnvelopeError
	if !errors.As(err, &envErr) || envErr.Code() != ErrCodeReference {
		t.Errorf("expected reference error, got %v", err)
	}
}

func TestDeleteField(t *testing.T) {
	geom := ContainerGeometry{WidthPx: 800}
	fields, placed, _ := PlaceField(nil, FieldTypeText, 0, DropPoint{X: 10, Y: 10}, geom)
	fields, second, _ := PlaceField(fields, FieldTypeDate, 0, DropPoint{X: 20, Y: 20}, geom)

	remaining, err := DeleteField(fields, placed.ID)
	if err != nil {
		t.Fatalf("DeleteField failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != second.ID {
		t.Errorf("unexpected remaining fields: %+v", remaining)
	}

	if _, err := DeleteField(remaining, "missing"); err == nil {
		t.Error("expected error deleting unknown field")
	}
}

func TestReconcileRemovedRecipient(t *testing.T) {
	fields := []SignatureField{
		{ID: "a", Type: FieldTypeText, Page: 1, RecipientIndex: 0},
		{ID: "b", Type: FieldTypeText, Page: 1, RecipientIndex: 1},
		{ID: "c", Type: FieldTypeText, Page: 1, RecipientIndex: 2},
	}

	out := ReconcileRemovedRecipient(fields, 1)

	if len(out) != 2 {
		t.Fatalf("expected 2 fields after reconciliation, got %d", len(out))
	}
	if out[0].ID != "a" || out[0].RecipientIndex != 0 {
		t.Errorf("field a changed unexpectedly: %+v", out[0])
	}
	if out[1].ID != "c" || out[1].RecipientIndex != 1 {
		t.Errorf("field c should shift down to index 1: %+v", out[1])
	}
}
