package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
)

func waitForSave(t *testing.T, c *DraftClient) saveOutcome {
	t.Helper()
	select {
	case out := <-c.saved:
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a save")
		return saveOutcome{}
	}
}

func TestDebounceCoalescesBurstsIntoOneSave(t *testing.T) {
	store := newFakeDraftStore()
	client := NewDraftClient(store, 20*time.Millisecond, nil)
	defer client.Close()

	env := envelope.New("doc-1")
	for i := range 5 {
		env.Message = string(rune('a' + i))
		client.ScheduleSave(env, envelope.NewRequest)
	}

	out := waitForSave(t, client)
	if out.Err != nil {
		t.Fatalf("save failed: %v", out.Err)
	}
	if got := store.saveCount(); got != 1 {
		t.Errorf("burst of 5 mutations produced %d saves, want 1", got)
	}

	// the saved snapshot is the latest one
	draft, ok, err := store.Load(context.Background(), "doc-1")
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	if draft.Message != "e" {
		t.Errorf("saved message = %q, want the last mutation", draft.Message)
	}
}

func TestDebounceSavesAgainAfterQuietPeriod(t *testing.T) {
	store := newFakeDraftStore()
	client := NewDraftClient(store, 10*time.Millisecond, nil)
	defer client.Close()

	env := envelope.New("doc-1")
	client.ScheduleSave(env, envelope.NewRequest)
	waitForSave(t, client)

	env.Message = "second edit"
	client.ScheduleSave(env, envelope.NewRequest)
	waitForSave(t, client)

	if got := store.saveCount(); got != 2 {
		t.Errorf("saves = %d, want 2", got)
	}
}

func TestScheduleSaveNeverArmsInTemplateMode(t *testing.T) {
	store := newFakeDraftStore()
	client := NewDraftClient(store, 5*time.Millisecond, nil)
	defer client.Close()

	env := envelope.New("doc-1")
	env.IsTemplate = true
	client.ScheduleSave(env, envelope.TemplateAuthoring)

	// also reject the inconsistent combination of a template envelope in a
	// request mode
	client.ScheduleSave(env, envelope.NewRequest)

	time.Sleep(30 * time.Millisecond)
	if got := store.saveCount(); got != 0 {
		t.Errorf("template mode produced %d saves, want 0", got)
	}
}

func TestSaveFailureIsTransient(t *testing.T) {
	store := newFakeDraftStore()
	store.failNext = errors.New("boom")
	client := NewDraftClient(store, 5*time.Millisecond, nil)
	defer client.Close()

	env := envelope.New("doc-1")
	client.ScheduleSave(env, envelope.NewRequest)

	out := waitForSave(t, client)
	if out.Err == nil {
		t.Fatal("expected the first save to fail")
	}
	if client.LastError() == nil {
		t.Error("LastError not recorded after a failed save")
	}

	// the next debounce tick retries and succeeds
	client.ScheduleSave(env, envelope.NewRequest)
	out = waitForSave(t, client)
	if out.Err != nil {
		t.Fatalf("retry failed: %v", out.Err)
	}
	if got := store.saveCount(); got != 1 {
		t.Errorf("saves = %d, want 1", got)
	}
}

func TestDiscardCancelsPendingSave(t *testing.T) {
	store := newFakeDraftStore()
	client := NewDraftClient(store, 20*time.Millisecond, nil)
	defer client.Close()

	env := envelope.New("doc-1")
	if err := client.SaveNow(context.Background(), env, envelope.NewRequest); err != nil {
		t.Fatalf("SaveNow failed: %v", err)
	}
	if !store.has("doc-1") {
		t.Fatal("draft not written")
	}

	client.ScheduleSave(env, envelope.NewRequest)
	if err := client.Discard(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Discard failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if store.has("doc-1") {
		t.Error("a pending save resurrected the discarded draft")
	}
}

func TestCloseDropsPendingSave(t *testing.T) {
	store := newFakeDraftStore()
	client := NewDraftClient(store, 10*time.Millisecond, nil)

	client.ScheduleSave(envelope.New("doc-1"), envelope.NewRequest)
	client.Close()

	time.Sleep(40 * time.Millisecond)
	if got := store.saveCount(); got != 0 {
		t.Errorf("closed client wrote %d saves, want 0", got)
	}
}
