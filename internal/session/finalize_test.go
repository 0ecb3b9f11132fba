package session

import (
	"context"
	"errors"
	"testing"

	"github.com/brice-akama/my-pdf-analytics-sub001/internal/envelope"
)

const testOrigin = "https://esign.example.com"

// walkToReview drives a session through the full flow: two signers, one
// field each, ending in the review step.
func walkToReview(t *testing.T, s *EnvelopeSession) {
	t.Helper()
	addSigner(t, s, "Ana", "ana@x.com")
	addSigner(t, s, "Ben", "ben@x.com")
	if err := s.NextStep(context.Background()); err != nil {
		t.Fatalf("NextStep failed: %v", err)
	}
	placeSignature(t, s, 0, 100, 100)
	placeSignature(t, s, 1, 200, 1400)
	if err := s.NextStep(context.Background()); err != nil {
		t.Fatalf("NextStep into review failed: %v", err)
	}
}

func TestFinalizeSequentialIssuance(t *testing.T) {
	drafts := newFakeDraftStore()
	s, _, _, issuance, _ := newTestSession(t, envelope.NewRequest, drafts)
	walkToReview(t, s)
	s.SetSigningOrder(envelope.SigningOrderSequential)
	if err := s.AddCCRecipient("Cleo", "cleo@x.com", envelope.CCNotifyCompleted); err != nil {
		t.Fatalf("AddCCRecipient failed: %v", err)
	}
	if err := s.drafts.SaveNow(context.Background(), s.Envelope(), envelope.NewRequest); err != nil {
		t.Fatalf("SaveNow failed: %v", err)
	}

	result, err := s.Finalize(context.Background(), testOrigin)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	if result.Template {
		t.Error("request finalization reported a template save")
	}
	if len(result.SigningLinks) != 2 {
		t.Fatalf("signing links = %d, want 2", len(result.SigningLinks))
	}

	ana, ben := result.SigningLinks[0], result.SigningLinks[1]
	if ana.URL != testOrigin+"/sign/tok-0?recipient=ana%40x.com" {
		t.Errorf("Ana's link = %q", ana.URL)
	}
	if ben.URL != testOrigin+"/sign/tok-1?recipient=ben%40x.com" {
		t.Errorf("Ben's link = %q", ben.URL)
	}
	// sequential: only the first recipient is notified now
	if ana.Status != StatusPendingNotification {
		t.Errorf("Ana's status = %q, want %q", ana.Status, StatusPendingNotification)
	}
	if ben.Status != StatusWaiting {
		t.Errorf("Ben's status = %q, want %q", ben.Status, StatusWaiting)
	}

	if len(result.CCLinks) != 1 {
		t.Fatalf("cc links = %d, want 1", len(result.CCLinks))
	}
	if result.CCLinks[0].URL != testOrigin+"/cc/cc-tok-0?email=cleo%40x.com" {
		t.Errorf("Cleo's link = %q", result.CCLinks[0].URL)
	}

	if result.ExpiresAt == nil {
		t.Error("ExpiresAt not set")
	}
	if !s.Finalized() {
		t.Error("session not marked finalized")
	}
	if drafts.has("doc-1") {
		t.Error("draft not discarded after issuance")
	}

	issued := issuance.issued()
	if len(issued) != 1 {
		t.Fatalf("issuance calls = %d, want 1", len(issued))
	}
	if issued[0].Checksum == "" {
		t.Error("issuance request has no idempotency checksum")
	}
	if issued[0].SigningOrder != envelope.SigningOrderSequential {
		t.Errorf("issued signing order = %q", issued[0].SigningOrder)
	}
}

func TestFinalizeAnyOrderNotifiesEveryone(t *testing.T) {
	s, _, _, _, _ := newTestSession(t, envelope.NewRequest, nil)
	walkToReview(t, s)

	result, err := s.Finalize(context.Background(), testOrigin)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	for _, link := range result.SigningLinks {
		if link.Status != StatusPendingNotification {
			t.Errorf("%s status = %q, want %q", link.Recipient, link.Status, StatusPendingNotification)
		}
	}
}

func TestFinalizeFailureLeavesSessionRetryable(t *testing.T) {
	drafts := newFakeDraftStore()
	s, _, _, issuance, _ := newTestSession(t, envelope.NewRequest, drafts)
	walkToReview(t, s)
	if err := s.drafts.SaveNow(context.Background(), s.Envelope(), envelope.NewRequest); err != nil {
		t.Fatalf("SaveNow failed: %v", err)
	}
	before := s.Envelope()

	issuance.failNext = errors.New("server rejected the request")
	_, err := s.Finalize(context.Background(), testOrigin)
	if err == nil {
		t.Fatal("expected finalization to fail")
	}
	var ee *envelope.EnvelopeError
	if !errors.As(err, &ee) || ee.Code() != envelope.ErrCodeFinalization {
		t.Errorf("expected a finalization error, got %v", err)
	}

	// nothing moved: session stays retryable in the review step
	if s.Finalized() {
		t.Error("session marked finalized despite the failure")
	}
	if s.Step() != envelope.StepReview {
		t.Errorf("step = %d, want review", s.Step())
	}
	if !drafts.has("doc-1") {
		t.Error("draft discarded despite the failure")
	}
	after := s.Envelope()
	beforeSum, _ := before.Checksum()
	afterSum, _ := after.Checksum()
	if beforeSum != afterSum {
		t.Error("envelope mutated by the failed finalization")
	}

	// the retry succeeds
	if _, err := s.Finalize(context.Background(), testOrigin); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !s.Finalized() {
		t.Error("retry did not finalize the session")
	}
}

func TestFinalizeRejectsBadExpiration(t *testing.T) {
	s, _, _, _, _ := newTestSession(t, envelope.NewRequest, nil)
	walkToReview(t, s)
	s.SetSendSettings(func(e *envelope.Envelope) { e.ExpirationDays = "soon" })

	_, err := s.Finalize(context.Background(), testOrigin)
	var ee *envelope.EnvelopeError
	if !errors.As(err, &ee) || ee.Code() != envelope.ErrCodeValidation {
		t.Errorf("expected a validation error for a bad expiration, got %v", err)
	}
}

func TestFinalizeTwiceIsRejected(t *testing.T) {
	s, _, _, _, _ := newTestSession(t, envelope.NewRequest, nil)
	walkToReview(t, s)

	if _, err := s.Finalize(context.Background(), testOrigin); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if _, err := s.Finalize(context.Background(), testOrigin); err == nil {
		t.Error("second finalization succeeded")
	}
}

func TestFinalizeTemplateSavesNoLinks(t *testing.T) {
	drafts := newFakeDraftStore()
	// stale draft left behind by an earlier request session on the document
	if _, err := drafts.Save(context.Background(), envelope.Draft{DocumentID: "doc-1"}); err != nil {
		t.Fatalf("seeding draft failed: %v", err)
	}

	s, _, _, issuance, tpls := newTestSession(t, envelope.TemplateAuthoring, drafts)
	s.AddRecipient("Tenant", "", "Tenant")
	s.AddRecipient("Landlord", "", "Landlord")
	if err := s.NextStep(context.Background()); err != nil {
		t.Fatalf("NextStep failed: %v", err)
	}
	placeSignature(t, s, 0, 100, 100)

	result, err := s.Finalize(context.Background(), testOrigin)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if !result.Template {
		t.Error("template finalization did not report a template save")
	}
	if len(result.SigningLinks) != 0 || len(result.CCLinks) != 0 {
		t.Error("template finalization issued links")
	}

	tpl, ok, err := tpls.LoadTemplate(context.Background(), "doc-1")
	if err != nil || !ok {
		t.Fatalf("template not saved: %v", err)
	}
	if len(tpl.Recipients) != 2 || len(tpl.SignatureFields) != 1 {
		t.Errorf("unexpected template: %d roles, %d fields", len(tpl.Recipients), len(tpl.SignatureFields))
	}

	if len(issuance.issued()) != 0 {
		t.Error("template finalization called the issuance service")
	}
	if drafts.has("doc-1") {
		t.Error("draft not discarded after successful template finalization")
	}
}

func TestFinalizeTemplateFailureIsRetryable(t *testing.T) {
	s, _, _, _, tpls := newTestSession(t, envelope.TemplateAuthoring, nil)
	s.AddRecipient("Tenant", "", "Tenant")

	tpls.failNext = errors.New("boom")
	if _, err := s.Finalize(context.Background(), testOrigin); err == nil {
		t.Fatal("expected template save to fail")
	}
	if s.Finalized() {
		t.Error("session marked finalized despite the failure")
	}
	if _, err := s.Finalize(context.Background(), testOrigin); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
}

func TestSigningURLEscapesComponents(t *testing.T) {
	url := SigningURL("https://x.com/", "tok/1", "a+b@x.com")
	if url != "https://x.com/sign/tok%2F1?recipient=a%2Bb%40x.com" {
		t.Errorf("SigningURL = %q", url)
	}
	cc := CCURL("https://x.com", "t", "c@x.com")
	if cc != "https://x.com/cc/t?email=c%40x.com" {
		t.Errorf("CCURL = %q", cc)
	}
}
