package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"botanize/internal/confidence"
	"botanize/internal/entitlement"
	"botanize/internal/journal"
	"botanize/internal/observe"
	"botanize/internal/quota"
	"botanize/internal/recognition"
	"botanize/internal/session"
	"botanize/internal/taxonomy"
	"botanize/internal/testsupport"
	"botanize/internal/traits"
)

func newObserveSession(t *testing.T, tier entitlement.Tier) *session.ObserveSession {
	t.Helper()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tracker := quota.NewTracker(quota.NewMemoryStore(), entitlement.NewTierGate(tier),
		quota.WithClock(func() time.Time { return now }),
		quota.WithKeys(t.Name()+"_count", t.Name()+"_date"))
	matcher := observe.NewMatcher(testsupport.NewTaxonomyStore(), nil)
	s, err := session.NewObserveSession(matcher, tracker, traits.OrganLeaf, nil)
	if err != nil {
		t.Fatalf("NewObserveSession returned error: %v", err)
	}
	return s
}

func TestObserveSessionRejectsAutoOrgan(t *testing.T) {
	matcher := observe.NewMatcher(testsupport.NewTaxonomyStore(), nil)
	if _, err := session.NewObserveSession(matcher, nil, traits.OrganAuto, nil); !errors.Is(err, traits.ErrUnknownOrgan) {
		t.Fatalf("expected ErrUnknownOrgan, got %v", err)
	}
}

func TestObserveSessionFreeTierStopsAtLimit(t *testing.T) {
	s := newObserveSession(t, entitlement.TierFree)
	ctx := context.Background()

	answers := []struct {
		category taxonomy.Category
		value    string
	}{
		{taxonomy.LeafType, "Simple"},
		{taxonomy.LeafShape, "Lobed"},
		{taxonomy.LeafMargin, "Lobed"},
	}
	for _, a := range answers {
		if err := s.Answer(ctx, a.category, a.value); err != nil {
			t.Fatalf("Answer(%s) returned error: %v", a.category, err)
		}
	}
	if s.Index() != 3 || s.Answered() != 3 {
		t.Fatalf("unexpected progress: index=%d answered=%d", s.Index(), s.Answered())
	}

	err := s.Answer(ctx, taxonomy.LeafArrangement, "Alternate")
	if !errors.Is(err, session.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if s.Index() != 3 {
		t.Fatalf("denied answer must not advance, index=%d", s.Index())
	}
	if _, ok := s.Selection().Get(taxonomy.LeafArrangement); ok {
		t.Fatal("denied answer must not be stored")
	}

	results := s.Results()
	if len(results) == 0 || results[0].Species.ScientificName != "Quercus alba" || results[0].Percentage != 100 {
		t.Fatalf("expected oak to lead, got %+v", results)
	}
}

func TestObserveSessionPaidTierIsUnlimited(t *testing.T) {
	s := newObserveSession(t, entitlement.TierPro)
	ctx := context.Background()
	for _, q := range s.Questions() {
		if err := s.Answer(ctx, q.Category, "anything"); err != nil {
			t.Fatalf("Answer(%s) returned error: %v", q.Category, err)
		}
	}
	if !s.Done() {
		t.Fatal("expected session done after answering every question")
	}
	if _, ok := s.Current(); ok {
		t.Fatal("expected no current question when done")
	}
}

func TestObserveSessionNavigation(t *testing.T) {
	s := newObserveSession(t, entitlement.TierPro)
	ctx := context.Background()

	if err := s.Answer(ctx, taxonomy.LeafType, "Simple"); err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	s.Skip()
	if current, _ := s.Current(); current.Category != taxonomy.LeafMargin {
		t.Fatalf("expected margin after skip, got %s", current.Category)
	}

	s.Back()
	s.Back()
	if current, _ := s.Current(); current.Category != taxonomy.LeafType {
		t.Fatalf("expected leaf type after two backs, got %s", current.Category)
	}
	if len(s.Selection()) != 0 {
		t.Fatalf("back should forget the revisited answer, got %v", s.Selection())
	}
	s.Back()
	if s.Index() != 0 {
		t.Fatalf("back at start must stay at zero, got %d", s.Index())
	}

	if err := s.Answer(ctx, taxonomy.FruitType, "Samara"); err == nil {
		t.Fatal("expected error answering a question from another organ")
	}
	if err := s.Answer(ctx, taxonomy.LeafType, "  "); err == nil {
		t.Fatal("expected error for blank answer")
	}

	if err := s.Answer(ctx, taxonomy.LeafType, "Simple"); err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	if err := s.SetOrgan(traits.OrganFruit); err != nil {
		t.Fatalf("SetOrgan returned error: %v", err)
	}
	if s.Index() != 0 || len(s.Selection()) != 0 {
		t.Fatal("expected organ switch to clear the session")
	}
	if err := s.Answer(ctx, taxonomy.FruitType, "Samara"); err != nil {
		t.Fatalf("Answer returned error: %v", err)
	}
	s.Reset()
	if s.Index() != 0 || s.Answered() != 0 || len(s.Selection()) != 0 {
		t.Fatal("expected reset to clear progress")
	}
}

type fakeRecognizer struct {
	candidates []recognition.Candidate
	err        error
	calls      int
}

func (f *fakeRecognizer) Identify(context.Context, recognition.Request) ([]recognition.Candidate, error) {
	f.calls++
	return f.candidates, f.err
}

type fakeJournal struct {
	entries []journal.Entry
}

func (f *fakeJournal) Add(_ context.Context, entry journal.Entry) (journal.Entry, error) {
	entry.ID = "entry-1"
	f.entries = append(f.entries, entry)
	return entry, nil
}

func providerCandidates() []recognition.Candidate {
	return []recognition.Candidate{
		{ScientificName: "Quercus alba", Family: "Fagaceae", Score: 0.30, Rank: 0},
		{ScientificName: "Acer rubrum", CommonNames: []string{"Red maple"}, Family: "Sapindaceae", Score: 0.28, Rank: 1},
	}
}

func newIdentifier(rec recognition.Recognizer, tier entitlement.Tier, j session.JournalWriter) *session.Identifier {
	adjuster := confidence.NewAdjuster(testsupport.NewTaxonomyStore(), confidence.DefaultWeights(), nil)
	return session.NewIdentifier(rec, adjuster, entitlement.NewTierGate(tier), j, nil)
}

func TestIdentifyRequiresPaidTier(t *testing.T) {
	rec := &fakeRecognizer{candidates: providerCandidates()}
	id := newIdentifier(rec, entitlement.TierFree, nil)
	_, err := id.Identify(context.Background(), session.IdentifyRequest{
		Request: recognition.Request{Image: []byte("img"), Organ: traits.OrganLeaf},
	})
	if !errors.Is(err, session.ErrEntitlementRequired) {
		t.Fatalf("expected ErrEntitlementRequired, got %v", err)
	}
	if rec.calls != 0 {
		t.Fatal("locked feature must not reach the recognizer")
	}
}

func TestIdentifyCaptureKeepsProviderOrder(t *testing.T) {
	rec := &fakeRecognizer{candidates: providerCandidates()}
	id := newIdentifier(rec, entitlement.TierLifetime, nil)
	result, err := id.Identify(context.Background(), session.IdentifyRequest{
		Request: recognition.Request{Image: []byte("img"), Organ: traits.OrganLeaf},
	})
	if err != nil {
		t.Fatalf("Identify returned error: %v", err)
	}
	if result.Mode != journal.ModeCapture {
		t.Fatalf("expected capture mode, got %s", result.Mode)
	}
	best, ok := result.Best()
	if !ok || best.Candidate.ScientificName != "Quercus alba" || best.Score != 0.30 {
		t.Fatalf("unexpected best candidate: %+v", best)
	}
}

func TestIdentifyBothModeReordersAndJournals(t *testing.T) {
	rec := &fakeRecognizer{candidates: providerCandidates()}
	j := &fakeJournal{}
	id := newIdentifier(rec, entitlement.TierPro, j)

	result, err := id.Identify(context.Background(), session.IdentifyRequest{
		Request:  recognition.Request{Image: []byte("img"), Organ: traits.OrganLeaf},
		Verified: traits.Selection{taxonomy.LeafArrangement: "Opposite"},
		Save:     true,
	})
	if err != nil {
		t.Fatalf("Identify returned error: %v", err)
	}
	if result.Mode != journal.ModeBoth {
		t.Fatalf("expected both mode, got %s", result.Mode)
	}
	var got []string
	for _, r := range result.Ranked {
		got = append(got, r.Candidate.ScientificName)
	}
	if diff := cmp.Diff([]string{"Acer rubrum", "Quercus alba"}, got); diff != "" {
		t.Fatalf("ranking mismatch (-want +got):\n%s", diff)
	}
	if len(j.entries) != 1 || result.Entry == nil {
		t.Fatalf("expected one journal entry, got %d", len(j.entries))
	}
	entry := j.entries[0]
	if entry.ScientificName != "Acer rubrum" || entry.Mode != journal.ModeBoth || entry.RawScore != 0.30 || entry.VerifiedCount != 1 {
		t.Fatalf("unexpected journal entry: %+v", entry)
	}
	if entry.CommonName != "Red maple" {
		t.Fatalf("unexpected common name %q", entry.CommonName)
	}
}

func TestIdentifyBothModeNeedsOrgan(t *testing.T) {
	rec := &fakeRecognizer{candidates: providerCandidates()}
	id := newIdentifier(rec, entitlement.TierPro, nil)
	_, err := id.Identify(context.Background(), session.IdentifyRequest{
		Request:  recognition.Request{Image: []byte("img"), Organ: traits.OrganAuto},
		Verified: traits.Selection{taxonomy.LeafShape: "Ovate"},
	})
	if !errors.Is(err, traits.ErrUnknownOrgan) {
		t.Fatalf("expected ErrUnknownOrgan, got %v", err)
	}
}

func TestIdentifySaveNeedsJournal(t *testing.T) {
	rec := &fakeRecognizer{candidates: providerCandidates()}
	id := newIdentifier(rec, entitlement.TierPro, nil)
	_, err := id.Identify(context.Background(), session.IdentifyRequest{
		Request: recognition.Request{Image: []byte("img")},
		Save:    true,
	})
	if err == nil {
		t.Fatal("expected error when journal disabled")
	}
	if rec.calls != 0 {
		t.Fatal("recognizer must not be called when the save cannot happen")
	}
}

func TestIdentifyPropagatesRecognizerError(t *testing.T) {
	boom := errors.New("provider down")
	id := newIdentifier(&fakeRecognizer{err: boom}, entitlement.TierPro, nil)
	_, err := id.Identify(context.Background(), session.IdentifyRequest{
		Request: recognition.Request{Image: []byte("img")},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestIdentifyRejectsMissingImage(t *testing.T) {
	id := newIdentifier(&fakeRecognizer{}, entitlement.TierPro, nil)
	if _, err := id.Identify(context.Background(), session.IdentifyRequest{}); !errors.Is(err, recognition.ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func TestObservationEntry(t *testing.T) {
	result := observe.Result{
		Species:    taxonomy.Species{ScientificName: "Acer rubrum", CommonName: "Red maple", Family: "Sapindaceae"},
		Percentage: 50,
		Matched:    1,
		Compared:   2,
	}
	entry := session.ObservationEntry(result, traits.Selection{taxonomy.LeafType: "Simple", taxonomy.LeafShape: ""})
	if entry.Mode != journal.ModeObserve || entry.AdjustedScore != 0.5 || entry.VerifiedCount != 1 || len(entry.VerifiedTraits) != 1 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if journal.DefaultNotes(entry) != "Identified via Observe mode with 50% trait match." {
		t.Fatalf("unexpected notes %q", journal.DefaultNotes(entry))
	}
}
