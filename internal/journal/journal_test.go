package journal_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"botanize/internal/journal"
	"botanize/internal/taxonomy"
	"botanize/internal/traits"
)

func openJournal(t *testing.T, now func() time.Time) *journal.Journal {
	t.Helper()
	j, err := journal.Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"), journal.WithClock(now))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestDefaultNotes(t *testing.T) {
	tests := []struct {
		name  string
		entry journal.Entry
		want  string
	}{
		{
			name: "both",
			entry: journal.Entry{
				Mode:           journal.ModeBoth,
				RawScore:       0.42,
				AdjustedScore:  0.47,
				VerifiedTraits: traits.Selection{taxonomy.LeafShape: "Ovate"},
			},
			want: "Identified via Both mode. Original: 42%, Adjusted: 47%. Verified 1 traits.",
		},
		{
			name:  "capture",
			entry: journal.Entry{Mode: journal.ModeCapture, RawScore: 0.815},
			want:  "Identified via Capture mode with 81% confidence.",
		},
		{
			name:  "observe",
			entry: journal.Entry{Mode: journal.ModeObserve, AdjustedScore: 0.5},
			want:  "Identified via Observe mode with 50% trait match.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := journal.DefaultNotes(tc.entry); got != tc.want {
				t.Fatalf("DefaultNotes = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAddAndGetRoundTrip(t *testing.T) {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	j := openJournal(t, func() time.Time { return created })
	ctx := context.Background()

	saved, err := j.Add(ctx, journal.Entry{
		ScientificName: " Acer rubrum ",
		CommonName:     "Red maple",
		Family:         "Sapindaceae",
		Mode:           "Both",
		RawScore:       0.42,
		AdjustedScore:  0.47,
		VerifiedCount:  1,
		VerifiedTraits: traits.Selection{taxonomy.LeafShape: "Palmate", taxonomy.LeafMargin: " "},
	})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected generated id")
	}
	if saved.Notes != "Identified via Both mode. Original: 42%, Adjusted: 47%. Verified 1 traits." {
		t.Fatalf("unexpected notes %q", saved.Notes)
	}

	got, err := j.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	want := journal.Entry{
		ID:             saved.ID,
		ScientificName: "Acer rubrum",
		CommonName:     "Red maple",
		Family:         "Sapindaceae",
		Mode:           journal.ModeBoth,
		RawScore:       0.42,
		AdjustedScore:  0.47,
		VerifiedCount:  1,
		VerifiedTraits: traits.Selection{taxonomy.LeafShape: "Palmate"},
		Notes:          saved.Notes,
		CreatedAt:      created,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestAddValidatesEntry(t *testing.T) {
	j := openJournal(t, time.Now)
	ctx := context.Background()
	if _, err := j.Add(ctx, journal.Entry{Mode: journal.ModeCapture}); err == nil {
		t.Fatal("expected error without scientific name")
	}
	if _, err := j.Add(ctx, journal.Entry{ScientificName: "Acer rubrum", Mode: "guess"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	j := openJournal(t, time.Now)
	ctx := context.Background()

	names := []string{"Quercus alba", "Acer rubrum", "Salix nigra"}
	for i, name := range names {
		if _, err := j.Add(ctx, journal.Entry{
			ScientificName: name,
			Mode:           journal.ModeCapture,
			CreatedAt:      base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("Add(%s) returned error: %v", name, err)
		}
	}

	all, err := j.List(ctx, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	var got []string
	for _, e := range all {
		got = append(got, e.ScientificName)
	}
	if diff := cmp.Diff([]string{"Salix nigra", "Acer rubrum", "Quercus alba"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	limited, err := j.List(ctx, 2)
	if err != nil {
		t.Fatalf("List(2) returned error: %v", err)
	}
	if len(limited) != 2 || limited[0].ScientificName != "Salix nigra" {
		t.Fatalf("unexpected limited list: %+v", limited)
	}
}

func TestDeleteRemovesEntry(t *testing.T) {
	j := openJournal(t, time.Now)
	ctx := context.Background()
	saved, err := j.Add(ctx, journal.Entry{ScientificName: "Trillium grandiflorum", Mode: journal.ModeObserve, AdjustedScore: 1})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if err := j.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := j.Get(ctx, saved.ID); !errors.Is(err, journal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := j.Delete(ctx, saved.ID); !errors.Is(err, journal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
	entries, err := j.List(ctx, 0)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty journal, got %v %v", entries, err)
	}
}
