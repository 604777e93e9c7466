package service

import (
	"errors"
	"strings"
	"testing"

	"examcoach/internal/models"
)

// fakeRecordStore collects appended records and can be made to fail
type fakeRecordStore struct {
	records   []models.PracticeRecord
	appendErr error
	panics    bool
}

func (f *fakeRecordStore) Append(rec *models.PracticeRecord) error {
	if f.panics {
		panic("store exploded")
	}
	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeRecordStore) List(limit int) ([]models.PracticeRecord, error) {
	return f.records, nil
}

func (f *fakeRecordStore) Stats() (*models.RecordStats, error) {
	return &models.RecordStats{TotalAttempts: len(f.records)}, nil
}

func TestExtractScore(t *testing.T) {
	tests := []struct {
		name     string
		feedback string
		want     *float64
	}{
		{"plain marker", "Good answer. Overall score: 18/25", ptr(18)},
		{"spaced marker", "Score: 21 / 25 overall", ptr(21)},
		{"decimal score", "Overall score: 17.5/25", ptr(17.5)},
		{"no marker", "Solid reasoning but no score given.", nil},
		{"empty feedback", "", nil},
		{"out of range rejected", "99/25 nonsense", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractScore(tt.feedback)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ExtractScore(%q) = %v, want %v", tt.feedback, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("ExtractScore(%q) = %v, want %v", tt.feedback, *got, *tt.want)
			}
		})
	}
}

func ptr(f float64) *float64 { return &f }

func TestRecordExtractsScore(t *testing.T) {
	store := &fakeRecordStore{}
	history := NewHistoryService(store)

	if !history.Record("Leadership vision", "my answer", "Well argued. Overall score: 18/25") {
		t.Fatal("Record() should succeed")
	}

	if len(store.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(store.records))
	}
	rec := store.records[0]
	if rec.Score == nil || *rec.Score != 18 {
		t.Errorf("Score = %v, want 18", rec.Score)
	}
	if rec.Theme != "Leadership vision" {
		t.Errorf("Theme = %q, want Leadership vision", rec.Theme)
	}
}

func TestRecordWithoutScoreStillAppends(t *testing.T) {
	store := &fakeRecordStore{}
	history := NewHistoryService(store)

	if !history.Record("Smart campus", "answer", "Thoughtful but unscored feedback.") {
		t.Fatal("Record() should succeed even when no score is extractable")
	}

	rec := store.records[0]
	if rec.Score != nil {
		t.Errorf("Score = %v, want nil sentinel", rec.Score)
	}
	if rec.ScoreDisplay() != models.ScoreNotAvailable {
		t.Errorf("ScoreDisplay() = %q, want %q", rec.ScoreDisplay(), models.ScoreNotAvailable)
	}
}

func TestRecordStoreFailureReturnsFalse(t *testing.T) {
	store := &fakeRecordStore{appendErr: errors.New("quota exceeded")}
	history := NewHistoryService(store)

	if history.Record("theme", "answer", "feedback 10/25") {
		t.Error("Record() should return false when the store fails")
	}
}

func TestRecordStorePanicIsContained(t *testing.T) {
	store := &fakeRecordStore{panics: true}
	history := NewHistoryService(store)

	// Must not panic out of Record.
	if history.Record("theme", "answer", "feedback") {
		t.Error("Record() should return false when the store panics")
	}
}

func TestRecordNilServiceIsSafe(t *testing.T) {
	var history *HistoryService

	if history.Record("theme", "answer", "feedback") {
		t.Error("nil service Record() should return false")
	}
	if _, err := history.List(10); err != nil {
		t.Errorf("nil service List() should degrade silently, got %v", err)
	}
	stats, err := history.Stats()
	if err != nil || stats == nil {
		t.Errorf("nil service Stats() should return empty stats, got %v, %v", stats, err)
	}
}

func TestRecordTruncatesFeedback(t *testing.T) {
	store := &fakeRecordStore{}
	history := NewHistoryService(store)

	long := strings.Repeat("x", 5000)
	if !history.Record("theme", "answer", long) {
		t.Fatal("Record() should succeed")
	}
	if got := len([]rune(store.records[0].Feedback)); got != maxStoredFeedback {
		t.Errorf("stored feedback length = %d, want %d", got, maxStoredFeedback)
	}
}
