package service

import (
	"log"
	"regexp"
	"strconv"

	"examcoach/internal/models"
)

// RecordStore is the append-only boundary to the external tabular store.
// Satisfied by repository.RecordRepository; tests use fakes.
type RecordStore interface {
	Append(rec *models.PracticeRecord) error
	List(limit int) ([]models.PracticeRecord, error)
	Stats() (*models.RecordStats, error)
}

// scorePattern matches the "NN/25" marker the evaluation prompt asks for
var scorePattern = regexp.MustCompile(`(\d{1,2}(?:\.\d+)?)\s*/\s*25`)

// maxStoredFeedback bounds the feedback text kept per record
const maxStoredFeedback = 1000

// HistoryService appends practice records to the external store and reads
// them back for the history view. Writes are fire-and-forget: any store
// failure is logged and swallowed so the practice flow is never
// interrupted. A nil service (history disabled) behaves the same way.
type HistoryService struct {
	store RecordStore
}

// NewHistoryService creates a history service over the given store
func NewHistoryService(store RecordStore) *HistoryService {
	return &HistoryService{store: store}
}

// Record appends one practice record, extracting a numeric score from the
// feedback text on a best-effort basis. Returns false when the append did
// not happen; it never panics and never propagates a store failure.
func (s *HistoryService) Record(theme, answer, feedback string) (ok bool) {
	if s == nil || s.store == nil {
		return false
	}

	// The store is externally owned; contain anything it throws at us.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("History: append panicked: %v", r)
			ok = false
		}
	}()

	rec := &models.PracticeRecord{
		Theme:    theme,
		Score:    ExtractScore(feedback),
		Answer:   answer,
		Feedback: truncate(feedback, maxStoredFeedback),
	}

	if err := s.store.Append(rec); err != nil {
		log.Printf("History: failed to append record: %v", err)
		return false
	}
	return true
}

// List returns the most recent records for the history view
func (s *HistoryService) List(limit int) ([]models.PracticeRecord, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	return s.store.List(limit)
}

// Stats returns aggregate statistics over scored records
func (s *HistoryService) Stats() (*models.RecordStats, error) {
	if s == nil || s.store == nil {
		return &models.RecordStats{}, nil
	}
	return s.store.Stats()
}

// ExtractScore pulls the numeric score out of free-text feedback using the
// "NN/25" marker. Returns nil when no parseable score is present; callers
// store the not-available sentinel instead of failing.
func ExtractScore(feedback string) *float64 {
	m := scorePattern.FindStringSubmatch(feedback)
	if m == nil {
		return nil
	}
	score, err := strconv.ParseFloat(m[1], 64)
	if err != nil || score < 0 || score > 25 {
		return nil
	}
	return &score
}

// truncate bounds s to max runes
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
