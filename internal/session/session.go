package session

import (
	"sync"
	"time"
)

// Session holds the server-side state for one user's ongoing practice
// visit. It survives page reloads for as long as the session cookie is
// valid. Requests for one session can overlap (a draft autosave while a
// question stream is open), so the mutable practice fields are guarded
// by the session's own mutex: mutate through the transition methods and
// read through State.
type Session struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time

	// Authenticated is set once after a successful password check, before
	// the cookie is issued, and never downgraded within the session.
	Authenticated bool

	mu sync.Mutex

	CurrentTheme  string
	CurrentPrompt string
	DraftAnswer   string
	LastFeedback  string

	// SuggestedStructure caches the answer-outline hint for the current
	// question. Invalidated whenever a new question is generated.
	SuggestedStructure string

	// TimerStart is the wall-clock time the countdown was armed, nil if
	// the timer has not been started for the current question.
	TimerStart *time.Time
}

// State is a point-in-time copy of the mutable practice fields
type State struct {
	Theme      string
	Prompt     string
	Draft      string
	Feedback   string
	Suggestion string
	TimerStart *time.Time
}

// State returns a consistent snapshot of the practice fields
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Theme:      s.CurrentTheme,
		Prompt:     s.CurrentPrompt,
		Draft:      s.DraftAnswer,
		Feedback:   s.LastFeedback,
		Suggestion: s.SuggestedStructure,
		TimerStart: s.TimerStart,
	}
}

// SetPrompt replaces the current question and clears everything derived
// from the previous one, so stale feedback or outline hints are never
// shown against a new question.
func (s *Session) SetPrompt(theme, prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CurrentTheme = theme
	s.CurrentPrompt = prompt
	s.DraftAnswer = ""
	s.LastFeedback = ""
	s.SuggestedStructure = ""
	s.TimerStart = nil
}

// SetDraft stores the in-progress answer text. No validation; length is
// only observed for display.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DraftAnswer = text
}

// SetFeedback stores the evaluation text for the current prompt/answer pair
func (s *Session) SetFeedback(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastFeedback = text
}

// SetSuggestion caches the answer-outline hint for the current question
func (s *Session) SetSuggestion(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SuggestedStructure = text
}

// StartTimer arms the countdown at the given instant. Restarting
// overwrites the previous start; timers never stack.
func (s *Session) StartTimer(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := now
	s.TimerStart = &t
}

// Expired reports whether the session has passed its expiry time
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
