package service

import (
	"context"
	"errors"

	"examcoach/internal/generation"
	"examcoach/internal/prompt"
	"examcoach/internal/session"
)

var (
	// ErrGenerationDisabled is returned when no generation credential was
	// configured at startup; the rest of the app keeps working.
	ErrGenerationDisabled = errors.New("generation is not configured")

	ErrNoPrompt = errors.New("no question has been generated yet")
	ErrNoDraft  = errors.New("answer is empty")
)

// CoachService orchestrates the practice flow: prompt construction,
// generation calls, session-state transitions and best-effort history
// recording. A failed generation performs no transition, so the previous
// question, draft and feedback survive.
type CoachService struct {
	gen     *generation.Client // nil when generation is disabled
	history *HistoryService    // nil-safe, see HistoryService
}

// NewCoachService creates the orchestrator
func NewCoachService(gen *generation.Client, history *HistoryService) *CoachService {
	return &CoachService{
		gen:     gen,
		history: history,
	}
}

// Enabled reports whether generation-dependent features are available
func (s *CoachService) Enabled() bool {
	return s.gen != nil
}

// GenerateQuestion produces a new question for the topic and replaces the
// session's current question, clearing stale feedback and hints. On
// failure the session is left untouched.
func (s *CoachService) GenerateQuestion(ctx context.Context, sess *session.Session, topic, grounding string) error {
	if s.gen == nil {
		return ErrGenerationDisabled
	}

	result, err := s.gen.Generate(ctx, prompt.BuildQuestion(topic, grounding))
	if err != nil {
		return err
	}

	sess.SetPrompt(topic, result.Text)
	return nil
}

// StreamQuestion opens a streaming generation for a new question. The
// caller renders fragments as they arrive and calls CommitQuestion with
// the accumulated text once the stream ends.
func (s *CoachService) StreamQuestion(ctx context.Context, topic, grounding string) (*generation.Stream, error) {
	if s.gen == nil {
		return nil, ErrGenerationDisabled
	}
	return s.gen.Stream(ctx, prompt.BuildQuestion(topic, grounding))
}

// CommitQuestion installs a completed streamed question into the session
func (s *CoachService) CommitQuestion(sess *session.Session, topic, text string) {
	sess.SetPrompt(topic, text)
}

// EvaluateAnswer scores the current draft against the current question,
// stores the feedback in the session and appends a practice record on a
// best-effort basis. The returned bool reports whether the record was
// written; a store failure never fails the evaluation.
func (s *CoachService) EvaluateAnswer(ctx context.Context, sess *session.Session) (bool, error) {
	if s.gen == nil {
		return false, ErrGenerationDisabled
	}

	st := sess.State()
	if st.Prompt == "" {
		return false, ErrNoPrompt
	}
	if st.Draft == "" {
		return false, ErrNoDraft
	}

	result, err := s.gen.Generate(ctx, prompt.BuildEvaluation(st.Prompt, st.Draft))
	if err != nil {
		return false, err
	}

	sess.SetFeedback(result.Text)
	recorded := s.history.Record(st.Theme, st.Draft, result.Text)
	return recorded, nil
}

// SuggestOutline generates an answer-outline hint for the current
// question. The hint is cached on the session until the next question
// replaces it.
func (s *CoachService) SuggestOutline(ctx context.Context, sess *session.Session) error {
	if s.gen == nil {
		return ErrGenerationDisabled
	}

	st := sess.State()
	if st.Prompt == "" {
		return ErrNoPrompt
	}
	if st.Suggestion != "" {
		return nil
	}

	result, err := s.gen.Generate(ctx, prompt.BuildOutline(st.Prompt))
	if err != nil {
		return err
	}

	sess.SetSuggestion(result.Text)
	return nil
}
