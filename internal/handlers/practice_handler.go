package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"examcoach/internal/models"
	"examcoach/internal/service"
	"examcoach/internal/session"
)

// PracticeHandler serves the practice page and its form actions
type PracticeHandler struct {
	coach          *service.CoachService
	templates      *template.Template
	answerDuration time.Duration
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(coach *service.CoachService, templates *template.Template, answerDuration time.Duration) *PracticeHandler {
	return &PracticeHandler{
		coach:          coach,
		templates:      templates,
		answerDuration: answerDuration,
	}
}

// Show renders the practice page from the current session state
func (h *PracticeHandler) Show(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())
	h.render(w, sess, "")
}

// Generate produces a new question for the selected topic in one call
func (h *PracticeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid form data", "failed to parse generate form", err)
		return
	}

	topic := resolveTopic(r.FormValue("topic"), r.FormValue("custom_topic"))
	grounding := strings.TrimSpace(r.FormValue("grounding"))

	if err := h.coach.GenerateQuestion(r.Context(), sess, topic, grounding); err != nil {
		h.render(w, sess, generationErrorMessage(err))
		return
	}

	http.Redirect(w, r, "/practice", http.StatusSeeOther)
}

// streamChunk is one server-sent event payload during question streaming
type streamChunk struct {
	Text string `json:"text"`
}

// GenerateStream produces a new question as a server-sent event stream.
// Fragments are flushed as they arrive; the accumulated text is installed
// into the session only once the stream ends cleanly, so an aborted stream
// leaves the previous question in place.
func (h *PracticeHandler) GenerateStream(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())

	topic := resolveTopic(r.URL.Query().Get("topic"), r.URL.Query().Get("custom_topic"))
	grounding := strings.TrimSpace(r.URL.Query().Get("grounding"))

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming unsupported", "response writer does not support flushing", errors.New("no http.Flusher"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	stream, err := h.coach.StreamQuestion(r.Context(), topic, grounding)
	if err != nil {
		writeSSEEvent(w, "error", generationErrorMessage(err))
		flusher.Flush()
		return
	}
	defer stream.Close()

	for {
		fragment, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Practice: question stream aborted: %v", err)
			writeSSEEvent(w, "error", "Generation was interrupted. Please try again.")
			flusher.Flush()
			return
		}

		payload, err := json.Marshal(streamChunk{Text: fragment})
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	// A clean close with no content is a failure, same as an empty batch
	// response. Committing it would wipe the previous question.
	text := strings.TrimSpace(stream.Text())
	if text == "" {
		writeSSEEvent(w, "error", "Generation returned no content. Please try again.")
		flusher.Flush()
		return
	}
	h.coach.CommitQuestion(sess, topic, text)

	writeSSEEvent(w, "done", "")
	flusher.Flush()
}

// SaveDraft stores the in-progress answer without a page reload
func (h *PracticeHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid form data", "failed to parse draft form", err)
		return
	}

	sess.SetDraft(r.FormValue("draft"))
	w.WriteHeader(http.StatusNoContent)
}

// Evaluate scores the current draft against the current question
func (h *PracticeHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid form data", "failed to parse evaluate form", err)
		return
	}

	// The evaluate form carries the latest draft text; autosave may lag.
	if draft, ok := r.Form["draft"]; ok && len(draft) > 0 {
		sess.SetDraft(draft[0])
	}

	if _, err := h.coach.EvaluateAnswer(r.Context(), sess); err != nil {
		h.render(w, sess, evaluationErrorMessage(err))
		return
	}

	http.Redirect(w, r, "/practice", http.StatusSeeOther)
}

// Outline generates an answer-outline hint for the current question
func (h *PracticeHandler) Outline(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())

	if err := h.coach.SuggestOutline(r.Context(), sess); err != nil {
		h.render(w, sess, generationErrorMessage(err))
		return
	}

	http.Redirect(w, r, "/practice", http.StatusSeeOther)
}

// StartTimer arms the answer countdown for the current question
func (h *PracticeHandler) StartTimer(w http.ResponseWriter, r *http.Request) {
	sess := GetSessionFromContext(r.Context())

	sess.StartTimer(time.Now())
	http.Redirect(w, r, "/practice", http.StatusSeeOther)
}

func (h *PracticeHandler) render(w http.ResponseWriter, sess *session.Session, errMsg string) {
	st := sess.State()
	data := PracticeViewData{
		Title:             "Practice",
		Topics:            models.DefaultTopics,
		GenerationEnabled: h.coach.Enabled(),
		Theme:             st.Theme,
		Question:          st.Prompt,
		Draft:             st.Draft,
		Feedback:          st.Feedback,
		Suggestion:        st.Suggestion,
		CharCount:         utf8.RuneCountInString(st.Draft),
		AnswerSeconds:     int(h.answerDuration.Seconds()),
		Error:             errMsg,
	}

	if st.TimerStart != nil {
		data.TimerRunning = true
		data.RemainingSeconds = int(session.Remaining(*st.TimerStart, h.answerDuration, time.Now()).Seconds())
	}

	if err := h.templates.ExecuteTemplate(w, "practice.tmpl", data); err != nil {
		log.Printf("failed to render practice template: %v", err)
	}
}

// resolveTopic prefers the free-text topic over the dropdown selection
func resolveTopic(selected, custom string) string {
	if custom = strings.TrimSpace(custom); custom != "" {
		return custom
	}
	if selected = strings.TrimSpace(selected); selected != "" {
		return selected
	}
	return models.DefaultTopics[0]
}

func generationErrorMessage(err error) string {
	if errors.Is(err, service.ErrGenerationDisabled) {
		return "Question generation is not configured on this server."
	}
	if errors.Is(err, service.ErrNoPrompt) {
		return "Generate a question first."
	}
	return "Generation failed: " + err.Error()
}

func evaluationErrorMessage(err error) string {
	if errors.Is(err, service.ErrNoDraft) {
		return "Write an answer before requesting an evaluation."
	}
	return generationErrorMessage(err)
}

func writeSSEEvent(w http.ResponseWriter, event, message string) {
	payload, err := json.Marshal(streamChunk{Text: message})
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
