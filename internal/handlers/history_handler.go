package handlers

import (
	"html/template"
	"log"
	"net/http"

	"examcoach/internal/models"
	"examcoach/internal/service"
)

// HistoryHandler serves the practice-history page
type HistoryHandler struct {
	history   *service.HistoryService
	templates *template.Template
	limit     int
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history *service.HistoryService, templates *template.Template, limit int) *HistoryHandler {
	return &HistoryHandler{
		history:   history,
		templates: templates,
		limit:     limit,
	}
}

// Show renders recent practice records with aggregate statistics. A store
// failure degrades to an empty page with a notice instead of an error status.
func (h *HistoryHandler) Show(w http.ResponseWriter, r *http.Request) {
	data := HistoryViewData{Title: "History"}

	records, err := h.history.List(h.limit)
	if err != nil {
		log.Printf("History: failed to list records: %v", err)
		data.Error = "History is temporarily unavailable."
		h.render(w, data)
		return
	}
	data.Records = records

	stats, err := h.history.Stats()
	if err != nil {
		log.Printf("History: failed to load stats: %v", err)
		data.Error = "Statistics are temporarily unavailable."
		h.render(w, data)
		return
	}
	if stats != nil {
		data.Stats = *stats
	} else {
		data.Stats = models.RecordStats{}
	}

	h.render(w, data)
}

func (h *HistoryHandler) render(w http.ResponseWriter, data HistoryViewData) {
	if err := h.templates.ExecuteTemplate(w, "history.tmpl", data); err != nil {
		log.Printf("failed to render history template: %v", err)
	}
}
