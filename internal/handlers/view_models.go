package handlers

import "examcoach/internal/models"

// LoginViewData is the data passed to the login template
type LoginViewData struct {
	Title string
	Error string
}

// PracticeViewData is the data passed to the practice template
type PracticeViewData struct {
	Title             string
	Topics            []string
	GenerationEnabled bool
	Theme             string
	Question          string
	Draft             string
	Feedback          string
	Suggestion        string
	CharCount         int
	TimerRunning      bool
	RemainingSeconds  int
	AnswerSeconds     int
	Error             string
}

// HistoryViewData is the data passed to the history template
type HistoryViewData struct {
	Title   string
	Records []models.PracticeRecord
	Stats   models.RecordStats
	Error   string
}
