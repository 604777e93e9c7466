package handlers

import (
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"examcoach/internal/generation"
	"examcoach/internal/models"
	"examcoach/internal/security"
	"examcoach/internal/service"
	"examcoach/internal/session"
)

const (
	testPassword = "open-sesame"
	testQuestion = "Your school is rolling out a one-device-per-student program and parents are worried about screen time. As principal, what would you do?"
	testFeedback = "A structured answer with clear stakeholder awareness.\n\nOverall score: 18/25"
	testOutline  = "1. Acknowledge concerns\n2. Present usage policy\n3. Pilot and review"
)

// scriptedModel answers by instruction type: evaluation instructions get
// scored feedback, outline instructions get an outline, everything else
// gets the question text.
type scriptedModel struct{}

func (m *scriptedModel) respond(input []*schema.Message) string {
	promptText := ""
	if len(input) > 0 {
		promptText = input[0].Content
	}
	switch {
	case strings.Contains(promptText, "scoring"):
		return testFeedback
	case strings.Contains(promptText, "outline"):
		return testOutline
	default:
		return testQuestion
	}
}

func (m *scriptedModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	return &schema.Message{Role: schema.Assistant, Content: m.respond(input)}, nil
}

func (m *scriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	var chunks []*schema.Message
	for _, part := range strings.SplitAfter(m.respond(input), " ") {
		chunks = append(chunks, &schema.Message{Role: schema.Assistant, Content: part})
	}
	return schema.StreamReaderFromArray(chunks), nil
}

// emptyStreamModel streams a channel that closes without yielding any
// content, as a provider under load can.
type emptyStreamModel struct {
	scriptedModel
}

func (m *emptyStreamModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return schema.StreamReaderFromArray([]*schema.Message{}), nil
}

// fakeRecordStore implements service.RecordStore in memory
type fakeRecordStore struct {
	records []models.PracticeRecord
	listErr error
}

func (f *fakeRecordStore) Append(rec *models.PracticeRecord) error {
	rec.ID = int64(len(f.records) + 1)
	rec.CreatedAt = time.Now()
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeRecordStore) List(limit int) ([]models.PracticeRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit > len(f.records) {
		limit = len(f.records)
	}
	out := make([]models.PracticeRecord, 0, limit)
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.records[i])
	}
	return out, nil
}

func (f *fakeRecordStore) Stats() (*models.RecordStats, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	stats := &models.RecordStats{TotalAttempts: len(f.records)}
	for _, rec := range f.records {
		if rec.Score == nil {
			continue
		}
		stats.ScoredCount++
		stats.MeanScore += *rec.Score
		if *rec.Score > stats.MaxScore {
			stats.MaxScore = *rec.Score
		}
	}
	if stats.ScoredCount > 0 {
		stats.MeanScore /= float64(stats.ScoredCount)
	}
	return stats, nil
}

func loadTestTemplates(t *testing.T) *template.Template {
	t.Helper()
	tmpl, err := template.ParseGlob("../../web/templates/*.tmpl")
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}
	return tmpl
}

// newTestApp wires the full handler stack against a scripted model and an
// in-memory record store.
func newTestApp(t *testing.T, generationEnabled bool, store *fakeRecordStore) http.Handler {
	t.Helper()
	var cm model.BaseChatModel
	if generationEnabled {
		cm = &scriptedModel{}
	}
	return newTestAppWithModel(t, cm, store)
}

// newTestAppWithModel wires the handler stack around a specific chat model
// fake; a nil model disables generation.
func newTestAppWithModel(t *testing.T, cm model.BaseChatModel, store *fakeRecordStore) http.Handler {
	t.Helper()

	templates := loadTestTemplates(t)
	sessions := session.NewStore(time.Hour)
	signer := security.NewTokenSigner("test-secret")
	gate := service.NewGateService(testPassword, sessions)

	var gen *generation.Client
	if cm != nil {
		factory := func(ctx context.Context, c generation.Candidate) (model.BaseChatModel, error) {
			return cm, nil
		}
		gen = generation.NewClient(generation.ParseCandidates([]string{"gemini:test-model"}), factory, time.Minute)
	}

	var history *service.HistoryService
	if store != nil {
		history = service.NewHistoryService(store)
	}
	coach := service.NewCoachService(gen, history)

	mw := NewMiddleware(gate, signer)
	authHandler := NewAuthHandler(gate, signer, templates)
	practiceHandler := NewPracticeHandler(coach, templates, 5*time.Minute)
	historyHandler := NewHistoryHandler(history, templates, 50)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", authHandler.Home(mw))
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("POST /logout", authHandler.Logout(mw))
	mux.HandleFunc("GET /practice", mw.RequireAuth(practiceHandler.Show))
	mux.HandleFunc("POST /practice/generate", mw.RequireAuth(practiceHandler.Generate))
	mux.HandleFunc("GET /practice/generate/stream", mw.RequireAuth(practiceHandler.GenerateStream))
	mux.HandleFunc("POST /practice/draft", mw.RequireAuth(practiceHandler.SaveDraft))
	mux.HandleFunc("POST /practice/evaluate", mw.RequireAuth(practiceHandler.Evaluate))
	mux.HandleFunc("POST /practice/outline", mw.RequireAuth(practiceHandler.Outline))
	mux.HandleFunc("POST /practice/timer/start", mw.RequireAuth(practiceHandler.StartTimer))
	mux.HandleFunc("GET /history", mw.RequireAuth(historyHandler.Show))

	return mux
}

func newTestClient(t *testing.T, server *httptest.Server) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	client := *server.Client()
	client.Jar = jar
	return &client
}

func postForm(t *testing.T, client *http.Client, targetURL string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := client.PostForm(targetURL, form)
	if err != nil {
		t.Fatalf("POST %s failed: %v", targetURL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	return resp, string(body)
}

func getPage(t *testing.T, client *http.Client, targetURL string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(targetURL)
	if err != nil {
		t.Fatalf("GET %s failed: %v", targetURL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	return resp, string(body)
}

func login(t *testing.T, client *http.Client, baseURL string) {
	t.Helper()
	resp, body := postForm(t, client, baseURL+"/login", url.Values{"password": {testPassword}})
	if !strings.Contains(body, "New question") {
		t.Fatalf("login did not land on the practice page (status %d)", resp.StatusCode)
	}
}

func TestLoginRetriesUntilCorrectPassword(t *testing.T) {
	server := httptest.NewServer(newTestApp(t, true, &fakeRecordStore{}))
	defer server.Close()
	client := newTestClient(t, server)

	for _, wrong := range []string{"guess-one", "guess-two"} {
		resp, body := postForm(t, client, server.URL+"/login", url.Values{"password": {wrong}})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("wrong password %q: status = %d, want 200 re-render", wrong, resp.StatusCode)
		}
		if !strings.Contains(body, "Incorrect password") {
			t.Errorf("wrong password %q: page does not show the error", wrong)
		}
		if strings.Contains(body, "New question") {
			t.Errorf("wrong password %q: practice page reached", wrong)
		}
	}

	login(t, client, server.URL)

	// The session survives subsequent requests
	resp, body := getPage(t, client, server.URL+"/practice")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "New question") {
		t.Errorf("authenticated GET /practice did not render the practice page")
	}
}

func TestFullPracticeFlow(t *testing.T) {
	store := &fakeRecordStore{}
	server := httptest.NewServer(newTestApp(t, true, store))
	defer server.Close()
	client := newTestClient(t, server)

	login(t, client, server.URL)

	// Generate a question for a selected topic
	_, body := postForm(t, client, server.URL+"/practice/generate", url.Values{
		"topic": {"Leadership vision"},
	})
	if !strings.Contains(body, testQuestion) {
		t.Fatalf("practice page does not show the generated question")
	}

	// Autosave a 120-character draft
	draft := strings.Repeat("a", 120)
	resp, _ := postForm(t, client, server.URL+"/practice/draft", url.Values{"draft": {draft}})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("draft autosave status = %d, want 204", resp.StatusCode)
	}

	// The rendered page reflects the draft length
	_, body = getPage(t, client, server.URL+"/practice")
	if !strings.Contains(body, `<span id="char-count">120</span>`) {
		t.Errorf("practice page does not show the 120-character count")
	}

	// Evaluate the answer
	_, body = postForm(t, client, server.URL+"/practice/evaluate", url.Values{"draft": {draft}})
	if !strings.Contains(body, "Overall score: 18/25") {
		t.Errorf("practice page does not show the evaluation feedback")
	}

	// Exactly one record was appended with the extracted score
	if len(store.records) != 1 {
		t.Fatalf("records appended = %d, want 1", len(store.records))
	}
	rec := store.records[0]
	if rec.Theme != "Leadership vision" {
		t.Errorf("record theme = %q, want Leadership vision", rec.Theme)
	}
	if got := utf8.RuneCountInString(rec.Answer); got != 120 {
		t.Errorf("record answer length = %d, want 120", got)
	}
	if rec.Score == nil || *rec.Score != 18 {
		t.Errorf("record score = %v, want 18", rec.Score)
	}

	// The history page shows the attempt
	_, body = getPage(t, client, server.URL+"/history")
	if !strings.Contains(body, "Leadership vision") {
		t.Errorf("history page does not list the attempt")
	}
}

func TestStreamedGenerationCommitsQuestion(t *testing.T) {
	server := httptest.NewServer(newTestApp(t, true, &fakeRecordStore{}))
	defer server.Close()
	client := newTestClient(t, server)

	login(t, client, server.URL)

	resp, body := getPage(t, client, server.URL+"/practice/generate/stream?topic=Smart+campus")
	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("Content-Type = %q, want text/event-stream", got)
	}
	if !strings.Contains(body, "data: ") {
		t.Errorf("stream response carries no data events")
	}
	if !strings.Contains(body, "event: done") {
		t.Errorf("stream response does not end with a done event")
	}

	// The accumulated question was installed into the session
	_, body = getPage(t, client, server.URL+"/practice")
	if !strings.Contains(body, testQuestion) {
		t.Errorf("practice page does not show the streamed question")
	}
	if !strings.Contains(body, "Smart campus") {
		t.Errorf("practice page does not show the streamed topic")
	}
}

func TestEmptyStreamPreservesPreviousQuestion(t *testing.T) {
	server := httptest.NewServer(newTestAppWithModel(t, &emptyStreamModel{}, &fakeRecordStore{}))
	defer server.Close()
	client := newTestClient(t, server)

	login(t, client, server.URL)

	// Put a question on the page via the batch path first
	_, body := postForm(t, client, server.URL+"/practice/generate", url.Values{
		"topic": {"Smart campus"},
	})
	if !strings.Contains(body, testQuestion) {
		t.Fatalf("batch generation did not produce a question")
	}

	// The stream closes cleanly without yielding any content
	_, body = getPage(t, client, server.URL+"/practice/generate/stream?topic=Crisis+management")
	if !strings.Contains(body, "event: error") {
		t.Errorf("empty stream did not surface an error event")
	}
	if strings.Contains(body, "event: done") {
		t.Errorf("empty stream reported success")
	}

	// The previous question and topic survive
	_, body = getPage(t, client, server.URL+"/practice")
	if !strings.Contains(body, testQuestion) {
		t.Errorf("empty stream wiped the previous question")
	}
	if !strings.Contains(body, "Question &mdash; Smart campus") {
		t.Errorf("empty stream replaced the previous topic")
	}
}

func TestOutlineIsCachedOnSession(t *testing.T) {
	server := httptest.NewServer(newTestApp(t, true, &fakeRecordStore{}))
	defer server.Close()
	client := newTestClient(t, server)

	login(t, client, server.URL)
	postForm(t, client, server.URL+"/practice/generate", url.Values{"topic": {"Crisis management"}})

	_, body := postForm(t, client, server.URL+"/practice/outline", url.Values{})
	if !strings.Contains(body, "Acknowledge concerns") {
		t.Errorf("practice page does not show the outline")
	}
}

func TestUnauthenticatedRequestsRedirectToLogin(t *testing.T) {
	server := httptest.NewServer(newTestApp(t, true, &fakeRecordStore{}))
	defer server.Close()

	client := server.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	for _, path := range []string{"/practice", "/history", "/practice/generate/stream"} {
		resp, err := client.Get(server.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusSeeOther {
			t.Errorf("GET %s status = %d, want 303", path, resp.StatusCode)
		}
		if loc := resp.Header.Get("Location"); loc != "/login" {
			t.Errorf("GET %s redirects to %q, want /login", path, loc)
		}
	}
}

func TestTamperedCookieIsRejected(t *testing.T) {
	server := httptest.NewServer(newTestApp(t, true, &fakeRecordStore{}))
	defer server.Close()

	client := server.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	req, err := http.NewRequest(http.MethodGet, server.URL+"/practice", nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: security.SessionCookieName, Value: "not-a-valid-token"})

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("GET /practice failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want 303 redirect to login", resp.StatusCode)
	}
}

func TestGenerationDisabledDegradesGracefully(t *testing.T) {
	server := httptest.NewServer(newTestApp(t, false, &fakeRecordStore{}))
	defer server.Close()
	client := newTestClient(t, server)

	login(t, client, server.URL)

	_, body := getPage(t, client, server.URL+"/practice")
	if !strings.Contains(body, "not configured") {
		t.Errorf("practice page does not show the disabled notice")
	}

	resp, body := postForm(t, client, server.URL+"/practice/generate", url.Values{"topic": {"Smart campus"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate while disabled: status = %d, want 200 re-render", resp.StatusCode)
	}
	if !strings.Contains(body, "not configured") {
		t.Errorf("generate while disabled: page does not show the disabled message")
	}
}

func TestHistoryStoreFailureDegradesToNotice(t *testing.T) {
	store := &fakeRecordStore{listErr: errors.New("connection refused")}
	server := httptest.NewServer(newTestApp(t, true, store))
	defer server.Close()
	client := newTestClient(t, server)

	login(t, client, server.URL)

	resp, body := getPage(t, client, server.URL+"/history")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history with failing store: status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "temporarily unavailable") {
		t.Errorf("history page does not show the degraded notice")
	}
}

func TestHistoryShowsUnscoredSentinel(t *testing.T) {
	store := &fakeRecordStore{}
	store.records = append(store.records, models.PracticeRecord{
		ID:        1,
		CreatedAt: time.Now(),
		Theme:     "Character education",
		Score:     nil,
		Answer:    "an answer",
		Feedback:  "feedback without a score marker",
	})

	server := httptest.NewServer(newTestApp(t, true, store))
	defer server.Close()
	client := newTestClient(t, server)

	login(t, client, server.URL)

	_, body := getPage(t, client, server.URL+"/history")
	if !strings.Contains(body, models.ScoreNotAvailable) {
		t.Errorf("history page does not show the not-available score sentinel")
	}
}

func TestLogoutEndsSession(t *testing.T) {
	server := httptest.NewServer(newTestApp(t, true, &fakeRecordStore{}))
	defer server.Close()
	client := newTestClient(t, server)

	login(t, client, server.URL)

	_, body := postForm(t, client, server.URL+"/logout", url.Values{})
	if !strings.Contains(body, "Access password") {
		t.Errorf("logout did not land on the login page")
	}

	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	resp, err := client.Get(server.URL + "/practice")
	if err != nil {
		t.Fatalf("GET /practice failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("after logout: status = %d, want 303 redirect to login", resp.StatusCode)
	}
}
