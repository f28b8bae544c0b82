package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/flowmindhq/flowmind/internal/domain"
	"github.com/flowmindhq/flowmind/internal/knowledge"
	"github.com/flowmindhq/flowmind/internal/msglog"
	"github.com/flowmindhq/flowmind/internal/orders"
	"github.com/flowmindhq/flowmind/internal/transcript"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Reply(_ context.Context, _ *domain.Knowledge, _ string) (string, error) {
	f.calls++
	return f.reply, f.err
}

type sentMessage struct {
	To   string
	Text string
}

type fakeDispatcher struct {
	sent []sentMessage
	err  error
}

func (f *fakeDispatcher) Send(_ context.Context, to, text string) error {
	f.sent = append(f.sent, sentMessage{To: to, Text: text})
	return f.err
}

type testEnv struct {
	handler     *Handler
	router      chi.Router
	log         *msglog.Log
	ai          *fakeCompleter
	wa          *fakeDispatcher
	transcripts *transcript.Store
	dir         string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	know := knowledge.NewStore(filepath.Join(dir, "business_knowledge.json"))
	doc := domain.DefaultKnowledge()
	doc.Products = []domain.Product{
		{Name: "Widget", Description: "A fine widget", Price: 25000, Keywords: []string{"widget"}},
		{Name: "Widget Pro", Description: "The pro widget", Price: 40000, Keywords: []string{"widget pro"}},
	}
	if err := know.Save(doc); err != nil {
		t.Fatal(err)
	}

	env := &testEnv{
		log:         msglog.New(1000),
		ai:          &fakeCompleter{reply: "AI says hi"},
		wa:          &fakeDispatcher{},
		transcripts: transcript.NewStore(filepath.Join(dir, "conversations")),
		dir:         dir,
	}
	env.handler = NewHandler(
		know,
		env.log,
		env.ai,
		env.wa,
		orders.NewStore(filepath.Join(dir, "orders", "completed.json")),
		env.transcripts,
		"FlowMind AI",
		"flowmind_verify_token",
	)
	env.router = chi.NewRouter()
	env.handler.RegisterRoutes(env.router)
	return env
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func inboundEvent(from, text string) string {
	return `{"entry":[{"changes":[{"value":{"messages":[{"from":"` + from + `","text":{"body":"` + text + `"}}]}}]}]}`
}

func TestVerifyWebhookEchoesChallenge(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet,
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=flowmind_verify_token&hub.challenge=12345", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "12345" {
		t.Errorf("expected raw challenge, got %q", rec.Body.String())
	}
}

func TestVerifyWebhookRejectsBadToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet,
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", "")

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestReceiveWebhookBadPayloadIsServerError(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/webhooks/whatsapp", "{not json")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestReceiveWebhookNoMessageIsAcknowledgedNoOp(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/webhooks/whatsapp",
		`{"entry":[{"changes":[{"value":{"statuses":[{"status":"read"}]}}]}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.log.Len() != 0 {
		t.Errorf("expected no records appended, got %d", env.log.Len())
	}
	if len(env.wa.sent) != 0 {
		t.Errorf("expected no outbound sends, got %d", len(env.wa.sent))
	}
}

func TestReceiveWebhookCatalogMatchSkipsAI(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/webhooks/whatsapp",
		inboundEvent("2348012345678", "What is the price of Widget?"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.ai.calls != 0 {
		t.Errorf("AI path must be skipped on catalog match, got %d calls", env.ai.calls)
	}

	records := env.log.All()
	if len(records) != 2 {
		t.Fatalf("expected 2 records (user, bot), got %d", len(records))
	}
	if records[0].From != "2348012345678" {
		t.Errorf("first record should be the user, got %q", records[0].From)
	}
	if records[1].From != "FlowMind AI" {
		t.Errorf("second record should be the bot, got %q", records[1].From)
	}

	reply := records[1].Text
	for _, want := range []string{"Widget", "A fine widget", "25000", "bank transfer"} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply missing %q:\n%s", want, reply)
		}
	}

	if len(env.wa.sent) != 1 || env.wa.sent[0].To != "2348012345678" {
		t.Fatalf("expected one dispatch to the sender, got %+v", env.wa.sent)
	}
	if env.wa.sent[0].Text != reply {
		t.Error("dispatched text must equal the logged bot record")
	}
}

func TestReceiveWebhookFirstProductWins(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	// "widget pro" also contains "widget"; the earlier product is selected.
	env.do(t, http.MethodPost, "/webhooks/whatsapp",
		inboundEvent("234", "tell me about the widget pro"))

	records := env.log.All()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !strings.Contains(records[1].Text, "A fine widget") {
		t.Errorf("expected the first catalog product to win:\n%s", records[1].Text)
	}
}

func TestReceiveWebhookAIFallback(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.ai.reply = "Hello! How can I help?"
	rec := env.do(t, http.MethodPost, "/webhooks/whatsapp", inboundEvent("234", "hi"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.ai.calls != 1 {
		t.Fatalf("expected exactly one AI call, got %d", env.ai.calls)
	}

	records := env.log.All()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Text != "Hello! How can I help?" {
		t.Errorf("bot record must equal the AI reply verbatim, got %q", records[1].Text)
	}
	if len(env.wa.sent) != 1 || env.wa.sent[0].Text != "Hello! How can I help?" {
		t.Errorf("unexpected dispatch: %+v", env.wa.sent)
	}
}

func TestReceiveWebhookAIFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.ai.err = errors.New("completion unavailable")
	rec := env.do(t, http.MethodPost, "/webhooks/whatsapp", inboundEvent("234", "hi"))

	if rec.Code != http.StatusOK {
		t.Fatalf("webhook must still be acknowledged, got %d", rec.Code)
	}
	if len(env.wa.sent) != 0 {
		t.Errorf("no reply should be dispatched on AI failure, got %+v", env.wa.sent)
	}
	if env.log.Len() != 1 {
		t.Errorf("only the user record should be appended, got %d", env.log.Len())
	}
}

func TestReceiveWebhookDispatchFailureStillLogsReply(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.wa.err = errors.New("provider down")
	rec := env.do(t, http.MethodPost, "/webhooks/whatsapp", inboundEvent("234", "hi"))

	if rec.Code != http.StatusOK {
		t.Fatalf("webhook must still be acknowledged, got %d", rec.Code)
	}
	if env.log.Len() != 2 {
		t.Errorf("bot record is appended even when delivery fails, got %d records", env.log.Len())
	}
}

func TestReceiveWebhookWritesTranscript(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/webhooks/whatsapp", inboundEvent("2348012345678", "hi"))

	path := filepath.Join(env.dir, "conversations", "2348012345678.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("transcript file not written: %v", err)
	}

	conv, err := env.transcripts.Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected user and assistant turns, got %d", len(conv.Messages))
	}
	if conv.Messages[0].Role != "user" || conv.Messages[1].Role != "assistant" {
		t.Errorf("unexpected transcript roles: %+v", conv.Messages)
	}
}
