package telegram

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"p2p-offer-radar-bot/internal/infrastructure/config"
)

// recordingProcessor потокобезопасно копит обновления
type recordingProcessor struct {
	mu      sync.Mutex
	updates []TelegramUpdate
}

func (r *recordingProcessor) ProcessUpdate(update TelegramUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, update)
}

func (r *recordingProcessor) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

// pollServer имитирует Bot API: одно обновление, дальше пустые ответы
type pollServer struct {
	mu       sync.Mutex
	requests int
	served   bool
}

func (s *pollServer) handler(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.URL.Path, "deleteWebhook") {
		fmt.Fprint(w, `{"ok":true,"result":true}`)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++

	// Первый getUpdates - очистка очереди, пустой ответ
	if s.requests <= 1 || s.served {
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
		return
	}
	s.served = true
	fmt.Fprintf(w, `{"ok":true,"result":[{"update_id":7,"message":{"message_id":1,"date":%d,"text":"привет","chat":{"id":-100500,"type":"supergroup","title":"OTC One"},"from":{"id":42,"username":"seller"}}}]}`,
		time.Now().Unix())
}

func (s *pollServer) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func newTestHandler(apiBase string, processor UpdateProcessor) *UpdatesHandler {
	cfg := &config.Config{}
	cfg.Telegram.BotToken = "test-token"
	cfg.Telegram.PollTimeout = 0

	uh := NewUpdatesHandler(cfg, processor)
	uh.apiBase = apiBase
	uh.pollInterval = 10 * time.Millisecond
	return uh
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestUpdatesHandlerDeliversAndStops(t *testing.T) {
	server := &pollServer{}
	srv := httptest.NewServer(http.HandlerFunc(server.handler))
	defer srv.Close()

	processor := &recordingProcessor{}
	uh := newTestHandler(srv.URL, processor)

	if err := uh.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	waitFor(t, func() bool { return processor.count() == 1 })

	if err := uh.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	// После остановки опросы прекращаются
	time.Sleep(50 * time.Millisecond)
	before := server.requestCount()
	time.Sleep(100 * time.Millisecond)
	if after := server.requestCount(); after != before {
		t.Fatalf("polling must stop after Stop: %d -> %d requests", before, after)
	}

	if processor.count() != 1 {
		t.Fatalf("expected exactly 1 delivered update, got %d", processor.count())
	}
}

func TestUpdatesHandlerStopIsIdempotent(t *testing.T) {
	server := &pollServer{served: true}
	srv := httptest.NewServer(http.HandlerFunc(server.handler))
	defer srv.Close()

	uh := newTestHandler(srv.URL, &recordingProcessor{})

	if err := uh.Stop(); err != nil {
		t.Fatalf("Stop before Start: %v", err)
	}
	if err := uh.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := uh.Start(); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if err := uh.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := uh.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestDispatchSkipsStaleUpdates(t *testing.T) {
	processor := &recordingProcessor{}
	uh := newTestHandler("http://unused", processor)

	stale := TelegramUpdate{
		UpdateID: 3,
		Message: &TelegramMessage{
			Text: "старое",
			Date: time.Now().Add(-10 * time.Minute).Unix(),
			Chat: TelegramChat{ID: 1, Type: "private"},
		},
	}
	uh.dispatch(stale)

	fresh := stale
	fresh.Message = &TelegramMessage{
		Text: "свежее",
		Date: time.Now().Unix(),
		Chat: TelegramChat{ID: 1, Type: "private"},
	}
	uh.dispatch(fresh)

	if processor.count() != 1 {
		t.Fatalf("only the fresh update must pass, got %d", processor.count())
	}
	if processor.updates[0].Message.Text != "свежее" {
		t.Fatalf("unexpected delivered update: %+v", processor.updates[0])
	}
}
