package watch

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/surfacegen/genapi/internal/codegen"
	"github.com/surfacegen/genapi/internal/errors"
)

// Message types pushed to preview clients
const (
	MessageBuilding = "building"
	MessageUpdated  = "updated"
	MessageError    = "error"
)

// DefaultPingInterval is how often idle preview clients are pinged. A client
// that has not answered within two intervals is dropped.
const DefaultPingInterval = 30 * time.Second

// PreviewMessage is the JSON pushed over the preview websocket
type PreviewMessage struct {
	Type        string                `json:"type"`
	RunID       string                `json:"run_id,omitempty"`
	Timestamp   int64                 `json:"timestamp"`
	Files       []string              `json:"files,omitempty"`
	Summary     *codegen.Summary      `json:"summary,omitempty"`
	Diagnostics errors.DiagnosticList `json:"diagnostics,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// Snapshot is the latest published emission
type Snapshot struct {
	RunID       string                `json:"run_id"`
	Surface     string                `json:"-"`
	Summary     codegen.Summary       `json:"summary"`
	Diagnostics errors.DiagnosticList `json:"diagnostics"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Error       string                `json:"error,omitempty"`
}

// PreviewServer serves the most recent emission over HTTP and notifies
// connected browsers when it changes
type PreviewServer struct {
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *zap.Logger
	auth     *TokenAuth
	ping     time.Duration

	mu       sync.RWMutex
	snapshot Snapshot

	connMu      sync.Mutex
	connections map[*websocket.Conn]struct{}
}

// PreviewOption configures a PreviewServer
type PreviewOption func(*PreviewServer)

// WithPingInterval overrides DefaultPingInterval
func WithPingInterval(d time.Duration) PreviewOption {
	return func(ps *PreviewServer) {
		if d > 0 {
			ps.ping = d
		}
	}
}

// WithAuth requires a valid token on every request. Authenticated websocket
// upgrades are accepted from any origin.
func WithAuth(auth *TokenAuth) PreviewOption {
	return func(ps *PreviewServer) {
		ps.auth = auth
		ps.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}
}

// NewPreviewServer creates a preview server with nothing published yet
func NewPreviewServer(logger *zap.Logger, opts ...PreviewOption) *PreviewServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	ps := &PreviewServer{
		logger:      logger,
		ping:        DefaultPingInterval,
		connections: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     localOrigin,
		},
	}

	for _, opt := range opts {
		opt(ps)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if ps.auth != nil {
		r.Use(ps.auth.Middleware)
	}
	r.Get("/", ps.handleIndex)
	r.Get("/surface.cs", ps.handleSurface)
	r.Get("/summary.json", ps.handleSummary)
	r.Get("/ws", ps.handleWebSocket)
	ps.router = r

	return ps
}

// localOrigin admits same-origin requests and pages served from loopback
func localOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, prefix := range []string{"http://localhost", "https://localhost", "http://127.0.0.1", "https://127.0.0.1"} {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}

// Handler returns the HTTP handler serving the preview
func (ps *PreviewServer) Handler() http.Handler {
	return ps.router
}

// Snapshot returns the latest published emission
func (ps *PreviewServer) Snapshot() Snapshot {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.snapshot
}

// NotifyBuilding tells clients a re-emission started
func (ps *PreviewServer) NotifyBuilding(runID string, files []string) {
	ps.broadcast(&PreviewMessage{Type: MessageBuilding, RunID: runID, Timestamp: time.Now().Unix(), Files: files})
}

// Publish replaces the served surface and notifies clients
func (ps *PreviewServer) Publish(runID, surface string, summary codegen.Summary, diagnostics errors.DiagnosticList) {
	ps.mu.Lock()
	ps.snapshot = Snapshot{
		RunID:       runID,
		Surface:     surface,
		Summary:     summary,
		Diagnostics: diagnostics,
		UpdatedAt:   time.Now(),
	}
	ps.mu.Unlock()

	ps.broadcast(&PreviewMessage{
		Type:        MessageUpdated,
		RunID:       runID,
		Timestamp:   time.Now().Unix(),
		Summary:     &summary,
		Diagnostics: diagnostics,
	})
}

// PublishError keeps the last good surface and reports err to clients
func (ps *PreviewServer) PublishError(runID string, err error) {
	ps.mu.Lock()
	ps.snapshot.Error = err.Error()
	ps.mu.Unlock()

	ps.broadcast(&PreviewMessage{Type: MessageError, RunID: runID, Timestamp: time.Now().Unix(), Error: err.Error()})
}

// ConnectionCount returns the number of connected preview clients
func (ps *PreviewServer) ConnectionCount() int {
	ps.connMu.Lock()
	defer ps.connMu.Unlock()
	return len(ps.connections)
}

// Close disconnects every client
func (ps *PreviewServer) Close() {
	ps.connMu.Lock()
	defer ps.connMu.Unlock()
	for conn := range ps.connections {
		conn.Close()
	}
	ps.connections = make(map[*websocket.Conn]struct{})
}

func (ps *PreviewServer) broadcast(msg *PreviewMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		ps.logger.Error("failed to encode preview message", zap.Error(err))
		return
	}

	ps.connMu.Lock()
	defer ps.connMu.Unlock()
	for conn := range ps.connections {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			ps.logger.Debug("dropping preview client", zap.Error(err))
			conn.Close()
			delete(ps.connections, conn)
		}
	}
}

func (ps *PreviewServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := ps.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ps.logger.Warn("failed to upgrade preview connection", zap.Error(err))
		return
	}

	ps.connMu.Lock()
	ps.connections[conn] = struct{}{}
	count := len(ps.connections)
	ps.connMu.Unlock()
	ps.logger.Debug("preview client connected", zap.Int("clients", count))

	done := make(chan struct{})
	go ps.keepAlive(conn, done)
	go ps.readUntilClosed(conn, done)
}

// keepAlive pings conn until it is closed. Writes share connMu with broadcast.
func (ps *PreviewServer) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(ps.ping)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ps.connMu.Lock()
			_, ok := ps.connections[conn]
			var err error
			if ok {
				err = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ps.ping))
			}
			ps.connMu.Unlock()
			if !ok {
				return
			}
			if err != nil {
				ps.logger.Debug("failed to ping preview client", zap.Error(err))
				return
			}
		}
	}
}

// readUntilClosed drains client frames so pongs and closes are processed.
// Every pong extends the read deadline by two ping intervals.
func (ps *PreviewServer) readUntilClosed(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	defer func() {
		ps.connMu.Lock()
		if _, ok := ps.connections[conn]; ok {
			delete(ps.connections, conn)
			conn.Close()
		}
		ps.connMu.Unlock()
	}()

	wait := 2 * ps.ping
	conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ps.logger.Debug("preview connection closed", zap.Error(err))
			}
			return
		}
	}
}

func (ps *PreviewServer) handleSurface(w http.ResponseWriter, r *http.Request) {
	snap := ps.Snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if snap.RunID != "" {
		w.Header().Set("X-Genapi-Run", snap.RunID)
	}
	fmt.Fprint(w, snap.Surface)
}

func (ps *PreviewServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ps.Snapshot()); err != nil {
		ps.logger.Warn("failed to write summary", zap.Error(err))
	}
}

const previewScript = `<script>
(function() {
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws" + location.search);
  ws.onmessage = function(e) {
    var msg = JSON.parse(e.data);
    if (msg.type === "updated") { location.reload(); }
    if (msg.type === "error") { document.getElementById("status").textContent = msg.error; }
  };
  ws.onclose = function() { setTimeout(function() { location.reload(); }, 2000); };
})();
</script>`

func (ps *PreviewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := ps.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(snap.Summary.Assembly))
	b.WriteString("</title></head><body>\n")
	fmt.Fprintf(&b, "<p id=\"status\">%s</p>\n", html.EscapeString(snap.Error))
	fmt.Fprintf(&b, "<p>%d namespaces, %d types, %d members</p>\n", snap.Summary.Namespaces, snap.Summary.Types, snap.Summary.Members)
	b.WriteString("<pre>")
	b.WriteString(html.EscapeString(snap.Surface))
	b.WriteString("</pre>\n")
	b.WriteString(previewScript)
	b.WriteString("\n</body></html>\n")

	fmt.Fprint(w, b.String())
}
