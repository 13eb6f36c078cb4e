package watch

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surfacegen/genapi/internal/codegen"
	genapierrors "github.com/surfacegen/genapi/internal/errors"
)

const sampleSurface = "namespace Contoso\n{\n    public partial class Widget<T>\n    {\n    }\n}\n"

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestPreviewServer_Routes(t *testing.T) {
	ps := NewPreviewServer(nil)
	srv := httptest.NewServer(ps.Handler())
	defer srv.Close()

	summary := codegen.Summary{Assembly: "Contoso", Namespaces: 1, Types: 1}
	ps.Publish("run-1", sampleSurface, summary, nil)

	resp, body := get(t, srv, "/surface.cs")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "run-1", resp.Header.Get("X-Genapi-Run"))
	assert.Equal(t, sampleSurface, body)

	resp, body = get(t, srv, "/summary.json")
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var snap map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &snap))
	assert.Equal(t, "run-1", snap["run_id"])
	assert.Equal(t, "Contoso", snap["summary"].(map[string]any)["assembly"])

	_, body = get(t, srv, "/")
	assert.Contains(t, body, "<title>Contoso</title>")
	assert.Contains(t, body, "public partial class Widget&lt;T&gt;")
	assert.Contains(t, body, "new WebSocket")

	resp, _ = get(t, srv, "/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func dial(t *testing.T, srv *httptest.Server, ps *PreviewServer) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return ps.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) PreviewMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg PreviewMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestPreviewServer_Notifications(t *testing.T) {
	ps := NewPreviewServer(nil)
	srv := httptest.NewServer(ps.Handler())
	defer srv.Close()
	defer ps.Close()

	conn := dial(t, srv, ps)
	defer conn.Close()

	ps.NotifyBuilding("run-2", []string{"lib.yaml"})
	msg := readMessage(t, conn)
	assert.Equal(t, MessageBuilding, msg.Type)
	assert.Equal(t, []string{"lib.yaml"}, msg.Files)

	ps.Publish("run-2", sampleSurface, codegen.Summary{Assembly: "Contoso", Types: 1}, genapierrors.DiagnosticList{
		genapierrors.NewMalformedDynamic("Contoso.Widget.Bag", "too few flags"),
	})
	msg = readMessage(t, conn)
	assert.Equal(t, MessageUpdated, msg.Type)
	assert.Equal(t, "run-2", msg.RunID)
	require.NotNil(t, msg.Summary)
	assert.Equal(t, 1, msg.Summary.Types)
	require.Len(t, msg.Diagnostics, 1)
	assert.Equal(t, genapierrors.ErrMalformedDynamic, msg.Diagnostics[0].Code)

	ps.PublishError("run-3", errors.New("decode failed"))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
	assert.Equal(t, "decode failed", msg.Error)

	snap := ps.Snapshot()
	assert.Equal(t, sampleSurface, snap.Surface, "an error keeps the last good surface")
	assert.Equal(t, "decode failed", snap.Error)
}

func TestPreviewServer_ClientDisconnect(t *testing.T) {
	ps := NewPreviewServer(nil)
	srv := httptest.NewServer(ps.Handler())
	defer srv.Close()

	conn := dial(t, srv, ps)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return ps.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestLocalOrigin(t *testing.T) {
	tests := []struct {
		origin   string
		expected bool
	}{
		{"", true},
		{"http://localhost:8080", true},
		{"http://127.0.0.1:4000", true},
		{"https://example.com", false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.expected, localOrigin(r), tt.origin)
	}
}

func TestPreviewServer_KeepsIdleClients(t *testing.T) {
	interval := 20 * time.Millisecond
	ps := NewPreviewServer(nil, WithPingInterval(interval))
	srv := httptest.NewServer(ps.Handler())
	defer srv.Close()
	defer ps.Close()

	conn := dial(t, srv, ps)
	defer conn.Close()

	var pings atomic.Int32
	conn.SetPingHandler(func(data string) error {
		pings.Add(1)
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	messages := make(chan PreviewMessage, 1)
	go func() {
		for {
			var msg PreviewMessage
			if err := conn.ReadJSON(&msg); err != nil {
				close(messages)
				return
			}
			messages <- msg
		}
	}()

	time.Sleep(10 * interval)
	assert.GreaterOrEqual(t, pings.Load(), int32(3))
	assert.Equal(t, 1, ps.ConnectionCount(), "an idle client that answers pings stays connected")

	ps.Publish("run-9", sampleSurface, codegen.Summary{Assembly: "Contoso"}, nil)
	select {
	case msg, ok := <-messages:
		require.True(t, ok)
		assert.Equal(t, MessageUpdated, msg.Type)
		assert.Equal(t, "run-9", msg.RunID)
	case <-time.After(2 * time.Second):
		t.Fatal("no update after the idle period")
	}
}

func TestPreviewServer_DropsUnresponsiveClients(t *testing.T) {
	ps := NewPreviewServer(nil, WithPingInterval(20*time.Millisecond))
	srv := httptest.NewServer(ps.Handler())
	defer srv.Close()
	defer ps.Close()

	// Never reading means never answering pings
	conn := dial(t, srv, ps)
	defer conn.Close()

	require.Eventually(t, func() bool { return ps.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWithPingInterval(t *testing.T) {
	assert.Equal(t, DefaultPingInterval, NewPreviewServer(nil).ping)
	assert.Equal(t, time.Second, NewPreviewServer(nil, WithPingInterval(time.Second)).ping)
	assert.Equal(t, DefaultPingInterval, NewPreviewServer(nil, WithPingInterval(0)).ping)
}
