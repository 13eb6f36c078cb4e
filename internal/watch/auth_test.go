package watch

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenAuth_IssueAndValidate(t *testing.T) {
	auth := NewTokenAuth("s3cret", time.Hour)

	token, err := auth.Issue("ci")
	require.NoError(t, err)

	subject, err := auth.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ci", subject)

	_, err = NewTokenAuth("other", time.Hour).Validate(token)
	assert.Error(t, err, "wrong secret")

	expired, err := NewTokenAuth("s3cret", -time.Minute).Issue("ci")
	require.NoError(t, err)
	_, err = auth.Validate(expired)
	assert.Error(t, err, "expired")

	_, err = auth.Validate("not-a-token")
	assert.Error(t, err)
}

func TestTokenAuth_Middleware(t *testing.T) {
	auth := NewTokenAuth("s3cret", 0)
	token, err := auth.Issue("ci")
	require.NoError(t, err)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := auth.Middleware(ok)

	tests := []struct {
		name     string
		url      string
		header   string
		expected int
	}{
		{"missing", "/surface.cs", "", http.StatusUnauthorized},
		{"bearer", "/surface.cs", "Bearer " + token, http.StatusNoContent},
		{"query", "/surface.cs?token=" + token, "", http.StatusNoContent},
		{"invalid", "/surface.cs", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestPreviewServer_WithAuth(t *testing.T) {
	auth := NewTokenAuth("s3cret", time.Hour)
	token, err := auth.Issue("browser")
	require.NoError(t, err)

	ps := NewPreviewServer(nil, WithAuth(auth))
	srv := httptest.NewServer(ps.Handler())
	defer srv.Close()
	defer ps.Close()

	resp, _ := get(t, srv, "/summary.json")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = get(t, srv, "/summary.json?token="+token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	header := http.Header{"Origin": []string{"https://preview.example.com"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return ps.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)
}
