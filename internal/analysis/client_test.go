package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/")
}

func TestClient_Simplify(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/simplify", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req TextRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "contract", req.Text)

		w.Write([]byte(`{"simplified_text":"short version"}`))
	})

	out, err := c.Simplify(context.Background(), "contract")
	require.NoError(t, err)
	assert.Equal(t, "short version", out)
}

func TestClient_RedFlagsArray(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"clause":"Late fee","explanation":"high","risk":"dangerous"}]`))
	})

	flags, err := c.RedFlags(context.Background(), "contract")
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, RiskDangerous, flags[0].Risk)
	assert.True(t, flags[0].Risk.Valid())
}

func TestClient_TransportError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream"}`))
	})

	_, err := c.Improve(context.Background(), "contract")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	assert.Equal(t, EndpointImprove, te.Endpoint)
}

func TestClient_RemoteError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Failed to process document. Please try again."}`))
	})

	_, err := c.Simplify(context.Background(), "contract")
	var re *RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "Failed to process document. Please try again.", re.Message)

	var te *TransportError
	assert.False(t, errors.As(err, &te))
}

func TestClient_MalformedResponse(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>oops</html>`))
	})

	_, err := c.Suggestions(context.Background(), "contract")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestClient_AskSendsFullHistory(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		history, ok := req["history"].([]any)
		assert.True(t, ok, "history must be a JSON array")
		w.Write([]byte(`{"answer":"` + string(rune('0'+len(history))) + `"}`))
	})

	answer, err := c.Ask(context.Background(), "doc", "first?", nil)
	require.NoError(t, err)
	assert.Equal(t, "0", answer)

	history := []ChatTurn{{"a", "b"}, {"c", "d"}, {"e", "f"}, {"g", "h"}}
	answer, err = c.Ask(context.Background(), "doc", "fifth?", history)
	require.NoError(t, err)
	assert.Equal(t, "4", answer)
}

func TestClient_NoRetries(t *testing.T) {
	var hits int32
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Simplify(context.Background(), "contract")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestClient_SuggestionsOptionalReplacement(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"suggestions":[{"title":"A","description":"a","replacement_text":"new"},{"title":"B","description":"b","replacement_text":null},{"title":"C","description":"c"}]}`))
	})

	suggestions, err := c.Suggestions(context.Background(), "contract")
	require.NoError(t, err)
	require.Len(t, suggestions, 3)
	assert.True(t, suggestions[0].HasReplacement())
	assert.Equal(t, "new", *suggestions[0].ReplacementText)
	assert.False(t, suggestions[1].HasReplacement())
	assert.False(t, suggestions[2].HasReplacement())
}

func TestClient_Health(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"status":"healthy","model_configured":false,"version":"1.0.0"}`))
	})

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
	assert.False(t, h.ModelConfigured)
}
