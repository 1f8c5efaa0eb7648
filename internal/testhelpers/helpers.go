// Package testhelpers provides common utilities and helper functions for
// testing the scoreline server.
//
// It contains reusable helpers for dialing the push channel, reading
// match_update frames, and calling the mutation API, so test files stay
// focused on behaviour.
package testhelpers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/scoreline/internal/match"
)

// DefaultTimeout bounds every blocking helper.
const DefaultTimeout = 5 * time.Second

// Frame mirrors the JSON frame pushed to subscribers.
type Frame struct {
	Type    string      `json:"type"`
	Payload match.State `json:"payload"`
}

// MatchResponse mirrors the success envelope of the mutation API.
type MatchResponse struct {
	Success    bool        `json:"success"`
	MatchState match.State `json:"matchState"`
}

// ErrorResponse mirrors the error body of the mutation API.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    string         `json:"type"`
	Context map[string]any `json:"context"`
}

// WebSocketURL converts an httptest server URL into the push channel URL.
func WebSocketURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

// ConnectWebSocket dials the push channel of the server at serverURL with a
// same-origin Origin header.
func ConnectWebSocket(t *testing.T, serverURL string) *websocket.Conn {
	t.Helper()
	return ConnectWebSocketWithOrigin(t, serverURL, serverURL)
}

// ConnectWebSocketWithOrigin dials the push channel with the given Origin
// header. The connection is closed when the test ends.
func ConnectWebSocketWithOrigin(t *testing.T, serverURL, origin string) *websocket.Conn {
	t.Helper()

	conn, resp, err := DialWebSocket(serverURL, origin)
	if resp != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err, "dial push channel")

	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

// DialWebSocket dials the push channel and returns the raw result, for
// tests that expect the handshake to fail.
func DialWebSocket(serverURL, origin string) (*websocket.Conn, *http.Response, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: DefaultTimeout,
	}

	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}

	return dialer.Dial(WebSocketURL(serverURL), headers)
}

// ReadFrame reads the next match_update frame, failing the test after
// timeout.
func ReadFrame(t *testing.T, conn *websocket.Conn, timeout time.Duration) Frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(timeout)))
	messageType, data, err := conn.ReadMessage()
	require.NoError(t, err, "read frame")
	require.Equal(t, websocket.TextMessage, messageType)

	var frame Frame
	require.NoError(t, json.Unmarshal(data, &frame), "decode frame %q", data)
	return frame
}

// ReadMatchUpdate reads the next frame and returns its state.
func ReadMatchUpdate(t *testing.T, conn *websocket.Conn) match.State {
	t.Helper()

	frame := ReadFrame(t, conn, DefaultTimeout)
	require.Equal(t, "match_update", frame.Type)
	return frame.Payload
}

// ExpectNoFrame asserts that nothing arrives on conn within wait.
func ExpectNoFrame(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "unexpected frame %q", data)
}

// PostJSON posts body as JSON to serverURL+path.
func PostJSON(t *testing.T, serverURL, path string, body any) *http.Response {
	t.Helper()
	return PostJSONWithHeaders(t, serverURL, path, body, nil)
}

// PostJSONWithHeaders posts body as JSON with extra request headers. A
// string or []byte body is sent as is.
func PostJSONWithHeaders(t *testing.T, serverURL, path string, body any, headers http.Header) *http.Response {
	t.Helper()

	var payload []byte
	switch v := body.(type) {
	case string:
		payload = []byte(v)
	case []byte:
		payload = v
	default:
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	client := &http.Client{Timeout: DefaultTimeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "POST %s", path)
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

// DecodeMatchResponse decodes a success envelope.
func DecodeMatchResponse(t *testing.T, resp *http.Response) MatchResponse {
	t.Helper()

	var body MatchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// DecodeErrorResponse decodes an error body.
func DecodeErrorResponse(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}
