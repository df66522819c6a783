package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slabmarket/matching-engine/internal/api/feed"
	"github.com/slabmarket/matching-engine/internal/api/handlers"
	"github.com/slabmarket/matching-engine/internal/api/routes"
	"github.com/slabmarket/matching-engine/internal/matching"
	"github.com/slabmarket/matching-engine/internal/storage/file"
	"github.com/slabmarket/matching-engine/internal/types"
)

// TestServer wraps a test HTTP server with the matching engine
type TestServer struct {
	Server       *httptest.Server
	Engine       *matching.Engine
	Hub          *feed.Hub
	EventLogPath string
	t            testing.TB
}

// NewTestServer creates a new test server with a fresh engine and an event
// log in a temp directory
func NewTestServer(t testing.TB) *TestServer {
	tmpDir := t.TempDir()
	eventLogPath := filepath.Join(tmpDir, "orders.log")

	engine := matching.NewEngine()

	eventLog, err := file.NewFileEventLog(eventLogPath)
	require.NoError(t, err, "Failed to open event log")
	engine.SetEventLog(eventLog)

	hub := feed.NewHub(16)
	engine.SetPublisher(hub)

	engineHolder := handlers.NewEngineHolder(engine)
	handler := routes.SetupRoutes(engineHolder, hub)
	server := httptest.NewServer(handler)

	return &TestServer{
		Server:       server,
		Engine:       engine,
		Hub:          hub,
		EventLogPath: eventLogPath,
		t:            t,
	}
}

// Close cleans up the test server
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Engine.Close()
	// Temp files are removed via t.TempDir()
}

// URL returns the base URL for the test server
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// Get makes a GET request to the test server
func (ts *TestServer) Get(path string) *http.Response {
	resp, err := http.Get(ts.URL() + path)
	require.NoError(ts.t, err, "GET request failed")
	return resp
}

// Post makes a POST request with JSON body
func (ts *TestServer) Post(path string, body interface{}) *http.Response {
	jsonBody, err := json.Marshal(body)
	require.NoError(ts.t, err, "Failed to marshal request body")

	resp, err := http.Post(ts.URL()+path, "application/json", bytes.NewBuffer(jsonBody))
	require.NoError(ts.t, err, "POST request failed")
	return resp
}

// ReadEventLog reads back every accepted-order event written so far
func (ts *TestServer) ReadEventLog() []types.OrderEvent {
	log, err := file.NewFileEventLog(ts.EventLogPath)
	require.NoError(ts.t, err, "Failed to reopen event log")
	defer log.Close()

	events, err := log.ReadAll()
	require.NoError(ts.t, err, "Failed to read event log")
	return events
}

// DecodeJSON decodes JSON response into target
func DecodeJSON(t testing.TB, resp *http.Response, target interface{}) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")

	err = json.Unmarshal(body, target)
	require.NoError(t, err, "Failed to decode JSON response: %s", string(body))
}
