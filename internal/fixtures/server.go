package fixtures

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// ArchiveServer serves a fixed archive over HTTP and counts requests.
type ArchiveServer struct {
	*httptest.Server

	mu       sync.Mutex
	body     []byte
	status   int
	requests int
}

// NewArchiveServer starts a server answering every request with body.
// It is closed when the test ends.
func NewArchiveServer(t testing.TB, body []byte) *ArchiveServer {
	t.Helper()
	s := &ArchiveServer{body: body, status: http.StatusOK}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// SetStatus makes the server answer with status and no body.
func (s *ArchiveServer) SetStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Requests returns the number of requests served.
func (s *ArchiveServer) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// ArchiveURL returns the URL of the archive.
func (s *ArchiveServer) ArchiveURL() string {
	return s.URL + "/archive/refs/heads/main.zip"
}

func (s *ArchiveServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests++
	status, body := s.status, s.body
	s.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	_, _ = w.Write(body)
}
