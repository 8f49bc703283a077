package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cedarworks/CedarBible/core/usfm"
	"github.com/cedarworks/CedarBible/internal/logging"
	"github.com/cedarworks/CedarBible/internal/osis"
	"github.com/cedarworks/CedarBible/internal/store"
)

// maxParseBody caps the request body accepted by the parse endpoint (8 MB).
const maxParseBody = 8 << 20

// Server wires the parsing pipeline and the book store to HTTP.
type Server struct {
	store *store.Store
	hub   *Hub
}

// NewServer creates a Server over the given store. The hub is started
// by Routes.
func NewServer(s *store.Store) *Server {
	return &Server{store: s, hub: NewHub()}
}

// Hub exposes the server's WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Routes returns the HTTP handler for all API endpoints and starts the
// WebSocket hub.
func (s *Server) Routes() http.Handler {
	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.hub.ServeWS)
	mux.HandleFunc("/api/parse", s.handleParse)
	mux.HandleFunc("/api/books", s.handleBooks)
	mux.HandleFunc("/api/books/", s.handleBook)
	mux.HandleFunc("/api/imports", s.handleImports)
	mux.HandleFunc("/api/import", s.handleImport)
	return mux
}

// parseResponse is the payload returned by the parse endpoint.
type parseResponse struct {
	Book        json.RawMessage   `json:"book"`
	Diagnostics []usfm.Diagnostic `json:"diagnostics,omitempty"`
	OSIS        string            `json:"osis,omitempty"`
}

// handleParse parses a USFM document posted as the request body and
// returns the book as JSON. With ?format=osis the emitted OSIS document
// is included.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxParseBody))
	if err != nil {
		httpError(w, http.StatusBadRequest, "reading body: "+err.Error())
		return
	}

	b, diags := usfm.ParseText(string(body))
	bookJSON, err := json.Marshal(b)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := parseResponse{Book: bookJSON, Diagnostics: diags}
	if r.URL.Query().Get("format") == "osis" {
		resp.OSIS = string(osis.Emit(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleBooks lists stored books.
func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.store.ListBooks()
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// handleBook returns one stored book by code, optionally as OSIS.
func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Path[len("/api/books/"):]
	if code == "" {
		httpError(w, http.StatusBadRequest, "book code required")
		return
	}

	b, err := s.store.GetBook(code)
	if err != nil {
		httpError(w, http.StatusNotFound, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "osis" {
		w.Header().Set("Content-Type", "application/xml")
		w.Write(osis.Emit(b))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleImports lists recorded imports.
func (s *Server) handleImports(w http.ResponseWriter, r *http.Request) {
	imports, err := s.store.ListImports()
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, imports)
}

// handleImport imports a directory of USFM files, broadcasting per-file
// progress to WebSocket clients.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	dir := r.URL.Query().Get("dir")
	if dir == "" {
		httpError(w, http.StatusBadRequest, "dir query parameter required")
		return
	}

	results, err := s.store.ImportDir(dir, 4, func(res store.ImportResult, done, total int) {
		msg := ProgressMessage{
			Type:        "progress",
			Path:        res.Path,
			BookID:      res.BookID,
			Done:        done,
			Total:       total,
			Diagnostics: len(res.Diagnostics),
		}
		if res.Err != nil {
			msg.Type = "error"
			msg.Message = res.Err.Error()
		}
		s.hub.Broadcast(msg)
	})
	if err != nil {
		s.hub.Broadcast(ProgressMessage{Type: "error", Message: err.Error()})
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.hub.Broadcast(ProgressMessage{
		Type:    "complete",
		Done:    len(results),
		Total:   len(results),
		Message: fmt.Sprintf("imported %d files", len(results)),
	})
	logging.Info("import finished", "dir", dir, "files", len(results))
	writeJSON(w, http.StatusOK, results)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("encode response", "error", err)
	}
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
