// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/c2FmZQ/storage"
	"github.com/ttbt-io/scorecard/frontend"
)

func generateETag(data []byte) string {
	return fmt.Sprintf("\"%x\"", sha256.Sum256(data))
}

func hubBusyResponse(w http.ResponseWriter, retryAfter string) {
	w.Header().Set("Retry-After", retryAfter)
	http.Error(w, "Too Many Requests: Server is busy", http.StatusTooManyRequests)
}

func parsePagination(r *http.Request) (int, int, string, string, string) {
	limit := 50
	offset := 0
	sortBy := r.URL.Query().Get("sortBy")
	order := r.URL.Query().Get("order")
	query := r.URL.Query().Get("q")

	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil {
			offset = val
		}
	}

	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset, sortBy, order, query
}

// Options represent server options.
type Options struct {
	Addr     string
	Cert     *tls.Certificate
	DataDir  string
	Debug    bool
	Storage  *storage.Storage
	Store    *ScorecardStore
	Listener net.Listener

	// SaveDelay is the debounce period of automatic saves.
	SaveDelay time.Duration
	// IdleTimeout stops the hub of a scorecard nobody has touched for that long.
	IdleTimeout time.Duration
}

const (
	retryAfterLoad   = "2"
	retryAfterAction = "5"
)

// Server represents the running server instance.
type Server struct {
	httpServer *http.Server
	hubs       *HubManager
}

// Shutdown stops accepting requests and writes every pending scorecard edit.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []string

	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("http: %v", err))
	}
	if err := s.hubs.CloseAll(ctx); err != nil {
		errs = append(errs, fmt.Sprintf("hubs: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %s", strings.Join(errs, ", "))
	}
	return nil
}

// StartServer starts the web server and registers the API handlers.
func StartServer(opts Options) (*Server, error) {
	hm, handler := NewServerHandler(opts)

	httpServer := &http.Server{
		Addr:    opts.Addr,
		Handler: handler,
	}
	if opts.Cert != nil {
		httpServer.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{*opts.Cert},
		}
	}

	listener := opts.Listener
	if listener == nil {
		l, err := net.Listen("tcp", opts.Addr)
		if err != nil {
			hm.CloseAll(context.Background())
			return nil, fmt.Errorf("listen %s: %w", opts.Addr, err)
		}
		listener = l
	}

	go func() {
		var err error
		if httpServer.TLSConfig != nil {
			log.Printf("Starting HTTPS server on %s...", listener.Addr())
			err = httpServer.ServeTLS(listener, "", "")
		} else {
			log.Printf("Starting HTTP server on %s...", listener.Addr())
			err = httpServer.Serve(listener)
		}
		if err != nil && !errors.Is(err, net.ErrClosed) && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	return &Server{
			httpServer: httpServer,
			hubs:       hm,
		},
		nil
}

type headerState struct {
	Active     int  `json:"active"`
	PlayerInfo bool `json:"playerInfo"`
}

// actionResponse is the body returned by every scorecard operation.
// Applied is false when the edit was refused; Updates then carries the
// notification explaining why.
type actionResponse struct {
	Applied bool        `json:"applied"`
	Updates []Update    `json:"updates"`
	State   *GameData   `json:"state,omitempty"`
	Headers headerState `json:"headers"`
}

type snapshotResponse struct {
	ID      string      `json:"id"`
	State   *GameData   `json:"state"`
	Headers headerState `json:"headers"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// writeError maps request and hub errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMalformedRequest),
		errors.Is(err, ErrOutOfRange),
		errors.Is(err, ErrUnknownField),
		errors.Is(err, ErrFieldTooLong):
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrHubBusy):
		hubBusyResponse(w, retryAfterAction)
	case errors.Is(err, ErrHubClosed):
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The client is gone.
	default:
		log.Printf("Internal Server Error: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// refused reports whether err is a domain rejection rather than a failure.
func refused(err error) bool {
	return errors.Is(err, ErrOutOfSequence) || errors.Is(err, ErrScoreBounds)
}

// NewServerHandler creates and configures the HTTP handler for the server.
// The returned HubManager must be closed to flush pending edits.
func NewServerHandler(opts Options) (*HubManager, http.Handler) {
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}
	if opts.Storage == nil {
		opts.Storage = storage.New(opts.DataDir, nil)
	}
	store := opts.Store
	if store == nil {
		store = NewScorecardStore(opts.DataDir, opts.Storage)
	}
	store.Debug = opts.Debug

	hm := NewHubManager(store, opts.SaveDelay)
	if opts.IdleTimeout > 0 {
		hm.IdleTimeout = opts.IdleTimeout
	}

	debugf := func(string, ...any) {}
	if opts.Debug {
		debugf = func(f string, a ...any) {
			log.Printf("[DEBUG BACKEND] "+f, a...)
		}
	}
	mux := http.NewServeMux()

	// scorecardID extracts and checks the {id} path value. Only the default
	// scorecard may be used before it was created.
	scorecardID := func(w http.ResponseWriter, r *http.Request) (string, bool) {
		id := r.PathValue("id")
		if !isValidScorecardID(id) {
			http.Error(w, "Bad Request: id is invalid", http.StatusBadRequest)
			return "", false
		}
		if id != DefaultScorecardID && !store.Exists(id) {
			http.Error(w, "Not Found: Scorecard not found", http.StatusNotFound)
			return "", false
		}
		return id, true
	}

	// do runs one operation on the scorecard's hub and writes the outcome.
	do := func(w http.ResponseWriter, r *http.Request, id, reqType string, cmd Command, withState bool) {
		resp, err := hm.Do(r.Context(), id, reqType, cmd)
		if err != nil {
			writeError(w, err)
			return
		}
		if resp.Error != nil && !refused(resp.Error) {
			writeError(w, resp.Error)
			return
		}
		debugf("%s %s applied=%v updates=%d", reqType, id, resp.Applied, len(resp.Updates))
		out := actionResponse{
			Applied: resp.Applied,
			Updates: resp.Updates,
			Headers: headerState{Active: resp.Headers.Active, PlayerInfo: resp.Headers.PlayerInfo},
		}
		if out.Updates == nil {
			out.Updates = []Update{}
		}
		if withState {
			out.State = resp.State
		}
		writeJSON(w, out)
	}

	// withCommand wraps a route whose body decodes to a Command.
	withCommand := func(reqType string, decode func(r *http.Request) (Command, error)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, ok := scorecardID(w, r)
			if !ok {
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
			cmd, err := decode(r)
			if err != nil {
				writeError(w, err)
				return
			}
			do(w, r, id, reqType, cmd, false)
		}
	}

	// withoutBody wraps a route that carries no arguments.
	withoutBody := func(reqType string, withState bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, ok := scorecardID(w, r)
			if !ok {
				return
			}
			do(w, r, id, reqType, Command{}, withState)
		}
	}

	mux.HandleFunc("GET /api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"version": CurrentAppVersion})
	})

	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, hm.Metrics.Status(hm.OpenScorecards()))
	})

	mux.HandleFunc("GET /api/scorecards", func(w http.ResponseWriter, r *http.Request) {
		limit, offset, sortBy, order, query := parsePagination(r)
		page, err := listScorecards(store, query, sortBy, order, limit, offset)
		if err != nil {
			writeError(w, err)
			return
		}
		response, err := json.Marshal(page)
		if err != nil {
			writeError(w, err)
			return
		}
		etag := generateETag(response)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		w.Header().Set("Content-Type", "application/json")
		w.Write(response)
	})

	mux.HandleFunc("POST /api/scorecards", func(w http.ResponseWriter, r *http.Request) {
		id := newScorecardID()
		if err := store.SaveScorecard(id, NewGameData()); err != nil {
			writeError(w, err)
			return
		}
		log.Printf("Created scorecard %s", id)
		w.Header().Set("Location", "/api/scorecards/"+id)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": id})
	})

	mux.HandleFunc("GET /api/scorecards/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := scorecardID(w, r)
		if !ok {
			return
		}
		resp, err := hm.Do(r.Context(), id, ReqTypeSnapshot, Command{})
		if errors.Is(err, ErrHubBusy) {
			hubBusyResponse(w, retryAfterLoad)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		data, err := json.Marshal(snapshotResponse{
			ID:      id,
			State:   resp.State,
			Headers: headerState{Active: resp.Headers.Active, PlayerInfo: resp.Headers.PlayerInfo},
		})
		if err != nil {
			writeError(w, err)
			return
		}
		etag := generateETag(data)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	mux.HandleFunc("DELETE /api/scorecards/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := scorecardID(w, r)
		if !ok {
			return
		}
		if err := hm.Delete(id, store.DeleteScorecard); err != nil {
			writeError(w, err)
			return
		}
		log.Printf("Deleted scorecard %s", id)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/scorecards/{id}/cell", withCommand(ReqTypeCell, func(r *http.Request) (Command, error) {
		return decodeCellCommand(r.Body)
	}))
	mux.HandleFunc("POST /api/scorecards/{id}/field", withCommand(ReqTypeField, func(r *http.Request) (Command, error) {
		return decodeFieldCommand(r.Body)
	}))
	mux.HandleFunc("POST /api/scorecards/{id}/header", withCommand(ReqTypeHeader, func(r *http.Request) (Command, error) {
		return decodeHeaderCommand(r.Body)
	}))
	mux.HandleFunc("POST /api/scorecards/{id}/score/{team}/{op}", withCommand(ReqTypeScore, func(r *http.Request) (Command, error) {
		return scoreCommand(r.PathValue("team"), r.PathValue("op"))
	}))
	mux.HandleFunc("POST /api/scorecards/{id}/player-info", withoutBody(ReqTypePlayerInfo, false))
	mux.HandleFunc("POST /api/scorecards/{id}/save", withoutBody(ReqTypeSave, false))
	mux.HandleFunc("POST /api/scorecards/{id}/load", withoutBody(ReqTypeLoad, true))
	mux.HandleFunc("POST /api/scorecards/{id}/clear", withoutBody(ReqTypeClear, true))

	mux.HandleFunc("GET /api/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hm, w, r)
	})

	mux.HandleFunc("GET /print/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := scorecardID(w, r)
		if !ok {
			return
		}
		resp, err := hm.Do(r.Context(), id, ReqTypeSnapshot, Command{})
		if err != nil {
			writeError(w, err)
			return
		}
		var buf bytes.Buffer
		if err := RenderPrintView(&buf, resp.State); err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	})

	// Serve embedded frontend
	contentStatic, err := fs.Sub(frontend.FS, ".")
	if err != nil {
		log.Fatal(err)
	}
	mux.Handle("GET /", contentTypeMiddleware(http.FileServerFS(contentStatic)))

	handler := http.Handler(mux)
	handler = metricsMiddleware(hm.Metrics, handler)
	handler = loggingMiddleware(handler)
	handler = securityMiddleware(handler)
	handler = cacheControlMiddleware(handler)

	return hm, handler
}

// cacheControlMiddleware keeps API responses out of shared caches.
func cacheControlMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/print/") {
			w.Header().Set("Cache-Control", "private, no-cache, no-transform")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=300, proxy-revalidate, no-transform")
		}
		next.ServeHTTP(w, r)
	})
}

// securityMiddleware adds HTTP security headers to responses.
func securityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// contentTypeMiddleware sets the Content-Type of static assets by extension.
func contentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch filepath.Ext(r.URL.Path) {
		case ".js", ".mjs":
			w.Header().Set("Content-Type", "application/javascript")
		case ".css":
			w.Header().Set("Content-Type", "text/css; charset=utf-8")
		case ".html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		case ".json":
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
		}
		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records the latency of every request.
func metricsMiddleware(m *Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		m.ObserveRequest(start, time.Since(start))
	})
}

// loggingMiddleware logs the method and URL path of every incoming HTTP request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Received request: %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
