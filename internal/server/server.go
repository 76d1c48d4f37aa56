package server

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Tuning knobs for the embedded http.Server.
const (
	maxHeaderBytes    = 1 << 20 // 1 MB
	readHeaderTimeout = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// Server owns the HTTP listener lifecycle: Run blocks until the listener
// stops, Shutdown drains in-flight requests.
//
// Note: no WriteTimeout — the /ws endpoint holds its connection open for the
// whole session and manages its own write deadlines.
type Server struct {
	httpServer *http.Server
}

// Run starts listening on the given port ("8080" and ":8080" both accepted)
// with the provided handler.
func (s *Server) Run(port string, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              listenAddr(port),
		Handler:           handler,
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, allowing in-flight requests to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func listenAddr(port string) string {
	if port == "" || strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
