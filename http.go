package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docsearch/documenter-mcp-server/tools"
)

// healthResponse is served on /healthz
type healthResponse struct {
	Status string           `json:"status"`
	Index  *tools.IndexInfo `json:"index,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// newRouter mounts the MCP streamable HTTP handler on /mcp next to a
// health endpoint reporting the active index
func newRouter(server *mcp.Server, docSearch *tools.DocSearch) http.Handler {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/mcp", mcpHandler)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		_, info, err := docSearch.Stats()
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(healthResponse{Status: "unavailable", Error: err.Error()})
			return
		}
		json.NewEncoder(w).Encode(healthResponse{Status: "ok", Index: &info})
	})

	return r
}

// serveHTTP exposes the server over streamable HTTP until ctx ends
func serveHTTP(ctx context.Context, handler http.Handler, addr string) error {
	httpServer := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	log.Printf("✓ Server ready and listening on http://%s/mcp", addr)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
