// Package server exposes calculators over HTTP: every websocket connection
// gets a calculator of its own and speaks the JSON wire protocol, one message
// per text frame.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-swarm-convergence/internal/worker"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	system    actor.ActorSystem
	opts      worker.Options
	staticDir string
	logger    golog.Logger
	accessLog io.Writer

	sessions atomic.Int64
	upgrader websocket.Upgrader
}

// New builds a server spawning its calculators in system. staticDir, when not
// empty, is served at / (the visualisation client). Access logs go to accessLog
// when it is not nil.
func New(system actor.ActorSystem, opts worker.Options, staticDir string, logger golog.Logger, accessLog io.Writer) *Server {
	if logger == nil {
		logger = golog.DiscardLogger
	}
	return &Server{
		system:    system,
		opts:      opts,
		staticDir: staticDir,
		logger:    logger,
		accessLog: accessLog,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.health).Methods("GET")
	router.HandleFunc("/ws", s.serveWebsocket).Methods("GET")
	if s.staticDir != "" {
		router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
	}
	if s.accessLog == nil {
		return router
	}
	return handlers.CombinedLoggingHandler(s.accessLog, router)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Sessions counts the open websocket sessions.
func (s *Server) Sessions() int64 {
	return s.sessions.Load()
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "ok",
		"sessions": s.Sessions(),
	})
}
