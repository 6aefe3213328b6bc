package rpc

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/MixinNetwork/plog/collector"
	"github.com/dimfeld/httptreemux"
	"github.com/gorilla/handlers"
	"github.com/unrolled/render"
)

type StatsSource interface {
	Stats() map[string]interface{}
}

type MessageReader interface {
	ReadMessage(id uint32) (*collector.Message, error)
	ListMessages(offset uint32, limit int) ([]*collector.Message, error)
}

type R struct {
	Stats StatsSource
	Store MessageReader
}

// NewRouter serves the collector counters, and the archived messages when
// store is not nil.
func NewRouter(stats StatsSource, store MessageReader) *httptreemux.TreeMux {
	router, impl := httptreemux.New(), &R{Stats: stats, Store: store}
	router.GET("/stats", impl.getStats)
	router.GET("/messages", impl.listMessages)
	router.GET("/messages/:id", impl.getMessage)
	registerHanders(router)
	return router
}

func registerHanders(router *httptreemux.TreeMux) {
	router.MethodNotAllowedHandler = func(w http.ResponseWriter, r *http.Request, _ map[string]httptreemux.HandlerFunc) {
		render.New().JSON(w, http.StatusNotFound, map[string]interface{}{})
	}
	router.NotFoundHandler = func(w http.ResponseWriter, r *http.Request) {
		render.New().JSON(w, http.StatusNotFound, map[string]interface{}{})
	}
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, rcv interface{}) {
		err := fmt.Errorf("%v\n%s", rcv, debug.Stack())
		render.New().JSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
	}
}

func handleCORS(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Access-Control-Allow-Headers", "Content-Type,Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "OPTIONS,GET")
		w.Header().Set("Access-Control-Max-Age", "600")
		if r.Method == "OPTIONS" {
			render.New().JSON(w, http.StatusOK, map[string]interface{}{})
		} else {
			handler.ServeHTTP(w, r)
		}
	})
}

func NewHandler(stats StatsSource, store MessageReader) http.Handler {
	router := NewRouter(stats, store)
	handler := handleCORS(router)
	return handlers.ProxyHeaders(handler)
}

// StartHTTP blocks until ctx is done or the server fails.
func StartHTTP(ctx context.Context, stats StatsSource, store MessageReader, port int) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewHandler(stats, store),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		server.Shutdown(sctx)
	}()
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
