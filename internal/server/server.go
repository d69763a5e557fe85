package server

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	commenthttp "github.com/MyNameIsWhaaat/nearbuy/internal/comment/handler/http"
	"github.com/MyNameIsWhaaat/nearbuy/internal/identity"
	producthttp "github.com/MyNameIsWhaaat/nearbuy/internal/product/handler/http"
)

func Routes(products *producthttp.Handler, comments *commenthttp.Handler, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	})
	products.Register(mux)
	comments.Register(mux)

	return Recover(log)(AccessLog(log)(identity.Middleware(mux)))
}

func New(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
