package http

import (
	stdhttp "net/http"
)

func (h *Handler) Register(mux *stdhttp.ServeMux) {
	mux.HandleFunc("GET /products/nearme", h.ListNearby)
	mux.HandleFunc("GET /products/{id}", h.GetProduct)
	mux.HandleFunc("POST /products", h.CreateProduct)
}
