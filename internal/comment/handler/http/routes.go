package http

import (
	stdhttp "net/http"
)

func (h *Handler) Register(mux *stdhttp.ServeMux) {
	mux.HandleFunc("GET /comments/{itemId}", h.GetComments)
	mux.HandleFunc("POST /comments/{itemId}", h.CreateComment)

	mux.HandleFunc("GET /sessions/reply", h.GetReply)
	mux.HandleFunc("PUT /sessions/reply", h.StartReply)
	mux.HandleFunc("DELETE /sessions/reply", h.CancelReply)
}
