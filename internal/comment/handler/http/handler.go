package http

import (
	"encoding/json"
	stdhttp "net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/nearbuy/internal/comment/service"
	"github.com/MyNameIsWhaaat/nearbuy/internal/httpx"
	"github.com/MyNameIsWhaaat/nearbuy/internal/identity"
)

type Handler struct {
	svc service.CommentService
	log zerolog.Logger
}

func New(svc service.CommentService, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type createCommentRequest struct {
	Content  string `json:"content"`
	ParentID *int64 `json:"parent_id"`
}

type startReplyRequest struct {
	CommentID int64 `json:"comment_id"`
}

func (h *Handler) CreateComment(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	itemID, err := uuid.Parse(r.PathValue("itemId"))
	if err != nil {
		httpx.WriteMessage(w, stdhttp.StatusBadRequest, "invalid item id")
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, stdhttp.StatusBadRequest, "bad json")
		return
	}

	who := identity.FromContext(r.Context())
	c, err := h.svc.PostComment(r.Context(), service.PostInput{
		ItemID:    itemID,
		AuthorID:  who.UserID,
		Content:   req.Content,
		SessionID: who.SessionID,
		ParentID:  req.ParentID,
	})
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	httpx.WriteJSON(w, stdhttp.StatusCreated, c)
}

func (h *Handler) GetComments(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	itemID, err := uuid.Parse(r.PathValue("itemId"))
	if err != nil {
		httpx.WriteMessage(w, stdhttp.StatusBadRequest, "invalid item id")
		return
	}

	th, err := h.svc.ListComments(r.Context(), itemID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	httpx.WriteJSON(w, stdhttp.StatusOK, th)
}

func (h *Handler) GetReply(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	view, err := h.svc.ReplyState(r.Context(), identity.FromContext(r.Context()).SessionID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, stdhttp.StatusOK, view)
}

func (h *Handler) StartReply(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req startReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, stdhttp.StatusBadRequest, "bad json")
		return
	}

	view, err := h.svc.StartReply(r.Context(), identity.FromContext(r.Context()).SessionID, req.CommentID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, stdhttp.StatusOK, view)
}

func (h *Handler) CancelReply(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	view, err := h.svc.CancelReply(r.Context(), identity.FromContext(r.Context()).SessionID)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, stdhttp.StatusOK, view)
}
