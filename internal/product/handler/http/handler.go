package http

import (
	"encoding/json"
	stdhttp "net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/nearbuy/internal/geo"
	"github.com/MyNameIsWhaaat/nearbuy/internal/httpx"
	"github.com/MyNameIsWhaaat/nearbuy/internal/identity"
	"github.com/MyNameIsWhaaat/nearbuy/internal/product/model"
	"github.com/MyNameIsWhaaat/nearbuy/internal/product/service"
)

type Handler struct {
	svc service.ProductService
	log zerolog.Logger
}

func New(svc service.ProductService, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func (h *Handler) ListNearby(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	q := r.URL.Query()

	page := 1
	if v := q.Get("page"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			httpx.WriteMessage(w, stdhttp.StatusBadRequest, "invalid page")
			return
		}
		page = parsed
	}

	origin := identity.FromContext(r.Context()).Origin
	if q.Has("lat") || q.Has("lon") {
		lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
		lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
		if errLat != nil || errLon != nil {
			httpx.WriteMessage(w, stdhttp.StatusBadRequest, "invalid origin")
			return
		}
		origin = &geo.Point{Lat: lat, Lon: lon}
	}

	res, err := h.svc.ListNearby(r.Context(), origin, page)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	httpx.WriteJSON(w, stdhttp.StatusOK, res)
}

func (h *Handler) GetProduct(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteMessage(w, stdhttp.StatusBadRequest, "invalid id")
		return
	}

	it, err := h.svc.GetItemDetail(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	httpx.WriteJSON(w, stdhttp.StatusOK, it)
}

func (h *Handler) CreateProduct(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req model.CreateItemInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, stdhttp.StatusBadRequest, "bad json")
		return
	}

	owner := identity.FromContext(r.Context()).UserID
	it, err := h.svc.CreateItem(r.Context(), owner, req)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}

	httpx.WriteJSON(w, stdhttp.StatusCreated, it)
}
