// Package identity reads the caller identity that the upstream auth layer
// forwards as request headers.
package identity

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/MyNameIsWhaaat/nearbuy/internal/geo"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderLat       = "X-User-Lat"
	HeaderLon       = "X-User-Lon"
	HeaderSessionID = "X-Session-ID"
)

type Identity struct {
	UserID    uuid.UUID
	Origin    *geo.Point
	SessionID string
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(ctxKey{}).(Identity)
	return id
}

// Middleware stores the forwarded identity in the request context.
// Malformed values are dropped and treated as absent.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), FromHeaders(r.Header))))
	})
}

func FromHeaders(h http.Header) Identity {
	var id Identity

	if v := h.Get(HeaderUserID); v != "" {
		if u, err := uuid.Parse(v); err == nil {
			id.UserID = u
		}
	}

	lat, errLat := strconv.ParseFloat(h.Get(HeaderLat), 64)
	lon, errLon := strconv.ParseFloat(h.Get(HeaderLon), 64)
	if errLat == nil && errLon == nil {
		id.Origin = &geo.Point{Lat: lat, Lon: lon}
	}

	id.SessionID = h.Get(HeaderSessionID)
	return id
}
