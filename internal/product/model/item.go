package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/MyNameIsWhaaat/nearbuy/internal/geo"
)

type Item struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Location  geo.Point `json:"location"`
	Address   string    `json:"address,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type NearbyItem struct {
	Item
	DistanceM float64 `json:"distance_m"`
}

type CreateItemInput struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Address  string  `json:"address"`
	ImageURL string  `json:"image_url"`
}
