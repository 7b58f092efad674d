package models

import (
	"time"

	"github.com/google/uuid"
)

// Order status values. Ready is terminal; failed can be retried.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

// Model types accepted by the create-order endpoint.
const (
	ModelTypeNew     = "new"
	ModelTypeRecolor = "recolor"
)

// Prices per model type, in credits.
const (
	PriceNew     = 120
	PriceRecolor = 30
)

// Asset keys populated when an order reaches ready.
const (
	AssetLOD0       = "LOD0"
	AssetLOD1       = "LOD1"
	AssetLOD2       = "LOD2"
	AssetNFT        = "NFT"
	AssetBackground = "background"
)

// AssetKeys lists every key a ready order carries.
var AssetKeys = []string{AssetLOD0, AssetLOD1, AssetLOD2, AssetNFT, AssetBackground}

type Order struct {
	ID        uuid.UUID
	Prompt    string
	ModelType string
	UserEmail string
	Status    string
	Price     int
	Assets    map[string]string
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PriceFor returns the price for a model type. The second return is false
// for unrecognized types.
func PriceFor(modelType string) (int, bool) {
	switch modelType {
	case ModelTypeNew:
		return PriceNew, true
	case ModelTypeRecolor:
		return PriceRecolor, true
	default:
		return 0, false
	}
}

// Clone returns a deep copy so callers can hand orders out without
// aliasing the stored asset map.
func (o *Order) Clone() *Order {
	cp := *o
	if o.Assets != nil {
		cp.Assets = make(map[string]string, len(o.Assets))
		for k, v := range o.Assets {
			cp.Assets[k] = v
		}
	}
	return &cp
}
