package core

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

var spaceSlugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Space is a named virtual world holding a fixed grid of tiles. Plain CRUD
// entity, no status machine; uniqueness is on the SpaceID slug.
type Space struct {
	ID          string         `json:"id" badgerhold:"key"`
	SpaceID     string         `json:"space_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	OwnerWallet string         `json:"owner_wallet"`
	MaxTiles    int            `json:"max_tiles"`
	TokenName   string         `json:"token_name,omitempty"`
	TokenSymbol string         `json:"token_symbol,omitempty"`
	Settings    map[string]any `json:"settings"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewSpace creates a space owned by the given wallet.
func NewSpace(owner, spaceID, name string, maxTiles int) (*Space, error) {
	if spaceID == "" || len(spaceID) > 100 || !spaceSlugPattern.MatchString(spaceID) {
		return nil, ErrValidation("space id must be lowercase alphanumeric with hyphens")
	}
	if name == "" || len(name) > 255 {
		return nil, ErrValidation("name is required")
	}
	if maxTiles <= 0 {
		maxTiles = 100
	}
	if maxTiles > 10000 {
		return nil, ErrValidation("max tiles must not exceed 10000")
	}

	now := time.Now().UTC()
	return &Space{
		ID:          uuid.New().String(),
		SpaceID:     spaceID,
		Name:        name,
		OwnerWallet: NormalizeWallet(owner),
		MaxTiles:    maxTiles,
		Settings:    map[string]any{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Tile is one cell of a space's grid. The marketplace core treats the tile
// as opaque; this record only carries display ownership and metadata.
type Tile struct {
	ID           string         `json:"id" badgerhold:"key"`
	SpaceID      string         `json:"space_id"`
	TokenID      int64          `json:"token_id"`
	GridPosition int64          `json:"grid_position"`
	OwnerWallet  string         `json:"owner_wallet,omitempty"`
	Tier         int            `json:"tier"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewTile creates a tile within a space.
func NewTile(spaceID string, tokenID, gridPosition int64, tier int) (*Tile, error) {
	if tokenID < 0 || gridPosition < 0 {
		return nil, ErrValidation("token id and grid position must not be negative")
	}
	if tier == 0 {
		tier = 1
	}
	if tier < 1 || tier > 5 {
		return nil, ErrValidation("tier must be between 1 and 5")
	}

	now := time.Now().UTC()
	return &Tile{
		ID:           uuid.New().String(),
		SpaceID:      spaceID,
		TokenID:      tokenID,
		GridPosition: gridPosition,
		Tier:         tier,
		Metadata:     map[string]any{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
