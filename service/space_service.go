package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/ports"
)

// SpaceService manages spaces and their tile grids. Plain CRUD with owner
// checks; the marketplace core treats tiles as opaque assets.
type SpaceService struct {
	repo   ports.RepoManager
	events ports.EventPublisher
	log    *logrus.Entry
}

// NewSpaceService creates a new space service.
func NewSpaceService(repo ports.RepoManager, events ports.EventPublisher) *SpaceService {
	return &SpaceService{
		repo:   repo,
		events: events,
		log:    logrus.WithField("service", "spaces"),
	}
}

// SpaceInfo is a space together with its tile count.
type SpaceInfo struct {
	core.Space
	TileCount int `json:"tile_count"`
}

// CreateSpaceParams is the validated input for creating a space.
type CreateSpaceParams struct {
	SpaceID     string
	Name        string
	Description string
	MaxTiles    int
	TokenName   string
	TokenSymbol string
	Settings    map[string]any
}

// Create registers a new space owned by the caller. Slug uniqueness is
// checked and the insert committed in one transaction.
func (s *SpaceService) Create(ctx context.Context, owner string, params CreateSpaceParams) (*core.Space, error) {
	space, err := core.NewSpace(owner, params.SpaceID, params.Name, params.MaxTiles)
	if err != nil {
		return nil, err
	}
	space.Description = params.Description
	space.TokenName = params.TokenName
	space.TokenSymbol = params.TokenSymbol
	if params.Settings != nil {
		space.Settings = params.Settings
	}

	err = s.repo.RunTransaction(ctx, false, func(txCtx context.Context) error {
		if _, err := s.repo.Spaces().GetSpace(txCtx, space.SpaceID); err == nil {
			return core.ErrConflict("a space with this id already exists")
		} else if !core.IsCode(err, core.CodeNotFound) {
			return err
		}
		return s.repo.Spaces().AddSpace(txCtx, space)
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.events, s.log, EventSpaceCreated, space, "")
	return space, nil
}

// List returns every space with its tile count, newest first.
func (s *SpaceService) List(ctx context.Context) ([]SpaceInfo, error) {
	spaces, err := s.repo.Spaces().ListSpaces(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]SpaceInfo, 0, len(spaces))
	for _, space := range spaces {
		count, err := s.repo.Spaces().CountTiles(ctx, space.SpaceID)
		if err != nil {
			return nil, err
		}
		infos = append(infos, SpaceInfo{Space: space, TileCount: count})
	}
	return infos, nil
}

// Get returns one space with its tile count.
func (s *SpaceService) Get(ctx context.Context, spaceID string) (*SpaceInfo, error) {
	space, err := s.repo.Spaces().GetSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.Spaces().CountTiles(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	return &SpaceInfo{Space: *space, TileCount: count}, nil
}

// UpdateSpaceParams carries the optional fields of a space update.
type UpdateSpaceParams struct {
	Name        *string
	Description *string
	MaxTiles    *int
	TokenName   *string
	TokenSymbol *string
	Settings    map[string]any
}

func (p UpdateSpaceParams) empty() bool {
	return p.Name == nil && p.Description == nil && p.MaxTiles == nil &&
		p.TokenName == nil && p.TokenSymbol == nil && p.Settings == nil
}

// Update changes space attributes, owner only.
func (s *SpaceService) Update(ctx context.Context, spaceID, actor string, params UpdateSpaceParams) (*core.Space, error) {
	if params.empty() {
		return nil, core.ErrValidation("no fields to update")
	}

	var updated *core.Space
	err := s.repo.RunTransaction(ctx, false, func(txCtx context.Context) error {
		space, err := s.repo.Spaces().GetSpace(txCtx, spaceID)
		if err != nil {
			return err
		}
		if err := core.RequireActor(actor, space.OwnerWallet, "only the space owner can update this space"); err != nil {
			return err
		}

		if params.Name != nil {
			if *params.Name == "" || len(*params.Name) > 255 {
				return core.ErrValidation("name is required")
			}
			space.Name = *params.Name
		}
		if params.Description != nil {
			space.Description = *params.Description
		}
		if params.MaxTiles != nil {
			if *params.MaxTiles < 1 || *params.MaxTiles > 10000 {
				return core.ErrValidation("max tiles must be between 1 and 10000")
			}
			space.MaxTiles = *params.MaxTiles
		}
		if params.TokenName != nil {
			space.TokenName = *params.TokenName
		}
		if params.TokenSymbol != nil {
			space.TokenSymbol = *params.TokenSymbol
		}
		if params.Settings != nil {
			space.Settings = params.Settings
		}
		space.UpdatedAt = time.Now().UTC()

		if err := s.repo.Spaces().UpdateSpace(txCtx, space); err != nil {
			return err
		}
		updated = space
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.events, s.log, EventSpaceUpdated, updated, updated.SpaceID)
	return updated, nil
}

// Delete removes a space and its tiles, owner only.
func (s *SpaceService) Delete(ctx context.Context, spaceID, actor string) error {
	err := s.repo.RunTransaction(ctx, false, func(txCtx context.Context) error {
		space, err := s.repo.Spaces().GetSpace(txCtx, spaceID)
		if err != nil {
			return err
		}
		if err := core.RequireActor(actor, space.OwnerWallet, "only the space owner can delete this space"); err != nil {
			return err
		}
		return s.repo.Spaces().DeleteSpace(txCtx, spaceID)
	})
	if err != nil {
		return err
	}

	notify(ctx, s.events, s.log, EventSpaceDeleted, map[string]string{"space_id": spaceID}, spaceID)
	return nil
}

// CreateTileParams is the validated input for registering a tile.
type CreateTileParams struct {
	TokenID      int64
	GridPosition int64
	OwnerWallet  string
	Tier         int
	Metadata     map[string]any
}

// CreateTile registers a tile in a space, space owner only. The grid is
// capped at the space's max tiles.
func (s *SpaceService) CreateTile(ctx context.Context, spaceID, actor string, params CreateTileParams) (*core.Tile, error) {
	tile, err := core.NewTile(spaceID, params.TokenID, params.GridPosition, params.Tier)
	if err != nil {
		return nil, err
	}
	if params.OwnerWallet != "" {
		tile.OwnerWallet = core.NormalizeWallet(params.OwnerWallet)
	}
	if params.Metadata != nil {
		tile.Metadata = params.Metadata
	}

	err = s.repo.RunTransaction(ctx, false, func(txCtx context.Context) error {
		space, err := s.repo.Spaces().GetSpace(txCtx, spaceID)
		if err != nil {
			return err
		}
		if err := core.RequireActor(actor, space.OwnerWallet, "only the space owner can manage tiles"); err != nil {
			return err
		}
		if _, err := s.repo.Spaces().GetTile(txCtx, spaceID, params.TokenID); err == nil {
			return core.ErrConflict("a tile with this token id already exists")
		} else if !core.IsCode(err, core.CodeNotFound) {
			return err
		}
		count, err := s.repo.Spaces().CountTiles(txCtx, spaceID)
		if err != nil {
			return err
		}
		if count >= space.MaxTiles {
			return core.ErrInvalidState("space is full")
		}
		return s.repo.Spaces().AddTile(txCtx, tile)
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.events, s.log, EventTileCreated, tile, spaceID)
	return tile, nil
}

// UpdateTileParams carries the optional fields of a tile update.
type UpdateTileParams struct {
	OwnerWallet *string
	Tier        *int
	Metadata    map[string]any
}

// UpdateTile changes tile attributes, space owner only.
func (s *SpaceService) UpdateTile(ctx context.Context, spaceID string, tokenID int64, actor string, params UpdateTileParams) (*core.Tile, error) {
	if params.OwnerWallet == nil && params.Tier == nil && params.Metadata == nil {
		return nil, core.ErrValidation("no fields to update")
	}

	var updated *core.Tile
	err := s.repo.RunTransaction(ctx, false, func(txCtx context.Context) error {
		space, err := s.repo.Spaces().GetSpace(txCtx, spaceID)
		if err != nil {
			return err
		}
		if err := core.RequireActor(actor, space.OwnerWallet, "only the space owner can manage tiles"); err != nil {
			return err
		}

		tile, err := s.repo.Spaces().GetTile(txCtx, spaceID, tokenID)
		if err != nil {
			return err
		}
		if params.OwnerWallet != nil {
			tile.OwnerWallet = core.NormalizeWallet(*params.OwnerWallet)
		}
		if params.Tier != nil {
			if *params.Tier < 1 || *params.Tier > 5 {
				return core.ErrValidation("tier must be between 1 and 5")
			}
			tile.Tier = *params.Tier
		}
		if params.Metadata != nil {
			tile.Metadata = params.Metadata
		}
		tile.UpdatedAt = time.Now().UTC()

		if err := s.repo.Spaces().UpdateTile(txCtx, tile); err != nil {
			return err
		}
		updated = tile
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify(ctx, s.events, s.log, EventTileUpdated, updated, spaceID)
	return updated, nil
}

// ListTiles returns a space's tiles ordered by grid position.
func (s *SpaceService) ListTiles(ctx context.Context, spaceID string) ([]core.Tile, error) {
	if _, err := s.repo.Spaces().GetSpace(ctx, spaceID); err != nil {
		return nil, err
	}
	return s.repo.Spaces().ListTiles(ctx, spaceID)
}

// GetTile returns one tile by space and token id.
func (s *SpaceService) GetTile(ctx context.Context, spaceID string, tokenID int64) (*core.Tile, error) {
	if _, err := s.repo.Spaces().GetSpace(ctx, spaceID); err != nil {
		return nil, err
	}
	return s.repo.Spaces().GetTile(ctx, spaceID, tokenID)
}
