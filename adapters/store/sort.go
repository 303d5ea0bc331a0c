package store

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/ports"
)

// sortListings orders a result set in place. Prices are decimal strings so
// they are compared numerically, not lexically.
func sortListings(listings []core.Listing, by string) {
	switch by {
	case "oldest":
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].CreatedAt.Before(listings[j].CreatedAt)
		})
	case "price_asc":
		sort.SliceStable(listings, func(i, j int) bool {
			return comparePrices(listings[i].Price, listings[j].Price) < 0
		})
	case "price_desc":
		sort.SliceStable(listings, func(i, j int) bool {
			return comparePrices(listings[i].Price, listings[j].Price) > 0
		})
	default: // newest
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].CreatedAt.After(listings[j].CreatedAt)
		})
	}
}

// sortOffers orders offers by amount descending, ties broken by creation
// time ascending so the earliest bid wins visibility among equal amounts.
func sortOffers(offers []core.Offer) {
	sort.SliceStable(offers, func(i, j int) bool {
		cmp := comparePrices(offers[i].Amount, offers[j].Amount)
		if cmp != 0 {
			return cmp > 0
		}
		return offers[i].CreatedAt.Before(offers[j].CreatedAt)
	})
}

func comparePrices(a, b string) int {
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	if errA != nil || errB != nil {
		// Stored values always parsed at creation; fall back to equal.
		return 0
	}
	return da.Cmp(db)
}

// paginate applies limit/offset to an already-sorted result set. Limit is
// capped at 100 and defaults to 50.
func paginate(listings []core.Listing, limit, offset int) []core.Listing {
	if limit <= 0 {
		limit = ports.DefaultPageSize
	}
	if limit > ports.MaxPageSize {
		limit = ports.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(listings) {
		return []core.Listing{}
	}
	end := offset + limit
	if end > len(listings) {
		end = len(listings)
	}
	return listings[offset:end]
}
