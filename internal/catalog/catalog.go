// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog is the thin read-side boundary the client core exposes for
list rendering.

Catalog browsing itself is presentational and lives in the embedding
frontend; this package exists because list responses already carry
interaction totals, and those totals must seed the count aggregators without
a per-item relationship fetch. That seeding path is the only business logic
here.
*/
package catalog

import (
	"context"

	"github.com/taibuivan/yomira-client/internal/interaction"
	"github.com/taibuivan/yomira-client/pkg/slug"
)

// # Wire Shapes

// ComicSummary is one catalog entry as returned by the search endpoint,
// including the interaction totals the platform denormalizes onto lists.
type ComicSummary struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	FavoriteCount int64  `json:"favorite_count"`
	LikeCount     int64  `json:"like_count"`
	WatchedCount  int64  `json:"watched_count"`
}

// # Collaborator

// Searcher is the contract with the catalog search endpoint.
type Searcher interface {

	/*
		Search returns catalog entries matching a normalized query.

		Parameters:
		  - context: context.Context
		  - query: string (already slug-normalized)

		Returns:
		  - []ComicSummary: Matching entries with denormalized totals
		  - error: Transport failures
	*/
	Search(context context.Context, query string) ([]ComicSummary, error)
}

// # Service

// Service performs catalog searches and feeds the returned totals into the
// count aggregators.
type Service struct {
	searcher  Searcher
	favorites *interaction.Counts
	likes     *interaction.Counts
	watched   *interaction.Counts
}

// NewService wires the search collaborator to the per-kind counters.
func NewService(searcher Searcher, favorites, likes, watched *interaction.Counts) *Service {
	return &Service{
		searcher:  searcher,
		favorites: favorites,
		likes:     likes,
		watched:   watched,
	}
}

/*
Search normalizes the query, runs it, and seeds the counters.

Description: The seeding is the point — after a search, favorite/like totals
render from the aggregators alone, with no matching per-item boolean fetched.
The viewer's own relationship maps are not touched.

Parameters:
  - context: context.Context
  - query: string (raw user input; normalized here)

Returns:
  - []ComicSummary: Matching entries
  - error: Transport failures
*/
func (service *Service) Search(context context.Context, query string) ([]ComicSummary, error) {

	// Normalize the way the backend indexes: accents folded, lowercased.
	normalized := slug.From(query)

	results, err := service.searcher.Search(context, normalized)
	if err != nil {
		return nil, err
	}

	for _, comic := range results {
		service.favorites.Seed(comic.ID, comic.FavoriteCount)
		service.likes.Seed(comic.ID, comic.LikeCount)
		service.watched.Seed(comic.ID, comic.WatchedCount)
	}
	return results, nil
}
