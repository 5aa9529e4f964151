// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package transport

import (
	"context"
	"net/http"
	"net/url"

	"github.com/taibuivan/yomira-client/internal/catalog"
)

// # Catalog Collaborator

// CatalogAPI implements [catalog.Searcher] over the platform's search
// endpoint.
type CatalogAPI struct {
	client *Client
}

// NewCatalogAPI wraps the shared client for the catalog route group.
func NewCatalogAPI(client *Client) *CatalogAPI {
	return &CatalogAPI{client: client}
}

// Search returns catalog entries matching the normalized query.
func (api *CatalogAPI) Search(context context.Context, query string) ([]catalog.ComicSummary, error) {
	out := []catalog.ComicSummary{}
	path := "/comics?query=" + url.QueryEscape(query)
	if err := api.client.do(context, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
