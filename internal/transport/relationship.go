// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/taibuivan/yomira-client/internal/interaction"
)

// # Relationship Collaborator

// RelationshipAPI implements [interaction.Collaborator] for one kind over
// the platform's relationship endpoints.
//
// Route shape (one group per kind):
//
//	GET  /users/{subjectID}/{kind}          -> {"data": [{entity_id, state}, ...]}
//	POST /{kind}/{entityID}/toggle          -> {"data": {entity_id, state}}
//
// The toggle request carries no direction: the server decides the resulting
// state and returns it.
type RelationshipAPI struct {
	client *Client
	group  string
}

// kindGroups maps relationship kinds to their REST path segments.
var kindGroups = map[interaction.Kind]string{
	interaction.KindLike:        "likes",
	interaction.KindFavorite:    "favorites",
	interaction.KindWatched:     "watched",
	interaction.KindFollow:      "follows",
	interaction.KindCommentVote: "comment-votes",
}

// NewRelationshipAPI wraps the shared client for one kind's route group.
func NewRelationshipAPI(client *Client, kind interaction.Kind) *RelationshipAPI {
	group, ok := kindGroups[kind]
	if !ok {
		// Unknown kinds fall back to the kind name itself so a new kind is
		// usable before this table learns about it.
		group = string(kind)
	}
	return &RelationshipAPI{client: client, group: group}
}

// Fetch returns every relationship the subject user holds for this kind.
func (api *RelationshipAPI) Fetch(context context.Context, subjectUserID int64) ([]interaction.EntityState, error) {
	out := []interaction.EntityState{}
	path := fmt.Sprintf("/users/%d/%s", subjectUserID, api.group)
	if err := api.client.do(context, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Toggle flips the viewer's relationship for one entity and returns the
// server-decided resulting state.
func (api *RelationshipAPI) Toggle(context context.Context, entityID int64) (interaction.EntityState, error) {
	out := interaction.EntityState{}
	path := fmt.Sprintf("/%s/%d/toggle", api.group, entityID)
	if err := api.client.do(context, http.MethodPost, path, nil, &out); err != nil {
		return interaction.EntityState{}, err
	}
	return out, nil
}
