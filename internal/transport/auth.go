// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package transport

import (
	"context"
	"net/http"
)

// # Auth Collaborator

// AuthAPI implements the session store's Authenticator contract over the
// platform's auth endpoints.
type AuthAPI struct {
	client *Client
}

// NewAuthAPI wraps the shared client for the auth route group.
func NewAuthAPI(client *Client) *AuthAPI {
	return &AuthAPI{client: client}
}

// loginRequest is the wire shape of a credential exchange.
type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// loginResponse carries the issued bearer token.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

/*
Login exchanges credentials for a bearer token.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - string: The issued bearer token
  - error: apperr.Transport carrying the server's rejection message
*/
func (api *AuthAPI) Login(context context.Context, email, password string) (string, error) {
	out := loginResponse{}
	err := api.client.do(context, http.MethodPost, "/auth/login",
		loginRequest{Login: email, Password: password}, &out)
	if err != nil {
		return "", err
	}
	return out.AccessToken, nil
}
