package backend

import (
	"context"
	"fmt"
	"net/http"

	"labreserva/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login exchanges credentials for an access token. One attempt per
// call; el que llama decide si reintenta.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.doJSON(ctx, "auth_login", http.MethodPost, "/api/auth/login",
		loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("backend: login response without access_token")
	}
	return resp.AccessToken, nil
}

// Me returns the user record for the bearer token in ctx.
func (c *Client) Me(ctx context.Context) (*models.Usuario, error) {
	var user models.Usuario
	if err := c.doGet(ctx, "auth_me", "/api/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RegistroUsuario is the payload for creating an account.
type RegistroUsuario struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Type     string `json:"type"`
}

// Register creates a user account and returns the created record.
func (c *Client) Register(ctx context.Context, reg RegistroUsuario) (*models.Usuario, error) {
	var user models.Usuario
	err := c.doJSON(ctx, "auth_register", http.MethodPost, "/api/auth/register", reg, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsuarios returns every user account.
func (c *Client) ListUsuarios(ctx context.Context) ([]models.Usuario, error) {
	var users []models.Usuario
	if err := c.doGet(ctx, "auth_users", "/api/auth/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteUsuario removes a user account by id.
func (c *Client) DeleteUsuario(ctx context.Context, id int64) error {
	return c.doDelete(ctx, "auth_users_delete", fmt.Sprintf("/api/auth/users/%d", id))
}
