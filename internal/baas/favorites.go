package baas

import (
	"context"
	"fmt"
	"strings"

	"github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"
)

// userClient validates token with Supabase Auth and returns a PostgREST client
// that acts as that user, so row-level security applies.
func (c *Client) userClient(token string) (*postgrest.Client, string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, "", ErrUnauthorized
	}
	user, err := c.client.Auth.WithToken(token).GetUser()
	if err != nil {
		c.logger.Debug("supabase auth rejected token", zap.Error(err))
		return nil, "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	rest := postgrest.NewClient(c.url+restPath, schema, map[string]string{
		"apikey":        c.key,
		"Authorization": "Bearer " + token,
	})
	return rest, user.ID.String(), nil
}

// ListFavorites returns the favorite tool IDs of the token's user, newest first.
func (c *Client) ListFavorites(ctx context.Context, token string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rest, uid, err := c.userClient(token)
	if err != nil {
		return nil, err
	}
	var rows []favoriteRow
	_, err = rest.From(favoritesTable).
		Select("tool_id", "", false).
		Eq("user_id", uid).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ToolID
	}
	return ids, nil
}

// AddFavorite marks toolID as a favorite of the token's user. Adding twice is a no-op.
func (c *Client) AddFavorite(ctx context.Context, token, toolID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rest, uid, err := c.userClient(token)
	if err != nil {
		return err
	}
	_, _, err = rest.From(favoritesTable).
		Insert(favoriteRow{UserID: uid, ToolID: toolID}, true, "user_id,tool_id", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("add favorite %s: %w", toolID, err)
	}
	return nil
}

// RemoveFavorite unmarks toolID for the token's user.
func (c *Client) RemoveFavorite(ctx context.Context, token, toolID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rest, uid, err := c.userClient(token)
	if err != nil {
		return err
	}
	_, _, err = rest.From(favoritesTable).
		Delete("minimal", "").
		Eq("user_id", uid).
		Eq("tool_id", toolID).
		Execute()
	if err != nil {
		return fmt.Errorf("remove favorite %s: %w", toolID, err)
	}
	return nil
}
