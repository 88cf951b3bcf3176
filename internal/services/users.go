package services

import (
	"context"
	"fmt"
	"regexp"

	"github.com/desertthunder/rdx/internal/models"
)

// emailPattern checks the rough shape of an address. The domain suffix rule
// only has to match a prefix of the final label, so "kree.info" passes.
var emailPattern = regexp.MustCompile(`^.+@(\[?)[a-zA-Z0-9\-.]+\.([a-zA-Z]{2,3}|[0-9]{1,3})(\]?)`)

// ValidEmail reports whether email looks like an address: longer than seven
// characters with a local part, an @ and a dotted domain.
func ValidEmail(email string) bool {
	return len(email) > 7 && emailPattern.MatchString(email)
}

// AddFriend adds user to the current user's friends.
func (c *Client) AddFriend(ctx context.Context, user string) (bool, error) {
	return c.callBool(ctx, newParams("addFriend").require("user", user), true)
}

// RemoveFriend removes user from the current user's friends.
func (c *Client) RemoveFriend(ctx context.Context, user string) (bool, error) {
	return c.callBool(ctx, newParams("removeFriend").require("user", user), true)
}

// CurrentUser returns the user the session is authorized for.
func (c *Client) CurrentUser(ctx context.Context, extras []string) (*models.User, error) {
	raw, err := c.call(ctx, newParams("currentUser").setList("extras", extras), true)
	if err != nil || models.IsEmpty(raw) {
		return nil, err
	}

	user, err := models.DecodeUser(raw)
	if err != nil {
		return nil, fmt.Errorf("currentUser: %w", err)
	}
	return user, nil
}

// FindUser looks a user up by email address or by vanity name. Exactly one must be given.
// The email is checked locally before anything is sent.
func (c *Client) FindUser(ctx context.Context, email, vanityName string) (*models.User, error) {
	p := newParams("findUser")
	switch {
	case email == "" && vanityName == "":
		p.require("email", "")
	case email != "" && vanityName != "":
		p.reject("vanityName", vanityName, "empty when email is given")
	case email != "" && !ValidEmail(email):
		p.reject("email", email, "an email address")
	}
	p.set("email", email).set("vanityName", vanityName)

	raw, err := c.call(ctx, p, false)
	if err != nil || models.IsEmpty(raw) {
		return nil, err
	}

	user, err := models.DecodeUser(raw)
	if err != nil {
		return nil, fmt.Errorf("findUser: %w", err)
	}
	return user, nil
}

// GetActivityStream returns a page of updates for user within scope, one of
// [ActivityScopes]. Pass the previous page's LastID as lastID to fetch newer items.
func (c *Client) GetActivityStream(ctx context.Context, user, scope, lastID string) (*models.ActivityStream, error) {
	p := newParams("getActivityStream").
		require("user", user).
		require("scope", scope).
		oneOf("scope", scope, ActivityScopes).
		set("last_id", lastID)

	raw, err := c.call(ctx, p, false)
	if err != nil || models.IsEmpty(raw) {
		return nil, err
	}

	stream, err := models.DecodeActivityStream(raw)
	if err != nil {
		return nil, fmt.Errorf("getActivityStream: %w", err)
	}
	return stream, nil
}
