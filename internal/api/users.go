package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/me/gobank/pkg/model"
)

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

// Users lists users page by page (back-office).
func (c *Client) Users(ctx context.Context, page, limit int) (*model.UserPage, error) {
	var result model.UserPage
	if err := c.do(ctx, http.MethodGet, "/users", pageQuery(page, limit), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UserByID fetches a single user (back-office).
func (c *Client) UserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DisabledUsers lists users awaiting activation (back-office).
func (c *Client) DisabledUsers(ctx context.Context, page, limit int) (*model.UserPage, error) {
	var result model.UserPage
	if err := c.do(ctx, http.MethodGet, "/users/disabled", pageQuery(page, limit), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EnableUser activates a user account (back-office).
func (c *Client) EnableUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id)+"/enable", nil, nil, nil)
}
