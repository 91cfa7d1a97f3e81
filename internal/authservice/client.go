// Package authservice is the HTTP client for the external Auth Service, the
// system of record for identity, sessions, organizations and membership.
package authservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// Client calls the Auth Service REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Auth Service client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ API = (*Client)(nil)

// GetSession resolves the caller's session from the forwarded headers.
// Returns (nil, nil) when the Auth Service reports no session.
func (c *Client) GetSession(ctx context.Context, headers http.Header) (*Session, error) {
	var payload struct {
		Session *struct {
			UserID               string     `json:"userId"`
			ActiveOrganizationID string     `json:"activeOrganizationId"`
			ExpiresAt            *time.Time `json:"expiresAt"`
		} `json:"session"`
		User *struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/get-session", nil, headers, &payload); err != nil {
		return nil, err
	}
	if payload.Session == nil || payload.User == nil {
		return nil, nil
	}
	return &Session{
		UserID:               payload.User.ID,
		Email:                payload.User.Email,
		ActiveOrganizationID: payload.Session.ActiveOrganizationID,
		ExpiresAt:            payload.Session.ExpiresAt,
	}, nil
}

// CreateOrganization creates an organization with the given creator as owner.
func (c *Client) CreateOrganization(ctx context.Context, creatorID, name, slug, logoURL string) (*Organization, error) {
	body := map[string]any{
		"userId": creatorID,
		"name":   name,
		"slug":   slug,
	}
	if logoURL != "" {
		body["logo"] = logoURL
	}

	var org Organization
	if err := c.do(ctx, http.MethodPost, "/organization/create", body, nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// CheckOrganizationSlug probes slug availability. The Auth Service answers a
// check request with success for a free slug and a 4xx for a taken one; other
// failures are reported as SlugUnknown with the underlying error, never as
// taken.
func (c *Client) CheckOrganizationSlug(ctx context.Context, slug string) (SlugStatus, error) {
	body := map[string]any{"slug": slug}

	err := c.do(ctx, http.MethodPost, "/organization/check-slug", body, nil, nil)
	if err == nil {
		return SlugFree, nil
	}

	var apiErr *APIError
	if asAPIError(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return SlugTaken, nil
	}
	return SlugUnknown, err
}

// UpdateOrganization updates the given fields of an organization.
func (c *Client) UpdateOrganization(ctx context.Context, orgID string, update OrganizationUpdate, headers http.Header) error {
	data := map[string]any{}
	if update.Name != nil {
		data["name"] = *update.Name
	}
	if update.Slug != nil {
		data["slug"] = *update.Slug
	}
	if update.Logo != nil {
		data["logo"] = *update.Logo
	}
	body := map[string]any{
		"organizationId": orgID,
		"data":           data,
	}
	return c.do(ctx, http.MethodPost, "/organization/update", body, headers, nil)
}

// DeleteOrganization deletes an organization.
func (c *Client) DeleteOrganization(ctx context.Context, orgID string, headers http.Header) error {
	body := map[string]any{"organizationId": orgID}
	return c.do(ctx, http.MethodPost, "/organization/delete", body, headers, nil)
}

// GetFullOrganization returns the caller's session-active organization, or
// (nil, nil) when no organization is active.
func (c *Client) GetFullOrganization(ctx context.Context, headers http.Header) (*Organization, error) {
	var org Organization
	if err := c.do(ctx, http.MethodGet, "/organization/get-full-organization", nil, headers, &org); err != nil {
		var apiErr *APIError
		if asAPIError(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if org.ID == "" {
		return nil, nil
	}
	return &org, nil
}

// ListOrganizations lists the organizations the caller is a member of.
func (c *Client) ListOrganizations(ctx context.Context, headers http.Header) ([]Organization, error) {
	var orgs []Organization
	if err := c.do(ctx, http.MethodGet, "/organization/list", nil, headers, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// ListMembers lists the members of an organization.
func (c *Client) ListMembers(ctx context.Context, orgID string, headers http.Header) ([]Member, error) {
	var payload struct {
		Members []Member `json:"members"`
	}
	path := "/organization/list-members?organizationId=" + url.QueryEscape(orgID)
	if err := c.do(ctx, http.MethodGet, path, nil, headers, &payload); err != nil {
		return nil, err
	}
	return payload.Members, nil
}

// GetActiveMember returns the caller's membership in the session-active
// organization, or (nil, nil) when none is active.
func (c *Client) GetActiveMember(ctx context.Context, headers http.Header) (*Member, error) {
	var member Member
	if err := c.do(ctx, http.MethodGet, "/organization/get-active-member", nil, headers, &member); err != nil {
		var apiErr *APIError
		if asAPIError(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if member.ID == "" {
		return nil, nil
	}
	return &member, nil
}

// SetActiveOrganization marks the organization active for the caller's
// session. This is the session-scoped concept, distinct from the local user
// record's pointer.
func (c *Client) SetActiveOrganization(ctx context.Context, orgID string, headers http.Header) error {
	body := map[string]any{"organizationId": orgID}
	return c.do(ctx, http.MethodPost, "/organization/set-active", body, headers, nil)
}

// LeaveOrganization removes the caller from an organization.
func (c *Client) LeaveOrganization(ctx context.Context, orgID string, headers http.Header) error {
	body := map[string]any{"organizationId": orgID}
	return c.do(ctx, http.MethodPost, "/organization/leave", body, headers, nil)
}

// UpdateMemberRole changes a member's role in an organization.
func (c *Client) UpdateMemberRole(ctx context.Context, orgID, memberID, role string, headers http.Header) error {
	body := map[string]any{
		"organizationId": orgID,
		"memberId":       memberID,
		"role":           role,
	}
	return c.do(ctx, http.MethodPost, "/organization/update-member-role", body, headers, nil)
}

// ListInvitations lists pending invitations for the caller's session-active
// organization.
func (c *Client) ListInvitations(ctx context.Context, headers http.Header) ([]Invitation, error) {
	var invitations []Invitation
	if err := c.do(ctx, http.MethodGet, "/organization/list-invitations", nil, headers, &invitations); err != nil {
		return nil, err
	}
	return invitations, nil
}

// UpdateUser updates the caller's user record.
func (c *Client) UpdateUser(ctx context.Context, update UserUpdate, headers http.Header) error {
	body := map[string]any{}
	if update.Name != nil {
		body["name"] = *update.Name
	}
	if update.Image != nil {
		body["image"] = *update.Image
	}
	return c.do(ctx, http.MethodPost, "/update-user", body, headers, nil)
}

// SetPassword sets a password for the caller's account.
func (c *Client) SetPassword(ctx context.Context, newPassword string, headers http.Header) error {
	body := map[string]any{"newPassword": newPassword}
	return c.do(ctx, http.MethodPost, "/set-password", body, headers, nil)
}

// do performs a request and decodes the response into out (when non-nil).
// Session headers, when given, are forwarded verbatim.
func (c *Client) do(ctx context.Context, method, path string, body any, headers http.Header, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("message", apiErr.Message).
			Msg("auth service call failed")
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to decode auth service response: %w", err)
	}
	return nil
}
