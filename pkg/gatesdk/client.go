package gatesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the admission service. The zero token is fine for the public
// verify/consume endpoints; admin endpoints need WithToken.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithToken returns a session that sends the given admin bearer token on
// every request.
func (c *Client) WithToken(token string) *AdminSession {
	return &AdminSession{client: c, token: token}
}

// VerifyInvite checks a code without consuming it.
func (c *Client) VerifyInvite(ctx context.Context, code string) (*VerifyInviteResponse, error) {
	var out VerifyInviteResponse
	err := c.do(ctx, http.MethodPost, "/v1/invites/verify", "", VerifyInviteRequest{Code: code}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ConsumeInvite redeems a code, incrementing its usage counter.
func (c *Client) ConsumeInvite(ctx context.Context, code string) (*ConsumeInviteResponse, error) {
	var out ConsumeInviteResponse
	err := c.do(ctx, http.MethodPost, "/v1/invites/consume", "", ConsumeInviteRequest{Code: code}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Livez hits the liveness probe.
func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminSession is a Client plus an admin bearer token.
type AdminSession struct {
	client *Client
	token  string
}

func (s *AdminSession) CreateInvite(ctx context.Context, req CreateInviteRequest) (*Invite, error) {
	var out Invite
	if err := s.client.do(ctx, http.MethodPost, "/v1/invites", s.token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminSession) ListInvites(ctx context.Context) ([]Invite, error) {
	var out ListInvitesResponse
	if err := s.client.do(ctx, http.MethodGet, "/v1/invites", s.token, nil, &out); err != nil {
		return nil, err
	}
	return out.Invites, nil
}

func (s *AdminSession) GetInvite(ctx context.Context, id string) (*Invite, error) {
	var out Invite
	if err := s.client.do(ctx, http.MethodGet, "/v1/invites/"+id, s.token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminSession) UpdateInvite(ctx context.Context, id string, req UpdateInviteRequest) (*Invite, error) {
	var out Invite
	if err := s.client.do(ctx, http.MethodPatch, "/v1/invites/"+id, s.token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminSession) DeleteInvite(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/v1/invites/"+id, s.token, nil, nil)
}

func (s *AdminSession) CreateProfile(ctx context.Context, req CreateProfileRequest) (*Profile, error) {
	var out Profile
	if err := s.client.do(ctx, http.MethodPost, "/v1/profiles", s.token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminSession) ListProfiles(ctx context.Context) ([]Profile, error) {
	var out ListProfilesResponse
	if err := s.client.do(ctx, http.MethodGet, "/v1/profiles", s.token, nil, &out); err != nil {
		return nil, err
	}
	return out.Profiles, nil
}

func (s *AdminSession) GetProfile(ctx context.Context, id string) (*Profile, error) {
	var out Profile
	if err := s.client.do(ctx, http.MethodGet, "/v1/profiles/"+id, s.token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminSession) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*Profile, error) {
	var out Profile
	if err := s.client.do(ctx, http.MethodPatch, "/v1/profiles/"+id, s.token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminSession) DeleteProfile(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodDelete, "/v1/profiles/"+id, s.token, nil, nil)
}

func (s *AdminSession) SetDefaultProfile(ctx context.Context, id string) error {
	return s.client.do(ctx, http.MethodPut, "/v1/profiles/"+id+"/default", s.token, nil, nil)
}

func (s *AdminSession) ProfileInvites(ctx context.Context, id string) ([]Invite, error) {
	var out ListInvitesResponse
	if err := s.client.do(ctx, http.MethodGet, "/v1/profiles/"+id+"/invites", s.token, nil, &out); err != nil {
		return nil, err
	}
	return out.Invites, nil
}

// do performs one request/response round trip, decoding error bodies into
// APIError.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("gatesdk: marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Code: "unknown_error"}
		var wire ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&wire); err == nil && wire.Error != "" {
			apiErr.Code = wire.Error
			apiErr.Description = wire.ErrorDescription
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("gatesdk: decode response: %w", err)
		}
	}
	return nil
}
