package gatesdk

// ErrorResponse is the uniform error body for every non-2xx response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Invite is the wire form of an invite. Timestamps are unix seconds;
// expires_at and max_uses are absent for "never expires" / "unlimited".
type Invite struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	ProfileID   string `json:"profile_id"`
	ProfileName string `json:"profile_name,omitempty"`
	CreatedBy   string `json:"created_by"`
	ExpiresAt   *int64 `json:"expires_at,omitempty"`
	MaxUses     *int64 `json:"max_uses,omitempty"`
	UsageCount  int64  `json:"usage_count"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

type CreateInviteRequest struct {
	ProfileID string `json:"profile_id"`
	ExpiresAt *int64 `json:"expires_at,omitempty"`
	MaxUses   *int64 `json:"max_uses,omitempty"`
}

// UpdateInviteRequest patches an invite. Each field is tri-state: omitted
// leaves the current value, null clears it, a value overwrites it.
type UpdateInviteRequest struct {
	ExpiresAt Optional[int64] `json:"expires_at,omitzero"`
	MaxUses   Optional[int64] `json:"max_uses,omitzero"`
}

type ListInvitesResponse struct {
	Invites []Invite `json:"invites"`
}

type VerifyInviteRequest struct {
	Code string `json:"code"`
}

// VerifyInviteResponse reports validity without consuming anything. Reason is
// "expired" or "max_uses_reached" when Valid is false; Profile is present
// when Valid is true.
type VerifyInviteResponse struct {
	Valid   bool     `json:"valid"`
	Reason  string   `json:"reason,omitempty"`
	Profile *Profile `json:"profile,omitempty"`
}

type ConsumeInviteRequest struct {
	Code string `json:"code"`
}

type ConsumeInviteResponse struct {
	Success bool    `json:"success"`
	Profile Profile `json:"profile"`
}

// Profile is the wire form of an access profile. InviteCount is only present
// in listings, where it is computed from the invites table.
type Profile struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	TemplateUserRef string `json:"template_user_ref,omitempty"`
	IsDefault       bool   `json:"is_default"`
	InviteCount     *int64 `json:"invite_count,omitempty"`
	CreatedAt       int64  `json:"created_at"`
	UpdatedAt       int64  `json:"updated_at"`
}

type CreateProfileRequest struct {
	Name            string `json:"name"`
	TemplateUserRef string `json:"template_user_ref,omitempty"`
}

type UpdateProfileRequest struct {
	Name            *string `json:"name,omitempty"`
	TemplateUserRef *string `json:"template_user_ref,omitempty"`
}

type ListProfilesResponse struct {
	Profiles []Profile `json:"profiles"`
}

type StatusResponse struct {
	Success bool `json:"success"`
}

type HealthChecks struct {
	Database string `json:"database"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
