package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openfoyer/foyer/internal/admission/service"
	"github.com/openfoyer/foyer/pkg/gatesdk"
	"github.com/openfoyer/foyer/pkg/httpx"
)

// InviteConsumeHandler serves the public redemption endpoint.
type InviteConsumeHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP redeems an invite code, incrementing its usage counter.
//
//	@Summary		Consume Invite
//	@Description	Redeems a code during registration. The increment is a single
//	@Description	conditional update, so a burst of concurrent redemptions never
//	@Description	pushes usage past max_uses. On success the response carries the
//	@Description	granted profile so the caller can provision the account.
//	@Tags			Redemption
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.ConsumeInviteRequest	true	"Invite code"
//	@Success		200		{object}	gatesdk.ConsumeInviteResponse
//	@Failure		400		{object}	gatesdk.ErrorResponse
//	@Failure		404		{object}	gatesdk.ErrorResponse
//	@Failure		409		{object}	gatesdk.ErrorResponse
//	@Router			/v1/invites/consume [post]
func (h *InviteConsumeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req gatesdk.ConsumeInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "code is required",
		})
		return
	}

	profile, err := h.InviteService.Consume(r.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, gatesdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Invite not found",
			})
		case errors.Is(err, service.ErrInviteExpired):
			httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
				Error:            "invite_expired",
				ErrorDescription: "Invite has expired",
			})
		case errors.Is(err, service.ErrInviteExhausted):
			httpx.WriteJSON(w, http.StatusConflict, gatesdk.ErrorResponse{
				Error:            "invite_exhausted",
				ErrorDescription: "Invite has reached its usage limit",
			})
		default:
			httpx.WriteJSON(w, http.StatusInternalServerError, gatesdk.ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to consume invite",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatesdk.ConsumeInviteResponse{
		Success: true,
		Profile: profileToWire(profile),
	})
}
