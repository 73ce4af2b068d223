package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openfoyer/foyer/internal/admission/service"
	"github.com/openfoyer/foyer/pkg/gatesdk"
	"github.com/openfoyer/foyer/pkg/httpx"
)

// InviteVerifyHandler serves the public, read-only validity check the
// registration flow runs before presenting its form.
type InviteVerifyHandler struct {
	InviteService *service.InviteService
}

// ServeHTTP checks an invite code without consuming it.
//
//	@Summary		Verify Invite
//	@Description	Checks whether a code is currently redeemable without touching
//	@Description	its usage counter. An unknown code is a 404; a known but
//	@Description	expired or exhausted code is a 200 with valid=false and a
//	@Description	reason of "expired" or "max_uses_reached".
//	@Tags			Redemption
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.VerifyInviteRequest	true	"Invite code"
//	@Success		200		{object}	gatesdk.VerifyInviteResponse
//	@Failure		400		{object}	gatesdk.ErrorResponse
//	@Failure		404		{object}	gatesdk.ErrorResponse
//	@Router			/v1/invites/verify [post]
func (h *InviteVerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req gatesdk.VerifyInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "code is required",
		})
		return
	}

	result, err := h.InviteService.Verify(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, service.ErrInviteNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, gatesdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Invite not found",
			})
			return
		}
		httpx.WriteJSON(w, http.StatusInternalServerError, gatesdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to verify invite",
		})
		return
	}

	if !result.Valid {
		httpx.WriteJSON(w, http.StatusOK, gatesdk.VerifyInviteResponse{
			Valid:  false,
			Reason: string(result.Reason),
		})
		return
	}

	profile := profileToWire(result.Profile)
	httpx.WriteJSON(w, http.StatusOK, gatesdk.VerifyInviteResponse{
		Valid:   true,
		Profile: &profile,
	})
}
