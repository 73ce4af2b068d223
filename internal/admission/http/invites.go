package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openfoyer/foyer/internal/admission/domain"
	"github.com/openfoyer/foyer/internal/admission/service"
	"github.com/openfoyer/foyer/pkg/gatesdk"
	"github.com/openfoyer/foyer/pkg/httpx"
)

// InvitesHandler serves the administrative invite CRUD surface.
type InvitesHandler struct {
	InviteService *service.InviteService
}

// HandleCreate mints a new invite bound to an access profile.
//
//	@Summary		Create Invite
//	@Description	Mints a new invite code bound to an access profile. expires_at
//	@Description	(unix seconds) and max_uses are optional; omitting them yields a
//	@Description	never-expiring, unlimited-use invite.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.CreateInviteRequest	true	"Invite parameters"
//	@Success		201		{object}	gatesdk.Invite
//	@Failure		400		{object}	gatesdk.ErrorResponse
//	@Failure		404		{object}	gatesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/invites [post]
func (h *InvitesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req gatesdk.CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Request body must be valid JSON",
		})
		return
	}
	if req.ProfileID == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "profile_id is required",
		})
		return
	}

	adminID := httpx.AdminIDFromContext(r.Context())

	inv, err := h.InviteService.Create(
		r.Context(),
		adminID,
		req.ProfileID,
		timeFromUnixPtr(req.ExpiresAt),
		req.MaxUses,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCreator):
			httpx.WriteJSON(w, http.StatusUnauthorized, gatesdk.ErrorResponse{
				Error:            "unauthorized",
				ErrorDescription: "Invite creation requires an authenticated administrator",
			})
		case errors.Is(err, service.ErrInvalidMaxUses):
			httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "max_uses must be a positive integer",
			})
		case errors.Is(err, service.ErrProfileNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, gatesdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Profile not found",
			})
		default:
			httpx.WriteJSON(w, http.StatusInternalServerError, gatesdk.ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to create invite",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, inviteToWire(inv))
}

// HandleList returns every invite with its profile's display name.
//
//	@Summary		List Invites
//	@Description	Returns all invites, newest first, each annotated with the
//	@Description	display name of its bound profile.
//	@Tags			Invites
//	@Produce		json
//	@Success		200	{object}	gatesdk.ListInvitesResponse
//	@Security		BearerAuth
//	@Router			/v1/invites [get]
func (h *InvitesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	listings, err := h.InviteService.List(r.Context())
	if err != nil {
		httpx.WriteJSON(w, http.StatusInternalServerError, gatesdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to list invites",
		})
		return
	}

	out := gatesdk.ListInvitesResponse{Invites: make([]gatesdk.Invite, 0, len(listings))}
	for _, l := range listings {
		out.Invites = append(out.Invites, inviteListingToWire(l))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns a single invite by ID.
//
//	@Summary		Get Invite
//	@Description	Returns one invite by its identifier.
//	@Tags			Invites
//	@Produce		json
//	@Param			id	path		string	true	"Invite ID"
//	@Success		200	{object}	gatesdk.Invite
//	@Failure		404	{object}	gatesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/invites/{id} [get]
func (h *InvitesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	inv, err := h.InviteService.GetByID(r.Context(), r.PathValue("id"))
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
			ErrorDescription: "Failed to fetch invite",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, inviteToWire(inv))
}

// HandleUpdate patches an invite's expiry and usage limit.
//
//	@Summary		Update Invite
//	@Description	Patches expires_at and/or max_uses. Each field is tri-state:
//	@Description	omitted leaves the current value, null clears it, a value
//	@Description	overwrites it. The code and profile binding are immutable.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Invite ID"
//	@Param			request	body		gatesdk.UpdateInviteRequest	true	"Fields to patch"
//	@Success		200		{object}	gatesdk.Invite
//	@Failure		400		{object}	gatesdk.ErrorResponse
//	@Failure		404		{object}	gatesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/invites/{id} [patch]
func (h *InvitesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req gatesdk.UpdateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Request body must be valid JSON",
		})
		return
	}

	var changes domain.InviteChanges
	if req.ExpiresAt.IsSet() {
		changes.ExpiresAt.Set = true
		changes.ExpiresAt.Value = timeFromUnixPtr(req.ExpiresAt.Value())
	}
	if req.MaxUses.IsSet() {
		changes.MaxUses.Set = true
		changes.MaxUses.Value = req.MaxUses.Value()
	}

	inv, err := h.InviteService.Update(r.Context(), r.PathValue("id"), changes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInviteNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, gatesdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Invite not found",
			})
		case errors.Is(err, service.ErrInvalidMaxUses):
			httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "max_uses must be a positive integer",
			})
		case errors.Is(err, service.ErrLimitBelowUsage):
			httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "max_uses cannot be lowered below the current usage count",
			})
		default:
			httpx.WriteJSON(w, http.StatusInternalServerError, gatesdk.ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to update invite",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, inviteToWire(inv))
}

// HandleDelete revokes an invite.
//
//	@Summary		Delete Invite
//	@Description	Deletes an invite. Already-admitted users are unaffected;
//	@Description	revocation only stops future redemptions.
//	@Tags			Invites
//	@Produce		json
//	@Param			id	path		string	true	"Invite ID"
//	@Success		200	{object}	gatesdk.StatusResponse
//	@Failure		404	{object}	gatesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/invites/{id} [delete]
func (h *InvitesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.InviteService.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, service.ErrInviteNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, gatesdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Invite not found",
			})
			return
		}
		httpx.WriteJSON(w, http.StatusInternalServerError, gatesdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to delete invite",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, gatesdk.StatusResponse{Success: true})
}
