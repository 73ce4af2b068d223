package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/openfoyer/foyer/internal/admission/service"
	"github.com/openfoyer/foyer/pkg/gatesdk"
	"github.com/openfoyer/foyer/pkg/httpx"
)

// ProfilesHandler serves the administrative profile surface, including the
// default-profile swap.
type ProfilesHandler struct {
	ProfileService *service.ProfileService
}

// HandleCreate inserts a new access profile.
//
//	@Summary		Create Profile
//	@Description	Creates an access profile. The very first profile created
//	@Description	becomes the default automatically; later ones never do.
//	@Tags			Profiles
//	@Accept			json
//	@Produce		json
//	@Param			request	body		gatesdk.CreateProfileRequest	true	"Profile parameters"
//	@Success		201		{object}	gatesdk.Profile
//	@Failure		400		{object}	gatesdk.ErrorResponse
//	@Failure		409		{object}	gatesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/profiles [post]
func (h *ProfilesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req gatesdk.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Request body must be valid JSON",
		})
		return
	}

	profile, err := h.ProfileService.Create(r.Context(), req.Name, req.TemplateUserRef)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNameMissing):
			httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "name is required",
			})
		case errors.Is(err, service.ErrProfileNameTaken):
			httpx.WriteJSON(w, http.StatusConflict, gatesdk.ErrorResponse{
				Error:            "conflict",
				ErrorDescription: "Profile name already in use",
			})
		default:
			httpx.WriteJSON(w, http.StatusInternalServerError, gatesdk.ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to create profile",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, profileToWire(profile))
}

// HandleList returns all profiles with their computed invite counts.
//
//	@Summary		List Profiles
//	@Description	Returns all profiles ordered by name, each with the number of
//	@Description	invites currently bound to it.
//	@Tags			Profiles
//	@Produce		json
//	@Success		200	{object}	gatesdk.ListProfilesResponse
//	@Security		BearerAuth
//	@Router			/v1/profiles [get]
func (h *ProfilesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	listings, err := h.ProfileService.List(r.Context())
	if err != nil {
		httpx.WriteJSON(w, http.StatusInternalServerError, gatesdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to list profiles",
		})
		return
	}

	out := gatesdk.ListProfilesResponse{Profiles: make([]gatesdk.Profile, 0, len(listings))}
	for _, l := range listings {
		out.Profiles = append(out.Profiles, profileListingToWire(l))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns a single profile by ID.
//
//	@Summary		Get Profile
//	@Description	Returns one profile by its identifier.
//	@Tags			Profiles
//	@Produce		json
//	@Param			id	path		string	true	"Profile ID"
//	@Success		200	{object}	gatesdk.Profile
//	@Failure		404	{object}	gatesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/profiles/{id} [get]
func (h *ProfilesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.ProfileService.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, gatesdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Profile not found",
			})
			return
		}
		httpx.WriteJSON(w, http.StatusInternalServerError, gatesdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to fetch profile",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, profileToWire(profile))
}

// HandleUpdate renames a profile and/or repoints its template user reference.
//
//	@Summary		Update Profile
//	@Description	Renames a profile and/or changes its template user reference.
//	@Description	Omitted fields are unchanged; an empty template_user_ref clears
//	@Description	it. The default flag is not settable here; use the dedicated
//	@Description	default endpoint.
//	@Tags			Profiles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Profile ID"
//	@Param			request	body		gatesdk.UpdateProfileRequest	true	"Fields to patch"
//	@Success		200		{object}	gatesdk.Profile
//	@Failure		400		{object}	gatesdk.ErrorResponse
//	@Failure		404		{object}	gatesdk.ErrorResponse
//	@Failure		409		{object}	gatesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/profiles/{id} [patch]
func (h *ProfilesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req gatesdk.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Request body must be valid JSON",
		})
		return
	}

	profile, err := h.ProfileService.Update(r.Context(), r.PathValue("id"), req.Name, req.TemplateUserRef)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, gatesdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Profile not found",
			})
		case errors.Is(err, service.ErrProfileNameMissing):
			httpx.WriteJSON(w, http.StatusBadRequest, gatesdk.ErrorResponse{
				Error:            "invalid_request",
				ErrorDescription: "name cannot be empty",
			})
		case errors.Is(err, service.ErrProfileNameTaken):
			httpx.WriteJSON(w, http.StatusConflict, gatesdk.ErrorResponse{
				Error:            "conflict",
				ErrorDescription: "Profile name already in use",
			})
		default:
			httpx.WriteJSON(w, http.StatusInternalServerError, gatesdk.ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to update profile",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, profileToWire(profile))
}

// HandleDelete removes a profile.
//
//	@Summary		Delete Profile
//	@Description	Deletes a profile. Refused while the profile is the default or
//	@Description	while any invite still references it.
//	@Tags			Profiles
//	@Produce		json
//	@Param			id	path		string	true	"Profile ID"
//	@Success		200	{object}	gatesdk.StatusResponse
//	@Failure		404	{object}	gatesdk.ErrorResponse
//	@Failure		409	{object}	gatesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/profiles/{id} [delete]
func (h *ProfilesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.ProfileService.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		var inUse *service.ProfileInUseError
		switch {
		case errors.Is(err, service.ErrProfileNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, gatesdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Profile not found",
			})
		case errors.Is(err, service.ErrProfileIsDefault):
			httpx.WriteJSON(w, http.StatusConflict, gatesdk.ErrorResponse{
				Error:            "conflict",
				ErrorDescription: "Cannot delete the default profile; assign another default first",
			})
		case errors.As(err, &inUse):
			httpx.WriteJSON(w, http.StatusConflict, gatesdk.ErrorResponse{
				Error:            "conflict",
				ErrorDescription: fmt.Sprintf("Profile is referenced by %d invite(s)", inUse.InviteCount),
			})
		default:
			httpx.WriteJSON(w, http.StatusInternalServerError, gatesdk.ErrorResponse{
				Error:            "server_error",
				ErrorDescription: "Failed to delete profile",
			})
		}
		return
	}
	httpx.WriteJSON(w, http.StatusOK, gatesdk.StatusResponse{Success: true})
}

// HandleSetDefault atomically moves the default flag to this profile.
//
//	@Summary		Set Default Profile
//	@Description	Makes this profile the default, atomically clearing the flag
//	@Description	from whichever profile held it. No reader ever observes zero or
//	@Description	two defaults.
//	@Tags			Profiles
//	@Produce		json
//	@Param			id	path		string	true	"Profile ID"
//	@Success		200	{object}	gatesdk.StatusResponse
//	@Failure		404	{object}	gatesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/profiles/{id}/default [put]
func (h *ProfilesHandler) HandleSetDefault(w http.ResponseWriter, r *http.Request) {
	if err := h.ProfileService.SetDefault(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, gatesdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Profile not found",
			})
			return
		}
		httpx.WriteJSON(w, http.StatusInternalServerError, gatesdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to set default profile",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, gatesdk.StatusResponse{Success: true})
}

// HandleInvites lists the invites bound to one profile.
//
//	@Summary		List Profile Invites
//	@Description	Returns the invites bound to this profile, newest first.
//	@Tags			Profiles
//	@Produce		json
//	@Param			id	path		string	true	"Profile ID"
//	@Success		200	{object}	gatesdk.ListInvitesResponse
//	@Failure		404	{object}	gatesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/v1/profiles/{id}/invites [get]
func (h *ProfilesHandler) HandleInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.ProfileService.Invites(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, gatesdk.ErrorResponse{
				Error:            "not_found",
				ErrorDescription: "Profile not found",
			})
			return
		}
		httpx.WriteJSON(w, http.StatusInternalServerError, gatesdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to list profile invites",
		})
		return
	}

	out := gatesdk.ListInvitesResponse{Invites: make([]gatesdk.Invite, 0, len(invites))}
	for _, inv := range invites {
		out.Invites = append(out.Invites, inviteToWire(inv))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
