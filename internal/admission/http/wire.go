package http

import (
	"time"

	"github.com/openfoyer/foyer/internal/admission/domain"
	"github.com/openfoyer/foyer/pkg/gatesdk"
)

func inviteToWire(inv domain.Invite) gatesdk.Invite {
	return gatesdk.Invite{
		ID:         inv.ID,
		Code:       inv.Code,
		ProfileID:  inv.ProfileID,
		CreatedBy:  inv.CreatedBy,
		ExpiresAt:  unixPtr(inv.ExpiresAt),
		MaxUses:    inv.MaxUses,
		UsageCount: inv.UsageCount,
		CreatedAt:  inv.CreatedAt.Unix(),
		UpdatedAt:  inv.UpdatedAt.Unix(),
	}
}

func inviteListingToWire(l domain.InviteListing) gatesdk.Invite {
	out := inviteToWire(l.Invite)
	out.ProfileName = l.ProfileName
	return out
}

func profileToWire(p domain.Profile) gatesdk.Profile {
	return gatesdk.Profile{
		ID:              p.ID,
		Name:            p.Name,
		TemplateUserRef: p.TemplateUserRef,
		IsDefault:       p.IsDefault,
		CreatedAt:       p.CreatedAt.Unix(),
		UpdatedAt:       p.UpdatedAt.Unix(),
	}
}

func profileListingToWire(l domain.ProfileListing) gatesdk.Profile {
	out := profileToWire(l.Profile)
	count := l.InviteCount
	out.InviteCount = &count
	return out
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	v := t.Unix()
	return &v
}

func timeFromUnixPtr(v *int64) *time.Time {
	if v == nil {
		return nil
	}
	t := time.Unix(*v, 0).UTC()
	return &t
}
