// Package permissions implements the tiered capability model used to gate
// privileged command actions. Evaluation is a pure function: it never touches
// Discord or storage, and missing inputs degrade to the lowest tier instead
// of failing.
package permissions

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/devsfromasia/DevcordBot/internal/storage"
)

// Tier is an ordered permission level. A higher tier satisfies every
// requirement below it.
type Tier int

const (
	TierNone Tier = iota
	TierModerator
	TierAdmin
)

func (t Tier) String() string {
	switch t {
	case TierAdmin:
		return "admin"
	case TierModerator:
		return "moderator"
	default:
		return "none"
	}
}

// ParseTier maps a stored rank string to a Tier. Unknown input is TierNone.
func ParseTier(s string) Tier {
	switch strings.ToLower(s) {
	case "admin":
		return TierAdmin
	case "moderator", "mod":
		return TierModerator
	default:
		return TierNone
	}
}

// Decision is the outcome of one permission evaluation.
type Decision int

const (
	Rejected Decision = iota
	Accepted
)

// Membership is the actor's role information as resolved in the effective
// guild. The zero value means the actor is not a member there, which carries
// no privilege.
type Membership struct {
	Present     bool
	Owner       bool
	Developer   bool
	Permissions int64 // combined permission bits of the member's roles
}

const moderatorBits = discordgo.PermissionModerateMembers | discordgo.PermissionManageMessages

// TierOf returns the tier derived from membership alone: guild owner,
// configured developer, or the Administrator bit give admin; Moderate
// Members or Manage Messages give moderator.
func TierOf(m Membership) Tier {
	if !m.Present {
		return TierNone
	}
	if m.Developer || m.Owner || m.Permissions&discordgo.PermissionAdministrator != 0 {
		return TierAdmin
	}
	if m.Permissions&moderatorBits != 0 {
		return TierModerator
	}
	return TierNone
}

// Evaluate reports whether the actor satisfies the required tier. The
// effective tier is the higher of the membership-derived tier and the rank
// stored on the profile, so an explicit grant works without the roles.
func Evaluate(requirement Tier, m Membership, profile *storage.Profile) Decision {
	effective := TierOf(m)
	if profile != nil {
		if granted := ParseTier(profile.Rank); granted > effective {
			effective = granted
		}
	}
	if effective >= requirement {
		return Accepted
	}
	return Rejected
}
