// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import "fmt"

// # Authority Levels

// Authority is a collaborator's management level. Values are persisted.
type Authority int

const (
	AuthorityMember         Authority = 0
	AuthorityProjectManager Authority = 1
	AuthorityOwner          Authority = 2
)

// AtLeast reports whether a meets or exceeds target.
func (a Authority) AtLeast(target Authority) bool {
	return a >= target
}

// Valid reports whether a is a known level.
func (a Authority) Valid() bool {
	return a >= AuthorityMember && a <= AuthorityOwner
}

func (a Authority) String() string {
	switch a {
	case AuthorityMember:
		return "member"
	case AuthorityProjectManager:
		return "project_manager"
	case AuthorityOwner:
		return "owner"
	default:
		return fmt.Sprintf("authority(%d)", int(a))
	}
}

// ParseAuthority maps a name back to its level.
func ParseAuthority(name string) (Authority, error) {
	for _, a := range []Authority{AuthorityMember, AuthorityProjectManager, AuthorityOwner} {
		if a.String() == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("sec: unknown authority %q", name)
}

// # Actor

// Actor is the collaborator on whose behalf an operation runs.
type Actor struct {
	DiscordID string
	Authority Authority
}

// System is the actor used by sweeps and other unattended work.
var System = Actor{DiscordID: "system", Authority: AuthorityOwner}

// CanManage reports whether the actor holds project manager authority or higher.
func (a Actor) CanManage() bool {
	return a.Authority.AtLeast(AuthorityProjectManager)
}

// Actor converts verified claims to the operation actor.
func (c *AuthClaims) Actor() Actor {
	return Actor{DiscordID: c.UserID, Authority: c.Authority}
}
