// Package authz derives permission grants from role names. The grant table is
// compiled in; deployments wanting dynamic roles need a separate collaborator.
package authz

import (
	"strings"

	"github.com/simsparts/sims-api/internal/core/domain"
)

// Grant maps resource names to allowed actions. All == true short-circuits
// every permission check regardless of Resources content.
type Grant struct {
	All       bool
	Resources map[string][]string
}

// grantTable is the static role → permissions mapping. Merging across a user's
// roles unions action sets per resource, so holding an extra role can only add
// permissions, never revoke them.
var grantTable = map[string]Grant{
	domain.RoleSuperAdmin: {
		All: true,
		Resources: map[string][]string{
			"users":     {"create", "read", "update", "delete"},
			"inventory": {"create", "read", "update", "delete"},
			"orders":    {"create", "read", "update", "delete"},
			"reports":   {"create", "read", "update", "delete"},
			"settings":  {"create", "read", "update", "delete"},
			"system":    {"full_access"},
		},
	},
	domain.RoleAdmin: {
		Resources: map[string][]string{
			"users":     {"read", "update"},
			"inventory": {"create", "read", "update", "delete"},
			"orders":    {"read", "update"},
			"reports":   {"read"},
			"settings":  {"read", "update"},
			"chat":      {"read", "write"},
		},
	},
	domain.RoleEmployee: {
		Resources: map[string][]string{
			"inventory": {"read", "update"},
			"orders":    {"read", "update"},
			"reports":   {"read"},
			"chat":      {"read", "write"},
		},
	},
	domain.RoleClient: {
		Resources: map[string][]string{
			"build":   {"create", "read", "update", "delete"},
			"order":   {"create", "read"},
			"chat":    {"read", "write"},
			"profile": {"read", "update"},
		},
	},
}

// ParseRoleList normalizes a comma-joined role string into a role slice.
// This is the only place the legacy string form is accepted; everything past
// the system boundary works with []string.
func ParseRoleList(s string) []string {
	parts := strings.Split(s, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		roles = append(roles, p)
	}
	return roles
}

// PermissionsFor merges the grants of every held role. Unknown role names
// contribute nothing.
func PermissionsFor(roles []string) Grant {
	merged := Grant{Resources: make(map[string][]string)}
	for _, role := range roles {
		g, ok := grantTable[role]
		if !ok {
			continue
		}
		if g.All {
			merged.All = true
		}
		for resource, actions := range g.Resources {
			merged.Resources[resource] = unionActions(merged.Resources[resource], actions)
		}
	}
	return merged
}

// HasRole reports whether target is among the held roles.
func HasRole(roles []string, target string) bool {
	for _, r := range roles {
		if r == target {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether at least one of targets is held.
func HasAnyRole(roles []string, targets []string) bool {
	for _, t := range targets {
		if HasRole(roles, t) {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether every target is held.
func HasAllRoles(roles []string, targets []string) bool {
	for _, t := range targets {
		if !HasRole(roles, t) {
			return false
		}
	}
	return true
}

// HasPermission answers whether the merged grant of roles allows action on
// resource. An empty action only requires the resource key to exist. The
// wildcard grant allows everything.
func HasPermission(roles []string, resource, action string) bool {
	grant := PermissionsFor(roles)
	if grant.All {
		return true
	}
	actions, ok := grant.Resources[resource]
	if !ok {
		return false
	}
	if action == "" {
		return true
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

func unionActions(existing, add []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(add))
	out := make([]string, 0, len(existing)+len(add))
	for _, a := range existing {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	for _, a := range add {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
