package models

import "fmt"

// Role identifies which side of the bipartite actor/movie graph an entity
// or query belongs to. The string values are the wire tokens used in URLs
// and API paths.
type Role string

const (
	// RoleSubject is the searchable person role.
	RoleSubject Role = "actor"
	// RoleRelated is the searchable work role.
	RoleRelated Role = "movie"
)

// ValidRoles is the set of all valid roles.
var ValidRoles = []Role{
	RoleSubject,
	RoleRelated,
}

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// Opposite returns the role on the other side of the relation.
func (r Role) Opposite() Role {
	if r == RoleSubject {
		return RoleRelated
	}
	return RoleSubject
}

// Label is the human-facing noun for the role.
func (r Role) Label() string {
	if r == RoleSubject {
		return "Actor"
	}
	return "Movie"
}

// ParseRole converts a wire token into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role %q: must be one of actor, movie", s)
	}
	return r, nil
}

// Query is a canonical, role-qualified lookup key. Build one with
// query.Normalize; a zero Query is never sent to a backend.
type Query struct {
	Text string `json:"text"`
	Role Role   `json:"role"`
}

// IsZero reports whether q carries no text.
func (q Query) IsZero() bool {
	return q.Text == ""
}
