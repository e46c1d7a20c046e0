package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("actor")
	require.NoError(t, err)
	assert.Equal(t, RoleSubject, r)

	r, err = ParseRole("movie")
	require.NoError(t, err)
	assert.Equal(t, RoleRelated, r)

	_, err = ParseRole("Actor")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestRoleOppositeAndLabel(t *testing.T) {
	assert.Equal(t, RoleRelated, RoleSubject.Opposite())
	assert.Equal(t, RoleSubject, RoleRelated.Opposite())
	assert.Equal(t, "Actor", RoleSubject.Label())
	assert.Equal(t, "Movie", RoleRelated.Label())
}

func TestQueryIsZero(t *testing.T) {
	assert.True(t, Query{Role: RoleSubject}.IsZero())
	assert.False(t, Query{Text: "Heat", Role: RoleRelated}.IsZero())
}

func TestGraphViewLookup(t *testing.T) {
	var empty GraphView
	_, ok := empty.Focal()
	assert.False(t, ok)

	g := GraphView{Nodes: []GraphNode{{ID: "Tom Hanks"}, {ID: "Big"}}}
	f, ok := g.Focal()
	require.True(t, ok)
	assert.Equal(t, "Tom Hanks", f.ID)

	n, ok := g.Node("Big")
	require.True(t, ok)
	assert.Equal(t, "Big", n.ID)
	_, ok = g.Node("Heat")
	assert.False(t, ok)
}

// The renderer reads node weight from "val".
func TestGraphNodeJSON(t *testing.T) {
	b, err := json.Marshal(GraphNode{ID: "Big", Label: "Big", Role: RoleRelated, Weight: 15})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"val":15`)
	assert.Contains(t, string(b), `"role":"movie"`)
}
