package graphview

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/castgraph/internal/models"
)

func filmography(n int) models.DomainResult {
	res := models.DomainResult{
		Focal: models.Entity{Role: models.RoleSubject, Name: "Tom Hanks"},
	}
	for i := 0; i < n; i++ {
		res.Related = append(res.Related, models.Entity{
			Role: models.RoleRelated,
			Name: fmt.Sprintf("Movie %02d", i),
			Year: fmt.Sprintf("%d", 2024-i),
		})
	}
	return res
}

func TestBuild_CapInvariant(t *testing.T) {
	for _, n := range []int{1, 5, 28, 29, 30, 31, 100} {
		t.Run(fmt.Sprintf("related=%d", n), func(t *testing.T) {
			view := Build(filmography(n), models.RoleSubject, Options{})
			if n > DefaultMaxRelated {
				assert.Len(t, view.Nodes, DefaultMaxRelated+1)
				assert.True(t, view.Truncated)
			} else {
				assert.Len(t, view.Nodes, n+1)
				assert.False(t, view.Truncated)
			}
			assert.Equal(t, n, view.Total)
			assert.Len(t, view.Links, len(view.Nodes)-1)
		})
	}
}

func TestBuild_StarTopology(t *testing.T) {
	view := Build(filmography(40), models.RoleSubject, Options{})
	focal, ok := view.Focal()
	require.True(t, ok)
	assert.Equal(t, "Tom Hanks", focal.ID)

	related := map[string]bool{}
	for _, n := range view.Nodes[1:] {
		related[n.ID] = true
	}
	for _, l := range view.Links {
		assert.Equal(t, focal.ID, l.Source)
		assert.True(t, related[l.Target])
		assert.False(t, related[l.Source] && related[l.Target], "related-to-related link")
		assert.Equal(t, float64(DefaultLinkDistance), l.DesiredDistance)
	}
}

func TestBuild_FocalOutweighsRelated(t *testing.T) {
	view := Build(filmography(3), models.RoleSubject, Options{})
	focal := view.Nodes[0]
	for _, n := range view.Nodes[1:] {
		assert.Greater(t, focal.Weight, n.Weight)
		assert.Greater(t, focal.LayoutHints.CollisionRadius, n.LayoutHints.CollisionRadius)
		assert.Equal(t, models.RoleRelated, n.Role)
	}
	assert.Equal(t, models.RoleSubject, focal.Role)
}

func TestBuild_PreservesBackendOrderAndYear(t *testing.T) {
	view := Build(filmography(3), models.RoleSubject, Options{})
	assert.Equal(t, "Movie 00", view.Nodes[1].ID)
	assert.Equal(t, "2024", view.Nodes[1].Year)
	assert.Equal(t, "Movie 02", view.Nodes[3].ID)
}

func TestBuild_RelatedRoleCentresMovie(t *testing.T) {
	res := models.DomainResult{
		Focal: models.Entity{Role: models.RoleRelated, Name: "Heat", Year: "1995"},
		Related: []models.Entity{
			{Role: models.RoleSubject, Name: "Al Pacino"},
			{Role: models.RoleSubject, Name: "Robert De Niro"},
		},
	}
	view := Build(res, models.RoleRelated, Options{})
	assert.Equal(t, models.RoleRelated, view.Nodes[0].Role)
	assert.Equal(t, "1995", view.Nodes[0].Year)
	assert.Equal(t, models.RoleSubject, view.Nodes[1].Role)
}

func TestBuild_SkipsDuplicateAndBlankKeys(t *testing.T) {
	res := filmography(2)
	res.Related = append(res.Related,
		models.Entity{Name: "Movie 00"},
		models.Entity{Name: ""},
		models.Entity{Name: "Tom Hanks"},
	)
	view := Build(res, models.RoleSubject, Options{})
	assert.Len(t, view.Nodes, 3)

	ids := map[string]int{}
	for _, n := range view.Nodes {
		ids[n.ID]++
	}
	for id, c := range ids {
		assert.Equal(t, 1, c, "duplicate node id %q", id)
	}
}

func TestBuild_CustomOptions(t *testing.T) {
	view := Build(filmography(10), models.RoleSubject, Options{MaxRelated: 4, LinkDistance: 60})
	assert.Len(t, view.Nodes, 5)
	assert.True(t, view.Truncated)
	assert.Equal(t, 60.0, view.Links[0].DesiredDistance)
}

func TestPaint(t *testing.T) {
	actor := models.GraphNode{ID: "Tom Hanks", Label: "Tom Hanks", Role: models.RoleSubject}
	movie := models.GraphNode{ID: "Big", Label: "Big", Role: models.RoleRelated}

	assert.Equal(t, ColorSubject, Paint(actor, "").Fill)
	assert.Equal(t, ColorRelated, Paint(movie, "").Fill)
	assert.Equal(t, 5.0, Paint(movie, "Tom Hanks").Radius)

	sel := Paint(movie, "Big")
	assert.Equal(t, ColorSelected, sel.Fill)
	assert.Equal(t, ColorStroke, sel.Stroke)
	assert.Equal(t, 8.0, sel.Radius)
	assert.Equal(t, "Big", sel.Label)
}

func TestBuild_TruncatedCountsSkippedEntries(t *testing.T) {
	res := filmography(DefaultMaxRelated + 1)
	res.Related[3].Name = ""
	res.Related[5].Name = res.Related[4].Name

	view := Build(res, models.RoleSubject, Options{})
	assert.True(t, view.Truncated)
	assert.Equal(t, DefaultMaxRelated+1, view.Total)
	assert.Len(t, view.Nodes, DefaultMaxRelated)
}
