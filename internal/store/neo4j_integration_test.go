//go:build integration

package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/castgraph/internal/models"
)

// Requires a running Neo4j. Configure with CASTGRAPH_NEO4J_URI and
// NEO4J_PASSWORD; the test database is wiped.
func newIntegrationStore(t *testing.T) *Neo4jStore {
	t.Helper()
	uri := os.Getenv("CASTGRAPH_NEO4J_URI")
	if uri == "" {
		uri = "neo4j://localhost:7687"
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewNeo4jStore(context.Background(), uri, "neo4j", os.Getenv("NEO4J_PASSWORD"), "", logger)
	if err != nil {
		t.Skipf("neo4j unavailable: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	session := s.session(context.Background(), neo4j.AccessModeWrite)
	_, err = session.Run(context.Background(), "MATCH (n) WHERE n:Actor OR n:Movie DETACH DELETE n", nil)
	_ = session.Close(context.Background())
	require.NoError(t, err)
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func TestNeo4jStore_Roundtrip(t *testing.T) {
	s := newIntegrationStore(t)
	seed(t, s)
	ctx := context.Background()

	res, err := s.Filmography(ctx, "Tom Hanks")
	require.NoError(t, err)
	assert.Equal(t, []string{"Another 2000 Film", "Cast Away", "Apollo 13", "Big"}, names(res.Related))
	assert.Equal(t, "Male", res.Focal.Gender)

	cast, err := s.Cast(ctx, "Apollo 13")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bill Paxton", "Tom Hanks"}, names(cast.Related))

	got, err := s.Autocomplete(ctx, models.RoleSubject, "hank", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tom Hanks"}, got)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Actors)
	assert.Equal(t, int64(6), stats.Links)

	_, err = s.Filmography(ctx, "Nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, models.RoleSubject, "Bill Paxton"))
	assert.ErrorIs(t, s.Delete(ctx, models.RoleSubject, "Bill Paxton"), ErrNotFound)
}
