package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ajitpratap0/castgraph/internal/models"
)

// Cypher statements. Movies are keyed by title, actors by name.
const (
	filmographyQuery = `MATCH (a:Actor {name: $name})
OPTIONAL MATCH (a)-[:ACTED_IN]->(m:Movie)
WITH a, m
ORDER BY m.year DESC, m.title
RETURN a AS focal, collect(m) AS related`

	castQuery = `MATCH (m:Movie {title: $name})
OPTIONAL MATCH (a:Actor)-[:ACTED_IN]->(m)
WITH m, a
ORDER BY a.name
RETURN m AS focal, collect(a) AS related`

	upsertActorQuery = `MERGE (a:Actor {name: $name})
SET a.date_of_birth = $date_of_birth,
    a.date_of_death = $date_of_death,
    a.gender = $gender`

	upsertCreditsQuery = `MATCH (a:Actor {name: $name})
UNWIND $movies AS movie
MERGE (m:Movie {title: movie.title})
ON CREATE SET m.year = movie.year
MERGE (a)-[:ACTED_IN]->(m)`

	statsQuery = `OPTIONAL MATCH (a:Actor)
WITH count(a) AS actors
OPTIONAL MATCH (m:Movie)
WITH actors, count(m) AS movies
OPTIONAL MATCH (:Actor)-[r:ACTED_IN]->(:Movie)
RETURN actors, movies, count(r) AS links`
)

// LookupStatement returns the Cypher statement used to look up relations for
// role, for display next to the graph.
func LookupStatement(role models.Role) string {
	if role == models.RoleRelated {
		return castQuery
	}
	return filmographyQuery
}

// label returns the node label and key property for role.
func label(role models.Role) (string, string, error) {
	switch role {
	case models.RoleSubject:
		return "Actor", "name", nil
	case models.RoleRelated:
		return "Movie", "title", nil
	default:
		return "", "", fmt.Errorf("invalid role %q", role)
	}
}

// Neo4jStore implements Store using the Neo4j Bolt driver.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jStore connects to Neo4j and verifies connectivity.
func NewNeo4jStore(ctx context.Context, uri, username, password, database string, logger *slog.Logger) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connecting to neo4j at %s: %w", uri, err)
	}
	return &Neo4jStore{driver: driver, database: database, logger: logger}, nil
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	stmts := []string{
		"CREATE CONSTRAINT actor_name IF NOT EXISTS FOR (a:Actor) REQUIRE a.name IS UNIQUE",
		"CREATE CONSTRAINT movie_title IF NOT EXISTS FOR (m:Movie) REQUIRE m.title IS UNIQUE",
	}
	for _, stmt := range stmts {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	s.logger.Info("neo4j schema ensured")
	return nil
}

func (s *Neo4jStore) Filmography(ctx context.Context, name string) (*models.DomainResult, error) {
	return s.relations(ctx, filmographyQuery, models.RoleSubject, name)
}

func (s *Neo4jStore) Cast(ctx context.Context, title string) (*models.DomainResult, error) {
	return s.relations(ctx, castQuery, models.RoleRelated, title)
}

func (s *Neo4jStore) relations(ctx context.Context, cypher string, role models.Role, name string) (*models.DomainResult, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("looking up %s %q: %w", role, name, err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("looking up %s %q: %w", role, name, err)
		}
		return nil, fmt.Errorf("%s %q: %w", role, name, ErrNotFound)
	}
	record := result.Record()

	focalRaw, _ := record.Get("focal")
	focal, ok := focalRaw.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", role, name, ErrNotFound)
	}
	res := &models.DomainResult{Focal: entityFromProps(role, focal.Props)}

	relatedRaw, _ := record.Get("related")
	list, _ := relatedRaw.([]any)
	res.Related = make([]models.Entity, 0, len(list))
	for _, item := range list {
		n, ok := item.(neo4j.Node)
		if !ok {
			continue
		}
		res.Related = append(res.Related, entityFromProps(role.Opposite(), n.Props))
	}
	return res, nil
}

func (s *Neo4jStore) Autocomplete(ctx context.Context, role models.Role, partial string, limit int) ([]string, error) {
	lbl, key, err := label(role)
	if err != nil {
		return nil, err
	}
	cypher := fmt.Sprintf(`MATCH (n:%s)
WHERE toLower(n.%s) CONTAINS toLower($partial)
RETURN n.%s AS name
ORDER BY name
LIMIT $limit`, lbl, key, key)

	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, map[string]any{"partial": partial, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("autocomplete %s: %w", role, err)
	}
	var names []string
	for result.Next(ctx) {
		if v, ok := result.Record().Get("name"); ok {
			if name, ok := v.(string); ok {
				names = append(names, name)
			}
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("autocomplete %s: %w", role, err)
	}
	return names, nil
}

func (s *Neo4jStore) List(ctx context.Context, role models.Role) ([]models.Entity, error) {
	lbl, key, err := label(role)
	if err != nil {
		return nil, err
	}
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN n ORDER BY n.%s", lbl, key)

	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, nil)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", role, err)
	}
	var out []models.Entity
	for result.Next(ctx) {
		v, _ := result.Record().Get("n")
		if n, ok := v.(neo4j.Node); ok {
			out = append(out, entityFromProps(role, n.Props))
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("listing %s: %w", role, err)
	}
	return out, nil
}

func (s *Neo4jStore) Get(ctx context.Context, role models.Role, name string) (*models.Entity, error) {
	lbl, key, err := label(role)
	if err != nil {
		return nil, err
	}
	cypher := fmt.Sprintf("MATCH (n:%s {%s: $name}) RETURN n LIMIT 1", lbl, key)

	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("getting %s %q: %w", role, name, err)
	}
	if !result.Next(ctx) {
		return nil, fmt.Errorf("%s %q: %w", role, name, ErrNotFound)
	}
	v, _ := result.Record().Get("n")
	n, ok := v.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", role, name, ErrNotFound)
	}
	e := entityFromProps(role, n.Props)
	return &e, nil
}

func (s *Neo4jStore) UpsertCredits(ctx context.Context, actor models.Entity, movies []models.Entity) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	rows := make([]map[string]any, 0, len(movies))
	for _, m := range movies {
		rows = append(rows, map[string]any{"title": m.Name, "year": m.Year})
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, upsertActorQuery, map[string]any{
			"name":          actor.Name,
			"date_of_birth": nullable(actor.DateOfBirth),
			"date_of_death": nullable(actor.DateOfDeath),
			"gender":        nullable(actor.Gender),
		}); err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, nil
		}
		_, err := tx.Run(ctx, upsertCreditsQuery, map[string]any{"name": actor.Name, "movies": rows})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("upserting credits for %q: %w", actor.Name, err)
	}
	s.logger.Debug("upserted credits", "actor", actor.Name, "movies", len(movies))
	return nil
}

func (s *Neo4jStore) Delete(ctx context.Context, role models.Role, name string) error {
	lbl, key, err := label(role)
	if err != nil {
		return err
	}
	cypher := fmt.Sprintf("MATCH (n:%s {%s: $name}) DETACH DELETE n RETURN count(n) AS deleted", lbl, key)

	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, map[string]any{"name": name})
	if err != nil {
		return fmt.Errorf("deleting %s %q: %w", role, name, err)
	}
	if result.Next(ctx) {
		if v, ok := result.Record().Get("deleted"); ok {
			if n, ok := v.(int64); ok && n == 0 {
				return fmt.Errorf("%s %q: %w", role, name, ErrNotFound)
			}
		}
	}
	return result.Err()
}

func (s *Neo4jStore) Stats(ctx context.Context) (*models.CatalogStats, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, statsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	stats := &models.CatalogStats{}
	if result.Next(ctx) {
		rec := result.Record()
		stats.Actors = int64Value(rec, "actors")
		stats.Movies = int64Value(rec, "movies")
		stats.Links = int64Value(rec, "links")
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	return stats, nil
}

func (s *Neo4jStore) Close() error {
	return s.driver.Close(context.Background())
}

func entityFromProps(role models.Role, props map[string]any) models.Entity {
	e := models.Entity{
		Role:        role,
		Year:        stringProp(props, "year"),
		DateOfBirth: stringProp(props, "date_of_birth"),
		DateOfDeath: stringProp(props, "date_of_death"),
		Gender:      stringProp(props, "gender"),
	}
	if role == models.RoleRelated {
		e.Name = stringProp(props, "title")
	} else {
		e.Name = stringProp(props, "name")
	}
	return e
}

func stringProp(props map[string]any, key string) string {
	switch v := props[key].(type) {
	case string:
		return v
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}

func int64Value(rec *neo4j.Record, key string) int64 {
	v, _ := rec.Get(key)
	n, _ := v.(int64)
	return n
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
