package models

// Entity is a node of the actor/movie graph. Name is the natural key: the
// person's name for RoleSubject and the title for RoleRelated.
type Entity struct {
	Role        Role   `json:"role"`
	Name        string `json:"name"`
	Year        string `json:"year,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	DateOfDeath string `json:"date_of_death,omitempty"`
	Gender      string `json:"gender,omitempty"`
}

// DomainResult is one focal entity and the entities directly related to it,
// in backend order (filmography newest first, cast alphabetical).
type DomainResult struct {
	Focal   Entity   `json:"focal"`
	Related []Entity `json:"related"`
}

// Suggestion is a lightweight autocomplete stub.
type Suggestion struct {
	ID      string `json:"id"`
	Display string `json:"display"`
}

// SuggestionSet is the suggestion list produced for one query text. A newer
// set always replaces an older one wholesale.
type SuggestionSet struct {
	Text  string       `json:"text"`
	Items []Suggestion `json:"items"`
}

// Poster is best-effort artwork for a movie.
type Poster struct {
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
	URL        string `json:"url,omitempty"`
}

// SeedReport summarizes a bulk seed run.
type SeedReport struct {
	Count  int      `json:"count"`
	Failed []string `json:"failed,omitempty"`
}

// CatalogStats holds entity counts per role.
type CatalogStats struct {
	Actors int64 `json:"actors"`
	Movies int64 `json:"movies"`
	Links  int64 `json:"links"`
}
