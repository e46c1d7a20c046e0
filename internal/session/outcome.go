package session

import (
	"fmt"

	"github.com/ajitpratap0/castgraph/internal/models"
)

// Status names an Outcome variant.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusLoading  Status = "loading"
	StatusFound    Status = "found"
	StatusNotFound Status = "not_found"
	StatusFailed   Status = "failed"
)

// Outcome is the result of the current search. It is one of Idle, Loading,
// Found, NotFound or Failed.
type Outcome interface {
	Status() Status
	outcome()
}

// Idle means nothing is searched.
type Idle struct{}

// Loading means a lookup for Query is in flight.
type Loading struct {
	Query models.Query
}

// Found carries the lookup result and the graph built from it.
type Found struct {
	Query   models.Query
	Result  models.DomainResult
	View    models.GraphView
	GraphID string
}

// NotFound means the backend has no entity for Query, or the entity has no
// relations.
type NotFound struct {
	Query models.Query
}

// Failed means the lookup failed for a reason other than not-found.
type Failed struct {
	Query  models.Query
	Reason string
	Err    error
}

func (Idle) Status() Status     { return StatusIdle }
func (Loading) Status() Status  { return StatusLoading }
func (Found) Status() Status    { return StatusFound }
func (NotFound) Status() Status { return StatusNotFound }
func (Failed) Status() Status   { return StatusFailed }

func (Idle) outcome()     {}
func (Loading) outcome()  {}
func (Found) outcome()    {}
func (NotFound) outcome() {}
func (Failed) outcome()   {}

// EnrichmentError reports that registering a subject from the enrichment
// source failed.
type EnrichmentError struct {
	Name string
	Err  error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("registering %s: %v", e.Name, e.Err)
}

func (e *EnrichmentError) Unwrap() error {
	return e.Err
}

// BannerKind classifies the single user-facing message.
type BannerKind string

const (
	BannerNone  BannerKind = ""
	BannerInfo  BannerKind = "info"
	BannerError BannerKind = "error"
)

// Banner is the one message shown to the user. Every transition replaces it.
type Banner struct {
	Kind    BannerKind `json:"kind,omitempty"`
	Message string     `json:"message,omitempty"`
}

// IsZero reports whether no banner is shown.
func (b Banner) IsZero() bool {
	return b.Kind == BannerNone
}

const failedMessage = "Failed to fetch data. Please try again."

func notFoundBanner(q models.Query) Banner {
	msg := fmt.Sprintf("No %s found for %q.", q.Role, q.Text)
	if q.Role == models.RoleSubject {
		msg += " You can add this actor from TMDB."
	}
	return Banner{Kind: BannerInfo, Message: msg}
}
