package telemetry

import (
	"fmt"
)

// API is how components report what happens to them. Tests swap in a
// Recorder to check that failures are surfaced, the CLI uses SlogAPI.
//
// note: fault injection point
type API interface {
	// ReportBroken reports something that should never happen, like a
	// collection write failing halfway through a deck.
	//
	// `id` names the component, not the failing line, ex. `collection.add-note`
	// or `client.fetch-items`. Deck ids, urls and wrapped errors go in params.
	// Ids are lowercase, dots separate a component from its operation and
	// dashes join words.
	ReportBroken(id string, params ...any)

	// ReportWarning reports an expected failure worth a look, like a private
	// deck or a media file that would not download. Ids follow ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug reports progress, only shown with --verbose.
	ReportDebug(msg string, params ...any)

	// ReportCount reports how many of something one operation produced, ex.
	// the terms in a deck. Each call is a single data point.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id with the namespace of the component it was
// handed to, so `importer: session.import-deck` tells where a report came
// from.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) scope(id string) string {
	return fmt.Sprintf("%s: %s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.scope(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.scope(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(s.scope(msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.scope(id), count)
}
