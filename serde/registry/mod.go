// Package registry defines the format registry mechanism.
//
// The default implementation always returns an engine: an unknown format gets
// an engine that fails with a meaningful error, so callers never need to check
// for existence.
package registry

import "go.dedis.ch/ledgerkit/serde"

// Registry is an interface to register and get format engines for a specific
// format.
type Registry interface {
	// Register takes a format and its engine and it registers them so that the
	// engine can be looked up later.
	Register(serde.Format, serde.FormatEngine)

	// Get returns the engine associated with the format.
	Get(serde.Format) serde.FormatEngine
}
