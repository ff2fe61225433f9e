// Package handler implements the pluggable sinks and transformers that
// strategies dispatch to when a matcher fires on the element currently
// being traversed. A handler is a capability set, not a class hierarchy:
// it implements whichever of Starter, Feeder, Ender, InputFinisher, and
// JSONFinisher its behavior needs, plus the single required method,
// IsConverter.
package handler

import (
	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// Handler is the capability every concrete handler satisfies.
type Handler interface {
	// IsConverter reports whether this handler produces replacement
	// bytes that should be substituted for the element's original bytes.
	// A non-converter is purely observational; transforming strategies
	// ignore whatever bytes it returns.
	IsConverter() bool
}

// Starter handlers are notified when a matched element begins.
type Starter interface {
	Start(p path.Path, matcherIdx int, tok token.Token) ([]byte, error)
}

// Feeder handlers observe (and, if a converter, may rewrite) the raw bytes
// of a matched element as they stream in.
type Feeder interface {
	Feed(b []byte, matcherIdx int) ([]byte, error)
}

// Ender handlers are notified when a matched element ends.
type Ender interface {
	End(p path.Path, matcherIdx int, tok token.Token) ([]byte, error)
}

// InputFinisher handlers are notified once no more input bytes will ever
// arrive.
type InputFinisher interface {
	InputFinished() ([]byte, error)
}

// JSONFinisher handlers are notified each time a top-level document is
// fully traversed.
type JSONFinisher interface {
	JSONFinished() ([]byte, error)
}
