package strategy

import (
	"github.com/sson-dev/sson/handler"
	"github.com/sson-dev/sson/matcher"
)

// Binding pairs a matcher with the handler invoked wherever it matches.
type Binding struct {
	Matcher matcher.Matcher
	Handler handler.Handler
}
