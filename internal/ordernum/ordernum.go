// Package ordernum is the single place that knows the order numbering
// conventions: the human-readable base number handed to a table, and the
// "-ADD" suffix used to label a batch of items appended to an order that
// was already sent to the stations.
package ordernum

import (
	"strings"

	"github.com/appetiteclub/apt"
)

const (
	prefix           = "ORD-"
	additionalSuffix = "-ADD"
)

// Generate produces a new base order number.
func Generate() string {
	id := apt.GenerateNewID()
	return prefix + strings.ToUpper(id.String()[:8])
}

// Additional returns the display number for an additional-items batch of
// the given base number.
func Additional(base string) string {
	return base + additionalSuffix
}

// IsAdditional reports whether a number labels an additional-items batch.
func IsAdditional(number string) bool {
	return strings.HasSuffix(number, additionalSuffix)
}

// Parent strips the additional-batch suffix, returning the base number.
// A base number is returned unchanged.
func Parent(number string) string {
	return strings.TrimSuffix(number, additionalSuffix)
}

// WorkingSet expands a set of base numbers into the full set of ticket
// numbers that may exist for them: each base plus its additional variant.
// An empty input yields an empty output.
func WorkingSet(bases []string) []string {
	set := make([]string, 0, len(bases)*2)
	for _, b := range bases {
		set = append(set, b, Additional(b))
	}
	return set
}
