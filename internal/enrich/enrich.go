// Package enrich cleans captured profile data in the background.
package enrich

import (
	"context"

	"github.com/honeycarbs/talentsync/internal/domain"
)

// Result of one enrichment. Only non-empty Cleaned values overwrite talent fields;
// Extras are merged into the talent's data bag.
type Result struct {
	Cleaned domain.Attrs
	Extras  domain.Attrs
}

// Empty reports whether the result carries nothing to apply
func (r Result) Empty() bool {
	for _, v := range r.Cleaned {
		if !domain.IsEmptyValue(v) {
			return false
		}
	}
	return len(r.Extras) == 0
}

// ProfileEnricher turns a raw captured profile into cleaned fields and extras
type ProfileEnricher interface {
	Enrich(ctx context.Context, profile domain.Attrs) (Result, error)
}

// CleanedFields are the talent fields an enricher may rewrite
var CleanedFields = []string{"name", "headline", "location", "email", "phone"}

// Noop leaves profiles untouched
type Noop struct{}

var _ ProfileEnricher = Noop{}

func (Noop) Enrich(context.Context, domain.Attrs) (Result, error) {
	return Result{}, nil
}
