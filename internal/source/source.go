// Package source defines the review and spec collaborators used by the
// collecting stage, with fixture-backed and file-backed implementations.
package source

import (
	"context"
	"strings"

	"github.com/ppiankov/naysayer/internal/fixture"
)

// Review filter values meaning "no filter"
const (
	PlatformAll = "all"
	PolarityAll = "all"
)

// ReviewQuery selects review snippets for one product
type ReviewQuery struct {
	Product  string
	Platform string // jd, taobao, smzdm, zhihu, ... or "all"
	Polarity string // negative, positive or "all"
	Limit    int    // <= 0 means unlimited
}

// ReviewSource returns raw review snippets
type ReviewSource interface {
	Search(ctx context.Context, q ReviewQuery) ([]string, error)
}

// SpecSource returns a product's spec map
type SpecSource interface {
	Lookup(ctx context.Context, product string) (map[string]string, error)
}

// UnknownSpecs is the spec map for products with no known specs
func UnknownSpecs() map[string]string {
	return map[string]string{"info": "unknown"}
}

// FixtureReviews serves reviews from the embedded demo tables
type FixtureReviews struct {
	tables *fixture.Tables
}

// NewFixtureReviews creates a new fixture review source
func NewFixtureReviews(tables *fixture.Tables) *FixtureReviews {
	return &FixtureReviews{tables: tables}
}

// Search returns the demo reviews for the product
func (s *FixtureReviews) Search(ctx context.Context, q ReviewQuery) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return limit(s.tables.Reviews(q.Product), q.Limit), nil
}

// FixtureSpecs serves specs from the embedded demo tables
type FixtureSpecs struct {
	tables *fixture.Tables
}

// NewFixtureSpecs creates a new fixture spec source
func NewFixtureSpecs(tables *fixture.Tables) *FixtureSpecs {
	return &FixtureSpecs{tables: tables}
}

// Lookup returns the demo specs for the product, or UnknownSpecs
func (s *FixtureSpecs) Lookup(ctx context.Context, product string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if specs, ok := s.tables.Specs(product); ok {
		return specs, nil
	}
	return UnknownSpecs(), nil
}

// IsUnknown reports whether specs carries no real spec values
func IsUnknown(specs map[string]string) bool {
	if len(specs) == 0 {
		return true
	}
	_, ok := specs["info"]
	return ok && len(specs) == 1
}

func limit(reviews []string, n int) []string {
	if n > 0 && len(reviews) > n {
		return reviews[:n]
	}
	return reviews
}

func matchesFilter(want, got string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	got = strings.ToLower(strings.TrimSpace(got))
	return want == "" || want == PlatformAll || got == "" || want == got
}
