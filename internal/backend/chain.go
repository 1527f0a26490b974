// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"context"
	"errors"

	"github.com/pdiddy/citelink/internal/index"
	"github.com/pdiddy/citelink/pkg/types"
)

// Chain asks each provider in turn and returns the first present result,
// for example a local cache before the remote service. Errors are
// collected and returned only when no provider had data.
type Chain []index.ReferenceProvider

// ExistingReferences returns the first usable reference list.
func (c Chain) ExistingReferences(ctx context.Context, docID string) (*types.ExternalReferences, error) {
	var errs []error
	for _, p := range c {
		if p == nil {
			continue
		}
		refs, err := p.ExistingReferences(ctx, docID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if refs.Usable() {
			return refs, nil
		}
	}
	return nil, errors.Join(errs...)
}

// ExistingCitationSpans returns the first non-empty span list.
func (c Chain) ExistingCitationSpans(ctx context.Context, docID string) ([]types.CitationSpan, error) {
	var errs []error
	for _, p := range c {
		if p == nil {
			continue
		}
		spans, err := p.ExistingCitationSpans(ctx, docID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(spans) > 0 {
			return spans, nil
		}
	}
	return nil, errors.Join(errs...)
}
