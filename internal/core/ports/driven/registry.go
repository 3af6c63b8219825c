package driven

import (
	"context"

	"github.com/custodia-labs/notion-nlp/internal/core/domain"
)

// NormaliserRegistry dispatches raw pages to the highest priority
// Normaliser for their MIME type. Other text/* types fall back to a
// plain text normaliser; anything else is domain.ErrUnsupportedType.
type NormaliserRegistry interface {
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
	Register(normaliser Normaliser)

	// SupportedMIMETypes is sorted and de-duplicated.
	SupportedMIMETypes() []string
}
