package contracts

import "context"

type AdaptiveLookupRequest struct {
	FieldName     string `json:"field_name"`
	ElementKind   string `json:"element_kind"`
	MarkupExcerpt string `json:"markup_excerpt"`
}

type AdaptiveLookupResult struct {
	Selector   string  `json:"selector"`
	Confidence float64 `json:"confidence"`
	Provenance string  `json:"provenance"`
}

// AdaptiveLocatorClient is the optional content-understanding collaborator the
// element resolver falls back to last. The engine must keep working, at
// reduced robustness, when this client is absent entirely.
type AdaptiveLocatorClient interface {
	SuggestLocator(ctx context.Context, request *AdaptiveLookupRequest) (*AdaptiveLookupResult, error)
}
