package resolver

import (
	"context"
	"labbridge-service/internal/app/config"
	"labbridge-service/internal/app/contracts"
	"labbridge-service/internal/pkg/constvars"
	"labbridge-service/internal/pkg/exceptions"
	"strings"

	"go.uber.org/zap"
)

// Resolver locates live page elements for semantic field names, trying
// increasingly expensive strategies: the per-portal catalog, a heuristic
// attribute scan, and finally the optional adaptive-lookup collaborator.
type Resolver struct {
	Catalog       *Catalog
	Adaptive      contracts.AdaptiveLocatorClient
	Log           *zap.Logger
	MaxExcerpt    int
	MinConfidence float64
}

func NewResolver(catalog *Catalog, adaptive contracts.AdaptiveLocatorClient, internalConfig *config.InternalConfig, log *zap.Logger) *Resolver {
	return &Resolver{
		Catalog:       catalog,
		Adaptive:      adaptive,
		Log:           log,
		MaxExcerpt:    internalConfig.Adaptive.MaxExcerptBytes,
		MinConfidence: internalConfig.Adaptive.MinConfidence,
	}
}

// Resolve returns the single visible, enabled element for fieldName, or an
// ElementNotFound error once every strategy has been exhausted. Results are
// never cached: DOM identity does not survive a navigation.
func (r *Resolver) Resolve(ctx context.Context, page contracts.Page, fieldName string) (contracts.Element, error) {
	spec, known := r.Catalog.Spec(fieldName)

	sawDisabled := false
	if known {
		element, disabled := r.catalogLookup(ctx, page, spec)
		if element != nil {
			return element, nil
		}
		sawDisabled = disabled
	}

	if element := r.resolveByHeuristic(ctx, page, fieldName, spec.Kind); element != nil {
		r.Log.Info("element resolved by heuristic scan",
			zap.String(constvars.LoggingFieldKey, fieldName),
			zap.String(constvars.LoggingStrategyKey, "heuristic"),
		)
		return element, nil
	}

	if r.Adaptive != nil {
		element, err := r.resolveByAdaptiveLookup(ctx, page, fieldName, spec.Kind)
		if err != nil {
			r.Log.Warn("adaptive lookup failed",
				zap.String(constvars.LoggingFieldKey, fieldName),
				zap.Error(err),
			)
		} else if element != nil {
			return element, nil
		}
	}

	// A control that is on the page but disabled is a different failure than
	// one that is missing: the escalation reason should name it.
	if sawDisabled {
		return nil, exceptions.ErrControlDisabled(fieldName)
	}
	return nil, exceptions.ErrElementNotFound(fieldName)
}

// ProbeCatalog checks only the catalog selectors for fieldName, without the
// scanning or adaptive fallbacks. Callers use it for optional controls whose
// absence is the common case, like the second step of a split login.
func (r *Resolver) ProbeCatalog(ctx context.Context, page contracts.Page, fieldName string) contracts.Element {
	spec, known := r.Catalog.Spec(fieldName)
	if !known {
		return nil
	}
	element, _ := r.catalogLookup(ctx, page, spec)
	return element
}

// catalogLookup tries the catalog selectors in order. The second return
// reports that some selector matched exactly one visible element that was
// disabled.
func (r *Resolver) catalogLookup(ctx context.Context, page contracts.Page, spec FieldSpec) (contracts.Element, bool) {
	sawDisabled := false
	for _, selector := range spec.Selectors {
		elements, err := page.Query(ctx, selector)
		if err != nil {
			continue
		}
		actionable := filterActionable(elements)
		if len(actionable) == 1 {
			return actionable[0], false
		}
		if visible := filterVisible(elements); len(visible) == 1 && !visible[0].Enabled() {
			sawDisabled = true
		}
	}
	return nil, sawDisabled
}

// resolveByHeuristic enumerates interactive elements of the expected kind and
// scores substring matches of the field name tokens against each element's
// identifying attributes. Only an unambiguous best score wins.
func (r *Resolver) resolveByHeuristic(ctx context.Context, page contracts.Page, fieldName string, kind ElementKind) contracts.Element {
	elements, err := page.Query(ctx, kindSelector(kind))
	if err != nil {
		return nil
	}

	tokens := fieldTokens(fieldName)
	var best contracts.Element
	bestScore := 0
	ambiguous := false

	for _, element := range filterActionable(elements) {
		score := scoreElement(element, tokens)
		if score == 0 {
			continue
		}
		if score > bestScore {
			best, bestScore, ambiguous = element, score, false
		} else if score == bestScore {
			ambiguous = true
		}
	}

	if best == nil || ambiguous {
		return nil
	}
	return best
}

func (r *Resolver) resolveByAdaptiveLookup(ctx context.Context, page contracts.Page, fieldName string, kind ElementKind) (contracts.Element, error) {
	markup, err := page.Content(ctx)
	if err != nil {
		return nil, err
	}
	if len(markup) > r.MaxExcerpt {
		markup = markup[:r.MaxExcerpt]
	}

	result, err := r.Adaptive.SuggestLocator(ctx, &contracts.AdaptiveLookupRequest{
		FieldName:     fieldName,
		ElementKind:   string(kind),
		MarkupExcerpt: markup,
	})
	if err != nil {
		return nil, err
	}
	if result.Confidence < r.MinConfidence {
		return nil, nil
	}

	elements, err := page.Query(ctx, result.Selector)
	if err != nil {
		return nil, err
	}
	actionable := filterActionable(elements)
	if len(actionable) != 1 {
		return nil, nil
	}

	// Provenance is logged so a false positive can be traced back to the
	// suggestion that produced it.
	r.Log.Info("element resolved by adaptive lookup",
		zap.String(constvars.LoggingFieldKey, fieldName),
		zap.String(constvars.LoggingStrategyKey, "adaptive"),
		zap.String(constvars.LoggingSelectorKey, result.Selector),
		zap.Float64("confidence", result.Confidence),
		zap.String("provenance", result.Provenance),
	)
	return actionable[0], nil
}

func filterActionable(elements []contracts.Element) []contracts.Element {
	var actionable []contracts.Element
	for _, element := range elements {
		if element.Visible() && element.Enabled() {
			actionable = append(actionable, element)
		}
	}
	return actionable
}

func filterVisible(elements []contracts.Element) []contracts.Element {
	var visible []contracts.Element
	for _, element := range elements {
		if element.Visible() {
			visible = append(visible, element)
		}
	}
	return visible
}

func kindSelector(kind ElementKind) string {
	switch kind {
	case KindSelect:
		return "select"
	case KindCheckbox:
		return "input[type='checkbox'], input[type='radio']"
	case KindButton:
		return "button, input[type='submit'], input[type='button'], a"
	default:
		return "input, textarea"
	}
}

// fieldTokens splits "patient.search.lastName" into lower-cased tokens:
// patient, search, last, name, lastname.
func fieldTokens(fieldName string) []string {
	var tokens []string
	for _, part := range strings.Split(fieldName, ".") {
		var current strings.Builder
		var parts []string
		for _, r := range part {
			if r >= 'A' && r <= 'Z' && current.Len() > 0 {
				parts = append(parts, strings.ToLower(current.String()))
				current.Reset()
			}
			current.WriteRune(r)
		}
		if current.Len() > 0 {
			parts = append(parts, strings.ToLower(current.String()))
		}
		tokens = append(tokens, parts...)
		if len(parts) > 1 {
			tokens = append(tokens, strings.Join(parts, ""))
		}
	}
	return tokens
}

var scoredAttributes = []string{"name", "id", "placeholder", "aria-label", "data-field"}

func scoreElement(element contracts.Element, tokens []string) int {
	score := 0
	for _, attribute := range scoredAttributes {
		value := strings.ToLower(element.Attr(attribute))
		if value == "" {
			continue
		}
		for _, token := range tokens {
			if len(token) < 3 {
				continue
			}
			if strings.Contains(value, token) {
				points := 1
				// Compound tokens like "lastname" are far stronger signals
				// than single words like "patient".
				if len(token) >= 6 {
					points = 3
				}
				score += points
			}
		}
	}
	return score
}
