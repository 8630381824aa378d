package inventory

import (
	"sort"
	"strconv"
	"strings"

	"podsync/internal/services/printify"
)

// OptionsKey is the canonical form of a variant's options mapping. Two
// variants are the same configuration iff their keys are equal, whatever
// provider they belong to. Values are compared exactly, with no case folding.
type OptionsKey string

// NewOptionsKey builds the key from attribute/value pairs sorted by attribute.
// Each part is length-prefixed so that no attribute or value content can make
// two different mappings collide.
func NewOptionsKey(options map[string]string) OptionsKey {
	attrs := make([]string, 0, len(options))
	for attr := range options {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	var b strings.Builder
	for _, attr := range attrs {
		writePart(&b, attr)
		writePart(&b, options[attr])
	}
	return OptionsKey(b.String())
}

func writePart(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}

// MatchResult is the outcome of matching a product's variants against one
// candidate provider catalog.
type MatchResult struct {
	// Matched is true only when every existing variant found a counterpart.
	Matched bool
	// Variants holds the remapped variants, in input order, when Matched.
	Variants []printify.Variant
	// Missing is the first existing variant without a counterpart.
	Missing *printify.Variant
}

// MatchVariants maps every existing variant onto the candidate catalog by
// options. A single unmatched variant rejects the whole candidate. Price and
// enabled flag are carried over; only the provider-local id changes. When the
// candidate lists the same options more than once, the first entry wins.
func MatchVariants(existing []printify.Variant, candidates []printify.CatalogVariant) MatchResult {
	lookup := make(map[OptionsKey]printify.CatalogVariant, len(candidates))
	for _, c := range candidates {
		key := NewOptionsKey(c.Options)
		if _, seen := lookup[key]; !seen {
			lookup[key] = c
		}
	}

	remapped := make([]printify.Variant, 0, len(existing))
	for i := range existing {
		v := existing[i]
		match, ok := lookup[NewOptionsKey(v.Options)]
		if !ok {
			return MatchResult{Missing: &v}
		}

		remapped = append(remapped, printify.Variant{
			ID:        match.ID,
			Title:     v.Title,
			Price:     v.Price,
			IsEnabled: v.IsEnabled,
			Options:   copyOptions(v.Options),
		})
	}

	return MatchResult{Matched: true, Variants: remapped}
}

func copyOptions(options map[string]string) map[string]string {
	if options == nil {
		return nil
	}
	out := make(map[string]string, len(options))
	for k, v := range options {
		out[k] = v
	}
	return out
}
