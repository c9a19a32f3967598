package citation

import (
	"strconv"
	"strings"

	"github.com/otzarlib/otzar/core/refindex"
)

// ResolveOptions controls which fallback tiers the resolver may use.
type ResolveOptions struct {
	// NoChapterFallback suppresses the chapter-level fallback and the
	// within-chapter backward scan. Set for Talmud-daf citations, where
	// "chapter" has no meaning; Resolve also suppresses them when the
	// citation itself carries a daf address.
	NoChapterFallback bool
}

// candidateFunc lazily produces lookup keys for one fallback tier. Tiers are
// evaluated in order; the first key that hits the index wins.
type candidateFunc func() []string

// Resolve matches a citation against the index via the ordered fallback
// chain: exact normalized form, alias-stripped, numeric-tail-only, dash-range
// start (itself run through the first three), chapter-level fallback
// (truncate before the first ':' and retry with ":1"), and finally a
// within-chapter backward scan. Resolve never panics; a false return means
// drop and continue.
//
// The backward scan is deliberately lossy: when the exact sub-unit was never
// emitted it can land on an earlier sub-unit of the same chapter than the
// one actually cited. This imprecision is inherited behavior and callers
// rely on it to bridge gaps in sparsely emitted texts.
func Resolve(c *Citation, idx *refindex.Index, aliases []string, opts ResolveOptions) (refindex.Position, bool) {
	if c == nil || idx == nil {
		return refindex.Position{}, false
	}

	if pos, ok := lookupChain(c.Raw, idx, aliases); ok {
		return pos, true
	}

	if opts.NoChapterFallback || c.HasDafAddress {
		return refindex.Position{}, false
	}

	if pos, ok := chapterFallback(c.Raw, idx, aliases); ok {
		return pos, true
	}

	return backwardScan(c.Raw, idx, aliases)
}

// lookupChain runs tiers 1-4 for one raw string.
func lookupChain(raw string, idx *refindex.Index, aliases []string) (refindex.Position, bool) {
	chain := []candidateFunc{
		func() []string { return []string{raw} },
		func() []string {
			var keys []string
			for _, alias := range aliases {
				if stripped := refindex.StripAlias(raw, alias); stripped != raw {
					keys = append(keys, stripped)
				}
			}
			return keys
		},
		func() []string {
			if tail := refindex.NumericTail(raw); tail != "" {
				return []string{tail}
			}
			return nil
		},
	}

	for _, generate := range chain {
		for _, key := range generate() {
			if pos, ok := idx.Lookup(key); ok {
				return pos, true
			}
		}
	}

	// Tier 4: a dash range resolves to its start, run back through 1-3.
	if dash := strings.Index(raw, "-"); dash > 0 {
		start := strings.TrimSpace(raw[:dash])
		if start != "" && start != raw {
			return lookupChain(start, idx, aliases)
		}
	}

	return refindex.Position{}, false
}

// chapterFallback truncates the citation before its first ':' and retries
// with ":1", anchoring an over-specified citation at its chapter head.
func chapterFallback(raw string, idx *refindex.Index, aliases []string) (refindex.Position, bool) {
	colon := strings.Index(raw, ":")
	if colon <= 0 {
		return refindex.Position{}, false
	}
	return lookupChain(raw[:colon]+":1", idx, aliases)
}

// backwardScan holds the chapter fixed and decrements the trailing component
// toward 1, returning the first hit. This covers gaps where an intermediate
// sub-unit was never emitted.
func backwardScan(raw string, idx *refindex.Index, aliases []string) (refindex.Position, bool) {
	colon := strings.LastIndex(raw, ":")
	if colon <= 0 || colon == len(raw)-1 {
		return refindex.Position{}, false
	}

	last, err := strconv.Atoi(strings.TrimSpace(raw[colon+1:]))
	if err != nil || last <= 1 {
		return refindex.Position{}, false
	}

	prefix := raw[:colon]
	for v := last - 1; v >= 1; v-- {
		if pos, ok := lookupChain(prefix+":"+strconv.Itoa(v), idx, aliases); ok {
			return pos, true
		}
	}
	return refindex.Position{}, false
}
