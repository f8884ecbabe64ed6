package returns

import (
	"fmt"
	"regexp"
	"strings"
)

// Classification is the role a posting plays with respect to the measured
// portfolio.
type Classification int

const (
	// External postings are accounts outside the portfolio; their flows are
	// the counterpart of the measured cashflows.
	External Classification = iota
	// Interesting postings belong to the portfolio being measured.
	Interesting
	// Internal postings are transfers that must not count as external flows
	// (e.g. a dividend clearing account).
	Internal
)

func (c Classification) String() string {
	switch c {
	case Interesting:
		return "interesting"
	case Internal:
		return "internal"
	default:
		return "external"
	}
}

// classifier tags postings against the two compiled pattern sets of one
// calculate call. Classification per distinct account path is memoized for
// the lifetime of the classifier; patterns vary per call, so the engine
// builds a fresh classifier at each entry.
type classifier struct {
	interesting *regexp.Regexp
	internal    *regexp.Regexp
	memo        map[string]Classification
}

// compilePatterns builds an anchored full-match alternation of the given
// regular expressions. With no patterns the result matches only the empty
// string, which no account path is.
func compilePatterns(patterns []string) (*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return regexp.Compile(`^$`)
	}
	return regexp.Compile(`^(?:` + strings.Join(patterns, "|") + `)$`)
}

// newClassifier compiles both pattern sets. A malformed pattern is a caller
// configuration error, not a calculation outcome.
func newClassifier(interesting, internal []string) (*classifier, error) {
	ip, err := compilePatterns(interesting)
	if err != nil {
		return nil, fmt.Errorf("invalid account pattern: %w", err)
	}
	np, err := compilePatterns(internal)
	if err != nil {
		return nil, fmt.Errorf("invalid internal pattern: %w", err)
	}
	return &classifier{
		interesting: ip,
		internal:    np,
		memo:        make(map[string]Classification),
	}, nil
}

// classify tags an account path. Interesting takes precedence over internal
// when both patterns match.
func (c *classifier) classify(account string) Classification {
	if cl, ok := c.memo[account]; ok {
		return cl
	}
	var cl Classification
	switch {
	case c.interesting.MatchString(account):
		cl = Interesting
	case c.internal.MatchString(account):
		cl = Internal
	default:
		cl = External
	}
	c.memo[account] = cl
	return cl
}

// isInterestingTransaction reports whether any posting of the transaction
// belongs to the measured portfolio.
func (c *classifier) isInterestingTransaction(tx Transaction) bool {
	for _, p := range tx.Postings {
		if c.classify(p.Account) == Interesting {
			return true
		}
	}
	return false
}
