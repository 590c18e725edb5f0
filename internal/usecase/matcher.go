package usecase

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/shelfd/internal/entity"
)

// FuzzyThreshold is the minimum partial-ratio score (0-100) a fuzzy match
// needs to be accepted. Scores below it report no match.
const FuzzyThreshold = 80

// Candidate is one catalog entity offered to the matcher, exposing its
// localized strings.
type Candidate struct {
	ID    int64
	Value entity.LocalizedString
}

// Match describes an accepted match and the language/value that produced it.
type Match struct {
	ID       int64
	Score    int
	Language entity.Language
	Value    string
	Exact    bool
}

// Matcher resolves a free-text query against a set of localized candidates:
// an exact case- and whitespace-insensitive pass first, then a
// partial-substring similarity pass. Ties at the maximum fuzzy score resolve
// to the lowest candidate id so results are stable under candidate
// re-ordering.
type Matcher struct {
	logger logrus.FieldLogger
}

// NewMatcher builds a matcher that logs accepted fuzzy hits for audit.
func NewMatcher(logger logrus.FieldLogger) *Matcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Matcher{logger: logger}
}

// Match returns the best candidate for query, or false when nothing reaches
// the acceptance threshold. Blank queries never match.
func (m *Matcher) Match(query string, candidates []Candidate) (Match, bool) {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return Match{}, false
	}
	if hit, ok := m.matchExact(normalized, candidates); ok {
		return hit, true
	}
	return m.matchFuzzy(normalized, candidates)
}

// matchExact scans candidates in order, comparing the query against each
// candidate's fallback-resolved value and every raw per-language value.
// The first hit wins.
func (m *Matcher) matchExact(query string, candidates []Candidate) (Match, bool) {
	for _, c := range candidates {
		for _, lang := range entity.SupportedLanguages {
			resolved := c.Value.Resolve(lang)
			if resolved != "" && normalizeQuery(resolved) == query {
				return Match{ID: c.ID, Score: 100, Language: lang, Value: resolved, Exact: true}, true
			}
			raw := c.Value.Get(lang)
			if raw != "" && normalizeQuery(raw) == query {
				return Match{ID: c.ID, Score: 100, Language: lang, Value: raw, Exact: true}, true
			}
		}
	}
	return Match{}, false
}

// matchFuzzy scores every per-language value, takes each candidate's maximum
// and accepts the global maximum when it reaches the threshold.
func (m *Matcher) matchFuzzy(query string, candidates []Candidate) (Match, bool) {
	var best Match
	found := false
	for _, c := range candidates {
		score, lang, value := bestCandidateScore(query, c)
		if value == "" {
			continue
		}
		better := score > best.Score
		// Equal scores resolve to the lowest catalog id.
		if score == best.Score && found && c.ID < best.ID {
			better = true
		}
		if !found || better {
			best = Match{ID: c.ID, Score: score, Language: lang, Value: value}
			found = true
		}
	}
	if !found || best.Score < FuzzyThreshold {
		return Match{}, false
	}
	m.logger.WithFields(logrus.Fields{
		"candidate_id": best.ID,
		"score":        best.Score,
		"language":     best.Language.Code(),
		"value":        best.Value,
	}).Debug("accepted fuzzy match")
	return best, true
}

func bestCandidateScore(query string, c Candidate) (int, entity.Language, string) {
	bestScore := -1
	var bestLang entity.Language
	var bestValue string
	for _, lang := range entity.SupportedLanguages {
		raw := c.Value.Get(lang)
		if raw == "" {
			continue
		}
		score := fuzzy.PartialRatio(query, normalizeQuery(raw))
		if score > bestScore {
			bestScore = score
			bestLang = lang
			bestValue = raw
		}
	}
	if bestScore < 0 {
		return 0, entity.LanguageUnspecified, ""
	}
	return bestScore, bestLang, bestValue
}

func normalizeQuery(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
