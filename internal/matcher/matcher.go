package matcher

import (
	"sort"

	"go.uber.org/zap"

	"github.com/landgrid/atlas-cli/internal/config"
	"github.com/landgrid/atlas-cli/internal/index"
	"github.com/landgrid/atlas-cli/internal/model"
)

// Matcher resolves raw recipient names against the canonical nation index.
// Read-only after New; safe for concurrent use.
type Matcher struct {
	cfg   config.MatcherConfig
	idx   *index.Index
	alias map[string][]string // normalized name/alias -> nation IDs (>1 = collision)
	names map[string][]string // nation ID -> normalized name + aliases for fuzzy scoring
}

// New builds a Matcher from the index. Every display name and curated alias
// is normalized once up front so the alias tier is O(1) per lookup.
func New(idx *index.Index, cfg config.MatcherConfig) *Matcher {
	m := &Matcher{
		cfg:   cfg,
		idx:   idx,
		alias: make(map[string][]string),
		names: make(map[string][]string),
	}

	for _, n := range idx.Nations() {
		variants := append([]string{n.Name}, n.Aliases...)
		for _, v := range variants {
			norm := Normalize(v)
			if norm == "" {
				continue
			}
			if !contains(m.alias[norm], n.ID) {
				m.alias[norm] = append(m.alias[norm], n.ID)
			}
			if !contains(m.names[n.ID], norm) {
				m.names[n.ID] = append(m.names[n.ID], norm)
			}
		}
	}

	return m
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Match resolves a raw name with no structural cross-check.
func (m *Matcher) Match(raw string) model.MatchResult {
	return m.MatchWithState(raw, "")
}

// MatchWithState resolves a raw name; when state is non-empty and the match
// came from the fuzzy tier, a contradiction between the record's state and
// the candidate nation's known states downgrades confidence and can revert
// the result to none. Precision over recall: an unattributed award is a data
// gap, a misattributed one is a credibility failure.
func (m *Matcher) MatchWithState(raw, state string) model.MatchResult {
	norm := Normalize(raw)
	if norm == "" {
		return model.MatchResult{Method: model.MatchNone}
	}

	// Tier 1: exact alias lookup.
	if ids, ok := m.alias[norm]; ok {
		if len(ids) == 1 {
			return model.MatchResult{
				NationID:   ids[0],
				Confidence: 1.0,
				Method:     model.MatchAlias,
			}
		}
		// Two nations share this curated alias; never pick one silently.
		return model.MatchResult{
			Method:     model.MatchAmbiguous,
			Candidates: m.candidates(ids, 100),
		}
	}

	// Tier 2: fuzzy scoring against every nation's name and aliases.
	return m.fuzzy(norm, state)
}

func (m *Matcher) fuzzy(norm, state string) model.MatchResult {
	type scored struct {
		id    string
		score float64
	}
	var results []scored

	// Iteration over the sorted index keeps the outcome independent of map
	// ordering.
	for _, n := range m.idx.Nations() {
		best := 0.0
		for _, variant := range m.names[n.ID] {
			if s := Similarity(norm, variant); s > best {
				best = s
			}
		}
		if best >= m.cfg.AcceptThreshold-m.cfg.TieMargin {
			results = append(results, scored{id: n.ID, score: best})
		}
	}

	if len(results) == 0 {
		return model.MatchResult{Method: model.MatchNone}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].id < results[j].id
	})

	top := results[0]
	if top.score < m.cfg.AcceptThreshold {
		return model.MatchResult{Method: model.MatchNone}
	}

	// Everything within the tie margin of the top score competes with it.
	var tied []string
	for _, r := range results {
		if r.score > top.score-m.cfg.TieMargin {
			tied = append(tied, r.id)
		}
	}
	if len(tied) > 1 {
		candidates := make([]model.Candidate, 0, len(tied))
		for _, r := range results {
			if r.score > top.score-m.cfg.TieMargin {
				candidates = append(candidates, m.candidate(r.id, r.score))
			}
		}
		return model.MatchResult{Method: model.MatchAmbiguous, Candidates: candidates}
	}

	confidence := top.score / 100

	// Secondary validation: a state contradiction costs confidence.
	if state != "" {
		if n, ok := m.idx.ByID(top.id); ok && len(n.States) > 0 && !contains(n.States, state) {
			confidence *= m.cfg.StatePenalty
			if confidence < m.cfg.AcceptThreshold/100 {
				zap.L().Debug("fuzzy match reverted on state mismatch",
					zap.String("nation_id", top.id),
					zap.String("state", state),
					zap.Float64("score", top.score),
				)
				return model.MatchResult{Method: model.MatchNone, Confidence: confidence}
			}
		}
	}

	return model.MatchResult{
		NationID:   top.id,
		Confidence: confidence,
		Method:     model.MatchFuzzy,
	}
}

func (m *Matcher) candidate(id string, score float64) model.Candidate {
	c := model.Candidate{NationID: id, Score: score}
	if n, ok := m.idx.ByID(id); ok {
		c.Name = n.Name
	}
	return c
}

func (m *Matcher) candidates(ids []string, score float64) []model.Candidate {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	out := make([]model.Candidate, 0, len(sorted))
	for _, id := range sorted {
		out = append(out, m.candidate(id, score))
	}
	return out
}
