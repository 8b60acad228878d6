package match

import "github.com/fight-club/matchsim/internal/spatial"

// ScorerLine is one entry in MatchSummary's top-scorers list.
type ScorerLine struct {
	PlayerID string
	Goals    int
}

// MatchSummary is a read-only aggregate derived on demand from current
// match state — never mutated by the simulation itself. Grounded on the
// teacher's GetState/leaderboard pattern (internal/game/spatial/skiplist.go
// used for kill-count rankings), retargeted from kill counts to goals
// scored.
type MatchSummary struct {
	HomeScore     int
	AwayScore     int
	PossessionPct float64 // home team's share, 0..100
	TopScorers    []ScorerLine
}

// Summarize builds a MatchSummary from the match's current state, ranking
// scorers through a skip list the way the teacher ranks its leaderboard —
// overkill for eleven-a-side squads, but it's the same general-purpose
// ranked-score structure the rest of the spatial package already provides,
// so summary construction reuses it rather than hand-rolling a sort.
func (m *Match) Summarize() MatchSummary {
	ranking := spatial.NewSkipList()
	for _, team := range m.Teams {
		for _, p := range team.Roster {
			if p.Goals > 0 {
				ranking.Insert(p.ID, float64(p.Goals))
			}
		}
	}

	total := m.homeTouches + m.awayTouches
	pct := 50.0
	if total > 0 {
		pct = 100 * float64(m.homeTouches) / float64(total)
	}

	entries := ranking.GetRange(1, ranking.Length())
	top := make([]ScorerLine, 0, len(entries))
	for _, e := range entries {
		top = append(top, ScorerLine{PlayerID: e.Key, Goals: int(e.Score)})
	}

	return MatchSummary{
		HomeScore:     m.State.HomeScore,
		AwayScore:     m.State.AwayScore,
		PossessionPct: pct,
		TopScorers:    top,
	}
}
