package match

import "github.com/fight-club/matchsim/internal/formation"

// Team is one side's immutable-for-the-match roster plus its mutable
// tactical state (formation, instructions, mentality). Score is tracked on
// MatchState rather than per Team, per the data model.
//
// Grounded on the teacher's Team struct (internal/game/team.go) — stripped
// of the invite/membership-expiry system (no meaning for a fixed matchday
// squad) and kept the flat roster-plus-identity shape.
type Team struct {
	ID        string
	Name      string
	Side      formation.Side
	Roster    []*Player // starting XI + substitutes, in squad-number order
	Formation formation.AABB
	FormationID string

	Instructions string
	Mentality    string
}

// Starters returns the first n roster entries that have not been
// substituted off — the active on-pitch XI.
func (t *Team) Starters(n int) []*Player {
	out := make([]*Player, 0, n)
	for _, p := range t.Roster {
		if p.OnPitch {
			out = append(out, p)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

// Find returns the roster player with the given ID, or nil.
func (t *Team) Find(playerID string) *Player {
	for _, p := range t.Roster {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}
