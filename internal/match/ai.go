package match

import (
	"github.com/fight-club/matchsim/internal/body"
	"github.com/fight-club/matchsim/internal/formation"
	"github.com/fight-club/matchsim/internal/geom"
)

// aiTick dispatches a player's AI re-decision, gated on the current
// play_state per §4.8: outfielder vs goalkeeper, setup vs play. Handlers
// only ever write to p.Intention — physics/steering reads it back out on
// the next physics tick.
func (m *Match) aiTick(p *Player, teamIdx int, tick int64) {
	if !p.OnPitch {
		return
	}
	if m.State.PlayState.isDead() {
		p.Intention = body.Intention{Type: body.IntentionIdle}
		return
	}

	if p.IsGoalkeeper {
		m.goalkeeperAI(p, teamIdx)
	} else if m.State.PlayState.isSetup() {
		m.setupAI(p, teamIdx)
	} else {
		m.outfielderAI(p, teamIdx)
	}

	m.maybeTriggerLookAtDestination(p, tick)
}

// maybeTriggerLookAtDestination rolls the 5%-per-AI-tick chance of breaking
// into LOOK_AT_DESTINATION while moving toward the intention's target —
// evaluated here, once per AI tick, rather than in the physics tick's
// UpdateHead call.
func (m *Match) maybeTriggerLookAtDestination(p *Player, tick int64) {
	var destination *geom.Vec2
	if p.Intention.TargetPosition != nil {
		destination = p.Intention.TargetPosition
	} else if p.Intention.LookAtTarget != nil {
		destination = p.Intention.LookAtTarget
	}
	if destination == nil {
		return
	}
	moving := p.Body.Velocity.Len() > 0.1
	p.Body.TriggerLookAtDestination(m.State.RNG, tick, *destination, moving)
}

// homePosition returns a player's formation-anchored base position,
// mirrored for the away side.
func (m *Match) homePosition(p *Player, teamIdx int) geom.Vec2 {
	team := m.Teams[teamIdx]
	return team.Formation.SlotToWorld(p.SlotX, p.SlotY)
}

// setupAI sends every outfielder back toward their formation slot (and,
// for the non-kicking side at a kickoff, outside the center circle) to
// satisfy a restart — no possession contest during *_SETUP states.
func (m *Match) setupAI(p *Player, teamIdx int) {
	target := m.homePosition(p, teamIdx)
	if m.State.PlayState == KickoffSetup && teamIdx != m.kickoffTeam {
		target = m.Field.ClampOutsideCenterCircle(target)
	}
	ball := m.Ball.Position2D
	p.Intention = body.Intention{
		Type:           body.IntentionMoveTo,
		TargetPosition: &target,
		FaceTarget:     &ball,
		SpeedHint:      body.SpeedJog,
	}
}

// outfielderAI is a minimal possession-aware heuristic: the nearest
// teammate to a loose ball chases it; everyone else holds their formation
// shape, nudged toward a recovery vector (via the flow field) when the
// other team has the ball.
func (m *Match) outfielderAI(p *Player, teamIdx int) {
	team := m.Teams[teamIdx]
	ballPos := m.Ball.Position2D

	if m.isNearestToLooseBall(p, team) {
		p.Intention = body.Intention{
			Type:           body.IntentionDribble,
			TargetPosition: &ballPos,
			SpeedHint:      body.SpeedSprint,
		}
		return
	}

	base := m.homePosition(p, teamIdx)
	if m.State.Possession != "" && m.State.Possession != team.ID {
		base = m.recoveryNudge(teamIdx, base)
	}
	p.Intention = body.Intention{
		Type:           body.IntentionMoveTo,
		TargetPosition: &base,
		FaceTarget:     &ballPos,
		SpeedHint:      body.SpeedWalk,
	}
}

// goalkeeperAI keeps the keeper on their line, shading toward the ball's
// lateral position, and reacting (a simple KeeperSet) when the ball is
// in their own penalty area.
func (m *Match) goalkeeperAI(p *Player, teamIdx int) {
	team := m.Teams[teamIdx]
	ballPos := m.Ball.Position2D

	lineX := m.Field.HomeGoalLineX + 4
	penalty := m.Field.HomePenaltyArea
	if team.Side == formation.Right {
		lineX = m.Field.AwayGoalLineX - 4
		penalty = m.Field.AwayPenaltyArea
	}
	shade := geom.ClampFloat(ballPos[1], -m.Field.GoalWidth, m.Field.GoalWidth)
	target := geom.Vec2{lineX, shade}

	if penalty.Contains(ballPos) {
		p.Intention = body.Intention{
			Type:         body.IntentionKeeperSet,
			LookAtTarget: &ballPos,
		}
		return
	}

	p.Intention = body.Intention{
		Type:           body.IntentionMoveTo,
		TargetPosition: &target,
		FaceTarget:     &ballPos,
		SpeedHint:      body.SpeedJog,
	}
}

func (m *Match) isNearestToLooseBall(p *Player, team *Team) bool {
	if m.Ball.IsHeld {
		return false
	}
	ballPos := m.Ball.Position2D
	best := p
	bestDist := p.Body.Position.Sub(ballPos).Len()
	for _, other := range team.Starters(11) {
		if other.ID == p.ID || other.IsGoalkeeper {
			continue
		}
		d := other.Body.Position.Sub(ballPos).Len()
		if d < bestDist {
			best, bestDist = other, d
		}
	}
	return best.ID == p.ID
}

// recoveryNudge blends a player's formation base position toward the
// defensive-recovery flow field generated for their team, so an
// out-of-possession shape drifts back toward its own goal rather than
// staying static. Grounded on internal/spatial/flowfield.go.
func (m *Match) recoveryNudge(teamIdx int, base geom.Vec2) geom.Vec2 {
	team := m.Teams[teamIdx]
	goalX := m.Field.HomeGoalLineX
	if team.Side == formation.Right {
		goalX = m.Field.AwayGoalLineX
	}
	ff := m.recoveryFlows.GetOrCreate("recover:"+team.ID, goalX, 0)
	vx, vy := ff.Lookup(base[0], base[1])
	if vx == 0 && vy == 0 {
		return base
	}
	return geom.Vec2{base[0] + float64(vx)*3, base[1] + float64(vy)*3}
}
