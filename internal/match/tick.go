package match

import (
	"github.com/fight-club/matchsim/internal/body"
	"github.com/fight-club/matchsim/internal/field"
	"github.com/fight-club/matchsim/internal/formation"
	"github.com/fight-club/matchsim/internal/geom"
	"github.com/fight-club/matchsim/internal/vision"
)

func (m *Match) physicsDT() float64 {
	hz := m.cfg.PlayerPhysicsHz
	if hz <= 0 {
		hz = 60
	}
	return 1.0 / float64(hz)
}

func (m *Match) ballDT() float64 {
	hz := m.cfg.BallPhysicsHz
	if hz <= 0 {
		hz = 60
	}
	return 1.0 / float64(hz)
}

// allOnPitch returns every currently-on-pitch player across both teams.
func (m *Match) allOnPitch() []*Player {
	out := make([]*Player, 0, 22)
	for _, team := range m.Teams {
		for _, p := range team.Roster {
			if p.OnPitch {
				out = append(out, p)
			}
		}
	}
	return out
}

// rebuildGrid rebuilds the shared neighbor-query grid once per physics
// tick (cheap at squad scale) rather than per player, so every player's
// physics dispatch this tick sees a consistent snapshot of everyone
// else's position — grounded on the teacher's per-frame SpatialGrid
// rebuild in internal/game/spatial/grid.go.
//
// It also rebuilds the ball-possession broad phase: a sweep-and-prune pass
// over the same on-pitch snapshot plus the ball, narrowing maybeTakePossession
// down to the handful of players whose bounding interval actually overlaps
// the ball's before it pays for the exact distance check.
func (m *Match) rebuildGrid(tick int64, onPitch []*Player) {
	if m.gridBuilt && m.gridBuiltTick == tick {
		return
	}
	m.neighborGrid.Clear()
	positions := make([][2]float32, 0, len(onPitch)+1)
	for i, p := range onPitch {
		m.neighborGrid.Insert(uint32(i), p.Body.Position[0], p.Body.Position[1])
		positions = append(positions, [2]float32{float32(p.Body.Position[0]), float32(p.Body.Position[1])})
	}
	ballIdx := uint32(len(onPitch))
	positions = append(positions, [2]float32{float32(m.Ball.Position2D[0]), float32(m.Ball.Position2D[1])})

	m.possessionNear = m.possessionNear[:0]
	for _, pair := range m.possessionSAP.UpdateFromSlice(positions, float32(possessionRadius)) {
		var playerIdx uint32
		switch {
		case pair.A == ballIdx:
			playerIdx = pair.B
		case pair.B == ballIdx:
			playerIdx = pair.A
		default:
			continue
		}
		if int(playerIdx) < len(onPitch) {
			m.possessionNear = append(m.possessionNear, onPitch[playerIdx].ID)
		}
	}

	m.gridBuiltTick = tick
	m.gridBuilt = true
}

// nearBall reports whether p was a broad-phase possession candidate in the
// most recently rebuilt grid.
func (m *Match) nearBall(p *Player) bool {
	for _, id := range m.possessionNear {
		if id == p.ID {
			return true
		}
	}
	return false
}

func (m *Match) neighborsOf(p *Player, tick int64) []geom.Vec2 {
	onPitch := m.allOnPitch()
	m.rebuildGrid(tick, onPitch)
	ids := m.neighborGrid.QueryRadius(p.Body.Position[0], p.Body.Position[1], body.AvoidanceRadius)
	out := make([]geom.Vec2, 0, len(ids))
	for _, id := range ids {
		if int(id) >= len(onPitch) {
			continue
		}
		other := onPitch[id]
		if other.ID == p.ID {
			continue
		}
		out = append(out, other.Body.Position)
	}
	return out
}

// steeringFor resolves a player's current Intention into a SteeringOutput,
// per §4.8: "handlers mutate the player's Intention only; they never
// touch velocity directly" — this is the one place that translates
// intention into motion.
func (m *Match) steeringFor(p *Player) body.SteeringOutput {
	maxSpeed := body.SpeedForHint(p.Intention.SpeedHint)
	if maxSpeed <= 0 {
		maxSpeed = body.DefaultMaxSpeed
	}

	switch p.Intention.Type {
	case body.IntentionMoveTo, body.IntentionReceivePass, body.IntentionDribble, body.IntentionMarkPlayer, body.IntentionSetPieceTake:
		if p.Intention.TargetPosition != nil {
			return body.Arrive(p.Body, *p.Intention.TargetPosition, p.Intention.FaceTarget, maxSpeed, p.Intention.MovementMode)
		}
	case body.IntentionMoveWithVelocity:
		if p.Intention.TargetVelocity != nil {
			target := p.Body.Position.Add(*p.Intention.TargetVelocity)
			return body.Seek(p.Body, target, maxSpeed)
		}
	case body.IntentionEngagePlayer, body.IntentionTackle:
		if p.Intention.TargetPosition != nil {
			return body.Seek(p.Body, *p.Intention.TargetPosition, maxSpeed)
		}
	case body.IntentionKeeperSet, body.IntentionKeeperDive, body.IntentionSetPieceHold:
		if p.Intention.LookAtTarget != nil {
			return body.Face(p.Body, *p.Intention.LookAtTarget)
		}
	}
	return body.SteeringOutput{MaxSpeed: maxSpeed}
}

func (m *Match) playerPhysicsTick(p *Player, tick int64) {
	dt := m.physicsDT()

	out := m.steeringFor(p)
	neighbors := m.neighborsOf(p, tick)
	if len(neighbors) > 0 {
		out = body.ApplyCollisionAvoidance(out, p.Body.Position, neighbors)
	}

	before := p.Body.Position
	body.Integrate(p.Body, out, dt)
	p.DistanceCovered += p.Body.Position.Sub(before).Len()

	var destination *geom.Vec2
	if p.Intention.TargetPosition != nil {
		destination = p.Intention.TargetPosition
	} else if p.Intention.LookAtTarget != nil {
		destination = p.Intention.LookAtTarget
	}
	p.Body.UpdateHead(dt, tick, m.State.RNG, destination)

	m.maybeTakePossession(p)
}

func (m *Match) maybeTakePossession(p *Player) {
	if m.Ball.IsHeld {
		return
	}
	if !m.nearBall(p) {
		return
	}
	ballXY := m.Ball.Position2D
	if ballXY.Sub(p.Body.Position).Len() > possessionRadius {
		return
	}
	if m.Ball.Position()[1] > 1.0 {
		return // ball is airborne, out of reach
	}
	p.Touches++
	if p.TeamID == m.Teams[0].ID {
		m.homeTouches++
	} else {
		m.awayTouches++
	}
	m.State.Possession = p.TeamID
}

func (m *Match) visionTick(p *Player, tick int64) {
	onPitch := m.allOnPitch()
	others := make([]vision.PerceivedPlayer, 0, len(onPitch))
	for _, other := range onPitch {
		if other.ID == p.ID {
			continue
		}
		others = append(others, vision.PerceivedPlayer{
			PlayerID: other.ID,
			TeamID:   other.TeamID,
			Position: other.Body.Position,
			Velocity: other.Body.Velocity,
		})
	}

	pb := vision.PerceivedBall{
		Position: m.Ball.Position2D,
		Velocity: geom.To2D(m.Ball.Velocity()),
		IsHeld:   m.Ball.IsHeld,
		HeldBy:   m.Ball.HeldBy,
	}
	p.Perceived = vision.Scan(pb, others, tick, m.State.RNG)
}

func (m *Match) ballPhysicsTick(tick int64) {
	m.Ball.Update(m.ballDT(), m.airDensity)
	m.checkRestarts(tick)
	m.PublishSnapshot()
}

// checkRestarts implements §4.8.1: goal detection increments score and
// starts the goal-ceremony/kickoff-setup sequence; out-of-bounds
// classification moves to the matching *_SETUP state for throw-ins, goal
// kicks, and corners, which resolves straight to NORMAL_PLAY once its
// window ends (the *_KICK states are never entered). Offside and fouls are
// out of scope.
func (m *Match) checkRestarts(tick int64) {
	if m.State.PlayState == GoalCeremony && tick >= m.restartAt {
		m.resetForKickoff(m.kickoffTeam)
		return
	}
	if m.State.PlayState.isDead() {
		return
	}

	pos := m.Ball.Position2D
	height := m.Ball.Position()[1]

	if m.Field.BallCrossedGoal(pos, height, m.Field.HomeGoal) {
		m.onGoal(1, tick) // ball in home's own goal -> away scores
		return
	}
	if m.Field.BallCrossedGoal(pos, height, m.Field.AwayGoal) {
		m.onGoal(0, tick)
		return
	}

	if !m.Ball.IsHeld && m.State.PlayState == NormalPlay {
		switch m.Field.Classify(pos) {
		case field.OutLeftTouch, field.OutRightTouch:
			m.State.PlayState = ThrowInSetup
			m.restartAt = tick + 3000
		case field.OutHomeGoalLine:
			if m.State.Possession == m.Teams[1].ID {
				m.State.PlayState = CornerSetup
			} else {
				m.State.PlayState = GoalKickSetup
			}
			m.restartAt = tick + 5000
		case field.OutAwayGoalLine:
			if m.State.Possession == m.Teams[0].ID {
				m.State.PlayState = CornerSetup
			} else {
				m.State.PlayState = GoalKickSetup
			}
			m.restartAt = tick + 5000
		}
	}

	if m.State.PlayState.isSetup() && tick >= m.restartAt {
		m.State.PlayState = NormalPlay
		m.restartAt = 0
	}
}

// attributeGoal credits the scoring team's outfielder nearest the ball at
// the moment it crossed the line — a coarse stand-in for real shot
// tracking, sufficient to give MatchSummary's top-scorers something to
// rank.
func (m *Match) attributeGoal(scoringTeam int) {
	ballPos := m.Ball.Position2D
	team := m.Teams[scoringTeam]
	var scorer *Player
	best := 0.0
	for _, p := range team.Starters(11) {
		if p.IsGoalkeeper {
			continue
		}
		d := p.Body.Position.Sub(ballPos).Len()
		if scorer == nil || d < best {
			scorer, best = p, d
		}
	}
	if scorer != nil {
		scorer.Goals++
	}
}

func (m *Match) onGoal(scoringTeam int, tick int64) {
	m.attributeGoal(scoringTeam)
	if scoringTeam == 0 {
		m.State.HomeScore++
	} else {
		m.State.AwayScore++
	}
	m.Log.Append(RecordedEvent{Type: EventReferee, Tick: tick, Payload: "goal"}, "")
	m.State.PlayState = GoalCeremony
	m.kickoffTeam = 1 - scoringTeam
	m.restartAt = tick + 3000
}

// resetForKickoff repositions every player to their formation slot (or
// kickoff-specific spot) and places the ball on the center spot, for the
// team in kickoffTeamIdx to restart play.
func (m *Match) resetForKickoff(kickoffTeamIdx int) {
	m.Ball.Reposition(0, 0)
	for i, team := range m.Teams {
		for pi, p := range team.Starters(11) {
			sx, sy := defaultSlots[pi][0], defaultSlots[pi][1]
			if team.Side == formation.Right {
				sx, sy = -sx, -sy
			}
			var pos geom.Vec2
			if p.IsGoalkeeper {
				pos = p.Body.Position
			} else {
				pos = team.Formation.SlotToWorld(sx, sy)
			}
			if i != kickoffTeamIdx {
				pos = m.Field.ClampOutsideCenterCircle(pos)
			}
			p.Body.Position = pos
			p.Body.Velocity = geom.Vec2{}
			p.Intention = body.Intention{Type: body.IntentionIdle}
		}
	}
	m.State.PlayState = KickoffSetup
	m.restartAt = m.State.TimeElapsed + 2000
}
