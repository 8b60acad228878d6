// Package match wires the ball, formation, body/steering, vision, and
// scheduler packages into the running simulation: player allocation,
// per-tick event dispatch, the kickoff/stoppage play-state machine, and
// the external command surface (substitutions, tactical changes, shouts).
//
// Grounded on the teacher's Engine (internal/game/engine.go) — the single
// type that owns the tick loop, the player map, the event log, and the
// team manager — generalized from an arena battle royale into a
// deterministic football match.
package match

import (
	"github.com/fight-club/matchsim/internal/ball"
	"github.com/fight-club/matchsim/internal/ballphysics"
	"github.com/fight-club/matchsim/internal/body"
	"github.com/fight-club/matchsim/internal/config"
	"github.com/fight-club/matchsim/internal/errs"
	"github.com/fight-club/matchsim/internal/field"
	"github.com/fight-club/matchsim/internal/formation"
	"github.com/fight-club/matchsim/internal/geom"
	"github.com/fight-club/matchsim/internal/rng"
	"github.com/fight-club/matchsim/internal/scheduler"
	"github.com/fight-club/matchsim/internal/spatial"
	"github.com/fight-club/matchsim/internal/vision"
)

const possessionRadius = 1.2 // meters; closer than this, with the ball at most 1 m up, counts as a touch

// MatchState is the mutable run state the scheduler and RNG live under —
// kept as its own struct per the data model so it can be captured/restored
// independently of the immutable Match setup (Field, Teams, rosters).
type MatchState struct {
	RNG         *rng.Source
	Scheduler   *scheduler.Scheduler
	TimeElapsed int64 // ticks (1 tick = 1ms)
	PlayState   PlayState
	HomeScore   int
	AwayScore   int
	Possession  string // team ID currently in possession, "" if loose
}

// Match is the aggregate root: field, two teams, the ball, mutable state,
// and the bounded event log. Field, Teams, and rosters are immutable for
// the match's lifetime per the data model; PlayState/score/possession
// live on State.
type Match struct {
	Field *field.Field
	Teams [2]*Team
	Ball  *ball.Ball
	State *MatchState
	Log   *EventLog

	snapshots *SnapshotPool

	ext        scheduler.ExternalHandle
	cfg        config.MatchConfig
	physicsCfg ballphysics.Config
	airDensity float64
	seed       int64

	neighborGrid     *spatial.Grid
	possessionSAP    *spatial.SweepAndPrune
	possessionNear   []string // player IDs broad-phase-near the ball this tick
	gridBuiltTick    int64
	gridBuilt        bool
	recoveryFlows    *spatial.FlowFieldManager

	homeTouches, awayTouches int

	halfNumber   int   // 1 or 2
	halfEndTick  int64 // current half's end tick, including rolled stoppage
	restartAt    int64 // tick a pending *_SETUP/_CEREMONY state resolves at
	kickoffTeam  int   // index into Teams of the team taking the next kickoff
}

// New constructs a Match from a seed, app config, and two ready-to-start
// rosters (11+ players each, first 11 are starters). Squads are assigned
// slot positions from a fixed 4-4-2 layout; goalkeepers (roster index 0)
// are placed 3-10 m in front of their own goal line at y=0 rather than in
// a formation slot.
func New(seed int64, cfg config.AppConfig, homeRoster, awayRoster []*Player) *Match {
	fld := field.New(cfg.Physics.Field)
	sched := scheduler.New()
	ext, _ := sched.TakeExternalHandle() // first and only call; safe to ignore error here

	homeTeam := &Team{ID: "home", Name: "Home", Side: formation.Left, Roster: homeRoster, Formation: formation.DefaultHome(fld.HomeGoalLineX), FormationID: "4-4-2"}
	awayTeam := &Team{ID: "away", Name: "Away", Side: formation.Right, Roster: awayRoster, Formation: formation.DefaultAway(fld.AwayGoalLineX), FormationID: "4-4-2"}
	for _, p := range homeRoster {
		p.TeamID = homeTeam.ID
	}
	for _, p := range awayRoster {
		p.TeamID = awayTeam.ID
	}

	b := ball.New(cfg.Physics.Ball)

	bounds := fld.Bounds()
	grid := spatial.NewGrid(bounds.MinX, bounds.MinY, bounds.Width(), bounds.Height(), cfg.Spatial.GridCellSize, 32)
	flows := spatial.NewFlowFieldManager(bounds.MinX, bounds.MinY, bounds.Width(), bounds.Height(), cfg.Spatial.FlowFieldCellSize)

	m := &Match{
		Field: fld,
		Teams: [2]*Team{homeTeam, awayTeam},
		Ball:  b,
		State: &MatchState{
			RNG:       rng.New(seed),
			Scheduler: sched,
			PlayState: KickoffSetup,
		},
		Log:           NewEventLog(cfg.Limits.MaxReplayEvents),
		snapshots:     NewSnapshotPool(),
		ext:           ext,
		cfg:           cfg.Match,
		physicsCfg:    cfg.Physics.Ball,
		airDensity:    ballphysics.AirDensity(288.15), // 15C
		seed:          seed,
		neighborGrid:  grid,
		possessionSAP: spatial.NewSweepAndPrune(len(homeRoster) + len(awayRoster) + 1),
		recoveryFlows: flows,
		halfNumber:    1,
		kickoffTeam:   0,
	}
	m.halfEndTick = m.cfg.HalfDuration.Milliseconds() + m.rollStoppage()
	m.initialize()
	return m
}

func (m *Match) rollStoppage() int64 {
	lo := m.cfg.StoppageMin.Milliseconds()
	hi := m.cfg.StoppageMax.Milliseconds()
	if hi <= lo {
		return lo
	}
	return lo + int64(m.State.RNG.IntRange(0, int(hi-lo)))
}

// defaultSlots is a fixed 4-4-2 layout in normalized [-1,1]^2 slot
// coordinates: index 0 is the goalkeeper (handled specially, not via
// SlotToWorld), 1-4 defenders, 5-8 midfielders, 9-10 forwards.
var defaultSlots = [11][2]float64{
	{0, -0.95},
	{-0.7, -0.55}, {-0.25, -0.6}, {0.25, -0.6}, {0.7, -0.55},
	{-0.7, -0.05}, {-0.25, -0.1}, {0.25, -0.1}, {0.7, -0.05},
	{-0.3, 0.55}, {0.3, 0.55},
}

// initialize allocates PlayerBody state for each starter and schedules
// the recurring physics/vision/AI events per §4.8.
func (m *Match) initialize() {
	for teamIdx, team := range m.Teams {
		n := 11
		if len(team.Roster) < n {
			n = len(team.Roster)
		}
		starters := team.Roster[:n]
		for i, p := range starters {
			p.OnPitch = true
			p.IsGoalkeeper = (i == 0)
			sx, sy := defaultSlots[i][0], defaultSlots[i][1]
			if team.Side == formation.Right {
				sx, sy = -sx, -sy // mirror for the team attacking the other way
			}
			p.SlotX, p.SlotY = sx, sy

			var pos geom.Vec2
			if p.IsGoalkeeper {
				depth := m.State.RNG.FloatRange(3, 10)
				goalX := m.Field.HomeGoalLineX
				if team.Side == formation.Right {
					goalX = m.Field.AwayGoalLineX
					depth = -depth
				}
				pos = geom.Vec2{goalX + depth, 0}
			} else {
				pos = team.Formation.SlotToWorld(sx, sy)
			}

			p.Body = body.New(pos)
			if team.Side == formation.Right {
				p.Body.SetBodyAngle(geom.AngleOf(geom.Vec2{-1, 0}))
			} else {
				p.Body.SetBodyAngle(geom.AngleOf(geom.Vec2{1, 0}))
			}
			p.Intention = body.Intention{Type: body.IntentionIdle}

			m.mustSchedule(m.schedulePlayerPhysics(p), "initial schedule player physics")
			m.mustSchedule(m.scheduleVision(p), "initial schedule vision")
			m.mustSchedule(m.scheduleAI(p, teamIdx), "initial schedule AI")
		}
	}
	m.mustSchedule(m.scheduleBallPhysics(), "initial schedule ball physics")
	m.resetForKickoff(m.kickoffTeam)
}

func (m *Match) physicsIntervalTicks() int64 {
	hz := m.cfg.PlayerPhysicsHz
	if hz <= 0 {
		hz = 60
	}
	return int64(1000 / hz)
}

func (m *Match) ballIntervalTicks() int64 {
	hz := m.cfg.BallPhysicsHz
	if hz <= 0 {
		hz = 60
	}
	return int64(1000 / hz)
}

// mustSchedule logs and swallows a scheduling failure rather than
// panicking — every offset passed at call sites below is >= 0 by
// construction, so this only fires if that invariant is ever violated,
// and a frozen player is preferable to crashing the match.
func (m *Match) mustSchedule(err error, context string) {
	if err == nil {
		return
	}
	m.Log.Append(RecordedEvent{Type: EventDebug, Tick: m.State.Scheduler.CurrentTick(), Payload: context + ": " + err.Error()}, "")
}

func (m *Match) schedulePlayerPhysics(p *Player) error {
	interval := m.physicsIntervalTicks()
	h, err := m.State.Scheduler.Schedule(0, func(s *scheduler.Scheduler, tick int64, payload any) {
		m.playerPhysicsTick(p, tick)
		m.mustSchedule(s.Reschedule(p.physicsHandle, interval), "reschedule player physics")
	}, nil)
	if err != nil {
		return err
	}
	p.physicsHandle = h
	return nil
}

func (m *Match) scheduleVision(p *Player) error {
	attacking := m.State.Possession == p.TeamID
	interval := vision.ScanFrequency(p.VisionAttrs, attacking).Milliseconds()
	if interval <= 0 {
		interval = 1
	}
	h, err := m.State.Scheduler.Schedule(0, func(s *scheduler.Scheduler, tick int64, payload any) {
		m.visionTick(p, tick)
		attacking := m.State.Possession == p.TeamID
		next := vision.ScanFrequency(p.VisionAttrs, attacking).Milliseconds()
		if next <= 0 {
			next = 1
		}
		m.mustSchedule(s.Reschedule(p.visionHandle, next), "reschedule vision")
	}, nil)
	if err != nil {
		return err
	}
	p.visionHandle = h
	return nil
}

func (m *Match) scheduleAI(p *Player, teamIdx int) error {
	stagger := int64(m.State.RNG.IntRange(0, 99))
	base := m.cfg.AIBaseInterval.Milliseconds()
	half := m.cfg.AIJitter.Milliseconds() / 2
	h, err := m.State.Scheduler.Schedule(stagger, func(s *scheduler.Scheduler, tick int64, payload any) {
		m.aiTick(p, teamIdx, tick)
		jitter := int64(m.State.RNG.IntRange(int(-half), int(half)))
		next := base + jitter
		if next <= 0 {
			next = 1
		}
		m.mustSchedule(s.Reschedule(p.aiHandle, next), "reschedule AI")
	}, nil)
	if err != nil {
		return err
	}
	p.aiHandle = h
	return nil
}

func (m *Match) scheduleBallPhysics() error {
	interval := m.ballIntervalTicks()
	sched := m.State.Scheduler
	var handle scheduler.Handle
	h, err := sched.Schedule(0, func(s *scheduler.Scheduler, tick int64, payload any) {
		m.ballPhysicsTick(tick)
		m.mustSchedule(s.Reschedule(handle, interval), "reschedule ball physics")
	}, nil)
	if err != nil {
		return err
	}
	handle = h
	return nil
}

// AdvanceOne advances the match by exactly one tick (1 ms), satisfying
// driver.Advancer so either RealTime or Headless can drive it.
func (m *Match) AdvanceOne() error {
	target := m.State.Scheduler.CurrentTick() + 1
	if err := m.State.Scheduler.Advance(target); err != nil {
		return err
	}
	m.State.TimeElapsed = target
	m.checkHalfBoundary()
	return nil
}

// CurrentTick satisfies driver.Advancer.
func (m *Match) CurrentTick() int64 { return m.State.Scheduler.CurrentTick() }

// RunUntilDrained satisfies driver.BulkAdvancer: it runs every event the
// match ever schedules (physics/vision/AI self-rescheduling plus
// restarts/ceremonies) up to maxTick as fast as possible, with no
// wall-clock pacing. onTick, forwarded to the underlying scheduler, is
// where TimeElapsed/checkHalfBoundary bookkeeping happens per reached
// tick instead of per individual millisecond.
func (m *Match) RunUntilDrained(maxTick int64, onTick func(tick int64)) error {
	return m.State.Scheduler.RunUntilDrained(maxTick, func(tick int64) {
		m.State.TimeElapsed = tick
		m.checkHalfBoundary()
		if onTick != nil {
			onTick(tick)
		}
	})
}

// MaxPossibleTick returns a deterministic upper bound on how long a match
// can run: two halves at their configured duration plus the maximum
// stoppage roll each, a fixed half-time break, and a goal-ceremony/kickoff
// margin after full time — enough for checkHalfBoundary to always reach
// FullTime before RunUntilDrained's sentinel cuts it off.
func (m *Match) MaxPossibleTick() int64 {
	half := m.cfg.HalfDuration.Milliseconds() + m.cfg.StoppageMax.Milliseconds()
	const halfTimeBreak = 15_000
	const ceremonyMargin = 10_000
	return 2*half + halfTimeBreak + ceremonyMargin
}

func (m *Match) checkHalfBoundary() {
	if m.State.PlayState == HalfTime && m.restartAt != 0 && m.State.TimeElapsed >= m.restartAt {
		m.resetForKickoff(m.kickoffTeam)
	}
	if m.State.TimeElapsed < m.halfEndTick {
		return
	}
	switch m.halfNumber {
	case 1:
		m.State.PlayState = HalfTime
		m.halfNumber = 2
		m.kickoffTeam = 1 - m.kickoffTeam
		m.halfEndTick = 2 * m.cfg.HalfDuration.Milliseconds() + m.rollStoppage()
		m.restartAt = m.State.TimeElapsed + 15_000 // 15s in-sim break before second half kicks off
	case 2:
		if m.State.PlayState != FullTime {
			m.State.PlayState = FullTime
		}
		return
	}
}

// ScheduleExternal is the sole legal cross-goroutine entry point (§5):
// the control plane validates a command, then forwards it here. kind
// selects the RecordedEvent type payload carries.
func (m *Match) ScheduleExternal(kind EventType, payload any, sourceID string) error {
	switch kind {
	case EventSubstitution, EventTacticalChange, EventShout:
	default:
		return errs.New(errs.KindConstraint, "unsupported external event kind")
	}

	tick, err := m.ext.ScheduleExternal(0, func(s *scheduler.Scheduler, fireTick int64, p any) {
		m.applyExternal(kind, p, fireTick)
	}, payload)
	if err != nil {
		return err
	}
	m.Log.Append(RecordedEvent{Type: kind, Tick: tick, Payload: payload}, sourceID)
	return nil
}

func (m *Match) applyExternal(kind EventType, payload any, tick int64) {
	switch kind {
	case EventSubstitution:
		sub, ok := payload.(Substitution)
		if !ok {
			return
		}
		m.applySubstitution(sub)
	case EventTacticalChange:
		tc, ok := payload.(TacticalChange)
		if !ok {
			return
		}
		m.applyTacticalChange(tc)
	case EventShout:
		sh, ok := payload.(Shout)
		if !ok {
			return
		}
		m.applyShout(sh)
	}
}

// applySubstitution swaps in for out. The three scheduling calls for the
// incoming player must all succeed before the swap is committed: if any
// fails, whatever already succeeded is canceled and the substitution is
// abandoned rather than leaving a half-substituted player with no
// physics/vision/AI events ever scheduled for it again.
func (m *Match) applySubstitution(sub Substitution) {
	for _, team := range m.Teams {
		out := team.Find(sub.PlayerOutID)
		in := team.Find(sub.PlayerInID)
		if out == nil || in == nil || !out.OnPitch || in.OnPitch {
			continue
		}

		teamIdx := 0
		if team.ID == m.Teams[1].ID {
			teamIdx = 1
		}

		in.SlotX, in.SlotY = out.SlotX, out.SlotY
		in.IsGoalkeeper = out.IsGoalkeeper
		in.Body = body.New(out.Body.Position)
		in.Intention = body.Intention{Type: body.IntentionIdle}

		if err := m.schedulePlayerPhysics(in); err != nil {
			m.mustSchedule(err, "substitution: schedule player physics")
			return
		}
		if err := m.scheduleVision(in); err != nil {
			m.mustSchedule(err, "substitution: schedule vision")
			m.State.Scheduler.Cancel(in.physicsHandle)
			return
		}
		if err := m.scheduleAI(in, teamIdx); err != nil {
			m.mustSchedule(err, "substitution: schedule AI")
			m.State.Scheduler.Cancel(in.physicsHandle)
			m.State.Scheduler.Cancel(in.visionHandle)
			return
		}

		in.OnPitch = true
		out.OnPitch = false
		m.State.Scheduler.Cancel(out.physicsHandle)
		m.State.Scheduler.Cancel(out.visionHandle)
		m.State.Scheduler.Cancel(out.aiHandle)
		return
	}
}

func (m *Match) applyTacticalChange(tc TacticalChange) {
	for _, team := range m.Teams {
		if team.ID != tc.TeamID {
			continue
		}
		if tc.FormationID != "" {
			team.FormationID = tc.FormationID
		}
		if tc.Instructions != "" {
			team.Instructions = tc.Instructions
		}
		if tc.Mentality != "" {
			team.Mentality = tc.Mentality
		}
	}
}

func (m *Match) applyShout(sh Shout) {
	for _, team := range m.Teams {
		p := team.Find(sh.PlayerID)
		if p == nil {
			continue
		}
		p.Intention.Signal = sh.ShoutType.String()
	}
}
