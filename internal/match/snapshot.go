package match

import (
	"sync/atomic"
	"time"
)

// PlayerSnapshot is an immutable copy of one player's renderable state.
// Value type, safe to hand across the snapshot boundary without locking.
//
// Grounded on the teacher's PlayerSnapshot (internal/game/game_snapshot.go).
type PlayerSnapshot struct {
	ID           string
	TeamID       string
	SquadNumber  int
	IsGoalkeeper bool
	OnPitch      bool
	X, Y         float64
	VX, VY       float64
	Touches      int
	Goals        int
}

// BallSnapshot mirrors the teacher's per-entity snapshot pattern, applied
// to the ball per §4.5.
type BallSnapshot struct {
	X, Y, Z    float64
	VX, VY, VZ float64
	OnGround   bool
	IsStopped  bool
	IsHeld     bool
	HeldBy     string
}

// MatchSnapshot is a complete immutable view of match state for the
// control plane's read-only endpoints (HTTP snapshot, WebSocket stream).
//
// Grounded on the teacher's GameSnapshot: a monotonic sequence number, a
// capped set of entity snapshots, and aggregate scoreboard fields.
type MatchSnapshot struct {
	Sequence    uint64
	Timestamp   time.Time
	TickNumber  int64
	PlayState   string
	HomeScore   int
	AwayScore   int
	Possession  string
	Ball        BallSnapshot
	HomePlayers []PlayerSnapshot
	AwayPlayers []PlayerSnapshot
}

// SnapshotPool triple-buffers MatchSnapshot values so the tick goroutine
// (producer) and the control plane's HTTP/WS handlers (consumers) never
// block on each other.
//
// Grounded on the teacher's SnapshotPool (internal/game/game_snapshot.go),
// generalized from a fixed-size battle-royale roster to two 11-a-side
// squads.
type SnapshotPool struct {
	buf      [3]MatchSnapshot
	writeIdx uint32
	readIdx  uint32
	sequence uint64
}

// NewSnapshotPool preallocates the triple buffer's player slices so
// publishing a snapshot never allocates on the hot path.
func NewSnapshotPool() *SnapshotPool {
	pool := &SnapshotPool{}
	for i := range pool.buf {
		pool.buf[i].HomePlayers = make([]PlayerSnapshot, 0, 11)
		pool.buf[i].AwayPlayers = make([]PlayerSnapshot, 0, 11)
	}
	return pool
}

// acquireWrite returns the next write slot with player slices reset but
// capacity retained.
func (p *SnapshotPool) acquireWrite() *MatchSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.buf[idx]
	snap.HomePlayers = snap.HomePlayers[:0]
	snap.AwayPlayers = snap.AwayPlayers[:0]
	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()
	return snap
}

func (p *SnapshotPool) publish() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead returns the latest published snapshot. Safe to call
// concurrently with Publish from any number of reader goroutines.
func (p *SnapshotPool) AcquireRead() *MatchSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.buf[idx]
}

func playerSnapshotOf(p *Player) PlayerSnapshot {
	s := PlayerSnapshot{
		ID:           p.ID,
		TeamID:       p.TeamID,
		SquadNumber:  p.SquadNumber,
		IsGoalkeeper: p.IsGoalkeeper,
		OnPitch:      p.OnPitch,
		Touches:      p.Touches,
		Goals:        p.Goals,
	}
	if p.Body != nil {
		s.X, s.Y = p.Body.Position[0], p.Body.Position[1]
		s.VX, s.VY = p.Body.Velocity[0], p.Body.Velocity[1]
	}
	return s
}

// PublishSnapshot renders current Match state into the next write slot
// and atomically publishes it. Called once per ball-physics tick from the
// owning goroutine; never called concurrently with itself.
func (m *Match) PublishSnapshot() {
	if m.snapshots == nil {
		return
	}
	snap := m.snapshots.acquireWrite()
	snap.TickNumber = m.CurrentTick()
	snap.PlayState = m.State.PlayState.String()
	snap.HomeScore = m.State.HomeScore
	snap.AwayScore = m.State.AwayScore
	snap.Possession = m.State.Possession

	bs := m.Ball.ToSnapshot()
	snap.Ball = BallSnapshot{
		X: bs.X, Y: bs.Y, Z: bs.Z,
		VX: bs.VX, VY: bs.VY, VZ: bs.VZ,
		OnGround:  bs.OnGround,
		IsStopped: bs.IsStopped,
		IsHeld:    bs.IsHeld,
		HeldBy:    bs.HeldBy,
	}

	for _, p := range m.Teams[0].Roster {
		if p.OnPitch {
			snap.HomePlayers = append(snap.HomePlayers, playerSnapshotOf(p))
		}
	}
	for _, p := range m.Teams[1].Roster {
		if p.OnPitch {
			snap.AwayPlayers = append(snap.AwayPlayers, playerSnapshotOf(p))
		}
	}
	m.snapshots.publish()
}

// GetSnapshot returns the latest published MatchSnapshot. Safe for
// concurrent use by any number of control-plane goroutines.
func (m *Match) GetSnapshot() *MatchSnapshot {
	return m.snapshots.AcquireRead()
}
