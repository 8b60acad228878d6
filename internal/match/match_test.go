package match

import (
	"fmt"
	"testing"

	"github.com/fight-club/matchsim/internal/config"
)

func buildRoster(prefix string, n int) []*Player {
	out := make([]*Player, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &Player{ID: fmt.Sprintf("%s-%d", prefix, i), SquadNumber: i + 1})
	}
	return out
}

func newTestMatch() *Match {
	cfg := config.AppConfig{
		Physics: config.DefaultPhysics(),
		Match:   config.DefaultMatch(),
		Server:  config.DefaultServer(),
		Limits:  config.DefaultLimits(),
		Spatial: config.DefaultSpatial(),
	}
	return New(42, cfg, buildRoster("home", 14), buildRoster("away", 14))
}

func TestNewAllocatesStartersAndSchedulesEvents(t *testing.T) {
	m := newTestMatch()

	for _, team := range m.Teams {
		starters := team.Starters(11)
		if len(starters) != 11 {
			t.Fatalf("team %s: expected 11 starters, got %d", team.ID, len(starters))
		}
		for _, p := range starters {
			if p.Body == nil {
				t.Fatalf("player %s has no Body after initialize", p.ID)
			}
		}
	}

	if m.State.Scheduler.Len() == 0 {
		t.Error("expected scheduler to hold recurring physics/vision/AI events after initialize")
	}
	if m.State.PlayState != KickoffSetup {
		t.Errorf("PlayState = %v, want KickoffSetup at kickoff", m.State.PlayState)
	}
}

func TestAdvanceOneProgressesTickAndTime(t *testing.T) {
	m := newTestMatch()

	for i := 0; i < 100; i++ {
		if err := m.AdvanceOne(); err != nil {
			t.Fatalf("AdvanceOne failed at tick %d: %v", i, err)
		}
	}

	if m.CurrentTick() != 100 {
		t.Errorf("CurrentTick = %d, want 100", m.CurrentTick())
	}
	if m.State.TimeElapsed != 100 {
		t.Errorf("TimeElapsed = %d, want 100", m.State.TimeElapsed)
	}
}

func TestKickoffSetupTransitionsToNormalPlay(t *testing.T) {
	m := newTestMatch()

	sawNormalPlay := false
	for i := 0; i < 5000; i++ {
		if err := m.AdvanceOne(); err != nil {
			t.Fatalf("AdvanceOne failed: %v", err)
		}
		if m.State.PlayState == NormalPlay {
			sawNormalPlay = true
			break
		}
	}
	if !sawNormalPlay {
		t.Error("expected play state to reach NORMAL_PLAY within 5s of kickoff")
	}
}

func TestScheduleExternalShoutAppliesAndLogs(t *testing.T) {
	m := newTestMatch()
	target := m.Teams[0].Roster[5]

	if err := m.ScheduleExternal(EventShout, Shout{PlayerID: target.ID, ShoutType: ShoutGetForward}, "controller-1"); err != nil {
		t.Fatalf("ScheduleExternal returned error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := m.AdvanceOne(); err != nil {
			t.Fatalf("AdvanceOne failed: %v", err)
		}
	}

	if target.Intention.Signal != "GET_FORWARD" {
		t.Errorf("Intention.Signal = %q, want GET_FORWARD", target.Intention.Signal)
	}

	total, _, _ := m.Log.Stats()
	if total == 0 {
		t.Error("expected the shout to be recorded in the event log")
	}
}

func TestScheduleExternalSubstitution(t *testing.T) {
	m := newTestMatch()
	out := m.Teams[0].Roster[10]
	in := m.Teams[0].Roster[12]

	sub := Substitution{PlayerOutID: out.ID, PlayerInID: in.ID}
	if err := m.ScheduleExternal(EventSubstitution, sub, "controller-1"); err != nil {
		t.Fatalf("ScheduleExternal returned error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := m.AdvanceOne(); err != nil {
			t.Fatalf("AdvanceOne failed: %v", err)
		}
	}

	if out.OnPitch {
		t.Error("expected substituted-off player to have OnPitch=false")
	}
	if !in.OnPitch {
		t.Error("expected substituted-on player to have OnPitch=true")
	}
	if in.Body == nil {
		t.Error("expected substituted-on player to have an allocated Body")
	}
}

// TestSubstitutionMidMatchKeepsIncomingPlayerScheduled guards against a
// regression where scheduling the incoming player's physics/vision/AI used
// absolute ticks instead of offsets: once CurrentTick > 0, that scheduling
// call failed, was silently discarded, and the incoming player never
// received another tick for the rest of the match.
func TestSubstitutionMidMatchKeepsIncomingPlayerScheduled(t *testing.T) {
	m := newTestMatch()

	for i := 0; i < 5000; i++ {
		if err := m.AdvanceOne(); err != nil {
			t.Fatalf("AdvanceOne failed: %v", err)
		}
	}

	out := m.Teams[0].Roster[10]
	in := m.Teams[0].Roster[12]
	sub := Substitution{PlayerOutID: out.ID, PlayerInID: in.ID}
	if err := m.ScheduleExternal(EventSubstitution, sub, "controller-1"); err != nil {
		t.Fatalf("ScheduleExternal returned error: %v", err)
	}

	for i := 0; i < 2000; i++ {
		if err := m.AdvanceOne(); err != nil {
			t.Fatalf("AdvanceOne failed: %v", err)
		}
	}

	if !in.OnPitch {
		t.Fatal("expected substituted-on player to have OnPitch=true")
	}
	for i := 0; i < 2000; i++ {
		if err := m.AdvanceOne(); err != nil {
			t.Fatalf("AdvanceOne failed: %v", err)
		}
	}
	if in.DistanceCovered == 0 {
		t.Error("substituted-on player appears frozen: no physics ticks landed after substitution")
	}
}

func TestGoalIncrementsScoreAndStartsCeremony(t *testing.T) {
	m := newTestMatch()
	m.State.PlayState = NormalPlay
	m.Ball.Reposition(m.Field.AwayGoalLineX+1, 0, 0.2)

	if err := m.AdvanceOne(); err != nil {
		t.Fatalf("AdvanceOne failed: %v", err)
	}

	deadline := m.CurrentTick() + 1000
	for m.CurrentTick() < deadline && m.State.PlayState != GoalCeremony && m.State.HomeScore == 0 {
		if err := m.AdvanceOne(); err != nil {
			t.Fatalf("AdvanceOne failed: %v", err)
		}
	}

	if m.State.HomeScore != 1 {
		t.Errorf("HomeScore = %d, want 1 after ball crosses the away goal line", m.State.HomeScore)
	}
}

func TestSummarizeReportsScoresAndPossession(t *testing.T) {
	m := newTestMatch()
	m.State.HomeScore = 2
	m.State.AwayScore = 1
	m.homeTouches = 30
	m.awayTouches = 10

	summary := m.Summarize()
	if summary.HomeScore != 2 || summary.AwayScore != 1 {
		t.Errorf("Summarize scores = %d-%d, want 2-1", summary.HomeScore, summary.AwayScore)
	}
	if summary.PossessionPct < 70 || summary.PossessionPct > 80 {
		t.Errorf("PossessionPct = %v, want ~75", summary.PossessionPct)
	}
}

func TestBuildReplayRecordCapturesSeedAndRosters(t *testing.T) {
	m := newTestMatch()
	record := m.BuildReplayRecord()

	if record.Seed != 42 {
		t.Errorf("Seed = %d, want 42", record.Seed)
	}
	if len(record.HomeRoster) != 14 || len(record.AwayRoster) != 14 {
		t.Errorf("roster lengths = %d/%d, want 14/14", len(record.HomeRoster), len(record.AwayRoster))
	}
}
