package match

// ReplayRecord is the persisted form of a match: everything required to
// reproduce its output bit-for-bit is the seed, the immutable setup
// (field dimensions, rosters, formations, starting tactics), and the
// ordered sequence of external events applied during the run. Grounded on
// the teacher's replay-by-seed convention in engine.go (rngSeed captured
// at construction) generalized to also capture the external-event stream,
// since the teacher has no equivalent of mid-match external commands.
type ReplayRecord struct {
	Seed int64

	FieldLengthM float64
	FieldWidthM  float64

	HomeRoster []string
	AwayRoster []string

	HomeFormationID string
	AwayFormationID string

	ExternalEvents []RecordedEvent
}

// BuildReplayRecord captures a ReplayRecord snapshot from the match's
// current setup and its bounded event log.
func (m *Match) BuildReplayRecord() ReplayRecord {
	home := make([]string, 0, len(m.Teams[0].Roster))
	for _, p := range m.Teams[0].Roster {
		home = append(home, p.ID)
	}
	away := make([]string, 0, len(m.Teams[1].Roster))
	for _, p := range m.Teams[1].Roster {
		away = append(away, p.ID)
	}

	external := make([]RecordedEvent, 0)
	for _, ev := range m.Log.Snapshot() {
		if ev.Type == EventExternal || ev.Type == EventSubstitution || ev.Type == EventTacticalChange || ev.Type == EventShout {
			external = append(external, ev)
		}
	}

	return ReplayRecord{
		Seed:            m.seed,
		FieldLengthM:    m.Field.Length,
		FieldWidthM:     m.Field.Width,
		HomeRoster:      home,
		AwayRoster:      away,
		HomeFormationID: m.Teams[0].FormationID,
		AwayFormationID: m.Teams[1].FormationID,
		ExternalEvents:  external,
	}
}
