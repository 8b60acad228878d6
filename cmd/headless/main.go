package main

import (
	"fmt"
	"log"

	"github.com/fight-club/matchsim/internal/config"
	"github.com/fight-club/matchsim/internal/driver"
	"github.com/fight-club/matchsim/internal/match"
	"github.com/fight-club/matchsim/internal/vision"
)

// main runs a full 90-minute match with no wall-clock pacing and no
// control plane, printing the final MatchSummary — for batch simulation
// runs and deterministic-replay smoke tests.
func main() {
	appConfig := config.Load()
	seed := int64(1)

	m := match.New(seed, appConfig, buildRoster("home", appConfig.Limits.MaxSquadSize), buildRoster("away", appConfig.Limits.MaxSquadSize))
	log.Printf("running headless match (seed=%d, half=%s)", seed, appConfig.Match.HalfDuration)

	headless := driver.NewHeadless(m)

	err := headless.Run(m.MaxPossibleTick(), func(tick int64) {
		if tick%600_000 == 0 {
			log.Printf("tick %d (play state %s)", tick, m.State.PlayState)
		}
	})
	if err != nil {
		log.Fatalf("match run failed: %v", err)
	}

	summary := m.Summarize()
	fmt.Printf("\nFinal score: Home %d - %d Away\n", summary.HomeScore, summary.AwayScore)
	fmt.Printf("Possession: Home %.1f%% - Away %.1f%%\n", summary.PossessionPct, 100-summary.PossessionPct)
	fmt.Println("Scorers:")
	for _, s := range summary.TopScorers {
		fmt.Printf("  %s: %d\n", s.PlayerID, s.Goals)
	}

	record := m.BuildReplayRecord()
	fmt.Printf("\nreplay: seed=%d external_events=%d\n", record.Seed, len(record.ExternalEvents))
}

func buildRoster(prefix string, n int) []*match.Player {
	if n < 11 {
		n = 11
	}
	out := make([]*match.Player, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &match.Player{
			ID:          fmt.Sprintf("%s-%02d", prefix, i+1),
			SquadNumber: i + 1,
			VisionAttrs: vision.Attributes{Awareness: 0.6, Anticipation: 0.6, VisionRating: 0.6},
		})
	}
	return out
}
