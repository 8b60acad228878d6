package vision

import (
	"testing"
	"time"

	"github.com/fight-club/matchsim/internal/geom"
	"github.com/fight-club/matchsim/internal/rng"
)

func TestScanFrequencyHigherRatingsScanMoreOften(t *testing.T) {
	low := ScanFrequency(Attributes{}, true)
	high := ScanFrequency(Attributes{Awareness: 1, Anticipation: 1, VisionRating: 1}, true)

	if high >= low {
		t.Errorf("expected higher attributes to produce a shorter interval: low=%v high=%v", low, high)
	}
	if low != 1500*time.Millisecond {
		t.Errorf("zero-attribute attacking scan frequency = %v, want 1500ms", low)
	}
	if high != 300*time.Millisecond {
		t.Errorf("max-attribute attacking scan frequency = %v, want 300ms", high)
	}
}

func TestScanFrequencyDefendingRunsTighterRange(t *testing.T) {
	low := ScanFrequency(Attributes{}, false)
	high := ScanFrequency(Attributes{Awareness: 1, Anticipation: 1, VisionRating: 1}, false)

	if high >= low {
		t.Errorf("expected higher attributes to produce a shorter interval: low=%v high=%v", low, high)
	}
	if low != 1300*time.Millisecond {
		t.Errorf("zero-attribute defending scan frequency = %v, want 1300ms", low)
	}
	if high != 250*time.Millisecond {
		t.Errorf("max-attribute defending scan frequency = %v, want 250ms", high)
	}
}

func TestScanFocusesBallMostOfTheTime(t *testing.T) {
	src := rng.New(7)
	others := []PerceivedPlayer{{PlayerID: "p1"}, {PlayerID: "p2"}}

	ballFocus := 0
	for i := 0; i < 2000; i++ {
		w := Scan(PerceivedBall{}, others, int64(i), src)
		if w.FocusPlayer == "" {
			ballFocus++
		}
	}

	frac := float64(ballFocus) / 2000
	if frac < 0.7 || frac > 0.9 {
		t.Errorf("ball-focus fraction = %v, want near 0.8", frac)
	}
}

func TestFocusPositionFallsBackToBallWhenPlayerMissing(t *testing.T) {
	w := PerceivedWorld{
		Ball:        PerceivedBall{Position: geom.Vec2{1, 1}},
		Players:     []PerceivedPlayer{{PlayerID: "p1", Position: geom.Vec2{2, 2}}},
		FocusPlayer: "p-gone",
	}
	pos := w.FocusPosition()
	if pos != (geom.Vec2{1, 1}) {
		t.Errorf("FocusPosition = %v, want ball position when focus player is absent", pos)
	}
}

func TestFocusPositionUsesFocusedPlayer(t *testing.T) {
	w := PerceivedWorld{
		Ball:        PerceivedBall{Position: geom.Vec2{0, 0}},
		Players:     []PerceivedPlayer{{PlayerID: "p1", Position: geom.Vec2{5, 5}}},
		FocusPlayer: "p1",
	}
	pos := w.FocusPosition()
	if pos != (geom.Vec2{5, 5}) {
		t.Errorf("FocusPosition = %v, want focused player's position", pos)
	}
}
