package body

import (
	"math"
	"testing"

	"github.com/fight-club/matchsim/internal/geom"
	"github.com/fight-club/matchsim/internal/rng"
)

func TestSeekAccelatesTowardTarget(t *testing.T) {
	b := New(geom.Vec2{0, 0})
	out := Seek(b, geom.Vec2{10, 0}, 9.5)

	if out.Linear[0] <= 0 {
		t.Errorf("expected positive linear acceleration toward +x target, got %v", out.Linear)
	}
	if out.ResolvedMovementMode != ModeForward {
		t.Errorf("expected ModeForward, got %v", out.ResolvedMovementMode)
	}
}

func TestArriveSlowsWithinRadius(t *testing.T) {
	b := New(geom.Vec2{0, 0})
	close := Arrive(b, geom.Vec2{0.1, 0}, nil, 9.5, ModeAuto)
	far := Arrive(b, geom.Vec2{50, 0}, nil, 9.5, ModeAuto)

	closeSpeed := close.Linear.Add(b.Velocity).Len()
	farSpeed := far.Linear.Add(b.Velocity).Len()
	if closeSpeed >= farSpeed {
		t.Errorf("expected slower target speed close to arrival: close=%v far=%v", closeSpeed, farSpeed)
	}
}

func TestArriveReachesTargetRadius(t *testing.T) {
	b := New(geom.Vec2{0, 0})
	out := Arrive(b, geom.Vec2{0.1, 0}, nil, 9.5, ModeAuto)
	if !out.Arrived {
		t.Error("expected Arrived=true within TargetRadius")
	}
}

func TestArriveStrafeModeForLateralTarget(t *testing.T) {
	b := New(geom.Vec2{0, 0})
	b.BodyDir = geom.Vec2{1, 0}
	out := Arrive(b, geom.Vec2{0, 10}, nil, 9.5, ModeAuto)

	if out.ResolvedMovementMode != ModeStrafeLeft && out.ResolvedMovementMode != ModeStrafeRight {
		t.Errorf("expected a strafe mode for a 90deg lateral target, got %v", out.ResolvedMovementMode)
	}
}

func TestFaceProducesNoLinearMotion(t *testing.T) {
	b := New(geom.Vec2{0, 0})
	out := Face(b, geom.Vec2{5, 5})
	if out.Linear != (geom.Vec2{}) {
		t.Errorf("Face should produce zero linear force, got %v", out.Linear)
	}
}

func TestCollisionAvoidanceRepelsFromNeighbor(t *testing.T) {
	b := New(geom.Vec2{0, 0})
	out := Seek(b, geom.Vec2{10, 0}, 9.5)
	neighbor := geom.Vec2{1, 0} // directly ahead, within AvoidanceRadius

	avoided := ApplyCollisionAvoidance(out, b.Position, []geom.Vec2{neighbor})
	if avoided.Linear[0] >= out.Linear[0] {
		t.Errorf("expected avoidance to reduce +x linear force, before=%v after=%v", out.Linear[0], avoided.Linear[0])
	}
}

func TestIntegrateRespectsSpeedLimit(t *testing.T) {
	b := New(geom.Vec2{0, 0})
	out := SteeringOutput{Linear: geom.Vec2{1000, 0}, FaceDirection: geom.Vec2{1, 0}, MaxSpeed: 9.5}

	for i := 0; i < 100; i++ {
		Integrate(b, out, 1.0/60.0)
	}

	if speed := b.Velocity.Len(); speed > 9.5+1e-6 {
		t.Errorf("speed = %v, want <= 9.5", speed)
	}
}

func TestIntegrateBrakesWhenSteeringGoesIdle(t *testing.T) {
	b := New(geom.Vec2{0, 0})
	b.Velocity = geom.Vec2{5, 0}

	idle := SteeringOutput{MaxSpeed: 9.5}
	for i := 0; i < 60; i++ {
		Integrate(b, idle, 1.0/60.0)
	}

	if speed := b.Velocity.Len(); speed > 0.5 {
		t.Errorf("expected braking to near-zero velocity after 1s, got speed=%v", speed)
	}
}

func TestSetHeadAngleStrictRejectsOutOfRange(t *testing.T) {
	b := New(geom.Vec2{0, 0})
	if err := b.SetHeadAngleStrict(MaxHeadAngle + 0.1); err == nil {
		t.Error("expected error for head angle beyond +80deg")
	}
}

func TestSetHeadAngleClampedNeverExceedsRange(t *testing.T) {
	b := New(geom.Vec2{0, 0})
	b.SetHeadAngleClamped(1000)
	if math.Abs(b.HeadAngle) > MaxHeadAngle+1e-9 {
		t.Errorf("HeadAngle = %v, want clamped to %v", b.HeadAngle, MaxHeadAngle)
	}
}

func TestHeadLookAroundEventuallyTriggers(t *testing.T) {
	b := New(geom.Vec2{0, 0})
	src := rng.New(42)

	triggered := false
	for tick := int64(0); tick < 2600; tick++ {
		b.UpdateHead(1.0/60.0, tick, src, nil)
		if b.Head.Behavior == HeadLookAround {
			triggered = true
			break
		}
	}
	if !triggered {
		t.Error("expected a LOOK_AROUND to trigger within 2600ms")
	}
}

func TestHeadReturnsToFollowBodyAfterEnd(t *testing.T) {
	b := New(geom.Vec2{0, 0})
	src := rng.New(1)

	b.TriggerCheckShoulder(src, 0)
	if b.Head.Behavior != HeadCheckShoulder {
		t.Fatal("expected HeadCheckShoulder immediately after trigger")
	}

	for tick := int64(0); tick < int64(b.Head.EndTick)+1; tick++ {
		b.UpdateHead(1.0/60.0, tick, src, nil)
	}
	if b.Head.Behavior == HeadCheckShoulder {
		t.Error("expected head behavior to revert after EndTick")
	}
}
