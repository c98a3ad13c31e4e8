package combat

import (
	"math"
	"testing"
	"time"

	"tank-arena/server/internal/state"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFanAnglesSpreadsThreeBarrels(t *testing.T) {
	angles := FanAngles(90, 3)
	want := []float64{75, 90, 105}
	if len(angles) != len(want) {
		t.Fatalf("expected %d angles, got %d", len(want), len(angles))
	}
	for i := range want {
		if !approxEqual(angles[i], want[i]) {
			t.Fatalf("angle %d: expected %.2f, got %.2f", i, want[i], angles[i])
		}
	}

	single := FanAngles(42, 1)
	if len(single) != 1 || single[0] != 42 {
		t.Fatalf("single barrel should fire straight ahead, got %v", single)
	}
}

func TestVolleySpawnsAtMuzzleWithVelocity(t *testing.T) {
	now := time.Unix(100, 0)
	tank := state.NewPlayer(400, 300)

	volley := Volley(tank, now)
	if len(volley) != 1 {
		t.Fatalf("expected one projectile, got %d", len(volley))
	}
	shell := volley[0]
	if !approxEqual(shell.X, 400) || !approxEqual(shell.Y, 270) {
		t.Fatalf("unexpected spawn position (%.2f, %.2f)", shell.X, shell.Y)
	}
	if !approxEqual(shell.VX, 0) || !approxEqual(shell.VY, -ProjectileSpeed) {
		t.Fatalf("unexpected velocity (%.2f, %.2f)", shell.VX, shell.VY)
	}
	if shell.Damage != BaseDamage || shell.Color != state.ProjectileColor {
		t.Fatalf("unexpected damage/color %.1f %s", shell.Damage, shell.Color)
	}
	if shell.Owner != tank.ID || !shell.Active || !shell.CreatedAt.Equal(now) {
		t.Fatalf("unexpected projectile bookkeeping: %+v", shell)
	}
}

func TestVolleyAppliesDamageBoost(t *testing.T) {
	now := time.Unix(100, 0)
	tank := state.NewPlayer(400, 300)
	tank.Barrels = 3
	tank.DamageBoost = &state.DamageBoost{Timer: state.Timer{ActivatedAt: now, Duration: 30}, Multiplier: 2, Color: "orange"}

	volley := Volley(tank, now)
	if len(volley) != 3 {
		t.Fatalf("expected three projectiles, got %d", len(volley))
	}
	for _, shell := range volley {
		if shell.Damage != 40 {
			t.Fatalf("expected boosted damage 40, got %.1f", shell.Damage)
		}
		if shell.Color != state.BoostedProjectileColor {
			t.Fatalf("expected boosted color, got %s", shell.Color)
		}
	}
	if !approxEqual(volley[0].Angle, -15) || !approxEqual(volley[2].Angle, 15) {
		t.Fatalf("unexpected fan edges %.2f %.2f", volley[0].Angle, volley[2].Angle)
	}
}

func TestFireRespectsCooldown(t *testing.T) {
	start := time.Unix(100, 0)
	tank := state.NewPlayer(400, 300)

	projectiles, fired := Fire(tank, nil, start)
	if !fired || len(projectiles) != 1 {
		t.Fatalf("expected first volley, fired=%v len=%d", fired, len(projectiles))
	}

	projectiles, fired = Fire(tank, projectiles, start.Add(200*time.Millisecond))
	if fired || len(projectiles) != 1 {
		t.Fatalf("expected cooldown to block, fired=%v len=%d", fired, len(projectiles))
	}

	projectiles, fired = Fire(tank, projectiles, start.Add(FireCooldown))
	if !fired || len(projectiles) != 2 {
		t.Fatalf("expected volley after cooldown, fired=%v len=%d", fired, len(projectiles))
	}
}

func TestFireIgnoresOtherOwnersAndDeadTanks(t *testing.T) {
	now := time.Unix(100, 0)
	tank := state.NewPlayer(400, 300)
	others := []*state.Projectile{{Owner: 7, Active: true, CreatedAt: now}}

	projectiles, fired := Fire(tank, others, now)
	if !fired || len(projectiles) != 2 {
		t.Fatalf("foreign projectiles must not block firing")
	}

	tank.Health = 0
	if _, fired := Fire(tank, nil, now); fired {
		t.Fatalf("dead tanks must not fire")
	}
}
