package state

import (
	"sort"
	"time"
)

const (
	WinnerAI     = 0
	WinnerPlayer = 1
)

// Session is the authoritative state of one game.
type Session struct {
	ID string

	Tanks       []*Tank
	Projectiles []*Projectile
	Rewards     []*Reward

	Level           int
	EnemiesDefeated int
	EnemiesRequired int
	MaxEnemies      int

	NextEnemySpawn  time.Time
	LastRewardSpawn time.Time
	LastAIUpdate    time.Time
	LastUpdate      time.Time
	StartedAt       time.Time

	Active    bool
	GameOver  bool
	Completed bool
	Winner    *int

	Width  float64
	Height float64

	Tick uint64
}

// Player returns the player tank or nil when absent.
func (s *Session) Player() *Tank {
	return s.TankByID(PlayerID)
}

// TankByID finds a tank regardless of health.
func (s *Session) TankByID(id int) *Tank {
	if s == nil {
		return nil
	}
	for _, tank := range s.Tanks {
		if tank.ID == id {
			return tank
		}
	}
	return nil
}

// LivingEnemies returns enemies with health in ascending ID order.
func (s *Session) LivingEnemies() []*Tank {
	if s == nil {
		return nil
	}
	enemies := make([]*Tank, 0, len(s.Tanks))
	for _, tank := range s.Tanks {
		if !tank.IsPlayer() && tank.Alive() {
			enemies = append(enemies, tank)
		}
	}
	sort.Slice(enemies, func(i, j int) bool {
		return enemies[i].ID < enemies[j].ID
	})
	return enemies
}

// MaxTankID returns the highest ID in use, at least PlayerID.
func (s *Session) MaxTankID() int {
	maxID := PlayerID
	if s == nil {
		return maxID
	}
	for _, tank := range s.Tanks {
		if tank.ID > maxID {
			maxID = tank.ID
		}
	}
	return maxID
}

// RemoveEnemies drops every non-player tank, living or dead. The tank slice
// is replaced rather than compacted so callers iterating the old slice are
// unaffected.
func (s *Session) RemoveEnemies() int {
	if s == nil {
		return 0
	}
	kept := make([]*Tank, 0, 1)
	for _, tank := range s.Tanks {
		if tank.IsPlayer() {
			kept = append(kept, tank)
		}
	}
	removed := len(s.Tanks) - len(kept)
	s.Tanks = kept
	return removed
}

// RemoveReward deletes the reward pointer from the session.
func (s *Session) RemoveReward(target *Reward) bool {
	if s == nil || target == nil {
		return false
	}
	for i, reward := range s.Rewards {
		if reward == target {
			s.Rewards = append(s.Rewards[:i], s.Rewards[i+1:]...)
			return true
		}
	}
	return false
}

// SetWinner records the outcome and freezes the session.
func (s *Session) SetWinner(winner int, completed bool) {
	if s == nil {
		return
	}
	w := winner
	s.Winner = &w
	s.GameOver = true
	s.Active = false
	if completed {
		s.Completed = true
	}
}
