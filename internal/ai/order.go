package ai

import (
	"sort"

	"tank-arena/server/internal/state"
)

func sortedLiving(tanks []*state.Tank) []*state.Tank {
	living := make([]*state.Tank, 0, len(tanks))
	for _, tank := range tanks {
		if tank == nil || tank.IsPlayer() || !tank.Alive() {
			continue
		}
		living = append(living, tank)
	}
	sort.Slice(living, func(i, j int) bool {
		return living[i].ID < living[j].ID
	})
	return living
}
