// Package progression implements XP, levels and achievements.
package progression

import (
	"fmt"

	"github.com/pedrovi35/EduSync-Pro/internal/models"
)

// TaskCompletedXP is awarded the first time a task reaches Done.
const TaskCompletedXP = 10

// Thresholds holds the total XP needed to reach level i+1.
var Thresholds = []int{100, 250, 500, 1000, 2000}

// LevelNames has one title per level below max; max level reuses the last.
var LevelNames = []string{
	"Knowledge Novice",
	"Focused Apprentice",
	"Master Student",
	"Productive Sage",
	"Knowledge Legend",
}

// MaxLevel is the terminal level; XP keeps accumulating but the level stays.
func MaxLevel() int { return len(Thresholds) }

// LevelUp is emitted once per threshold crossed.
type LevelUp struct {
	From int
	To   int
	Name string
}

// LevelForXP returns the largest i such that xp >= Thresholds[i-1], or 0.
func LevelForXP(xp int) int {
	level := 0
	for _, t := range Thresholds {
		if xp < t {
			break
		}
		level++
	}
	return level
}

// LevelName returns the display title for level.
func LevelName(level int) string {
	if level < 0 {
		level = 0
	}
	if level >= len(LevelNames) {
		return LevelNames[len(LevelNames)-1]
	}
	return LevelNames[level]
}

// AwardXP adds amount to p and raises the level as many steps as the new
// total allows. Non-positive amounts are ignored.
func AwardXP(p *models.UserProgress, amount int) []LevelUp {
	if amount <= 0 {
		return nil
	}
	p.XP += amount

	var ups []LevelUp
	for target := LevelForXP(p.XP); p.Level < target; {
		p.Level++
		ups = append(ups, LevelUp{From: p.Level - 1, To: p.Level, Name: LevelName(p.Level)})
	}
	return ups
}

// Progress describes how far xp is through the current level.
// At max level fraction is 1 and next is 0.
func Progress(xp, level int) (fraction float64, next int, isMax bool) {
	if level >= MaxLevel() {
		return 1, 0, true
	}
	prev := 0
	if level > 0 {
		prev = Thresholds[level-1]
	}
	next = Thresholds[level]
	fraction = float64(xp-prev) / float64(next-prev)
	switch {
	case fraction < 0:
		fraction = 0
	case fraction > 1:
		fraction = 1
	}
	return fraction, next, false
}

// CheckInvariants verifies that p is internally consistent.
func CheckInvariants(p *models.UserProgress) error {
	if p.XP < 0 {
		return fmt.Errorf("xp is negative: %d", p.XP)
	}
	if want := LevelForXP(p.XP); p.Level != want {
		return fmt.Errorf("level %d does not match xp %d (want %d)", p.Level, p.XP, want)
	}
	for id, st := range p.Achievements {
		if _, ok := Lookup(id); !ok {
			return fmt.Errorf("unknown achievement %q", id)
		}
		if st.Unlocked && st.UnlockedAt == nil {
			return fmt.Errorf("achievement %q unlocked without timestamp", id)
		}
	}
	return nil
}
