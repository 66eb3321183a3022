package mcp

// White-box tests for the result helpers; they shape every tool response
// but are not reachable on their own through NewServer.

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/pedrovi35/EduSync-Pro/internal/models"
	"github.com/pedrovi35/EduSync-Pro/internal/progression"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

func TestOutcomeResult_HappyPath(t *testing.T) {
	c := qt.New(t)

	snap := models.NewSnapshot(time.Now())
	snap.XP, snap.Level = 110, 1

	cases := []struct {
		name string
		out  session.Outcome
		want map[string]any
	}{
		{
			"no-op keeps only totals",
			session.Outcome{},
			map[string]any{"changed": false, "xp": 110, "level": 1},
		},
		{
			"created entity",
			session.Outcome{Changed: true, ID: "t1"},
			map[string]any{"changed": true, "xp": 110, "level": 1, "id": "t1"},
		},
		{
			"completion with level up and unlock",
			session.Outcome{
				Changed:   true,
				XPAwarded: 10,
				LevelUps:  []progression.LevelUp{{From: 0, To: 1, Name: "Focused Apprentice"}},
				Unlocks:   []progression.Achievement{{ID: "first_task"}},
			},
			map[string]any{
				"changed": true, "xp": 110, "level": 1, "xp_awarded": 10,
				"level_ups": []string{"Focused Apprentice"},
				"unlocked":  []string{"first_task"},
			},
		},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			c.Assert(outcomeResult(tc.out, snap), qt.DeepEquals, tc.want)
		})
	}
}

func TestStatusKeys(t *testing.T) {
	c := qt.New(t)
	c.Assert(statusKeys(), qt.DeepEquals, []string{"todo", "doing", "done"})
}

func TestRoundTwo_HappyPath(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"exact value unchanged", 0.25, 0.25},
		{"rounds down", 0.334, 0.33},
		{"rounds up", 0.666, 0.67},
		{"zero", 0.0, 0.0},
		{"one", 1.0, 1.0},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			c.Assert(roundTwo(tc.in), qt.Equals, tc.want)
		})
	}
}
