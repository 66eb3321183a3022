// Package mcp provides the stdio MCP server exposing study tools to agents.
package mcp

import (
	"context"
	"encoding/json"
	"math"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/pedrovi35/EduSync-Pro/internal/buildinfo"
	"github.com/pedrovi35/EduSync-Pro/internal/models"
	"github.com/pedrovi35/EduSync-Pro/internal/progression"
	"github.com/pedrovi35/EduSync-Pro/internal/session"
)

const statusDescription = `Show the learner's study progress: name, level, rank, XP, progress to the next level, unlocked achievements and the task board.`

const taskAddDescription = `Add a task to the To Do column of the study board.`

const taskMoveDescription = `Move a task to another column. Moving a task into done for the first time awards 10 XP and can unlock achievements.`

const flashcardAddDescription = `Create a flashcard with a question on the front and the answer on the back.`

const pomodoroDescription = `Record one completed Pomodoro focus session.`

// tools serialises tool calls against one session.
type tools struct {
	mu   sync.Mutex
	sess *session.Session
}

// NewServer creates and registers the study tools on a new MCP server.
func NewServer(sess *session.Session) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("edusync", buildinfo.Version)
	registerTools(s, &tools{sess: sess})
	return s
}

// Serve starts the stdio MCP server, blocking until stdin closes.
func Serve(_ context.Context, sess *session.Session) error {
	return mcpserver.ServeStdio(NewServer(sess))
}

func registerTools(s *mcpserver.MCPServer, t *tools) {
	s.AddTool(mcp.NewTool("study_status",
		mcp.WithDescription(statusDescription),
	), t.status)

	s.AddTool(mcp.NewTool("task_add",
		mcp.WithDescription(taskAddDescription),
		mcp.WithString("content",
			mcp.Description("Task text."),
			mcp.Required(),
		),
	), t.taskAdd)

	s.AddTool(mcp.NewTool("task_move",
		mcp.WithDescription(taskMoveDescription),
		mcp.WithString("id",
			mcp.Description("Task id as shown by study_status."),
			mcp.Required(),
		),
		mcp.WithString("status",
			mcp.Description("Target column."),
			mcp.Required(),
			mcp.Enum(statusKeys()...),
		),
	), t.taskMove)

	s.AddTool(mcp.NewTool("flashcard_add",
		mcp.WithDescription(flashcardAddDescription),
		mcp.WithString("front",
			mcp.Description("Question."),
			mcp.Required(),
		),
		mcp.WithString("back",
			mcp.Description("Answer."),
			mcp.Required(),
		),
	), t.flashcardAdd)

	s.AddTool(mcp.NewTool("pomodoro_complete",
		mcp.WithDescription(pomodoroDescription),
	), t.pomodoro)
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

func (t *tools) status(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := t.sess.Snapshot
	frac, next, isMax := progression.Progress(snap.XP, snap.Level)

	unlocked := make([]string, 0, len(snap.Achievements))
	for _, a := range progression.Catalog() {
		if snap.Achievements[a.ID].Unlocked {
			unlocked = append(unlocked, a.ID)
		}
	}

	board := make(map[string][]map[string]string, len(models.Statuses))
	for _, st := range models.Statuses {
		col := *snap.TaskLists.Column(st)
		items := make([]map[string]string, 0, len(col))
		for _, task := range col {
			items = append(items, map[string]string{"id": task.ID, "content": task.Content})
		}
		board[string(st)] = items
	}

	return jsonResult(map[string]any{
		"name":         snap.Name,
		"level":        snap.Level,
		"rank":         progression.LevelName(snap.Level),
		"xp":           snap.XP,
		"progress":     roundTwo(frac),
		"next_xp":      next,
		"max_level":    isMax,
		"achievements": unlocked,
		"pomodoros":    snap.PomodoroSessionsDone,
		"flashcards":   len(snap.Flashcards),
		"tasks":        board,
	})
}

func (t *tools) taskAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.run(ctx, session.AddTask(req.GetString("content", "")))
}

func (t *tools) taskMove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.run(ctx, session.MoveTask(req.GetString("id", ""), models.Status(req.GetString("status", ""))))
}

func (t *tools) flashcardAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.run(ctx, session.AddFlashcard(req.GetString("front", ""), req.GetString("back", "")))
}

func (t *tools) pomodoro(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return t.run(ctx, session.CompletePomodoro())
}

// run executes cmd and reports the outcome. Command failures become tool
// errors so the agent sees the message.
func (t *tools) run(ctx context.Context, cmd session.Command) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	out, err := t.sess.Execute(ctx, cmd)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(outcomeResult(out, t.sess.Snapshot))
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func outcomeResult(out session.Outcome, snap *models.Snapshot) map[string]any {
	res := map[string]any{
		"changed": out.Changed,
		"xp":      snap.XP,
		"level":   snap.Level,
	}
	if out.ID != "" {
		res["id"] = out.ID
	}
	if out.XPAwarded > 0 {
		res["xp_awarded"] = out.XPAwarded
	}
	if len(out.LevelUps) > 0 {
		ups := make([]string, 0, len(out.LevelUps))
		for _, up := range out.LevelUps {
			ups = append(ups, up.Name)
		}
		res["level_ups"] = ups
	}
	if len(out.Unlocks) > 0 {
		ids := make([]string, 0, len(out.Unlocks))
		for _, a := range out.Unlocks {
			ids = append(ids, a.ID)
		}
		res["unlocked"] = ids
	}
	return res
}

func statusKeys() []string {
	keys := make([]string, 0, len(models.Statuses))
	for _, st := range models.Statuses {
		keys = append(keys, string(st))
	}
	return keys
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// roundTwo rounds f to 2 decimal places.
func roundTwo(f float64) float64 {
	return math.Round(f*100) / 100
}
