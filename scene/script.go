package scene

import (
	"fmt"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/gridnav/pathfinding"
)

// ScriptQuery is an obstacle query written in tengo. The script sees the
// probe position as x and y and the probe radius as r, and must assign a
// bool to blocked.
type ScriptQuery struct {
	mu       sync.Mutex
	compiled *tengo.Compiled
	err      error
}

// NewScriptQuery compiles src and runs it once at the origin, since tengo
// only knows the script's globals after a run. Only the math and text stdlib
// modules are importable.
func NewScriptQuery(src []byte) (*ScriptQuery, error) {
	script := tengo.NewScript(src)
	_ = script.Add("x", 0.0)
	_ = script.Add("y", 0.0)
	_ = script.Add("r", 0.0)
	script.SetImports(stdlib.GetModuleMap("math", "text"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("scene: compile script: %w", err)
	}
	if err := compiled.Run(); err != nil {
		return nil, fmt.Errorf("scene: run script at origin: %w", err)
	}
	if !compiled.IsDefined("blocked") {
		return nil, fmt.Errorf("scene: script does not define blocked")
	}
	return &ScriptQuery{compiled: compiled}, nil
}

// Blocked runs the script for one probe. A failing run counts as not
// blocked and is reported by Err.
func (q *ScriptQuery) Blocked(p pathfinding.Point, radius float64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.err != nil {
		return false
	}
	if err := q.set(p, radius); err != nil {
		q.err = err
		return false
	}
	if err := q.compiled.Run(); err != nil {
		q.err = fmt.Errorf("scene: run script at (%v, %v): %w", p.X, p.Y, err)
		return false
	}
	return q.compiled.Get("blocked").Bool()
}

func (q *ScriptQuery) set(p pathfinding.Point, radius float64) error {
	if err := q.compiled.Set("x", p.X); err != nil {
		return err
	}
	if err := q.compiled.Set("y", p.Y); err != nil {
		return err
	}
	return q.compiled.Set("r", radius)
}

// Err returns the first error raised while running the script.
func (q *ScriptQuery) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}
