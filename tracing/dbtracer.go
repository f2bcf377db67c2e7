package tracing

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sarchlab/boxstack/datarecording"
	"github.com/sarchlab/boxstack/sim"
)

// Table names written by DBTracer.
const (
	TickTable   = "ticks"
	ActionTable = "actions"
	HaltTable   = "halts"
)

// TickEntry is one row of the ticks table.
type TickEntry struct {
	Tick        int `json:"tick"`
	Carrying    int `json:"carrying"`
	BoxesOnGrid int `json:"boxes_on_grid"`
	Partial     int `json:"partial"`
	Full        int `json:"full"`
	Completed   int `json:"completed"`
}

// ActionEntry is one row of the actions table.
type ActionEntry struct {
	Tick     int    `json:"tick"`
	Robot    int    `json:"robot"`
	Action   string `json:"action"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Carrying bool   `json:"carrying"`
}

// HaltEntry is the single row a run writes to the halts table.
type HaltEntry struct {
	Reason string `json:"reason"`
	Ticks  int    `json:"ticks"`
	Error  string `json:"error,omitempty"`
}

// DBTracer stores tick summaries and robot actions into a DataRecorder.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder

	startTick, endTick int
	skipActions        bool

	err error
}

// NewDBTracer creates the trace tables in dataRecorder.
func NewDBTracer(dataRecorder datarecording.DataRecorder) (*DBTracer, error) {
	for name, sample := range map[string]any{
		TickTable:   TickEntry{},
		ActionTable: ActionEntry{},
		HaltTable:   HaltEntry{},
	} {
		if err := dataRecorder.CreateTable(name, sample); err != nil {
			return nil, err
		}
	}

	return &DBTracer{
		backend: dataRecorder,
		endTick: -1,
	}, nil
}

// SetTickRange limits recording to ticks in [start, end]. A negative end
// means no upper limit.
func (t *DBTracer) SetTickRange(start, end int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTick = start
	t.endTick = end
}

// SkipActions stops the tracer from writing per-robot rows.
func (t *DBTracer) SkipActions() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.skipActions = true
}

// Err returns the first error the backend reported.
func (t *DBTracer) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.err
}

// Func implements sim.Hook.
func (t *DBTracer) Func(ctx sim.HookCtx) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ctx.Pos {
	case sim.HookPosAfterStep:
		rec := ctx.Item.(sim.StepRecord)
		if t.skipActions || !t.inRange(rec.Tick) {
			return
		}

		t.insert(ActionTable, ActionEntry{
			Tick:     rec.Tick,
			Robot:    rec.RobotID,
			Action:   rec.Action.String(),
			X:        rec.Pos.X,
			Y:        rec.Pos.Y,
			Carrying: rec.Carrying,
		})
	case sim.HookPosAfterTick:
		s := ctx.Item.(sim.TickSummary)
		if !t.inRange(s.Tick) {
			return
		}

		t.insert(TickTable, TickEntry{
			Tick:        s.Tick,
			Carrying:    s.Carrying,
			BoxesOnGrid: s.BoxesOnGrid,
			Partial:     s.Partial,
			Full:        s.Full,
			Completed:   s.CompletedStacks,
		})
	case sim.HookPosHalt:
		t.recordHalt(ctx)
	}
}

func (t *DBTracer) recordHalt(ctx sim.HookCtx) {
	entry := HaltEntry{Reason: ctx.Item.(sim.HaltReason).String()}

	if m, ok := ctx.Domain.(*sim.Model); ok {
		entry.Ticks = m.Now()
	}

	if err, ok := ctx.Detail.(error); ok && err != nil {
		entry.Error = err.Error()
	}

	t.insert(HaltTable, entry)

	if err := t.backend.Flush(); err != nil && t.err == nil {
		t.err = err
	}
}

func (t *DBTracer) inRange(tick int) bool {
	if tick < t.startTick {
		return false
	}

	return t.endTick < 0 || tick <= t.endTick
}

func (t *DBTracer) insert(table string, entry any) {
	if t.err != nil {
		return
	}

	if err := t.backend.InsertData(table, entry); err != nil {
		log.Error().Err(err).Str("table", table).Msg("trace recording failed")
		t.err = err
	}
}

// Terminate flushes the buffered rows.
func (t *DBTracer) Terminate() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.backend.Flush(); err != nil {
		return err
	}

	return t.err
}
