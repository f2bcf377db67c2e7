// Package simulation assembles a model with its recording, tracing and
// monitoring services.
package simulation

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sarchlab/boxstack/config"
	"github.com/sarchlab/boxstack/datarecording"
	"github.com/sarchlab/boxstack/monitoring"
	"github.com/sarchlab/boxstack/sim"
	"github.com/sarchlab/boxstack/tracing"
)

// Result summarizes a finished run.
type Result struct {
	ID              string            `json:"id"               yaml:"id"`
	Policy          config.Policy     `json:"policy"           yaml:"policy"`
	Seed            int64             `json:"seed"             yaml:"seed"`
	Ticks           int               `json:"ticks"            yaml:"ticks"`
	CompletedStacks int               `json:"completed_stacks" yaml:"completed_stacks"`
	HaltReason      sim.HaltReason    `json:"halt_reason"      yaml:"halt_reason"`
	Actions         map[string]uint64 `json:"actions"          yaml:"actions"`
	WallTime        time.Duration     `json:"wall_time"        yaml:"wall_time"`
	Error           string            `json:"error,omitempty"  yaml:"error,omitempty"`
}

// Completed reports whether the run reached its policy's completion target.
func (r Result) Completed() bool {
	return r.HaltReason == sim.HaltCompleted
}

// A Simulation is one configured run.
type Simulation struct {
	id  string
	cfg config.Config

	model         *sim.Model
	actionCounter *tracing.ActionCountTracer

	dataRecorder datarecording.DataRecorder
	ownsRecorder bool
	dbTracer     *tracing.DBTracer
	execRecorder *datarecording.ExecRecorder

	monitor     *monitoring.Monitor
	progressBar *monitoring.ProgressBar
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the resolved configuration.
func (s *Simulation) Config() config.Config {
	return s.cfg
}

// Model returns the simulated model.
func (s *Simulation) Model() *sim.Model {
	return s.model
}

// GetDataRecorder returns the data recorder, or nil when not recording.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor, or nil when not monitoring.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// ActionCounts returns the tracer that counts robot actions.
func (s *Simulation) ActionCounts() *tracing.ActionCountTracer {
	return s.actionCounter
}

// Run runs the model until it halts or ctx is done.
func (s *Simulation) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	runErr := s.model.Run(ctx)

	res := s.result(time.Since(start), runErr)

	if s.progressBar != nil {
		s.monitor.CompleteProgressBar(s.progressBar)
	}

	if s.execRecorder != nil {
		s.execRecorder.Set("Halt Reason", res.HaltReason.String())
		s.execRecorder.Set("Ticks", strconv.Itoa(res.Ticks))
		s.execRecorder.Set("Completed Stacks", strconv.Itoa(res.CompletedStacks))

		if err := s.execRecorder.End(); err != nil {
			runErr = errors.Join(runErr, err)
		}

		s.execRecorder = nil
	}

	return res, runErr
}

func (s *Simulation) result(wall time.Duration, runErr error) Result {
	res := Result{
		ID:              s.id,
		Policy:          s.cfg.Policy,
		Seed:            s.cfg.Seed,
		Ticks:           s.model.Now(),
		CompletedStacks: s.model.CompletedStacks(),
		HaltReason:      s.model.HaltReason(),
		Actions:         make(map[string]uint64),
		WallTime:        wall,
	}

	for _, name := range s.actionCounter.GetActionNames() {
		res.Actions[name] = s.actionCounter.GetNamedCount(name)
	}

	if runErr != nil {
		res.Error = runErr.Error()
	}

	return res
}

// Terminate releases the recorder and the monitoring server.
func (s *Simulation) Terminate() error {
	var errs []error

	if s.dbTracer != nil {
		errs = append(errs, s.dbTracer.Terminate())
	}

	if s.dataRecorder != nil && s.ownsRecorder {
		errs = append(errs, s.dataRecorder.Close())
		s.dataRecorder = nil
	}

	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		errs = append(errs, s.monitor.StopServer(ctx))
	}

	err := errors.Join(errs...)
	if err != nil {
		log.Error().Err(err).Str("id", s.id).Msg("simulation terminated with errors")
	}

	return err
}
