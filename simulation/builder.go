package simulation

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/sarchlab/boxstack/config"
	"github.com/sarchlab/boxstack/datarecording"
	"github.com/sarchlab/boxstack/monitoring"
	"github.com/sarchlab/boxstack/rng"
	"github.com/sarchlab/boxstack/sim"
	"github.com/sarchlab/boxstack/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg            config.Config
	hasConfig      bool
	src            rng.Source
	layout         *sim.Layout
	monitorOn      bool
	monitorPort    int
	recordingOn    bool
	outputFileName string
	recorder       datarecording.DataRecorder
	hooks          []sim.Hook
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithConfig sets the simulation parameters. Monitoring and recording follow
// the config unless changed afterwards.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	b.hasConfig = true
	b.monitorOn = cfg.Monitor.Enabled
	b.monitorPort = cfg.Monitor.Port
	b.recordingOn = cfg.Recording.Enabled
	b.outputFileName = cfg.Recording.Path

	return b
}

// WithSource replaces the random source seeded from the config.
func (b Builder) WithSource(src rng.Source) Builder {
	b.src = src
	return b
}

// WithLayout fixes the initial placement of robots and boxes.
func (b Builder) WithLayout(l sim.Layout) Builder {
	b.layout = &l
	return b
}

// WithMonitoring turns the monitoring server on.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	b.monitorPort = 0

	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithRecording records the run into the SQLite file filename.sqlite3. An
// empty filename picks one from the simulation ID.
func (b Builder) WithRecording(filename string) Builder {
	b.recordingOn = true
	b.outputFileName = filename

	return b
}

// WithRecorder records the run into a recorder that holds no trace tables yet.
// The simulation does not close it.
func (b Builder) WithRecorder(r datarecording.DataRecorder) Builder {
	b.recordingOn = true
	b.recorder = r

	return b
}

// WithoutRecording turns trace recording off.
func (b Builder) WithoutRecording() Builder {
	b.recordingOn = false
	b.recorder = nil

	return b
}

// WithHook registers an extra hook on the model.
func (b Builder) WithHook(h sim.Hook) Builder {
	b.hooks = append(b.hooks, h)
	return b
}

func (b Builder) parametersMustBeValid() error {
	if !b.hasConfig {
		return errors.New("simulation needs a config")
	}

	if !b.monitorOn && b.monitorPort != 0 {
		return errors.New("monitor port cannot be set when monitoring is disabled")
	}

	return nil
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	if err := b.parametersMustBeValid(); err != nil {
		return nil, err
	}

	s := &Simulation{
		id:  xid.New().String(),
		cfg: b.cfg,
	}

	src := b.src
	if src == nil {
		src = rng.New(b.cfg.Seed)
	}

	var opts []sim.ModelOption
	if b.layout != nil {
		opts = append(opts, sim.WithLayout(*b.layout))
	}

	model, err := sim.NewModel(b.cfg, src, opts...)
	if err != nil {
		return nil, err
	}

	s.model = model
	s.cfg = model.Config()

	s.actionCounter = tracing.NewActionCountTracer(nil)
	tracing.CollectTrace(s.actionCounter, model)

	for _, h := range b.hooks {
		model.AcceptHook(h)
	}

	if b.recordingOn {
		if err := s.setupRecording(b); err != nil {
			_ = s.Terminate()
			return nil, err
		}
	}

	if b.monitorOn {
		if err := s.setupMonitor(b.monitorPort); err != nil {
			_ = s.Terminate()
			return nil, err
		}
	}

	log.Debug().Str("id", s.id).Msg("simulation built")

	return s, nil
}

func (s *Simulation) setupRecording(b Builder) error {
	s.dataRecorder = b.recorder
	if s.dataRecorder == nil {
		path := b.outputFileName
		if path == "" {
			path = "boxsim_" + s.id
		}

		r, err := datarecording.NewWithConfig(datarecording.RecorderConfig{
			Backend: s.cfg.Recording.Backend,
			Path:    path,
			DSN:     s.cfg.Recording.DSN,
		})
		if err != nil {
			return fmt.Errorf("create recorder: %w", err)
		}

		s.dataRecorder = r
		s.ownsRecorder = true
	}

	tracer, err := tracing.NewDBTracer(s.dataRecorder)
	if err != nil {
		return err
	}

	if s.cfg.Recording.SkipActions {
		tracer.SkipActions()
	}

	end := s.cfg.Recording.TickEnd
	if end == 0 {
		end = -1
	}

	tracer.SetTickRange(s.cfg.Recording.TickStart, end)

	s.dbTracer = tracer
	tracing.CollectTrace(tracer, s.model)

	execRecorder, err := datarecording.NewExecRecorder(s.dataRecorder)
	if err != nil {
		return err
	}

	execRecorder.Start()
	execRecorder.Set("Simulation ID", s.id)
	execRecorder.Set("Policy", string(s.cfg.Policy))
	execRecorder.Set("Seed", strconv.FormatInt(s.cfg.Seed, 10))
	s.execRecorder = execRecorder

	return nil
}

func (s *Simulation) setupMonitor(port int) error {
	s.monitor = monitoring.NewMonitor().WithPortNumber(port)
	s.monitor.RegisterModel(s.model)

	s.progressBar = s.monitor.CreateProgressBar(
		"Simulation "+s.id, uint64(s.model.MaxIterations()))
	s.model.AcceptHook(monitoring.NewProgressHook(s.progressBar))

	_, err := s.monitor.StartServer()

	return err
}
