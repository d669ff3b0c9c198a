package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	"github.com/founding-ai/orchestra/agent/contract"
	"github.com/founding-ai/orchestra/agent/events"
	nodex "github.com/founding-ai/orchestra/agent/nodes"
	"github.com/founding-ai/orchestra/agent/profile"
)

var (
	ErrEmptyCommand   = errors.New("command is empty")
	ErrNoPriorCommand = errors.New("no prior command to resume")
)

// Service owns the run lifecycle: one run at a time, each new command
// superseding and cancelling the previous one. Events stream through the
// bus; subscribers attach and detach independently of runs.
type Service struct {
	roster   contract.Roster
	bus      *events.Bus
	sink     contract.Sink
	profiles profile.Store
	sites    nodex.SiteGenerator

	runner compose.Runnable[nodex.RunInput, *nodex.RunOutput]

	mu          sync.Mutex
	cancelRun   context.CancelFunc
	lastCommand string
	lastRole    string

	now func() time.Time
}

func New(
	roster contract.Roster,
	bus *events.Bus,
	profiles profile.Store,
	sites nodex.SiteGenerator,
) (*Service, error) {
	if roster == nil {
		return nil, errors.New("roster is required")
	}
	if bus == nil {
		return nil, errors.New("event bus is required")
	}

	s := &Service{
		roster:   roster,
		bus:      bus,
		sink:     bus,
		profiles: profiles,
		sites:    sites,
		now:      time.Now,
	}

	runner, err := s.compileRunGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.runner = runner

	return s, nil
}

// Start launches a new run for the command, discarding any run in flight.
// The replay buffer is reset so new subscribers see only this run.
func (s *Service) Start(command, role string, images []string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return ErrEmptyCommand
	}

	runCtx := s.supersede(command, role)
	s.bus.Reset()

	log.Info().Str("role", role).Int("images", len(images)).Msg("starting run")
	go s.run(runCtx, nodex.RunInput{Command: command, Role: role, Images: images})
	return nil
}

// Reply resumes a clarification-halted run by replaying the original command
// with the user's answer folded in. The event buffer is kept so the timeline
// stays continuous.
func (s *Service) Reply(answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return ErrEmptyCommand
	}

	s.mu.Lock()
	if s.lastCommand == "" {
		s.mu.Unlock()
		return ErrNoPriorCommand
	}
	combined := s.lastCommand + ". Additional Context: " + answer
	role := s.lastRole
	s.mu.Unlock()

	runCtx := s.supersede(combined, role)

	s.sink.Publish(contract.Timeline("System", "Replied: "+answer, contract.TimelineAccepted))
	s.sink.Publish(contract.Timeline("System", "Resuming simulation with new context...", contract.TimelinePending))

	log.Info().Msg("resuming run with clarification answer")
	go s.run(runCtx, nodex.RunInput{Command: combined, Role: role})
	return nil
}

// Subscribe attaches a consumer to the event stream. See events.Bus.Subscribe.
func (s *Service) Subscribe() (<-chan contract.Event, func()) {
	return s.bus.Subscribe()
}

// supersede cancels any in-flight run and records the command for Reply.
func (s *Service) supersede(command, role string) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelRun != nil {
		s.cancelRun()
	}
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancelRun = cancel
	s.lastCommand = command
	s.lastRole = role
	return runCtx
}

func (s *Service) run(ctx context.Context, in nodex.RunInput) {
	out, err := s.runner.Invoke(ctx, in)
	if err != nil {
		if ctx.Err() != nil {
			log.Debug().Msg("run superseded, discarding result")
			return
		}
		log.Error().Err(err).Msg("run failed")
		s.sink.Publish(contract.Timeline("System", "Critical Error: "+err.Error(), contract.TimelineRejected))
		s.sink.Publish(contract.Event{Type: contract.EventError, Data: contract.ErrorEvent{Message: err.Error()}})
		s.sink.Publish(contract.Event{Type: contract.EventCompletion, Data: contract.Completion{Error: true}})
		return
	}

	if out.Status == nodex.RunCompleted {
		s.recordDecision(ctx, in.Command)
	}
	log.Info().Str("status", out.Status).Msg("run finished")
}

// recordDecision appends the completed command to the durable decision log.
// Failures here never affect the run outcome.
func (s *Service) recordDecision(ctx context.Context, command string) {
	if s.profiles == nil {
		return
	}

	p, err := s.profiles.Load(ctx)
	switch {
	case errors.Is(err, profile.ErrNotFound):
		p = profile.NewProfile()
	case err != nil:
		log.Warn().Err(err).Msg("skipping decision log, profile load failed")
		return
	}

	summary := command
	if len(summary) > 120 {
		summary = summary[:120]
	}
	p.AddDecision(summary, s.now())

	if err := s.profiles.Save(ctx, p); err != nil {
		log.Warn().Err(err).Msg("decision log save failed")
	}
}
