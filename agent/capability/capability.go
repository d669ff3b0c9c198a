// Package capability implements the uniform agent contract: one structured
// artifact per invocation, with pre-call jitter, JSON repair, and
// rate-limit-only retry handled inside the capability so the orchestrator
// never sees a transient failure.
package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/founding-ai/orchestra/agent/contract"
)

const (
	maxAttempts   = 3
	backoffUnit   = 2 * time.Second
	jitterCeiling = 2 * time.Second
)

// Spec is the immutable descriptor of one agent. Specialization is
// configuration, not subclassing: an alternate model or image attachment is a
// field here.
type Spec struct {
	ID           contract.AgentID
	DisplayName  string
	Prompt       string
	AttachImages bool
}

type Agent struct {
	spec   Spec
	runner compose.Runnable[*contract.Snapshot, map[string]any]

	// Injected for tests; real implementations wait on the clock.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

// New compiles the agent's invocation graph against the given chat model.
func New(ctx context.Context, spec Spec, chatModel einomodel.BaseChatModel) (*Agent, error) {
	if strings.TrimSpace(spec.Prompt) == "" {
		return nil, fmt.Errorf("%w: agent %s has no role prompt", contract.ErrValidation, spec.ID)
	}

	a := &Agent{
		spec:   spec,
		sleep:  sleepCtx,
		jitter: func() time.Duration { return time.Duration(rand.Int63n(int64(jitterCeiling))) },
	}

	runner, err := a.compileGraph(ctx, chatModel)
	if err != nil {
		return nil, err
	}
	a.runner = runner
	return a, nil
}

func (a *Agent) ID() contract.AgentID {
	return a.spec.ID
}

func (a *Agent) DisplayName() string {
	return a.spec.DisplayName
}

// Run invokes the agent once per attempt, up to three attempts. Only
// rate-limit-classified errors are retried, with doubling backoff (4s, 8s,
// 16s); everything else aborts immediately. Shared state is read-only input.
func (a *Agent) Run(ctx context.Context, snap *contract.Snapshot) (map[string]any, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Desynchronize concurrent callers before hitting the upstream
		// service.
		if err := a.sleep(ctx, a.jitter()); err != nil {
			return nil, err
		}

		log.Debug().Str("agent", string(a.spec.ID)).Int("attempt", attempt).Msg("invoking model")
		out, err := a.runner.Invoke(ctx, snap)
		if err == nil {
			return out, nil
		}

		if !IsRateLimit(err) {
			return nil, fmt.Errorf("agent %s: %w", a.spec.ID, err)
		}

		delay := backoffUnit << attempt
		log.Warn().Str("agent", string(a.spec.ID)).Int("attempt", attempt).Dur("backoff", delay).Msg("rate limited")
		if sleepErr := a.sleep(ctx, delay); sleepErr != nil {
			return nil, sleepErr
		}
	}
	return nil, fmt.Errorf("agent %s: %w after %d attempts", a.spec.ID, contract.ErrRetriesExhausted, maxAttempts)
}

func (a *Agent) compileGraph(ctx context.Context, chatModel einomodel.BaseChatModel) (compose.Runnable[*contract.Snapshot, map[string]any], error) {
	graph := compose.NewGraph[*contract.Snapshot, map[string]any]()

	if err := graph.AddLambdaNode("build_messages",
		compose.InvokableLambda(func(ctx context.Context, snap *contract.Snapshot) ([]*schema.Message, error) {
			return a.buildMessages(snap)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node build_messages: %w", err)
	}

	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add node model: %w", err)
	}

	if err := graph.AddLambdaNode("parse_artifact",
		compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (map[string]any, error) {
			if msg == nil {
				return nil, fmt.Errorf("%w: empty model response", contract.ErrModelInvoke)
			}
			return ExtractJSON(msg.Content)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node parse_artifact: %w", err)
	}

	edges := [][2]string{
		{compose.START, "build_messages"},
		{"build_messages", "model"},
		{"model", "parse_artifact"},
		{"parse_artifact", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("agent."+string(a.spec.ID)))
	if err != nil {
		return nil, fmt.Errorf("compile agent graph %s: %w", a.spec.ID, err)
	}
	return runner, nil
}

func (a *Agent) buildMessages(snap *contract.Snapshot) ([]*schema.Message, error) {
	stateJSON, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: marshal shared state: %v", contract.ErrValidation, err)
	}

	task := fmt.Sprintf(
		"CURRENT STATE:\n%s\n\nTASK:\nAnalyze the current state and produce the required output strictly in JSON format.",
		stateJSON,
	)

	user := schema.UserMessage(task)
	if a.spec.AttachImages && len(snap.Images) > 0 {
		parts := []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeText, Text: task},
		}
		for _, uri := range snap.Images {
			if !strings.HasPrefix(uri, "data:") {
				continue
			}
			parts = append(parts, schema.ChatMessagePart{
				Type: schema.ChatMessagePartTypeImageURL,
				ImageURL: &schema.ChatMessageImageURL{
					URL: uri,
				},
			})
		}
		user = &schema.Message{Role: schema.User, MultiContent: parts}
	}

	return []*schema.Message{
		schema.SystemMessage(a.spec.Prompt),
		user,
	}, nil
}

// IsRateLimit classifies an error as a too-many-requests condition eligible
// for backoff. Classification is by upstream signal text, matching what the
// generation providers actually return.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, contract.ErrRateLimited) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "Too Many Requests") ||
		strings.Contains(strings.ToLower(msg), "rate limit")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WithSleeper replaces the clock wait, for tests.
func (a *Agent) WithSleeper(sleep func(ctx context.Context, d time.Duration) error) *Agent {
	a.sleep = sleep
	return a
}

// WithJitter replaces the pre-call jitter source, for tests.
func (a *Agent) WithJitter(jitter func() time.Duration) *Agent {
	a.jitter = jitter
	return a
}
