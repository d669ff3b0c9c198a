package capability

import (
	"context"
	"errors"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/founding-ai/orchestra/agent/contract"
)

type fakeChatModel struct {
	responses []*schema.Message
	errs      []error
	calls     int
	lastInput []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.lastInput = input
	idx := f.calls
	f.calls++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx < len(f.responses) {
		return f.responses[idx], nil
	}
	return nil, errors.New("no fake response left")
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func newTestAgent(t *testing.T, spec Spec, fake *fakeChatModel) (*Agent, *[]time.Duration) {
	t.Helper()

	agent, err := New(context.Background(), spec, fake)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var slept []time.Duration
	agent.WithJitter(func() time.Duration { return 0 }).
		WithSleeper(func(ctx context.Context, d time.Duration) error {
			if d > 0 {
				slept = append(slept, d)
			}
			return nil
		})
	return agent, &slept
}

func TestRunReturnsParsedArtifact(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: "```json\n{\"strategy\":{\"name\":\"Cloud Bakery\"}}\n```"},
		},
	}
	agent, _ := newTestAgent(t, Spec{ID: contract.AgentStrategy, DisplayName: "Strategy Agent", Prompt: "strategy prompt"}, fake)

	out, err := agent.Run(context.Background(), &contract.Snapshot{UserIntent: "open a bakery"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	strategy, ok := out["strategy"].(map[string]any)
	if !ok || strategy["name"] != "Cloud Bakery" {
		t.Fatalf("unexpected artifact: %#v", out)
	}
	if fake.calls != 1 {
		t.Fatalf("expected 1 model call, got %d", fake.calls)
	}
}

func TestRunRetriesOnlyRateLimits(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		errs: []error{
			errors.New("429: quota exceeded"),
			errors.New("Too Many Requests"),
		},
		responses: []*schema.Message{
			nil, nil,
			{Content: `{"ok":true}`},
		},
	}
	agent, slept := newTestAgent(t, Spec{ID: contract.AgentOps, DisplayName: "Operations Agent", Prompt: "ops prompt"}, fake)

	out, err := agent.Run(context.Background(), &contract.Snapshot{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out["ok"] != true {
		t.Fatalf("unexpected artifact: %#v", out)
	}
	if fake.calls != 3 {
		t.Fatalf("expected 3 model calls, got %d", fake.calls)
	}
	want := []time.Duration{4 * time.Second, 8 * time.Second}
	if len(*slept) != len(want) || (*slept)[0] != want[0] || (*slept)[1] != want[1] {
		t.Fatalf("unexpected backoff schedule: %v", *slept)
	}
}

func TestRunExhaustsRetries(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		errs: []error{
			errors.New("rate limit reached"),
			errors.New("rate limit reached"),
			errors.New("rate limit reached"),
		},
	}
	agent, slept := newTestAgent(t, Spec{ID: contract.AgentFinance, DisplayName: "Finance Agent", Prompt: "finance prompt"}, fake)

	_, err := agent.Run(context.Background(), &contract.Snapshot{})
	if !errors.Is(err, contract.ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if fake.calls != 3 {
		t.Fatalf("expected 3 model calls, got %d", fake.calls)
	}
	want := []time.Duration{4 * time.Second, 8 * time.Second, 16 * time.Second}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Fatalf("unexpected backoff schedule: %v", *slept)
		}
	}
}

func TestRunDoesNotRetryOtherErrors(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		errs: []error{errors.New("invalid api key")},
	}
	agent, slept := newTestAgent(t, Spec{ID: contract.AgentTech, DisplayName: "Tech Agent", Prompt: "tech prompt"}, fake)

	_, err := agent.Run(context.Background(), &contract.Snapshot{})
	if err == nil {
		t.Fatal("expected error but got nil")
	}
	if fake.calls != 1 {
		t.Fatalf("expected 1 model call, got %d", fake.calls)
	}
	if len(*slept) != 0 {
		t.Fatalf("expected no backoff sleeps, got %v", *slept)
	}
}

func TestRunDoesNotRetryMalformedOutput(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: "definitely not JSON"},
		},
	}
	agent, _ := newTestAgent(t, Spec{ID: contract.AgentDesign, DisplayName: "Design Agent", Prompt: "design prompt"}, fake)

	_, err := agent.Run(context.Background(), &contract.Snapshot{})
	if !errors.Is(err, contract.ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("expected 1 model call, got %d", fake.calls)
	}
}

func TestRunAttachesImagesWhenConfigured(t *testing.T) {
	t.Parallel()

	fake := &fakeChatModel{
		responses: []*schema.Message{
			{Content: `{"renovation_plan":{}}`},
		},
	}
	agent, _ := newTestAgent(t, Spec{
		ID:           contract.AgentRenovation,
		DisplayName:  "Renovation Agent",
		Prompt:       "renovation prompt",
		AttachImages: true,
	}, fake)

	snap := &contract.Snapshot{
		Images: []string{"data:image/png;base64,AAAA", "http://example.com/skip.png"},
	}
	if _, err := agent.Run(context.Background(), snap); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(fake.lastInput) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(fake.lastInput))
	}
	user := fake.lastInput[1]
	var imageParts int
	for _, part := range user.MultiContent {
		if part.Type == schema.ChatMessagePartTypeImageURL {
			imageParts++
		}
	}
	if imageParts != 1 {
		t.Fatalf("expected 1 data-URI image part, got %d", imageParts)
	}
}

func TestIsRateLimit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want bool
	}{
		{errors.New("429"), true},
		{errors.New("Too Many Requests"), true},
		{errors.New("upstream Rate Limit hit"), true},
		{contract.ErrRateLimited, true},
		{errors.New("context deadline exceeded"), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := IsRateLimit(tc.err); got != tc.want {
			t.Fatalf("IsRateLimit(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
