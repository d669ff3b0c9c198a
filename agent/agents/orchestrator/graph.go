package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/founding-ai/orchestra/agent/nodes"
)

func (s *Service) compileRunGraph(ctx context.Context) (compose.Runnable[nodex.RunInput, *nodex.RunOutput], error) {
	graph := compose.NewGraph[nodex.RunInput, *nodex.RunOutput]()

	if err := graph.AddLambdaNode("prepare_run",
		compose.InvokableLambda(func(ctx context.Context, in nodex.RunInput) (*nodex.RunState, error) {
			return nodex.PrepareRun(ctx, in, s.profiles)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node prepare_run: %w", err)
	}

	if err := graph.AddLambdaNode("analyze_intent",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (*nodex.RunState, error) {
			return nodex.AnalyzeIntent(ctx, in, s.roster, s.sink)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node analyze_intent: %w", err)
	}

	if err := graph.AddLambdaNode("halt_clarification",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (*nodex.RunOutput, error) {
			return nodex.HaltForClarification(ctx, in, s.sink)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node halt_clarification: %w", err)
	}

	if err := graph.AddLambdaNode("plan",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (*nodex.RunState, error) {
			return nodex.Plan(ctx, in, s.roster, s.sink)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node plan: %w", err)
	}

	if err := graph.AddLambdaNode("operate",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (*nodex.RunState, error) {
			return nodex.Operate(ctx, in, s.roster, s.sink)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node operate: %w", err)
	}

	if err := graph.AddLambdaNode("debate",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (*nodex.RunState, error) {
			return nodex.Debate(ctx, in, s.roster, s.sink)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node debate: %w", err)
	}

	if err := graph.AddLambdaNode("fan_out",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (*nodex.RunState, error) {
			return nodex.FanOut(ctx, in, s.roster, s.sink, s.sites)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node fan_out: %w", err)
	}

	if err := graph.AddLambdaNode("synthesize",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (*nodex.RunState, error) {
			return nodex.Synthesize(ctx, in, s.roster, s.sink)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node synthesize: %w", err)
	}

	if err := graph.AddLambdaNode("finalize",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.RunState) (*nodex.RunOutput, error) {
			return nodex.Finalize(ctx, in, s.sink)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize: %w", err)
	}

	clarificationBranch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.RunState) (string, error) {
			if nodex.NeedsClarification(in) {
				return "halt_clarification", nil
			}
			return "plan", nil
		},
		map[string]bool{"halt_clarification": true, "plan": true},
	)

	edges := [][2]string{
		{compose.START, "prepare_run"},
		{"prepare_run", "analyze_intent"},
		{"plan", "operate"},
		{"operate", "debate"},
		{"debate", "fan_out"},
		{"fan_out", "synthesize"},
		{"synthesize", "finalize"},
		{"finalize", compose.END},
		{"halt_clarification", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}
	if err := graph.AddBranch("analyze_intent", clarificationBranch); err != nil {
		return nil, fmt.Errorf("add clarification branch: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.run"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
