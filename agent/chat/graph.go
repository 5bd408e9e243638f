package chat

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
)

func (s *Service) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[TurnInput, TurnOutput], error) {
	graph := compose.NewGraph[TurnInput, TurnOutput]()

	if err := graph.AddLambdaNode("prepare_turn",
		compose.InvokableLambda(func(ctx context.Context, in TurnInput) (*turnState, error) {
			return s.prepareTurn(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node prepare_turn: %w", err)
	}

	if err := graph.AddLambdaNode("resolve_customer",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (*turnState, error) {
			return s.resolveCustomer(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_customer: %w", err)
	}

	if err := graph.AddLambdaNode("load_history",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (*turnState, error) {
			return s.loadHistory(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_history: %w", err)
	}

	if err := graph.AddLambdaNode("build_context",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (*turnState, error) {
			return s.buildContext(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node build_context: %w", err)
	}

	if err := graph.AddLambdaNode("generate",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (*turnState, error) {
			return s.generate(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node generate: %w", err)
	}

	if err := graph.AddLambdaNode("execute_tools",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (*turnState, error) {
			return s.executeTools(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node execute_tools: %w", err)
	}

	if err := graph.AddLambdaNode("regenerate",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (*turnState, error) {
			return s.regenerate(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node regenerate: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_turn",
		compose.InvokableLambda(func(ctx context.Context, in *turnState) (TurnOutput, error) {
			return s.finalizeTurn(ctx, in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_turn: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *turnState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("turn state is nil")
			}
			if !in.Failed && in.Response != nil && len(in.Response.ToolCalls) > 0 {
				return "execute_tools", nil
			}
			return "finalize_turn", nil
		},
		map[string]bool{
			"execute_tools": true,
			"finalize_turn": true,
		},
	)

	edges := [][2]string{
		{compose.START, "prepare_turn"},
		{"prepare_turn", "resolve_customer"},
		{"resolve_customer", "load_history"},
		{"load_history", "build_context"},
		{"build_context", "generate"},
		{"execute_tools", "regenerate"},
		{"regenerate", "finalize_turn"},
		{"finalize_turn", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	if err := graph.AddBranch("generate", branch); err != nil {
		return nil, fmt.Errorf("add generate branch: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("chat.turn"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
