package tool

import (
	"context"
	"fmt"

	contractx "github.com/lazarovttac/messirve-prototype/agent/contract"
	schedulingx "github.com/lazarovttac/messirve-prototype/agent/scheduling"
)

type boundFunc func(b *boundTools, ctx context.Context, args map[string]any) (string, error)

// dispatch is the closed mapping from declared tool names to
// implementations. NewBinder verifies at startup that it covers every
// catalog entry, so an unhandled name is a construction-time fact.
var dispatch = map[string]boundFunc{
	ToolCreateReservation:      (*boundTools).create,
	ToolAddMealToReservation:   (*boundTools).addMeal,
	ToolCancelReservation:      (*boundTools).cancel,
	ToolGetReservationStatus:   (*boundTools).status,
	ToolChangeReservationTime:  (*boundTools).changeTime,
	ToolUpdateReservationInfo:  (*boundTools).updateDetails,
	ToolUpdateMealsReservation: (*boundTools).replaceMeals,
}

// Binder pairs the catalog's abstract declarations with executable,
// customer-scoped operations.
type Binder struct {
	repo   contractx.Repository
	engine *schedulingx.Engine
}

func NewBinder(repo contractx.Repository, engine *schedulingx.Engine) (*Binder, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if engine == nil {
		return nil, fmt.Errorf("scheduling engine is required")
	}
	for _, name := range Names() {
		if _, ok := dispatch[name]; !ok {
			return nil, fmt.Errorf("tool %q declared but not implemented", name)
		}
	}
	return &Binder{repo: repo, engine: engine}, nil
}

// Bind produces one executor scoped to customerID. The bound operations
// ignore any caller-supplied customer id and always substitute the bound
// value; this is the authorization boundary between dialogues.
func (b *Binder) Bind(customerID string) contractx.ToolExecutor {
	bound := &boundTools{
		repo:       b.repo,
		engine:     b.engine,
		customerID: customerID,
	}

	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		fn, ok := dispatch[tool]
		if !ok {
			return contractx.ToolResult{}, fmt.Errorf("%w: %s", contractx.ErrUnknownTool, tool)
		}

		msg, err := fn(bound, ctx, args)
		if err != nil {
			// Repository and internal failures stay inside the result so the
			// dialogue can apologize and continue.
			return contractx.ToolResult{
				Tool:  tool,
				Error: fmt.Sprintf("Error executing %s: %v", tool, err),
			}, nil
		}
		return contractx.ToolResult{Tool: tool, Result: msg}, nil
	}
}
