package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/lazarovttac/messirve-prototype/agent/contract"
	conversationx "github.com/lazarovttac/messirve-prototype/agent/conversation"
	promptx "github.com/lazarovttac/messirve-prototype/agent/prompt"
)

// turnState is the value threaded through the turn graph. History holds the
// messages that will be persisted for this user: prior turns, the incoming
// user message, and the tool-call/tool-result pairs produced along the way.
type turnState struct {
	User contractx.ChatUser
	Text string
	Now  time.Time

	Customer *contractx.Customer
	Execute  contractx.ToolExecutor

	System  string
	History []*schema.Message

	Response *schema.Message
	Regen    *schema.Message

	ToolsRan bool
	Failed   bool
}

func (s *Service) prepareTurn(in TurnInput) (*turnState, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is empty", contractx.ErrValidation)
	}
	if strings.TrimSpace(in.User.ID) == "" {
		return nil, fmt.Errorf("%w: transport user id is empty", contractx.ErrValidation)
	}

	return &turnState{
		User: in.User,
		Text: text,
		Now:  s.now(),
	}, nil
}

// resolveCustomer maps the transport user onto a customer record, creating one
// on first contact, and scopes the tool executor to that customer.
func (s *Service) resolveCustomer(ctx context.Context, in *turnState) (*turnState, error) {
	phone := strings.TrimSpace(in.User.PhoneNumber)
	if phone == "" {
		phone = in.User.ID
	}

	customer, err := s.repo.CustomerByPhone(ctx, phone)
	switch {
	case err == nil:
	case errors.Is(err, contractx.ErrNotFound):
		created := contractx.Customer{
			Name:        in.User.Name,
			PhoneNumber: phone,
		}
		id, createErr := s.repo.CreateCustomer(ctx, created)
		if createErr != nil {
			return nil, createErr
		}
		created.ID = id
		customer = &created
		log.Info().Str("customer_id", id).Msg("created customer on first contact")
	default:
		return nil, err
	}

	in.Customer = customer
	in.Execute = s.binder.Bind(customer.ID)
	return in, nil
}

func (s *Service) loadHistory(ctx context.Context, in *turnState) (*turnState, error) {
	history, err := s.store.Load(ctx, in.User.ID)
	if err != nil && !errors.Is(err, conversationx.ErrHistoryNotFound) {
		return nil, err
	}

	in.History = append(history, schema.UserMessage(in.Text))
	return in, nil
}

// buildContext rebuilds the system instruction from scratch each turn so the
// model always sees the customer's current reservations.
func (s *Service) buildContext(ctx context.Context, in *turnState) (*turnState, error) {
	reservations, err := s.repo.ReservationsByCustomer(ctx, in.Customer.ID)
	if err != nil {
		return nil, err
	}

	in.System = promptx.BuildSystemInstruction(s.restaurant, in.Now, reservations)
	return in, nil
}

func (s *Service) generate(ctx context.Context, in *turnState) (*turnState, error) {
	resp, err := s.model.Generate(ctx, withSystem(in.System, in.History))
	if err != nil {
		log.Error().Err(err).Str("user_id", in.User.ID).Msg("model generate failed")
		in.Failed = true
		return in, nil
	}
	if resp == nil || (len(resp.ToolCalls) == 0 && strings.TrimSpace(resp.Content) == "") {
		log.Error().Str("user_id", in.User.ID).Msg("model returned an empty response")
		in.Failed = true
		return in, nil
	}

	in.Response = resp
	return in, nil
}

// executeTools runs every tool call from the first generation and records the
// call/result pair in history. A tool the catalog does not know is logged,
// skipped, and stripped from the recorded assistant message so every persisted
// call has a matching result; execution failures are already folded into the
// result by the executor so the model can read them back.
func (s *Service) executeTools(ctx context.Context, in *turnState) (*turnState, error) {
	var results []*schema.Message
	executed := make([]schema.ToolCall, 0, len(in.Response.ToolCalls))
	for _, call := range in.Response.ToolCalls {
		name := call.Function.Name

		args := map[string]any{}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				executed = append(executed, call)
				results = append(results, schema.ToolMessage(
					fmt.Sprintf("Error executing %s: malformed arguments", name), call.ID))
				continue
			}
		}

		res, err := in.Execute(ctx, name, args)
		if err != nil {
			if errors.Is(err, contractx.ErrUnknownTool) {
				log.Warn().Str("tool", name).Msg("model requested an unknown tool")
				continue
			}
			return nil, err
		}

		content := res.Result
		if res.Error != "" {
			content = res.Error
		}
		executed = append(executed, call)
		results = append(results, schema.ToolMessage(content, call.ID))
	}

	if len(results) == 0 {
		return in, nil
	}

	assistant := in.Response
	if len(executed) < len(in.Response.ToolCalls) {
		stripped := *in.Response
		stripped.ToolCalls = executed
		assistant = &stripped
	}
	in.History = append(in.History, assistant)
	in.History = append(in.History, results...)
	in.ToolsRan = true
	return in, nil
}

// regenerate gives the model one round to narrate the tool results. Further
// tool calls in the second response are ignored.
func (s *Service) regenerate(ctx context.Context, in *turnState) (*turnState, error) {
	if in.Failed || !in.ToolsRan {
		return in, nil
	}

	resp, err := s.model.Generate(ctx, withSystem(in.System, in.History))
	if err != nil {
		log.Error().Err(err).Str("user_id", in.User.ID).Msg("model regenerate failed")
		in.Failed = true
		return in, nil
	}

	in.Regen = resp
	return in, nil
}

// finalizeTurn picks the reply, appends it to history, and persists the
// history. On a failed turn the history up to the failure is still saved so a
// retry sees the same state, but no apology entry is recorded.
func (s *Service) finalizeTurn(ctx context.Context, in *turnState) (TurnOutput, error) {
	if in.Failed {
		if err := s.store.Save(ctx, in.User.ID, in.History); err != nil {
			log.Error().Err(err).Str("user_id", in.User.ID).Msg("saving history failed")
		}
		return TurnOutput{Reply: Apology}, nil
	}

	var reply string
	switch {
	case in.ToolsRan:
		reply = FallbackReply
		if in.Regen != nil && strings.TrimSpace(in.Regen.Content) != "" {
			reply = in.Regen.Content
		}
		in.History = append(in.History, schema.AssistantMessage(reply, nil))
	default:
		reply = in.Response.Content
		if strings.TrimSpace(reply) == "" {
			reply = FallbackReply
		}
		in.History = append(in.History, schema.AssistantMessage(reply, nil))
	}

	if err := s.store.Save(ctx, in.User.ID, in.History); err != nil {
		return TurnOutput{}, err
	}
	return TurnOutput{Reply: reply}, nil
}

func withSystem(system string, history []*schema.Message) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(history)+1)
	msgs = append(msgs, schema.SystemMessage(system))
	return append(msgs, history...)
}
