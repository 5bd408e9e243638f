// Package chat owns the conversation turn: resolve the customer, rebuild the
// system instruction with a live reservation snapshot, drive the
// generate -> (tool-call -> execute -> re-generate) -> finalize loop, and
// persist the dialogue history.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/lazarovttac/messirve-prototype/agent/contract"
	conversationx "github.com/lazarovttac/messirve-prototype/agent/conversation"
	restaurantx "github.com/lazarovttac/messirve-prototype/agent/restaurant"
	toolx "github.com/lazarovttac/messirve-prototype/agent/tool"
)

// Apology is the fixed reply for a turn the provider could not complete.
const Apology = "Sorry, there was an error processing your request. Please try again."

// FallbackReply covers the provider returning tool results but no prose.
const FallbackReply = "Done. Is there anything else I can help you with?"

type TurnInput struct {
	User contractx.ChatUser
	Text string
}

type TurnOutput struct {
	Reply string
}

type Service struct {
	repo       contractx.Repository
	binder     *toolx.Binder
	model      einomodel.ToolCallingChatModel
	store      conversationx.Store
	restaurant restaurantx.Config

	graphRunner compose.Runnable[TurnInput, TurnOutput]

	now func() time.Time

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

func New(
	repo contractx.Repository,
	binder *toolx.Binder,
	chatModel einomodel.ToolCallingChatModel,
	store conversationx.Store,
	rc restaurantx.Config,
) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	if binder == nil {
		return nil, errors.New("tool binder is required")
	}
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if store == nil {
		return nil, errors.New("conversation store is required")
	}

	// The declarations are static across customers; only execution is
	// customer-scoped, so the model is bound once.
	toolModel, err := chatModel.WithTools(toolx.Declarations())
	if err != nil {
		return nil, fmt.Errorf("%w: bind tool declarations: %v", contractx.ErrModelInvoke, err)
	}

	s := &Service{
		repo:       repo,
		binder:     binder,
		model:      toolModel,
		store:      store,
		restaurant: rc,
		now:        time.Now,
		userLocks:  make(map[string]*sync.Mutex),
	}

	graphRunner, err := s.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// HandleMessage runs one turn for one transport user. Turns for the same
// user are serialized on a per-user mutex so a second message always sees
// the first turn's reservation changes; turns for different users run
// concurrently.
func (s *Service) HandleMessage(ctx context.Context, user contractx.ChatUser, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: message text is empty", contractx.ErrValidation)
	}
	if strings.TrimSpace(user.ID) == "" {
		return "", fmt.Errorf("%w: transport user id is empty", contractx.ErrValidation)
	}

	lock := s.userLock(user.ID)
	lock.Lock()
	defer lock.Unlock()

	out, err := s.graphRunner.Invoke(ctx, TurnInput{User: user, Text: text})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

func (s *Service) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}
