// Package telegram runs the long-polling transport. It is intentionally
// thin: decode the update, hand the text to the handler, send the reply.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Token          string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	PollTimeout    time.Duration `envconfig:"POLL_TIMEOUT" split_words:"true" default:"30s"`
	HandlerTimeout time.Duration `envconfig:"HANDLER_TIMEOUT" split_words:"true" default:"90s"`
	Debug          bool          `envconfig:"DEBUG" split_words:"true" default:"false"`
}

// Message is one inbound text message, already reduced to what the
// conversation layer needs.
type Message struct {
	UserID    string
	Username  string
	FirstName string
	LastName  string
	ChatID    int64
	Text      string
}

// Handler produces the reply for one inbound message. An error means the
// turn could not run at all; the bot answers with ErrorReply and keeps
// polling.
type Handler func(ctx context.Context, msg Message) (string, error)

// ErrorReply is sent when the handler itself fails.
const ErrorReply = "Sorry, there was an error processing your request. Please try again."

type Bot struct {
	cfg Config
	api *tgbotapi.BotAPI
}

func New(cfg Config) (*Bot, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("telegram: bot token is empty")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram: create bot: %w", err)
	}
	api.Debug = cfg.Debug

	return &Bot{cfg: cfg, api: api}, nil
}

// Run polls for updates until ctx is cancelled. Each update is handled in
// its own goroutine; per-user ordering is the handler's concern.
func (b *Bot) Run(ctx context.Context, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("telegram: handler is nil")
	}

	log.Info().Str("username", b.api.Self.UserName).Msg("telegram bot connected")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(b.cfg.PollTimeout.Seconds())
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update, handler)
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update, handler Handler) {
	tgMsg := update.Message
	if tgMsg == nil || tgMsg.From == nil || tgMsg.From.IsBot {
		return
	}
	text := strings.TrimSpace(tgMsg.Text)
	if text == "" {
		return
	}

	msg := Message{
		UserID:    strconv.FormatInt(tgMsg.From.ID, 10),
		Username:  tgMsg.From.UserName,
		FirstName: tgMsg.From.FirstName,
		LastName:  tgMsg.From.LastName,
		ChatID:    tgMsg.Chat.ID,
		Text:      text,
	}

	handlerCtx, cancel := context.WithTimeout(ctx, b.cfg.HandlerTimeout)
	defer cancel()

	typingCtx, stopTyping := context.WithCancel(handlerCtx)
	go b.typingLoop(typingCtx, msg.ChatID)

	reply, err := handler(handlerCtx, msg)
	stopTyping()
	if err != nil {
		log.Error().Err(err).Str("user_id", msg.UserID).Msg("message handler failed")
		reply = ErrorReply
	}
	if strings.TrimSpace(reply) == "" {
		return
	}

	if _, err := b.api.Send(tgbotapi.NewMessage(msg.ChatID, reply)); err != nil {
		log.Error().Err(err).Int64("chat_id", msg.ChatID).Msg("sending reply failed")
	}
}

// typingLoop keeps the "typing..." indicator alive while a turn runs;
// Telegram expires the action after about five seconds.
func (b *Bot) typingLoop(ctx context.Context, chatID int64) {
	for {
		action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
		if _, err := b.api.Request(action); err != nil {
			return
		}
		select {
		case <-time.After(4 * time.Second):
		case <-ctx.Done():
			return
		}
	}
}
