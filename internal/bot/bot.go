// Package bot is the Telegram front end: it turns messages into expense drafts
// and walks the user through editing and confirming them.
package bot

import (
	"context"
	"io"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"github.com/cupitman9/finanzas-bot/internal/extraction"
	"github.com/cupitman9/finanzas-bot/internal/model"
	"github.com/cupitman9/finanzas-bot/internal/session"
)

// Messenger is the part of *telebot.Bot the handlers use.
type Messenger interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error)
	Delete(msg telebot.Editable) error
	Respond(c *telebot.Callback, resp ...*telebot.CallbackResponse) error
	File(file *telebot.File) (io.ReadCloser, error)
}

type UserService interface {
	ByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	LinkTelegramByPhone(ctx context.Context, phone string, telegramID int64) (*model.User, error)
}

type CategoryService interface {
	List(ctx context.Context, userID uuid.UUID) ([]model.Category, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*model.Category, error)
	Names(ctx context.Context, userID uuid.UUID) ([]string, error)
	ByName(ctx context.Context, userID uuid.UUID, name string) (*model.Category, error)
}

type WalletService interface {
	Default(ctx context.Context, userID uuid.UUID) (*model.Wallet, error)
}

type OperationService interface {
	Create(ctx context.Context, userID uuid.UUID, in model.OperationInput) (*model.Operation, error)
}

type Extractor interface {
	Extract(ctx context.Context, in extraction.Input, categories []string) (*extraction.Result, error)
}

type Services struct {
	Users      UserService
	Categories CategoryService
	Wallets    WalletService
	Operations OperationService
	Extractor  Extractor
}

type Handler struct {
	b        Messenger
	svc      Services
	sessions session.Store
	log      *logrus.Logger

	locksMu sync.Mutex
	locks   map[int64]*chatLock
}

func NewHandler(b Messenger, svc Services, sessions session.Store, log *logrus.Logger) *Handler {
	return &Handler{b: b, svc: svc, sessions: sessions, log: log, locks: make(map[int64]*chatLock)}
}

// chatLock is dropped from Handler.locks once no update holds or waits for it.
type chatLock struct {
	mu   sync.Mutex
	refs int
}

// lockChat serializes updates of one chat and returns the unlock func.
func (h *Handler) lockChat(chatID int64) func() {
	h.locksMu.Lock()
	l, ok := h.locks[chatID]
	if !ok {
		l = &chatLock{}
		h.locks[chatID] = l
	}
	l.refs++
	h.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		h.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(h.locks, chatID)
		}
		h.locksMu.Unlock()
	}
}

func stored(chatID int64, messageID int) telebot.StoredMessage {
	return telebot.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
}

// deleteMessage removes a message, ignoring failures such as already deleted messages.
func (h *Handler) deleteMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if err := h.b.Delete(stored(chatID, messageID)); err != nil {
		h.log.WithField("chatId", chatID).WithField("messageId", messageID).WithError(err).Debug("could not delete message")
	}
}

// userFor resolves the account linked to a Telegram user, nil when none is linked.
func (h *Handler) userFor(ctx context.Context, chat *telebot.Chat, telegramID int64) (*model.User, error) {
	u, err := h.svc.Users.ByTelegramID(ctx, telegramID)
	if err == nil {
		return u, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	if _, err := h.b.Send(chat, msgNotLinked, contactKeyboard()); err != nil {
		return nil, err
	}
	return nil, nil
}
