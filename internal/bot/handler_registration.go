package bot

import (
	"context"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

type messageFunc func(ctx context.Context, m *telebot.Message) error

func RegisterHandlers(b *telebot.Bot, h *Handler, log *logrus.Logger) {
	onMessage := func(name, kind string, fn messageFunc) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			m := c.Message()
			if m == nil || m.Chat == nil || m.Sender == nil {
				return nil
			}
			updatesTotal.WithLabelValues(kind).Inc()
			unlock := h.lockChat(m.Chat.ID)
			defer unlock()

			if err := fn(context.Background(), m); err != nil {
				handlerErrorsTotal.WithLabelValues(name).Inc()
				log.WithField("chatId", m.Chat.ID).WithField("userId", m.Sender.ID).WithError(err).
					Error("error handling " + name)
			}
			return nil
		}
	}

	b.Handle("/start", onMessage("/start", "command", h.handleStart))
	b.Handle("/help", onMessage("/help", "command", h.handleHelp))
	b.Handle("/cancelar", onMessage("/cancelar", "command", h.handleCancelCommand))
	b.Handle(telebot.OnContact, onMessage("contact", "contact", h.handleContact))
	b.Handle(telebot.OnText, onMessage("text", "text", h.handleText))
	b.Handle(telebot.OnVoice, onMessage("voice", "voice", h.handleVoice))
	b.Handle(telebot.OnPhoto, onMessage("photo", "photo", h.handlePhoto))

	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		cb := c.Callback()
		if cb == nil || cb.Sender == nil {
			return nil
		}
		updatesTotal.WithLabelValues("callback").Inc()
		chatID := callbackChat(cb).ID
		unlock := h.lockChat(chatID)
		defer unlock()

		if err := h.handleCallback(context.Background(), cb); err != nil {
			handlerErrorsTotal.WithLabelValues("callback").Inc()
			log.WithField("chatId", chatID).WithField("userId", cb.Sender.ID).WithError(err).
				Error("error handling callback")
		}
		return nil
	})
}
