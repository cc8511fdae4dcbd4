package bot

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/telebot.v3"

	"github.com/cupitman9/finanzas-bot/internal/extraction"
	"github.com/cupitman9/finanzas-bot/internal/session"
)

func (h *Handler) handleStart(ctx context.Context, m *telebot.Message) error {
	u, err := h.userFor(ctx, m.Chat, m.Sender.ID)
	if err != nil || u == nil {
		return err
	}
	_, err = h.b.Send(m.Chat, fmt.Sprintf(msgWelcome, u.Nombre), &telebot.ReplyMarkup{RemoveKeyboard: true})
	return err
}

func (h *Handler) handleHelp(_ context.Context, m *telebot.Message) error {
	_, err := h.b.Send(m.Chat, msgHelp)
	return err
}

func (h *Handler) handleContact(ctx context.Context, m *telebot.Message) error {
	if m.Contact == nil {
		return nil
	}
	if m.Contact.UserID != 0 && m.Contact.UserID != m.Sender.ID {
		_, err := h.b.Send(m.Chat, msgForeignContact)
		return err
	}

	u, err := h.svc.Users.LinkTelegramByPhone(ctx, m.Contact.PhoneNumber, m.Sender.ID)
	if isNotFound(err) {
		_, err = h.b.Send(m.Chat, msgLinkFailed)
		return err
	}
	if err != nil {
		return h.fail(m.Chat, err)
	}
	h.log.WithField("chatId", m.Chat.ID).WithField("userId", u.ID).Info("telegram account linked")
	_, err = h.b.Send(m.Chat, fmt.Sprintf(msgLinked, u.Nombre), &telebot.ReplyMarkup{RemoveKeyboard: true})
	return err
}

// handleCancelCommand discards the draft whatever step the chat is in.
func (h *Handler) handleCancelCommand(ctx context.Context, m *telebot.Message) error {
	st, err := h.sessions.Get(ctx, m.Chat.ID)
	if err != nil {
		return h.fail(m.Chat, err)
	}
	if st.Kind() == session.KindIdle {
		_, err := h.b.Send(m.Chat, msgNoDraft)
		return err
	}
	return h.cancelDraft(ctx, m.Chat, st)
}

func (h *Handler) handleText(ctx context.Context, m *telebot.Message) error {
	st, err := h.sessions.Get(ctx, m.Chat.ID)
	if err != nil {
		return h.fail(m.Chat, err)
	}

	switch st := st.(type) {
	case session.WaitingForValue:
		return h.handleValue(ctx, m, st)
	case session.Editing:
		_, err := h.b.Send(m.Chat, msgUseMenu)
		return err
	}
	return h.processInput(ctx, m, st, extraction.Input{Kind: extraction.KindText, Text: m.Text})
}

func (h *Handler) handleVoice(ctx context.Context, m *telebot.Message) error {
	return h.handleMedia(ctx, m, &m.Voice.File, extraction.KindAudio, m.Voice.MIME)
}

func (h *Handler) handlePhoto(ctx context.Context, m *telebot.Message) error {
	return h.handleMedia(ctx, m, &m.Photo.File, extraction.KindImage, "image/jpeg")
}

func (h *Handler) handleMedia(ctx context.Context, m *telebot.Message, file *telebot.File, kind extraction.Kind, mime string) error {
	st, err := h.sessions.Get(ctx, m.Chat.ID)
	if err != nil {
		return h.fail(m.Chat, err)
	}
	if k := st.Kind(); k == session.KindEditing || k == session.KindWaiting {
		_, err := h.b.Send(m.Chat, msgUseMenu)
		return err
	}

	data, err := h.download(file)
	if err != nil {
		return h.fail(m.Chat, err)
	}
	return h.processInput(ctx, m, st, extraction.Input{Kind: kind, Text: m.Caption, Data: data, MIMEType: mime})
}

func (h *Handler) download(file *telebot.File) ([]byte, error) {
	rc, err := h.b.File(file)
	if err != nil {
		return nil, fmt.Errorf("error downloading file: %w", err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// processInput extracts fields from in, merges them into the draft and shows it.
func (h *Handler) processInput(ctx context.Context, m *telebot.Message, st session.State, in extraction.Input) error {
	u, err := h.userFor(ctx, m.Chat, m.Sender.ID)
	if err != nil {
		return h.fail(m.Chat, err)
	}
	if u == nil {
		return nil
	}

	names, err := h.svc.Categories.Names(ctx, u.ID)
	if err != nil {
		return h.fail(m.Chat, err)
	}
	res, err := h.svc.Extractor.Extract(ctx, in, names)
	if err != nil {
		return h.fail(m.Chat, err)
	}

	extracted := draftFrom(res)
	if extracted.Categoria != "" {
		c, err := h.svc.Categories.ByName(ctx, u.ID, extracted.Categoria)
		switch {
		case err == nil:
			extracted.Categoria = c.Nombre
		case isNotFound(err):
			extracted.Categoria = ""
		default:
			return h.fail(m.Chat, err)
		}
	}
	if res.Empty() {
		h.log.WithField("chatId", m.Chat.ID).WithField("kind", in.Kind).Info("nothing extracted from message")
	}

	current, _ := session.DraftOf(st)
	messageID, err := h.showDraft(m.Chat, st, current.Merge(extracted))
	if err != nil {
		return h.fail(m.Chat, err)
	}
	next, err := session.Accumulate(st, extracted, messageID)
	if err != nil {
		return h.fail(m.Chat, err)
	}
	return h.sessions.Set(ctx, m.Chat.ID, next)
}

// showDraft edits the existing draft message in place, or sends a new one.
func (h *Handler) showDraft(chat *telebot.Chat, st session.State, d session.Draft) (int, error) {
	text := formatDraft(msgDraftTitle, d)
	if c, ok := st.(session.Collecting); ok && c.MessageID != 0 {
		msg, err := h.b.Edit(stored(chat.ID, c.MessageID), text, draftKeyboard())
		if err == nil {
			return msg.ID, nil
		}
		h.log.WithField("chatId", chat.ID).WithError(err).Warn("could not edit draft, sending a new one")
		h.deleteMessage(chat.ID, c.MessageID)
	}
	msg, err := h.b.Send(chat, text, draftKeyboard())
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// handleValue validates the answer to a field prompt. Invalid input re-prompts and keeps the state.
func (h *Handler) handleValue(ctx context.Context, m *telebot.Message, w session.WaitingForValue) error {
	draft := w.Editing.Draft
	text := strings.TrimSpace(m.Text)

	switch w.Field {
	case session.FieldMonto:
		v, ok := parseMonto(text)
		if !ok {
			_, err := h.b.Send(m.Chat, msgBadMonto)
			return err
		}
		draft.Monto = &v
	case session.FieldFecha:
		f, _, ok := parseFecha(text)
		if !ok {
			_, err := h.b.Send(m.Chat, msgBadFecha)
			return err
		}
		draft.Fecha = f
	case session.FieldDescripcion:
		draft.Descripcion = cleanText(text)
	case session.FieldCategoria:
		_, err := h.b.Send(m.Chat, msgPickCategoria)
		return err
	}

	h.deleteMessage(m.Chat.ID, w.PromptMessageID)
	return h.showEditMenu(ctx, m.Chat, w, draft)
}

// showEditMenu replaces the edit menu with one showing draft and stores the resolved state.
func (h *Handler) showEditMenu(ctx context.Context, chat *telebot.Chat, w session.WaitingForValue, draft session.Draft) error {
	h.deleteMessage(chat.ID, w.Editing.MenuMessageID)
	menu, err := h.b.Send(chat, formatDraft(msgEditTitle, draft), editKeyboard())
	if err != nil {
		return h.fail(chat, err)
	}
	return h.sessions.Set(ctx, chat.ID, w.Resolve(draft, menu.ID))
}

// cancelDraft marks the draft message as cancelled and forgets the session.
func (h *Handler) cancelDraft(ctx context.Context, chat *telebot.Chat, st session.State) error {
	d, _ := session.DraftOf(st)
	switch st := st.(type) {
	case session.Collecting:
		h.closeDraftMessage(chat.ID, st.MessageID, formatDraft(msgCancelledTitle, d))
	case session.Editing:
		h.deleteMessage(chat.ID, st.MenuMessageID)
		h.closeDraftMessage(chat.ID, st.MessageID, formatDraft(msgCancelledTitle, d))
	case session.WaitingForValue:
		h.deleteMessage(chat.ID, st.PromptMessageID)
		h.deleteMessage(chat.ID, st.Editing.MenuMessageID)
		h.closeDraftMessage(chat.ID, st.Editing.MessageID, formatDraft(msgCancelledTitle, d))
	}

	if err := h.sessions.Delete(ctx, chat.ID); err != nil {
		return h.fail(chat, err)
	}
	draftsTotal.WithLabelValues("cancelled").Inc()
	h.log.WithField("chatId", chat.ID).Info("draft cancelled")
	_, err := h.b.Send(chat, msgCancelled)
	return err
}

// closeDraftMessage rewrites a draft message without its buttons.
func (h *Handler) closeDraftMessage(chatID int64, messageID int, text string) {
	if messageID == 0 {
		return
	}
	if _, err := h.b.Edit(stored(chatID, messageID), text); err != nil {
		h.log.WithField("chatId", chatID).WithError(err).Debug("could not close draft message")
	}
}

// fail tells the chat something went wrong and hands err back for logging.
func (h *Handler) fail(chat *telebot.Chat, err error) error {
	if _, sendErr := h.b.Send(chat, msgError); sendErr != nil {
		return multierror.Append(err, sendErr)
	}
	return err
}
