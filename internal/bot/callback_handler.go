package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/telebot.v3"

	"github.com/cupitman9/finanzas-bot/internal/model"
	"github.com/cupitman9/finanzas-bot/internal/session"
)

var editFields = map[string]session.Field{
	cbEditMonto:       session.FieldMonto,
	cbEditFecha:       session.FieldFecha,
	cbEditDescripcion: session.FieldDescripcion,
}

var fieldPrompts = map[session.Field]string{
	session.FieldMonto:       msgAskMonto,
	session.FieldFecha:       msgAskFecha,
	session.FieldDescripcion: msgAskDescripcion,
}

func callbackChat(c *telebot.Callback) *telebot.Chat {
	if c.Message != nil && c.Message.Chat != nil {
		return c.Message.Chat
	}
	return &telebot.Chat{ID: c.Sender.ID}
}

func (h *Handler) handleCallback(ctx context.Context, c *telebot.Callback) error {
	if err := h.b.Respond(c); err != nil {
		h.log.WithField("userId", c.Sender.ID).WithError(err).Debug("could not answer callback")
	}

	data := strings.TrimSpace(strings.ReplaceAll(c.Data, "\f", ""))
	action, value, _ := strings.Cut(data, ":")
	chat := callbackChat(c)

	st, err := h.sessions.Get(ctx, chat.ID)
	if err != nil {
		return h.fail(chat, err)
	}

	switch action {
	case cbConfirm:
		return h.handleConfirm(ctx, chat, c.Sender, st)
	case cbEdit:
		return h.handleEdit(ctx, chat, st)
	case cbCancel:
		if st.Kind() == session.KindIdle {
			return h.noDraft(chat)
		}
		return h.cancelDraft(ctx, chat, st)
	case cbEditMonto, cbEditFecha, cbEditDescripcion:
		return h.handleEditField(ctx, chat, st, editFields[action])
	case cbEditCategoria:
		return h.handleEditCategory(ctx, chat, c.Sender, st)
	case cbSelectCategory:
		return h.handleSelectCategory(ctx, chat, c.Sender, st, value)
	case cbConfirmEdit:
		return h.handleFinishEdit(ctx, chat, st, true)
	case cbCancelEdit:
		return h.handleFinishEdit(ctx, chat, st, false)
	}

	h.log.WithField("userId", c.Sender.ID).WithField("data", data).Warn("unknown callback")
	return nil
}

// handleConfirm persists a complete draft as an expense in the user's default wallet.
func (h *Handler) handleConfirm(ctx context.Context, chat *telebot.Chat, sender *telebot.User, st session.State) error {
	c, ok := st.(session.Collecting)
	if !ok {
		return h.noDraft(chat)
	}
	if missing := c.Draft.Missing(); len(missing) > 0 {
		_, err := h.b.Send(chat, formatMissing(missing))
		return err
	}

	u, err := h.userFor(ctx, chat, sender.ID)
	if err != nil || u == nil {
		return err
	}
	category, err := h.svc.Categories.ByName(ctx, u.ID, c.Draft.Categoria)
	if err != nil {
		return h.fail(chat, err)
	}
	wallet, err := h.svc.Wallets.Default(ctx, u.ID)
	if err != nil {
		return h.fail(chat, err)
	}
	_, fecha, ok := parseFecha(c.Draft.Fecha)
	if !ok {
		return h.fail(chat, fmt.Errorf("stored draft has invalid date %q", c.Draft.Fecha))
	}

	op, err := h.svc.Operations.Create(ctx, u.ID, model.OperationInput{
		Monto:       *c.Draft.Monto,
		Tipo:        model.OperationExpense,
		Fecha:       fecha,
		Descripcion: c.Draft.Descripcion,
		CategoriaID: category.ID,
		BilleteraID: wallet.ID,
	})
	if err != nil {
		return h.fail(chat, err)
	}

	h.closeDraftMessage(chat.ID, c.MessageID, formatDraft(msgConfirmedTitle, c.Draft))
	if err := h.sessions.Delete(ctx, chat.ID); err != nil {
		return h.fail(chat, err)
	}
	draftsTotal.WithLabelValues("confirmed").Inc()
	h.log.WithField("chatId", chat.ID).WithField("operationId", op.ID).Info("draft confirmed")

	_, err = h.b.Send(chat, fmt.Sprintf(msgSaved, wallet.Nombre))
	return err
}

// handleEdit swaps the draft message for the field menu.
func (h *Handler) handleEdit(ctx context.Context, chat *telebot.Chat, st session.State) error {
	c, ok := st.(session.Collecting)
	if !ok {
		return h.noDraft(chat)
	}
	h.deleteMessage(chat.ID, c.MessageID)
	menu, err := h.b.Send(chat, formatDraft(msgEditTitle, c.Draft), editKeyboard())
	if err != nil {
		return h.fail(chat, err)
	}
	return h.sessions.Set(ctx, chat.ID, c.Edit(menu.ID))
}

func (h *Handler) handleEditField(ctx context.Context, chat *telebot.Chat, st session.State, field session.Field) error {
	e, ok := editingOf(st)
	if !ok {
		return h.noDraft(chat)
	}
	if w, waiting := st.(session.WaitingForValue); waiting {
		h.deleteMessage(chat.ID, w.PromptMessageID)
	}

	prompt, err := h.b.Send(chat, fieldPrompts[field])
	if err != nil {
		return h.fail(chat, err)
	}
	next, err := e.Await(field, prompt.ID)
	if err != nil {
		return h.fail(chat, err)
	}
	return h.sessions.Set(ctx, chat.ID, next)
}

func (h *Handler) handleEditCategory(ctx context.Context, chat *telebot.Chat, sender *telebot.User, st session.State) error {
	e, ok := editingOf(st)
	if !ok {
		return h.noDraft(chat)
	}
	u, err := h.userFor(ctx, chat, sender.ID)
	if err != nil || u == nil {
		return err
	}
	categories, err := h.svc.Categories.List(ctx, u.ID)
	if err != nil {
		return h.fail(chat, err)
	}
	if len(categories) == 0 {
		_, err := h.b.Send(chat, msgNoCategories)
		return err
	}
	if w, waiting := st.(session.WaitingForValue); waiting {
		h.deleteMessage(chat.ID, w.PromptMessageID)
	}

	menu, err := h.b.Send(chat, msgAskCategoria, categoryKeyboard(categories))
	if err != nil {
		return h.fail(chat, err)
	}
	next, err := e.Await(session.FieldCategoria, menu.ID)
	if err != nil {
		return h.fail(chat, err)
	}
	return h.sessions.Set(ctx, chat.ID, next)
}

func (h *Handler) handleSelectCategory(ctx context.Context, chat *telebot.Chat, sender *telebot.User, st session.State, rawID string) error {
	w, ok := st.(session.WaitingForValue)
	if !ok || w.Field != session.FieldCategoria {
		return h.noDraft(chat)
	}
	u, err := h.userFor(ctx, chat, sender.ID)
	if err != nil || u == nil {
		return err
	}
	id, parseErr := uuid.Parse(rawID)
	if parseErr != nil {
		_, err := h.b.Send(chat, msgUnknownCateg)
		return err
	}
	category, err := h.svc.Categories.Get(ctx, u.ID, id)
	if isNotFound(err) {
		_, err := h.b.Send(chat, msgUnknownCateg)
		return err
	}
	if err != nil {
		return h.fail(chat, err)
	}

	h.deleteMessage(chat.ID, w.PromptMessageID)
	draft := w.Editing.Draft
	draft.Categoria = category.Nombre
	return h.showEditMenu(ctx, chat, w, draft)
}

// handleFinishEdit closes the menu and shows the edited draft, or the original one when discarded.
func (h *Handler) handleFinishEdit(ctx context.Context, chat *telebot.Chat, st session.State, keep bool) error {
	e, ok := editingOf(st)
	if !ok {
		return h.noDraft(chat)
	}
	if w, waiting := st.(session.WaitingForValue); waiting {
		h.deleteMessage(chat.ID, w.PromptMessageID)
	}
	h.deleteMessage(chat.ID, e.MenuMessageID)
	h.deleteMessage(chat.ID, e.MessageID)

	draft := e.Original
	if keep {
		draft = e.Draft
	}
	msg, err := h.b.Send(chat, formatDraft(msgDraftTitle, draft), draftKeyboard())
	if err != nil {
		return h.fail(chat, err)
	}

	var next session.Collecting
	if keep {
		next = e.Confirm(msg.ID)
	} else {
		next = e.Cancel(msg.ID)
	}
	return h.sessions.Set(ctx, chat.ID, next)
}

func (h *Handler) noDraft(chat *telebot.Chat) error {
	_, err := h.b.Send(chat, msgNoDraft)
	return err
}

// editingOf returns the edit context of st; a pending prompt is abandoned.
func editingOf(st session.State) (session.Editing, bool) {
	switch st := st.(type) {
	case session.Editing:
		return st, true
	case session.WaitingForValue:
		return st.Back(), true
	}
	return session.Editing{}, false
}
