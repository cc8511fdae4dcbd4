package bot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/extraction"
	"github.com/cupitman9/finanzas-bot/internal/logger"
	"github.com/cupitman9/finanzas-bot/internal/model"
	"github.com/cupitman9/finanzas-bot/internal/session"
)

type sentMessage struct {
	id     int
	chatID int64
	text   string
	markup *telebot.ReplyMarkup
}

type fakeMessenger struct {
	nextID  int
	sent    []sentMessage
	edits   []sentMessage
	deleted []int
	files   map[string][]byte
}

func markupOf(opts []interface{}) *telebot.ReplyMarkup {
	for _, o := range opts {
		if m, ok := o.(*telebot.ReplyMarkup); ok {
			return m
		}
	}
	return nil
}

func (f *fakeMessenger) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	f.nextID++
	chatID, _ := strconv.ParseInt(to.Recipient(), 10, 64)
	text, _ := what.(string)
	f.sent = append(f.sent, sentMessage{id: f.nextID, chatID: chatID, text: text, markup: markupOf(opts)})
	return &telebot.Message{ID: f.nextID, Chat: &telebot.Chat{ID: chatID}}, nil
}

func (f *fakeMessenger) Edit(msg telebot.Editable, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	sig, chatID := msg.MessageSig()
	id, _ := strconv.Atoi(sig)
	text, _ := what.(string)
	f.edits = append(f.edits, sentMessage{id: id, chatID: chatID, text: text, markup: markupOf(opts)})
	return &telebot.Message{ID: id, Chat: &telebot.Chat{ID: chatID}}, nil
}

func (f *fakeMessenger) Delete(msg telebot.Editable) error {
	sig, _ := msg.MessageSig()
	id, _ := strconv.Atoi(sig)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeMessenger) Respond(*telebot.Callback, ...*telebot.CallbackResponse) error { return nil }

func (f *fakeMessenger) File(file *telebot.File) (io.ReadCloser, error) {
	data, ok := f.files[file.FileID]
	if !ok {
		return nil, errors.New("file not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeMessenger) last() sentMessage {
	return f.sent[len(f.sent)-1]
}

type fakeUsers struct {
	byTelegram map[int64]*model.User
}

func (f *fakeUsers) ByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	if u, ok := f.byTelegram[telegramID]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("usuario", nil)
}

func (f *fakeUsers) LinkTelegramByPhone(_ context.Context, phone string, telegramID int64) (*model.User, error) {
	if phone != "5493515550101" {
		return nil, apperr.NotFound("usuario", phone)
	}
	u := &model.User{ID: uuid.New(), Nombre: "Ana", TelegramID: &telegramID}
	f.byTelegram[telegramID] = u
	return u, nil
}

type fakeCategories struct {
	categories []model.Category
}

func (f *fakeCategories) Names(context.Context, uuid.UUID) ([]string, error) {
	var names []string
	for _, c := range f.categories {
		names = append(names, c.Nombre)
	}
	return names, nil
}

func (f *fakeCategories) List(context.Context, uuid.UUID) ([]model.Category, error) {
	return f.categories, nil
}

func (f *fakeCategories) Get(_ context.Context, _, id uuid.UUID) (*model.Category, error) {
	for _, c := range f.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, apperr.NotFound("categoría", id)
}

func (f *fakeCategories) ByName(_ context.Context, _ uuid.UUID, name string) (*model.Category, error) {
	for _, c := range f.categories {
		if strings.EqualFold(c.Nombre, name) {
			return &c, nil
		}
	}
	return nil, apperr.NotFound("categoría", name)
}

type fakeWallets struct {
	wallet model.Wallet
}

func (f *fakeWallets) Default(context.Context, uuid.UUID) (*model.Wallet, error) {
	return &f.wallet, nil
}

type fakeOperations struct {
	created []model.OperationInput
}

func (f *fakeOperations) Create(_ context.Context, userID uuid.UUID, in model.OperationInput) (*model.Operation, error) {
	f.created = append(f.created, in)
	return &model.Operation{ID: uuid.New(), UserID: userID, Monto: in.Monto, Tipo: in.Tipo}, nil
}

type fakeExtractor struct {
	result *extraction.Result
	err    error
	inputs []extraction.Input
}

func (f *fakeExtractor) Extract(_ context.Context, in extraction.Input, _ []string) (*extraction.Result, error) {
	f.inputs = append(f.inputs, in)
	return f.result, f.err
}

const chatID int64 = 42

type testBot struct {
	h          *Handler
	msgr       *fakeMessenger
	sessions   *session.MemoryStore
	operations *fakeOperations
	extractor  *fakeExtractor
	users      *fakeUsers
	food       model.Category
	transport  model.Category
}

func newTestBot() *testBot {
	food := model.Category{ID: uuid.New(), Nombre: "Comida y Bebida"}
	transport := model.Category{ID: uuid.New(), Nombre: "Transporte"}
	tb := &testBot{
		msgr:       &fakeMessenger{files: map[string][]byte{}},
		sessions:   session.NewMemoryStore(),
		operations: &fakeOperations{},
		extractor:  &fakeExtractor{},
		users:      &fakeUsers{byTelegram: map[int64]*model.User{chatID: {ID: uuid.New(), Nombre: "Ana"}}},
		food:       food,
		transport:  transport,
	}
	tb.h = NewHandler(tb.msgr, Services{
		Users:      tb.users,
		Categories: &fakeCategories{categories: []model.Category{food, transport}},
		Wallets:    &fakeWallets{wallet: model.Wallet{ID: uuid.New(), Nombre: "Principal"}},
		Operations: tb.operations,
		Extractor:  tb.extractor,
	}, tb.sessions, logger.Discard())
	return tb
}

func (tb *testBot) text(t *testing.T, text string) {
	t.Helper()
	m := &telebot.Message{Chat: &telebot.Chat{ID: chatID}, Sender: &telebot.User{ID: chatID}, Text: text}
	require.NoError(t, tb.h.handleText(context.Background(), m))
}

func (tb *testBot) tap(t *testing.T, data string) {
	t.Helper()
	cb := &telebot.Callback{
		Sender:  &telebot.User{ID: chatID},
		Message: &telebot.Message{Chat: &telebot.Chat{ID: chatID}},
		Data:    "\f" + data,
	}
	require.NoError(t, tb.h.handleCallback(context.Background(), cb))
}

func (tb *testBot) state(t *testing.T) session.State {
	t.Helper()
	st, err := tb.sessions.Get(context.Background(), chatID)
	require.NoError(t, err)
	return st
}

func amount(v float64) *float64 { return &v }

func fullDraft() session.Draft {
	return session.Draft{Monto: amount(25), Fecha: "01-08-2025", Categoria: "Comida y Bebida", Descripcion: "comida"}
}

func TestTextToConfirmedExpense(t *testing.T) {
	tb := newTestBot()
	tb.extractor.result = &extraction.Result{
		Monto: amount(25), Fecha: "01-08-2025", Categoria: "comida y bebida", Descripcion: "Compra de comida",
	}

	tb.text(t, "Compré comida por $25 el 1 de agosto")

	draftMsg := tb.msgr.last()
	assert.Contains(t, draftMsg.text, "$25.00")
	assert.Contains(t, draftMsg.text, "01-08-2025")
	assert.Contains(t, draftMsg.text, "Comida y Bebida")
	assert.Contains(t, draftMsg.text, "Compra de comida")
	require.NotNil(t, draftMsg.markup)
	require.Len(t, draftMsg.markup.InlineKeyboard, 1)
	assert.Len(t, draftMsg.markup.InlineKeyboard[0], 3)

	st, ok := tb.state(t).(session.Collecting)
	require.True(t, ok)
	assert.Equal(t, draftMsg.id, st.MessageID)

	tb.tap(t, cbConfirm)

	require.Len(t, tb.operations.created, 1)
	op := tb.operations.created[0]
	assert.Equal(t, model.OperationExpense, op.Tipo)
	assert.Equal(t, 25.0, op.Monto)
	assert.Equal(t, tb.food.ID, op.CategoriaID)
	assert.Equal(t, time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC), op.Fecha)
	assert.Equal(t, session.KindIdle, tb.state(t).Kind())

	require.NotEmpty(t, tb.msgr.edits)
	closed := tb.msgr.edits[len(tb.msgr.edits)-1]
	assert.Equal(t, draftMsg.id, closed.id)
	assert.Contains(t, closed.text, msgConfirmedTitle)
	assert.Nil(t, closed.markup)
}

func TestEditAmountRepromptsOnInvalidInput(t *testing.T) {
	tb := newTestBot()
	ctx := context.Background()
	require.NoError(t, tb.sessions.Set(ctx, chatID, session.Collecting{Draft: fullDraft(), MessageID: 7}))

	tb.tap(t, cbEdit)
	_, ok := tb.state(t).(session.Editing)
	require.True(t, ok)
	assert.Contains(t, tb.msgr.deleted, 7)

	tb.tap(t, cbEditMonto)
	waiting, ok := tb.state(t).(session.WaitingForValue)
	require.True(t, ok)
	assert.Equal(t, session.FieldMonto, waiting.Field)
	assert.Equal(t, msgAskMonto, tb.msgr.last().text)

	tb.text(t, "abc")
	assert.Equal(t, msgBadMonto, tb.msgr.last().text)
	assert.Equal(t, waiting, tb.state(t))

	tb.text(t, "15.5")
	editing, ok := tb.state(t).(session.Editing)
	require.True(t, ok)
	assert.Equal(t, 15.5, *editing.Draft.Monto)
	assert.Equal(t, 25.0, *editing.Original.Monto)

	menu := tb.msgr.last()
	assert.Equal(t, editing.MenuMessageID, menu.id)
	assert.Contains(t, menu.text, "$15.50")
	require.NotNil(t, menu.markup)
	assert.Len(t, menu.markup.InlineKeyboard, 3)
	assert.Contains(t, tb.msgr.deleted, waiting.PromptMessageID)
}

func TestCancelEditRestoresOriginalDraft(t *testing.T) {
	tb := newTestBot()
	ctx := context.Background()
	require.NoError(t, tb.sessions.Set(ctx, chatID, session.Collecting{Draft: fullDraft(), MessageID: 7}))

	tb.tap(t, cbEdit)
	tb.tap(t, cbEditDescripcion)
	tb.text(t, "  cena  ")
	editing := tb.state(t).(session.Editing)
	assert.Equal(t, "cena", editing.Draft.Descripcion)

	tb.tap(t, cbCancelEdit)
	c, ok := tb.state(t).(session.Collecting)
	require.True(t, ok)
	assert.Equal(t, fullDraft(), c.Draft)
	assert.Equal(t, tb.msgr.last().id, c.MessageID)
	assert.Contains(t, tb.msgr.deleted, editing.MenuMessageID)
}

func TestConfirmEditKeepsChanges(t *testing.T) {
	tb := newTestBot()
	ctx := context.Background()
	require.NoError(t, tb.sessions.Set(ctx, chatID, session.Collecting{Draft: fullDraft(), MessageID: 7}))

	tb.tap(t, cbEdit)
	tb.tap(t, cbEditFecha)
	tb.text(t, "31-02-2025")
	assert.Equal(t, msgBadFecha, tb.msgr.last().text)
	tb.text(t, "05/09/2025")

	tb.tap(t, cbEditCategoria)
	waiting := tb.state(t).(session.WaitingForValue)
	assert.Equal(t, session.FieldCategoria, waiting.Field)
	tb.text(t, "Transporte")
	assert.Equal(t, msgPickCategoria, tb.msgr.last().text)
	tb.tap(t, cbSelectCategory+":"+uuid.NewString())
	assert.Equal(t, msgUnknownCateg, tb.msgr.last().text)
	tb.tap(t, cbSelectCategory+":"+tb.transport.ID.String())

	tb.tap(t, cbConfirmEdit)
	c, ok := tb.state(t).(session.Collecting)
	require.True(t, ok)
	assert.Equal(t, "05-09-2025", c.Draft.Fecha)
	assert.Equal(t, "Transporte", c.Draft.Categoria)
	assert.Contains(t, tb.msgr.last().text, msgDraftTitle)
}

func TestConfirmListsMissingFields(t *testing.T) {
	tb := newTestBot()
	tb.extractor.result = &extraction.Result{Monto: amount(10)}

	tb.text(t, "gasté 10")
	tb.tap(t, cbConfirm)

	assert.Empty(t, tb.operations.created)
	last := tb.msgr.last().text
	assert.Contains(t, last, "Fecha")
	assert.Contains(t, last, "Categoría")
	assert.Contains(t, last, "Descripción")
	assert.Equal(t, session.KindCollecting, tb.state(t).Kind())
}

func TestDraftAccumulatesAcrossMessages(t *testing.T) {
	tb := newTestBot()
	tb.extractor.result = &extraction.Result{Monto: amount(10), Categoria: "Inexistente"}
	tb.text(t, "gasté 10")
	first := tb.state(t).(session.Collecting)
	assert.Empty(t, first.Draft.Categoria)

	tb.extractor.result = nil
	tb.text(t, "no sé")
	second := tb.state(t).(session.Collecting)
	assert.Equal(t, 10.0, *second.Draft.Monto)
	assert.Equal(t, first.MessageID, second.MessageID)
	assert.NotEmpty(t, tb.msgr.edits)
}

func TestCancelDiscardsSession(t *testing.T) {
	tb := newTestBot()
	ctx := context.Background()
	require.NoError(t, tb.sessions.Set(ctx, chatID, session.Collecting{Draft: fullDraft(), MessageID: 7}))

	tb.tap(t, cbCancel)
	assert.Equal(t, session.KindIdle, tb.state(t).Kind())
	assert.Equal(t, msgCancelled, tb.msgr.last().text)
	assert.Contains(t, tb.msgr.edits[0].text, msgCancelledTitle)
	assert.Empty(t, tb.operations.created)
}

func TestExtractionFailureKeepsSession(t *testing.T) {
	tb := newTestBot()
	ctx := context.Background()
	before := session.Collecting{Draft: fullDraft(), MessageID: 7}
	require.NoError(t, tb.sessions.Set(ctx, chatID, before))
	tb.extractor.err = errors.New("timeout")

	m := &telebot.Message{Chat: &telebot.Chat{ID: chatID}, Sender: &telebot.User{ID: chatID}, Text: "hola"}
	assert.Error(t, tb.h.handleText(ctx, m))
	assert.Equal(t, msgError, tb.msgr.last().text)
	assert.Equal(t, before, tb.state(t))
}

func TestUnlinkedUserIsAskedForContact(t *testing.T) {
	tb := newTestBot()
	ctx := context.Background()
	m := &telebot.Message{Chat: &telebot.Chat{ID: 7}, Sender: &telebot.User{ID: 7}, Text: "gasté 10"}

	require.NoError(t, tb.h.handleText(ctx, m))
	assert.Equal(t, msgNotLinked, tb.msgr.last().text)
	assert.Empty(t, tb.extractor.inputs)

	contact := &telebot.Message{
		Chat:    &telebot.Chat{ID: 7},
		Sender:  &telebot.User{ID: 7},
		Contact: &telebot.Contact{PhoneNumber: "5493515550101", UserID: 7},
	}
	require.NoError(t, tb.h.handleContact(ctx, contact))
	assert.Contains(t, tb.msgr.last().text, "Ana")
	assert.Contains(t, tb.users.byTelegram, int64(7))
}

func TestVoiceMessageIsDownloaded(t *testing.T) {
	tb := newTestBot()
	tb.msgr.files["voice-1"] = []byte("ogg")
	tb.extractor.result = &extraction.Result{Monto: amount(3)}

	m := &telebot.Message{
		Chat:   &telebot.Chat{ID: chatID},
		Sender: &telebot.User{ID: chatID},
		Voice:  &telebot.Voice{File: telebot.File{FileID: "voice-1"}, MIME: "audio/ogg"},
	}
	require.NoError(t, tb.h.handleVoice(context.Background(), m))
	require.Len(t, tb.extractor.inputs, 1)
	assert.Equal(t, extraction.KindAudio, tb.extractor.inputs[0].Kind)
	assert.Equal(t, []byte("ogg"), tb.extractor.inputs[0].Data)
}

func TestCategoryKeyboardFitsCallbackLimit(t *testing.T) {
	categories := []model.Category{
		{ID: uuid.New(), Nombre: "Educación y capacitación profesional de los chicos 2026"},
		{ID: uuid.New(), Nombre: strings.Repeat("ñ", 80)},
		{ID: uuid.New(), Nombre: "Ocio"},
	}
	markup := categoryKeyboard(categories)
	require.Len(t, markup.InlineKeyboard, 2)

	var buttons []telebot.InlineButton
	for _, row := range markup.InlineKeyboard {
		buttons = append(buttons, row...)
	}
	require.Len(t, buttons, len(categories))
	for i, b := range buttons {
		data := "\f" + b.Unique
		if b.Data != "" {
			data += "|" + b.Data
		}
		assert.LessOrEqual(t, len(data), 64, b.Text)
		assert.Equal(t, categories[i].Nombre, b.Text)
		assert.Equal(t, cbSelectCategory+":"+categories[i].ID.String(), b.Unique)
	}
}

func TestChatLocksSerializeAndAreReleased(t *testing.T) {
	h := newTestBot().h

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := h.lockChat(chatID)
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside.Load())

	for id := int64(1); id <= 100; id++ {
		h.lockChat(id)()
	}
	h.locksMu.Lock()
	defer h.locksMu.Unlock()
	assert.Empty(t, h.locks)
}

func TestDraftFromCleansExtractedText(t *testing.T) {
	d := draftFrom(&extraction.Result{
		Categoria:   "  Transporte \n",
		Descripcion: "\t" + strings.Repeat("á", maxDescripcion+20) + "  ",
	})
	assert.Equal(t, "Transporte", d.Categoria)
	assert.Equal(t, maxDescripcion, len([]rune(d.Descripcion)))
	assert.True(t, strings.HasPrefix(d.Descripcion, "á"))

	d = draftFrom(&extraction.Result{Descripcion: "   "})
	assert.Empty(t, d.Descripcion)
	assert.Contains(t, d.Missing(), session.FieldDescripcion)
}

func TestParseMonto(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12,5", 12.5, true},
		{"12.5", 12.5, true},
		{" 15.555 ", 15.56, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"0.001", 0, false},
		{"abc", 0, false},
		{"999999999999,99", 999999999999.99, true},
		{"1000000000000", 0, false},
		{"1e15", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseMonto(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseFecha(t *testing.T) {
	valid := map[string]string{
		"01-08-2025": "01-08-2025",
		"29.02.2024": "29-02-2024",
		"31/12/2025": "31-12-2025",
	}
	for in, want := range valid {
		got, parsed, ok := parseFecha(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got)
		day, _ := strconv.Atoi(want[:2])
		month, _ := strconv.Atoi(want[3:5])
		year, _ := strconv.Atoi(want[6:])
		assert.Equal(t, day, parsed.Day())
		assert.Equal(t, time.Month(month), parsed.Month())
		assert.Equal(t, year, parsed.Year())
	}

	for _, in := range []string{"31-02-2025", "29-02-2025", "00-01-2025", "01-13-2025", "1-8-2025", "01-08/2025", "2025-08-01", "hoy"} {
		_, _, ok := parseFecha(in)
		assert.False(t, ok, in)
	}
}
