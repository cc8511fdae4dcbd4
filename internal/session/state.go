// Package session models the bot conversation as explicit states per chat.
package session

import (
	"errors"
	"fmt"
)

type Field string

const (
	FieldMonto       Field = "monto"
	FieldFecha       Field = "fecha"
	FieldCategoria   Field = "categoria"
	FieldDescripcion Field = "descripcion"
)

// Fields lists every draft field in display order.
var Fields = []Field{FieldMonto, FieldFecha, FieldCategoria, FieldDescripcion}

func (f Field) Valid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Draft is the operation being assembled. Fecha is DD-MM-YYYY.
type Draft struct {
	Monto       *float64
	Fecha       string
	Categoria   string
	Descripcion string
}

// Merge overwrites d with every non-empty field of other.
func (d Draft) Merge(other Draft) Draft {
	if other.Monto != nil {
		m := *other.Monto
		d.Monto = &m
	}
	if other.Fecha != "" {
		d.Fecha = other.Fecha
	}
	if other.Categoria != "" {
		d.Categoria = other.Categoria
	}
	if other.Descripcion != "" {
		d.Descripcion = other.Descripcion
	}
	return d
}

// Missing lists the fields still empty.
func (d Draft) Missing() []Field {
	var missing []Field
	if d.Monto == nil {
		missing = append(missing, FieldMonto)
	}
	if d.Fecha == "" {
		missing = append(missing, FieldFecha)
	}
	if d.Categoria == "" {
		missing = append(missing, FieldCategoria)
	}
	if d.Descripcion == "" {
		missing = append(missing, FieldDescripcion)
	}
	return missing
}

func (d Draft) Complete() bool {
	return len(d.Missing()) == 0
}

type Kind string

const (
	KindIdle       Kind = "idle"
	KindCollecting Kind = "collecting"
	KindEditing    Kind = "editing"
	KindWaiting    Kind = "waiting"
)

// State is one of Idle, Collecting, Editing or WaitingForValue.
type State interface {
	Kind() Kind
	isState()
}

type Idle struct{}

// Collecting holds a draft shown in message MessageID with confirm/edit/cancel buttons.
type Collecting struct {
	Draft     Draft
	MessageID int
}

// Editing shows the field menu in MenuMessageID. Original is the draft before editing started.
type Editing struct {
	Draft         Draft
	Original      Draft
	MessageID     int
	MenuMessageID int
}

// WaitingForValue expects the next input to carry Field.
type WaitingForValue struct {
	Editing         Editing
	Field           Field
	PromptMessageID int
}

func (Idle) Kind() Kind            { return KindIdle }
func (Collecting) Kind() Kind      { return KindCollecting }
func (Editing) Kind() Kind         { return KindEditing }
func (WaitingForValue) Kind() Kind { return KindWaiting }

func (Idle) isState()            {}
func (Collecting) isState()      {}
func (Editing) isState()         {}
func (WaitingForValue) isState() {}

var ErrInvalidTransition = errors.New("invalid session transition")

// Accumulate merges extracted into the current draft and shows it in messageID.
// Only Idle and Collecting accept new extractions.
func Accumulate(s State, extracted Draft, messageID int) (Collecting, error) {
	switch st := s.(type) {
	case nil, Idle:
		return Collecting{Draft: Draft{}.Merge(extracted), MessageID: messageID}, nil
	case Collecting:
		return Collecting{Draft: st.Draft.Merge(extracted), MessageID: messageID}, nil
	}
	return Collecting{}, fmt.Errorf("%w: accumulate from %s", ErrInvalidTransition, s.Kind())
}

// Edit opens the field menu and snapshots the draft for a later rollback.
func (c Collecting) Edit(menuMessageID int) Editing {
	return Editing{Draft: c.Draft, Original: c.Draft, MessageID: c.MessageID, MenuMessageID: menuMessageID}
}

// Await asks for a new value of field.
func (e Editing) Await(field Field, promptMessageID int) (WaitingForValue, error) {
	if !field.Valid() {
		return WaitingForValue{}, fmt.Errorf("%w: unknown field %q", ErrInvalidTransition, field)
	}
	return WaitingForValue{Editing: e, Field: field, PromptMessageID: promptMessageID}, nil
}

// Confirm keeps the edited draft, now shown in messageID.
func (e Editing) Confirm(messageID int) Collecting {
	return Collecting{Draft: e.Draft, MessageID: messageID}
}

// Cancel restores the draft as it was when editing started.
func (e Editing) Cancel(messageID int) Collecting {
	return Collecting{Draft: e.Original, MessageID: messageID}
}

// Resolve stores draft, which carries the new value, and goes back to the menu in menuMessageID.
func (w WaitingForValue) Resolve(draft Draft, menuMessageID int) Editing {
	e := w.Editing
	e.Draft = draft
	e.MenuMessageID = menuMessageID
	return e
}

// Back leaves the wait state without changes.
func (w WaitingForValue) Back() Editing {
	return w.Editing
}

// DraftOf returns the draft carried by s, if any.
func DraftOf(s State) (Draft, bool) {
	switch st := s.(type) {
	case Collecting:
		return st.Draft, true
	case Editing:
		return st.Draft, true
	case WaitingForValue:
		return st.Editing.Draft, true
	}
	return Draft{}, false
}
