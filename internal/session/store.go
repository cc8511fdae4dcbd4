package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Store keeps one state per chat. Get returns Idle for unknown chats.
type Store interface {
	Get(ctx context.Context, chatID int64) (State, error)
	Set(ctx context.Context, chatID int64, s State) error
	Delete(ctx context.Context, chatID int64) error
}

type MemoryStore struct {
	mu     sync.RWMutex
	states map[int64]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]State)}
}

func (m *MemoryStore) Get(_ context.Context, chatID int64) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.states[chatID]; ok {
		return s, nil
	}
	return Idle{}, nil
}

func (m *MemoryStore) Set(ctx context.Context, chatID int64, s State) error {
	if s == nil || s.Kind() == KindIdle {
		return m.Delete(ctx, chatID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[chatID] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, chatID)
	return nil
}

// Record is the flat, storable form of a State.
type Record struct {
	Kind            Kind      `firestore:"kind"`
	Draft           DraftDoc  `firestore:"draft"`
	Original        DraftDoc  `firestore:"original"`
	Field           Field     `firestore:"field,omitempty"`
	MessageID       int       `firestore:"messageId"`
	MenuMessageID   int       `firestore:"menuMessageId"`
	PromptMessageID int       `firestore:"promptMessageId"`
	UpdatedAt       time.Time `firestore:"updatedAt"`
}

type DraftDoc struct {
	Monto       *float64 `firestore:"monto"`
	Fecha       string   `firestore:"fecha"`
	Categoria   string   `firestore:"categoria"`
	Descripcion string   `firestore:"descripcion"`
}

func toDoc(d Draft) DraftDoc {
	return DraftDoc{Monto: d.Monto, Fecha: d.Fecha, Categoria: d.Categoria, Descripcion: d.Descripcion}
}

func (d DraftDoc) draft() Draft {
	return Draft{Monto: d.Monto, Fecha: d.Fecha, Categoria: d.Categoria, Descripcion: d.Descripcion}
}

func ToRecord(s State) Record {
	switch st := s.(type) {
	case Collecting:
		return Record{Kind: KindCollecting, Draft: toDoc(st.Draft), MessageID: st.MessageID}
	case Editing:
		return Record{
			Kind:          KindEditing,
			Draft:         toDoc(st.Draft),
			Original:      toDoc(st.Original),
			MessageID:     st.MessageID,
			MenuMessageID: st.MenuMessageID,
		}
	case WaitingForValue:
		return Record{
			Kind:            KindWaiting,
			Draft:           toDoc(st.Editing.Draft),
			Original:        toDoc(st.Editing.Original),
			Field:           st.Field,
			MessageID:       st.Editing.MessageID,
			MenuMessageID:   st.Editing.MenuMessageID,
			PromptMessageID: st.PromptMessageID,
		}
	}
	return Record{Kind: KindIdle}
}

func FromRecord(r Record) (State, error) {
	editing := Editing{
		Draft:         r.Draft.draft(),
		Original:      r.Original.draft(),
		MessageID:     r.MessageID,
		MenuMessageID: r.MenuMessageID,
	}
	switch r.Kind {
	case KindIdle, "":
		return Idle{}, nil
	case KindCollecting:
		return Collecting{Draft: r.Draft.draft(), MessageID: r.MessageID}, nil
	case KindEditing:
		return editing, nil
	case KindWaiting:
		if !r.Field.Valid() {
			return nil, fmt.Errorf("stored session has unknown field %q", r.Field)
		}
		return WaitingForValue{Editing: editing, Field: r.Field, PromptMessageID: r.PromptMessageID}, nil
	}
	return nil, fmt.Errorf("stored session has unknown kind %q", r.Kind)
}
