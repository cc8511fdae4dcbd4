package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const sessionsCollection = "bot_sessions"

// FirestoreStore keeps sessions across restarts, one document per chat.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (f *FirestoreStore) doc(chatID int64) *firestore.DocumentRef {
	return f.client.Collection(sessionsCollection).Doc(strconv.FormatInt(chatID, 10))
}

func (f *FirestoreStore) Get(ctx context.Context, chatID int64) (State, error) {
	snap, err := f.doc(chatID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Idle{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading session: %w", err)
	}
	var rec Record
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("error decoding session: %w", err)
	}
	return FromRecord(rec)
}

func (f *FirestoreStore) Set(ctx context.Context, chatID int64, s State) error {
	if s == nil || s.Kind() == KindIdle {
		return f.Delete(ctx, chatID)
	}
	rec := ToRecord(s)
	rec.UpdatedAt = time.Now()
	if _, err := f.doc(chatID).Set(ctx, rec); err != nil {
		return fmt.Errorf("error saving session: %w", err)
	}
	return nil
}

func (f *FirestoreStore) Delete(ctx context.Context, chatID int64) error {
	if _, err := f.doc(chatID).Delete(ctx); err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}
