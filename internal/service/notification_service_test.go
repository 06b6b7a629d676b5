package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/event"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/model"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/notify"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []model.Notification
}

func (r *fakeNotificationRepo) DeleteMatching(_ context.Context, notificationType, senderID, recipientID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []model.Notification
	var deleted int64
	for _, n := range r.notifications {
		if n.Type == notificationType && n.SenderID == senderID && n.RecipientID == recipientID {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	r.notifications = kept
	return deleted, nil
}

func (r *fakeNotificationRepo) Insert(_ context.Context, notification *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = primitive.NewObjectID()
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *fakeNotificationRepo) ListForRecipient(_ context.Context, recipientID string) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func newTestNotificationService(repo *fakeNotificationRepo, pusher *fakePusher) *NotificationService {
	s := NewNotificationService(repo, zap.NewNop())
	if pusher != nil {
		s.SetPusher(pusher)
	}
	return s
}

func TestNotificationSelfSuppressed(t *testing.T) {
	store := &fakeNotificationRepo{}
	s := newTestNotificationService(store, newFakePusher())

	n, err := s.CreateAndSend(context.Background(), notify.TypeLikePost, "alice", "alice", notify.Data{SenderName: "Alice"})
	if err != nil {
		t.Fatalf("self-notification must be a silent no-op, got %v", err)
	}
	if n != nil {
		t.Errorf("expected nil notification, got %+v", n)
	}
	if len(store.notifications) != 0 {
		t.Errorf("nothing may be persisted for a self-notification, got %d rows", len(store.notifications))
	}
}

func TestNotificationCollapsesRepeats(t *testing.T) {
	store := &fakeNotificationRepo{}
	s := newTestNotificationService(store, nil)

	for i := 0; i < 3; i++ {
		if _, err := s.CreateAndSend(context.Background(), notify.TypeLikePost, "alice", "bob", notify.Data{SenderName: "Alice", PostID: "p1"}); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	rows, _ := store.ListForRecipient(context.Background(), "bob")
	if len(rows) != 1 {
		t.Fatalf("repeated identical actions must collapse to one row, got %d", len(rows))
	}

	// A different type for the same pair is its own row.
	if _, err := s.CreateAndSend(context.Background(), notify.TypeFollowUser, "alice", "bob", notify.Data{SenderName: "Alice"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	rows, _ = store.ListForRecipient(context.Background(), "bob")
	if len(rows) != 2 {
		t.Errorf("distinct types must not collapse, got %d rows", len(rows))
	}
}

func TestNotificationUnknownType(t *testing.T) {
	store := &fakeNotificationRepo{}
	s := newTestNotificationService(store, nil)

	_, err := s.CreateAndSend(context.Background(), notify.Type("mystery"), "alice", "bob", notify.Data{})
	if !errors.Is(err, notify.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if len(store.notifications) != 0 {
		t.Errorf("nothing may be persisted for an unknown type")
	}
}

func TestNotificationPushedToRecipient(t *testing.T) {
	store := &fakeNotificationRepo{}
	pusher := newFakePusher("bob")
	s := newTestNotificationService(store, pusher)

	n, err := s.CreateAndSend(context.Background(), notify.TypeCommentPost, "alice", "bob", notify.Data{SenderName: "Alice", PostID: "p1", CommentID: "c1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if n == nil || n.Message == "" {
		t.Fatalf("expected rendered notification, got %+v", n)
	}

	names := pusher.eventNames("bob")
	if len(names) != 1 || names[0] != event.EventNotification {
		t.Errorf("expected one notification push, got %v", names)
	}
}

func TestNotificationPersistsWhenRecipientOffline(t *testing.T) {
	store := &fakeNotificationRepo{}
	pusher := newFakePusher() // bob offline
	s := newTestNotificationService(store, pusher)

	if _, err := s.CreateAndSend(context.Background(), notify.TypeFollowUser, "alice", "bob", notify.Data{SenderName: "Alice"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rows, _ := store.ListForRecipient(context.Background(), "bob")
	if len(rows) != 1 {
		t.Errorf("offline recipient still gets a persisted row, got %d", len(rows))
	}
}
