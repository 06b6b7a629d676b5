package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/db"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/event"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/model"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ---- fakes ----

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*model.User)}
	for _, id := range ids {
		r.users[id] = &model.User{UserID: id, Name: "user " + id}
	}
	return r
}

func (r *fakeUserRepo) GetUser(_ context.Context, userID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, repo.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (r *fakeUserRepo) FindMissing(_ context.Context, userIDs []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var missing []string
	seen := make(map[string]struct{})
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := r.users[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *fakeUserRepo) FindRefs(_ context.Context, userIDs []string) (map[string]model.UserRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	refs := make(map[string]model.UserRef)
	for _, id := range userIDs {
		if u, ok := r.users[id]; ok {
			refs[id] = u.Ref()
		}
	}
	return refs, nil
}

func (r *fakeUserRepo) SetOnline(_ context.Context, userID string, online bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repo.ErrUserNotFound
	}
	u.IsOnline = online
	return nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.UserID] = user
	return nil
}

// fakeConversationRepo emulates the unique pair-key index: concurrent
// private creates for the same pair converge on one document.
type fakeConversationRepo struct {
	mu            sync.Mutex
	private       map[string]*model.Conversation // pair key -> conversation
	groups        []*model.Conversation
	privateInsert int
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{private: make(map[string]*model.Conversation)}
}

func (r *fakeConversationRepo) FindPrivate(_ context.Context, userA, userB string) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.private[model.PairKeyFor(userA, userB)]; ok {
		return c, nil
	}
	return nil, repo.ErrConversationNotFound
}

func (r *fakeConversationRepo) CreatePrivate(_ context.Context, userA, userB string) (*model.Conversation, error) {
	key := model.PairKeyFor(userA, userB)
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.private[key]; ok {
		// Same outcome as losing the duplicate-key race.
		return existing, nil
	}
	c := &model.Conversation{
		ID:               primitive.NewObjectID(),
		ConversationType: model.ConversationPrivate,
		PairKey:          key,
		ParticipantIDs:   []string{userA, userB},
	}
	r.private[key] = c
	r.privateInsert++
	return c, nil
}

func (r *fakeConversationRepo) CreateGroup(_ context.Context, participantIDs []string, name string) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := &model.Conversation{
		ID:               primitive.NewObjectID(),
		ConversationType: model.ConversationGroup,
		Name:             name,
		ParticipantIDs:   participantIDs,
	}
	r.groups = append(r.groups, c)
	return c, nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, conversationID string) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.private {
		if c.ID.Hex() == conversationID {
			return c, nil
		}
	}
	for _, c := range r.groups {
		if c.ID.Hex() == conversationID {
			return c, nil
		}
	}
	return nil, repo.ErrConversationNotFound
}

func (r *fakeConversationRepo) Rename(ctx context.Context, conversationID, name string) (*model.Conversation, error) {
	c, err := r.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Name = name
	return c, nil
}

func (r *fakeConversationRepo) Touch(ctx context.Context, conversationID string) error {
	_, err := r.GetByID(ctx, conversationID)
	return err
}

func (r *fakeConversationRepo) ListForUser(_ context.Context, userID string) ([]model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Conversation
	for _, c := range r.private {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	for _, c := range r.groups {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

// fakeMessageRepo keeps the forward-only status semantics of the real
// store: UpdateStatus never lowers a status.
type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[string]*model.Message // messageID -> message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string]*model.Message)}
}

func (r *fakeMessageRepo) Insert(_ context.Context, msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = primitive.NewObjectID()
	copied := *msg
	r.messages[msg.MessageID] = &copied
	return nil
}

func (r *fakeMessageRepo) GetByMessageID(_ context.Context, messageID string) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[messageID]
	if !ok {
		return nil, repo.ErrMessageNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, conversationID string, _ int64) (*db.PaginatedResult[model.Message], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var data []model.Message
	for _, m := range r.messages {
		if m.ConversationID.Hex() == conversationID {
			data = append(data, *m)
		}
	}
	return &db.PaginatedResult[model.Message]{Data: data, Total: int64(len(data))}, nil
}

func (r *fakeMessageRepo) UpdateStatus(_ context.Context, messageID string, status model.MessageStatus) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[messageID]
	if !ok {
		return nil, repo.ErrMessageNotFound
	}
	if status > m.Status {
		m.Status = status
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMessageRepo) MarkConversationSeen(_ context.Context, conversationID, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var modified int64
	for _, m := range r.messages {
		if m.ConversationID.Hex() == conversationID && m.ReceiverID == userID && m.Status < model.StatusSeen {
			m.Status = model.StatusSeen
			modified++
		}
	}
	return modified, nil
}

func (r *fakeMessageRepo) UnreadSenders(_ context.Context, conversationID, receiverID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	var senders []string
	for _, m := range r.messages {
		if m.ConversationID.Hex() == conversationID && m.ReceiverID == receiverID && m.Status < model.StatusSeen {
			if _, ok := seen[m.SenderID]; !ok {
				seen[m.SenderID] = struct{}{}
				senders = append(senders, m.SenderID)
			}
		}
	}
	return senders, nil
}

// fakePusher records pushed events per user and per room.
type fakePusher struct {
	mu         sync.Mutex
	online     map[string]bool
	userEvents map[string][]event.WsEvent
	roomEvents map[string][]event.WsEvent
	subs       map[string][]string // conversationID -> userIDs
}

func newFakePusher(onlineUsers ...string) *fakePusher {
	p := &fakePusher{
		online:     make(map[string]bool),
		userEvents: make(map[string][]event.WsEvent),
		roomEvents: make(map[string][]event.WsEvent),
		subs:       make(map[string][]string),
	}
	for _, u := range onlineUsers {
		p.online[u] = true
	}
	return p
}

func (p *fakePusher) SendToUser(userID string, ev event.WsEvent) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.userEvents[userID] = append(p.userEvents[userID], ev)
	return p.online[userID]
}

func (p *fakePusher) SendToRoom(conversationID string, ev event.WsEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roomEvents[conversationID] = append(p.roomEvents[conversationID], ev)
}

func (p *fakePusher) SubscribeUser(conversationID, userID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs[conversationID] = append(p.subs[conversationID], userID)
}

func (p *fakePusher) IsOnline(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[userID]
}

func (p *fakePusher) eventNames(userID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var names []string
	for _, ev := range p.userEvents[userID] {
		names = append(names, ev.Event)
	}
	return names
}

func newTestChatService(users *fakeUserRepo, conversations *fakeConversationRepo, messages *fakeMessageRepo, pusher *fakePusher) *ChatService {
	s := NewChatService(users, conversations, messages, zap.NewNop())
	if pusher != nil {
		s.SetPusher(pusher)
	}
	return s
}

// ---- conversation resolution ----

func TestResolvePrivateReusesConversation(t *testing.T) {
	conversations := newFakeConversationRepo()
	s := newTestChatService(newFakeUserRepo("alice", "bob"), conversations, newFakeMessageRepo(), nil)

	first, err := s.ResolvePrivate(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}

	// Reversed order must land on the same conversation.
	second, err := s.ResolvePrivate(context.Background(), "bob", "alice")
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected one conversation for the pair, got %s and %s", first.ID.Hex(), second.ID.Hex())
	}
	if conversations.privateInsert != 1 {
		t.Errorf("expected exactly one insert, got %d", conversations.privateInsert)
	}
}

func TestResolvePrivateConcurrent(t *testing.T) {
	conversations := newFakeConversationRepo()
	s := newTestChatService(newFakeUserRepo("alice", "bob"), conversations, newFakeMessageRepo(), nil)

	const workers = 16
	results := make([]*model.Conversation, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := s.ResolvePrivate(context.Background(), "alice", "bob")
			if err != nil {
				t.Errorf("resolve %d failed: %v", i, err)
				return
			}
			results[i] = c
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] == nil || results[0] == nil {
			t.Fatal("missing result")
		}
		if results[i].ID != results[0].ID {
			t.Fatalf("resolver produced different conversations under concurrency: %s vs %s",
				results[0].ID.Hex(), results[i].ID.Hex())
		}
	}
	if conversations.privateInsert != 1 {
		t.Errorf("expected exactly one insert, got %d", conversations.privateInsert)
	}
}

func TestResolvePrivateUnknownParticipants(t *testing.T) {
	s := newTestChatService(newFakeUserRepo("alice"), newFakeConversationRepo(), newFakeMessageRepo(), nil)

	_, err := s.ResolvePrivate(context.Background(), "alice", "ghost")
	ipe, ok := IsInvalidParticipant(err)
	if !ok {
		t.Fatalf("expected InvalidParticipantError, got %v", err)
	}
	if len(ipe.UserIDs) != 1 || ipe.UserIDs[0] != "ghost" {
		t.Errorf("expected [ghost], got %v", ipe.UserIDs)
	}
}

func TestResolveGroupTooSmall(t *testing.T) {
	s := newTestChatService(newFakeUserRepo("a", "b"), newFakeConversationRepo(), newFakeMessageRepo(), nil)

	// Duplicates collapse before the size check.
	_, err := s.ResolveGroup(context.Background(), []string{"a", "b", "a"}, "team")
	if !errors.Is(err, ErrGroupTooSmall) {
		t.Fatalf("expected ErrGroupTooSmall, got %v", err)
	}
}

func TestResolveGroupListsAllUnknowns(t *testing.T) {
	s := newTestChatService(newFakeUserRepo("a"), newFakeConversationRepo(), newFakeMessageRepo(), nil)

	_, err := s.ResolveGroup(context.Background(), []string{"a", "x", "y"}, "team")
	ipe, ok := IsInvalidParticipant(err)
	if !ok {
		t.Fatalf("expected InvalidParticipantError, got %v", err)
	}
	if len(ipe.UserIDs) != 2 {
		t.Errorf("expected both unknown ids reported, got %v", ipe.UserIDs)
	}
}

// ---- message pipeline ----

func TestSendMessageValidation(t *testing.T) {
	s := newTestChatService(newFakeUserRepo("alice", "bob"), newFakeConversationRepo(), newFakeMessageRepo(), nil)

	if _, err := s.SendMessage(context.Background(), model.SendMessagePayload{
		SenderID: "alice", ReceiverID: "bob",
	}); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("expected ErrEmptyContent, got %v", err)
	}

	if _, err := s.SendMessage(context.Background(), model.SendMessagePayload{
		SenderID: "alice", Content: "hi",
	}); !errors.Is(err, ErrReceiverRequired) {
		t.Errorf("expected ErrReceiverRequired, got %v", err)
	}
}

func TestSendMessageOfflineReceiver(t *testing.T) {
	messages := newFakeMessageRepo()
	pusher := newFakePusher() // nobody online
	s := newTestChatService(newFakeUserRepo("alice", "bob"), newFakeConversationRepo(), messages, pusher)

	result, err := s.SendMessage(context.Background(), model.SendMessagePayload{
		SenderID: "alice", ReceiverID: "bob", Content: "hello",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if result.Delivery != DeliveryStored {
		t.Errorf("expected stored delivery, got %s", result.Delivery)
	}

	stored, err := messages.GetByMessageID(context.Background(), result.Message.MessageID)
	if err != nil {
		t.Fatalf("message not persisted: %v", err)
	}
	if stored.Status != model.StatusCreated {
		t.Errorf("offline receiver must leave status created, got %s", stored.Status)
	}
	if result.Message.MessageType != model.MessageTypeText {
		t.Errorf("expected default message type TEXT, got %s", result.Message.MessageType)
	}
}

func TestSendMessageLiveReceiver(t *testing.T) {
	messages := newFakeMessageRepo()
	pusher := newFakePusher("bob")
	s := newTestChatService(newFakeUserRepo("alice", "bob"), newFakeConversationRepo(), messages, pusher)

	result, err := s.SendMessage(context.Background(), model.SendMessagePayload{
		SenderID: "alice", ReceiverID: "bob", Content: "hello",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if result.Delivery != DeliveryLive {
		t.Errorf("expected live delivery, got %s", result.Delivery)
	}

	stored, _ := messages.GetByMessageID(context.Background(), result.Message.MessageID)
	if stored.Status != model.StatusDelivered {
		t.Errorf("live delivery must advance status to delivered, got %s", stored.Status)
	}

	bobEvents := pusher.eventNames("bob")
	if len(bobEvents) == 0 || bobEvents[0] != event.EventReceiveMessage {
		t.Errorf("receiver did not get receiveMessage, got %v", bobEvents)
	}

	aliceEvents := pusher.eventNames("alice")
	wantSent, wantStatus := false, false
	for _, name := range aliceEvents {
		if name == event.EventMessageSent {
			wantSent = true
		}
		if name == event.EventMessageStatusUpdated {
			wantStatus = true
		}
	}
	if !wantSent || !wantStatus {
		t.Errorf("sender acks incomplete, got %v", aliceEvents)
	}
}

func TestSendMessageGroupIncludesSender(t *testing.T) {
	conversations := newFakeConversationRepo()
	pusher := newFakePusher("b", "c")
	s := newTestChatService(newFakeUserRepo("a", "b", "c", "d"), conversations, newFakeMessageRepo(), pusher)

	result, err := s.SendMessage(context.Background(), model.SendMessagePayload{
		SenderID:            "a",
		Content:             "hello group",
		GroupParticipantIDs: []string{"b", "c", "d"},
		GroupName:           "friends",
	})
	if err != nil {
		t.Fatalf("group send failed: %v", err)
	}

	if len(conversations.groups) != 1 {
		t.Fatalf("expected one group conversation, got %d", len(conversations.groups))
	}
	group := conversations.groups[0]
	if !group.HasParticipant("a") {
		t.Errorf("sender must be part of the group, participants: %v", group.ParticipantIDs)
	}
	if len(group.ParticipantIDs) != 4 {
		t.Errorf("expected 4 participants, got %v", group.ParticipantIDs)
	}
	if result.Message.ReceiverID != "" {
		t.Errorf("group messages carry no receiver id, got %q", result.Message.ReceiverID)
	}

	roomEvents := pusher.roomEvents[group.ID.Hex()]
	if len(roomEvents) != 1 || roomEvents[0].Event != event.EventReceiveMessage {
		t.Errorf("expected one receiveMessage room fan-out, got %v", roomEvents)
	}
	if result.Delivery != DeliveryLive {
		t.Errorf("online members mean live delivery, got %s", result.Delivery)
	}
}

func TestSendMessageGroupSenderAlreadyListed(t *testing.T) {
	conversations := newFakeConversationRepo()
	s := newTestChatService(newFakeUserRepo("a", "b", "c"), conversations, newFakeMessageRepo(), nil)

	_, err := s.SendMessage(context.Background(), model.SendMessagePayload{
		SenderID:            "a",
		Content:             "hi",
		GroupParticipantIDs: []string{"a", "b", "c"},
	})
	if err != nil {
		t.Fatalf("group send failed: %v", err)
	}

	group := conversations.groups[0]
	count := 0
	for _, id := range group.ParticipantIDs {
		if id == "a" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("sender listed %d times, participants: %v", count, group.ParticipantIDs)
	}
}

// ---- status transitions ----

func TestUpdateMessageStatusNeverMovesBackward(t *testing.T) {
	messages := newFakeMessageRepo()
	s := newTestChatService(newFakeUserRepo("alice", "bob"), newFakeConversationRepo(), messages, nil)

	result, err := s.SendMessage(context.Background(), model.SendMessagePayload{
		SenderID: "alice", ReceiverID: "bob", Content: "hi",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	id := result.Message.MessageID

	updated, err := s.UpdateMessageStatus(context.Background(), id, "seen")
	if err != nil {
		t.Fatalf("seen ack failed: %v", err)
	}
	if updated.Status != model.StatusSeen {
		t.Fatalf("expected seen, got %s", updated.Status)
	}
	if !updated.Delivered || !updated.Seen {
		t.Errorf("seen implies delivered: delivered=%v seen=%v", updated.Delivered, updated.Seen)
	}

	// A late delivered ack must not demote the message.
	updated, err = s.UpdateMessageStatus(context.Background(), id, "delivered")
	if err != nil {
		t.Fatalf("late delivered ack failed: %v", err)
	}
	if updated.Status != model.StatusSeen {
		t.Errorf("late delivered ack demoted status to %s", updated.Status)
	}
}

func TestUpdateMessageStatusRejectsUnknown(t *testing.T) {
	s := newTestChatService(newFakeUserRepo(), newFakeConversationRepo(), newFakeMessageRepo(), nil)

	if _, err := s.UpdateMessageStatus(context.Background(), "m1", "read"); !errors.Is(err, ErrUnsupportedStatus) {
		t.Errorf("expected ErrUnsupportedStatus, got %v", err)
	}
	if _, err := s.UpdateMessageStatus(context.Background(), "m1", "created"); !errors.Is(err, ErrUnsupportedStatus) {
		t.Errorf("acking back to created must be rejected, got %v", err)
	}
}

func TestMarkConversationRead(t *testing.T) {
	messages := newFakeMessageRepo()
	conversations := newFakeConversationRepo()
	pusher := newFakePusher("alice")
	s := newTestChatService(newFakeUserRepo("alice", "bob"), conversations, messages, pusher)

	for i := 0; i < 3; i++ {
		if _, err := s.SendMessage(context.Background(), model.SendMessagePayload{
			SenderID: "alice", ReceiverID: "bob", Content: "msg",
		}); err != nil {
			t.Fatalf("send failed: %v", err)
		}
	}
	conversation, _ := conversations.FindPrivate(context.Background(), "alice", "bob")

	modified, err := s.MarkConversationRead(context.Background(), conversation.ID.Hex(), "bob")
	if err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if modified != 3 {
		t.Errorf("expected 3 rows flipped, got %d", modified)
	}

	// The original sender gets exactly one read receipt.
	reads := 0
	for _, name := range pusher.eventNames("alice") {
		if name == event.EventConversationRead {
			reads++
		}
	}
	if reads != 1 {
		t.Errorf("expected one conversationRead to the sender, got %d", reads)
	}

	// Second pass is a no-op.
	modified, err = s.MarkConversationRead(context.Background(), conversation.ID.Hex(), "bob")
	if err != nil {
		t.Fatalf("second mark read failed: %v", err)
	}
	if modified != 0 {
		t.Errorf("expected idempotent second pass, got %d", modified)
	}
}

func TestOfflineReceiverCatchesUpViaSeenAck(t *testing.T) {
	messages := newFakeMessageRepo()
	conversations := newFakeConversationRepo()
	pusher := newFakePusher("alice") // bob offline
	s := newTestChatService(newFakeUserRepo("alice", "bob"), conversations, messages, pusher)

	result, err := s.SendMessage(context.Background(), model.SendMessagePayload{
		SenderID: "alice", ReceiverID: "bob", Content: "hi",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if result.Delivery != DeliveryStored {
		t.Fatalf("expected stored delivery while bob is offline, got %s", result.Delivery)
	}

	stored, _ := messages.GetByMessageID(context.Background(), result.Message.MessageID)
	if stored.Status != model.StatusCreated {
		t.Fatalf("expected created, got %s", stored.Status)
	}

	// Bob comes back, fetches history and acks seen.
	conversation, _ := conversations.FindPrivate(context.Background(), "alice", "bob")
	page, err := s.GetMessages(context.Background(), conversation.ID.Hex(), 1)
	if err != nil || len(page.Data) != 1 {
		t.Fatalf("history fetch failed: %v (%d messages)", err, len(page.Data))
	}

	updated, err := s.UpdateMessageStatus(context.Background(), result.Message.MessageID, "seen")
	if err != nil {
		t.Fatalf("seen ack failed: %v", err)
	}
	if !updated.Delivered || !updated.Seen {
		t.Errorf("seen ack must set both flags, delivered=%v seen=%v", updated.Delivered, updated.Seen)
	}

	// Alice, still online, hears about it.
	gotStatus := false
	for _, name := range pusher.eventNames("alice") {
		if name == event.EventMessageStatusUpdated {
			gotStatus = true
		}
	}
	if !gotStatus {
		t.Error("sender did not receive messageStatusUpdated")
	}
}

func TestGetMessagesDecoratesRefs(t *testing.T) {
	messages := newFakeMessageRepo()
	conversations := newFakeConversationRepo()
	s := newTestChatService(newFakeUserRepo("alice", "bob"), conversations, messages, nil)

	if _, err := s.SendMessage(context.Background(), model.SendMessagePayload{
		SenderID: "alice", ReceiverID: "bob", Content: "hi",
	}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	conversation, _ := conversations.FindPrivate(context.Background(), "alice", "bob")

	page, err := s.GetMessages(context.Background(), conversation.ID.Hex(), 1)
	if err != nil {
		t.Fatalf("get messages failed: %v", err)
	}
	if len(page.Data) != 1 {
		t.Fatalf("expected 1 message, got %d", len(page.Data))
	}
	if page.Total != 1 {
		t.Errorf("expected total of 1, got %d", page.Total)
	}
	msg := page.Data[0]
	if msg.Sender == nil || msg.Sender.UserID != "alice" {
		t.Errorf("sender ref missing or wrong: %+v", msg.Sender)
	}
	if msg.Receiver == nil || msg.Receiver.UserID != "bob" {
		t.Errorf("receiver ref missing or wrong: %+v", msg.Receiver)
	}
}

func TestGetMessagesBetweenCreatesConversation(t *testing.T) {
	conversations := newFakeConversationRepo()
	s := newTestChatService(newFakeUserRepo("alice", "bob"), conversations, newFakeMessageRepo(), nil)

	page, err := s.GetMessagesBetween(context.Background(), "alice", "bob", 1)
	if err != nil {
		t.Fatalf("get messages between failed: %v", err)
	}
	if len(page.Data) != 0 {
		t.Errorf("expected empty history, got %d messages", len(page.Data))
	}
	if conversations.privateInsert != 1 {
		t.Errorf("expected the pair conversation to be created, inserts: %d", conversations.privateInsert)
	}
}
