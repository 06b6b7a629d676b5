package service

import (
	"context"
	"errors"
	"time"

	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/db"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/event"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/model"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/repo"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Pusher delivers events to live connections. SendToUser reports whether at
// least one connection of the user accepted the event; a false return means
// the user is delivered to via persistence only. SendToRoom fans an event
// out to a conversation's subscribers.
type Pusher interface {
	SendToUser(userID string, ev event.WsEvent) bool
	SendToRoom(conversationID string, ev event.WsEvent)
	// SubscribeUser adds every live connection of the user to the
	// conversation's room, so room fan-out reaches members who never sent
	// an explicit join.
	SubscribeUser(conversationID, userID string)
	IsOnline(userID string) bool
}

// DeliveryState tells the caller of SendMessage whether the message reached
// a live connection or only the store.
type DeliveryState string

const (
	DeliveryLive   DeliveryState = "live"
	DeliveryStored DeliveryState = "stored"
)

// SendResult is the outcome of a send: the persisted message plus how it
// was delivered. The message row exists in either case.
type SendResult struct {
	Message  *model.Message `json:"message"`
	Delivery DeliveryState  `json:"delivery"`
}

// ChatService implements conversation resolution and the message delivery
// pipeline on top of the repositories. Live delivery goes through the
// Pusher, which is attached after the hub exists.
type ChatService struct {
	users         repo.UserRepository
	conversations repo.ConversationRepository
	messages      repo.MessageRepository
	logger        *zap.Logger

	pusher Pusher
}

func NewChatService(users repo.UserRepository, conversations repo.ConversationRepository, messages repo.MessageRepository, logger *zap.Logger) *ChatService {
	return &ChatService{
		users:         users,
		conversations: conversations,
		messages:      messages,
		logger:        logger,
	}
}

// SetPusher attaches the live-delivery transport. Must be called before the
// socket server starts accepting traffic; a nil pusher degrades every send
// to persisted-only delivery.
func (s *ChatService) SetPusher(p Pusher) {
	s.pusher = p
}

// validateParticipants fails with InvalidParticipantError listing every
// unknown id. Nothing is written before validation passes.
func (s *ChatService) validateParticipants(ctx context.Context, userIDs []string) error {
	missing, err := s.users.FindMissing(ctx, userIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return &InvalidParticipantError{UserIDs: missing}
	}
	return nil
}

// ResolvePrivate finds or creates the single private conversation between
// the pair. Uniqueness is guaranteed by the pair-key index underneath.
func (s *ChatService) ResolvePrivate(ctx context.Context, userA, userB string) (*model.Conversation, error) {
	if err := s.validateParticipants(ctx, []string{userA, userB}); err != nil {
		return nil, err
	}

	conversation, err := s.conversations.FindPrivate(ctx, userA, userB)
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, repo.ErrConversationNotFound) {
		return nil, err
	}

	return s.conversations.CreatePrivate(ctx, userA, userB)
}

// ResolveGroup creates a new group conversation. Groups are never
// deduplicated: every call that passes validation opens a fresh thread.
func (s *ChatService) ResolveGroup(ctx context.Context, participantIDs []string, name string) (*model.Conversation, error) {
	distinct := dedupe(participantIDs)
	if len(distinct) < model.MinGroupParticipants {
		return nil, ErrGroupTooSmall
	}

	if err := s.validateParticipants(ctx, distinct); err != nil {
		return nil, err
	}

	return s.conversations.CreateGroup(ctx, distinct, name)
}

// SendMessage runs the full pipeline: validate, resolve the conversation,
// persist the message, then attempt live delivery. Validation failures
// abort before any write; push failures after persistence are absorbed.
func (s *ChatService) SendMessage(ctx context.Context, p model.SendMessagePayload) (*SendResult, error) {
	if p.Content == "" {
		return nil, ErrEmptyContent
	}
	if p.MessageType == "" {
		p.MessageType = model.MessageTypeText
	}

	toValidate := []string{p.SenderID}
	if p.ReceiverID != "" {
		toValidate = append(toValidate, p.ReceiverID)
	}
	toValidate = append(toValidate, p.GroupParticipantIDs...)
	if err := s.validateParticipants(ctx, toValidate); err != nil {
		return nil, err
	}

	isGroup := len(p.GroupParticipantIDs) > 2

	var conversation *model.Conversation
	var err error
	if isGroup {
		ids := p.GroupParticipantIDs
		if !contains(ids, p.SenderID) {
			ids = append(ids, p.SenderID)
		}
		conversation, err = s.ResolveGroup(ctx, ids, p.GroupName)
	} else {
		if p.ReceiverID == "" {
			return nil, ErrReceiverRequired
		}
		conversation, err = s.ResolvePrivate(ctx, p.SenderID, p.ReceiverID)
	}
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		MessageID:      uuid.New().String(),
		ConversationID: conversation.ID,
		SenderID:       p.SenderID,
		Content:        p.Content,
		MessageType:    p.MessageType,
		Status:         model.StatusCreated,
		CreatedAt:      time.Now(),
	}
	if !isGroup {
		msg.ReceiverID = p.ReceiverID
	}

	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}

	// Keep the conversation list sorted by recent activity.
	if err := s.conversations.Touch(ctx, conversation.ID.Hex()); err != nil {
		s.logger.Warn("failed to touch conversation",
			zap.String("conversation_id", conversation.ID.Hex()),
			zap.Error(err),
		)
	}

	delivery := s.deliver(ctx, conversation, msg)

	msg.SyncFlags()
	return &SendResult{Message: msg, Delivery: delivery}, nil
}

// deliver pushes the persisted message to live recipients and advances its
// status when anyone other than the sender received it. Runs entirely after
// persistence: nothing here can undo the message.
func (s *ChatService) deliver(ctx context.Context, conversation *model.Conversation, msg *model.Message) DeliveryState {
	if s.pusher == nil {
		return DeliveryStored
	}

	msg.SyncFlags()
	receiveEv := event.New(event.EventReceiveMessage, msg)

	liveDelivered := false
	if conversation.IsPrivate() {
		liveDelivered = s.pusher.SendToUser(msg.ReceiverID, receiveEv)
		// The sender's other connections see the message too.
		s.pusher.SendToUser(msg.SenderID, receiveEv)
	} else {
		// Group messages fan out through the conversation room. Members are
		// subscribed as the pipeline touches the conversation, so fan-out
		// reaches them without an explicit join. Delivery counts when any
		// other participant is reachable at all.
		for _, participantID := range conversation.ParticipantIDs {
			s.pusher.SubscribeUser(conversation.ID.Hex(), participantID)
		}
		s.pusher.SendToRoom(conversation.ID.Hex(), receiveEv)
		for _, participantID := range conversation.ParticipantIDs {
			if participantID != msg.SenderID && s.pusher.IsOnline(participantID) {
				liveDelivered = true
				break
			}
		}
	}

	s.pusher.SendToUser(msg.SenderID, event.New(event.EventMessageSent, model.MessageSentEvent{
		MessageID:      msg.MessageID,
		ConversationID: msg.ConversationID.Hex(),
		Timestamp:      msg.CreatedAt.Unix(),
	}))

	if !liveDelivered {
		return DeliveryStored
	}

	updated, err := s.messages.UpdateStatus(ctx, msg.MessageID, model.StatusDelivered)
	if err != nil {
		// The live push already happened; the row stays Created and the
		// next status ack will catch it up.
		s.logger.Warn("failed to persist delivered status",
			zap.String("message_id", msg.MessageID),
			zap.Error(err),
		)
		return DeliveryLive
	}
	msg.Status = updated.Status

	s.pusher.SendToUser(msg.SenderID, event.New(event.EventMessageStatusUpdated, model.MessageStatusEvent{
		MessageID:      msg.MessageID,
		Status:         model.StatusDelivered.String(),
		ConversationID: msg.ConversationID.Hex(),
		ReceiverID:     msg.ReceiverID,
	}))

	return DeliveryLive
}

// UpdateMessageStatus applies a delivered/seen ack and notifies the original
// sender. Status only moves forward; acking "seen" on an undelivered message
// lands it on Seen directly, which implies delivered.
func (s *ChatService) UpdateMessageStatus(ctx context.Context, messageID, status string) (*model.Message, error) {
	parsed, ok := model.ParseMessageStatus(status)
	if !ok {
		return nil, ErrUnsupportedStatus
	}

	updated, err := s.messages.UpdateStatus(ctx, messageID, parsed)
	if err != nil {
		return nil, err
	}
	updated.SyncFlags()

	if s.pusher != nil {
		s.pusher.SendToUser(updated.SenderID, event.New(event.EventMessageStatusUpdated, model.MessageStatusEvent{
			MessageID:      updated.MessageID,
			Status:         parsed.String(),
			ConversationID: updated.ConversationID.Hex(),
			ReceiverID:     updated.ReceiverID,
		}))
	}

	return updated, nil
}

// MarkConversationRead bulk-acknowledges every unread message addressed to
// userID, then tells each original sender their messages were read.
func (s *ChatService) MarkConversationRead(ctx context.Context, conversationID, userID string) (int64, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return 0, err
	}

	// Senders must be collected before the bulk write flips the rows.
	senders, err := s.messages.UnreadSenders(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}

	modified, err := s.messages.MarkConversationSeen(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}

	if s.pusher != nil {
		readEv := event.New(event.EventConversationRead, model.ConversationReadEvent{
			ConversationID: conversation.ID.Hex(),
			ByUserID:       userID,
		})
		for _, senderID := range senders {
			s.pusher.SendToUser(senderID, readEv)
		}
	}

	return modified, nil
}

// RenameConversation renames a group thread.
func (s *ChatService) RenameConversation(ctx context.Context, conversationID, name string) (*model.Conversation, error) {
	return s.conversations.Rename(ctx, conversationID, name)
}

// GetConversations lists every conversation the user participates in,
// most recently active first.
func (s *ChatService) GetConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	return s.conversations.ListForUser(ctx, userID)
}

// GetMessages returns one page of a conversation's history, oldest first,
// decorated with sender/receiver refs.
func (s *ChatService) GetMessages(ctx context.Context, conversationID string, page int64) (*db.PaginatedResult[model.Message], error) {
	result, err := s.messages.ListByConversation(ctx, conversationID, page)
	if err != nil {
		return nil, err
	}
	s.decorateMessages(ctx, result.Data)
	return result, nil
}

// GetMessagesBetween resolves the private conversation for the pair
// (creating it when absent) and returns its history.
func (s *ChatService) GetMessagesBetween(ctx context.Context, senderID, receiverID string, page int64) (*db.PaginatedResult[model.Message], error) {
	conversation, err := s.ResolvePrivate(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	return s.GetMessages(ctx, conversation.ID.Hex(), page)
}

// OnlineStatus reports the persisted online flag for a user.
func (s *ChatService) OnlineStatus(ctx context.Context, userID string) (bool, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsOnline, nil
}

// decorateMessages attaches user refs and response flags. Lookup failures
// leave the refs empty rather than failing the fetch.
func (s *ChatService) decorateMessages(ctx context.Context, messages []model.Message) {
	ids := make([]string, 0, len(messages)*2)
	for i := range messages {
		ids = append(ids, messages[i].SenderID)
		if messages[i].ReceiverID != "" {
			ids = append(ids, messages[i].ReceiverID)
		}
	}

	refs, err := s.users.FindRefs(ctx, dedupe(ids))
	if err != nil {
		s.logger.Warn("failed to decorate messages with user refs", zap.Error(err))
		refs = map[string]model.UserRef{}
	}

	for i := range messages {
		messages[i].SyncFlags()
		if ref, ok := refs[messages[i].SenderID]; ok {
			r := ref
			messages[i].Sender = &r
		}
		if ref, ok := refs[messages[i].ReceiverID]; ok {
			r := ref
			messages[i].Receiver = &r
		}
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
