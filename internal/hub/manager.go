package hub

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/event"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/model"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/service"

	"github.com/gorilla/websocket"
)

const (
	shardCount = 64 // tune: 16/64/128 depending on load
)

type inboundMessage struct {
	event  event.WsEvent
	client *Client
}

// room is one conversation's subscriber set. Clients enter via an explicit
// join or when the delivery pipeline subscribes their user.
type room struct {
	mu      sync.RWMutex
	members map[string]*Client // clientID -> client
}

type roomBucket struct {
	sync.RWMutex
	rooms map[string]*room // conversationID -> room
}

// Hub terminates realtime connections, tracks presence and conversation
// rooms, and dispatches inbound client events into the chat service.
// It implements service.Pusher for outbound live delivery.
type Hub struct {
	shards     [shardCount]*roomBucket
	presence   *Presence
	chat       *service.ChatService
	register   chan *Client
	unregister chan *Client
	inbound    chan inboundMessage
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewHub(presence *Presence, chat *service.ChatService) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		presence:   presence,
		chat:       chat,
		register:   make(chan *Client, 1024),
		unregister: make(chan *Client, 1024),
		inbound:    make(chan inboundMessage, 4096), // buffer for burst handling
		ctx:        ctx,
		cancel:     cancel,
	}

	for i := 0; i < shardCount; i++ {
		h.shards[i] = &roomBucket{
			rooms: make(map[string]*room),
		}
	}

	// run manager loop
	go h.run()

	// start worker loop
	for i := 0; i < workerPoolSize; i++ {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			for {
				select {
				case <-h.ctx.Done():
					return
				case in, ok := <-h.inbound:
					if !ok {
						return
					}
					h.handleEvent(in.event, in.client)
				}
			}
		}()
	}

	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.presence.Register(c)
		case c := <-h.unregister:
			h.removeClient(c)
		}
	}
}

func (h *Hub) removeClient(c *Client) {
	h.presence.Unregister(c)
	h.leaveAllRooms(c)
	c.Close()
}

// -----------------------------------------------------------------
// service.Pusher
// -----------------------------------------------------------------

func (h *Hub) SendToUser(userID string, ev event.WsEvent) bool {
	return h.presence.SendToUser(userID, ev)
}

func (h *Hub) SendToRoom(conversationID string, ev event.WsEvent) {
	h.PublishToRoom(conversationID, ev)
}

func (h *Hub) SubscribeUser(conversationID, userID string) {
	for _, c := range h.presence.ConnectionsFor(userID) {
		h.joinRoom(conversationID, c)
	}
}

func (h *Hub) IsOnline(userID string) bool {
	return h.presence.IsOnline(userID)
}

// -----------------------------------------------------------------
// Inbound event dispatch
// -----------------------------------------------------------------

func (h *Hub) handleEvent(ev event.WsEvent, c *Client) {
	switch ev.Event {
	case event.EventSendMessage:
		h.handleSendMessage(ev, c)
	case event.EventUpdateMessageStatus:
		h.handleUpdateStatus(ev, c)
	case event.EventMarkConversationRead:
		h.handleMarkRead(ev, c)
	case event.EventJoinConversation:
		h.handleJoin(ev, c)
	case event.EventLeaveConversation:
		h.handleLeave(ev, c)
	case event.EventRenameConversation:
		h.handleRename(ev, c)
	default:
		log.Printf("unknown event type: %s", ev.Event)
	}
}

func (h *Hub) handleSendMessage(ev event.WsEvent, c *Client) {
	var payload model.SendMessagePayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		log.Printf("failed to unmarshal sendMessage payload: %v", err)
		h.sendError(c, "invalid_payload", "Failed to parse sendMessage request")
		return
	}
	if payload.SenderID == "" {
		payload.SenderID = c.userID
	}

	if _, err := h.chat.SendMessage(h.ctx, payload); err != nil {
		log.Printf("sendMessage from %s failed: %v", c.userID, err)
		h.sendError(c, "send_failed", err.Error())
	}
}

func (h *Hub) handleUpdateStatus(ev event.WsEvent, c *Client) {
	var payload model.UpdateMessageStatusPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		h.sendError(c, "invalid_payload", "Failed to parse updateMessageStatus request")
		return
	}

	if _, err := h.chat.UpdateMessageStatus(h.ctx, payload.MessageID, payload.Status); err != nil {
		log.Printf("updateMessageStatus for %s failed: %v", payload.MessageID, err)
		h.sendError(c, "status_update_failed", err.Error())
	}
}

func (h *Hub) handleMarkRead(ev event.WsEvent, c *Client) {
	var payload model.MarkConversationReadPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		h.sendError(c, "invalid_payload", "Failed to parse markConversationAsRead request")
		return
	}
	if payload.UserID == "" {
		payload.UserID = c.userID
	}

	if _, err := h.chat.MarkConversationRead(h.ctx, payload.ConversationID, payload.UserID); err != nil {
		log.Printf("markConversationAsRead for %s failed: %v", payload.ConversationID, err)
		h.sendError(c, "mark_read_failed", err.Error())
	}
}

func (h *Hub) handleJoin(ev event.WsEvent, c *Client) {
	var payload model.JoinConversationPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.ConversationID == "" {
		h.sendError(c, "invalid_payload", "conversationId is required")
		return
	}
	h.joinRoom(payload.ConversationID, c)
}

func (h *Hub) handleLeave(ev event.WsEvent, c *Client) {
	var payload model.LeaveConversationPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.ConversationID == "" {
		h.sendError(c, "invalid_payload", "conversationId is required")
		return
	}
	h.leaveRoom(payload.ConversationID, c)
}

func (h *Hub) handleRename(ev event.WsEvent, c *Client) {
	var payload model.RenameConversationPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.ConversationID == "" {
		h.sendError(c, "invalid_payload", "conversationId is required")
		return
	}

	if _, err := h.chat.RenameConversation(h.ctx, payload.ConversationID, payload.Name); err != nil {
		log.Printf("renameConversation for %s failed: %v", payload.ConversationID, err)
		h.sendError(c, "rename_failed", err.Error())
	}
}

func (h *Hub) sendError(c *Client, code, message string) {
	c.SafeSend(event.New(event.EventError, model.ErrorPayload{Code: code, Message: message}), sendTimeout)
}

// -----------------------------------------------------------------
// Rooms
// -----------------------------------------------------------------

func getShard(conversationID string) uint32 {
	if conversationID == "" {
		return 0
	}

	sum := sha1.Sum([]byte(conversationID))
	return binary.BigEndian.Uint32(sum[:4]) % shardCount
}

func (h *Hub) joinRoom(conversationID string, c *Client) {
	b := h.shards[getShard(conversationID)]
	b.Lock()
	defer b.Unlock()

	rm, ok := b.rooms[conversationID]
	if !ok {
		rm = &room{members: make(map[string]*Client)}
		b.rooms[conversationID] = rm
	}

	rm.mu.Lock()
	rm.members[c.ID] = c
	rm.mu.Unlock()

	log.Printf("client %s joined conversation %s", c.ID, conversationID)
}

func (h *Hub) leaveRoom(conversationID string, c *Client) {
	b := h.shards[getShard(conversationID)]
	b.Lock()
	defer b.Unlock()

	rm, ok := b.rooms[conversationID]
	if !ok {
		return
	}

	rm.mu.Lock()
	delete(rm.members, c.ID)
	empty := len(rm.members) == 0
	rm.mu.Unlock()

	if empty {
		delete(b.rooms, conversationID)
	}
}

// leaveAllRooms drops a disconnecting client from every room it joined.
func (h *Hub) leaveAllRooms(c *Client) {
	for _, b := range h.shards {
		b.Lock()
		for conversationID, rm := range b.rooms {
			rm.mu.Lock()
			delete(rm.members, c.ID)
			empty := len(rm.members) == 0
			rm.mu.Unlock()
			if empty {
				delete(b.rooms, conversationID)
			}
		}
		b.Unlock()
	}
}

// PublishToRoom fans an event out to every subscriber of a conversation.
func (h *Hub) PublishToRoom(conversationID string, ev event.WsEvent) {
	b := h.shards[getShard(conversationID)]

	b.RLock()
	rm, ok := b.rooms[conversationID]
	if !ok {
		b.RUnlock()
		return
	}

	rm.mu.RLock()
	clients := make([]*Client, 0, len(rm.members))
	for _, c := range rm.members {
		clients = append(clients, c)
	}
	rm.mu.RUnlock()
	b.RUnlock()

	for _, c := range clients {
		if !c.SafeSend(ev, sendTimeout) {
			log.Printf("egress full for client %s in conversation %s", c.ID, conversationID)
		}
	}
}

// -----------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------

func (h *Hub) Stop() {
	h.cancel()

	// Close all client connections
	for _, userID := range h.connectedUsers() {
		for _, c := range h.presence.ConnectionsFor(userID) {
			c.Close()
		}
	}

	close(h.inbound)
	h.wg.Wait()
}

func (h *Hub) connectedUsers() []string {
	_, infos := h.presence.Snapshot()
	seen := make(map[string]struct{}, len(infos))
	var users []string
	for _, info := range infos {
		if _, ok := seen[info.UserID]; ok {
			continue
		}
		seen[info.UserID] = struct{}{}
		users = append(users, info.UserID)
	}
	return users
}

var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the connection and registers the client. Callers must
// have extracted a non-empty userID from the handshake already; a missing
// identity never reaches this point.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := websocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}

	RegisterClient(userID, conn, h)
}
