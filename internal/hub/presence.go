package hub

import (
	"context"
	"sync"
	"time"

	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/event"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/model"
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/repo"

	"go.uber.org/zap"
)

// Presence maps each user to the set of their live connections. It is
// process-local state: a horizontally scaled deployment would need an
// external registry plus pub/sub fan-out, which this design does not have.
type Presence struct {
	mu      sync.RWMutex
	clients map[string]map[string]*Client // userID -> clientID -> client

	users  repo.UserRepository
	logger *zap.Logger
}

func NewPresence(users repo.UserRepository, logger *zap.Logger) *Presence {
	return &Presence{
		clients: make(map[string]map[string]*Client),
		users:   users,
		logger:  logger,
	}
}

// Register adds a connection. The first connection of a user flips them
// online: the flag is persisted and one userStatusChanged broadcast goes
// out. Additional connections are registry-internal only.
func (p *Presence) Register(c *Client) {
	p.mu.Lock()
	set, ok := p.clients[c.userID]
	if !ok {
		set = make(map[string]*Client)
		p.clients[c.userID] = set
	}
	wasOnline := len(set) > 0
	set[c.ID] = c
	p.mu.Unlock()

	if !wasOnline {
		p.flipOnline(c.userID, true)
	}
}

// Unregister removes a connection. Removing the last connection of a user
// flips them offline with a single broadcast; earlier removals are silent.
func (p *Presence) Unregister(c *Client) {
	p.mu.Lock()
	set, ok := p.clients[c.userID]
	if ok {
		delete(set, c.ID)
		if len(set) == 0 {
			delete(p.clients, c.userID)
		}
	}
	nowOffline := ok && len(set) == 0
	p.mu.Unlock()

	if nowOffline {
		p.flipOnline(c.userID, false)
	}
}

// flipOnline persists the aggregate transition and broadcasts it. A failed
// write is logged and NOT rolled back: the in-memory registry stays
// authoritative for live delivery.
func (p *Presence) flipOnline(userID string, online bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.users.SetOnline(ctx, userID, online); err != nil {
		p.logger.Error("failed to persist presence transition",
			zap.String("user_id", userID),
			zap.Bool("online", online),
			zap.Error(err),
		)
	}

	p.BroadcastAll(event.New(event.EventUserStatusChanged, model.UserStatusEvent{
		UserID:   userID,
		IsOnline: online,
	}))
}

// IsOnline reports whether the user has at least one live connection.
func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients[userID]) > 0
}

// ConnectionsFor returns a snapshot of the user's live connections.
func (p *Presence) ConnectionsFor(userID string) []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	set := p.clients[userID]
	clients := make([]*Client, 0, len(set))
	for _, c := range set {
		clients = append(clients, c)
	}
	return clients
}

// SendToUser pushes an event to every live connection of the user.
// Returns true when at least one connection accepted it.
func (p *Presence) SendToUser(userID string, ev event.WsEvent) bool {
	delivered := false
	for _, c := range p.ConnectionsFor(userID) {
		if c.SafeSend(ev, sendTimeout) {
			delivered = true
		}
	}
	return delivered
}

// BroadcastAll pushes an event to every connected client.
func (p *Presence) BroadcastAll(ev event.WsEvent) {
	p.mu.RLock()
	clients := make([]*Client, 0, len(p.clients))
	for _, set := range p.clients {
		for _, c := range set {
			clients = append(clients, c)
		}
	}
	p.mu.RUnlock()

	for _, c := range clients {
		c.SafeSend(ev, sendTimeout)
	}
}

// Snapshot returns connection stats and the connected client list for the
// monitor API.
func (p *Presence) Snapshot() (model.ConnectionStats, []model.ClientInfo) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stats := model.ConnectionStats{TotalOnline: len(p.clients)}
	var infos []model.ClientInfo
	for userID, set := range p.clients {
		stats.TotalConnected += len(set)
		for clientID := range set {
			infos = append(infos, model.ClientInfo{ClientID: clientID, UserID: userID})
		}
	}
	return stats, infos
}
