package hub

import (
	"github.com/Buy-From-Egypt/BuyFromEgypt-Backend/internal/model"
)

// MonitorService provides methods to gather hub statistics
type MonitorService struct {
	hub *Hub
}

// NewMonitorService creates a new monitor service
func NewMonitorService(hub *Hub) *MonitorService {
	return &MonitorService{hub: hub}
}

// GetStats gathers and returns all hub statistics
func (ms *MonitorService) GetStats() model.MonitorResponse {
	connectionStats, clients := ms.hub.presence.Snapshot()
	roomStats := ms.getRoomStats()

	status := "healthy"
	if connectionStats.TotalConnected == 0 {
		status = "idle"
	}

	if clients == nil {
		clients = []model.ClientInfo{}
	}

	return model.MonitorResponse{
		Status:      status,
		Connections: connectionStats,
		Rooms:       roomStats,
		Clients:     clients,
	}
}

// getRoomStats walks every shard and reports the live room membership.
func (ms *MonitorService) getRoomStats() model.RoomStats {
	stats := model.RoomStats{
		RoomDetails: make([]model.RoomInfo, 0),
	}

	for _, bucket := range ms.hub.shards {
		bucket.RLock()
		for conversationID, rm := range bucket.rooms {
			rm.mu.RLock()

			memberIDs := make([]string, 0, len(rm.members))
			seen := make(map[string]struct{}, len(rm.members))
			for _, c := range rm.members {
				if _, ok := seen[c.userID]; ok {
					continue
				}
				seen[c.userID] = struct{}{}
				memberIDs = append(memberIDs, c.userID)
			}

			stats.RoomDetails = append(stats.RoomDetails, model.RoomInfo{
				ConversationID: conversationID,
				TotalMembers:   len(rm.members),
				MemberIDs:      memberIDs,
			})

			rm.mu.RUnlock()
		}
		stats.TotalRooms += len(bucket.rooms)
		bucket.RUnlock()
	}

	return stats
}
