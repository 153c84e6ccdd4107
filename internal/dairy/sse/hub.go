package sse

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// clientBuffer 每个连接的事件缓冲
const clientBuffer = 32

// Event SSE事件
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client 已连接的SSE客户端
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// NewClient 创建带缓冲的客户端
func NewClient(id, userID string) *Client {
	return &Client{ID: id, UserID: userID, Events: make(chan Event, clientBuffer)}
}

// Hub 管理所有SSE连接
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register 注册客户端
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Debug("sse client registered",
		zap.String("client_id", client.ID),
		zap.String("user_id", client.UserID),
		zap.Int("total", len(h.clients)))
}

// Unregister 注销客户端并关闭通道
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("sse client unregistered",
			zap.String("client_id", clientID),
			zap.Int("total", len(h.clients)))
	}
}

// Count 当前连接数
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast 发送给所有客户端，缓冲满的跳过
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		h.send(client, event)
	}
}

// SendToUser 只发给指定用户的连接
func (h *Hub) SendToUser(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.UserID == userID {
			h.send(client, event)
		}
	}
}

func (h *Hub) send(client *Client, event Event) {
	select {
	case client.Events <- event:
	default:
		h.logger.Warn("sse client buffer full, skipping event",
			zap.String("client_id", client.ID),
			zap.String("event", event.EventType))
	}
}

// Publish 账本变更广播
func (h *Hub) Publish(event string, payload interface{}) {
	h.Broadcast(h.encode(event, payload))
}

// PublishToUser 会话类事件只推给本人
func (h *Hub) PublishToUser(userID, event string, payload interface{}) {
	h.SendToUser(userID, h.encode(event, payload))
}

func (h *Hub) encode(event string, payload interface{}) Event {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode sse payload", zap.String("event", event), zap.Error(err))
		data = []byte("{}")
	}
	return Event{EventType: event, Data: string(data)}
}
