package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// PredictionEvent 预测事件消息
type PredictionEvent struct {
	Model     string    `json:"model"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	clientSendBuffer = 16
	writeWait        = 5 * time.Second
	pingPeriod       = 30 * time.Second
)

// streamClient 一个WebSocket订阅客户端
type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub 向所有WebSocket客户端广播预测事件
type Hub struct {
	mu       sync.Mutex
	clients  map[*streamClient]bool
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*streamClient]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleWS 升级连接并注册客户端
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &streamClient{
		conn: conn,
		send: make(chan []byte, clientSendBuffer),
	}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	go h.writePump(client)
	go h.readPump(client)
}

// Publish 广播一条预测事件。发送永不阻塞：缓冲已满的慢客户端被直接踢掉，
// 由各自的写协程负责真正的网络写入。
func (h *Hub) Publish(event PredictionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode prediction event", zap.Error(err))
		return
	}

	h.mu.Lock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
	h.mu.Unlock()
}

// writePump WebSocket写入泵
func (h *Hub) writePump(c *streamClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump WebSocket读取泵 - 仅用于发现断开的客户端
func (h *Hub) readPump(c *streamClient) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(c *streamClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
