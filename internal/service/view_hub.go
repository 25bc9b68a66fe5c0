package service

import (
	"encoding/json"
	"net/http"
	"stem_dashboard/internal/model"
	"stem_dashboard/pkg/logger"
	"stem_dashboard/pkg/monitoring"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16

	// 每秒 5 条，突发 10 条；连续超限 maxDropped 条后断开
	clientRate  = 5
	clientBurst = 10
	maxDropped  = 20
)

const (
	MessageViewState = "VIEW_STATE"
	// 页面请求重新推送一次最新视图
	MessageRefresh = "REFRESH"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ViewPublisher 接收每次视图变更
type ViewPublisher interface {
	PublishView(view model.ViewState)
}

type ViewClient struct {
	ID      string
	Hub     *ViewHub
	Conn    *websocket.Conn
	Send    chan []byte
	Limiter *rate.Limiter
}

// readPump 浏览器端只会发 REFRESH；超出限流的消息丢弃，持续超限则断开
func (c *ViewClient) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	dropped := 0
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("View websocket unexpected close", zap.Error(err), zap.String("client", c.ID))
			}
			return
		}

		if !c.Limiter.Allow() {
			dropped++
			if dropped > maxDropped {
				logger.Log.Warn("View client exceeded message rate, closing", zap.String("client", c.ID))
				return
			}
			continue
		}
		dropped = 0

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil || msg.Type != MessageRefresh {
			continue
		}
		select {
		case c.Hub.refresh <- c:
		case <-c.Hub.done:
			return
		}
	}
}

func (c *ViewClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ViewHub 把视图快照推送给所有已连接的页面
type ViewHub struct {
	mu         sync.RWMutex
	clients    map[*ViewClient]bool
	broadcast  chan []byte
	register   chan *ViewClient
	unregister chan *ViewClient
	refresh    chan *ViewClient
	done       chan struct{}
	stopOnce   sync.Once

	// 最近一次发布的视图（已编码），用于 REFRESH
	latest []byte
}

func NewViewHub() *ViewHub {
	return &ViewHub{
		clients:    make(map[*ViewClient]bool),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *ViewClient),
		unregister: make(chan *ViewClient),
		refresh:    make(chan *ViewClient),
		done:       make(chan struct{}),
	}
}

func (h *ViewHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			monitoring.ViewSubscribers.Inc()

		case client := <-h.unregister:
			h.remove(client)

		case client := <-h.refresh:
			h.mu.RLock()
			_, ok := h.clients[client]
			msg := h.latest
			h.mu.RUnlock()
			if !ok || msg == nil {
				continue
			}
			select {
			case client.Send <- msg:
			default:
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			var slow []*ViewClient
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()
			for _, client := range slow {
				logger.Log.Warn("Dropping slow view client", zap.String("client", client.ID))
				h.remove(client)
			}

		case <-h.done:
			return
		}
	}
}

func (h *ViewHub) remove(client *ViewClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		monitoring.ViewSubscribers.Dec()
	}
}

// Serve 升级为 websocket 并先推送一次当前视图
func (h *ViewHub) Serve(w http.ResponseWriter, r *http.Request, current model.ViewState) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &ViewClient{
		ID:      uuid.NewString(),
		Hub:     h,
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		Limiter: rate.NewLimiter(rate.Limit(clientRate), clientBurst),
	}
	if msg, err := encodeView(current); err == nil {
		client.Send <- msg
		h.mu.Lock()
		if h.latest == nil {
			h.latest = msg
		}
		h.mu.Unlock()
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return nil
}

func (h *ViewHub) PublishView(view model.ViewState) {
	msg, err := encodeView(view)
	if err != nil {
		logger.Log.Error("Encode view state failed", zap.Error(err))
		return
	}
	h.mu.Lock()
	h.latest = msg
	h.mu.Unlock()
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		logger.Log.Warn("View broadcast queue full, dropping update", zap.Uint64("token", view.Token))
	}
}

func (h *ViewHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *ViewHub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		n := len(h.clients)
		for client := range h.clients {
			delete(h.clients, client)
			close(client.Send)
		}
		h.mu.Unlock()
		monitoring.ViewSubscribers.Set(0)
		logger.Log.Info("ViewHub stopped", zap.Int("closedConnections", n))
	})
}

func encodeView(view model.ViewState) ([]byte, error) {
	return json.Marshal(WSMessage{Type: MessageViewState, Data: view})
}
