package service

import (
	"encoding/json"
	"net/http"
	"quiz_backend/pkg/logger"
	"quiz_backend/pkg/monitoring"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 64
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

const MessageResultCreated = "RESULT_CREATED"

type feedClient struct {
	hub    *ResultHub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

// ResultHub 向已连接的管理员实时推送新产生的成绩
type ResultHub struct {
	clients    map[*feedClient]bool
	register   chan *feedClient
	unregister chan *feedClient
	broadcast  chan []byte
	stop       chan struct{}
	count      atomic.Int64
}

func NewResultHub() *ResultHub {
	return &ResultHub{
		clients:    make(map[*feedClient]bool),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		broadcast:  make(chan []byte, 256),
		stop:       make(chan struct{}),
	}
}

func (h *ResultHub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.updateCount()
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// 客户端消费过慢，直接断开
					h.remove(c)
				}
			}
		case <-h.stop:
			for c := range h.clients {
				h.remove(c)
			}
			return
		}
	}
}

func (h *ResultHub) Stop() {
	close(h.stop)
}

func (h *ResultHub) remove(c *feedClient) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.updateCount()
	}
}

func (h *ResultHub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	monitoring.ResultFeedClients.Set(float64(len(h.clients)))
}

func (h *ResultHub) ClientCount() int {
	return int(h.count.Load())
}

// Publish 推送新成绩，data 使用与 REST 接口相同的 DTO。
// 不阻塞评分请求，缓冲区满时丢弃。
func (h *ResultHub) Publish(data interface{}) {
	payload, err := json.Marshal(WSMessage{Type: MessageResultCreated, Data: data})
	if err != nil {
		logger.Log.Error("marshal result event", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		logger.Log.Warn("result feed buffer full, event dropped")
	}
}

func (h *ResultHub) ServeWS(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &feedClient{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		userID: userID,
	}

	select {
	case h.register <- c:
	case <-h.stop:
		conn.Close()
		return nil
	}

	go c.writePump()
	go c.readPump()
	return nil
}

// readPump 只处理 pong 与关闭帧，订阅端不接受上行消息
func (c *feedClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stop:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warn("result feed unexpected close", zap.Error(err), zap.Uint("userId", c.userID))
			}
			return
		}
	}
}

func (c *feedClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
