// Package client WebSocket 客户端，供联调和端到端测试使用
package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// 心跳间隔
	heartbeatInterval = 5 * time.Second

	bufferSize = 256
)

var (
	ErrClosed      = errors.New("connection closed")
	ErrBufferFull  = errors.New("send buffer full")
	ErrTimeout     = errors.New("receive timeout")
	ErrNotInRoom   = errors.New("not in a room")
	ErrNoUserBound = errors.New("no user bound")
)

// Client WebSocket 客户端
type Client struct {
	ServerURL string
	codec     codec.Codec
	logger    *zap.Logger

	conn    *websocket.Conn
	send    chan []byte
	receive chan *protocol.Message
	done    chan struct{}

	// State 根据服务端推送维护的本地对局视图
	State *GameState

	// 回调
	OnMessage func(*protocol.Message)
	OnError   func(error)
	OnClose   func()

	mu       sync.RWMutex
	closed   bool
	connID   string
	userID   string
	username string
	latency  time.Duration
}

// Option 客户端选项
type Option func(*Client)

// WithCodec 指定编解码器，需与服务端一致
func WithCodec(c codec.Codec) Option {
	return func(cl *Client) { cl.codec = c }
}

// WithLogger 指定日志器
func WithLogger(logger *zap.Logger) Option {
	return func(cl *Client) { cl.logger = logger }
}

// NewClient 创建客户端
func NewClient(serverURL string, opts ...Option) *Client {
	c := &Client{
		ServerURL: serverURL,
		codec:     codec.JSONCodec{},
		logger:    zap.NewNop(),
		send:      make(chan []byte, bufferSize),
		receive:   make(chan *protocol.Message, bufferSize),
		done:      make(chan struct{}),
		State:     NewGameState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect 连接服务器
func (c *Client) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, resp, err := dialer.DialContext(ctx, c.ServerURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return err
	}
	c.conn = conn

	go c.readPump()
	go c.writePump()
	return nil
}

// SendMessage 发送消息
func (c *Client) SendMessage(msg *protocol.Message) error {
	data, err := c.codec.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// Receive 接收消息（阻塞）
func (c *Client) Receive() (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-c.done:
		return nil, ErrClosed
	}
}

// ReceiveWithTimeout 带超时接收消息
func (c *Client) ReceiveWithTimeout(timeout time.Duration) (*protocol.Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-c.receive:
		return msg, nil
	case <-timer.C:
		return nil, ErrTimeout
	case <-c.done:
		return nil, ErrClosed
	}
}

// WaitFor 丢弃其他消息，直到收到指定类型的消息或超时
func (c *Client) WaitFor(msgType protocol.MessageType, timeout time.Duration) (*protocol.Message, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, ErrTimeout
		}
		msg, err := c.ReceiveWithTimeout(remaining)
		if err != nil {
			return nil, err
		}
		if msg.Type == msgType {
			return msg, nil
		}
	}
}

// Close 关闭连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	}
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed && c.conn != nil
}

// ConnID 服务端分配的连接 ID
func (c *Client) ConnID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connID
}

// UserID 当前绑定的用户 ID
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// Latency 最近一次心跳测得的延迟
func (c *Client) Latency() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latency
}

func (c *Client) bindUser(userID, username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID, c.username = userID, username
}
