package client

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/protocol"
	"github.com/palemoky/bluff/internal/protocol/codec"
)

// readPump 从服务器读取消息
func (c *Client) readPump() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("readPump panic", zap.Any("panic", r), zap.Stack("stack"))
		}
		c.Close()
		if c.OnClose != nil {
			c.OnClose()
		}
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				if c.OnError != nil {
					c.OnError(err)
				}
			}
			return
		}

		decoded, err := c.codec.Decode(data)
		if err != nil {
			c.logger.Warn("消息解析错误", zap.Error(err))
			continue
		}
		// 解码结果来自对象池，复制一份再交给调用方
		msg := &protocol.Message{Type: decoded.Type, Payload: append([]byte(nil), decoded.Payload...)}
		codec.PutMessage(decoded)

		c.track(msg)

		if c.OnMessage != nil {
			c.OnMessage(msg)
		}

		select {
		case c.receive <- msg:
		default:
			c.logger.Warn("接收缓冲区已满，丢弃消息", zap.String("type", string(msg.Type)))
		}
	}
}

// track 记录连接信息和延迟，并更新本地对局视图
func (c *Client) track(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgConnected:
		if p, err := codec.ParsePayload[protocol.ConnectedPayload](msg); err == nil {
			c.mu.Lock()
			c.connID = p.ConnID
			c.mu.Unlock()
		}
	case protocol.MsgPong:
		if p, err := codec.ParsePayload[protocol.PongPayload](msg); err == nil {
			c.mu.Lock()
			c.latency = time.Since(time.UnixMilli(p.ClientTimestamp))
			c.mu.Unlock()
		}
	}

	if err := c.State.Apply(msg); err != nil {
		c.logger.Warn("更新本地状态失败", zap.String("type", string(msg.Type)), zap.Error(err))
	}
}

// writePump 向服务器写入消息
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(frameType, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
