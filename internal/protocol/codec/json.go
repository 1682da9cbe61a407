package codec

import (
	"encoding/json"

	"github.com/palemoky/bluff/internal/protocol"
)

// JSONCodec JSON 文本帧
type JSONCodec struct{}

func (JSONCodec) Name() string { return NameJSON }
func (JSONCodec) Binary() bool { return false }

// Encode 将消息编码为 JSON
func (JSONCodec) Encode(msg *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(msg); err != nil {
		return nil, err
	}
	// 去掉 Encoder 追加的换行，并复制出池中的缓冲区
	out := buf.Bytes()
	return append([]byte(nil), out[:len(out)-1]...), nil
}

// Decode 从 JSON 解码消息
func (JSONCodec) Decode(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, err
	}
	return msg, nil
}
