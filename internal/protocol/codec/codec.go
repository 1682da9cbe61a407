package codec

import (
	"fmt"

	"github.com/palemoky/bluff/internal/protocol"
)

// 编解码器名称
const (
	NameJSON     = "json"
	NameProtobuf = "protobuf"
)

// Codec 消息帧编解码
type Codec interface {
	Name() string
	// Binary 为 true 时使用 websocket 二进制帧
	Binary() bool
	Encode(msg *protocol.Message) ([]byte, error)
	// Decode 返回的消息来自对象池，处理完后应调用 PutMessage
	Decode(data []byte) (*protocol.Message, error)
}

// New 按名称创建编解码器，空名称使用 JSON
func New(name string) (Codec, error) {
	switch name {
	case "", NameJSON:
		return JSONCodec{}, nil
	case NameProtobuf, "proto":
		return ProtoCodec{}, nil
	default:
		return nil, fmt.Errorf("未知的编解码器: %s", name)
	}
}
