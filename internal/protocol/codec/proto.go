package codec

import (
	"encoding/json"
	"errors"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/bluff/internal/protocol"
)

const (
	fieldType    = "type"
	fieldPayload = "payload"
)

var errMissingType = errors.New("消息缺少 type 字段")

// ProtoCodec Protobuf 二进制帧
//
// 信封是 google.protobuf.Struct：{type: string, payload: Value}，payload 与 JSON 结构一致。
type ProtoCodec struct{}

func (ProtoCodec) Name() string { return NameProtobuf }
func (ProtoCodec) Binary() bool { return true }

// Encode 将消息编码为 Protobuf
func (ProtoCodec) Encode(msg *protocol.Message) ([]byte, error) {
	env := getEnvelope()
	defer putEnvelope(env)

	env.Fields = map[string]*structpb.Value{
		fieldType: structpb.NewStringValue(string(msg.Type)),
	}

	if len(msg.Payload) > 0 {
		payload := &structpb.Value{}
		if err := protojson.Unmarshal(msg.Payload, payload); err != nil {
			return nil, err
		}
		env.Fields[fieldPayload] = payload
	}

	return proto.Marshal(env)
}

// Decode 从 Protobuf 解码消息
func (ProtoCodec) Decode(data []byte) (*protocol.Message, error) {
	env := getEnvelope()
	defer putEnvelope(env)

	if err := proto.Unmarshal(data, env); err != nil {
		return nil, err
	}

	typ, ok := env.Fields[fieldType]
	if !ok || typ.GetStringValue() == "" {
		return nil, errMissingType
	}

	msg := GetMessage()
	msg.Type = protocol.MessageType(typ.GetStringValue())

	if payload, ok := env.Fields[fieldPayload]; ok {
		raw, err := protojson.Marshal(payload)
		if err != nil {
			PutMessage(msg)
			return nil, err
		}
		msg.Payload = json.RawMessage(raw)
	}

	return msg, nil
}
