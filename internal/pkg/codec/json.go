// Package codec 为 Connect 提供基于 encoding/json 的编解码器，消息为普通 Go 结构体。
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// Name 与 Connect 内置 JSON 编解码器同名，Content-Type 为 application/json
const Name = "json"

type JSON struct{}

var _ connect.Codec = JSON{}

func (JSON) Name() string { return Name }

func (JSON) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal 空 body 视为空消息，未知字段忽略
func (JSON) Unmarshal(data []byte, msg any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal into %T: %w", msg, err)
	}
	return nil
}

// MarshalStable GET 请求的 message 参数需要稳定编码，结构体字段顺序固定
func (c JSON) MarshalStable(msg any) ([]byte, error) {
	return c.Marshal(msg)
}

func (JSON) IsBinary() bool { return false }

// HandlerOption 替换 handler 的 json 编解码器
func HandlerOption() connect.HandlerOption {
	return connect.WithCodec(JSON{})
}

// ClientOption 客户端以 application/json 发送请求
func ClientOption() connect.ClientOption {
	return connect.WithCodec(JSON{})
}
