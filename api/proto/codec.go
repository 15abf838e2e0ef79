package proto

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName is the grpc content-subtype this package's services negotiate,
// selected on every client stub via grpc.CallContentSubtype(CodecName).
const CodecName = "groupshard-json"

// jsonCodec implements grpc/encoding.Codec over encoding/json. It stands in
// for a real protobuf wire codec (see doc.go) without requiring generated
// marshal code.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
