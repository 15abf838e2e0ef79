package fanout

import (
	"encoding/json"

	"github.com/groupshard/groupshard/pkg/errs"
	"github.com/groupshard/groupshard/pkg/types"
)

// Encode frames a message as one GroupNodeMsgType byte followed by the
// JSON encoding of payload.
func Encode(msgType types.GroupNodeMsgType, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidArgument, "fanout.Encode", err)
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, byte(msgType))
	out = append(out, body...)
	return out, nil
}

// Decode splits a record's value into its message type and raw JSON
// payload. The caller unmarshals the payload into the concrete type for
// msgType (see DecodeInto).
func Decode(data []byte) (types.GroupNodeMsgType, []byte, error) {
	if len(data) < 1 {
		return 0, nil, errs.New(errs.InvalidArgument, "fanout.Decode", "record value shorter than the 1-byte message type prefix")
	}
	return types.GroupNodeMsgType(data[0]), data[1:], nil
}

// DecodeInto unmarshals a raw JSON payload (as returned by Decode) into v.
func DecodeInto(raw []byte, v interface{}) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return errs.Wrap(errs.InvalidArgument, "fanout.DecodeInto", err)
	}
	return nil
}
