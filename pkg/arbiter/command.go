package arbiter

import "encoding/json"

func marshalCommand(cmd Command) ([]byte, error) {
	return json.Marshal(cmd)
}

func marshalArgs(op string, args interface{}) (json.RawMessage, error) {
	return json.Marshal(args)
}
