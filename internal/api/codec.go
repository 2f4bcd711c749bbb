// Package api defines the messages, procedure names and clients of the
// local chatbook API. Messages are plain Go structs carried by Connect with
// a JSON codec.
package api

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec carries plain structs as JSON under the "json" codec name, so
// requests use Content-Type application/json.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// WithJSON is the option both handlers and clients must be built with.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
