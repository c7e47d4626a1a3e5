package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// Codec encodes messages as JSON. Servers install it with
// grpc.ForceServerCodec so any content-subtype decodes the same way.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (Codec) Name() string { return "json" }

func init() {
	encoding.RegisterCodec(Codec{})
}

// RawCodec passes already-encoded JSON through untouched. The gateway uses it
// to forward request bodies without decoding them.
type RawCodec struct{}

// Raw carries undecoded message bytes.
type Raw struct{ Data []byte }

func (RawCodec) Marshal(v any) ([]byte, error) { return v.(*Raw).Data, nil }

func (RawCodec) Unmarshal(data []byte, v any) error {
	m := v.(*Raw)
	m.Data = append([]byte(nil), data...)
	return nil
}

func (RawCodec) Name() string { return "json" }
