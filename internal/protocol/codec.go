package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec serializes payloads and the {op, data} envelope used on raw websocket frames.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	EncodeEnvelope(op int64, payload any) ([]byte, error)
	DecodeEnvelope(data []byte) (op int64, body []byte, err error)
}

// CodecByName returns the codec registered under name. Empty selects JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// JSONCodec is the default text codec.
type JSONCodec struct{}

type jsonEnvelope struct {
	Op   int64           `json:"op"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (c JSONCodec) EncodeEnvelope(op int64, payload any) ([]byte, error) {
	env := jsonEnvelope{Op: op}
	if payload != nil {
		body, err := c.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = body
	}
	return json.Marshal(env)
}

func (JSONCodec) DecodeEnvelope(data []byte) (int64, []byte, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return 0, nil, fmt.Errorf("decode envelope: %w", err)
	}
	return env.Op, env.Data, nil
}

// MsgpackCodec is the compact binary codec. It reuses the json struct tags so both
// encodings share field names.
type MsgpackCodec struct{}

type msgpackEnvelope struct {
	Op   int64              `msgpack:"op"`
	Data msgpack.RawMessage `msgpack:"data,omitempty"`
}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

func (c MsgpackCodec) EncodeEnvelope(op int64, payload any) ([]byte, error) {
	env := msgpackEnvelope{Op: op}
	if payload != nil {
		body, err := c.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = body
	}
	return msgpack.Marshal(&env)
}

func (MsgpackCodec) DecodeEnvelope(data []byte) (int64, []byte, error) {
	var env msgpackEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return 0, nil, fmt.Errorf("decode envelope: %w", err)
	}
	return env.Op, env.Data, nil
}
