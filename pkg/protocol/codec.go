package protocol

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMalformedFrame marks a frame that could not be decoded. Transports
// return it wrapped so the session loop can drop the frame and keep reading.
var ErrMalformedFrame = errors.New("malformed frame")

//go:embed schemas/events.schema.json
var eventSchemaJSON string

var eventSchema = jsonschema.MustCompileString("events.schema.json", eventSchemaJSON)

// Envelope routes a frame by type.
type Envelope struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version,omitempty"`
	Data            json.RawMessage `json:"data"`
}

func encode(typ string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", typ, err)
	}
	return json.Marshal(Envelope{Type: typ, ProtocolVersion: Version, Data: data})
}

// EncodeEvent serializes an event into its envelope.
func EncodeEvent(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, errors.New("encoding event: nil event")
	}
	return encode(ev.Type(), ev)
}

// EncodeRequest serializes a request into its envelope.
func EncodeRequest(req Request) ([]byte, error) {
	if req == nil {
		return nil, errors.New("encoding request: nil request")
	}
	return encode(req.Type(), req)
}

// DecodeEvent validates b against the event schema and decodes it.
// Every failure wraps ErrMalformedFrame.
func DecodeEvent(b []byte) (Event, error) {
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if err := eventSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	var (
		ev  Event
		err error
	)
	switch env.Type {
	case TypeContainerOpen:
		ev, err = decodeInto[ContainerOpen](env.Data)
	case TypeContainerClose:
		ev, err = decodeInto[ContainerClose](env.Data)
	case TypeItemAdd:
		ev, err = decodeInto[ItemAdd](env.Data)
	case TypeItemUpdate:
		ev, err = decodeInto[ItemUpdate](env.Data)
	case TypeItemRemove:
		ev, err = decodeInto[ItemRemove](env.Data)
	default:
		return nil, fmt.Errorf("%w: unknown event type %q", ErrMalformedFrame, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedFrame, env.Type, err)
	}
	return ev, nil
}

// DecodeRequest decodes a request envelope. It is used by capture tooling
// and test servers; the client itself only encodes requests.
func DecodeRequest(b []byte) (Request, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	var (
		req Request
		err error
	)
	switch env.Type {
	case TypeOpen:
		req, err = decodeInto[OpenRequest](env.Data)
	case TypeOpenParent:
		req, err = decodeInto[OpenParentRequest](env.Data)
	case TypeClose:
		req, err = decodeInto[CloseRequest](env.Data)
	case TypeMove:
		req, err = decodeInto[MoveRequest](env.Data)
	case TypeUse:
		req, err = decodeInto[UseRequest](env.Data)
	case TypeUseWith:
		req, err = decodeInto[UseWithRequest](env.Data)
	case TypeLook:
		req, err = decodeInto[LookRequest](env.Data)
	default:
		return nil, fmt.Errorf("%w: unknown request type %q", ErrMalformedFrame, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedFrame, env.Type, err)
	}
	return req, nil
}

func decodeInto[T any](data json.RawMessage) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}
