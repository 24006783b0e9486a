// Package protocol defines the JSON messages exchanged between a driver and
// the calculator worker, their schema validation, and the protobuf envelope
// they travel in between actors.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/swarm"
)

var (
	// ErrUnknownMessage is returned for a message whose type is not handled.
	ErrUnknownMessage = errors.New("unknown message type")
	// ErrInvalidMessage is returned for a message failing its schema.
	ErrInvalidMessage = errors.New("invalid message")
)

// Type is the "type" discriminator of every message.
type Type string

const (
	TypeGenerate           Type = "generate"
	TypeUpdateNextPosition Type = "update-nextPosition"
	TypeError              Type = "error"
)

// Message is implemented by every wire message.
type Message interface {
	MessageType() Type
}

// GenerateRequest asks for Todo generations starting from State, the first
// one being numbered Iter.
type GenerateRequest struct {
	Type  Type          `json:"type"`
	Iter  int           `json:"iter"`
	Todo  int           `json:"todo"`
	State []swarm.Robot `json:"state"`
	Range float64       `json:"range"`
	// Dimension defaults to the line when zero.
	Dimension int    `json:"dimension,omitempty"`
	Mode      string `json:"mode,omitempty"`
}

// GenerateResponse carries one computed generation.
type GenerateResponse struct {
	Type     Type             `json:"type"`
	Response swarm.Generation `json:"response"`
}

// UpdateNextPosition switches the 1D policy for the generations not computed yet.
type UpdateNextPosition struct {
	Type  Type   `json:"type"`
	Value string `json:"value"`
}

// ErrorMessage reports a rejected request.
type ErrorMessage struct {
	Type  Type   `json:"type"`
	Error string `json:"error"`
}

func (GenerateRequest) MessageType() Type    { return TypeGenerate }
func (GenerateResponse) MessageType() Type   { return TypeGenerate }
func (UpdateNextPosition) MessageType() Type { return TypeUpdateNextPosition }
func (ErrorMessage) MessageType() Type       { return TypeError }

func NewGenerateRequest(iter, todo int, state []swarm.Robot, vision float64) *GenerateRequest {
	return &GenerateRequest{Type: TypeGenerate, Iter: iter, Todo: todo, State: state, Range: vision}
}

func NewGenerateResponse(g swarm.Generation) *GenerateResponse {
	return &GenerateResponse{Type: TypeGenerate, Response: g}
}

func NewUpdateNextPosition(value string) *UpdateNextPosition {
	return &UpdateNextPosition{Type: TypeUpdateNextPosition, Value: value}
}

func NewErrorMessage(err error) *ErrorMessage {
	return &ErrorMessage{Type: TypeError, Error: err.Error()}
}

// Dim returns the requested dimension, the line by default.
func (r *GenerateRequest) Dim() swarm.Dimension {
	if r.Dimension == 0 {
		return swarm.Line
	}
	return swarm.Dimension(r.Dimension)
}

// Encode marshals a message to its JSON wire form.
func Encode(m Message) ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", m.MessageType(), err)
	}
	return b, nil
}

// DecodeRequest validates and decodes a message sent to the worker:
// a *GenerateRequest or an *UpdateNextPosition.
func DecodeRequest(data []byte) (Message, error) {
	t, doc, err := peek(data)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeGenerate:
		return decode(data, doc, schemaGenerate, &GenerateRequest{})
	case TypeUpdateNextPosition:
		return decode(data, doc, schemaUpdateNextPosition, &UpdateNextPosition{})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, t)
	}
}

// DecodeResponse validates and decodes a message sent by the worker:
// a *GenerateResponse or an *ErrorMessage.
func DecodeResponse(data []byte) (Message, error) {
	t, doc, err := peek(data)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeGenerate:
		return decode(data, doc, schemaGenerateResponse, &GenerateResponse{})
	case TypeError:
		return decode(data, doc, schemaError, &ErrorMessage{})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, t)
	}
}

// peek parses data once, returning its type and the generic document for validation.
func peek(data []byte) (Type, interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return "", nil, fmt.Errorf("%w: not a JSON object", ErrInvalidMessage)
	}
	t, _ := obj["type"].(string)
	return Type(t), doc, nil
}

func decode[M Message](data []byte, doc interface{}, schema string, m M) (Message, error) {
	if err := validate(schema, doc); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return m, nil
}
