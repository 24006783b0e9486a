package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct wraps a message in a protobuf Struct so it can be sent to an actor.
func ToStruct(m Message) (*structpb.Struct, error) {
	b, err := Encode(m)
	if err != nil {
		return nil, err
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("failed to wrap %s message: %w", m.MessageType(), err)
	}
	return s, nil
}

// RequestFromStruct unwraps and validates a message sent to the worker.
func RequestFromStruct(s *structpb.Struct) (Message, error) {
	b, err := protojson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap message: %w", err)
	}
	return DecodeRequest(b)
}

// ResponseFromStruct unwraps and validates a message sent by the worker.
func ResponseFromStruct(s *structpb.Struct) (Message, error) {
	b, err := protojson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap message: %w", err)
	}
	return DecodeResponse(b)
}
