package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tochemey/goakt/v3/actor"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/protocol"
)

// responseBuffer lets a batch run ahead of a slow reader by one batch or so.
const responseBuffer = 16

// Session is one driver's private calculator: a spawned Calculator actor plus
// the channel its responses arrive on.
type Session struct {
	Name string

	system    actor.ActorSystem
	pid       *actor.PID
	responses chan *structpb.Struct
}

// NewSession spawns a Calculator named after a fresh uuid in system.
func NewSession(ctx context.Context, system actor.ActorSystem, opts Options) (*Session, error) {
	responses := make(chan *structpb.Struct, responseBuffer)
	name := "calculator-" + uuid.NewString()
	pid, err := system.Spawn(ctx, name, NewCalculator(responses, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn %s: %w", name, err)
	}
	return &Session{Name: name, system: system, pid: pid, responses: responses}, nil
}

// Send delivers a request (generate or update-nextPosition) to the calculator.
func (s *Session) Send(ctx context.Context, m protocol.Message) error {
	msg, err := protocol.ToStruct(m)
	if err != nil {
		return err
	}
	if err := actor.Tell(ctx, s.pid, msg); err != nil {
		return fmt.Errorf("failed to reach %s: %w", s.Name, err)
	}
	return nil
}

// SendRaw validates a JSON request as received from the wire and delivers it.
func (s *Session) SendRaw(ctx context.Context, data []byte) error {
	m, err := protocol.DecodeRequest(data)
	if err != nil {
		return err
	}
	return s.Send(ctx, m)
}

// Responses streams generate responses and error messages, in production order.
func (s *Session) Responses() <-chan *structpb.Struct {
	return s.responses
}

// Next waits for the next response and decodes it.
func (s *Session) Next(ctx context.Context) (protocol.Message, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg := <-s.responses:
		return protocol.ResponseFromStruct(msg)
	}
}

// Close stops the calculator; a batch in flight is abandoned.
func (s *Session) Close(ctx context.Context) error {
	return s.pid.Shutdown(ctx)
}
