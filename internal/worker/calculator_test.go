package worker

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/protocol"
	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/swarm"
)

func newTestSystem(t *testing.T) actor.ActorSystem {
	t.Helper()
	ctx := context.Background()
	system, err := actor.NewActorSystem("SwarmTest",
		actor.WithLogger(golog.DiscardLogger),
		actor.WithActorInitMaxRetries(3))
	require.NoError(t, err)
	require.NoError(t, system.Start(ctx))
	t.Cleanup(func() { _ = system.Stop(ctx) })
	return system
}

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), newTestSystem(t), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func next(t *testing.T, s *Session) protocol.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m, err := s.Next(ctx)
	require.NoError(t, err)
	return m
}

func nextGeneration(t *testing.T, s *Session) swarm.Generation {
	t.Helper()
	m := next(t, s)
	resp, ok := m.(*protocol.GenerateResponse)
	require.True(t, ok, "expected a generate response, got %#v", m)
	return resp.Response
}

func scatteredLine(n int, seed uint64) []swarm.Robot {
	rng := rand.New(rand.NewPCG(seed, seed))
	robots := make([]swarm.Robot, n)
	for i := range robots {
		robots[i] = swarm.Robot{Label: fmt.Sprintf("r%d", i), X: rng.Float64() * 200}
	}
	swarm.SortByX(robots)
	return robots
}

func TestCalculator_TwoRobots(t *testing.T) {
	s := newTestSession(t, Options{})
	state := []swarm.Robot{{Label: "A", X: 0}, {Label: "B", X: 20}}
	require.NoError(t, s.Send(context.Background(), protocol.NewGenerateRequest(1, 1, state, 100)))

	g := nextGeneration(t, s)
	assert.Equal(t, 1, g.Iter)
	for _, r := range g.Robots {
		assert.Equal(t, 10.0, r.X, r.Label)
	}
}

func TestCalculator_StreamsInOrder(t *testing.T) {
	s := newTestSession(t, Options{})
	state := scatteredLine(20, 1)
	require.NoError(t, s.Send(context.Background(), protocol.NewGenerateRequest(5, 25, state, 15)))

	prev := state
	for iter := 5; iter < 30; iter++ {
		g := nextGeneration(t, s)
		require.Equal(t, iter, g.Iter)
		assert.Equal(t, swarm.StepLine(prev, 15, swarm.PolicyExtremes), g.Robots)
		prev = g.Robots
	}
}

func TestCalculator_TodoZeroIsSilent(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx := context.Background()
	state := []swarm.Robot{{Label: "A", X: 0}, {Label: "B", X: 20}}
	require.NoError(t, s.Send(ctx, protocol.NewGenerateRequest(1, 0, state, 100)))
	require.NoError(t, s.Send(ctx, protocol.NewGenerateRequest(7, 1, state, 100)))

	// the first response comes from the second request
	assert.Equal(t, 7, nextGeneration(t, s).Iter)
}

func TestCalculator_PolicyBeforeBatch(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx := context.Background()
	state := scatteredLine(15, 2)
	require.NoError(t, s.SendRaw(ctx, []byte(`{"type":"update-nextPosition","value":"all"}`)))
	require.NoError(t, s.Send(ctx, protocol.NewGenerateRequest(1, 3, state, 20)))

	prev := state
	for i := 0; i < 3; i++ {
		g := nextGeneration(t, s)
		assert.Equal(t, swarm.StepLine(prev, 20, swarm.PolicyAllVisible), g.Robots)
		prev = g.Robots
	}
}

func TestCalculator_PolicyChangeMidBatch(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx := context.Background()
	state := scatteredLine(30, 3)
	const todo, vision = 120, 15.0
	require.NoError(t, s.Send(ctx, protocol.NewGenerateRequest(1, todo, state, vision)))

	first := nextGeneration(t, s)
	require.Equal(t, swarm.StepLine(state, vision, swarm.PolicyExtremes), first.Robots)
	require.NoError(t, s.Send(ctx, protocol.NewUpdateNextPosition("all")))

	same := func(a, b []swarm.Robot) bool {
		for i := range a {
			if a[i].Label != b[i].Label || math.Abs(a[i].X-b[i].X) > 1e-12 {
				return false
			}
		}
		return true
	}

	prev, switched := first.Robots, 0
	for iter := 2; iter <= todo; iter++ {
		g := nextGeneration(t, s)
		extremes := swarm.StepLine(prev, vision, swarm.PolicyExtremes)
		all := swarm.StepLine(prev, vision, swarm.PolicyAllVisible)
		switch {
		case switched == 0 && same(g.Robots, all) && !same(g.Robots, extremes):
			switched = iter
		case switched == 0:
			require.True(t, same(g.Robots, extremes), "generation %d matches no policy", iter)
		default:
			require.True(t, same(g.Robots, all), "generation %d went back to extremes after the switch at %d", iter, switched)
		}
		prev = g.Robots
	}
	assert.Greater(t, switched, 1, "the policy change must not apply retroactively")
	assert.Equal(t, swarm.PolicyAllVisible, swarm.ParsePolicy("all"))
}

func TestCalculator_Plane(t *testing.T) {
	s := newTestSession(t, Options{Index: swarm.IndexRTree, Seed: 9})
	state := []swarm.Robot{{Label: "a", X: 0, Y: 0}, {Label: "b", X: 4, Y: 0}, {Label: "c", X: 0, Y: 3}}
	req := protocol.NewGenerateRequest(1, 1, state, 10)
	req.Dimension, req.Mode = 2, "center"
	require.NoError(t, s.Send(context.Background(), req))

	g := nextGeneration(t, s)
	for _, r := range g.Robots {
		assert.InDelta(t, 2, r.X, 1e-9)
		assert.InDelta(t, 1.5, r.Y, 1e-9)
	}
}

func TestCalculator_RejectsAndKeepsRunning(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx := context.Background()

	// passes the schema, fails the engine boundary
	dup := []swarm.Robot{{Label: "A", X: 0}, {Label: "A", X: 1}}
	require.NoError(t, s.Send(ctx, protocol.NewGenerateRequest(1, 1, dup, 10)))
	m := next(t, s)
	require.IsType(t, &protocol.ErrorMessage{}, m)
	assert.Contains(t, m.(*protocol.ErrorMessage).Error, "duplicate label")

	// fails the schema
	bad, err := structpb.NewStruct(map[string]interface{}{"type": "generate", "iter": 0})
	require.NoError(t, err)
	require.NoError(t, actor.Tell(ctx, s.pid, bad))
	require.IsType(t, &protocol.ErrorMessage{}, next(t, s))

	require.NoError(t, s.Send(ctx, protocol.NewGenerateRequest(1, 1, []swarm.Robot{{Label: "A", X: 3}}, 10)))
	assert.Equal(t, 3.0, nextGeneration(t, s).Robots[0].X)
}

func TestSession_SendRawRejectsInvalid(t *testing.T) {
	s := newTestSession(t, Options{})
	err := s.SendRaw(context.Background(), []byte(`{"type":"explode"}`))
	assert.ErrorIs(t, err, protocol.ErrUnknownMessage)
}
