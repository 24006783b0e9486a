package worker

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/protocol"
	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/swarm"
)

// queueSize is how many generate requests may wait behind the running batch.
const queueSize = 64

var errStopped = errors.New("calculator stopped")

// Calculator is the actor computing generations. Requests are batches run one
// at a time, in arrival order, on a goroutine the actor owns, so that control
// messages keep being received while a batch is computing. Every generation
// is pushed to out as soon as it exists.
type Calculator struct {
	out  chan<- *structpb.Struct
	opts Options

	policy atomic.Int32

	logger golog.Logger
	queue  chan *protocol.GenerateRequest
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Enforce interface compliance
var _ actor.Actor = (*Calculator)(nil)

func NewCalculator(out chan<- *structpb.Struct, opts Options) *Calculator {
	c := &Calculator{out: out, opts: opts}
	c.policy.Store(int32(opts.Policy))
	return c
}

// Policy returns the 1D policy the next generation will use.
func (c *Calculator) Policy() swarm.Policy {
	return swarm.Policy(c.policy.Load())
}

func (c *Calculator) PreStart(ctx *actor.Context) error {
	c.logger = ctx.ActorSystem().Logger()
	c.queue = make(chan *protocol.GenerateRequest, queueSize)

	seed := c.opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.wg.Add(1)
	go c.run(c.ctx, rng)
	return nil
}

func (c *Calculator) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("%s started (index %s)", ctx.Self().Name(), c.opts.Index)

	case *structpb.Struct:
		m, err := protocol.RequestFromStruct(msg)
		if err != nil {
			ctx.Logger().Warnf("%s rejected a message: %v", ctx.Self().Name(), err)
			c.reject(err)
			return
		}
		switch m := m.(type) {
		case *protocol.GenerateRequest:
			select {
			case c.queue <- m:
			default:
				c.reject(fmt.Errorf("too many pending requests (%d), dropped generate iter=%d", queueSize, m.Iter))
			}
		case *protocol.UpdateNextPosition:
			policy := swarm.ParsePolicy(m.Value)
			c.policy.Store(int32(policy))
			ctx.Logger().Infof("%s next position policy: %s", ctx.Self().Name(), policy)
		}

	default:
		ctx.Unhandled()
	}
}

func (c *Calculator) PostStop(ctx *actor.Context) error {
	c.cancel()
	c.wg.Wait()
	ctx.ActorSystem().Logger().Infof("%s stopped", ctx.ActorName())
	return nil
}

// run executes queued batches until ctx is cancelled.
func (c *Calculator) run(ctx context.Context, rng *rand.Rand) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-c.queue:
			if err := c.generate(ctx, req, rng); err != nil {
				if errors.Is(err, errStopped) || errors.Is(err, context.Canceled) {
					return
				}
				c.logger.Warnf("generate iter=%d todo=%d failed: %v", req.Iter, req.Todo, err)
				_ = c.send(ctx, protocol.NewErrorMessage(err))
			}
		}
	}
}

func (c *Calculator) generate(ctx context.Context, req *protocol.GenerateRequest, rng *rand.Rand) error {
	wireMode := req.Mode
	if wireMode == "" {
		wireMode = string(c.opts.Mode)
	}
	mode, err := swarm.ParseMode(wireMode)
	if err != nil {
		return err
	}
	engine := &swarm.Engine{
		Range:        req.Range,
		Dimension:    req.Dim(),
		PolicySource: c.Policy,
		Mode:         mode,
		Index:        c.opts.Index,
		Rand:         rng,
		Logger:       c.logger,
	}
	c.logger.Debugf("generate iter=%d todo=%d robots=%d %s", req.Iter, req.Todo, len(req.State), engine.Dimension)
	return engine.Generate(ctx, req.Iter, req.Todo, req.State, func(g swarm.Generation) error {
		return c.send(ctx, protocol.NewGenerateResponse(g))
	})
}

func (c *Calculator) reject(err error) {
	_ = c.send(c.ctx, protocol.NewErrorMessage(err))
}

// send blocks until the message is taken: generations are never dropped.
func (c *Calculator) send(ctx context.Context, m protocol.Message) error {
	s, err := protocol.ToStruct(m)
	if err != nil {
		return err
	}
	select {
	case c.out <- s:
		return nil
	case <-ctx.Done():
		return errStopped
	}
}
