package lobby

import (
	"context"

	"github.com/jacobpatterson1549/prisoners-dilemma/game/message"
)

type mockRunner struct {
	RunFunc func(ctx context.Context, in <-chan message.Message) <-chan message.Message
}

func (m *mockRunner) Run(ctx context.Context, in <-chan message.Message) <-chan message.Message {
	return m.RunFunc(ctx, in)
}

// echoRunner returns a runner that passes its input to the channel and sends its output from the other channel.
func echoRunner(ins chan<- message.Message, out <-chan message.Message) *mockRunner {
	return &mockRunner{
		RunFunc: func(ctx context.Context, in <-chan message.Message) <-chan message.Message {
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case m := <-in:
						ins <- m
					}
				}
			}()
			return out
		},
	}
}
