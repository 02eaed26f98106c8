package message

import (
	"context"
	"math/rand"

	"github.com/jacobpatterson1549/prisoners-dilemma/server/log"
)

// sendDebugID creates an id to pair the debug logs of a message being sent.
var sendDebugID = rand.Int

// Send is a utility function for sending messages on the out channel.
// Debug messages are logged before and after the message is sent to help identify deadlocks.
// The message is dropped if the context is done before it can be sent.
func Send(ctx context.Context, m Message, out chan<- Message, log log.Logger) {
	id := sendDebugID()
	log.Debugf("[id: %v] sending %v message: %v", id, m.Type, m.Info)
	select {
	case <-ctx.Done():
		log.Debugf("[id: %v] message dropped: %v", id, ctx.Err())
	case out <- m:
		log.Debugf("[id: %v] message sent", id)
	}
}
