package messaging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Topics of the in-process bus
const (
	TopicClientStatus = "client.status"
)

// NewInProcessBus creates the in-process pub/sub used between the sync core
// and its background consumers.
func NewInProcessBus(debug bool) *gochannel.GoChannel {
	return gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(debug, false),
	)
}
