package messaging

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Broker selects the transport used for events.
type Broker string

const (
	// BrokerMemory delivers events in-process; publisher and consumers must share one PubSub.
	BrokerMemory Broker = "memory"
	// BrokerRedis delivers events over Redis streams.
	BrokerRedis Broker = "redis"
)

// DefaultConsumerGroup is the Redis stream consumer group used by the analytics consumers.
const DefaultConsumerGroup = "analytics"

// PubSub pairs a publisher with the subscriber reading the same transport.
type PubSub struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// NewGoChannelPubSub returns an in-process pub/sub. Both halves are the same GoChannel.
func NewGoChannelPubSub(logger *zap.Logger) PubSub {
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            256,
		BlockPublishUntilSubscriberAck: false,
	}, NewZapLogger(logger))

	return PubSub{Publisher: ch, Subscriber: ch}
}

// NewRedisPublisher returns a publisher writing to Redis streams.
func NewRedisPublisher(client redis.UniversalClient, logger *zap.Logger) (message.Publisher, error) {
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client:     client,
		Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
	}, NewZapLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create redis stream publisher: %w", err)
	}

	return publisher, nil
}

// NewRedisSubscriber returns a subscriber reading Redis streams as a member of consumerGroup.
func NewRedisSubscriber(
	client redis.UniversalClient,
	consumerGroup string,
	logger *zap.Logger,
) (message.Subscriber, error) {
	if consumerGroup == "" {
		consumerGroup = DefaultConsumerGroup
	}

	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
		ConsumerGroup: consumerGroup,
	}, NewZapLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create redis stream subscriber: %w", err)
	}

	return subscriber, nil
}
