package service

import (
	"context"

	"workshop-app-be/internal/pkg/logger"
	"workshop-app-be/internal/presence"
	"workshop-app-be/pkg/events"
	pktNats "workshop-app-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Relay shares accepted local payloads with the other instances.
type Relay interface {
	Relay(ctx context.Context, payload []byte) error
}

// EventSubscriber is the subscribing half of the NATS bus.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, consumerName string, handler pktNats.EventHandler) error
}

type IPresenceFeedService interface {
	Consume(ctx context.Context) error
}

type presenceFeedService struct {
	pubSub    message.Subscriber
	topicName string
	ingress   *presence.Ingress
	relay     Relay
	logger    logger.ILogger
}

// NewPresenceFeedService drains the presence topic into ingress. relay may
// be nil on a single instance.
func NewPresenceFeedService(
	pubSub message.Subscriber,
	topicName string,
	ingress *presence.Ingress,
	relay Relay,
	log logger.ILogger,
) IPresenceFeedService {
	return &presenceFeedService{
		pubSub:    pubSub,
		topicName: topicName,
		ingress:   ingress,
		relay:     relay,
		logger:    log,
	}
}

// Consume subscribes to the topic and processes messages until ctx is done.
func (s *presenceFeedService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *presenceFeedService) processMessage(ctx context.Context, msg *message.Message) {
	// Malformed payloads are acked too, retrying cannot fix them
	defer msg.Ack()

	if !s.ingress.Accept(msg.Payload) {
		return
	}

	source := Source(msg.Metadata.Get(MetadataSource))
	if s.relay == nil || !source.relayed() {
		return
	}
	if err := s.relay.Relay(ctx, msg.Payload); err != nil {
		s.logger.Warn("PresenceFeed", "Failed to relay presence event", map[string]interface{}{
			"error":  err.Error(),
			"source": string(source),
		})
	}
}

// ForwardFromNATS republishes every presence event of the NATS bus onto
// the in-process topic.
func ForwardFromNATS(ctx context.Context, sub EventSubscriber, subject, consumerName string, pub IPublisherService) error {
	return sub.Subscribe(ctx, subject, consumerName, func(ctx context.Context, event events.Event) error {
		return pub.Publish(ctx, SourceNATS, event.Payload())
	})
}
