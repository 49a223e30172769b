package service

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Source names where a presence payload entered this instance.
type Source string

const (
	SourceHTTP    Source = "http"
	SourceSocket  Source = "socket"
	SourceNATS    Source = "nats"
	SourceCluster Source = "cluster"
)

// MetadataSource is the watermill metadata key carrying the Source.
const MetadataSource = "source"

// relayed reports whether payloads from s must be shared with the other
// instances. NATS delivers to every instance already and cluster payloads
// came from another instance.
func (s Source) relayed() bool {
	return s == SourceHTTP || s == SourceSocket
}

type IPublisherService interface {
	Publish(ctx context.Context, source Source, payload []byte) error
}

type publisherService struct {
	topicName string
	pubSub    message.Publisher
}

func NewPublisherService(topicName string, pubSub message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

// Publish puts one raw presence payload on the in-process bus.
func (ps *publisherService) Publish(ctx context.Context, source Source, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataSource, string(source))
	msg.SetContext(ctx)
	return ps.pubSub.Publish(ps.topicName, msg)
}
