package resources

import "context"

// Addresses resolves the queue and topic used by the publisher.
type Addresses struct {
	resolver *Resolver
	queue    Resource
	topic    Resource
}

func NewAddresses(resolver *Resolver, queue, topic Resource) *Addresses {
	return &Addresses{
		resolver: resolver,
		queue:    queue,
		topic:    topic,
	}
}

func (a *Addresses) QueueURL(ctx context.Context) (string, error) {
	return a.resolver.Resolve(ctx, a.queue)
}

func (a *Addresses) TopicARN(ctx context.Context) (string, error) {
	return a.resolver.Resolve(ctx, a.topic)
}
