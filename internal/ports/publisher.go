package ports

import "context"

// Publisher delivers an encoded tenant event to a topic. The store adapter calls it after local
// caches have already been invalidated; a failure is logged by the caller and never fails the write.
type Publisher interface {
	PublishRaw(ctx context.Context, topicARN string, payload []byte) error
}
