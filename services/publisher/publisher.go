package publisher

// Publisher delivers analysis records to downstream consumers
type Publisher interface {
	// Publish appends one message to the stream under the given key
	Publish(key string, message []byte) error

	// Close closes the publisher connection
	Close() error
}
