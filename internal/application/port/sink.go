package port

// Sink fans a message out to every connected subscriber.
// It returns how many subscribers accepted the write.
type Sink interface {
	Broadcast(v any) (int, error)
}
