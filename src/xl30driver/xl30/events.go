package xl30

// OperationEvent is published on a Session's internal event bus around
// every typed operation, for observability hooks that want more structure
// than log lines (metrics, UI status, test assertions).
type OperationEvent struct {
	Op      string
	Success bool
	Err     error
}

// Events returns a channel of OperationEvent for every operation this
// session runs from now on. Publication never blocks the session: an
// event is dropped when the subscriber's channel is full. Close shuts the
// broker down.
func (s *Session) Events() chan interface{} {
	return s.broker.Sub(eventsTopic)
}

func (s *Session) publish(op string, err error) {
	s.broker.TryPub(OperationEvent{Op: op, Success: err == nil, Err: err}, eventsTopic)
}
