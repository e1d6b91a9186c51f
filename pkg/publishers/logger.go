package publishers

// Logger defines the logging surface publishers rely on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}

// logDelivery reports the outcome of a single sink delivery.
func logDelivery(log Logger, p Publisher, evt Event, err error) {
	fields := map[string]any{
		"publisher_id":   p.ID(),
		"publisher_type": p.Type(),
		"event_kind":     string(evt.Kind),
		"resource_id":    evt.ResourceID,
	}
	if err != nil {
		fields["error"] = err.Error()
		log.ErrorObj("publisher send failed", "publisher_error", fields)
		return
	}
	log.DebugObj("publisher delivered event", "publisher_delivery", fields)
}
