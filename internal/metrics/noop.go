package metrics

// NoopCollector is a no-op implementation of the Collector interface.
// All methods are empty stubs that do nothing.
type NoopCollector struct{}

// ConnectionOpened is a no-op.
func (n *NoopCollector) ConnectionOpened() {}

// ConnectionClosed is a no-op.
func (n *NoopCollector) ConnectionClosed() {}

// AuthAttempt is a no-op.
func (n *NoopCollector) AuthAttempt(callsign string, success bool) {}

// ProposalReceived is a no-op.
func (n *NoopCollector) ProposalReceived() {}

// MessageAccepted is a no-op.
func (n *NoopCollector) MessageAccepted(sizeBytes int64) {}

// MessageRejected is a no-op.
func (n *NoopCollector) MessageRejected(reason string) {}

// BatchDuration is a no-op.
func (n *NoopCollector) BatchDuration(seconds float64) {}
