package metrics

import "testing"

// TestNoopCollectorSatisfiesInterface ensures NoopCollector never panics and
// remains a valid stand-in for Collector when metrics are disabled.
func TestNoopCollectorSatisfiesInterface(t *testing.T) {
	var c Collector = &NoopCollector{}

	c.ConnectionOpened()
	c.ConnectionClosed()
	c.AuthAttempt("N0CALL", true)
	c.ProposalReceived()
	c.MessageAccepted(1024)
	c.MessageRejected("checksum")
	c.BatchDuration(1.5)
}
