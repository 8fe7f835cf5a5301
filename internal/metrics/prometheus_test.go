package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPrometheusCollectorRecordsConnections(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	c.ConnectionOpened()
	c.ConnectionOpened()
	c.ConnectionClosed()

	metricFamilies, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	gauge := findMetric(t, metricFamilies, "b2fd_connections_active")
	if got := gauge.GetGauge().GetValue(); got != 1 {
		t.Errorf("connections_active = %v, want 1", got)
	}

	counter := findMetric(t, metricFamilies, "b2fd_connections_total")
	if got := counter.GetCounter().GetValue(); got != 2 {
		t.Errorf("connections_total = %v, want 2", got)
	}
}

func TestPrometheusCollectorRecordsRejections(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	c.MessageRejected("checksum")
	c.MessageRejected("checksum")
	c.MessageRejected("duplicate_mid")

	metricFamilies, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	family := findMetric(t, metricFamilies, "b2fd_messages_rejected_total")
	var checksumCount float64
	for _, m := range family.GetMetric() {
		for _, lbl := range m.GetLabel() {
			if lbl.GetName() == "reason" && lbl.GetValue() == "checksum" {
				checksumCount = m.GetCounter().GetValue()
			}
		}
	}
	if checksumCount != 2 {
		t.Errorf("checksum rejections = %v, want 2", checksumCount)
	}
}

func findMetric(t *testing.T, families []*dto.MetricFamily, name string) *dto.MetricFamily {
	t.Helper()
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric family %q not found", name)
	return nil
}
