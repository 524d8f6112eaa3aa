package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestPortalMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPortalMetrics(reg)

	metrics.AddSubscriptionsExpired(3)
	metrics.AddSubscriptionsExpired(0)
	metrics.IncNotificationEmitted("subscription_expiry_3days")
	metrics.IncNotificationEmitted("subscription_expiry_3days")
	metrics.IncNotificationDeduped("subscription_expiry_3days")
	metrics.IncSeatAssignment()
	metrics.IncWaitingListAddition()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	emitted, err := fetchCounterValue(mfs, "evolve_notifications_emitted_total", "type", "subscription_expiry_3days")
	if err != nil {
		t.Fatalf("fetch emitted: %v", err)
	}
	if emitted != 2 {
		t.Fatalf("expected emitted=2, got %f", emitted)
	}

	deduped, err := fetchCounterValue(mfs, "evolve_notifications_deduped_total", "type", "subscription_expiry_3days")
	if err != nil {
		t.Fatalf("fetch deduped: %v", err)
	}
	if deduped != 1 {
		t.Fatalf("expected deduped=1, got %f", deduped)
	}

	expired := findMetricFamily(mfs, "evolve_subscriptions_expired_total")
	if expired == nil {
		t.Fatal("evolve_subscriptions_expired_total not found")
	}
	if got := expired.GetMetric()[0].GetCounter().GetValue(); got != 3 {
		t.Fatalf("expected expired=3, got %f", got)
	}
}

func TestPortalMetricsNilSafe(t *testing.T) {
	var metrics *PortalMetrics
	metrics.AddSubscriptionsExpired(5)
	metrics.IncNotificationEmitted("x")
	metrics.IncNotificationDeduped("x")
	metrics.IncSeatAssignment()
	metrics.IncWaitingListAddition()
}
