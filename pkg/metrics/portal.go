package metrics

import "github.com/prometheus/client_golang/prometheus"

// PortalMetrics tracks domain-level counters for the membership portal.
type PortalMetrics struct {
	subscriptionsExpired prometheus.Counter
	notificationsEmitted *prometheus.CounterVec
	notificationsDeduped *prometheus.CounterVec
	seatAssignments      prometheus.Counter
	waitingListAdditions prometheus.Counter
}

// NewPortalMetrics registers portal counters on the provided registerer.
func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	if reg == nil {
		return &PortalMetrics{}
	}
	subscriptionsExpired := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "evolve",
		Name:      "subscriptions_expired_total",
		Help:      "Subscriptions marked expired by the sweep.",
	})
	notificationsEmitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evolve",
		Name:      "notifications_emitted_total",
		Help:      "Notifications persisted by the generator.",
	}, []string{"type"})
	notificationsDeduped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evolve",
		Name:      "notifications_deduped_total",
		Help:      "Notifications skipped because an equivalent one already exists.",
	}, []string{"type"})
	seatAssignments := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "evolve",
		Name:      "seat_assignments_total",
		Help:      "Successful seat assignments.",
	})
	waitingListAdditions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "evolve",
		Name:      "waiting_list_additions_total",
		Help:      "Assignment requests diverted to the waiting list.",
	})
	reg.MustRegister(subscriptionsExpired, notificationsEmitted, notificationsDeduped, seatAssignments, waitingListAdditions)
	return &PortalMetrics{
		subscriptionsExpired: subscriptionsExpired,
		notificationsEmitted: notificationsEmitted,
		notificationsDeduped: notificationsDeduped,
		seatAssignments:      seatAssignments,
		waitingListAdditions: waitingListAdditions,
	}
}

// AddSubscriptionsExpired records how many subscriptions a sweep expired.
func (p *PortalMetrics) AddSubscriptionsExpired(n int) {
	if p == nil || p.subscriptionsExpired == nil || n <= 0 {
		return
	}
	p.subscriptionsExpired.Add(float64(n))
}

// IncNotificationEmitted counts a persisted notification of the given type.
func (p *PortalMetrics) IncNotificationEmitted(notificationType string) {
	if p == nil || p.notificationsEmitted == nil {
		return
	}
	p.notificationsEmitted.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

// IncNotificationDeduped counts a notification suppressed by deduplication.
func (p *PortalMetrics) IncNotificationDeduped(notificationType string) {
	if p == nil || p.notificationsDeduped == nil {
		return
	}
	p.notificationsDeduped.WithLabelValues(normalizeLabel(notificationType)).Inc()
}

// IncSeatAssignment counts a completed seat assignment.
func (p *PortalMetrics) IncSeatAssignment() {
	if p == nil || p.seatAssignments == nil {
		return
	}
	p.seatAssignments.Inc()
}

// IncWaitingListAddition counts an assignment diverted to the waiting list.
func (p *PortalMetrics) IncWaitingListAddition() {
	if p == nil || p.waitingListAdditions == nil {
		return
	}
	p.waitingListAdditions.Inc()
}
