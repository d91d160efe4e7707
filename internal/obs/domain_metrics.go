package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// VerificationTotal counts amount verification outcomes. Mismatches
	// feed the fraud-investigation dashboard.
	VerificationTotal *prometheus.CounterVec
	// CheckoutTotal counts checkout request outcomes.
	CheckoutTotal *prometheus.CounterVec
	// CartQuoteTotal counts quote requests.
	CartQuoteTotal prometheus.Counter
	// SequenceAllocations counts order number allocations.
	SequenceAllocations *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers the domain-specific
// Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		VerificationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "amount_verification_total",
			Help:      "Count of payment amount verification outcomes.",
		}, []string{"result"})
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout request outcomes.",
		}, []string{"result"})
		CartQuoteTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_quote_total",
			Help:      "Count of cart quote requests.",
		})
		SequenceAllocations = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_sequence_allocations_total",
			Help:      "Count of order number allocation outcomes.",
		}, []string{"result"})

		mustRegisterCollector(reg, VerificationTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				VerificationTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutTotal = v
			}
		})
		mustRegisterCollector(reg, CartQuoteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				CartQuoteTotal = v
			}
		})
		mustRegisterCollector(reg, SequenceAllocations, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SequenceAllocations = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
