package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// ScanObservedTotal counts raw decode events by debouncer outcome.
	ScanObservedTotal *prometheus.CounterVec
	// CartScanTotal counts logical scans by cart outcome.
	CartScanTotal *prometheus.CounterVec
	// CartLineAdjustTotal counts manual quantity adjustments.
	CartLineAdjustTotal *prometheus.CounterVec
	// InvoiceFinalAmount reports the payable amount of the active session.
	InvoiceFinalAmount prometheus.Gauge
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		ScanObservedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_observed_total",
			Help:      "Count of decode events by debouncer outcome.",
		}, []string{"result"})
		CartScanTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_scan_total",
			Help:      "Count of logical scans applied to the cart by outcome.",
		}, []string{"result"})
		CartLineAdjustTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_line_adjust_total",
			Help:      "Count of manual line quantity adjustments.",
		}, []string{"direction"})
		InvoiceFinalAmount = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "invoice_final_amount",
			Help:      "Final payable amount of the active checkout session.",
		})

		ScanObservedTotal = registerOrReuse(reg, ScanObservedTotal)
		CartScanTotal = registerOrReuse(reg, CartScanTotal)
		CartLineAdjustTotal = registerOrReuse(reg, CartLineAdjustTotal)
		InvoiceFinalAmount = registerOrReuse(reg, InvoiceFinalAmount)
	})
}

// RecordScanObserved increments ScanObservedTotal when registered.
func RecordScanObserved(result string) {
	if ScanObservedTotal != nil {
		ScanObservedTotal.WithLabelValues(result).Inc()
	}
}

// RecordCartScan increments CartScanTotal when registered.
func RecordCartScan(result string) {
	if CartScanTotal != nil {
		CartScanTotal.WithLabelValues(result).Inc()
	}
}

// RecordLineAdjust increments CartLineAdjustTotal when registered.
func RecordLineAdjust(direction string) {
	if CartLineAdjustTotal != nil {
		CartLineAdjustTotal.WithLabelValues(direction).Inc()
	}
}

// SetInvoiceFinal updates InvoiceFinalAmount when registered.
func SetInvoiceFinal(amount float64) {
	if InvoiceFinalAmount != nil {
		InvoiceFinalAmount.Set(amount)
	}
}
