package obs_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/noah-isme/kasir-scan/internal/obs"
)

func TestDomainMetricsRecord(t *testing.T) {
	obs.MustRegisterDomainMetrics("kasir", prometheus.NewRegistry())

	before := testutil.ToFloat64(obs.ScanObservedTotal.WithLabelValues("suppressed"))
	obs.RecordScanObserved("suppressed")
	if got := testutil.ToFloat64(obs.ScanObservedTotal.WithLabelValues("suppressed")); got != before+1 {
		t.Fatalf("expected suppressed count %v, got %v", before+1, got)
	}

	obs.RecordCartScan("lookup_failed")
	if got := testutil.ToFloat64(obs.CartScanTotal.WithLabelValues("lookup_failed")); got < 1 {
		t.Fatalf("expected lookup_failed to be counted")
	}

	obs.RecordLineAdjust("decrement")
	if got := testutil.ToFloat64(obs.CartLineAdjustTotal.WithLabelValues("decrement")); got < 1 {
		t.Fatalf("expected decrement to be counted")
	}

	obs.SetInvoiceFinal(765)
	if got := testutil.ToFloat64(obs.InvoiceFinalAmount); got != 765 {
		t.Fatalf("expected gauge 765, got %v", got)
	}
}

func TestParseBucketsCSV(t *testing.T) {
	got := obs.ParseBucketsCSV(" 5, x, -1, 250,,10 ")
	want := []float64{5, 250, 10}
	if len(got) != len(want) {
		t.Fatalf("expected %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v got %v", want, got)
		}
	}
	if obs.ParseBucketsCSV("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
