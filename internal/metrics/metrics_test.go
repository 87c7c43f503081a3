package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordPreOrder(t *testing.T) {
	before := testutil.ToFloat64(PreOrderQuantity)
	RecordPreOrder(3)
	if got := testutil.ToFloat64(PreOrderQuantity) - before; got != 3 {
		t.Fatalf("quantity delta = %v, want 3", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	RecordAPIRequest("GET", "/api/v1/products", "200", 10*time.Millisecond)
	if got := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/products", "200")); got < 1 {
		t.Fatalf("request counter = %v", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Fatalf("active gauge = %v, want %v", got, before)
	}
}
