package performance

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/slabmarket/matching-engine/internal/api/models"
	"github.com/slabmarket/matching-engine/internal/api/tests/testutils"
)

// BenchmarkOrderSubmissionThroughput measures resting-order admissions per
// second through the full HTTP stack
func BenchmarkOrderSubmissionThroughput(b *testing.B) {
	ts := testutils.NewTestServer(b)
	defer ts.Close()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		price := fmt.Sprintf("%d.%02d", 90+i%10, i%100)
		resp := ts.Post("/api/v1/orders", testutils.NewBidOrder(price, 10))
		require.Equal(b, 200, resp.StatusCode)
		resp.Body.Close()
	}

	ordersPerSec := float64(b.N) / b.Elapsed().Seconds()
	b.ReportMetric(ordersPerSec, "orders/sec")
}

// BenchmarkCrossingOrderExecution measures matching speed against a deep
// opposite side
func BenchmarkCrossingOrderExecution(b *testing.B) {
	ts := testutils.NewTestServer(b)
	defer ts.Close()

	// Pre-populate liquidity well above the taker price so it is never
	// consumed, then cross a fresh ask each iteration
	for i := 0; i < 100; i++ {
		price := fmt.Sprintf("100.%02d", i)
		ts.Post("/api/v1/orders", testutils.NewBidOrder(price, 1000000))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		resp := ts.Post("/api/v1/orders", testutils.NewAskOrder("100.00", 5))
		require.Equal(b, 200, resp.StatusCode)
		resp.Body.Close()
	}

	executionsPerSec := float64(b.N) / b.Elapsed().Seconds()
	b.ReportMetric(executionsPerSec, "executions/sec")
}

// BenchmarkOrderBookSnapshot measures depth retrieval speed
func BenchmarkOrderBookSnapshot(b *testing.B) {
	ts := testutils.NewTestServer(b)
	defer ts.Close()

	// Populate 50 levels each side
	for i := 0; i < 50; i++ {
		bidPrice := fmt.Sprintf("%d.%02d", 98-i/100, 99-i%100)
		askPrice := fmt.Sprintf("101.%02d", i)
		ts.Post("/api/v1/orders", testutils.NewBidOrder(bidPrice, 10))
		ts.Post("/api/v1/orders", testutils.NewAskOrder(askPrice, 10))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		resp := ts.Get("/api/v1/orderbook?depth=10")
		require.Equal(b, 200, resp.StatusCode)
		resp.Body.Close()
	}

	snapshotsPerSec := float64(b.N) / b.Elapsed().Seconds()
	b.ReportMetric(snapshotsPerSec, "snapshots/sec")
}

// BenchmarkBatchOrderSubmission measures batch throughput
func BenchmarkBatchOrderSubmission(b *testing.B) {
	ts := testutils.NewTestServer(b)
	defer ts.Close()

	orders := make([]models.SubmitOrderRequest, 10)
	for i := range orders {
		orders[i] = testutils.NewBidOrder(fmt.Sprintf("95.%02d", i), 5)
	}
	batch := testutils.NewBatchRequest(orders...)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		resp := ts.Post("/api/v1/orders/batch", batch)
		require.Equal(b, 200, resp.StatusCode)
		resp.Body.Close()
	}

	ordersPerSec := float64(b.N*len(orders)) / b.Elapsed().Seconds()
	b.ReportMetric(ordersPerSec, "orders/sec")
}

// BenchmarkConcurrentSubmissions measures throughput under parallel clients
func BenchmarkConcurrentSubmissions(b *testing.B) {
	ts := testutils.NewTestServer(b)
	defer ts.Close()

	var submitted atomic.Int64
	var wg sync.WaitGroup
	workers := 8
	perWorker := b.N / workers
	if perWorker == 0 {
		perWorker = 1
	}

	b.ResetTimer()
	b.ReportAllocs()

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				resp := ts.Post("/api/v1/orders",
					testutils.NewBidOrder(fmt.Sprintf("9%d.%02d", w%10, i%100), 1))
				resp.Body.Close()
				submitted.Add(1)
			}
		}(w)
	}
	wg.Wait()

	ordersPerSec := float64(submitted.Load()) / b.Elapsed().Seconds()
	b.ReportMetric(ordersPerSec, "orders/sec")
}
