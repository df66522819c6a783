package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slabmarket/matching-engine/internal/api/models"
	"github.com/slabmarket/matching-engine/internal/api/tests/testutils"
)

// TestSimpleMatchFlow tests a crossing bid executing against a resting ask
func TestSimpleMatchFlow(t *testing.T) {
	ts := testutils.NewTestServer(t)
	defer ts.Close()

	// Step 1: Rest an ask to create liquidity
	ask := ts.Post("/api/v1/orders", testutils.NewAskOrder("100.00", 5))
	require.Equal(t, http.StatusOK, ask.StatusCode)

	var askResp models.SubmitOrderResponse
	testutils.DecodeJSON(t, ask, &askResp)
	assert.True(t, askResp.Success)
	assert.Len(t, askResp.Trades, 0, "Resting ask should not trade")
	assert.Equal(t, "resting", askResp.Order.Status)

	// Step 2: Cross it with a bid
	bid := ts.Post("/api/v1/orders", testutils.NewBidOrder("100.00", 3))
	require.Equal(t, http.StatusOK, bid.StatusCode)

	var bidResp models.SubmitOrderResponse
	testutils.DecodeJSON(t, bid, &bidResp)

	assert.True(t, bidResp.Success)
	require.Len(t, bidResp.Trades, 1, "Should have 1 trade")
	assert.True(t, bidResp.Trades[0].ExecutionPrice.Equal(decimal.RequireFromString("100.00")),
		"Should execute at the resting ask price")
	assert.Equal(t, int64(3), bidResp.Trades[0].Quantity)
	assert.Equal(t, "filled", bidResp.Order.Status)

	// Step 3: The ask survives with remaining quantity
	orderResp := ts.Get(fmt.Sprintf("/api/v1/orders/%d", askResp.Order.OrderID))
	require.Equal(t, http.StatusOK, orderResp.StatusCode)

	var getResp models.GetOrderResponse
	testutils.DecodeJSON(t, orderResp, &getResp)
	assert.Equal(t, "partially_filled", getResp.Order.Status)
	assert.Equal(t, int64(2), getResp.Order.RemainingQuantity)
}

// TestRestingOrdersAppearInBookState tests GET /api/v1/book
func TestRestingOrdersAppearInBookState(t *testing.T) {
	ts := testutils.NewTestServer(t)
	defer ts.Close()

	require.Equal(t, http.StatusOK, ts.Post("/api/v1/orders", testutils.NewBidOrder("99.00", 10)).StatusCode)
	require.Equal(t, http.StatusOK, ts.Post("/api/v1/orders", testutils.NewAskOrder("101.00", 20)).StatusCode)

	resp := ts.Get("/api/v1/book")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var book models.BookStateResponse
	testutils.DecodeJSON(t, resp, &book)

	assert.True(t, book.Success)
	require.Len(t, book.Orders, 2)
	// Newest first
	assert.Equal(t, "ask", book.Orders[0].Side)
	assert.Equal(t, "bid", book.Orders[1].Side)
	assert.Len(t, book.Trades, 0)
}

// TestOrderBookDepthEndpoint tests GET /api/v1/orderbook aggregation
func TestOrderBookDepthEndpoint(t *testing.T) {
	ts := testutils.NewTestServer(t)
	defer ts.Close()

	ts.Post("/api/v1/orders", testutils.NewBidOrder("99.00", 4))
	ts.Post("/api/v1/orders", testutils.NewBidOrder("99.00", 6))
	ts.Post("/api/v1/orders", testutils.NewBidOrder("98.00", 5))
	ts.Post("/api/v1/orders", testutils.NewAskOrder("101.00", 7))

	resp := ts.Get("/api/v1/orderbook")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ob models.OrderBookResponse
	testutils.DecodeJSON(t, resp, &ob)

	assert.True(t, ob.Success)
	require.Len(t, ob.Bids, 2)
	require.Len(t, ob.Asks, 1)
	assert.True(t, ob.Bids[0].Price.Equal(decimal.RequireFromString("99.00")))
	assert.Equal(t, int64(10), ob.Bids[0].Quantity)
	assert.Equal(t, 2, ob.Bids[0].OrderCount)
	assert.True(t, ob.Asks[0].Price.Equal(decimal.RequireFromString("101.00")))
}

// TestTopOfBookEndpoint tests GET /api/v1/orderbook/top
func TestTopOfBookEndpoint(t *testing.T) {
	ts := testutils.NewTestServer(t)
	defer ts.Close()

	// Empty book: no quotes, no spread
	resp := ts.Get("/api/v1/orderbook/top")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var top models.TopOfBookResponse
	testutils.DecodeJSON(t, resp, &top)
	assert.Nil(t, top.BestBid)
	assert.Nil(t, top.BestAsk)
	assert.Nil(t, top.Spread)

	ts.Post("/api/v1/orders", testutils.NewBidOrder("99.00", 5))
	ts.Post("/api/v1/orders", testutils.NewAskOrder("101.00", 3))

	resp = ts.Get("/api/v1/orderbook/top")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	testutils.DecodeJSON(t, resp, &top)

	require.NotNil(t, top.BestBid)
	require.NotNil(t, top.BestAsk)
	assert.True(t, top.BestBid.Price.Equal(decimal.RequireFromString("99.00")))
	assert.True(t, top.BestAsk.Price.Equal(decimal.RequireFromString("101.00")))
	require.NotNil(t, top.Spread)
	assert.True(t, top.Spread.Equal(decimal.RequireFromString("2.00")))
	require.NotNil(t, top.MidPrice)
	assert.True(t, top.MidPrice.Equal(decimal.RequireFromString("100.00")))
}

// TestRecentTradesEndpoint tests GET /api/v1/trades with a limit
func TestRecentTradesEndpoint(t *testing.T) {
	ts := testutils.NewTestServer(t)
	defer ts.Close()

	for i := 0; i < 4; i++ {
		ts.Post("/api/v1/orders", testutils.NewAskOrder("100.00", 1))
		ts.Post("/api/v1/orders", testutils.NewBidOrder("100.00", 1))
	}

	resp := ts.Get("/api/v1/trades?limit=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var trades models.GetTradesResponse
	testutils.DecodeJSON(t, resp, &trades)

	assert.True(t, trades.Success)
	assert.Equal(t, 2, trades.Count)
	require.Len(t, trades.Trades, 2)
	assert.Greater(t, trades.Trades[0].TradeID, trades.Trades[1].TradeID, "Newest trade first")
}

// TestInvalidOrderRejected tests request validation errors
func TestInvalidOrderRejected(t *testing.T) {
	ts := testutils.NewTestServer(t)
	defer ts.Close()

	cases := []struct {
		name string
		body models.SubmitOrderRequest
	}{
		{"bad side", models.SubmitOrderRequest{Side: "hold", Price: decimal.RequireFromString("100.00"), Quantity: 1}},
		{"zero price", models.SubmitOrderRequest{Side: "bid", Quantity: 1}},
		{"negative quantity", models.SubmitOrderRequest{Side: "ask", Price: decimal.RequireFromString("100.00"), Quantity: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := ts.Post("/api/v1/orders", tc.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var errResp models.BaseResponse
			testutils.DecodeJSON(t, resp, &errResp)
			assert.False(t, errResp.Success)
			require.NotNil(t, errResp.Error)
		})
	}

	// The book is untouched
	resp := ts.Get("/api/v1/book")
	var book models.BookStateResponse
	testutils.DecodeJSON(t, resp, &book)
	assert.Len(t, book.Orders, 0)
}

// TestGetOrderNotFound tests the 404 path
func TestGetOrderNotFound(t *testing.T) {
	ts := testutils.NewTestServer(t)
	defer ts.Close()

	resp := ts.Get("/api/v1/orders/12345")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errResp models.BaseResponse
	testutils.DecodeJSON(t, resp, &errResp)
	assert.False(t, errResp.Success)
	require.NotNil(t, errResp.Error)
	assert.Equal(t, models.ErrOrderNotFound, errResp.Error.Code)
}

// TestBatchOrderFlow tests batch submission with mixed outcomes
func TestBatchOrderFlow(t *testing.T) {
	ts := testutils.NewTestServer(t)
	defer ts.Close()

	batch := testutils.NewBatchRequest(
		testutils.NewAskOrder("100.00", 5),
		models.SubmitOrderRequest{Side: "bogus", Price: decimal.RequireFromString("1.00"), Quantity: 1},
		testutils.NewBidOrder("100.00", 2),
	)

	resp := ts.Post("/api/v1/orders/batch", batch)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var batchResp models.BatchOrderResponse
	testutils.DecodeJSON(t, resp, &batchResp)

	assert.True(t, batchResp.Success)
	assert.Equal(t, 3, batchResp.Summary.Total)
	assert.Equal(t, 2, batchResp.Summary.Successful)
	assert.Equal(t, 1, batchResp.Summary.Failed)

	require.Len(t, batchResp.Results, 3)
	assert.True(t, batchResp.Results[0].Success)
	assert.False(t, batchResp.Results[1].Success)
	require.NotNil(t, batchResp.Results[1].Error)
	assert.True(t, batchResp.Results[2].Success)
	require.Len(t, batchResp.Results[2].Trades, 1, "Third order should match the first")
}

// TestEventLogRecordsAcceptedOrders tests that accepted submissions are
// written to the event log in admission order
func TestEventLogRecordsAcceptedOrders(t *testing.T) {
	ts := testutils.NewTestServer(t)
	defer ts.Close()

	ts.Post("/api/v1/orders", testutils.NewAskOrder("100.00", 5))
	ts.Post("/api/v1/orders", testutils.NewBidOrder("100.00", 3))
	// Rejected orders must not be recorded
	ts.Post("/api/v1/orders", models.SubmitOrderRequest{Side: "bid", Quantity: 1})

	events := ts.ReadEventLog()
	require.Len(t, events, 2)
	assert.Equal(t, uint64(1), events[0].Sequence)
	assert.Equal(t, uint64(2), events[1].Sequence)
}

// TestHealthEndpoint tests GET /api/v1/health
func TestHealthEndpoint(t *testing.T) {
	ts := testutils.NewTestServer(t)
	defer ts.Close()

	resp := ts.Get("/api/v1/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health models.HealthResponse
	testutils.DecodeJSON(t, resp, &health)
	assert.Equal(t, "healthy", health.Status)
}
