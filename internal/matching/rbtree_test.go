package matching

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
)

func collectAscending(tr *priceTree) []string {
	var out []string
	tr.Ascending(func(l *priceLevel) bool {
		out = append(out, l.price.String())
		return true
	})
	return out
}

func TestPriceTreeEmpty(t *testing.T) {
	tr := newPriceTree()

	if tr.Min() != nil {
		t.Error("Min() on empty tree should be nil")
	}
	if tr.Max() != nil {
		t.Error("Max() on empty tree should be nil")
	}
	if tr.Find(decimal.NewFromInt(1)) != nil {
		t.Error("Find() on empty tree should be nil")
	}
}

func TestPriceTreeUpsertIsIdempotent(t *testing.T) {
	tr := newPriceTree()
	price := decimal.RequireFromString("100.00")

	first := tr.Upsert(price)
	second := tr.Upsert(price)

	if first != second {
		t.Error("Upsert of the same price should return the same level")
	}
	if tr.Find(price) != first {
		t.Error("Find should return the upserted level")
	}
}

func TestPriceTreeOrdering(t *testing.T) {
	tr := newPriceTree()
	prices := []string{"101.50", "99.00", "100.00", "98.25", "103.00", "100.50"}
	for _, p := range prices {
		tr.Upsert(decimal.RequireFromString(p))
	}

	want := append([]string(nil), prices...)
	sort.Slice(want, func(i, j int) bool {
		return decimal.RequireFromString(want[i]).Cmp(decimal.RequireFromString(want[j])) < 0
	})

	got := collectAscending(tr)
	if len(got) != len(want) {
		t.Fatalf("expected %d levels, got %d", len(want), len(got))
	}
	for i := range want {
		if decimal.RequireFromString(got[i]).Cmp(decimal.RequireFromString(want[i])) != 0 {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if tr.Min().price.Cmp(decimal.RequireFromString("98.25")) != 0 {
		t.Errorf("expected min 98.25, got %s", tr.Min().price)
	}
	if tr.Max().price.Cmp(decimal.RequireFromString("103.00")) != 0 {
		t.Errorf("expected max 103.00, got %s", tr.Max().price)
	}
}

func TestPriceTreeDescending(t *testing.T) {
	tr := newPriceTree()
	for _, p := range []string{"1", "3", "2"} {
		tr.Upsert(decimal.RequireFromString(p))
	}

	var got []string
	tr.Descending(func(l *priceLevel) bool {
		got = append(got, l.price.String())
		return true
	})

	want := []string{"3", "2", "1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("descending order wrong: got %v", got)
		}
	}
}

func TestPriceTreeTraversalEarlyStop(t *testing.T) {
	tr := newPriceTree()
	for i := 1; i <= 10; i++ {
		tr.Upsert(decimal.NewFromInt(int64(i)))
	}

	count := 0
	tr.Ascending(func(l *priceLevel) bool {
		count++
		return count < 3
	})
	if count != 3 {
		t.Errorf("expected traversal to stop after 3 levels, visited %d", count)
	}
}

func TestPriceTreeDelete(t *testing.T) {
	tr := newPriceTree()
	for i := 1; i <= 7; i++ {
		tr.Upsert(decimal.NewFromInt(int64(i)))
	}

	// Delete a middle key, the min and the max
	for _, k := range []int64{4, 1, 7} {
		tr.Delete(decimal.NewFromInt(k))
		if tr.Find(decimal.NewFromInt(k)) != nil {
			t.Errorf("key %d still present after delete", k)
		}
	}

	got := collectAscending(tr)
	want := []string{"2", "3", "5", "6"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestPriceTreeRandomizedInsertDelete(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tr := newPriceTree()
	present := make(map[int64]bool)

	for i := 0; i < 2000; i++ {
		k := int64(rng.Intn(200))
		if present[k] && rng.Intn(2) == 0 {
			tr.Delete(decimal.NewFromInt(k))
			delete(present, k)
		} else {
			tr.Upsert(decimal.NewFromInt(k))
			present[k] = true
		}
	}

	var keys []int64
	for k := range present {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	got := collectAscending(tr)
	if len(got) != len(keys) {
		t.Fatalf("expected %d keys, got %d", len(keys), len(got))
	}
	for i, k := range keys {
		if decimal.NewFromInt(k).String() != got[i] {
			t.Fatalf("position %d: expected %d, got %s", i, k, got[i])
		}
	}
}
