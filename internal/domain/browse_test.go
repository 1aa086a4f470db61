package domain

import "testing"

func browseFixture() []Product {
	return []Product{
		{ID: 1, Title: "Fjallraven Backpack", Price: 10995},
		{ID: 2, Title: "mens casual t-shirt", Price: 2230},
		{ID: 3, Title: "Apple Watch Band", Price: 69500},
		{ID: 4, Title: "zipper wallet", Price: 2230},
	}
}

func TestParseSortKey(t *testing.T) {
	cases := map[string]SortKey{
		"price-low-high": SortPriceLowHigh,
		"PRICE-HIGH-LOW": SortPriceHighLow,
		" name-a-z ":     SortNameAToZ,
		"name-z-a":       SortNameZToA,
		"default":        SortDefault,
		"":               SortDefault,
		"something-else": SortDefault,
		"price_low_high": SortDefault,
	}
	for input, want := range cases {
		if got := ParseSortKey(input); got != want {
			t.Errorf("ParseSortKey(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestPriceRangeContains(t *testing.T) {
	min := int64(1000)
	max := int64(5000)

	open := PriceRange{}
	if !open.Contains(0) || !open.Contains(1 << 40) {
		t.Fatal("open range must contain everything")
	}

	bounded := PriceRange{Min: &min, Max: &max}
	if !bounded.Contains(1000) || !bounded.Contains(5000) {
		t.Fatal("bounds are inclusive")
	}
	if bounded.Contains(999) || bounded.Contains(5001) {
		t.Fatal("values outside bounds must be excluded")
	}
}

func TestApplyBrowseQueryFiltersPrice(t *testing.T) {
	min := int64(2000)
	max := int64(20000)
	got := ApplyBrowseQuery(browseFixture(), BrowseQuery{Price: PriceRange{Min: &min, Max: &max}})

	if len(got) != 3 {
		t.Fatalf("expected 3 products in range, got %d", len(got))
	}
	for _, p := range got {
		if p.ID == 3 {
			t.Fatal("product 3 should be filtered out")
		}
	}
}

func TestApplyBrowseQuerySortPrice(t *testing.T) {
	got := ApplyBrowseQuery(browseFixture(), BrowseQuery{Sort: SortPriceLowHigh})
	for i := 1; i < len(got); i++ {
		if got[i-1].Price > got[i].Price {
			t.Fatalf("expected ascending prices, got %v then %v", got[i-1].Price, got[i].Price)
		}
	}

	got = ApplyBrowseQuery(browseFixture(), BrowseQuery{Sort: SortPriceHighLow})
	for i := 1; i < len(got); i++ {
		if got[i-1].Price < got[i].Price {
			t.Fatalf("expected descending prices, got %v then %v", got[i-1].Price, got[i].Price)
		}
	}
}

func TestApplyBrowseQuerySortPriceStable(t *testing.T) {
	// Products 2 and 4 share a price; their relative order must not change.
	got := ApplyBrowseQuery(browseFixture(), BrowseQuery{Sort: SortPriceLowHigh})
	if got[0].ID != 2 || got[1].ID != 4 {
		t.Fatalf("expected stable order [2 4] for equal prices, got [%d %d]", got[0].ID, got[1].ID)
	}
}

func TestApplyBrowseQuerySortNameIgnoresCase(t *testing.T) {
	got := ApplyBrowseQuery(browseFixture(), BrowseQuery{Sort: SortNameAToZ})
	wantOrder := []int{3, 1, 2, 4}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Fatalf("position %d: expected product %d, got %d (order %v)", i, want, got[i].ID, productIDs(got))
		}
	}

	got = ApplyBrowseQuery(browseFixture(), BrowseQuery{Sort: SortNameZToA})
	if got[0].ID != 4 || got[len(got)-1].ID != 3 {
		t.Fatalf("expected reverse name order, got %v", productIDs(got))
	}
}

func TestApplyBrowseQueryDefaultSortsID(t *testing.T) {
	shuffled := []Product{
		{ID: 4, Title: "d", Price: 1},
		{ID: 1, Title: "a", Price: 2},
		{ID: 3, Title: "c", Price: 3},
	}
	got := ApplyBrowseQuery(shuffled, BrowseQuery{})
	if got[0].ID != 1 || got[1].ID != 3 || got[2].ID != 4 {
		t.Fatalf("expected id order, got %v", productIDs(got))
	}
}

func TestApplyBrowseQueryDoesNotMutateInput(t *testing.T) {
	input := browseFixture()
	_ = ApplyBrowseQuery(input, BrowseQuery{Sort: SortPriceHighLow})
	if input[0].ID != 1 || input[3].ID != 4 {
		t.Fatalf("input slice was mutated: %v", productIDs(input))
	}
}

func productIDs(products []Product) []int {
	ids := make([]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}
