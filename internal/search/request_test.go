package search

import (
	"net/url"
	"reflect"
	"testing"
)

func TestParseRequest(t *testing.T) {
	q := url.Values{
		"search":        {" hilux "},
		"minPrice":      {"10000"},
		"maxPrice":      {"abc"},
		"minYear":       {"2015"},
		"maxMileage":    {"120000.9"},
		"bodyTypes":     {"SUV,Sedan"},
		"transmissions": {"Manual", "Automatic"},
		"fuelTypes":     {" , Diesel ,"},
		"sort":          {"priceHighLow"},
		"page":          {"x"},
		"limit":         {"20"},
	}
	req := ParseRequest(q)

	if req.Search != "hilux" {
		t.Fatalf("search = %q", req.Search)
	}
	if req.MinPrice == nil || *req.MinPrice != 10000 {
		t.Fatalf("minPrice = %v", req.MinPrice)
	}
	if req.MaxPrice != nil {
		t.Fatalf("malformed maxPrice must be absent")
	}
	if req.MinYear == nil || *req.MinYear != 2015 {
		t.Fatalf("minYear = %v", req.MinYear)
	}
	if req.MaxMileage == nil || *req.MaxMileage != 120000 {
		t.Fatalf("maxMileage = %v", req.MaxMileage)
	}
	if !reflect.DeepEqual(req.BodyTypes, []string{"SUV", "Sedan"}) {
		t.Fatalf("bodyTypes = %v", req.BodyTypes)
	}
	if !reflect.DeepEqual(req.Transmissions, []string{"Manual", "Automatic"}) {
		t.Fatalf("transmissions = %v", req.Transmissions)
	}
	if !reflect.DeepEqual(req.FuelTypes, []string{"Diesel"}) {
		t.Fatalf("fuelTypes = %v", req.FuelTypes)
	}
	if req.Page != 0 || req.Limit != 20 {
		t.Fatalf("page/limit = %d/%d", req.Page, req.Limit)
	}
	if !req.HasPriceRange() {
		t.Fatalf("expected price range")
	}
}

func TestParseRequestRejectsNonFinite(t *testing.T) {
	req := ParseRequest(url.Values{"minPrice": {"NaN"}, "maxPrice": {"Inf"}})
	if req.HasPriceRange() {
		t.Fatalf("non-finite bounds must be dropped")
	}
}

func TestParseRequestDropsUnrepresentableIntegers(t *testing.T) {
	req := ParseRequest(url.Values{
		"page":       {"1e300"},
		"limit":      {"-1e20"},
		"minYear":    {"1e300"},
		"maxMileage": {"9999999999"},
		"maxYear":    {"2147483647"},
	})
	if req.Page != 0 || req.Limit != 0 {
		t.Fatalf("page/limit = %d/%d, want 0/0", req.Page, req.Limit)
	}
	if req.MinYear != nil || req.MaxMileage != nil {
		t.Fatalf("out of range bounds must be absent: minYear=%v maxMileage=%v", req.MinYear, req.MaxMileage)
	}
	if req.MaxYear == nil || *req.MaxYear != 2147483647 {
		t.Fatalf("maxYear = %v", req.MaxYear)
	}
}

func TestOrderForUnknownSort(t *testing.T) {
	if OrderFor("bogus") != OrderFor(SortNewest) {
		t.Fatalf("unknown sort must fall back to newest")
	}
}

func TestPageAndLimitDefaults(t *testing.T) {
	e := NewEngine(&stubRepo{}, Options{})
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 15},
		{-3, -1, 1, 15},
		{2, 500, 2, 100},
		{4, 7, 4, 7},
	}
	for _, tt := range tests {
		p, l := e.pageAndLimit(Request{Page: tt.page, Limit: tt.limit})
		if p != tt.wantPage || l != tt.wantLimit {
			t.Fatalf("pageAndLimit(%d,%d) = %d,%d", tt.page, tt.limit, p, l)
		}
	}
}
