package search

import (
	"math"
	"net/url"
	"strings"

	"github.com/spf13/cast"
)

const (
	SortNewest       = ""
	SortPriceLowHigh = "priceLowHigh"
	SortPriceHighLow = "priceHighLow"
	SortYearNewOld   = "yearNewOld"
	SortYearOldNew   = "yearOldNew"
)

// Request carries every filter of a car search. Nil numeric bounds and empty
// facet sets are not applied.
type Request struct {
	Search        string
	Brand         string
	Location      string
	MinPrice      *float64
	MaxPrice      *float64
	MinYear       *int
	MaxYear       *int
	MinMileage    *int
	MaxMileage    *int
	BodyTypes     []string
	Transmissions []string
	FuelTypes     []string
	DriveTypes    []string
	Conditions    []string
	Sort          string
	Page          int
	Limit         int
}

// HasPriceRange reports whether either price bound is set
func (r Request) HasPriceRange() bool {
	return r.MinPrice != nil || r.MaxPrice != nil
}

// ParseRequest decodes query parameters. Malformed numbers are dropped rather than rejected.
func ParseRequest(q url.Values) Request {
	return Request{
		Search:        strings.TrimSpace(q.Get("search")),
		Brand:         strings.TrimSpace(q.Get("brand")),
		Location:      strings.TrimSpace(q.Get("location")),
		MinPrice:      floatParam(q.Get("minPrice")),
		MaxPrice:      floatParam(q.Get("maxPrice")),
		MinYear:       intParam(q.Get("minYear")),
		MaxYear:       intParam(q.Get("maxYear")),
		MinMileage:    intParam(q.Get("minMileage")),
		MaxMileage:    intParam(q.Get("maxMileage")),
		BodyTypes:     listParam(q["bodyTypes"]),
		Transmissions: listParam(q["transmissions"]),
		FuelTypes:     listParam(q["fuelTypes"]),
		DriveTypes:    listParam(q["driveTypes"]),
		Conditions:    listParam(q["conditions"]),
		Sort:          strings.TrimSpace(q.Get("sort")),
		Page:          pageParam(q.Get("page")),
		Limit:         pageParam(q.Get("limit")),
	}
}

func floatParam(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func intParam(s string) *int {
	f := floatParam(s)
	if f == nil {
		return nil
	}
	t := math.Trunc(*f)
	// values an int32 cannot hold are treated as absent
	if t > math.MaxInt32 || t < math.MinInt32 {
		return nil
	}
	v := int(t)
	return &v
}

func pageParam(s string) int {
	v := intParam(s)
	if v == nil {
		return 0
	}
	return *v
}

// listParam accepts both "a,b" and repeated keys
func listParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			item = strings.TrimSpace(item)
			if item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}
