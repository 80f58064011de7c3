package search

import (
	"context"
	"math"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/pricing"
	"github.com/exidealers/marketplace/pkg/common"
	"go.uber.org/zap"
)

const (
	DefaultLimit           = 15
	DefaultMaxLimit        = 100
	DefaultFetchMultiplier = 10
	DefaultFetchCeiling    = 1000

	// FallbackOrder is used when the storage rejects the requested sort column
	FallbackOrder = "id DESC"
)

var sortOrders = map[string]string{
	SortNewest:       "created_at DESC, id DESC",
	SortPriceLowHigh: "price_value IS NULL, price_value ASC, id DESC",
	SortPriceHighLow: "price_value IS NULL, price_value DESC, id DESC",
	SortYearNewOld:   "year DESC, id DESC",
	SortYearOldNew:   "year ASC, id DESC",
}

// OrderFor maps a sort key to an ORDER BY clause, newest first for unknown keys
func OrderFor(sort string) string {
	if o, ok := sortOrders[sort]; ok {
		return o
	}
	return sortOrders[SortNewest]
}

type Options struct {
	DefaultLimit    int
	MaxLimit        int
	FetchMultiplier int
	FetchCeiling    int
	// Status restricts every search to one listing status, empty for none
	Status string
}

// Pagination is computed from the final, price filtered result set
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCars   int64 `json:"totalCars"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

type Result struct {
	Cars       []domain.Car `json:"cars"`
	Pagination Pagination   `json:"pagination"`
}

// Engine answers car searches. It holds no per request state and is safe for concurrent use.
type Engine struct {
	repo Repository
	opts Options
}

func NewEngine(repo Repository, opts Options) *Engine {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = DefaultMaxLimit
	}
	if opts.FetchMultiplier <= 0 {
		opts.FetchMultiplier = DefaultFetchMultiplier
	}
	if opts.FetchCeiling <= 0 {
		opts.FetchCeiling = DefaultFetchCeiling
	}
	return &Engine{repo: repo, opts: opts}
}

// PublicOptions returns options restricted to approved listings
func PublicOptions() Options {
	return Options{Status: common.StatusApproved}
}

func (e *Engine) criteria(req Request) Criteria {
	return Criteria{
		Search:        req.Search,
		Brand:         req.Brand,
		Location:      req.Location,
		MinYear:       req.MinYear,
		MaxYear:       req.MaxYear,
		MinMileage:    req.MinMileage,
		MaxMileage:    req.MaxMileage,
		BodyTypes:     req.BodyTypes,
		Transmissions: req.Transmissions,
		FuelTypes:     req.FuelTypes,
		DriveTypes:    req.DriveTypes,
		Conditions:    req.Conditions,
		Status:        e.opts.Status,
	}
}

func (e *Engine) pageAndLimit(req Request) (int, int) {
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = e.opts.DefaultLimit
	}
	if limit > e.opts.MaxLimit {
		limit = e.opts.MaxLimit
	}
	return page, limit
}

// FetchCap is the size of the candidate set read when a price range is requested
func (e *Engine) FetchCap(limit int) int {
	n := limit * e.opts.FetchMultiplier
	if n > e.opts.FetchCeiling {
		n = e.opts.FetchCeiling
	}
	return n
}

// Search runs a request. Without a price range the storage layer paginates and counts.
// A page past the last one yields no cars and is never turned into an offset.
// With one, a capped candidate set is read and filtered by normalized price, so
// candidates beyond the cap are never reachable.
func (e *Engine) Search(ctx context.Context, req Request) (*Result, error) {
	page, limit := e.pageAndLimit(req)
	crit := e.criteria(req)
	order := OrderFor(req.Sort)

	if !req.HasPriceRange() {
		total, err := e.repo.Count(ctx, crit)
		if err != nil {
			return nil, err
		}
		pg := paginate(total, page, limit)
		if page > pg.TotalPages {
			return &Result{Cars: []domain.Car{}, Pagination: pg}, nil
		}
		cars, err := e.find(ctx, crit, order, (page-1)*limit, limit)
		if err != nil {
			return nil, err
		}
		return &Result{Cars: nonNil(cars), Pagination: pg}, nil
	}

	candidates, err := e.find(ctx, crit, order, 0, e.FetchCap(limit))
	if err != nil {
		return nil, err
	}
	matched := FilterByPrice(candidates, req.MinPrice, req.MaxPrice)

	pg := paginate(int64(len(matched)), page, limit)
	if page > pg.TotalPages {
		return &Result{Cars: []domain.Car{}, Pagination: pg}, nil
	}
	start := (page - 1) * limit
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return &Result{Cars: nonNil(matched[start:end]), Pagination: pg}, nil
}

// find reads from storage, retrying once with FallbackOrder on an unknown column error
func (e *Engine) find(ctx context.Context, crit Criteria, order string, offset, limit int) ([]domain.Car, error) {
	cars, err := e.repo.Find(ctx, crit, order, offset, limit)
	if err != nil && IsUnknownColumn(err) && order != FallbackOrder {
		zap.L().Warn("sort column rejected, retrying with id order",
			zap.String("namespace", "search"),
			zap.String("order", order),
			zap.Error(err))
		return e.repo.Find(ctx, crit, FallbackOrder, offset, limit)
	}
	return cars, err
}

// FilterByPrice keeps cars whose normalized price lies in [min, max], preserving order.
// Cars with an unknown price are dropped.
func FilterByPrice(cars []domain.Car, min, max *float64) []domain.Car {
	out := make([]domain.Car, 0, len(cars))
	for _, c := range cars {
		if pricing.NormalizeString(c.Price).InRange(min, max) {
			out = append(out, c)
		}
	}
	return out
}

func paginate(total int64, page, limit int) Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCars:   total,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

func nonNil(cars []domain.Car) []domain.Car {
	if cars == nil {
		return []domain.Car{}
	}
	return cars
}
