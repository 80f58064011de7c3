package search

import (
	"context"
	"strings"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Criteria is the storage level predicate of a search: every filter except price
type Criteria struct {
	Search        string
	Brand         string
	Location      string
	MinYear       *int
	MaxYear       *int
	MinMileage    *int
	MaxMileage    *int
	BodyTypes     []string
	Transmissions []string
	FuelTypes     []string
	DriveTypes    []string
	Conditions    []string
	// Status limits results to one listing status; empty means any
	Status string
}

// Repository reads car listings for the search engine
type Repository interface {
	Count(ctx context.Context, c Criteria) (int64, error)
	Find(ctx context.Context, c Criteria, order string, offset, limit int) ([]domain.Car, error)
}

// GormCarRepository implements Repository on gorm
type GormCarRepository struct {
	db *gorm.DB
}

func NewGormCarRepository(db *gorm.DB) *GormCarRepository {
	return &GormCarRepository{db: db}
}

func (r *GormCarRepository) Count(ctx context.Context, c Criteria) (int64, error) {
	var total int64
	err := r.scope(r.db.WithContext(ctx).Model(&domain.Car{}), c).Count(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "count cars")
	}
	return total, nil
}

func (r *GormCarRepository) Find(ctx context.Context, c Criteria, order string, offset, limit int) ([]domain.Car, error) {
	var cars []domain.Car
	db := r.scope(r.db.WithContext(ctx).Model(&domain.Car{}), c).
		Preload("Images", orderedImages).
		Order(order)
	if offset > 0 {
		db = db.Offset(offset)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&cars).Error; err != nil {
		return nil, errors.Wrap(err, "find cars")
	}
	return cars, nil
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

func (r *GormCarRepository) scope(db *gorm.DB, c Criteria) *gorm.DB {
	if c.Search != "" {
		like := likeExpr(db)
		pattern := likePattern(db, c.Search)
		db = db.Where(
			"("+like("make")+" OR "+like("model")+" OR "+like("location")+")",
			pattern, pattern, pattern,
		)
	}
	if c.Brand != "" {
		db = db.Where(likeExpr(db)("make"), likePattern(db, c.Brand))
	}
	if c.Location != "" {
		db = db.Where(likeExpr(db)("location"), likePattern(db, c.Location))
	}
	if c.MinYear != nil {
		db = db.Where("year >= ?", *c.MinYear)
	}
	if c.MaxYear != nil {
		db = db.Where("year <= ?", *c.MaxYear)
	}
	if c.MinMileage != nil {
		db = db.Where("mileage >= ?", *c.MinMileage)
	}
	if c.MaxMileage != nil {
		db = db.Where("mileage <= ?", *c.MaxMileage)
	}
	if len(c.BodyTypes) > 0 {
		db = db.Where("body_type IN ?", c.BodyTypes)
	}
	if len(c.Transmissions) > 0 {
		db = db.Where("transmission IN ?", c.Transmissions)
	}
	if len(c.FuelTypes) > 0 {
		db = db.Where("fuel_type IN ?", c.FuelTypes)
	}
	if len(c.DriveTypes) > 0 {
		db = db.Where("drive_type IN ?", c.DriveTypes)
	}
	if len(c.Conditions) > 0 {
		db = db.Where("condition IN ?", c.Conditions)
	}
	if c.Status != "" {
		db = db.Where("status = ?", c.Status)
	}
	return db
}

func isPostgres(db *gorm.DB) bool {
	return strings.EqualFold(db.Name(), "postgres")
}

// likeExpr returns a case-insensitive substring predicate builder for the current dialect
func likeExpr(db *gorm.DB) func(col string) string {
	if isPostgres(db) {
		return func(col string) string { return col + ` ILIKE ? ESCAPE '\'` }
	}
	return func(col string) string { return "LOWER(" + col + `) LIKE ? ESCAPE '\'` }
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern matches s literally as a substring
func likePattern(db *gorm.DB, s string) string {
	s = likeEscaper.Replace(s)
	if isPostgres(db) {
		return "%" + s + "%"
	}
	return "%" + strings.ToLower(s) + "%"
}

// IsUnknownColumn recognizes "column does not exist" errors of the supported dialects
func IsUnknownColumn(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42703"
	}
	msg := err.Error()
	return strings.Contains(msg, "no such column") || strings.Contains(msg, "Unknown column")
}
