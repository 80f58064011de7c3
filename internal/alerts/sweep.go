package alerts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/notify"
	"github.com/exidealers/marketplace/internal/pricing"
	"github.com/exidealers/marketplace/pkg/metrics"
	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Report summarizes one sweep
type Report struct {
	Checked  int `json:"checked"`
	Notified int `json:"notified"`
	Failed   int `json:"failed"`
	Rebased  int `json:"rebased"`
}

// Sweeper notifies price alert subscribers when a watched car gets cheaper
type Sweeper struct {
	db      *gorm.DB
	mailer  notify.Mailer
	siteURL string
	workers int
	now     func() time.Time
}

func NewSweeper(db *gorm.DB, mailer notify.Mailer, siteURL string, workers int) *Sweeper {
	if workers <= 0 {
		workers = 4
	}
	return &Sweeper{
		db:      db,
		mailer:  mailer,
		siteURL: strings.TrimRight(siteURL, "/"),
		workers: workers,
		now:     time.Now,
	}
}

type change struct {
	alertID  int64
	price    string
	notified bool
}

// Run compares every active alert's recorded price with the car's current one.
// A lower known price sends a mail; any other known change only moves the baseline.
// Unknown prices on either side never notify.
func (s *Sweeper) Run(ctx context.Context) (Report, error) {
	var report Report
	var alerts []domain.PriceAlert
	err := s.db.WithContext(ctx).
		Preload("Car").
		Where("is_active = ?", true).
		Find(&alerts).Error
	if err != nil {
		return report, errors.Wrap(err, "load price alerts")
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return report, errors.Wrap(err, "create notification pool")
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		changes []change
	)

	for i := range alerts {
		alert := alerts[i]
		if alert.Car == nil {
			continue
		}
		report.Checked++
		current := pricing.NormalizeString(alert.Car.Price)
		recorded := pricing.NormalizeString(alert.CarPrice)
		if !current.Known || (recorded.Known && current.Value == recorded.Value) {
			continue
		}
		if !recorded.Known || current.Value > recorded.Value {
			mu.Lock()
			changes = append(changes, change{alertID: alert.ID, price: alert.Car.Price})
			report.Rebased++
			mu.Unlock()
			continue
		}

		wg.Add(1)
		task := func() {
			defer wg.Done()
			err := s.notify(ctx, alert)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				zap.L().Error("price alert notification failed",
					zap.String("namespace", "alerts"),
					zap.Int64("alert_id", alert.ID),
					zap.String("email", alert.Email),
					zap.Error(err))
				return
			}
			report.Notified++
			changes = append(changes, change{alertID: alert.ID, price: alert.Car.Price, notified: true})
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			report.Failed++
			mu.Unlock()
		}
	}
	wg.Wait()

	now := s.now()
	for _, c := range changes {
		updates := map[string]interface{}{"car_price": c.price}
		if c.notified {
			updates["last_notified_at"] = now
		}
		if err := s.db.WithContext(ctx).Model(&domain.PriceAlert{}).Where("id = ?", c.alertID).Updates(updates).Error; err != nil {
			return report, errors.Wrap(err, "update price alert")
		}
	}
	metrics.Record(metrics.AlertsNotified, float64(report.Notified))
	return report, nil
}

func (s *Sweeper) notify(ctx context.Context, alert domain.PriceAlert) error {
	mail, err := notify.PriceDropMail(alert.Email, notify.PriceDrop{
		FirstName: alert.FirstName,
		Year:      alert.Car.Year,
		Make:      alert.Car.Make,
		Model:     alert.Car.Model,
		OldPrice:  alert.CarPrice,
		NewPrice:  alert.Car.Price,
		Link:      fmt.Sprintf("%s/cars/%d", s.siteURL, alert.CarID),
	})
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, mail)
}
