package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/notify"
	"github.com/exidealers/marketplace/internal/testutil"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []notify.Mail
	fail map[string]bool
}

func (f *fakeMailer) Send(ctx context.Context, m notify.Mail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[m.To] {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, m)
	return nil
}

func TestSweepNotifiesOnPriceDrop(t *testing.T) {
	db := testutil.OpenDB(t)
	cars := []domain.Car{
		{Make: "Toyota", Model: "Hilux", Year: 2019, Price: "N$ 320,000"},
		{Make: "VW", Model: "Polo", Year: 2018, Price: "N$ 150,000"},
		{Make: "Ford", Model: "Ranger", Year: 2020, Price: "POA"},
		{Make: "Kia", Model: "Rio", Year: 2016, Price: "N$ 90,000"},
		{Make: "BMW", Model: "X3", Year: 2017, Price: "N$ 210,000"},
	}
	for i := range cars {
		if err := db.Create(&cars[i]).Error; err != nil {
			t.Fatalf("seed car: %v", err)
		}
	}
	alerts := []domain.PriceAlert{
		{Email: "drop@example.com", FirstName: "Ann", CarID: cars[0].ID, CarPrice: "N$ 350,000", IsActive: true},
		{Email: "rise@example.com", CarID: cars[1].ID, CarPrice: "N$ 140,000", IsActive: true},
		{Email: "poa@example.com", CarID: cars[2].ID, CarPrice: "N$ 400,000", IsActive: true},
		{Email: "baseline@example.com", CarID: cars[3].ID, CarPrice: "POA", IsActive: true},
		{Email: "broken@example.com", CarID: cars[4].ID, CarPrice: "N$ 250,000", IsActive: true},
		{Email: "inactive@example.com", CarID: cars[0].ID, CarPrice: "N$ 999,000", IsActive: true},
	}
	for i := range alerts {
		if err := db.Create(&alerts[i]).Error; err != nil {
			t.Fatalf("seed alert: %v", err)
		}
	}
	if err := db.Model(&domain.PriceAlert{}).Where("id = ?", alerts[5].ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	mailer := &fakeMailer{fail: map[string]bool{"broken@example.com": true}}
	sweeper := NewSweeper(db, mailer, "https://exidealers.com/", 2)

	report, err := sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := Report{Checked: 5, Notified: 1, Failed: 1, Rebased: 2}
	if report != want {
		t.Fatalf("report = %+v, want %+v", report, want)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].To != "drop@example.com" {
		t.Fatalf("unexpected mails %+v", mailer.sent)
	}

	var got domain.PriceAlert
	db.First(&got, alerts[0].ID)
	if got.CarPrice != "N$ 320,000" || got.LastNotifiedAt == nil {
		t.Fatalf("notified alert not updated: %+v", got)
	}
	db.First(&got, alerts[3].ID)
	if got.CarPrice != "N$ 90,000" || got.LastNotifiedAt != nil {
		t.Fatalf("baseline alert not rebased: %+v", got)
	}
	db.First(&got, alerts[4].ID)
	if got.CarPrice != "N$ 250,000" {
		t.Fatalf("failed notification must keep the old price: %+v", got)
	}

	again, err := sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if again.Notified != 0 || again.Failed != 1 {
		t.Fatalf("second run must not notify twice: %+v", again)
	}
}
