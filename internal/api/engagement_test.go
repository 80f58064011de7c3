package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/exidealers/marketplace/internal/alerts"
	"github.com/exidealers/marketplace/internal/domain"
)

func TestFavoritesAndSavedLists(t *testing.T) {
	s := newTestServer(t)
	token := s.register("fan@example.com")
	polo := s.seedCar(domain.Car{Make: "VW", Model: "Polo", Year: 2018, Price: "N$ 150,000"})
	golf := s.seedCar(domain.Car{Make: "VW", Model: "Golf", Year: 2020, Price: "POA"})

	var added struct {
		Added bool `json:"added"`
	}
	path := fmt.Sprintf("/api/user/favorites/%d", polo.ID)
	s.expect(s.do(http.MethodPost, path, token, nil), http.StatusOK, &added)
	if !added.Added {
		t.Fatalf("first add should report added")
	}
	s.expect(s.do(http.MethodPost, path, token, nil), http.StatusOK, &added)
	if added.Added {
		t.Fatalf("second add should be a no-op")
	}
	s.expect(s.do(http.MethodPost, "/api/user/favorites/99999", token, nil), http.StatusNotFound, nil)
	s.expect(s.do(http.MethodPost, fmt.Sprintf("/api/user/saved/%d", golf.ID), token, nil), http.StatusOK, nil)

	var check struct {
		IsFavorited bool `json:"isFavorited"`
	}
	s.expect(s.do(http.MethodGet, fmt.Sprintf("/api/user/favorites/check/%d", polo.ID), token, nil), http.StatusOK, &check)
	if !check.IsFavorited {
		t.Fatalf("expected polo to be a favorite")
	}

	var favs []domain.Car
	s.expect(s.do(http.MethodGet, "/api/user/favorites", token, nil), http.StatusOK, &favs)
	if len(favs) != 1 || favs[0].ID != polo.ID {
		t.Fatalf("unexpected favorites %+v", favs)
	}
	var savedCars []domain.Car
	s.expect(s.do(http.MethodGet, "/api/user/saved", token, nil), http.StatusOK, &savedCars)
	if len(savedCars) != 1 || savedCars[0].ID != golf.ID {
		t.Fatalf("unexpected saved list %+v", savedCars)
	}

	var removed struct {
		Removed bool `json:"removed"`
	}
	s.expect(s.do(http.MethodDelete, path, token, nil), http.StatusOK, &removed)
	if !removed.Removed {
		t.Fatalf("expected removal")
	}
	s.expect(s.do(http.MethodDelete, path, token, nil), http.StatusOK, &removed)
	if removed.Removed {
		t.Fatalf("second removal should report nothing removed")
	}

	s.expect(s.do(http.MethodGet, fmt.Sprintf("/api/cars/%d", golf.ID), token, nil), http.StatusOK, nil)

	var feed []domain.UserActivity
	s.expect(s.do(http.MethodGet, "/api/user/activity", token, nil), http.StatusOK, &feed)
	types := make([]string, 0, len(feed))
	for _, a := range feed {
		types = append(types, a.ActivityType)
	}
	want := []string{domain.ActivityView, domain.ActivityFavoriteRemove, domain.ActivitySaveAdd, domain.ActivityFavoriteAdd}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected activity feed %v", types)
	}
	if feed[0].Car == nil || feed[0].Car.ID != golf.ID {
		t.Fatalf("view activity should carry the car")
	}

	s.expect(s.do(http.MethodGet, "/api/user/favorites", s.adminToken(), nil), http.StatusForbidden, nil)
}

func TestAnonymousPriceAlerts(t *testing.T) {
	s := newTestServer(t)
	car := s.seedCar(domain.Car{Make: "Ford", Model: "Ranger", Year: 2021, Price: "N$ 500,000", Mileage: 30000})

	var first, second struct {
		Created bool              `json:"created"`
		Alert   domain.PriceAlert `json:"alert"`
	}
	payload := map[string]interface{}{"email": "Buyer@Example.com", "firstName": "Jo", "carId": car.ID}
	s.expect(s.do(http.MethodPost, "/api/price-alerts", "", payload), http.StatusOK, &first)
	if !first.Created || first.Alert.CarPrice != "N$ 500,000" || first.Alert.CarMake != "Ford" || first.Alert.UserID != nil {
		t.Fatalf("unexpected alert %+v", first)
	}
	s.expect(s.do(http.MethodPost, "/api/price-alerts", "", payload), http.StatusOK, &second)
	if second.Created || second.Alert.ID != first.Alert.ID {
		t.Fatalf("duplicate alert created %+v", second)
	}
	s.expect(s.do(http.MethodPost, "/api/price-alerts", "", map[string]interface{}{"email": "x@example.com", "carId": 4242}), http.StatusNotFound, nil)
	s.expect(s.do(http.MethodPost, "/api/price-alerts", "", map[string]interface{}{"email": "nope", "carId": car.ID}), http.StatusBadRequest, nil)

	var list []domain.PriceAlert
	s.expect(s.do(http.MethodGet, "/api/price-alerts/buyer@example.com", "", nil), http.StatusOK, &list)
	if len(list) != 1 {
		t.Fatalf("expected one alert, got %d", len(list))
	}

	path := fmt.Sprintf("/api/price-alerts/%d/deactivate", first.Alert.ID)
	s.expect(s.do(http.MethodPut, path, "", map[string]string{"email": "other@example.com"}), http.StatusNotFound, nil)
	s.expect(s.do(http.MethodPut, path, "", map[string]string{"email": "buyer@example.com"}), http.StatusOK, nil)

	// a deactivated alert no longer blocks a new one
	s.expect(s.do(http.MethodPost, "/api/price-alerts", "", payload), http.StatusOK, &second)
	if !second.Created {
		t.Fatalf("expected a fresh alert after deactivation")
	}

	admin := s.adminToken()
	env := s.expect(s.do(http.MethodGet, "/api/admin/price-alerts", admin, nil), http.StatusOK, &list)
	if env.Meta.Total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 alerts for admin, got %d", env.Meta.Total)
	}
	s.expect(s.do(http.MethodDelete, fmt.Sprintf("/api/admin/price-alerts/%d", first.Alert.ID), admin, nil), http.StatusOK, nil)
	s.expect(s.do(http.MethodDelete, fmt.Sprintf("/api/admin/price-alerts/%d", first.Alert.ID), admin, nil), http.StatusNotFound, nil)
}

func TestMemberPriceAlertsAndSweep(t *testing.T) {
	s := newTestServer(t)
	token := s.register("watcher@example.com")
	car := s.seedCar(domain.Car{Make: "Mazda", Model: "CX-5", Year: 2019, Price: "N$ 300,000"})

	var created struct {
		Created bool              `json:"created"`
		Alert   domain.PriceAlert `json:"alert"`
	}
	s.expect(s.do(http.MethodPost, "/api/user/alerts", token, map[string]interface{}{"carId": car.ID}), http.StatusOK, &created)
	if !created.Created || created.Alert.UserID == nil || created.Alert.Email != "watcher@example.com" {
		t.Fatalf("unexpected member alert %+v", created)
	}

	var mine []domain.PriceAlert
	s.expect(s.do(http.MethodGet, "/api/user/alerts", token, nil), http.StatusOK, &mine)
	if len(mine) != 1 || mine[0].Car == nil || mine[0].Car.ID != car.ID {
		t.Fatalf("unexpected member alerts %+v", mine)
	}

	car.Price = "N$ 280,000"
	if err := s.app.DB().Save(&car).Error; err != nil {
		t.Fatalf("drop price: %v", err)
	}
	var report alerts.Report
	s.expect(s.do(http.MethodPost, "/api/admin/price-alerts/sweep", s.adminToken(), nil), http.StatusOK, &report)
	if report.Checked != 1 || report.Notified != 1 {
		t.Fatalf("unexpected sweep report %+v", report)
	}

	s.expect(s.do(http.MethodDelete, fmt.Sprintf("/api/user/alerts/%d", created.Alert.ID), token, nil), http.StatusOK, nil)
	s.expect(s.do(http.MethodGet, "/api/user/alerts", token, nil), http.StatusOK, &mine)
	if len(mine) != 0 {
		t.Fatalf("expected no active alerts, got %d", len(mine))
	}
}

func TestSiteMessagesAndDashboard(t *testing.T) {
	s := newTestServer(t)
	s.seedCar(domain.Car{Make: "Toyota", Model: "Hilux", Year: 2019, Price: "N$ 100,000"})
	s.seedCar(domain.Car{Make: "Toyota", Model: "Fortuner", Year: 2020, Price: "N$ 300,000"})
	s.seedCar(domain.Car{Make: "Toyota", Model: "Land Cruiser", Year: 2022, Price: "POA"})

	var msg domain.ContactMessage
	s.expect(s.do(http.MethodPost, "/api/contact", "", map[string]string{
		"name": "Jo", "email": "jo@example.com", "message": "Do you take trade-ins?",
	}), http.StatusCreated, &msg)
	if msg.Subject != "No Subject" {
		t.Fatalf("expected default subject, got %q", msg.Subject)
	}

	env := s.expect(s.do(http.MethodPost, "/api/newsletter/subscribe", "", map[string]string{"email": "no-at-sign"}), http.StatusBadRequest, nil)
	if env.Error != "INVALID_EMAIL" {
		t.Fatalf("expected INVALID_EMAIL, got %s", env.Error)
	}
	var sub struct {
		Subscribed bool `json:"subscribed"`
	}
	s.expect(s.do(http.MethodPost, "/api/newsletter/subscribe", "", map[string]string{"email": "news@example.com"}), http.StatusOK, &sub)
	if !sub.Subscribed {
		t.Fatalf("expected a new subscription")
	}
	s.expect(s.do(http.MethodPost, "/api/newsletter/subscribe", "", map[string]string{"email": "NEWS@example.com"}), http.StatusOK, &sub)
	if sub.Subscribed {
		t.Fatalf("expected the second subscription to be a no-op")
	}

	token := s.register("asker@example.com")
	s.expect(s.do(http.MethodPost, "/api/car-enquiries", token, map[string]interface{}{
		"carId": 1, "carName": "Toyota Hilux", "fullName": "Asker", "email": "asker@example.com",
	}), http.StatusCreated, nil)
	var feed []domain.UserActivity
	s.expect(s.do(http.MethodGet, "/api/user/activity", token, nil), http.StatusOK, &feed)
	if len(feed) != 1 || feed[0].ActivityType != domain.ActivityEnquirySent {
		t.Fatalf("expected an enquiry activity, got %+v", feed)
	}

	admin := s.adminToken()
	var st DashboardStats
	s.expect(s.do(http.MethodGet, "/api/admin/dashboard/stats", admin, nil), http.StatusOK, &st)
	if st.TotalCars != 3 || st.TotalMessages != 1 || st.TotalNewsletterSubscribers != 1 || st.TotalCarEnquiries != 1 || st.TotalUsers != 1 {
		t.Fatalf("unexpected counts %+v", st)
	}
	if st.Prices.Known != 2 || st.Prices.Unknown != 1 || st.Prices.Min != 100000 || st.Prices.Max != 300000 || st.Prices.Mean != 200000 {
		t.Fatalf("unexpected price summary %+v", st.Prices)
	}

	rec := s.do(http.MethodGet, "/api/admin/exports/subscribers.csv", admin, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "news@example.com") {
		t.Fatalf("unexpected csv export %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Fatalf("expected an attachment, got %q", cd)
	}
	rec = s.do(http.MethodGet, "/api/admin/exports/inventory.xlsx", admin, nil)
	if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
		t.Fatalf("unexpected inventory export %d", rec.Code)
	}

	var msgs []domain.ContactMessage
	s.expect(s.do(http.MethodGet, "/api/admin/messages", admin, nil), http.StatusOK, &msgs)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	s.expect(s.do(http.MethodDelete, fmt.Sprintf("/api/admin/messages/%d", msgs[0].ID), admin, nil), http.StatusOK, nil)
	s.expect(s.do(http.MethodDelete, fmt.Sprintf("/api/admin/messages/%d", msgs[0].ID), admin, nil), http.StatusNotFound, nil)
}

func TestSummarizePrices(t *testing.T) {
	sum := summarizePrices([]string{"N$ 10,000", "30000", "POA", "", "N$ 20,000"})
	if sum.Known != 3 || sum.Unknown != 2 || sum.Median != 20000 || sum.Mean != 20000 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if empty := summarizePrices(nil); empty.Known != 0 || empty.Min != 0 {
		t.Fatalf("unexpected empty summary %+v", empty)
	}
}
