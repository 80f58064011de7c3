package listing

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/testutil"
	"github.com/exidealers/marketplace/pkg/common"
)

type memStore struct {
	mu      sync.Mutex
	files   map[string]string
	failOn  int
	saves   int
	removed []string
}

func newMemStore() *memStore {
	return &memStore{files: map[string]string{}}
}

func (m *memStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.failOn > 0 && m.saves == m.failOn {
		return "", errors.New("disk full")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := "/uploads/" + name
	m.files[url] = string(b)
	return url, nil
}

func (m *memStore) Remove(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, url)
	m.removed = append(m.removed, url)
	return nil
}

func upload(name, body string) Upload {
	return Upload{
		Filename:    name,
		ContentType: "image/jpeg",
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}

func TestParseMileage(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
		err  bool
	}{
		{"", 0, false, false},
		{"120000", 120000, true, false},
		{"120 000 km", 120000, true, false},
		{"85,500KM", 85500, true, false},
		{"km", 0, false, true},
		{"unknown", 0, false, true},
		{"0", 0, false, true},
	}
	for _, tt := range tests {
		got, ok, err := ParseMileage(tt.in)
		if (err != nil) != tt.err || ok != tt.ok || got != tt.want {
			t.Fatalf("ParseMileage(%q) = %d, %v, %v", tt.in, got, ok, err)
		}
		if tt.err && !errors.Is(err, ErrInvalidMileage) {
			t.Fatalf("expected ErrInvalidMileage, got %v", err)
		}
	}
}

func TestCheckUploads(t *testing.T) {
	many := make([]Upload, MaxFiles+1)
	for i := range many {
		many[i] = upload("a.jpg", "x")
	}
	big := upload("big.jpg", "")
	big.Size = MaxFileSize + 1
	six := make([]Upload, 11)
	for i := range six {
		six[i] = upload("p.jpg", "")
		six[i].Size = MaxFileSize
	}
	doc := upload("cv.pdf", "x")
	doc.ContentType = "application/pdf"

	tests := []struct {
		name    string
		uploads []Upload
		want    error
	}{
		{"none", nil, nil},
		{"ok", []Upload{upload("a.jpg", "x")}, nil},
		{"too many", many, ErrTooManyFiles},
		{"too big", []Upload{big}, ErrFileTooLarge},
		{"total too big", six, ErrUploadTooLarge},
		{"not image", []Upload{doc}, ErrNotImage},
	}
	for _, tt := range tests {
		err := CheckUploads(tt.uploads)
		if tt.want == nil && err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Fatalf("%s: got %v, want %v", tt.name, err, tt.want)
		}
	}
	if !IsLimitError(ErrUploadTooLarge) || IsLimitError(ErrNotImage) {
		t.Fatalf("IsLimitError misclassifies errors")
	}
}

func TestCreateListing(t *testing.T) {
	db := testutil.OpenDB(t)
	store := newMemStore()
	svc := NewService(db, store)

	draft := Draft{Make: "Toyota", Model: "Hilux", Year: 2019, Price: "N$ 350,000", Mileage: "85 000 km", PrimaryImageIndex: 1}
	car, err := svc.Create(context.Background(), draft, []Upload{upload("front.jpg", "1"), upload("side.jpg", "2")}, common.StatusPending)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if car.Mileage != 85000 || car.Year != 2019 || car.Status != common.StatusPending {
		t.Fatalf("unexpected car %+v", car)
	}
	if car.PriceValue == nil || *car.PriceValue != 350000 {
		t.Fatalf("price value not normalized: %v", car.PriceValue)
	}
	if car.PreferredContact != "email" {
		t.Fatalf("expected default preferred contact, got %q", car.PreferredContact)
	}
	if len(car.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(car.Images))
	}
	if car.Images[0].IsPrimary || !car.Images[1].IsPrimary || car.Images[1].SortOrder != 1 {
		t.Fatalf("unexpected images %+v", car.Images)
	}
	if len(store.files) != 2 {
		t.Fatalf("expected 2 stored files, got %d", len(store.files))
	}
}

func TestCreateListingInvalidMileageStoresNothing(t *testing.T) {
	db := testutil.OpenDB(t)
	store := newMemStore()
	svc := NewService(db, store)

	_, err := svc.Create(context.Background(), Draft{Make: "VW", Model: "Golf", Year: 2015, Mileage: "lots"}, []Upload{upload("a.jpg", "1")}, common.StatusApproved)
	if !errors.Is(err, ErrInvalidMileage) {
		t.Fatalf("expected ErrInvalidMileage, got %v", err)
	}
	if store.saves != 0 {
		t.Fatalf("no file may be stored for an invalid draft")
	}
	var count int64
	db.Model(&domain.Car{}).Count(&count)
	if count != 0 {
		t.Fatalf("no car may be written, found %d", count)
	}
}

func TestCreateListingCleansUpPartialUploads(t *testing.T) {
	db := testutil.OpenDB(t)
	store := newMemStore()
	store.failOn = 2
	svc := NewService(db, store)

	_, err := svc.Create(context.Background(), Draft{Make: "VW", Model: "Golf", Year: 2015}, []Upload{upload("a.jpg", "1"), upload("b.jpg", "2")}, common.StatusApproved)
	if err == nil {
		t.Fatalf("expected store failure")
	}
	if len(store.files) != 0 || len(store.removed) != 1 {
		t.Fatalf("first upload must be removed, files=%v removed=%v", store.files, store.removed)
	}
}

func TestUpdateListingReplacesImages(t *testing.T) {
	db := testutil.OpenDB(t)
	store := newMemStore()
	svc := NewService(db, store)
	ctx := context.Background()

	car, err := svc.Create(ctx, Draft{Make: "Ford", Model: "Ranger", Year: 2018, Price: "POA"}, []Upload{upload("a.jpg", "1"), upload("b.jpg", "2")}, common.StatusApproved)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if car.PriceValue != nil {
		t.Fatalf("POA must have no numeric price")
	}
	keepURL := car.Images[1].ImageURL
	dropURL := car.Images[0].ImageURL

	updated, err := svc.Update(ctx, car.ID,
		Draft{Price: "N$ 280 000", Mileage: "120 000"},
		[]KeptImage{{ImageURL: keepURL, IsPrimary: true}},
		[]Upload{upload("c.jpg", "3")},
	)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Make != "Ford" || updated.Year != 2018 || updated.Mileage != 120000 {
		t.Fatalf("blank fields must keep stored values: %+v", updated)
	}
	if updated.PriceValue == nil || *updated.PriceValue != 280000 {
		t.Fatalf("price value not refreshed: %v", updated.PriceValue)
	}
	if len(updated.Images) != 2 {
		t.Fatalf("expected 2 images, got %+v", updated.Images)
	}
	if updated.Images[0].ImageURL != keepURL || !updated.Images[0].IsPrimary || updated.Images[0].SortOrder != 0 {
		t.Fatalf("unexpected kept image %+v", updated.Images[0])
	}
	if updated.Images[1].IsPrimary || updated.Images[1].SortOrder != 1 {
		t.Fatalf("new image must follow kept ones without stealing primary: %+v", updated.Images[1])
	}
	if _, ok := store.files[dropURL]; ok {
		t.Fatalf("dropped image file must be removed")
	}
}

func TestUpdateListingClearsOptionalFields(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewService(db, newMemStore())
	ctx := context.Background()

	car, err := svc.Create(ctx, Draft{
		Make:        "VW",
		Model:       "Polo",
		Price:       "N$ 150 000",
		Description: "One owner",
		SellerEmail: "seller@example.com",
		SellerPhone: "+264 81 000 0000",
		BodyType:    "Hatchback",
	}, nil, common.StatusApproved)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, car.ID, Draft{
		Clear: []string{"description", " sellerPhone ", "sellerEmail", "make", "unknown"},
	}, nil, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "" || updated.SellerPhone != "" {
		t.Fatalf("optional fields not cleared: %q %q", updated.Description, updated.SellerPhone)
	}
	if updated.Make != "VW" || updated.SellerEmail != "seller@example.com" || updated.BodyType != "Hatchback" {
		t.Fatalf("only clearable named fields may be emptied: %+v", updated)
	}
}

func TestDeleteAndStatus(t *testing.T) {
	db := testutil.OpenDB(t)
	store := newMemStore()
	svc := NewService(db, store)
	ctx := context.Background()

	car, err := svc.Create(ctx, Draft{Make: "Kia", Model: "Rio", Year: 2012}, []Upload{upload("a.jpg", "1")}, common.StatusPending)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Create(&domain.UserFavorite{UserID: 1, CarID: car.ID}).Error; err != nil {
		t.Fatalf("favorite: %v", err)
	}

	approved, err := svc.SetStatus(ctx, car.ID, common.StatusApproved)
	if err != nil || approved.Status != common.StatusApproved {
		t.Fatalf("approve: %v %+v", err, approved)
	}
	if _, err := svc.SetStatus(ctx, car.ID, "sold"); err == nil {
		t.Fatalf("unknown status must be rejected")
	}

	if err := svc.Delete(ctx, car.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var n int64
	db.Model(&domain.CarImage{}).Count(&n)
	if n != 0 {
		t.Fatalf("images must be deleted")
	}
	db.Model(&domain.UserFavorite{}).Count(&n)
	if n != 0 {
		t.Fatalf("favorites must be deleted")
	}
	if len(store.files) != 0 {
		t.Fatalf("stored files must be removed")
	}
	if err := svc.Delete(ctx, car.ID); err == nil {
		t.Fatalf("deleting twice must fail")
	}
}
