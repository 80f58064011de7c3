package listing

import (
	"context"
	"strings"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/media"
	"github.com/exidealers/marketplace/pkg/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Draft holds the editable fields of a listing. On update, blank fields and a zero
// year keep the stored value; optional fields named in Clear are emptied instead.
type Draft struct {
	Make             string `form:"make" json:"make"`
	Model            string `form:"model" json:"model"`
	Year             int    `form:"year" json:"year"`
	Price            string `form:"price" json:"price"`
	Mileage          string `form:"mileage" json:"mileage"`
	Location         string `form:"location" json:"location"`
	Description      string `form:"description" json:"description"`
	Condition        string `form:"condition" json:"condition"`
	SellerName       string `form:"sellerName" json:"sellerName"`
	SellerEmail      string `form:"sellerEmail" json:"sellerEmail"`
	SellerPhone      string `form:"sellerPhone" json:"sellerPhone"`
	PreferredContact string `form:"preferredContact" json:"preferredContact"`
	BodyType         string `form:"bodyType" json:"bodyType"`
	Transmission     string `form:"transmission" json:"transmission"`
	FuelType         string `form:"fuelType" json:"fuelType"`
	DriveType        string `form:"driveType" json:"driveType"`
	// PrimaryImageIndex selects which uploaded file becomes the primary image
	PrimaryImageIndex int `form:"primaryImageIndex" json:"primaryImageIndex"`
	// Clear lists optional fields, by their form name, to empty on update
	Clear []string `form:"clear" json:"clear"`
}

// KeptImage is an existing image retained by an update, in its new position
type KeptImage struct {
	ImageURL  string `json:"imageUrl"`
	IsPrimary bool   `json:"isPrimary"`
}

type Service struct {
	db    *gorm.DB
	store media.Store
}

func NewService(db *gorm.DB, store media.Store) *Service {
	return &Service{db: db, store: store}
}

func (d Draft) apply(car *domain.Car) error {
	mileage, ok, err := ParseMileage(d.Mileage)
	if err != nil {
		return err
	}
	if ok {
		car.Mileage = mileage
	}
	if d.Year != 0 {
		car.Year = d.Year
	}
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&car.Make, d.Make)
	set(&car.Model, d.Model)
	set(&car.Price, d.Price)
	set(&car.Location, d.Location)
	set(&car.Description, d.Description)
	set(&car.Condition, d.Condition)
	set(&car.SellerName, d.SellerName)
	set(&car.SellerEmail, d.SellerEmail)
	set(&car.SellerPhone, d.SellerPhone)
	set(&car.PreferredContact, d.PreferredContact)
	set(&car.BodyType, d.BodyType)
	set(&car.Transmission, d.Transmission)
	set(&car.FuelType, d.FuelType)
	set(&car.DriveType, d.DriveType)
	for _, name := range d.Clear {
		if dst := clearable(car, strings.TrimSpace(name)); dst != nil {
			*dst = ""
		}
	}
	return nil
}

// clearable maps a form name to an optional field. Identity, price and contact
// fields needed to reach the seller are never cleared.
func clearable(car *domain.Car, name string) *string {
	switch name {
	case "description":
		return &car.Description
	case "location":
		return &car.Location
	case "condition":
		return &car.Condition
	case "sellerPhone":
		return &car.SellerPhone
	case "bodyType":
		return &car.BodyType
	case "transmission":
		return &car.Transmission
	case "fuelType":
		return &car.FuelType
	case "driveType":
		return &car.DriveType
	}
	return nil
}

// Create stores the uploads, then writes the car and its image rows in one transaction.
// Stored files are removed again when the transaction fails.
func (s *Service) Create(ctx context.Context, d Draft, uploads []Upload, status string) (*domain.Car, error) {
	if err := CheckUploads(uploads); err != nil {
		return nil, err
	}
	car := domain.Car{Status: status, PreferredContact: "email"}
	if err := d.apply(&car); err != nil {
		return nil, err
	}

	urls, err := s.storeUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&car).Error; err != nil {
			return errors.Wrap(err, "create car")
		}
		images := newImages(car.ID, urls, 0, d.PrimaryImageIndex, false)
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return errors.Wrap(err, "create car images")
			}
		}
		return nil
	})
	if err != nil {
		s.removeAll(ctx, urls)
		return nil, err
	}
	return s.Get(ctx, car.ID)
}

// Update applies the draft. A non-nil keep list replaces the current images;
// new uploads are appended after them.
func (s *Service) Update(ctx context.Context, id int64, d Draft, keep []KeptImage, uploads []Upload) (*domain.Car, error) {
	if err := CheckUploads(uploads); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	car := *current
	car.Images = nil
	if err := d.apply(&car); err != nil {
		return nil, err
	}

	urls, err := s.storeUploads(ctx, uploads)
	if err != nil {
		return nil, err
	}

	var dropped []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images").Save(&car).Error; err != nil {
			return errors.Wrap(err, "update car")
		}

		offset := len(current.Images)
		hasPrimary := false
		for _, img := range current.Images {
			hasPrimary = hasPrimary || img.IsPrimary
		}
		if keep != nil {
			if err := tx.Where("car_id = ?", id).Delete(&domain.CarImage{}).Error; err != nil {
				return errors.Wrap(err, "clear car images")
			}
			kept := make([]domain.CarImage, 0, len(keep))
			hasPrimary = false
			for i, k := range keep {
				kept = append(kept, domain.CarImage{CarID: id, ImageURL: k.ImageURL, IsPrimary: k.IsPrimary, SortOrder: i})
				hasPrimary = hasPrimary || k.IsPrimary
			}
			if len(kept) > 0 {
				if err := tx.Create(&kept).Error; err != nil {
					return errors.Wrap(err, "restore car images")
				}
			}
			dropped = droppedURLs(current.Images, keep)
			offset = len(kept)
		}

		images := newImages(id, urls, offset, d.PrimaryImageIndex, hasPrimary)
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return errors.Wrap(err, "create car images")
			}
		}
		return nil
	})
	if err != nil {
		s.removeAll(ctx, urls)
		return nil, err
	}
	s.removeAll(ctx, dropped)
	return s.Get(ctx, id)
}

// Delete removes the car together with its images and member references
func (s *Service) Delete(ctx context.Context, id int64) error {
	car, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&domain.CarImage{}, &domain.UserFavorite{}, &domain.UserSaved{}, &domain.PriceAlert{}} {
			if err := tx.Where("car_id = ?", id).Delete(model).Error; err != nil {
				return errors.Wrap(err, "delete car references")
			}
		}
		if err := tx.Model(&domain.UserActivity{}).Where("car_id = ?", id).Update("car_id", nil).Error; err != nil {
			return errors.Wrap(err, "detach car activity")
		}
		return errors.Wrap(tx.Delete(&domain.Car{}, id).Error, "delete car")
	})
	if err != nil {
		return err
	}
	urls := make([]string, 0, len(car.Images))
	for _, img := range car.Images {
		urls = append(urls, img.ImageURL)
	}
	s.removeAll(ctx, urls)
	return nil
}

// SetStatus moves a listing between pending, approved and rejected
func (s *Service) SetStatus(ctx context.Context, id int64, status string) (*domain.Car, error) {
	switch status {
	case common.StatusApproved, common.StatusPending, common.StatusRejected:
	default:
		return nil, errors.Errorf("unknown listing status %q", status)
	}
	res := s.db.WithContext(ctx).Model(&domain.Car{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "update car status")
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return s.Get(ctx, id)
}

// Get loads a car with ordered images regardless of status
func (s *Service) Get(ctx context.Context, id int64) (*domain.Car, error) {
	var car domain.Car
	err := s.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		First(&car, id).Error
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func (s *Service) storeUploads(ctx context.Context, uploads []Upload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, u := range uploads {
		url, err := s.storeOne(ctx, u)
		if err != nil {
			s.removeAll(ctx, urls)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *Service) storeOne(ctx context.Context, u Upload) (string, error) {
	r, err := u.Open()
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer r.Close()
	return s.store.Save(ctx, common.UploadName("car", u.Filename), u.ContentType, r)
}

func (s *Service) removeAll(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.store.Remove(ctx, url); err != nil {
			zap.L().Warn("remove media failed",
				zap.String("namespace", "listing"),
				zap.String("url", url),
				zap.Error(err))
		}
	}
}

// newImages builds rows for freshly stored files starting at position offset.
// The file at primaryIndex is primary unless a retained image already is.
func newImages(carID int64, urls []string, offset, primaryIndex int, hasPrimary bool) []domain.CarImage {
	images := make([]domain.CarImage, 0, len(urls))
	for i, url := range urls {
		images = append(images, domain.CarImage{
			CarID:     carID,
			ImageURL:  url,
			IsPrimary: !hasPrimary && i == primaryIndex,
			SortOrder: offset + i,
		})
	}
	return images
}

func droppedURLs(current []domain.CarImage, keep []KeptImage) []string {
	kept := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		kept[k.ImageURL] = struct{}{}
	}
	var out []string
	for _, img := range current {
		if _, ok := kept[img.ImageURL]; !ok {
			out = append(out, img.ImageURL)
		}
	}
	return out
}
