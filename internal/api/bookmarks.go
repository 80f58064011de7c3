package api

import (
	"net/http"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/webserver"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bookmark describes one per-member list of cars (favorites, saved)
type bookmark struct {
	path           string
	table          string
	checkKey       string
	addActivity    string
	removeActivity string
	model          func() interface{}
	row            func(userID, carID int64) interface{}
}

var (
	favorites = bookmark{
		path:           "/user/favorites",
		table:          domain.UserFavorite{}.TableName(),
		checkKey:       "isFavorited",
		addActivity:    domain.ActivityFavoriteAdd,
		removeActivity: domain.ActivityFavoriteRemove,
		model:          func() interface{} { return &domain.UserFavorite{} },
		row: func(userID, carID int64) interface{} {
			return &domain.UserFavorite{UserID: userID, CarID: carID}
		},
	}
	saved = bookmark{
		path:           "/user/saved",
		table:          domain.UserSaved{}.TableName(),
		checkKey:       "isSaved",
		addActivity:    domain.ActivitySaveAdd,
		removeActivity: domain.ActivitySaveRemove,
		model:          func() interface{} { return &domain.UserSaved{} },
		row: func(userID, carID int64) interface{} {
			return &domain.UserSaved{UserID: userID, CarID: carID}
		},
	}
)

// registerBookmarkRoutes registers the favorites and saved lists
func registerBookmarkRoutes() {
	for _, b := range []bookmark{favorites, saved} {
		webserver.UserGET(b.path, b.list)
		webserver.UserPOST(b.path+"/:carId", b.add)
		webserver.UserDELETE(b.path+"/:carId", b.remove)
		webserver.UserGET(b.path+"/check/:carId", b.check)
	}
}

func (b bookmark) member(c echo.Context) (int64, int64, error) {
	uid := webserver.CurrentUserID(c)
	if uid == 0 {
		return 0, 0, fail(c, http.StatusForbidden, "FORBIDDEN", "A member account is required", nil)
	}
	if c.Param("carId") == "" {
		return uid, 0, nil
	}
	carID, err := parseIDParam(c, "carId")
	if err != nil {
		return 0, 0, fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid car ID", nil)
	}
	return uid, carID, nil
}

func (b bookmark) exists(db *gorm.DB, uid, carID int64) (bool, error) {
	var n int64
	err := db.Model(b.model()).Where("user_id = ? AND car_id = ?", uid, carID).Count(&n).Error
	return n > 0, err
}

// list returns the member's cars, most recently added first
func (b bookmark) list(c echo.Context) error {
	uid, _, err := b.member(c)
	if uid == 0 {
		return err
	}
	cars := make([]domain.Car, 0)
	err = GetDB(c).
		Joins("JOIN "+b.table+" ON "+b.table+".car_id = cars.id").
		Where(b.table+".user_id = ?", uid).
		Order(b.table + ".created_at DESC").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") }).
		Find(&cars).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query cars", err.Error())
	}
	return ok(c, cars)
}

// add is idempotent; added is false when the car was already in the list
func (b bookmark) add(c echo.Context) error {
	uid, carID, err := b.member(c)
	if carID == 0 {
		return err
	}
	db := GetDB(c)
	var car domain.Car
	if err := db.Select("id", "make", "model").First(&car, carID).Error; isNotFound(err) {
		return fail(c, http.StatusNotFound, "CAR_NOT_FOUND", "Car not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query car", err.Error())
	}

	found, err := b.exists(db, uid, carID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query list", err.Error())
	}
	if !found {
		if err := db.Create(b.row(uid, carID)).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to add car", err.Error())
		}
		logActivity(c, uid, b.addActivity, &carID, car.Make+" "+car.Model)
	}
	return ok(c, map[string]interface{}{"added": !found})
}

func (b bookmark) remove(c echo.Context) error {
	uid, carID, err := b.member(c)
	if carID == 0 {
		return err
	}
	res := GetDB(c).Where("user_id = ? AND car_id = ?", uid, carID).Delete(b.model())
	if res.Error != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to remove car", res.Error.Error())
	}
	if res.RowsAffected > 0 {
		logActivity(c, uid, b.removeActivity, &carID, "")
	}
	return ok(c, map[string]interface{}{"removed": res.RowsAffected > 0})
}

func (b bookmark) check(c echo.Context) error {
	uid, carID, err := b.member(c)
	if carID == 0 {
		return err
	}
	found, err := b.exists(GetDB(c), uid, carID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query list", err.Error())
	}
	return ok(c, map[string]interface{}{b.checkKey: found})
}

// logActivity appends to the member's activity feed; failures are logged and ignored
func logActivity(c echo.Context, userID int64, activityType string, carID *int64, details string) {
	entry := domain.UserActivity{UserID: userID, CarID: carID, ActivityType: activityType, Details: details}
	if err := GetDB(c).Create(&entry).Error; err != nil {
		zap.L().Warn("activity not recorded",
			zap.String("namespace", "activity"),
			zap.Int64("user_id", userID),
			zap.String("type", activityType),
			zap.Error(err))
	}
}
