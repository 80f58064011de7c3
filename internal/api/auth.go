package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/exidealers/marketplace/internal/domain"
	"github.com/exidealers/marketplace/internal/webserver"
	"github.com/exidealers/marketplace/pkg/common"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type registerPayload struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Phone     string `json:"phone" validate:"omitempty,max=50"`
}

type loginPayload struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profilePayload struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,max=50"`
}

type changePasswordPayload struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=72"`
}

type adminLoginPayload struct {
	Secret string `json:"secret" validate:"required"`
}

// userView is the account shape returned to the browser
type userView struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	ProfileImage string    `json:"profileImage,omitempty"`
	Initials     string    `json:"initials"`
	CreatedAt    time.Time `json:"createdAt"`
}

func newUserView(u *domain.User) userView {
	return userView{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Phone:        u.Phone,
		ProfileImage: u.ProfileImage,
		Initials:     initials(u.FirstName, u.LastName),
		CreatedAt:    u.CreatedAt,
	}
}

func initials(first, last string) string {
	var b strings.Builder
	for _, s := range []string{first, last} {
		if r := []rune(strings.TrimSpace(s)); len(r) > 0 {
			b.WriteRune(r[0])
		}
	}
	return strings.ToUpper(b.String())
}

// registerAuthRoutes registers account and admin session routes
func registerAuthRoutes() {
	webserver.ApiPOST("/auth/register", register)
	webserver.ApiPOST("/auth/login", login)
	webserver.ApiPOST("/auth/logout", logout)
	webserver.ApiGET("/auth/status", authStatus, webserver.OptionalAuth())
	webserver.UserGET("/auth/profile", getProfile)
	webserver.UserPUT("/auth/profile", updateProfile)
	webserver.UserPUT("/auth/change-password", changePassword)
	webserver.UserDELETE("/auth/account", deleteAccount)

	webserver.ApiPOST("/admin/login", adminLogin)
	webserver.ApiGET("/verify-token", verifyToken, webserver.AdminAuth()...)
}

func tokenTTL(c echo.Context) time.Duration {
	days := GetAppContext(c).Config().Auth.TokenDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

// startSession issues a token, sets the cookie and answers with the account
func startSession(c echo.Context, user *domain.User) error {
	cfg := GetAppContext(c).Config()
	ttl := tokenTTL(c)
	token, err := webserver.IssueToken(cfg.Auth.JwtSecret, webserver.UserClaims{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      webserver.RoleUser,
	}, ttl)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", nil)
	}
	webserver.SetTokenCookie(c, token, ttl, cfg.Auth.SecureCookie)
	return ok(c, map[string]interface{}{
		"user":  newUserView(user),
		"token": token,
	})
}

func register(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration", nil)
	}
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	db := GetDB(c)
	var exists int64
	db.Model(&domain.User{}).Where("email = ?", payload.Email).Count(&exists)
	if exists > 0 {
		return fail(c, http.StatusConflict, "EMAIL_EXISTS", "Email already registered", nil)
	}

	hash, err := common.HashPassword(payload.Password)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Registration failed", nil)
	}
	user := domain.User{
		FirstName: strings.TrimSpace(payload.FirstName),
		LastName:  strings.TrimSpace(payload.LastName),
		Email:     payload.Email,
		Password:  hash,
		Phone:     strings.TrimSpace(payload.Phone),
		IsActive:  true,
	}
	if err := db.Create(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Registration failed", err.Error())
	}
	zap.L().Info("user registered", zap.String("namespace", "auth"), zap.Int64("user_id", user.ID))
	return startSession(c, &user)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	db := GetDB(c)
	var user domain.User
	err := db.Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(payload.Email)), true).First(&user).Error
	if err != nil && !isNotFound(err) {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Login failed", err.Error())
	}
	if err != nil || !common.CheckPassword(user.Password, payload.Password) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	}

	now := time.Now()
	user.LastLogin = &now
	db.Model(&user).Update("last_login", now)
	return startSession(c, &user)
}

func logout(c echo.Context) error {
	webserver.ClearTokenCookie(c)
	return ok(c, map[string]interface{}{"message": "Logged out successfully"})
}

// authStatus never fails; anonymous callers get authenticated=false
func authStatus(c echo.Context) error {
	anonymous := map[string]interface{}{"authenticated": false}
	uid := webserver.CurrentUserID(c)
	if uid == 0 {
		if claims := webserver.CurrentClaims(c); claims != nil && claims.Role == webserver.RoleAdmin {
			return ok(c, map[string]interface{}{"authenticated": true, "role": webserver.RoleAdmin})
		}
		return ok(c, anonymous)
	}
	var user domain.User
	if err := GetDB(c).Where("id = ? AND is_active = ?", uid, true).First(&user).Error; err != nil {
		return ok(c, anonymous)
	}
	return ok(c, map[string]interface{}{
		"authenticated": true,
		"role":          webserver.RoleUser,
		"user":          newUserView(&user),
	})
}

// currentUser loads the account of a member route; it answers the request itself on failure
func currentUser(c echo.Context) (*domain.User, error) {
	uid := webserver.CurrentUserID(c)
	if uid == 0 {
		return nil, fail(c, http.StatusForbidden, "FORBIDDEN", "A member account is required", nil)
	}
	var user domain.User
	err := GetDB(c).Where("id = ?", uid).First(&user).Error
	if isNotFound(err) {
		return nil, fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found", nil)
	} else if err != nil {
		return nil, fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query user", err.Error())
	}
	return &user, nil
}

func getProfile(c echo.Context) error {
	user, err := currentUser(c)
	if user == nil {
		return err
	}
	return ok(c, newUserView(user))
}

func updateProfile(c echo.Context) error {
	user, err := currentUser(c)
	if user == nil {
		return err
	}
	var payload profilePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse profile", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}

	if payload.FirstName != nil && strings.TrimSpace(*payload.FirstName) != "" {
		user.FirstName = strings.TrimSpace(*payload.FirstName)
	}
	if payload.LastName != nil && strings.TrimSpace(*payload.LastName) != "" {
		user.LastName = strings.TrimSpace(*payload.LastName)
	}
	if payload.Phone != nil {
		user.Phone = strings.TrimSpace(*payload.Phone)
	}
	if err := GetDB(c).Model(user).Updates(map[string]interface{}{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"phone":      user.Phone,
	}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update profile", err.Error())
	}
	return ok(c, newUserView(user))
}

func changePassword(c echo.Context) error {
	user, err := currentUser(c)
	if user == nil {
		return err
	}
	var payload changePasswordPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse password change", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if !common.CheckPassword(user.Password, payload.CurrentPassword) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Current password is incorrect", nil)
	}
	hash, err := common.HashPassword(payload.NewPassword)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "PASSWORD_ERROR", "Failed to change password", nil)
	}
	if err := GetDB(c).Model(user).Update("password", hash).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to change password", err.Error())
	}
	return ok(c, map[string]interface{}{"message": "Password updated successfully"})
}

// deleteAccount removes the member and everything that only belongs to them.
// Price alerts stay active as anonymous alerts bound to the email.
func deleteAccount(c echo.Context) error {
	user, err := currentUser(c)
	if user == nil {
		return err
	}
	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&domain.UserFavorite{}, &domain.UserSaved{}, &domain.UserActivity{}} {
			if err := tx.Where("user_id = ?", user.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&domain.PriceAlert{}).Where("user_id = ?", user.ID).Update("user_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.User{}, user.ID).Error
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete account", err.Error())
	}
	webserver.ClearTokenCookie(c)
	zap.L().Info("user account deleted", zap.String("namespace", "auth"), zap.Int64("user_id", user.ID))
	return ok(c, map[string]interface{}{"message": "Account deleted successfully"})
}

// adminLogin exchanges the shared admin secret for a token carrying the admin role
func adminLogin(c echo.Context) error {
	var payload adminLoginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	cfg := GetAppContext(c).Config()
	if cfg.Auth.AdminSecret == "" || subtle.ConstantTimeCompare([]byte(payload.Secret), []byte(cfg.Auth.AdminSecret)) != 1 {
		zap.L().Warn("admin login rejected", zap.String("namespace", "auth"), zap.String("ip", c.RealIP()))
		return fail(c, http.StatusForbidden, "INVALID_ADMIN_TOKEN", "Invalid admin token", nil)
	}

	ttl := tokenTTL(c)
	token, err := webserver.IssueToken(cfg.Auth.JwtSecret, webserver.UserClaims{Role: webserver.RoleAdmin}, ttl)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", nil)
	}
	webserver.SetTokenCookie(c, token, ttl, cfg.Auth.SecureCookie)
	return ok(c, map[string]interface{}{"token": token})
}

func verifyToken(c echo.Context) error {
	return ok(c, map[string]interface{}{"status": "valid"})
}
