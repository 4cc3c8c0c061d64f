package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rentreward/rentreward/config"
	"github.com/rentreward/rentreward/models"
	"github.com/rentreward/rentreward/utils"
)

// tokenDuration matches the original 7-day session length.
const tokenDuration = 7 * 24 * time.Hour

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	errUserExists      = errors.New("user already exists")
	errEmailSendFailed = errors.New("verification email send failed")
	errInvalidToken    = errors.New("invalid or expired verification token")
)

// AuthController handles signup, login and email verification.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Signup registers a new tenant or owner account. User creation, verification
// token issue, profile linking, referral crediting and the verification email
// all happen inside one transaction; an email delivery failure rolls the whole
// signup back so no partial user row survives.
func (a *AuthController) Signup(ctx *gin.Context) {
	type request struct {
		Email        string `json:"email"`
		PhoneNumber  string `json:"phone_number"`
		Password     string `json:"password" binding:"required"`
		DisplayName  string `json:"display_name" binding:"required"`
		UserType     string `json:"user_type" binding:"required"`
		ReferralCode string `json:"referral_code"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	if len(req.Password) < 8 {
		utils.Error(ctx, http.StatusBadRequest, 40002, "password must be at least 8 characters long")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if req.Email == "" && req.PhoneNumber == "" {
		utils.Error(ctx, http.StatusBadRequest, 40003, "either email or phone number is required")
		return
	}
	if req.Email != "" && !emailPattern.MatchString(req.Email) {
		utils.Error(ctx, http.StatusBadRequest, 40004, "invalid email format")
		return
	}
	if req.UserType != models.UserTypeTenant && req.UserType != models.UserTypeOwner {
		utils.Error(ctx, http.StatusBadRequest, 40005, "user_type must be tenant or owner")
		return
	}

	displayName := utils.Sanitize(strings.TrimSpace(req.DisplayName))
	if displayName == "" {
		utils.Error(ctx, http.StatusBadRequest, 40006, "display name is required")
		return
	}

	var user models.User
	err := a.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		dup := tx.Model(&models.User{})
		if req.Email != "" && req.PhoneNumber != "" {
			dup = dup.Where("email = ? OR phone_number = ?", req.Email, req.PhoneNumber)
		} else if req.Email != "" {
			dup = dup.Where("email = ?", req.Email)
		} else {
			dup = dup.Where("phone_number = ?", req.PhoneNumber)
		}
		if err := dup.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errUserExists
		}

		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			return err
		}

		user = models.User{
			PasswordHash: hash,
			DisplayName:  displayName,
			UserType:     req.UserType,
			// Phone-only accounts have no address to verify against.
			IsVerified: req.Email == "",
		}
		if req.Email != "" {
			user.Email = &req.Email
		}
		if req.PhoneNumber != "" {
			user.PhoneNumber = &req.PhoneNumber
		}

		var token string
		if req.Email != "" {
			token = user.GenerateVerificationToken()
		}

		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if err := linkProfile(tx, &user, displayName, req.PhoneNumber); err != nil {
			return err
		}

		if code := strings.TrimSpace(req.ReferralCode); code != "" {
			if err := applyReferralCode(tx, &user, code); err != nil {
				return err
			}
		}

		if token != "" {
			if err := utils.SendVerificationEmail(req.Email, token); err != nil {
				utils.Sugar.Errorf("verification email to %s failed: %v", req.Email, err)
				return errEmailSendFailed
			}
		}
		return nil
	})

	switch err {
	case nil:
	case errUserExists:
		utils.Error(ctx, http.StatusBadRequest, 40901, "user already exists with this email or phone number")
		return
	case errEmailSendFailed:
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to send verification email")
		return
	default:
		utils.Sugar.Errorf("signup failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50001, "error creating account, please try again")
		return
	}

	utils.Respond(ctx, http.StatusCreated, 0, "signup successful", gin.H{
		"user_id":     user.ID,
		"is_verified": user.IsVerified,
	})
}

// Login verifies credentials against email or phone number and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	type request struct {
		Identifier string `json:"identifier" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}

	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "please provide all required fields")
		return
	}

	identifier := strings.TrimSpace(req.Identifier)
	var user models.User
	if err := a.db.Where("email = ? OR phone_number = ?", strings.ToLower(identifier), identifier).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid credentials")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid credentials")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.UserType, user.IsVerified, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"token":        token,
		"user_id":      user.ID,
		"user_type":    user.UserType,
		"is_verified":  user.IsVerified,
		"display_name": user.DisplayName,
	})
}

// Verify consumes an email verification token. Expired or unknown tokens are
// rejected; the 24 hour window is checked against the stored expiry.
func (a *AuthController) Verify(ctx *gin.Context) {
	token := strings.TrimSpace(ctx.Param("token"))
	if token == "" {
		utils.Error(ctx, http.StatusBadRequest, 40020, "missing verification token")
		return
	}

	var user models.User
	err := a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("verification_token = ?", token).First(&user).Error; err != nil {
			return errInvalidToken
		}
		if user.VerificationTokenExpires == nil || time.Now().After(*user.VerificationTokenExpires) {
			return errInvalidToken
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"is_verified":                true,
			"verification_token":         nil,
			"verification_token_expires": nil,
		}).Error
	})

	if err != nil {
		if err == errInvalidToken {
			utils.Error(ctx, http.StatusBadRequest, 40021, "invalid or expired verification token")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "error during email verification")
		return
	}

	utils.Success(ctx, gin.H{"user_id": user.ID})
}

// ResendVerification regenerates the verification token and resends the email.
func (a *AuthController) ResendVerification(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "email is required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}
	if user.IsVerified {
		utils.Error(ctx, http.StatusBadRequest, 40031, "email is already verified")
		return
	}

	// basic cooldown: per-email 60s
	if !utils.EmailCooldownTrySet(email, 60*time.Second) {
		utils.Error(ctx, http.StatusTooManyRequests, 42910, "please wait before requesting another email")
		return
	}

	err := a.db.Transaction(func(tx *gorm.DB) error {
		token := user.GenerateVerificationToken()
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"verification_token":         user.VerificationToken,
			"verification_token_expires": user.VerificationTokenExpires,
		}).Error; err != nil {
			return err
		}
		if err := utils.SendVerificationEmail(email, token); err != nil {
			utils.Sugar.Errorf("verification email to %s failed: %v", email, err)
			return errEmailSendFailed
		}
		return nil
	})

	if err != nil {
		// a failed send must not burn the user's cooldown window
		utils.EmailCooldownClear(email)
		if err == errEmailSendFailed {
			utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to send verification email")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "error sending verification email")
		return
	}

	utils.Success(ctx, gin.H{"message": "verification email sent successfully"})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenDuration)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the current authenticated user's account record.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, "id = ?", userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, "user not found")
		return
	}

	utils.Success(ctx, user)
}

// linkProfile attaches the fresh account to a pre-created tenant or owner
// profile with the same email. Owners without one get a profile created on the
// spot; tenants appear once their landlord adds them to a property.
func linkProfile(tx *gorm.DB, user *models.User, displayName, phone string) error {
	email := ""
	if user.Email != nil {
		email = *user.Email
	}

	switch user.UserType {
	case models.UserTypeTenant:
		if email == "" {
			return nil
		}
		var tenant models.Tenant
		err := tx.Where("email = ? AND (user_id = '' OR user_id IS NULL)", email).First(&tenant).Error
		if err != nil {
			if notFound(err) {
				return nil
			}
			return err
		}
		return tx.Model(&tenant).Update("user_id", user.ID).Error
	case models.UserTypeOwner:
		var owner models.Owner
		err := tx.Where("email = ? AND (user_id = '' OR user_id IS NULL)", email).First(&owner).Error
		if err == nil {
			return tx.Model(&owner).Update("user_id", user.ID).Error
		}
		if !notFound(err) {
			return err
		}
		owner = models.Owner{
			UserID: user.ID,
			Email:  email,
			Name:   displayName,
			Phone:  phone,
		}
		return tx.Create(&owner).Error
	}
	return nil
}

// applyReferralCode credits the referrer when a signup carries their code.
// Tenant referrers gain the joined bonus as reward points; owner referrers
// accumulate it in the referral's bonus counter. An unknown code is ignored
// rather than failing the signup.
func applyReferralCode(tx *gorm.DB, user *models.User, code string) error {
	rules := config.Get().PointsRules()
	email := ""
	if user.Email != nil {
		email = *user.Email
	}
	now := time.Now()

	switch user.UserType {
	case models.UserTypeTenant:
		var referrer models.Tenant
		if err := tx.Where("referral_code = ?", code).First(&referrer).Error; err != nil {
			if notFound(err) {
				return nil
			}
			return err
		}

		var invite models.Referral
		err := tx.Where("tenant_id = ? AND email = ?", referrer.ID, email).First(&invite).Error
		if err != nil && !notFound(err) {
			return err
		}
		if notFound(err) {
			invite = models.Referral{TenantID: referrer.ID, Name: user.DisplayName, Email: email}
		}
		if invite.Status == models.ReferralStatusJoined {
			return nil
		}
		invite.Status = models.ReferralStatusJoined
		invite.JoinedDate = &now
		invite.PointsEarned = rules.TenantReferralJoined
		if err := tx.Save(&invite).Error; err != nil {
			return err
		}
		if err := tx.Model(&referrer).Update("reward_points", gorm.Expr("reward_points + ?", rules.TenantReferralJoined)).Error; err != nil {
			return err
		}
		// the referrer's cached profile would show the old balance
		if referrer.UserID != "" {
			utils.InvalidateByPrefix("cache:tenant:profile:" + referrer.UserID)
		}
		return tx.Create(&models.Notification{
			RecipientID:   referrer.ID,
			RecipientType: models.UserTypeTenant,
			Type:          models.NotificationGeneral,
			Title:         "Referral Joined",
			Message:       fmt.Sprintf("%s joined using your referral code. %d points awarded.", user.DisplayName, rules.TenantReferralJoined),
		}).Error
	case models.UserTypeOwner:
		var referrer models.Owner
		if err := tx.Where("referral_code = ?", code).First(&referrer).Error; err != nil {
			if notFound(err) {
				return nil
			}
			return err
		}

		var joined models.Owner
		if err := tx.Where("user_id = ?", user.ID).First(&joined).Error; err != nil {
			return err
		}

		var invite models.OwnerReferral
		err := tx.Where("owner_id = ? AND email = ?", referrer.ID, email).First(&invite).Error
		if err != nil && !notFound(err) {
			return err
		}
		if notFound(err) {
			invite = models.OwnerReferral{OwnerID: referrer.ID, Name: user.DisplayName, Email: email}
		}
		if invite.Status == models.ReferralStatusJoined {
			return nil
		}
		invite.Status = models.ReferralStatusJoined
		invite.JoinedDate = &now
		invite.ReferredOwnerID = joined.ID
		invite.BonusEarned += rules.OwnerReferralJoined
		if err := tx.Save(&invite).Error; err != nil {
			return err
		}
		return tx.Create(&models.Notification{
			RecipientID:   referrer.ID,
			RecipientType: models.UserTypeOwner,
			Type:          models.NotificationGeneral,
			Title:         "Referral Joined",
			Message:       fmt.Sprintf("%s joined using your referral code. Bonus of %d recorded.", user.DisplayName, rules.OwnerReferralJoined),
		}).Error
	}
	return nil
}
