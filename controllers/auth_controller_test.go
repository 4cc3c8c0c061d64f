package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentreward/rentreward/models"
)

func TestSignupPhoneOnlyAutoVerifies(t *testing.T) {
	db, r := setupServer(t)

	w, envelope := doRequest(t, r, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"phone_number": "+971501234567",
		"password":     "strongpass1",
		"display_name": "Ravi Kumar",
		"user_type":    "owner",
	})
	assertStatus(t, w, http.StatusCreated)

	data := dataMap(t, envelope)
	assert.Equal(t, true, data["is_verified"], "phone-only accounts have no email to verify")

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", data["user_id"]).Error)
	assert.True(t, user.IsVerified)
	assert.Nil(t, user.VerificationToken)

	// owner signup creates a linked profile on the spot
	var owner models.Owner
	require.NoError(t, db.First(&owner, "user_id = ?", user.ID).Error)
	assert.Equal(t, "Ravi Kumar", owner.Name)
}

func TestSignupDuplicatePhoneRejected(t *testing.T) {
	db, r := setupServer(t)

	payload := map[string]interface{}{
		"phone_number": "+971509999999",
		"password":     "strongpass1",
		"display_name": "First Owner",
		"user_type":    "owner",
	}
	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/auth/signup", "", payload)
	assertStatus(t, w, http.StatusCreated)

	payload["display_name"] = "Second Owner"
	w, envelope := doRequest(t, r, http.MethodPost, "/api/v1/auth/signup", "", payload)
	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, 40901, envelope.Code)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "duplicate signup must not create a second account")
}

func TestSignupValidation(t *testing.T) {
	_, r := setupServer(t)

	cases := []struct {
		name    string
		payload map[string]interface{}
		code    int
	}{
		{"short password", map[string]interface{}{
			"phone_number": "+971501111111", "password": "short", "display_name": "X", "user_type": "tenant",
		}, 40002},
		{"no contact", map[string]interface{}{
			"password": "strongpass1", "display_name": "X", "user_type": "tenant",
		}, 40003},
		{"bad email", map[string]interface{}{
			"email": "not-an-email", "password": "strongpass1", "display_name": "X", "user_type": "tenant",
		}, 40004},
		{"bad user type", map[string]interface{}{
			"phone_number": "+971501111111", "password": "strongpass1", "display_name": "X", "user_type": "admin",
		}, 40005},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, envelope := doRequest(t, r, http.MethodPost, "/api/v1/auth/signup", "", tc.payload)
			assertStatus(t, w, http.StatusBadRequest)
			assert.Equal(t, tc.code, envelope.Code)
		})
	}
}

func TestLoginByPhone(t *testing.T) {
	_, r := setupServer(t)

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"phone_number": "+971502222222",
		"password":     "strongpass1",
		"display_name": "Phone User",
		"user_type":    "tenant",
	})
	assertStatus(t, w, http.StatusCreated)

	w, envelope := doRequest(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"identifier": "+971502222222",
		"password":   "strongpass1",
	})
	assertStatus(t, w, http.StatusOK)

	data := dataMap(t, envelope)
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "tenant", data["user_type"])
	assert.Equal(t, "Phone User", data["display_name"])
}

func TestLoginWrongPassword(t *testing.T) {
	_, r := setupServer(t)

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"phone_number": "+971503333333",
		"password":     "strongpass1",
		"display_name": "Phone User",
		"user_type":    "tenant",
	})
	assertStatus(t, w, http.StatusCreated)

	w, envelope := doRequest(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"identifier": "+971503333333",
		"password":   "wrongpass99",
	})
	assertStatus(t, w, http.StatusUnauthorized)
	assert.Equal(t, 40106, envelope.Code)
}

func TestVerifyEmailToken(t *testing.T) {
	db, r := setupServer(t)

	email := "verify-me@example.com"
	user := models.User{
		Email:        &email,
		PasswordHash: "irrelevant",
		DisplayName:  "Pending User",
		UserType:     models.UserTypeTenant,
	}
	token := user.GenerateVerificationToken()
	require.NoError(t, db.Create(&user).Error)

	w, envelope := doRequest(t, r, http.MethodGet, "/api/v1/auth/verify/"+token, "", nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, user.ID, dataMap(t, envelope)["user_id"])

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.True(t, fresh.IsVerified)
	assert.Nil(t, fresh.VerificationToken, "token is single use")

	// a second attempt with the consumed token is rejected
	w, envelope = doRequest(t, r, http.MethodGet, "/api/v1/auth/verify/"+token, "", nil)
	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, 40021, envelope.Code)
}

func TestVerifyExpiredTokenRejected(t *testing.T) {
	db, r := setupServer(t)

	email := "expired@example.com"
	user := models.User{
		Email:        &email,
		PasswordHash: "irrelevant",
		DisplayName:  "Expired User",
		UserType:     models.UserTypeTenant,
	}
	token := user.GenerateVerificationToken()
	expired := time.Now().Add(-time.Hour)
	user.VerificationTokenExpires = &expired
	require.NoError(t, db.Create(&user).Error)

	w, envelope := doRequest(t, r, http.MethodGet, "/api/v1/auth/verify/"+token, "", nil)
	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, 40021, envelope.Code)

	var fresh models.User
	require.NoError(t, db.First(&fresh, "id = ?", user.ID).Error)
	assert.False(t, fresh.IsVerified)
}

func TestResendVerificationUnknownEmail(t *testing.T) {
	_, r := setupServer(t)

	w, envelope := doRequest(t, r, http.MethodPost, "/api/v1/auth/resend-verification", "", map[string]interface{}{
		"email": "nobody@example.com",
	})
	assertStatus(t, w, http.StatusNotFound)
	assert.Equal(t, 40410, envelope.Code)
}

func TestResendVerificationAlreadyVerified(t *testing.T) {
	db, r := setupServer(t)

	email := "done@example.com"
	user := models.User{
		Email:        &email,
		PasswordHash: "irrelevant",
		DisplayName:  "Done User",
		UserType:     models.UserTypeTenant,
		IsVerified:   true,
	}
	require.NoError(t, db.Create(&user).Error)

	w, envelope := doRequest(t, r, http.MethodPost, "/api/v1/auth/resend-verification", "", map[string]interface{}{
		"email": email,
	})
	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, 40031, envelope.Code)
}

func TestResendVerificationFailedSendReleasesCooldown(t *testing.T) {
	db, r := setupServer(t)

	email := "pending@example.com"
	user := models.User{
		Email:        &email,
		PasswordHash: "irrelevant",
		DisplayName:  "Pending User",
		UserType:     models.UserTypeTenant,
	}
	require.NoError(t, db.Create(&user).Error)

	// smtp is unconfigured here, so the send fails
	w, envelope := doRequest(t, r, http.MethodPost, "/api/v1/auth/resend-verification", "", map[string]interface{}{
		"email": email,
	})
	assertStatus(t, w, http.StatusInternalServerError)
	assert.Equal(t, 50040, envelope.Code)

	// the failed attempt must not lock the user out for 60s
	w2, envelope2 := doRequest(t, r, http.MethodPost, "/api/v1/auth/resend-verification", "", map[string]interface{}{
		"email": email,
	})
	assertStatus(t, w2, http.StatusInternalServerError)
	assert.Equal(t, 50040, envelope2.Code)
	assert.NotEqual(t, http.StatusTooManyRequests, w2.Code)
}

func TestMeRequiresAuth(t *testing.T) {
	_, r := setupServer(t)

	w, envelope := doRequest(t, r, http.MethodGet, "/api/v1/auth/me", "", nil)
	assertStatus(t, w, http.StatusUnauthorized)
	assert.Equal(t, 40101, envelope.Code)
}

func TestSignupWithReferralCodeCreditsReferrer(t *testing.T) {
	db, r := setupServer(t)

	owner, _ := seedOwner(t, db, "landlord@example.com")
	property := seedProperty(t, db, owner.ID, 10)
	referrer, referrerToken := seedTenant(t, db, property.ID, "referrer@example.com")
	require.NotEmpty(t, referrer.ReferralCode)

	// warm the referrer's cached profile so the credit has something to evict
	w0, _ := doRequest(t, r, http.MethodGet, "/api/v1/tenant/profile", referrerToken, nil)
	assertStatus(t, w0, http.StatusOK)

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"phone_number":  "+971504444444",
		"password":      "strongpass1",
		"display_name":  "Referred Friend",
		"user_type":     "tenant",
		"referral_code": referrer.ReferralCode,
	})
	assertStatus(t, w, http.StatusCreated)

	var fresh models.Tenant
	require.NoError(t, db.First(&fresh, "id = ?", referrer.ID).Error)
	assert.Equal(t, 500, fresh.RewardPoints, "referrer earns the joined bonus")

	var referral models.Referral
	require.NoError(t, db.First(&referral, "tenant_id = ?", referrer.ID).Error)
	assert.Equal(t, models.ReferralStatusJoined, referral.Status)
	assert.Equal(t, 500, referral.PointsEarned)

	// the cached profile must not keep serving the pre-credit balance
	w2, resp2 := doRequest(t, r, http.MethodGet, "/api/v1/tenant/profile", referrerToken, nil)
	assertStatus(t, w2, http.StatusOK)
	assert.EqualValues(t, 500, dataMap(t, resp2)["reward_points"])
}
