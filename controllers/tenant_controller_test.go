package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentreward/rentreward/models"
	"github.com/rentreward/rentreward/utils"
)

func TestTenantProfile(t *testing.T) {
	db, r := setupServer(t)

	owner, _ := seedOwner(t, db, "landlord@example.com")
	property := seedProperty(t, db, owner.ID, 5)
	tenant, token := seedTenant(t, db, property.ID, "tenant@example.com")

	w, envelope := doRequest(t, r, http.MethodGet, "/api/v1/tenant/profile", token, nil)
	assertStatus(t, w, http.StatusOK)

	data := dataMap(t, envelope)
	assert.Equal(t, tenant.ID, data["id"])
	assert.Equal(t, tenant.ReferralCode, data["referral_code"])
	assert.Equal(t, property.ID, data["property_id"])
}

func TestTenantProfileMissing(t *testing.T) {
	db, r := setupServer(t)

	// a tenant login whose landlord has not created a profile yet
	email := "floating@example.com"
	user := models.User{
		Email:        &email,
		PasswordHash: "irrelevant",
		DisplayName:  "Floating Tenant",
		UserType:     models.UserTypeTenant,
		IsVerified:   true,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID, models.UserTypeTenant, true, time.Hour)
	require.NoError(t, err)

	w, envelope := doRequest(t, r, http.MethodGet, "/api/v1/tenant/profile", token, nil)
	assertStatus(t, w, http.StatusNotFound)
	assert.Equal(t, 40411, envelope.Code)
}

func TestTenantReferralInvites(t *testing.T) {
	db, r := setupServer(t)

	owner, _ := seedOwner(t, db, "landlord@example.com")
	property := seedProperty(t, db, owner.ID, 5)
	tenant, token := seedTenant(t, db, property.ID, "tenant@example.com")

	w, envelope := doRequest(t, r, http.MethodPost, "/api/v1/tenant/referrals", token, map[string]interface{}{
		"name":  "Invited Friend",
		"email": "friend@example.com",
	})
	assertStatus(t, w, http.StatusCreated)

	data := dataMap(t, envelope)
	assert.Equal(t, models.ReferralStatusInvited, data["status"])

	// inviting the same address again is a conflict
	w, envelope = doRequest(t, r, http.MethodPost, "/api/v1/tenant/referrals", token, map[string]interface{}{
		"name":  "Invited Friend",
		"email": "friend@example.com",
	})
	assertStatus(t, w, http.StatusConflict)
	assert.Equal(t, 40910, envelope.Code)

	w, envelope = doRequest(t, r, http.MethodGet, "/api/v1/tenant/referrals", token, nil)
	assertStatus(t, w, http.StatusOK)

	data = dataMap(t, envelope)
	assert.Equal(t, tenant.ReferralCode, data["referral_code"])
	referrals, ok := data["referrals"].([]interface{})
	require.True(t, ok)
	assert.Len(t, referrals, 1)
}

func TestTenantRoutesRejectOwners(t *testing.T) {
	db, r := setupServer(t)

	_, ownerToken := seedOwner(t, db, "landlord@example.com")

	w, envelope := doRequest(t, r, http.MethodGet, "/api/v1/tenant/profile", ownerToken, nil)
	assertStatus(t, w, http.StatusForbidden)
	assert.Equal(t, 40301, envelope.Code)
}
