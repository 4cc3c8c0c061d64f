package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentreward/rentreward/models"
)

func TestSubmitRentCreatesRecordAndNotifiesOwner(t *testing.T) {
	db, r := setupServer(t)

	owner, _ := seedOwner(t, db, "landlord@example.com")
	property := seedProperty(t, db, owner.ID, 10)
	tenant, token := seedTenant(t, db, property.ID, "tenant@example.com")
	other, _ := seedTenant(t, db, property.ID, "other@example.com")

	dueDate := time.Now().AddDate(0, 0, 5).Format("2006-01-02")
	w, envelope := doRequest(t, r, http.MethodPost, "/api/v1/tenant/rent", token, map[string]interface{}{
		"amount":        5000,
		"due_date":      dueDate,
		"cheque_number": "CHQ-1001",
	})
	assertStatus(t, w, http.StatusCreated)

	data := dataMap(t, envelope)
	assert.Equal(t, "submitted", data["status"])
	assert.Equal(t, float64(55), data["points_earned"], "5 days early earns base 50 plus bonus 5")

	var records []models.RentRecord
	require.NoError(t, db.Where("tenant_id = ?", tenant.ID).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, models.RentStatusSubmitted, records[0].Status)
	assert.Equal(t, "CHQ-1001", records[0].ChequeNumber)

	// the claim is provisional, no points move yet
	var fresh models.Tenant
	require.NoError(t, db.First(&fresh, "id = ?", tenant.ID).Error)
	assert.Equal(t, 0, fresh.RewardPoints)

	// neighbours are untouched
	var otherRecords int64
	require.NoError(t, db.Model(&models.RentRecord{}).Where("tenant_id = ?", other.ID).Count(&otherRecords).Error)
	assert.Zero(t, otherRecords)

	var notification models.Notification
	require.NoError(t, db.Where("recipient_id = ? AND type = ?", owner.ID, models.NotificationRentPayment).First(&notification).Error)
	assert.Equal(t, records[0].ID, notification.RentID)
	assert.Equal(t, float64(5000), notification.Amount)
}

func TestSubmitRentPhotoStandsInForChequeNumber(t *testing.T) {
	db, r := setupServer(t)

	owner, _ := seedOwner(t, db, "landlord@example.com")
	property := seedProperty(t, db, owner.ID, 10)
	tenant, token := seedTenant(t, db, property.ID, "tenant@example.com")

	w, _ := doRequest(t, r, http.MethodPost, "/api/v1/tenant/rent", token, map[string]interface{}{
		"amount":       3000,
		"cheque_photo": "data:image/png;base64,iVBORw0KGgo=",
	})
	assertStatus(t, w, http.StatusCreated)

	var record models.RentRecord
	require.NoError(t, db.First(&record, "tenant_id = ?", tenant.ID).Error)
	assert.Equal(t, "Photo Attached", record.ChequeNumber)
	assert.NotEmpty(t, record.ChequePhoto)
}

func TestSubmitRentValidation(t *testing.T) {
	db, r := setupServer(t)

	owner, _ := seedOwner(t, db, "landlord@example.com")
	property := seedProperty(t, db, owner.ID, 10)
	_, token := seedTenant(t, db, property.ID, "tenant@example.com")

	cases := []struct {
		name    string
		payload map[string]interface{}
		code    int
	}{
		{"zero amount", map[string]interface{}{"amount": 0, "cheque_number": "CHQ-1"}, 40011},
		{"no cheque proof", map[string]interface{}{"amount": 1000}, 40012},
		{"non-image photo", map[string]interface{}{"amount": 1000, "cheque_photo": "data:text/html,<b>x</b>"}, 40013},
		{"bad due date", map[string]interface{}{"amount": 1000, "cheque_number": "CHQ-1", "due_date": "03/10/2026"}, 40014},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, envelope := doRequest(t, r, http.MethodPost, "/api/v1/tenant/rent", token, tc.payload)
			assertStatus(t, w, http.StatusBadRequest)
			assert.Equal(t, tc.code, envelope.Code)
		})
	}
}

func TestAcknowledgeRentAwardsPointsOnce(t *testing.T) {
	db, r := setupServer(t)

	owner, ownerToken := seedOwner(t, db, "landlord@example.com")
	property := seedProperty(t, db, owner.ID, 10)
	tenant, tenantToken := seedTenant(t, db, property.ID, "tenant@example.com")

	dueDate := time.Now().AddDate(0, 0, 5).Format("2006-01-02")
	w, envelope := doRequest(t, r, http.MethodPost, "/api/v1/tenant/rent", tenantToken, map[string]interface{}{
		"amount":        5000,
		"due_date":      dueDate,
		"cheque_number": "CHQ-2001",
	})
	assertStatus(t, w, http.StatusCreated)
	rentID := dataMap(t, envelope)["id"].(string)

	ackPath := fmt.Sprintf("/api/v1/owner/tenants/%s/rent/%s/acknowledge", tenant.ID, rentID)
	w, envelope = doRequest(t, r, http.MethodPost, ackPath, ownerToken, nil)
	assertStatus(t, w, http.StatusOK)

	data := dataMap(t, envelope)
	assert.Equal(t, "received", data["status"])
	assert.Equal(t, float64(55), data["points_awarded"])

	var fresh models.Tenant
	require.NoError(t, db.First(&fresh, "id = ?", tenant.ID).Error)
	assert.Equal(t, 55, fresh.RewardPoints)

	var record models.RentRecord
	require.NoError(t, db.First(&record, "id = ?", rentID).Error)
	assert.Equal(t, models.RentStatusReceived, record.Status)
	assert.Equal(t, 55, record.PointsEarned)

	// acknowledging again must not double the award
	w, envelope = doRequest(t, r, http.MethodPost, ackPath, ownerToken, nil)
	assertStatus(t, w, http.StatusConflict)
	assert.Equal(t, 40920, envelope.Code)

	require.NoError(t, db.First(&fresh, "id = ?", tenant.ID).Error)
	assert.Equal(t, 55, fresh.RewardPoints, "balance unchanged after repeat acknowledgement")
}

func TestAcknowledgeRentSkipsAlreadyReceivedRecord(t *testing.T) {
	db, r := setupServer(t)

	owner, ownerToken := seedOwner(t, db, "landlord@example.com")
	property := seedProperty(t, db, owner.ID, 10)
	tenant, _ := seedTenant(t, db, property.ID, "tenant@example.com")

	// a record that was already settled, e.g. by a racing acknowledgement
	// that committed first
	now := time.Now()
	record := models.RentRecord{
		TenantID:       tenant.ID,
		Month:          "March 2026",
		Amount:         5000,
		DueDate:        now.AddDate(0, 0, 5),
		SubmissionDate: &now,
		Status:         models.RentStatusReceived,
		ChequeNumber:   "CHQ-4001",
		PointsEarned:   55,
	}
	require.NoError(t, db.Create(&record).Error)

	ackPath := fmt.Sprintf("/api/v1/owner/tenants/%s/rent/%s/acknowledge", tenant.ID, record.ID)
	w, envelope := doRequest(t, r, http.MethodPost, ackPath, ownerToken, nil)
	assertStatus(t, w, http.StatusConflict)
	assert.Equal(t, 40920, envelope.Code)

	var fresh models.Tenant
	require.NoError(t, db.First(&fresh, "id = ?", tenant.ID).Error)
	assert.Zero(t, fresh.RewardPoints, "a settled record must never be credited again")
}

func TestAcknowledgeRentRejectsForeignTenant(t *testing.T) {
	db, r := setupServer(t)

	owner, _ := seedOwner(t, db, "landlord@example.com")
	property := seedProperty(t, db, owner.ID, 10)
	tenant, tenantToken := seedTenant(t, db, property.ID, "tenant@example.com")

	w, envelope := doRequest(t, r, http.MethodPost, "/api/v1/tenant/rent", tenantToken, map[string]interface{}{
		"amount":        2000,
		"cheque_number": "CHQ-3001",
	})
	assertStatus(t, w, http.StatusCreated)
	rentID := dataMap(t, envelope)["id"].(string)

	intruder, intruderToken := seedOwner(t, db, "other-landlord@example.com")
	_ = intruder

	ackPath := fmt.Sprintf("/api/v1/owner/tenants/%s/rent/%s/acknowledge", tenant.ID, rentID)
	w, envelope = doRequest(t, r, http.MethodPost, ackPath, intruderToken, nil)
	assertStatus(t, w, http.StatusForbidden)
	assert.Equal(t, 40310, envelope.Code)

	var record models.RentRecord
	require.NoError(t, db.First(&record, "id = ?", rentID).Error)
	assert.Equal(t, models.RentStatusSubmitted, record.Status, "record untouched by foreign owner")
}

func TestAcknowledgeRentUnknownRecord(t *testing.T) {
	db, r := setupServer(t)

	owner, ownerToken := seedOwner(t, db, "landlord@example.com")
	property := seedProperty(t, db, owner.ID, 10)
	tenant, _ := seedTenant(t, db, property.ID, "tenant@example.com")

	ackPath := fmt.Sprintf("/api/v1/owner/tenants/%s/rent/%s/acknowledge", tenant.ID, "missing-rent-id")
	w, envelope := doRequest(t, r, http.MethodPost, ackPath, ownerToken, nil)
	assertStatus(t, w, http.StatusNotFound)
	assert.Equal(t, 40420, envelope.Code)
}

func TestRentHistoryOrdering(t *testing.T) {
	db, r := setupServer(t)

	owner, _ := seedOwner(t, db, "landlord@example.com")
	property := seedProperty(t, db, owner.ID, 10)
	tenant, token := seedTenant(t, db, property.ID, "tenant@example.com")

	months := []string{"January 2026", "February 2026", "March 2026"}
	base := time.Now().Add(-72 * time.Hour)
	for i, month := range months {
		created := base.Add(time.Duration(i) * time.Hour)
		record := models.RentRecord{
			TenantID:     tenant.ID,
			Month:        month,
			Amount:       4000,
			DueDate:      created,
			Status:       models.RentStatusReceived,
			ChequeNumber: fmt.Sprintf("CHQ-%d", i),
			CreatedAt:    created,
		}
		require.NoError(t, db.Create(&record).Error)
	}

	w, envelope := doRequest(t, r, http.MethodGet, "/api/v1/tenant/rent", token, nil)
	assertStatus(t, w, http.StatusOK)

	data := dataMap(t, envelope)
	history, ok := data["rent_history"].([]interface{})
	require.True(t, ok)
	require.Len(t, history, 3)
	for i, item := range history {
		entry := item.(map[string]interface{})
		assert.Equal(t, months[i], entry["month"])
	}
}
