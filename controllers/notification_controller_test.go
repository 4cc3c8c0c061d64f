package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentreward/rentreward/models"
)

func TestNotificationFeed(t *testing.T) {
	db, r := setupServer(t)

	owner, token := seedOwner(t, db, "landlord@example.com")
	for _, title := range []string{"First", "Second", "Third"} {
		n := models.Notification{
			RecipientID:   owner.ID,
			RecipientType: models.UserTypeOwner,
			Type:          models.NotificationGeneral,
			Title:         title,
			Message:       title + " message",
		}
		require.NoError(t, db.Create(&n).Error)
	}

	w, envelope := doRequest(t, r, http.MethodGet, "/api/v1/notifications", token, nil)
	assertStatus(t, w, http.StatusOK)

	data := dataMap(t, envelope)
	assert.Equal(t, float64(3), data["unread_count"])
	feed, ok := data["notifications"].([]interface{})
	require.True(t, ok)
	require.Len(t, feed, 3)
}

func TestNotificationScopedToRecipient(t *testing.T) {
	db, r := setupServer(t)

	owner, _ := seedOwner(t, db, "landlord@example.com")
	property := seedProperty(t, db, owner.ID, 5)
	_, tenantToken := seedTenant(t, db, property.ID, "tenant@example.com")

	n := models.Notification{
		RecipientID:   owner.ID,
		RecipientType: models.UserTypeOwner,
		Type:          models.NotificationGeneral,
		Title:         "Owner Only",
		Message:       "not for tenants",
	}
	require.NoError(t, db.Create(&n).Error)

	w, envelope := doRequest(t, r, http.MethodGet, "/api/v1/notifications", tenantToken, nil)
	assertStatus(t, w, http.StatusOK)

	data := dataMap(t, envelope)
	assert.Equal(t, float64(0), data["unread_count"])

	// the tenant cannot flip someone else's notification either
	w, _ = doRequest(t, r, http.MethodPatch, "/api/v1/notifications/"+n.ID+"/read", tenantToken, nil)
	assertStatus(t, w, http.StatusNotFound)
}

func TestMarkReadAndMarkAll(t *testing.T) {
	db, r := setupServer(t)

	owner, token := seedOwner(t, db, "landlord@example.com")
	var ids []string
	for i := 0; i < 3; i++ {
		n := models.Notification{
			RecipientID:   owner.ID,
			RecipientType: models.UserTypeOwner,
			Type:          models.NotificationGeneral,
			Title:         "Unread",
			Message:       "msg",
		}
		require.NoError(t, db.Create(&n).Error)
		ids = append(ids, n.ID)
	}

	w, envelope := doRequest(t, r, http.MethodPatch, "/api/v1/notifications/"+ids[0]+"/read", token, nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, true, dataMap(t, envelope)["is_read"])

	var unread int64
	require.NoError(t, db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", owner.ID, false).Count(&unread).Error)
	assert.Equal(t, int64(2), unread)

	w, envelope = doRequest(t, r, http.MethodPatch, "/api/v1/notifications", token, nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, float64(2), dataMap(t, envelope)["marked_read"])

	require.NoError(t, db.Model(&models.Notification{}).Where("recipient_id = ? AND is_read = ?", owner.ID, false).Count(&unread).Error)
	assert.Zero(t, unread)
}

func TestDeleteNotification(t *testing.T) {
	db, r := setupServer(t)

	owner, token := seedOwner(t, db, "landlord@example.com")
	n := models.Notification{
		RecipientID:   owner.ID,
		RecipientType: models.UserTypeOwner,
		Type:          models.NotificationGeneral,
		Title:         "Disposable",
		Message:       "msg",
	}
	require.NoError(t, db.Create(&n).Error)

	w, _ := doRequest(t, r, http.MethodDelete, "/api/v1/notifications/"+n.ID, token, nil)
	assertStatus(t, w, http.StatusOK)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("id = ?", n.ID).Count(&count).Error)
	assert.Zero(t, count)

	w, envelope := doRequest(t, r, http.MethodDelete, "/api/v1/notifications/"+n.ID, token, nil)
	assertStatus(t, w, http.StatusNotFound)
	assert.Equal(t, 40430, envelope.Code)
}
