package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nepwork/internal/models"
)

func TestClientRoutesAreCustomerOnly(t *testing.T) {
	app, db, cfg := newTestApp(t)
	provider := createUser(t, db, "prov@example.com", models.RoleProvider)

	for _, path := range []string{
		"/api/clients/profile",
		"/api/clients/preferences",
		"/api/clients/favorites",
	} {
		resp, _ := doRequest(t, app, http.MethodGet, path, tokenFor(t, cfg, provider.Email), nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}
}

func TestClientProfileLifecycle(t *testing.T) {
	app, db, cfg := newTestApp(t)
	customer := createUser(t, db, "cust@example.com", models.RoleCustomer)
	token := tokenFor(t, cfg, customer.Email)

	// First read creates the profile with defaults.
	resp, body := doRequest(t, app, http.MethodGet, "/api/clients/profile", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, body["data"])

	resp, body = doRequest(t, app, http.MethodPatch, "/api/clients/profile", token,
		map[string]interface{}{
			"preferred_language": "ne",
			"sms_notifications":  true,
			"preferred_currency": "npr",
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var profile models.ClientProfile
	require.NoError(t, db.First(&profile, "user_id = ?", customer.ID).Error)
	assert.Equal(t, "ne", profile.PreferredLanguage)
	assert.True(t, profile.SMSNotifications)
	assert.Equal(t, "NPR", profile.PreferredCurrency, "currency is stored uppercased")

	var count int64
	require.NoError(t, db.Model(&models.ClientProfile{}).
		Where("user_id = ?", customer.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "updates reuse the created profile")
}

func TestClientPreferencesLifecycle(t *testing.T) {
	app, db, cfg := newTestApp(t)
	customer := createUser(t, db, "cust@example.com", models.RoleCustomer)
	token := tokenFor(t, cfg, customer.Email)
	cleaning := createCategory(t, db, "Cleaning", "cleaning")
	tutoring := createCategory(t, db, "Tutoring", "tutoring")

	resp, _ := doRequest(t, app, http.MethodGet, "/api/clients/preferences", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodPatch, "/api/clients/preferences", token,
		map[string]interface{}{
			"default_search_radius":  25,
			"max_price_filter":       500.0,
			"preferred_category_ids": []string{cleaning.ID.String(), tutoring.ID.String()},
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	prefs := body["data"].(map[string]interface{})
	assert.Len(t, prefs["preferred_categories"], 2)

	// Replacing with a single category drops the other.
	resp, body = doRequest(t, app, http.MethodPatch, "/api/clients/preferences", token,
		map[string]interface{}{
			"preferred_category_ids": []string{tutoring.ID.String()},
		})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	prefs = body["data"].(map[string]interface{})
	require.Len(t, prefs["preferred_categories"], 1)

	resp, _ = doRequest(t, app, http.MethodPatch, "/api/clients/preferences", token,
		map[string]interface{}{
			"preferred_category_ids": []string{"not-a-uuid"},
		})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var stored models.ClientPreferences
	require.NoError(t, db.First(&stored, "client_id = ?", customer.ID).Error)
	assert.Equal(t, 25, stored.DefaultSearchRadius)
	require.NotNil(t, stored.MaxPriceFilter)
	assert.Equal(t, 500.0, *stored.MaxPriceFilter)
}

func TestFavoritesLifecycle(t *testing.T) {
	app, db, cfg := newTestApp(t)
	provider := createUser(t, db, "prov@example.com", models.RoleProvider)
	customer := createUser(t, db, "cust@example.com", models.RoleCustomer)
	token := tokenFor(t, cfg, customer.Email)
	category := createCategory(t, db, "Cleaning", "cleaning")
	service := createService(t, db, provider, category, "Deep Cleaning", "deep-cleaning")

	resp, _ := doRequest(t, app, http.MethodPost, "/api/clients/favorites", token,
		map[string]interface{}{"service_id": "00000000-0000-0000-0000-000000000000"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodPost, "/api/clients/favorites", token,
		map[string]interface{}{"service_id": service.ID.String()})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	favorite := body["data"].(map[string]interface{})
	favoriteID := favorite["id"].(string)

	resp, body = doRequest(t, app, http.MethodPost, "/api/clients/favorites", token,
		map[string]interface{}{"service_id": service.ID.String()})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "service already in favorites", body["message"])

	resp, body = doRequest(t, app, http.MethodGet, "/api/clients/favorites", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/clients/favorites/"+favoriteID, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/clients/favorites/"+favoriteID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRemoveFavoriteScopedToOwner(t *testing.T) {
	app, db, cfg := newTestApp(t)
	provider := createUser(t, db, "prov@example.com", models.RoleProvider)
	customer := createUser(t, db, "cust@example.com", models.RoleCustomer)
	other := createUser(t, db, "other@example.com", models.RoleCustomer)
	category := createCategory(t, db, "Cleaning", "cleaning")
	service := createService(t, db, provider, category, "Deep Cleaning", "deep-cleaning")

	favorite := models.ClientFavorite{ClientID: customer.ID, ServiceID: service.ID}
	require.NoError(t, db.Create(&favorite).Error)

	resp, _ := doRequest(t, app, http.MethodDelete,
		"/api/clients/favorites/"+favorite.ID.String(),
		tokenFor(t, cfg, other.Email), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "other customers cannot see the favorite")
}
