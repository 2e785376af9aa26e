package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nepwork/internal/models"
)

func TestPublicStats(t *testing.T) {
	app, db, _ := newTestApp(t)
	provider := createUser(t, db, "prov@example.com", models.RoleProvider)
	customer := createUser(t, db, "cust@example.com", models.RoleCustomer)
	createUser(t, db, testAdminEmail, models.RoleAdmin)
	category := createCategory(t, db, "Cleaning", "cleaning")

	active := createService(t, db, provider, category, "Active", "active")
	hidden := createService(t, db, provider, category, "Hidden", "hidden")
	require.NoError(t, db.Model(hidden).Update("is_active", false).Error)

	createBooking(t, db, active, customer, models.BookingConfirmed)
	createBooking(t, db, active, customer, models.BookingPending)

	resp, body := doRequest(t, app, http.MethodGet, "/api/accounts/stats", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["total_users"])
	assert.Equal(t, float64(1), data["total_customers"])
	assert.Equal(t, float64(1), data["total_providers"])
	assert.Equal(t, float64(1), data["active_services"], "inactive listings are not counted")
	assert.Equal(t, float64(2), data["total_bookings"])
	assert.Equal(t, float64(1), data["confirmed_bookings"])
}

func TestProviderStats(t *testing.T) {
	app, db, cfg := newTestApp(t)
	provider := createUser(t, db, "prov@example.com", models.RoleProvider)
	other := createUser(t, db, "other@example.com", models.RoleProvider)
	customer := createUser(t, db, "cust@example.com", models.RoleCustomer)
	category := createCategory(t, db, "Cleaning", "cleaning")

	service := createService(t, db, provider, category, "Mine", "mine")
	noise := createService(t, db, other, category, "Noise", "noise")

	createBooking(t, db, service, customer, models.BookingPending)
	for _, rating := range []int{4, 5} {
		r := rating
		booking := models.Booking{
			ServiceID:  service.ID,
			CustomerID: customer.ID,
			Status:     models.BookingCompleted,
			Rating:     &r,
		}
		require.NoError(t, db.Create(&booking).Error)
	}
	createBooking(t, db, noise, customer, models.BookingCompleted)

	resp, body := doRequest(t, app, http.MethodGet, "/api/accounts/user-stats",
		tokenFor(t, cfg, provider.Email), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["service_count"])
	assert.Equal(t, float64(3), data["total_bookings"])
	assert.Equal(t, float64(1), data["pending_bookings"])
	assert.Equal(t, float64(2), data["completed_bookings"])
	assert.Equal(t, 4.5, data["average_rating"])
}

func TestCustomerStats(t *testing.T) {
	app, db, cfg := newTestApp(t)
	provider := createUser(t, db, "prov@example.com", models.RoleProvider)
	customer := createUser(t, db, "cust@example.com", models.RoleCustomer)
	stranger := createUser(t, db, "stranger@example.com", models.RoleCustomer)
	category := createCategory(t, db, "Cleaning", "cleaning")
	service := createService(t, db, provider, category, "Deep Cleaning", "deep-cleaning")

	createBooking(t, db, service, customer, models.BookingPending)
	createBooking(t, db, service, customer, models.BookingCancelled)
	createBooking(t, db, service, stranger, models.BookingPending)

	resp, body := doRequest(t, app, http.MethodGet, "/api/accounts/user-stats",
		tokenFor(t, cfg, customer.Email), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total_bookings"])
	assert.Equal(t, float64(1), data["pending_bookings"])
	assert.Equal(t, float64(1), data["cancelled_bookings"])
	assert.Equal(t, float64(0), data["completed_bookings"])
}

func TestAdminUserStatsAreMarketplaceTotals(t *testing.T) {
	app, db, cfg := newTestApp(t)
	admin := createUser(t, db, testAdminEmail, models.RoleAdmin)
	createUser(t, db, "cust@example.com", models.RoleCustomer)

	resp, body := doRequest(t, app, http.MethodGet, "/api/accounts/user-stats",
		tokenFor(t, cfg, admin.Email), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total_users"])

	resp, _ = doRequest(t, app, http.MethodGet, "/api/accounts/user-stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
