package integration

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminFlow(t *testing.T) {
	app, db, _ := setupApp(t)

	stamp := time.Now().UnixNano()
	superEmail := fmt.Sprintf("super-%d@example.com", stamp)
	staffEmail := fmt.Sprintf("staff-%d@example.com", stamp)
	userEmail := fmt.Sprintf("enduser-%d@example.com", stamp)

	superAdmin := seedActiveUser(t, db, superEmail, "password123", "super_admin")
	staffAdmin := seedActiveUser(t, db, staffEmail, "password123", "staff_admin")
	endUser := seedActiveUser(t, db, userEmail, "password123", "user")

	var createdAdminId string
	defer func() {
		cleanupChatUser(db, superAdmin.Id)
		cleanupChatUser(db, staffAdmin.Id)
		cleanupChatUser(db, endUser.Id)
		if createdAdminId != "" {
			db.Unscoped().Where("id = ?", createdAdminId).Delete(&model.User{})
		}
	}()

	superTokens := login(t, app, superEmail, "password123")
	staffTokens := login(t, app, staffEmail, "password123")
	userTokens := login(t, app, userEmail, "password123")

	t.Run("End user cannot reach admin routes", func(t *testing.T) {
		res := getJSON(t, app, "/api/admin/users", userTokens.AccessToken)
		assert.Equal(t, 403, res.Code)
	})

	t.Run("List users finds the seeded account", func(t *testing.T) {
		res := getJSON(t, app, "/api/admin/users?search="+userEmail, staffTokens.AccessToken)
		require.True(t, res.Success)

		var page dto.PaginatedResponse[dto.ManagedUserResponse]
		require.NoError(t, json.Unmarshal(res.Data, &page))
		require.Len(t, page.Items, 1)
		assert.Equal(t, userEmail, page.Items[0].Email)
		assert.Equal(t, "active", page.Items[0].Status)
	})

	t.Run("Disable blocks login, enable restores it", func(t *testing.T) {
		res := postJSON(t, app, fmt.Sprintf("/api/admin/users/%s/disable", endUser.Id), nil, staffTokens.AccessToken)
		require.True(t, res.Success)

		denied := postJSON(t, app, "/api/auth/login", dto.LoginRequest{
			Email:    userEmail,
			Password: "password123",
		}, "")
		assert.Equal(t, 403, denied.Code)

		res = postJSON(t, app, fmt.Sprintf("/api/admin/users/%s/enable", endUser.Id), nil, staffTokens.AccessToken)
		require.True(t, res.Success)

		restored := postJSON(t, app, "/api/auth/login", dto.LoginRequest{
			Email:    userEmail,
			Password: "password123",
		}, "")
		assert.True(t, restored.Success)
	})

	t.Run("Admin accounts are not managed as end users", func(t *testing.T) {
		res := postJSON(t, app, fmt.Sprintf("/api/admin/users/%s/disable", staffAdmin.Id), nil, superTokens.AccessToken)
		assert.Equal(t, 404, res.Code)
	})

	t.Run("Two step deletion", func(t *testing.T) {
		res := postJSON(t, app, fmt.Sprintf("/api/admin/users/%s/delete/initiate", endUser.Id), nil, staffTokens.AccessToken)
		require.True(t, res.Success)

		var initiate dto.DeleteUserInitiateResponse
		require.NoError(t, json.Unmarshal(res.Data, &initiate))
		require.NotEmpty(t, initiate.ConfirmationToken)

		// Cancel first, then the token is dead
		cancel := postJSON(t, app, "/api/admin/users/delete/cancel", dto.DeleteUserConfirmRequest{
			ConfirmationToken: initiate.ConfirmationToken,
		}, staffTokens.AccessToken)
		require.True(t, cancel.Success)

		stale := postJSON(t, app, "/api/admin/users/delete/confirm", dto.DeleteUserConfirmRequest{
			ConfirmationToken: initiate.ConfirmationToken,
		}, staffTokens.AccessToken)
		assert.Equal(t, 400, stale.Code)

		// Initiate again and follow through
		res = postJSON(t, app, fmt.Sprintf("/api/admin/users/%s/delete/initiate", endUser.Id), nil, staffTokens.AccessToken)
		require.True(t, res.Success)
		require.NoError(t, json.Unmarshal(res.Data, &initiate))

		confirm := postJSON(t, app, "/api/admin/users/delete/confirm", dto.DeleteUserConfirmRequest{
			ConfirmationToken: initiate.ConfirmationToken,
		}, staffTokens.AccessToken)
		require.True(t, confirm.Success)

		var count int64
		db.Unscoped().Model(&model.User{}).Where("id = ?", endUser.Id).Count(&count)
		assert.Zero(t, count, "row is gone for good, not soft deleted")
	})

	t.Run("Staff cannot manage administrators", func(t *testing.T) {
		res := getJSON(t, app, "/api/admin/administrators", staffTokens.AccessToken)
		assert.Equal(t, 403, res.Code)
	})

	t.Run("Super admin creates a staff admin", func(t *testing.T) {
		newEmail := fmt.Sprintf("new-staff-%d@example.com", stamp)
		res := postJSON(t, app, "/api/admin/administrators", dto.CreateAdminRequest{
			Email:    newEmail,
			FullName: "New Staff",
			Password: "staffpass123",
		}, superTokens.AccessToken)
		require.True(t, res.Success)

		var admin dto.AdminResponse
		require.NoError(t, json.Unmarshal(res.Data, &admin))
		createdAdminId = admin.Id.String()
		assert.Equal(t, "staff_admin", admin.Role)
		assert.Equal(t, "active", admin.Status)

		// The fresh admin can sign in right away, no OTP step
		fresh := login(t, app, newEmail, "staffpass123")
		assert.NotEmpty(t, fresh.AccessToken)

		list := getJSON(t, app, "/api/admin/administrators?search="+newEmail, superTokens.AccessToken)
		require.True(t, list.Success)
		var page dto.PaginatedResponse[dto.AdminResponse]
		require.NoError(t, json.Unmarshal(list.Data, &page))
		assert.Len(t, page.Items, 1)
	})

	t.Run("Super admin removes the staff admin", func(t *testing.T) {
		require.NotEmpty(t, createdAdminId)

		res := deleteJSON(t, app, "/api/admin/administrators/"+createdAdminId, superTokens.AccessToken)
		require.True(t, res.Success)

		var count int64
		db.Unscoped().Model(&model.User{}).Where("id = ?", createdAdminId).Count(&count)
		assert.Zero(t, count)
		createdAdminId = ""

		// Super admins are not removable through this route
		res = deleteJSON(t, app, "/api/admin/administrators/"+superAdmin.Id.String(), superTokens.AccessToken)
		assert.Equal(t, 404, res.Code)
	})

	t.Run("Dashboard endpoints respond", func(t *testing.T) {
		stats := getJSON(t, app, "/api/admin/dashboard/chat-users", staffTokens.AccessToken)
		require.True(t, stats.Success)
		var chatUsers dto.ChatUsersStats
		require.NoError(t, json.Unmarshal(stats.Data, &chatUsers))

		monthly := getJSON(t, app, fmt.Sprintf("/api/admin/dashboard/growth/monthly?year=%d", time.Now().Year()), staffTokens.AccessToken)
		require.True(t, monthly.Success)
		var growth dto.MonthlyGrowthResponse
		require.NoError(t, json.Unmarshal(monthly.Data, &growth))
		assert.Len(t, growth.Months, 12)

		yearly := getJSON(t, app, "/api/admin/dashboard/growth/yearly", staffTokens.AccessToken)
		require.True(t, yearly.Success)
	})

	t.Run("Logs endpoint responds", func(t *testing.T) {
		res := getJSON(t, app, "/api/admin/logs?level=error&limit=10", staffTokens.AccessToken)
		assert.True(t, res.Success)
	})
}
