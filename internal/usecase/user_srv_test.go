package usecase

import (
	"context"
	"testing"

	"cargo-delivery/internal/data/entity"
	"cargo-delivery/internal/dto/request"
	"cargo-delivery/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserService(t *testing.T) (UserService, *fakeUserRepo, *entity.User) {
	t.Helper()
	_, users, _, _ := newTestRepository()
	user := seedUser(t, users, entity.RoleCustomer, true)

	hash, err := utils.HashPassword("oldpass123")
	require.NoError(t, err)
	user.PasswordHash = hash
	require.NoError(t, users.Update(context.Background(), user))

	return NewUserService(users, zap.NewNop()), users, user
}

func TestUpdateProfile(t *testing.T) {
	svc, _, user := newUserService(t)
	ctx := context.Background()

	resp, err := svc.UpdateProfile(ctx, user.ID.String(), &request.UpdateProfileRequest{
		Name:  "New Name",
		Phone: "5559998888",
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", resp.Name)
	assert.Equal(t, "5559998888", resp.Phone)
	// Email stays as registered.
	assert.Equal(t, user.Email, resp.Email)
}

func TestChangePassword(t *testing.T) {
	svc, users, user := newUserService(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, user.ID.String(), &request.ChangePasswordRequest{
		OldPassword: "wrong-pass",
		NewPassword: "newpass123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, user.ID.String(), &request.ChangePasswordRequest{
		OldPassword: "oldpass123",
		NewPassword: "newpass123",
	})
	require.NoError(t, err)

	updated, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("newpass123", updated.PasswordHash))
}

func TestProfileNotFound(t *testing.T) {
	svc, _, _ := newUserService(t)

	_, err := svc.Profile(context.Background(), "11111111-1111-1111-1111-111111111111")
	assert.ErrorIs(t, err, ErrNotFound)
}
