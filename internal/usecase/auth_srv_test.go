package usecase

import (
	"context"
	"fmt"
	"testing"

	"cargo-delivery/internal/data/entity"
	"cargo-delivery/internal/data/repository"
	"cargo-delivery/internal/dto/request"
	"cargo-delivery/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	repo, users, _, _ := newTestRepository()
	tokens, err := utils.NewTokenManager(utils.JWTConfig{Secret: "test-secret", ExpiryDays: 1})
	require.NoError(t, err)
	return NewAuthService(repo, tokens, zap.NewNop()), users
}

func registerReq(email, role string) *request.RegisterRequest {
	return &request.RegisterRequest{
		Name:     "Jamie Doe",
		Email:    email,
		Phone:    "5550001234",
		Role:     role,
		Password: "secret123",
	}
}

func TestRegister(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerReq("jamie@example.com", "customer"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "jamie@example.com", resp.User.Email)
	assert.Equal(t, entity.RoleCustomer, resp.User.Role)
	assert.True(t, resp.User.IsApproved)
}

func TestRegisterDriverStartsUnapproved(t *testing.T) {
	svc, _ := newAuthService(t)

	resp, err := svc.Register(context.Background(), registerReq("driver@example.com", "driver"))
	require.NoError(t, err)
	assert.False(t, resp.User.IsApproved)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("dup@example.com", "customer"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerReq("dup@example.com", "driver"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

// racingUserRepo simulates a registration that passes the email check
// but loses the insert race on the unique index.
type racingUserRepo struct {
	*fakeUserRepo
}

func (r *racingUserRepo) FindByEmail(context.Context, string) (*entity.User, error) {
	return nil, nil
}

func (r *racingUserRepo) Create(context.Context, *entity.User) error {
	return fmt.Errorf("create user: %w", repository.ErrDuplicateKey)
}

func TestRegisterDuplicateEmailRace(t *testing.T) {
	repo, users, _, _ := newTestRepository()
	repo.User = &racingUserRepo{fakeUserRepo: users}
	tokens, err := utils.NewTokenManager(utils.JWTConfig{Secret: "test-secret", ExpiryDays: 1})
	require.NoError(t, err)
	svc := NewAuthService(repo, tokens, zap.NewNop())

	_, err = svc.Register(context.Background(), registerReq("race@example.com", "customer"))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterStoresOnlyHashedPassword(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("hash@example.com", "customer"))
	require.NoError(t, err)

	user, err := users.FindByEmail(ctx, "hash@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.True(t, utils.CheckPasswordHash("secret123", user.PasswordHash))
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerReq("login@example.com", "customer"))
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &request.LoginRequest{
		Email:    "login@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, registered.User.ID, resp.User.ID)
}

func TestLoginFailureIsUniform(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("known@example.com", "customer"))
	require.NoError(t, err)

	// Wrong password for a known account and an unknown account must
	// fail identically.
	_, wrongPassErr := svc.Login(ctx, &request.LoginRequest{
		Email:    "known@example.com",
		Password: "not-the-password",
	})
	_, unknownErr := svc.Login(ctx, &request.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever1",
	})

	assert.ErrorIs(t, wrongPassErr, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.Equal(t, wrongPassErr.Error(), unknownErr.Error())
}

func TestMe(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerReq("me@example.com", "customer"))
	require.NoError(t, err)

	resp, err := svc.Me(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", resp.Email)

	_, err = svc.Me(ctx, "00000000-0000-0000-0000-000000000001")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Me(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
