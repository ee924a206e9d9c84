package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/uniplan/timetable-api/internal/models"
	"github.com/uniplan/timetable-api/pkg/config"
	appErrors "github.com/uniplan/timetable-api/pkg/errors"
)

type userStoreStub struct {
	users      map[string]*models.User
	lastLogins []string
}

func (s *userStoreStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *userStoreStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *userStoreStub) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	s.lastLogins = append(s.lastLogins, id)
	return nil
}

func newAuthServiceForTest(t *testing.T, active bool) (*AuthService, *userStoreStub) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	store := &userStoreStub{users: map[string]*models.User{
		"coord@uni.edu": {
			ID:           "coord-1",
			Email:        "coord@uni.edu",
			PasswordHash: string(hash),
			FullName:     "Grace Coordinator",
			Role:         models.RoleCoordinator,
			Active:       active,
		},
	}}
	svc := NewAuthService(store, config.JWTConfig{Secret: "test-secret", Expiration: time.Hour}, nil, nil)
	return svc, store
}

func TestAuthLoginIssuesToken(t *testing.T) {
	svc, store := newAuthServiceForTest(t, true)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "coord@uni.edu", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, models.RoleCoordinator, resp.User.Role)
	assert.Equal(t, []string{"coord-1"}, store.lastLogins)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "coord-1", claims.UserID)
	assert.Equal(t, models.RoleCoordinator, claims.Role)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthServiceForTest(t, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "coord@uni.edu", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthLoginUnknownUser(t *testing.T) {
	svc, _ := newAuthServiceForTest(t, true)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@uni.edu", Password: "whatever"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	svc, _ := newAuthServiceForTest(t, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "coord@uni.edu", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, appErrors.ErrInactiveAccount)
}

func TestAuthValidateTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthServiceForTest(t, true)

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
