package services

import (
	"testing"
	"time"

	"github.com/h4ks-com/farmhand/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateAndLogin(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.users.CreateUser("x", "", "correct-horse")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.users.CreateUser("manager", "", "short")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.users.CreateUser("owner", "", "correct-horse")
	assert.ErrorIs(t, err, ErrValidation)

	user, err := env.users.CreateUser("manager", "m@example.com", "battery-staple")
	require.NoError(t, err)
	assert.NotEqual(t, "battery-staple", user.PasswordHash)

	_, _, err = env.users.Login("manager", "wrong-password")
	assert.Equal(t, ErrInvalidCredentials, err)
	_, _, err = env.users.Login("nobody", "battery-staple")
	assert.Equal(t, ErrInvalidCredentials, err)

	token, expiresAt, err := env.users.Login("manager", "battery-staple")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := env.tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "manager", claims.Username)
}

func TestTokenService_RevokeAndExpiry(t *testing.T) {
	env := setupTestEnv(t)

	token, _, err := env.tokens.GenerateToken("owner", time.Hour)
	require.NoError(t, err)

	tokens, err := env.tokens.ListUserTokens("owner")
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	assert.ErrorIs(t, env.tokens.RevokeToken(tokens[0].ID+100, "owner"), ErrNotFound)
	require.NoError(t, env.tokens.RevokeToken(tokens[0].ID, "owner"))

	_, err = env.tokens.ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)

	_, _, err = env.tokens.GenerateToken("ghost", time.Hour)
	assert.Equal(t, ErrUserNotFound, err)
	_, _, err = env.tokens.GenerateToken("owner", 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.tokens.ValidateToken("not-a-jwt")
	assert.Equal(t, ErrInvalidToken, err)

	env.tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := env.tokens.GenerateToken("owner", time.Hour)
	require.NoError(t, err)
	env.tokens.now = time.Now
	_, err = env.tokens.ValidateToken(stale)
	assert.Equal(t, ErrExpiredToken, err)

	purged, err := env.tokens.PurgeExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestFarmService_MembershipsAndRoles(t *testing.T) {
	env := setupTestEnv(t)
	_, err := env.users.CreateUser("sup", "", "correct-horse")
	require.NoError(t, err)

	role, err := env.farms.Role(env.farmID, "owner")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, role)

	role, err = env.farms.Role(env.farmID, "sup")
	require.NoError(t, err)
	assert.Equal(t, "", role)

	_, err = env.farms.SetMember(env.farmID, "sup", "boss")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.farms.SetMember(env.farmID, "ghost", models.RoleSupervisor)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.farms.SetMember(env.farmID, "sup", models.RoleSupervisor)
	require.NoError(t, err)
	role, err = env.farms.Role(env.farmID, "sup")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSupervisor, role)

	memberships, err := env.farms.ListForUser("sup")
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.Equal(t, "Green Acres", memberships[0].Farm.Name)

	_, err = env.farms.CreateFarm(" ", "", "owner")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestKind(t *testing.T) {
	assert.Equal(t, KindValidation, Kind(validationf("bad")))
	assert.Equal(t, KindInvalidState, Kind(invalidStatef("bad")))
	assert.Equal(t, KindImmutableState, Kind(immutablef("bad")))
	assert.Equal(t, KindPrecondition, Kind(preconditionf("bad")))
	assert.Equal(t, KindNotFound, Kind(ErrWorkerNotFound))
	assert.Equal(t, KindRemote, Kind(assert.AnError))
	assert.Equal(t, KindRemote, Kind(remote("query", assert.AnError)))
}
