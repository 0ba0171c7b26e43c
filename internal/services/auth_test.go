package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"infogrid-backend-go/internal/models"
	"infogrid-backend-go/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef-test"

func TestPasswordHasherArgonAndBcrypt(t *testing.T) {
	h := NewPasswordHasher()
	hash, err := h.Hash("s3cret!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=1$"))
	assert.True(t, h.Verify("s3cret!", hash))
	assert.False(t, h.Verify("s3cret?", hash))

	legacy, err := bcrypt.GenerateFromPassword([]byte("ngdkses87q"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, h.Verify("ngdkses87q", string(legacy)))
	assert.False(t, h.Verify("nope", string(legacy)))

	assert.False(t, h.Verify("x", "$argon2id$garbage"))
	assert.False(t, h.Verify("x", ""))
}

func TestSeedCreatesOnce(t *testing.T) {
	repos := repository.NewMemory()
	auth := NewAuthService(repos.Admins, nil)
	ctx := context.Background()

	first, err := auth.Seed(ctx, " Administrator ", "ngdkses87q")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "administrator", first.Username)

	admin, err := repos.Admins.FindByUsername(ctx, "administrator")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, admin.Role)
	assert.NotEqual(t, "ngdkses87q", admin.PasswordHash)

	second, err := auth.Seed(ctx, "administrator", "other")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, "Admin user already exists.", second.Message)

	_, err = auth.Seed(ctx, "administrator", "")
	requireStatus(t, err, http.StatusInternalServerError, "")
}

func TestAuthenticate(t *testing.T) {
	repos := repository.NewMemory()
	auth := NewAuthService(repos.Admins, nil)
	fixed := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return fixed }
	ctx := context.Background()
	_, err := auth.Seed(ctx, "administrator", "ngdkses87q")
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, "", "x")
	requireStatus(t, err, http.StatusBadRequest, "Username and password are required.")
	_, err = auth.Authenticate(ctx, "administrator", "")
	requireStatus(t, err, http.StatusBadRequest, "Username and password are required.")

	_, wrongPassword := auth.Authenticate(ctx, "administrator", "guess")
	_, unknownUser := auth.Authenticate(ctx, "nobody", "guess")
	requireStatus(t, wrongPassword, http.StatusUnauthorized, "Invalid credentials.")
	requireStatus(t, unknownUser, http.StatusUnauthorized, "Invalid credentials.")
	assert.Equal(t, wrongPassword, unknownUser)

	admin, err := auth.Authenticate(ctx, "  ADMINISTRATOR ", "ngdkses87q")
	require.NoError(t, err)
	require.NotNil(t, admin.LastLoginAt)
	assert.Equal(t, fixed, *admin.LastLoginAt)

	stored, err := repos.Admins.FindByUsername(ctx, "administrator")
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, fixed, *stored.LastLoginAt)
}

func TestSessionRoundTrip(t *testing.T) {
	codec, err := NewSessionCodec(testSecret, 8*time.Hour)
	require.NoError(t, err)

	value, exp, err := codec.Seal(Session{AdminID: "a1", Username: "administrator", Role: models.RoleSuperAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), exp, time.Minute)
	assert.NotContains(t, value, "administrator", "claims are encrypted")

	got, err := codec.Open(value)
	require.NoError(t, err)
	assert.Equal(t, "a1", got.AdminID)
	assert.Equal(t, "administrator", got.Username)
	assert.Equal(t, models.RoleSuperAdmin, got.Role)
	assert.True(t, got.IsLoggedIn)
}

func TestSessionRejectsTamperingAndExpiry(t *testing.T) {
	codec, err := NewSessionCodec(testSecret, time.Hour)
	require.NoError(t, err)
	value, _, err := codec.Seal(Session{AdminID: "a1", Username: "u", Role: models.RoleEditor})
	require.NoError(t, err)

	flipped := []byte(value)
	mid := len(flipped) / 2
	if flipped[mid] == 'A' {
		flipped[mid] = 'B'
	} else {
		flipped[mid] = 'A'
	}
	_, err = codec.Open(string(flipped))
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = codec.Open("not-base64!!")
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = codec.Open("")
	assert.ErrorIs(t, err, ErrInvalidSession)

	other, err := NewSessionCodec(strings.Repeat("z", 40), time.Hour)
	require.NoError(t, err)
	_, err = other.Open(value)
	assert.ErrorIs(t, err, ErrInvalidSession)

	codec.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = codec.Open(value)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionCodecRequiresLongSecret(t *testing.T) {
	_, err := NewSessionCodec("short", time.Hour)
	require.Error(t, err)
}
