package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/mc-auth/auth"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid otp logs in once", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.otps.Issue(ctx, testUserID, "123456", f.currentTime()))

		account, err := f.service.Login(ctx, "steve", "123 456")
		require.NoError(t, err)
		require.Equal(t, testUserID, account.ID)
		require.Equal(t, testUserName, account.Name)
		require.Equal(t, f.currentTime(), account.LastLogin)

		_, err = f.service.Login(ctx, "steve", "123456")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("expired otp", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.otps.Issue(ctx, testUserID, "123456", f.currentTime()))
		f.advance(5*time.Minute + time.Second)

		_, err := f.service.Login(ctx, testUserName, "123456")
		require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("invalid input", func(t *testing.T) {
		f := setupTestFixture(t)
		for _, tc := range [][2]string{
			{"", "123456"},
			{"a_name_that_is_too_long", "123456"},
			{testUserName, "12345"},
			{"Unknown", "123456"},
		} {
			_, err := f.service.Login(ctx, tc[0], tc[1])
			require.ErrorIs(t, err, auth.ErrInvalidCredentials, tc)
		}
	})

	t.Run("lookup outage is not a credential error", func(t *testing.T) {
		f := setupTestFixture(t)
		f.lookup.FailWith(errors.New("timeout"))
		_, err := f.service.Login(ctx, testUserName, "123456")
		require.Error(t, err)
		require.False(t, errors.Is(err, auth.ErrInvalidCredentials))
	})

	t.Run("verify otp for confirmations", func(t *testing.T) {
		f := setupTestFixture(t)
		require.NoError(t, f.otps.Issue(ctx, testUserID, "654321", f.currentTime()))
		require.NoError(t, f.service.VerifyOTP(ctx, testUserID, "654321"))
		require.Error(t, f.service.VerifyOTP(ctx, testUserID, "654321"))
	})
}
