package mojang_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/mc-auth/identity"
	"github.com/jrsteele09/mc-auth/identity/mojang"
	"github.com/stretchr/testify/require"
)

const notchID = "069a79f444e94726a5befca90e38aaf5"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /session/minecraft/profile/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.PathValue("id") {
		case notchID:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"069a79f444e94726a5befca90e38aaf5","name":"Notch","properties":[{"name":"textures","value":"e30=","signature":"sig"}]}`))
		case "00000000000000000000000000000500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("GET /users/profiles/minecraft/{name}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("name") == "Notch" {
			_, _ = w.Write([]byte(`{"id":"069a79f444e94726a5befca90e38aaf5","name":"Notch"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	srv := newTestServer(t)
	c := mojang.NewClient(
		mojang.WithBaseURLs(srv.URL, srv.URL+"/"),
		mojang.WithUserAgent("test-agent"),
		mojang.WithTimeout(2*time.Second),
	)
	ctx := context.Background()

	t.Run("profile by dashed id", func(t *testing.T) {
		p, err := c.ProfileByID(ctx, "069a79f4-44e9-4726-a5be-fca90e38aaf5")
		require.NoError(t, err)
		require.Equal(t, notchID, p.ID)
		require.Equal(t, "Notch", p.Name)
		require.Len(t, p.Properties, 1)
		require.Equal(t, "textures", p.Properties[0].Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := c.ProfileByID(ctx, "ffffffffffffffffffffffffffffffff")
		require.ErrorIs(t, err, identity.ErrProfileNotFound)
	})

	t.Run("upstream failure is not a missing profile", func(t *testing.T) {
		_, err := c.ProfileByID(ctx, "00000000000000000000000000000500")
		require.Error(t, err)
		require.False(t, errors.Is(err, identity.ErrProfileNotFound))
		require.Contains(t, err.Error(), "unexpected status 500")
	})

	t.Run("profile by name", func(t *testing.T) {
		p, err := c.ProfileByName(ctx, "Notch")
		require.NoError(t, err)
		require.Equal(t, notchID, p.ID)

		_, err = c.ProfileByName(ctx, "nobody")
		require.ErrorIs(t, err, identity.ErrProfileNotFound)
	})

	t.Run("invalid username short circuits", func(t *testing.T) {
		_, err := c.ProfileByName(ctx, "this name is way too long")
		require.ErrorIs(t, err, identity.ErrProfileNotFound)
	})
}
