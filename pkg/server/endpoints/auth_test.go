package endpoints

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelsec/passvault/pkg/keycrypt"
	"github.com/kestrelsec/passvault/pkg/model"
	"github.com/kestrelsec/passvault/pkg/server"
)

func newAuthServer(t *testing.T) (*server.Server, *MockDB) {
	t.Helper()
	testKeys(t)

	srv, mockDB, err := NewMockTestServer(signingKey, nil)
	if err != nil {
		t.Fatalf("failed to create mock test server: %v", err)
	}
	t.Cleanup(func() { _ = mockDB.Close() })

	RegisterPasswordsEndpoints(srv)
	return srv, mockDB
}

func TestAuthenticationContract(t *testing.T) {
	t.Run("missing headers", func(t *testing.T) {
		srv, mockDB := newAuthServer(t)

		req := httptest.NewRequest("GET", "/passwords/p1", nil)
		w := httptest.NewRecorder()
		srv.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NoError(t, mockDB.VerifyExpectations())
	})

	t.Run("malformed key material", func(t *testing.T) {
		srv, mockDB := newAuthServer(t)

		req := httptest.NewRequest("GET", "/passwords/p1", nil)
		req.Header.Set("X-Vault-User", "u-alice")
		req.Header.Set("X-Vault-Key", "not-base64!!!")
		w := httptest.NewRecorder()
		srv.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NoError(t, mockDB.VerifyExpectations())
	})

	t.Run("unknown user", func(t *testing.T) {
		srv, mockDB := newAuthServer(t)

		mockDB.ExpectUserNotFound("u-ghost")

		req := httptest.NewRequest("GET", "/passwords/p1", nil)
		req.Header.Set("X-Vault-User", "u-ghost")
		req.Header.Set("X-Vault-Key", base64.StdEncoding.EncodeToString(userKey.Serialize()))
		w := httptest.NewRecorder()
		srv.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NoError(t, mockDB.VerifyExpectations())
	})

	t.Run("disabled user", func(t *testing.T) {
		srv, mockDB := newAuthServer(t)

		user := testUser("u-alice")
		user.Enabled = model.FlagFalse
		mockDB.ExpectUserQuery(user)

		req := httptest.NewRequest("GET", "/passwords/p1", nil)
		authenticate(req, "u-alice")
		w := httptest.NewRecorder()
		srv.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NoError(t, mockDB.VerifyExpectations())
	})

	t.Run("key does not match the user record", func(t *testing.T) {
		srv, mockDB := newAuthServer(t)

		otherKey, err := keycrypt.GenerateKey()
		if err != nil {
			t.Fatalf("failed to generate key: %v", err)
		}
		user := testUser("u-alice")
		user.PublicKey = otherKey.Public().Serialize()
		mockDB.ExpectUserQuery(user)

		req := httptest.NewRequest("GET", "/passwords/p1", nil)
		authenticate(req, "u-alice")
		w := httptest.NewRecorder()
		srv.Router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.NoError(t, mockDB.VerifyExpectations())
	})
}
