package integration

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kestrelsec/passvault/pkg/keycrypt"
	"github.com/kestrelsec/passvault/pkg/model"
	gormstore "github.com/kestrelsec/passvault/pkg/vault/store/gorm"
)

func TestVaultFlows(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration tests. Set INTEGRATION_TEST=1 to run.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tc, err := NewTestContext(ctx)
	require.NoError(t, err)
	defer tc.Close(ctx)

	// Seed principals directly through the stores: the admin group, a dev
	// group, and three users. Alice is the only dev group member.
	aliceKey := mustKey(t)
	bobKey := mustKey(t)
	carolKey := mustKey(t)
	devKey := mustKey(t)

	groups := gormstore.NewGroupsStore(tc.DB)
	memberships := gormstore.NewMembershipsStore(tc.DB)
	passwords := gormstore.NewPasswordsStore(tc.DB)

	require.NoError(t, groups.CreateGroup(&model.Group{
		GroupID: model.AdminGroupID, GroupName: "Administrators",
		Enabled: model.FlagTrue, PublicKey: tc.AdminKey.Public().Serialize(),
	}))
	require.NoError(t, groups.CreateGroup(&model.Group{
		GroupID: "g-dev", GroupName: "Developers",
		Enabled: model.FlagTrue, PublicKey: devKey.Public().Serialize(),
	}))

	for _, u := range []struct {
		id  string
		key *keycrypt.Key
	}{
		{"alice", aliceKey}, {"bob", bobKey}, {"carol", carolKey},
	} {
		require.NoError(t, passwords.CreateUser(&model.User{
			UserID: u.id, UserName: u.id,
			Enabled: model.FlagTrue, PublicKey: u.key.Public().Serialize(),
		}))
	}

	akey, err := keycrypt.WrapKey(devKey, aliceKey.Public())
	require.NoError(t, err)
	require.NoError(t, memberships.AddMembership(&model.Membership{
		UserID: "alice", GroupID: "g-dev", AKey: akey,
	}))

	t.Run("create and read back a password", func(t *testing.T) {
		resp := tc.request(t, "POST", "/passwords", "alice", aliceKey, map[string]interface{}{
			"password_id": "prod-db",
			"location":    "db-server-1",
			"plaintext":   "hunter2",
			"group_id":    "g-dev",
		})
		require.Equal(t, http.StatusCreated, resp.code)

		resp = tc.request(t, "GET", "/passwords/prod-db", "alice", aliceKey, nil)
		require.Equal(t, http.StatusOK, resp.code)
		require.Equal(t, "hunter2", resp.body["plaintext"])
		require.Equal(t, true, resp.body["can_modify"])
	})

	t.Run("non-member is denied", func(t *testing.T) {
		resp := tc.request(t, "GET", "/passwords/prod-db", "bob", bobKey, nil)
		require.Equal(t, http.StatusForbidden, resp.code)
	})

	t.Run("update re-seals the payload", func(t *testing.T) {
		resp := tc.request(t, "PUT", "/passwords/prod-db", "alice", aliceKey, map[string]interface{}{
			"plaintext": "hunter3",
		})
		require.Equal(t, http.StatusOK, resp.code)

		resp = tc.request(t, "GET", "/passwords/prod-db", "alice", aliceKey, nil)
		require.Equal(t, http.StatusOK, resp.code)
		require.Equal(t, "hunter3", resp.body["plaintext"])
	})

	t.Run("summary lists both grants", func(t *testing.T) {
		resp := tc.requestRaw(t, "GET", "/passwords/prod-db/summary", "alice", aliceKey, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var summaries []map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&summaries))
		_ = resp.Body.Close()
		require.Len(t, summaries, 2)
	})

	t.Run("restricted access round trip", func(t *testing.T) {
		resp := tc.request(t, "POST", "/passwords", "alice", aliceKey, map[string]interface{}{
			"password_id":  "vault-root",
			"plaintext":    "root-secret",
			"group_id":     "g-dev",
			"ra_enabled":   "Y",
			"ra_approvers": 1,
			"ra_blockers":  1,
		})
		require.Equal(t, http.StatusCreated, resp.code)

		// Seat carol as an approver.
		resp = tc.request(t, "POST", "/passwords/vault-root/roles", "alice", aliceKey, map[string]interface{}{
			"actor_id": "carol",
			"role":     "RA",
		})
		require.Equal(t, http.StatusCreated, resp.code)

		// Bob raises a request.
		resp = tc.request(t, "POST", "/ra/requests", "bob", bobKey, map[string]interface{}{
			"item_id": "vault-root",
			"reason":  "incident 4711",
		})
		require.Equal(t, http.StatusCreated, resp.code)
		requestID := resp.body["request_id"].(string)
		require.Equal(t, "pending", resp.body["state"])

		// Carol approves; the quorum of one is met.
		resp = tc.request(t, "POST", "/ra/requests/"+requestID+"/votes", "carol", carolKey, map[string]interface{}{
			"decision": "approver",
		})
		require.Equal(t, http.StatusOK, resp.code)
		require.Equal(t, "granted", resp.body["state"])

		// Bob fetches his grant token and redeems it.
		resp = tc.request(t, "GET", "/ra/requests/"+requestID+"/grant", "bob", bobKey, nil)
		require.Equal(t, http.StatusOK, resp.code)
		token := resp.body["grant_token"].(string)
		require.NotEmpty(t, token)

		resp = tc.request(t, "POST", "/ra/redeem", "bob", bobKey, map[string]interface{}{
			"token": token,
		})
		require.Equal(t, http.StatusOK, resp.code)
		require.Equal(t, "root-secret", resp.body["plaintext"])

		// The window is single use.
		resp = tc.request(t, "POST", "/ra/redeem", "bob", bobKey, map[string]interface{}{
			"token": token,
		})
		require.Equal(t, http.StatusConflict, resp.code)
	})
}

func mustKey(t *testing.T) *keycrypt.Key {
	t.Helper()
	key, err := keycrypt.GenerateKey()
	require.NoError(t, err)
	return key
}

type apiResponse struct {
	code int
	body map[string]interface{}
}

func (tc *TestContext) request(t *testing.T, method, path, userID string, key *keycrypt.Key, body map[string]interface{}) apiResponse {
	t.Helper()

	resp := tc.requestRaw(t, method, path, userID, key, body)
	defer func() { _ = resp.Body.Close() }()

	parsed := map[string]interface{}{}
	_ = json.NewDecoder(resp.Body).Decode(&parsed)
	return apiResponse{code: resp.StatusCode, body: parsed}
}

func (tc *TestContext) requestRaw(t *testing.T, method, path, userID string, key *keycrypt.Key, body map[string]interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, fmt.Sprintf("%s%s", tc.ServerURL, path), reader)
	require.NoError(t, err)
	req.Header.Set("X-Vault-User", userID)
	req.Header.Set("X-Vault-Key", base64.StdEncoding.EncodeToString(key.Serialize()))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := tc.HTTPClient.Do(req)
	require.NoError(t, err)
	return resp
}
