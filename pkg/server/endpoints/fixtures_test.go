package endpoints

import (
	"encoding/base64"
	"net/http"
	"sync"
	"testing"

	"github.com/kestrelsec/passvault/pkg/keycrypt"
	"github.com/kestrelsec/passvault/pkg/model"
)

// Shared key fixtures. RSA generation is slow enough that the package shares
// one set across tests.
var (
	keysOnce   sync.Once
	userKey    *keycrypt.Key
	groupKey   *keycrypt.Key
	readKey    *keycrypt.Key
	modifyKey  *keycrypt.Key
	signingKey *keycrypt.Key
)

func testKeys(t *testing.T) {
	t.Helper()
	keysOnce.Do(func() {
		for _, k := range []**keycrypt.Key{&userKey, &groupKey, &readKey, &modifyKey, &signingKey} {
			key, err := keycrypt.GenerateKey()
			if err != nil {
				t.Fatalf("failed to generate key: %v", err)
			}
			*k = key
		}
	})
}

func testUser(userID string) *model.User {
	return &model.User{
		UserID:    userID,
		UserName:  userID,
		Enabled:   model.FlagTrue,
		PublicKey: userKey.Public().Serialize(),
	}
}

func testItem(t *testing.T, itemID, plaintext string) *model.Password {
	t.Helper()
	sealed, err := keycrypt.Wrap([]byte(plaintext), readKey.Public())
	if err != nil {
		t.Fatalf("failed to seal payload: %v", err)
	}
	return &model.Password{
		PasswordID:  itemID,
		Location:    "db-server-1",
		Enabled:     model.FlagTrue,
		Audited:     model.AuditedFull,
		LastChanged: 1700000000000,
		Data:        sealed,
		ReadKey:     readKey.Public().Serialize(),
		ModifyKey:   modifyKey.Public().Serialize(),
	}
}

func testMembership(t *testing.T, userID, groupID string) *model.Membership {
	t.Helper()
	akey, err := keycrypt.WrapKey(groupKey, userKey.Public())
	if err != nil {
		t.Fatalf("failed to wrap group key: %v", err)
	}
	return &model.Membership{UserID: userID, GroupID: groupID, AKey: akey}
}

func testEnvelopes(t *testing.T) (rkey, mkey []byte) {
	t.Helper()
	rkey, err := keycrypt.WrapKey(readKey, groupKey.Public())
	if err != nil {
		t.Fatalf("failed to wrap read key: %v", err)
	}
	mkey, err = keycrypt.WrapKey(modifyKey, groupKey.Public())
	if err != nil {
		t.Fatalf("failed to wrap modify key: %v", err)
	}
	return rkey, mkey
}

func authenticate(req *http.Request, userID string) {
	req.Header.Set("X-Vault-User", userID)
	req.Header.Set("X-Vault-Key", base64.StdEncoding.EncodeToString(userKey.Serialize()))
}
