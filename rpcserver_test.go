package dynamicfee

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// TestServiceRegisterKey makes sure the key registration method rejects
// malformed keys instead of collapsing them into the zero key, which would
// lock out all future callbacks.
func TestServiceRegisterKey(t *testing.T) {
	hook, db := newTestHook(t, nil)
	svc := &Service{hook: hook}
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	var reply RegisterKeyReply
	testCases := []struct {
		name string
		key  string
	}{{
		name: "not hex",
		key:  "0xzz",
	}, {
		name: "missing prefix",
		key:  testVkHash.Hex()[2:],
	}, {
		name: "too short",
		key:  "0x1234",
	}, {
		name: "too long",
		key:  testVkHash.Hex() + "ff",
	}}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := svc.RegisterKey(req, &RegisterKeyArgs{
				Caller: testOwner.Hex(),
				Key:    tc.key,
			}, &reply)
			require.Error(t, err)
		})
	}

	// None of the rejected inputs may have registered anything.
	key, err := db.VerificationKey()
	require.NoError(t, err)
	require.Equal(t, common.Hash{}, key)

	// A well formed 32 byte key passes through to the hook.
	err = svc.RegisterKey(req, &RegisterKeyArgs{
		Caller: testOwner.Hex(),
		Key:    testVkHash.Hex(),
	}, &reply)
	require.NoError(t, err)
	require.Equal(t, testVkHash.Hex(), reply.Key)

	key, err = db.VerificationKey()
	require.NoError(t, err)
	require.Equal(t, testVkHash, key)
}

// TestParseRequestID makes sure only well formed, non-empty 32 byte request
// IDs are accepted at the RPC boundary.
func TestParseRequestID(t *testing.T) {
	for _, invalid := range []string{
		"",
		"0x",
		"0x1234",
		"0x" + "00" + testVkHash.Hex()[2:],

		// The all-zero ID is well formed but meaningless.
		common.Hash{}.Hex(),
	} {
		_, err := parseRequestID(invalid)
		require.Error(t, err, "input %q", invalid)
	}

	id, err := parseRequestID(testVkHash.Hex())
	require.NoError(t, err)
	require.Equal(t, testVkHash.Hex()[2:], id.String())
}
