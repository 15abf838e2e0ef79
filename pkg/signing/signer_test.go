package signing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type examplePayload struct {
	GroupID string
	Members []string
}

func TestSignVerify_RoundTrip(t *testing.T) {
	key, err := DeriveKey("cluster-secret")
	require.NoError(t, err)
	signer, err := NewSigner(key)
	require.NoError(t, err)

	now := time.Now()
	payload := examplePayload{GroupID: "g1", Members: []string{"a", "b"}}

	sig, err := signer.Sign("/groupshard.ShardRpcService/SyncData", payload, now)
	require.NoError(t, err)

	err = signer.Verify("/groupshard.ShardRpcService/SyncData", payload, now, sig, now)
	assert.NoError(t, err)
}

func TestVerify_RejectsTamperedPayload(t *testing.T) {
	key, err := DeriveKey("cluster-secret")
	require.NoError(t, err)
	signer, err := NewSigner(key)
	require.NoError(t, err)

	now := time.Now()
	sig, err := signer.Sign("method", examplePayload{GroupID: "g1"}, now)
	require.NoError(t, err)

	err = signer.Verify("method", examplePayload{GroupID: "g2"}, now, sig, now)
	assert.Error(t, err)
}

func TestVerify_RejectsExpiredTimestamp(t *testing.T) {
	key, err := DeriveKey("cluster-secret")
	require.NoError(t, err)
	signer, err := NewSigner(key)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	sig, err := signer.Sign("method", examplePayload{GroupID: "g1"}, past)
	require.NoError(t, err)

	err = signer.Verify("method", examplePayload{GroupID: "g1"}, past, sig, time.Now())
	assert.Error(t, err)
}

func TestVerify_RejectsWrongKey(t *testing.T) {
	keyA, err := DeriveKey("secret-a")
	require.NoError(t, err)
	keyB, err := DeriveKey("secret-b")
	require.NoError(t, err)
	signerA, err := NewSigner(keyA)
	require.NoError(t, err)
	signerB, err := NewSigner(keyB)
	require.NoError(t, err)

	now := time.Now()
	sig, err := signerA.Sign("method", examplePayload{GroupID: "g1"}, now)
	require.NoError(t, err)

	err = signerB.Verify("method", examplePayload{GroupID: "g1"}, now, sig, now)
	assert.Error(t, err)
}

func TestNewSigner_RejectsEmptyKey(t *testing.T) {
	_, err := NewSigner(nil)
	assert.Error(t, err)
}

func TestDeriveKey_RejectsEmptySecret(t *testing.T) {
	_, err := DeriveKey("")
	assert.Error(t, err)
}
