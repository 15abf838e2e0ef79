package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// MaxClockSkew bounds how far a signed request's timestamp may drift from
// the verifier's clock before it's rejected, guarding against replay of an
// old captured signature.
const MaxClockSkew = 30 * time.Second

// Signer signs and verifies intra-cluster RPC payloads with a single
// cluster-wide HMAC-SHA256 key, the shared signing scheme spec.md §9 allows
// in place of full intra-cluster authentication.
type Signer struct {
	key []byte
}

// NewSigner builds a Signer from a raw key. Any non-empty length is
// accepted (HMAC accepts any length), but a key derived by DeriveKey is the
// expected input.
func NewSigner(key []byte) (*Signer, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("signing key cannot be empty")
	}
	return &Signer{key: key}, nil
}

// DeriveKey derives a signing key from a cluster-wide shared secret as the
// SHA-256 digest of that secret, so every process configured with the same
// secret signs intra-cluster RPC with the same key.
func DeriveKey(sharedSecret string) ([]byte, error) {
	if sharedSecret == "" {
		return nil, fmt.Errorf("shared secret cannot be empty")
	}
	sum := sha256.Sum256([]byte(sharedSecret))
	return sum[:], nil
}

// Sign returns a base64-encoded HMAC-SHA256 signature over method, the
// JSON-marshaled payload, and ts (as a Unix-nanosecond string), in that
// order. ts must be included in the signed material or a captured
// signature could be replayed at any later time.
func (s *Signer) Sign(method string, payload interface{}, ts time.Time) (string, error) {
	mac, err := s.computeMAC(method, payload, ts)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(mac), nil
}

// Verify checks sig against method/payload/ts and rejects timestamps
// outside MaxClockSkew of now.
func (s *Signer) Verify(method string, payload interface{}, ts time.Time, sig string, now time.Time) error {
	skew := now.Sub(ts)
	if skew < 0 {
		skew = -skew
	}
	if skew > MaxClockSkew {
		return fmt.Errorf("signature timestamp outside allowed clock skew")
	}

	want, err := s.computeMAC(method, payload, ts)
	if err != nil {
		return err
	}
	got, err := base64.StdEncoding.DecodeString(sig)
	if err != nil {
		return fmt.Errorf("malformed signature: %w", err)
	}
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

func (s *Signer) computeMAC(method string, payload interface{}, ts time.Time) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload for signing: %w", err)
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(method))
	mac.Write([]byte{0})
	mac.Write(body)
	mac.Write([]byte{0})
	fmt.Fprintf(mac, "%d", ts.UnixNano())
	return mac.Sum(nil), nil
}
