package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature verifies the HMAC-SHA256 signature of a webhook payload.
// The signature is the hex digest of the payload keyed with the shared secret.
//
// The comparison is constant-time. Whether an absent secret means "skip
// verification" is the caller's decision, not this function's: with an empty
// secret or signature it always returns false.
func VerifySignature(payload []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}
