package bot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignBody computes the base64 HMAC-SHA256 signature of a webhook body
func SignBody(channelSecret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateSignature checks a webhook signature in constant time
func ValidateSignature(channelSecret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	expected := SignBody(channelSecret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
