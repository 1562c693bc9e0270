// Package crypt provides the HMAC signing pair backing the payment-gateway
// webhook signature check.
package crypt

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
)

// SignHMAC returns the hex-encoded HMAC-SHA256 of message under key.
func SignHMAC(key, message string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return fmt.Sprintf("%x", mac.Sum(nil))
}

// VerifyHMAC reports whether signature is a valid HMAC-SHA256 of message
// under key, in constant time.
func VerifyHMAC(key, message, signature string) bool {
	expected := SignHMAC(key, message)
	return hmac.Equal([]byte(expected), []byte(signature))
}
