package crypt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/tomato/pkg/crypt"
)

func TestHMACSignVerify(t *testing.T) {
	sig := crypt.SignHMAC("webhook-secret", "order123:true:42.50")
	assert.True(t, crypt.VerifyHMAC("webhook-secret", "order123:true:42.50", sig))
	assert.False(t, crypt.VerifyHMAC("webhook-secret", "order123:true:999", sig))
	assert.False(t, crypt.VerifyHMAC("other-secret", "order123:true:42.50", sig))
}

func TestHMACEmptySignatureRejected(t *testing.T) {
	assert.False(t, crypt.VerifyHMAC("webhook-secret", "order123:true:42.50", ""))
}
