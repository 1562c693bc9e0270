package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/tomato/config"
)

func TestDeliveryFeeDefaultsToZero(t *testing.T) {
	// With nothing configured the order total must equal the plain item sum.
	assert.Equal(t, 0.0, config.DeliveryFee())
}

func TestGetFallback(t *testing.T) {
	assert.Equal(t, "fallback", config.Get("NO_SUCH_KEY_EVER", "fallback"))
}
