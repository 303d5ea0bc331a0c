package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateAddress(t *testing.T) {
	require.NoError(t, ValidateAddress("0xAAaa000000000000000000000000000000000001"))

	for _, addr := range []string{
		"",
		"0x123",
		"aaaa000000000000000000000000000000000001",
		"0xZZzz000000000000000000000000000000000001",
	} {
		err := ValidateAddress(addr)
		require.Error(t, err, addr)
		require.True(t, IsCode(err, CodeValidation))
	}
}

func TestFormatChallenge(t *testing.T) {
	msg := FormatChallenge("abc-123")
	require.Equal(t, "Sign this message to authenticate with AGORAFI.\n\nNonce: abc-123", msg)
}
