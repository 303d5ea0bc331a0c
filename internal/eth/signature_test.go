package eth

import (
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestRecoverPersonalSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey)

	msg := "Sign this message to authenticate with AGORAFI.\n\nNonce: abc"
	sig, err := SignPersonal(msg, key)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(sig, "0x"))

	got, err := RecoverPersonalSigner(msg, sig)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestRecoverPersonalSignerWrongMessage(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := crypto.PubkeyToAddress(key.PublicKey)

	sig, err := SignPersonal("message one", key)
	require.NoError(t, err)

	// A valid signature over a different message recovers some other
	// address, never the signer's.
	got, err := RecoverPersonalSigner("message two", sig)
	require.NoError(t, err)
	require.NotEqual(t, want, got)
}

func TestRecoverPersonalSignerMalformed(t *testing.T) {
	for _, sig := range []string{
		"",
		"0x",
		"not-hex",
		"0xdeadbeef",
	} {
		_, err := RecoverPersonalSigner("msg", sig)
		require.Error(t, err, sig)
	}
}
