package solana

import (
	"crypto/ed25519"
	"fmt"

	bloctotypes "github.com/blocto/solana-go-sdk/types"
	"github.com/gagliardetto/solana-go"
)

// Ed25519Verifier checks bonus-cap buy authorizations signed off-chain by the
// launch's verifier key.
type Ed25519Verifier struct{}

func NewEd25519Verifier() *Ed25519Verifier {
	return &Ed25519Verifier{}
}

// Verify reports whether signature (base58) over message recovers to the
// verifier key (base58 ed25519 public key).
func (v *Ed25519Verifier) Verify(verifierKey string, message []byte, signature string) bool {
	pub, err := solana.PublicKeyFromBase58(verifierKey)
	if err != nil {
		return false
	}
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return false
	}
	return ed25519.Verify(pub.Bytes(), message, sig[:])
}

// SignMessage signs message with a base58-encoded private key. Used by the
// ops tooling that issues cap-increase authorizations, and by tests.
func SignMessage(privateKey string, message []byte) (string, error) {
	priv, err := solana.PrivateKeyFromBase58(privateKey)
	if err != nil {
		return "", fmt.Errorf("invalid private key: %w", err)
	}
	sig, err := priv.Sign(message)
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}
	return sig.String(), nil
}

// NewVerifierAccount generates a fresh ed25519 key pair and returns it in
// base58 (public, private) form.
func NewVerifierAccount() (string, string) {
	account := bloctotypes.NewAccount()
	priv := solana.PrivateKey(account.PrivateKey)
	return account.PublicKey.ToBase58(), priv.String()
}
