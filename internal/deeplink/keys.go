package deeplink

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// keyLength is the byte length of placeholder keys.
const keyLength = 32

// KeySource produces placeholder identifiers embedded in deeplinks.
// None of the values are usable key material: no key exchange happens.
type KeySource interface {
	// DappKey returns a placeholder dapp encryption public key.
	DappKey() (string, error)
	// Topic returns a WalletConnect handshake topic.
	Topic() string
	// SymmetricKey returns a WalletConnect session key.
	SymmetricKey() (string, error)
}

// RandomKeys draws placeholder keys from a random source.
type RandomKeys struct {
	reader io.Reader
}

// Compile-time interface check
var _ KeySource = (*RandomKeys)(nil)

// NewRandomKeys creates a key source backed by crypto/rand.
func NewRandomKeys() *RandomKeys {
	return &RandomKeys{reader: rand.Reader}
}

// NewRandomKeysFrom creates a key source backed by r.
func NewRandomKeysFrom(r io.Reader) *RandomKeys {
	return &RandomKeys{reader: r}
}

// DappKey returns 32 random bytes in base58, shaped like a Solana public key.
func (k *RandomKeys) DappKey() (string, error) {
	b, err := k.read()
	if err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

// Topic returns a random UUID.
func (k *RandomKeys) Topic() string {
	return uuid.NewString()
}

// SymmetricKey returns 32 random bytes in hex.
func (k *RandomKeys) SymmetricKey() (string, error) {
	b, err := k.read()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (k *RandomKeys) read() ([]byte, error) {
	b := make([]byte, keyLength)
	if _, err := io.ReadFull(k.reader, b); err != nil {
		return nil, fmt.Errorf("reading random bytes: %w", err)
	}
	return b, nil
}
