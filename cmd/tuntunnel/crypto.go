package main

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// newAEAD builds the frame cipher from a hex-encoded pre-shared key.
func newAEAD(hexKey string) (cipher.AEAD, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.Wrap(err, "decoding key")
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.Errorf("key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return chacha20poly1305.New(key)
}

// seal encrypts packet and prepends the random nonce.
func seal(aead cipher.AEAD, packet []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(packet)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, packet, nil), nil
}

// open decrypts a frame produced by seal.
func open(aead cipher.AEAD, frame []byte) ([]byte, error) {
	if len(frame) < aead.NonceSize() {
		return nil, errors.New("frame too short")
	}
	nonce, ciphertext := frame[:aead.NonceSize()], frame[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, nil)
}
