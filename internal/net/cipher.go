package net

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"
)

// Cipher encrypts frame payloads with two ChaCha20 keystreams, one per
// direction. Both ends derive the same key from the hello seed; the
// keystreams advance with every frame, so frames must be processed in order.
type Cipher struct {
	enc *chacha20.Cipher
	dec *chacha20.Cipher
}

const cipherContext = "creaturesim/session/v1"

var (
	nonceToClient = [chacha20.NonceSize]byte{0: 's'}
	nonceToServer = [chacha20.NonceSize]byte{0: 'c'}
)

func deriveKey(seed uint32) []byte {
	var buf [len(cipherContext) + 4]byte
	copy(buf[:], cipherContext)
	binary.LittleEndian.PutUint32(buf[len(cipherContext):], seed)
	key := blake2b.Sum256(buf[:])
	return key[:]
}

// NewCipher creates the cipher for one end of a session. The server encrypts
// on the to-client stream and decrypts the to-server stream; the client the
// reverse.
func NewCipher(seed uint32, server bool) (*Cipher, error) {
	key := deriveKey(seed)
	toClient, err := chacha20.NewUnauthenticatedCipher(key, nonceToClient[:])
	if err != nil {
		return nil, fmt.Errorf("cipher: %w", err)
	}
	toServer, err := chacha20.NewUnauthenticatedCipher(key, nonceToServer[:])
	if err != nil {
		return nil, fmt.Errorf("cipher: %w", err)
	}
	if server {
		return &Cipher{enc: toClient, dec: toServer}, nil
	}
	return &Cipher{enc: toServer, dec: toClient}, nil
}

// Encrypt encrypts data in place and returns it.
func (c *Cipher) Encrypt(data []byte) []byte {
	c.enc.XORKeyStream(data, data)
	return data
}

// Decrypt decrypts data in place and returns it.
func (c *Cipher) Decrypt(data []byte) []byte {
	c.dec.XORKeyStream(data, data)
	return data
}
