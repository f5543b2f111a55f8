package auth

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"time"
)

// NonceSize is the raw nonce length; the hex encoding is twice that.
const NonceSize = 20

var (
	// ErrDigestDecode reports a digest response that is not 20
	// hex-encoded bytes.
	ErrDigestDecode = errors.New("digest response is not hex-decodable")

	// ErrWrongDigest reports a well-formed digest computed with the
	// wrong secret.
	ErrWrongDigest = errors.New("digest does not match")

	// ErrMissingSecret reports that the dialplan never set the shared
	// secret variable, so the digest expression did not evaluate.
	ErrMissingSecret = errors.New("shared secret variable is not set on the caller's side")
)

// NewNonce builds a fresh 20-byte nonce, hex-encoded for transmission:
// 8 bytes of little-endian epoch seconds and 4 bytes of sub-second
// milliseconds against reuse, 8 random bytes against predictability.
func NewNonce() string {
	var raw [NonceSize]byte
	now := time.Now()
	binary.LittleEndian.PutUint64(raw[0:8], uint64(now.Unix()))
	binary.LittleEndian.PutUint32(raw[8:12], uint32(now.Nanosecond()/1e6))
	if _, err := rand.Read(raw[12:20]); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(err)
	}
	return hex.EncodeToString(raw[:])
}

// ExpectedDigest computes SHA-1 over secret || ":" || nonceHex, the
// same bytes the dialplan's SHA1() function hashes.
func ExpectedDigest(secret, nonceHex string) [sha1.Size]byte {
	h := sha1.New()
	h.Write([]byte(secret))
	h.Write([]byte(":"))
	h.Write([]byte(nonceHex))
	var digest [sha1.Size]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// VerifyDigest checks a caller-returned digest against the expected one
// for the given secret and nonce. Decode failures and mismatches are
// distinct errors so tests and logs can tell a broken dialplan from a
// wrong secret.
func VerifyDigest(secret, nonceHex, response string) error {
	decoded, err := hex.DecodeString(response)
	if err != nil {
		return ErrDigestDecode
	}
	if len(decoded) != sha1.Size {
		return ErrDigestDecode
	}
	expected := ExpectedDigest(secret, nonceHex)
	if subtle.ConstantTimeCompare(decoded, expected[:]) != 1 {
		return ErrWrongDigest
	}
	return nil
}
