// Package auth implements the SHA-1 digest handshake that gates every
// AGI request to the Door Control Container.
//
// The container sends a fresh 20-byte nonce and asks the dialplan to
// evaluate SHA1(<secret>:<nonce>) with its own copy of the shared
// secret. The request proceeds only when the returned digest matches
// the locally computed one; the secret itself never crosses the wire.
//
// The matching dialplan side looks like:
//
//	same => n,Set(DCC_DIGEST_SECRET=top_secret)
//	same => n,AGI(agi://192.0.2.10:4573/open_door/front)
package auth
