// Package door implements name resolution and pulse actuation for the
// Door Control Container.
//
// The Registry maps caller-supplied door names onto the immutable
// mapping table from the config. The Controller drives the timed
// open/hold/close pulse over a fresh UDP channel per actuation, and the
// OpenHandler ties both to an authenticated AGI request.
package door
