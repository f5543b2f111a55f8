// Package api implements the read-only ops HTTP surface of the Door
// Control Container.
//
// It exposes health and the configured door mappings for monitoring on
// the trusted LAN. Actuation is deliberately not reachable over HTTP;
// the only control path is the authenticated AGI route.
package api
