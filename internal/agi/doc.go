// Package agi implements the FastAGI session protocol for the Door
// Control Container.
//
// Asterisk dials the container over TCP, sends an agi_* environment
// block, and then answers commands the container issues one line at a
// time. The package provides the per-connection Session with typed
// command helpers (GET FULL VARIABLE, VERBOSE, SET VARIABLE), the Router
// with :name path captures, an ordered pre-stage pipeline applied to
// every request, and the accepting Server with graceful shutdown.
package agi
