// Package config implements the configuration store for the Door Control
// Container.
//
// The store is populated once at process start from a TOML file and is
// read-only afterwards: AGI listener settings, the shared digest secret,
// the door-to-CMI mapping table, and the optional ops HTTP listener.
// Timing knobs follow the baseline-plus-env-override pattern and live in
// timing.go.
package config
