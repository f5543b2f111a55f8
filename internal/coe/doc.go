// Package coe encodes CoE (CAN over Ethernet) frames for Technische
// Alternative CMI controllers.
//
// The package covers the single frame shape the Door Control Container
// needs: one digital on/off payload addressed by virtual node and
// zero-based PDO index, serialized into the fixed 12-byte CoE v2.0 frame
// that is sent as one UDP datagram.
package coe
