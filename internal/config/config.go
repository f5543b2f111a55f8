package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
)

const (
	// DefaultAGIPort is the FastAGI listen port Asterisk dials by default.
	DefaultAGIPort = 4573

	// DefaultCMIPort is the CoE port of a CMI in its factory configuration.
	// Some deployments use 5422 instead; set cmi_port per mapping for those.
	DefaultCMIPort = 5442
)

// ErrPDOZero reports a pdo field of 0. PDO indices are one-based on disk
// and converted to zero-based during load.
var ErrPDOZero = errors.New("pdo index is zero, but must be entered one-based")

// Config is the validated, immutable process configuration.
type Config struct {
	AGI   AGISettings
	Doors []DoorMapping
	Ops   *OpsSettings // nil when the ops HTTP surface is disabled
}

// AGISettings holds the FastAGI listener parameters and the shared
// digest secret.
type AGISettings struct {
	ListenAddress string
	ListenPort    uint16
	DigestSecret  string
}

// ListenAddr returns the host:port string for the AGI TCP listener.
func (a AGISettings) ListenAddr() string {
	return net.JoinHostPort(a.ListenAddress, strconv.Itoa(int(a.ListenPort)))
}

// OpsSettings holds the optional read-only ops HTTP listener parameters.
type OpsSettings struct {
	ListenAddress string
	ListenPort    uint16
}

// ListenAddr returns the host:port string for the ops HTTP listener.
func (o OpsSettings) ListenAddr() string {
	return net.JoinHostPort(o.ListenAddress, strconv.Itoa(int(o.ListenPort)))
}

// DoorMapping ties a door name to one CMI output. PDO is zero-based here;
// the on-disk field is one-based and converted exactly once, at load.
type DoorMapping struct {
	Name        string
	CMIAddress  string
	CMIPort     uint16
	VirtualNode uint8
	PDO         uint8
}

// Host returns the CMI endpoint as a host:port string.
func (m DoorMapping) Host() string {
	return net.JoinHostPort(m.CMIAddress, strconv.Itoa(int(m.CMIPort)))
}

// fileConfig mirrors the on-disk TOML schema. Optional fields are
// pointers so that "absent" and "zero" stay distinguishable.
type fileConfig struct {
	AGI fileAGI  `toml:"agi"`
	CMI fileCMI  `toml:"cmi"`
	Ops *fileOps `toml:"ops"`
}

type fileAGI struct {
	ListenAddress string  `toml:"listen_address"`
	ListenPort    *uint16 `toml:"listen_port"`
	DigestSecret  string  `toml:"digest_secret"`
}

type fileCMI struct {
	// Either key may be used; both lists feed the same mapping table,
	// door_mappings first.
	DoorMappings []fileDoorMapping `toml:"door_mappings"`
	RoomMappings []fileDoorMapping `toml:"room_mappings"`
}

type fileOps struct {
	ListenAddress string  `toml:"listen_address"`
	ListenPort    *uint16 `toml:"listen_port"`
}

type fileDoorMapping struct {
	DoorName    string  `toml:"door_name"`
	CMIAddress  string  `toml:"cmi_address"`
	CMIPort     *uint16 `toml:"cmi_port"`
	VirtualNode uint8   `toml:"virtual_node"`
	PDO         uint8   `toml:"pdo"`
}

// fromFile converts the raw on-disk schema into the validated Config,
// applying defaults and the one-based to zero-based PDO conversion.
func fromFile(raw fileConfig) (*Config, error) {
	agi, err := raw.AGI.convert()
	if err != nil {
		return nil, fmt.Errorf("[agi]: %w", err)
	}

	mappings := append([]fileDoorMapping{}, raw.CMI.DoorMappings...)
	mappings = append(mappings, raw.CMI.RoomMappings...)
	if len(mappings) == 0 {
		return nil, fmt.Errorf("[cmi]: no door mappings configured")
	}

	doors := make([]DoorMapping, 0, len(mappings))
	for i, m := range mappings {
		door, err := m.convert()
		if err != nil {
			return nil, fmt.Errorf("[cmi] mapping %d: %w", i, err)
		}
		doors = append(doors, door)
	}

	cfg := &Config{AGI: agi, Doors: doors}

	if raw.Ops != nil {
		ops, err := raw.Ops.convert()
		if err != nil {
			return nil, fmt.Errorf("[ops]: %w", err)
		}
		cfg.Ops = &ops
	}

	return cfg, nil
}

func (a fileAGI) convert() (AGISettings, error) {
	if err := validateIPv4(a.ListenAddress); err != nil {
		return AGISettings{}, fmt.Errorf("listen_address: %w", err)
	}
	if a.DigestSecret == "" {
		return AGISettings{}, fmt.Errorf("digest_secret must be set and non-empty")
	}
	port := uint16(DefaultAGIPort)
	if a.ListenPort != nil {
		port = *a.ListenPort
	}
	return AGISettings{
		ListenAddress: a.ListenAddress,
		ListenPort:    port,
		DigestSecret:  a.DigestSecret,
	}, nil
}

func (o fileOps) convert() (OpsSettings, error) {
	if err := validateIPv4(o.ListenAddress); err != nil {
		return OpsSettings{}, fmt.Errorf("listen_address: %w", err)
	}
	if o.ListenPort == nil {
		return OpsSettings{}, fmt.Errorf("listen_port must be set")
	}
	return OpsSettings{ListenAddress: o.ListenAddress, ListenPort: *o.ListenPort}, nil
}

func (m fileDoorMapping) convert() (DoorMapping, error) {
	if m.DoorName == "" {
		return DoorMapping{}, fmt.Errorf("door_name must be set and non-empty")
	}
	if err := validateIPv4(m.CMIAddress); err != nil {
		return DoorMapping{}, fmt.Errorf("cmi_address: %w", err)
	}
	if m.PDO == 0 {
		return DoorMapping{}, ErrPDOZero
	}
	port := uint16(DefaultCMIPort)
	if m.CMIPort != nil {
		port = *m.CMIPort
	}
	return DoorMapping{
		Name:        m.DoorName,
		CMIAddress:  m.CMIAddress,
		CMIPort:     port,
		VirtualNode: m.VirtualNode,
		PDO:         m.PDO - 1,
	}, nil
}

func validateIPv4(s string) error {
	if s == "" {
		return fmt.Errorf("must be set")
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return fmt.Errorf("%q is not an IP address", s)
	}
	if !addr.Is4() {
		return fmt.Errorf("%q is not an IPv4 address", s)
	}
	return nil
}
