// Package config holds the connection settings shared by both tools and
// the optional YAML defaults file that pre-fills them.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Connection describes one management endpoint session.
type Connection struct {
	Host     string
	Port     int
	User     string
	Password string
	// Insecure disables TLS certificate verification on connect.
	Insecure bool
}

// Validate checks that the connection can be attempted.
func (c Connection) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("endpoint host is required")
	}
	if c.User == "" {
		return fmt.Errorf("endpoint user is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid endpoint port %d", c.Port)
	}
	return nil
}

// File is the YAML defaults file. Command-line flags always win; file
// values only fill fields the caller left unset.
type File struct {
	Endpoint struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Insecure bool   `yaml:"insecure"`
	} `yaml:"endpoint"`
	Defaults struct {
		WaitMax  int `yaml:"wait_max"`
		Interval int `yaml:"interval"`
		Threads  int `yaml:"threads"`
	} `yaml:"defaults"`
}

// Load reads and parses a defaults file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	return &f, nil
}

// Merge fills unset connection fields from the defaults file. A nil file
// leaves the connection untouched.
func (f *File) Merge(conn *Connection) {
	if f == nil {
		return
	}
	if conn.Host == "" {
		conn.Host = f.Endpoint.Host
	}
	if conn.Port == 0 {
		conn.Port = f.Endpoint.Port
	}
	if conn.User == "" {
		conn.User = f.Endpoint.User
	}
	if !conn.Insecure {
		conn.Insecure = f.Endpoint.Insecure
	}
}
