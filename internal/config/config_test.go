package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnection_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		conn    Connection
		wantErr string
	}{
		{"valid", Connection{Host: "vcenter.local", Port: 443, User: "admin"}, ""},
		{"missing host", Connection{Port: 443, User: "admin"}, "host is required"},
		{"missing user", Connection{Host: "vcenter.local", Port: 443}, "user is required"},
		{"bad port", Connection{Host: "vcenter.local", Port: 70000, User: "admin"}, "invalid endpoint port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conn.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vmfleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint:
  host: vcenter.example.com
  port: 8443
  user: automation
  insecure: true
defaults:
  wait_max: 300
  threads: 4
`), 0o600))

	f, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "vcenter.example.com", f.Endpoint.Host)
	assert.Equal(t, 8443, f.Endpoint.Port)
	assert.True(t, f.Endpoint.Insecure)
	assert.Equal(t, 300, f.Defaults.WaitMax)
	assert.Equal(t, 4, f.Defaults.Threads)
	assert.Zero(t, f.Defaults.Interval)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoad_BadYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vmfleet.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: [not a map"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to unmarshal yaml")
}

func TestMerge_FlagsWin(t *testing.T) {
	t.Parallel()

	f := &File{}
	f.Endpoint.Host = "file-host"
	f.Endpoint.Port = 8443
	f.Endpoint.User = "file-user"

	conn := Connection{Host: "flag-host", Port: 443}
	f.Merge(&conn)

	assert.Equal(t, "flag-host", conn.Host)
	assert.Equal(t, 443, conn.Port)
	assert.Equal(t, "file-user", conn.User, "unset fields take file values")
}

func TestMerge_NilFile(t *testing.T) {
	t.Parallel()

	var f *File
	conn := Connection{Host: "h", Port: 443, User: "u"}
	f.Merge(&conn)

	assert.Equal(t, Connection{Host: "h", Port: 443, User: "u"}, conn)
}
