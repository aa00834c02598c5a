// Package webserver provides a local static file server for the pre-built
// web frontend.
package webserver

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

const (
	// DefaultPort is the TCP port the server listens on when none is given.
	DefaultPort = 8000
	// DefaultDirectory is the directory, relative to the executable, that
	// holds the web assets.
	DefaultDirectory = "docs"
)

// Config holds the settings for a Server.
type Config struct {
	// Host is the interface to bind. An empty host binds all interfaces.
	Host string
	// Port is the TCP port to listen on. Port 0 picks a free port.
	Port int
	// RootDir is the base directory. Every served file resides under it.
	RootDir string
}

// DefaultConfig returns the fixed configuration used when the program is
// invoked without flags. RootDir is still relative and must be resolved with
// ResolveRoot before use.
func DefaultConfig() Config {
	return Config{
		Port:    DefaultPort,
		RootDir: DefaultDirectory,
	}
}

// Address returns the listen address in host:port form.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the address a browser on this machine should open.
func (c Config) URL() string {
	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, strconv.Itoa(c.Port)))
}

// Validate checks that the configuration can be used to start a server.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("invalid port: %d", c.Port)
	}
	if c.RootDir == "" {
		return errors.New("empty root directory")
	}
	return nil
}

// ExecutableDir returns the absolute directory containing the running
// executable, with symbolic links resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", errors.Wrap(err, "unable to locate executable")
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", errors.Wrap(err, "unable to resolve executable path")
	}
	return filepath.Dir(exe), nil
}

// ResolveRoot computes the absolute base directory. An absolute dir is used
// as is; a relative one is joined to base.
func ResolveRoot(base, dir string) (string, error) {
	if dir == "" {
		return "", errors.New("empty root directory")
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "unable to resolve root directory")
	}
	return abs, nil
}
