package config

import (
	"os"
	"sync"
)

var (
	dockerOnce sync.Once
	inDocker   bool
)

// IsRunningInDocker reports whether the process runs inside a Docker container,
// detected through /.dockerenv. The result is cached after the first call.
func IsRunningInDocker() bool {
	dockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		inDocker = err == nil
	})
	return inDocker
}

// ResolveHostForDocker maps loopback hosts to host.docker.internal when running
// in a container, so a catalog database on the developer machine stays reachable.
func ResolveHostForDocker(host string) string {
	if !IsRunningInDocker() {
		return host
	}

	switch host {
	case "localhost", "127.0.0.1":
		return "host.docker.internal"
	default:
		return host
	}
}

// ResolvedHost returns the catalog host adjusted for Docker networking.
func (c *CatalogConfig) ResolvedHost() string {
	return ResolveHostForDocker(c.Host)
}
