package config

import (
	"os"
	"sync"
)

// containerMarkers are files present inside Docker and Podman containers.
var containerMarkers = []string{"/.dockerenv", "/run/.containerenv"}

var (
	inContainerOnce   sync.Once
	inContainerResult bool
)

// IsRunningInContainer reports whether askdb runs inside a container.
// The result is cached after the first call.
func IsRunningInContainer() bool {
	inContainerOnce.Do(func() {
		for _, marker := range containerMarkers {
			if _, err := os.Stat(marker); err == nil {
				inContainerResult = true
				return
			}
		}
	})
	return inContainerResult
}

// ResolveHostForContainer maps a loopback datasource host to host.docker.internal when
// running in a container, so a SQL Server on the developer's machine stays reachable.
func ResolveHostForContainer(host string) string {
	return resolveHost(host, IsRunningInContainer())
}

func resolveHost(host string, inContainer bool) string {
	if !inContainer {
		return host
	}
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return "host.docker.internal"
	}
	return host
}
