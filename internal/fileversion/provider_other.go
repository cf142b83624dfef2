//go:build !windows

package fileversion

import (
	"github.com/deploymenttheory/go-file-version/internal/peres"
	"github.com/deploymenttheory/go-file-version/internal/verblock"
)

// peProvider reads the version resource straight out of the PE file
// and resolves paths with the pure-Go block parser. Behavior matches
// the Windows provider for well-formed resources.
type peProvider struct{}

func defaultProvider() provider {
	return peProvider{}
}

func (peProvider) load(path string) ([]byte, error) {
	return peres.VersionResource(path)
}

func (peProvider) query(block []byte, path string) ([]byte, bool) {
	return verblock.QueryValue(block, path)
}
