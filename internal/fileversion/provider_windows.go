//go:build windows

package fileversion

import (
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

// osProvider backs queries with version.dll. The block returned by
// GetFileVersionInfoW is only guaranteed to be understood by
// VerQueryValueW, so both halves of the provider go through the OS.
type osProvider struct{}

func defaultProvider() provider {
	return osProvider{}
}

func (osProvider) load(path string) ([]byte, error) {
	size, err := windows.GetFileVersionInfoSize(path, nil)
	if err != nil {
		return nil, fmt.Errorf("GetFileVersionInfoSize %s: %w", path, err)
	}
	data := make([]byte, size)
	if err := windows.GetFileVersionInfo(path, 0, size, unsafe.Pointer(&data[0])); err != nil {
		return nil, fmt.Errorf("GetFileVersionInfo %s: %w", path, err)
	}
	return data, nil
}

func (osProvider) query(block []byte, path string) ([]byte, bool) {
	var ptr unsafe.Pointer
	var length uint32
	err := windows.VerQueryValue(
		unsafe.Pointer(&block[0]),
		path,
		unsafe.Pointer(&ptr),
		&length)
	if err != nil || ptr == nil || length == 0 {
		return nil, false
	}
	// VerQueryValueW reports string table values in 16-bit characters
	// and everything else in bytes.
	bytes := int(length)
	if strings.HasPrefix(path, `\StringFileInfo`) {
		bytes *= 2
	}
	return unsafe.Slice((*byte)(ptr), bytes), true
}
