// Package peres extracts the raw version resource (RT_VERSION) from a
// PE file without OS support, by walking the resource directory tree
// of the .rsrc section.
package peres

import (
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"
)

// Resource directory layout constants.
const (
	resourceTypeVersion = 16 // RT_VERSION

	dirHeaderSize  = 16
	dirEntrySize   = 8
	dataEntrySize  = 16
	subdirFlag     = 0x80000000
	entryOffMask   = 0x7FFFFFFF
	resourceDirIdx = 2 // IMAGE_DIRECTORY_ENTRY_RESOURCE
)

var (
	// ErrNoResourceSection reports a PE file without a resource section.
	ErrNoResourceSection = errors.New("no resource section")

	// ErrNoVersionResource reports a resource section without an
	// RT_VERSION entry.
	ErrNoVersionResource = errors.New("no version resource")
)

// VersionResource returns the raw VS_VERSIONINFO block embedded in the
// PE file at path. The returned bytes are an independent copy.
func VersionResource(path string) ([]byte, error) {
	f, err := pe.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PE file %s: %w", path, err)
	}
	defer f.Close()

	section, err := resourceSection(f)
	if err != nil {
		return nil, err
	}
	data, err := section.Data()
	if err != nil {
		return nil, fmt.Errorf("read resource section: %w", err)
	}
	return findVersion(data, section.VirtualAddress)
}

// resourceSection locates the section holding the resource data
// directory. The directory RVA is authoritative; the ".rsrc" name is
// only a convention.
func resourceSection(f *pe.File) (*pe.Section, error) {
	var dir pe.DataDirectory
	switch hdr := f.OptionalHeader.(type) {
	case *pe.OptionalHeader64:
		if hdr.NumberOfRvaAndSizes <= resourceDirIdx {
			return nil, ErrNoResourceSection
		}
		dir = hdr.DataDirectory[resourceDirIdx]
	case *pe.OptionalHeader32:
		if hdr.NumberOfRvaAndSizes <= resourceDirIdx {
			return nil, ErrNoResourceSection
		}
		dir = hdr.DataDirectory[resourceDirIdx]
	default:
		return nil, ErrNoResourceSection
	}
	if dir.VirtualAddress == 0 || dir.Size == 0 {
		return nil, ErrNoResourceSection
	}

	for _, s := range f.Sections {
		if dir.VirtualAddress >= s.VirtualAddress && dir.VirtualAddress < s.VirtualAddress+s.VirtualSize {
			return s, nil
		}
	}
	return nil, ErrNoResourceSection
}

// findVersion walks the three-level resource directory tree
// (type / name / language) rooted at the start of rsrc and returns the
// data of the first RT_VERSION leaf. sectionRVA is the virtual address
// of the section, needed to turn data-entry RVAs into offsets.
func findVersion(rsrc []byte, sectionRVA uint32) ([]byte, error) {
	typeDir, ok := findTypeDir(rsrc, resourceTypeVersion)
	if !ok {
		return nil, ErrNoVersionResource
	}

	// RT_VERSION resources have a single name and language in
	// practice; take the first entry at each remaining level.
	nameDir, ok := firstSubdir(rsrc, typeDir)
	if !ok {
		return nil, ErrNoVersionResource
	}
	dataOff, ok := firstLeaf(rsrc, nameDir)
	if !ok {
		return nil, ErrNoVersionResource
	}

	return dataEntry(rsrc, dataOff, sectionRVA)
}

// findTypeDir scans the root directory for a subdirectory entry with
// the given type id.
func findTypeDir(rsrc []byte, typeID uint32) (int, bool) {
	for _, e := range entries(rsrc, 0) {
		if e.id == typeID && e.offset&subdirFlag != 0 {
			return int(e.offset & entryOffMask), true
		}
	}
	return 0, false
}

// firstSubdir returns the directory offset of the first subdirectory
// entry under the directory at off.
func firstSubdir(rsrc []byte, off int) (int, bool) {
	for _, e := range entries(rsrc, off) {
		if e.offset&subdirFlag != 0 {
			return int(e.offset & entryOffMask), true
		}
	}
	return 0, false
}

// firstLeaf returns the data-entry offset of the first leaf entry
// under the directory at off.
func firstLeaf(rsrc []byte, off int) (int, bool) {
	for _, e := range entries(rsrc, off) {
		if e.offset&subdirFlag == 0 {
			return int(e.offset), true
		}
	}
	return 0, false
}

type dirEntry struct {
	id     uint32
	offset uint32
}

// entries decodes the entry list of the directory starting at off.
// A malformed directory decodes to no entries.
func entries(rsrc []byte, off int) []dirEntry {
	if off < 0 || off+dirHeaderSize > len(rsrc) {
		return nil
	}
	named := int(binary.LittleEndian.Uint16(rsrc[off+12:]))
	ids := int(binary.LittleEndian.Uint16(rsrc[off+14:]))
	count := named + ids

	out := make([]dirEntry, 0, count)
	pos := off + dirHeaderSize
	for i := 0; i < count; i++ {
		if pos+dirEntrySize > len(rsrc) {
			break
		}
		out = append(out, dirEntry{
			id:     binary.LittleEndian.Uint32(rsrc[pos:]),
			offset: binary.LittleEndian.Uint32(rsrc[pos+4:]),
		})
		pos += dirEntrySize
	}
	return out
}

// dataEntry resolves a leaf data entry into the resource bytes it
// points at. The entry stores an image RVA, not a section offset.
func dataEntry(rsrc []byte, off int, sectionRVA uint32) ([]byte, error) {
	if off < 0 || off+dataEntrySize > len(rsrc) {
		return nil, ErrNoVersionResource
	}
	rva := binary.LittleEndian.Uint32(rsrc[off:])
	size := binary.LittleEndian.Uint32(rsrc[off+4:])

	if rva < sectionRVA {
		return nil, ErrNoVersionResource
	}
	start := int(rva - sectionRVA)
	end := start + int(size)
	if start > len(rsrc) || end > len(rsrc) || end < start {
		return nil, ErrNoVersionResource
	}

	out := make([]byte, size)
	copy(out, rsrc[start:end])
	return out, nil
}
