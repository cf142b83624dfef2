package fileversion

import "fmt"

// VS_FIXEDFILEINFO field offsets within the root block value.
const (
	fixedSignature   = 0xFEEF04BD
	offSignature     = 0
	offFileVersionMS = 8
	offFileVersionLS = 12
	offProdVersionMS = 16
	offProdVersionLS = 20
	offFileFlags     = 28
	offFileOS        = 32
	offFileType      = 36
	offFileSubtype   = 40
	fixedInfoSize    = 52
)

// VersionNumber is a four-part binary version from the fixed file
// info, independent of the free-form FileVersion string.
type VersionNumber struct {
	Major    uint16 `json:"major"`
	Minor    uint16 `json:"minor"`
	Build    uint16 `json:"build"`
	Revision uint16 `json:"revision"`
}

func (v VersionNumber) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Build, v.Revision)
}

// FixedInfo is the decoded VS_FIXEDFILEINFO header of a version
// resource: the language-independent numeric version data.
type FixedInfo struct {
	FileVersion    VersionNumber `json:"file_version"`
	ProductVersion VersionNumber `json:"product_version"`
	FileFlags      uint32        `json:"file_flags"`
	FileOS         uint32        `json:"file_os"`
	FileType       uint32        `json:"file_type"`
	FileSubtype    uint32        `json:"file_subtype"`
}

// QueryFixed retrieves the fixed file info for the file at path. A
// resource without a valid fixed info header yields a zero FixedInfo;
// only a missing or inaccessible resource is an error.
func QueryFixed(path string) (*FixedInfo, error) {
	p := defaultProvider()
	block, err := p.load(path)
	if err != nil {
		return nil, fmt.Errorf("load version resource: %w", err)
	}
	value, ok := p.query(block, `\`)
	if !ok {
		return &FixedInfo{}, nil
	}
	return parseFixedInfo(value), nil
}

// parseFixedInfo decodes a VS_FIXEDFILEINFO payload. Short payloads or
// a wrong signature decode to the zero value.
func parseFixedInfo(value []byte) *FixedInfo {
	if len(value) < fixedInfoSize {
		return &FixedInfo{}
	}
	if sig, _ := readU32(value, offSignature); sig != fixedSignature {
		return &FixedInfo{}
	}
	return &FixedInfo{
		FileVersion:    versionNumber(value, offFileVersionMS, offFileVersionLS),
		ProductVersion: versionNumber(value, offProdVersionMS, offProdVersionLS),
		FileFlags:      mustU32(value, offFileFlags),
		FileOS:         mustU32(value, offFileOS),
		FileType:       mustU32(value, offFileType),
		FileSubtype:    mustU32(value, offFileSubtype),
	}
}

// versionNumber assembles a four-part version from the MS and LS
// dwords, high word first.
func versionNumber(value []byte, msOff, lsOff int) VersionNumber {
	ms := mustU32(value, msOff)
	ls := mustU32(value, lsOff)
	return VersionNumber{
		Major:    uint16(ms >> 16),
		Minor:    uint16(ms),
		Build:    uint16(ls >> 16),
		Revision: uint16(ls),
	}
}

func readU32(b []byte, off int) (uint32, bool) {
	if off+4 > len(b) {
		return 0, false
	}
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24, true
}

func mustU32(b []byte, off int) uint32 {
	v, _ := readU32(b, off)
	return v
}
