// Package fileversion retrieves embedded version metadata (file
// description, version numbers, company, copyright, etc.) from the
// version resource of Windows binary files.
//
// On Windows the resource block is obtained and queried through the
// version.dll APIs. On other platforms the block is read straight out
// of the PE resource section and queried with a pure-Go parser, so the
// same lookups work everywhere.
package fileversion

import (
	"fmt"
	"unicode/utf16"

	"github.com/deploymenttheory/go-file-version/internal/verblock"
)

// Translation ids tried when a file declares none, or when its
// declared translation has no usable string table. US English with
// unspecified, Unicode and US-ASCII codepages, in that order. Legacy
// authoring tools emitted these; the order is a compatibility contract.
const (
	langEnglishUS        = 0x04090000
	langEnglishUSUnicode = 0x040904B0
	langEnglishUSASCII   = 0x040904E4
)

// provider is the OS-coupled surface: loading a file's raw version
// resource and resolving structured paths within it. Everything above
// it is pure and unit-testable against synthetic blocks.
type provider interface {
	load(path string) ([]byte, error)
	query(block []byte, path string) ([]byte, bool)
}

// Info holds the well-known version resource string values for one
// file. Fields are valid UTF-8: ill-formed UTF-16 in the resource is
// replaced with the Unicode replacement character. Use RawInfo to
// preserve such data exactly.
type Info struct {
	Comments         string `json:"comments"`
	CompanyName      string `json:"company_name"`
	FileDescription  string `json:"file_description"`
	FileVersion      string `json:"file_version"`
	InternalName     string `json:"internal_name"`
	LegalCopyright   string `json:"legal_copyright"`
	LegalTrademarks  string `json:"legal_trademarks"`
	OriginalFilename string `json:"original_filename"`
	ProductName      string `json:"product_name"`
	ProductVersion   string `json:"product_version"`
	PrivateBuild     string `json:"private_build"`
	SpecialBuild     string `json:"special_build"`
}

// RawInfo is the code-unit form of Info. Version resources are not
// validated by the OS and may contain ill-formed UTF-16; RawInfo keeps
// every original code unit so callers can round-trip byte-for-byte.
type RawInfo struct {
	Comments         []uint16
	CompanyName      []uint16
	FileDescription  []uint16
	FileVersion      []uint16
	InternalName     []uint16
	LegalCopyright   []uint16
	LegalTrademarks  []uint16
	OriginalFilename []uint16
	ProductName      []uint16
	ProductVersion   []uint16
	PrivateBuild     []uint16
	SpecialBuild     []uint16
}

// Info converts to the lossy string form. Unpaired surrogates become
// the Unicode replacement character; everything else carries over
// unchanged.
func (r *RawInfo) Info() *Info {
	return &Info{
		Comments:         lossy(r.Comments),
		CompanyName:      lossy(r.CompanyName),
		FileDescription:  lossy(r.FileDescription),
		FileVersion:      lossy(r.FileVersion),
		InternalName:     lossy(r.InternalName),
		LegalCopyright:   lossy(r.LegalCopyright),
		LegalTrademarks:  lossy(r.LegalTrademarks),
		OriginalFilename: lossy(r.OriginalFilename),
		ProductName:      lossy(r.ProductName),
		ProductVersion:   lossy(r.ProductVersion),
		PrivateBuild:     lossy(r.PrivateBuild),
		SpecialBuild:     lossy(r.SpecialBuild),
	}
}

func lossy(units []uint16) string {
	if len(units) == 0 {
		return ""
	}
	return string(utf16.Decode(units))
}

// Query retrieves the version information strings for the file at
// path. It fails only when the file is inaccessible or carries no
// version resource; a resource with no usable string table yields an
// all-empty Info.
func Query(path string) (*Info, error) {
	raw, err := QueryRaw(path)
	if err != nil {
		return nil, err
	}
	return raw.Info(), nil
}

// QueryRaw is Query without the lossy decoding step: string values are
// returned as their original UTF-16 code units.
func QueryRaw(path string) (*RawInfo, error) {
	return queryRaw(defaultProvider(), path)
}

func queryRaw(p provider, path string) (*RawInfo, error) {
	block, err := p.load(path)
	if err != nil {
		return nil, fmt.Errorf("load version resource: %w", err)
	}

	// Try the file's declared translation first, then the fixed
	// English fallbacks. The first one that yields a FileVersion wins;
	// a file whose tables are all empty is still a valid (empty) result.
	for _, id := range candidateTranslations(p, block) {
		info := extractAll(p, block, id)
		if len(info.FileVersion) > 0 {
			return info, nil
		}
	}
	return &RawInfo{}, nil
}

// candidateTranslations returns the translation ids to try, in order.
// The fallbacks are always appended, whether or not the block declares
// a translation of its own.
func candidateTranslations(p provider, block []byte) []uint32 {
	ids := make([]uint32, 0, 4)
	if id, ok := declaredTranslation(p, block); ok {
		ids = append(ids, id)
	}
	return append(ids, langEnglishUS, langEnglishUSUnicode, langEnglishUSASCII)
}

// declaredTranslation reads the first entry of the Translation
// variable. The resource stores the language and codepage words in the
// reverse order from the path-key convention, so the two 16-bit halves
// are swapped to form the id used in string lookups.
func declaredTranslation(p provider, block []byte) (uint32, bool) {
	value, ok := p.query(block, `\VarFileInfo\Translation`)
	if !ok || len(value) < 4 {
		return 0, false
	}
	// The value sits at an unaligned offset; ReadU32 composes it
	// byte-wise rather than dereferencing.
	v, ok := verblock.ReadU32(value, 0)
	if !ok {
		return 0, false
	}
	return swapHalves(v), true
}

// swapHalves exchanges the two 16-bit halves of a translation id. The
// operation is its own inverse.
func swapHalves(v uint32) uint32 {
	return v>>16 | v<<16
}

// extractAll reads the full field set for one translation. Missing
// entries come back empty; lookups into the block cannot fail.
func extractAll(p provider, block []byte, translation uint32) *RawInfo {
	return &RawInfo{
		Comments:         stringValue(p, block, translation, "Comments"),
		CompanyName:      stringValue(p, block, translation, "CompanyName"),
		FileDescription:  stringValue(p, block, translation, "FileDescription"),
		FileVersion:      stringValue(p, block, translation, "FileVersion"),
		InternalName:     stringValue(p, block, translation, "InternalName"),
		LegalCopyright:   stringValue(p, block, translation, "LegalCopyright"),
		LegalTrademarks:  stringValue(p, block, translation, "LegalTrademarks"),
		OriginalFilename: stringValue(p, block, translation, "OriginalFilename"),
		ProductName:      stringValue(p, block, translation, "ProductName"),
		ProductVersion:   stringValue(p, block, translation, "ProductVersion"),
		PrivateBuild:     stringValue(p, block, translation, "PrivateBuild"),
		SpecialBuild:     stringValue(p, block, translation, "SpecialBuild"),
	}
}

// stringValue looks up one string table entry and returns its UTF-16
// code units with trailing NUL units stripped.
func stringValue(p provider, block []byte, translation uint32, name string) []uint16 {
	path := fmt.Sprintf(`\StringFileInfo\%08x\%s`, translation, name)
	value, ok := p.query(block, path)
	if !ok {
		return nil
	}
	return stripTrailingNULs(decodeUnits(value))
}

// stripTrailingNULs drops terminating NUL units. String table entries
// carry at least one; sloppy tools pad with more.
func stripTrailingNULs(units []uint16) []uint16 {
	for len(units) > 0 && units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}
	return units
}

// decodeUnits splits a byte span into little-endian UTF-16 code units.
// A dangling odd byte is dropped.
func decodeUnits(b []byte) []uint16 {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+2 <= len(b); i += 2 {
		units = append(units, uint16(b[i])|uint16(b[i+1])<<8)
	}
	return units
}

// Field is one named Info entry, used for ordered display.
type Field struct {
	Name  string
	Value string
}

// Fields returns the entries in their canonical display order.
func (i *Info) Fields() []Field {
	return []Field{
		{"comments", i.Comments},
		{"company_name", i.CompanyName},
		{"file_description", i.FileDescription},
		{"file_version", i.FileVersion},
		{"internal_name", i.InternalName},
		{"legal_copyright", i.LegalCopyright},
		{"legal_trademarks", i.LegalTrademarks},
		{"original_filename", i.OriginalFilename},
		{"product_name", i.ProductName},
		{"product_version", i.ProductVersion},
		{"private_build", i.PrivateBuild},
		{"special_build", i.SpecialBuild},
	}
}

// RawField is one named RawInfo entry.
type RawField struct {
	Name  string
	Units []uint16
}

// Fields returns the raw entries in their canonical display order.
func (r *RawInfo) Fields() []RawField {
	return []RawField{
		{"comments", r.Comments},
		{"company_name", r.CompanyName},
		{"file_description", r.FileDescription},
		{"file_version", r.FileVersion},
		{"internal_name", r.InternalName},
		{"legal_copyright", r.LegalCopyright},
		{"legal_trademarks", r.LegalTrademarks},
		{"original_filename", r.OriginalFilename},
		{"product_name", r.ProductName},
		{"product_version", r.ProductVersion},
		{"private_build", r.PrivateBuild},
		{"special_build", r.SpecialBuild},
	}
}
