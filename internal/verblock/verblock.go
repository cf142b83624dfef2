// Package verblock implements structured-path lookups into a raw
// VS_VERSIONINFO resource block, mirroring the behavior of the Win32
// VerQueryValueW API for paths like "\VarFileInfo\Translation" and
// "\StringFileInfo\040904b0\FileVersion".
//
// The block is a tree of variable-length nodes. Each node carries a
// byte length, a value length, a type flag (text or binary), a
// NUL-terminated UTF-16LE key, an optional value, and child nodes.
// Node boundaries are padded to 32-bit alignment. All multi-byte
// integers are read byte-wise; the block carries no alignment
// guarantees.
package verblock

import (
	"strings"
	"unicode/utf16"
)

// Node type values from the VS_VERSIONINFO format.
const (
	typeBinary = 0
	typeText   = 1
)

const headerSize = 6 // wLength + wValueLength + wType

// node is one parsed tree node. value and children reference the
// underlying block; nothing is copied.
type node struct {
	key      string
	nodeType uint16
	value    []byte
	childOff int // offset of first child within the block
	end      int // offset just past this node
}

// QueryValue resolves a backslash-delimited path against the block and
// returns the value bytes of the addressed node. The root path "\"
// (or "") addresses the root node's own value (the VS_FIXEDFILEINFO
// payload). Key comparison is case-insensitive, matching VerQueryValueW.
// The returned slice aliases the block. The second return is false if
// any path component is missing or the block is malformed.
func QueryValue(block []byte, path string) ([]byte, bool) {
	cur, ok := parseNode(block, 0)
	if !ok {
		return nil, false
	}

	for _, part := range splitPath(path) {
		child, ok := findChild(block, cur, part)
		if !ok {
			return nil, false
		}
		cur = child
	}

	return cur.value, true
}

// splitPath breaks "\A\B" into its non-empty components.
func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "\\") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// findChild scans the child list of parent for a key match.
func findChild(block []byte, parent node, key string) (node, bool) {
	off := parent.childOff
	for off+headerSize <= parent.end {
		child, ok := parseNode(block, off)
		if !ok {
			return node{}, false
		}
		if strings.EqualFold(child.key, key) {
			return child, true
		}
		next := align4(child.end)
		if next <= off {
			return node{}, false
		}
		off = next
	}
	return node{}, false
}

// parseNode decodes the node starting at off. It fails on truncated
// headers, lengths that escape the block, or a missing key terminator.
func parseNode(block []byte, off int) (node, bool) {
	if off < 0 || off+headerSize > len(block) {
		return node{}, false
	}
	length := int(readU16(block, off))
	valueLen := int(readU16(block, off+2))
	nodeType := readU16(block, off+4)

	if length < headerSize {
		return node{}, false
	}
	end := off + length
	if end > len(block) {
		if off != 0 {
			// A child length escaping the block means truncation or
			// corruption; only the root gets the clamp below.
			return node{}, false
		}
		// Tolerate a root node whose declared length overshoots the
		// buffer the OS handed back; clamp rather than reject.
		end = len(block)
	}

	key, keyEnd, ok := readKey(block, off+headerSize, end)
	if !ok {
		return node{}, false
	}

	valueOff := align4(keyEnd)
	valueBytes := valueLen
	if nodeType == typeText {
		// Text values count 16-bit words, not bytes.
		valueBytes = valueLen * 2
	}
	if valueOff > end {
		return node{}, false
	}
	if valueOff+valueBytes > end {
		valueBytes = end - valueOff
	}

	return node{
		key:      key,
		nodeType: nodeType,
		value:    block[valueOff : valueOff+valueBytes],
		childOff: align4(valueOff + valueBytes),
		end:      end,
	}, true
}

// readKey decodes the NUL-terminated UTF-16LE key starting at off.
// Returns the key text and the offset just past the terminator.
func readKey(block []byte, off, end int) (string, int, bool) {
	var units []uint16
	for off+2 <= end {
		u := readU16(block, off)
		off += 2
		if u == 0 {
			return string(utf16.Decode(units)), off, true
		}
		units = append(units, u)
	}
	return "", 0, false
}

func align4(off int) int {
	return (off + 3) &^ 3
}

// readU16 performs an explicit little-endian byte-wise read. The block
// offers no alignment guarantees, so no typed loads.
func readU16(b []byte, off int) uint16 {
	return uint16(b[off]) | uint16(b[off+1])<<8
}

// ReadU32 reads an unaligned little-endian 32-bit value at off, or
// false if fewer than 4 bytes remain.
func ReadU32(b []byte, off int) (uint32, bool) {
	if off < 0 || off+4 > len(b) {
		return 0, false
	}
	return uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24, true
}
