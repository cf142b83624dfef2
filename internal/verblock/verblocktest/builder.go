// Package verblocktest builds synthetic VS_VERSIONINFO blocks for
// tests. The emitted layout follows the documented node format: a
// 6-byte header, a NUL-terminated UTF-16LE key, then value and
// children, each aligned to 32-bit boundaries.
package verblocktest

import "unicode/utf16"

// Node describes one tree node to encode.
type Node struct {
	Key      string
	Type     uint16 // 0 binary, 1 text
	Value    []byte // pre-encoded value bytes
	Children []Node
}

// Text returns a text node whose value is the UTF-16LE encoding of
// value plus a terminating NUL unit, the way rc.exe emits string table
// entries.
func Text(key, value string) Node {
	units := append(utf16.Encode([]rune(value)), 0)
	return Units(key, units)
}

// Units returns a text node carrying exactly the given UTF-16 code
// units. Unpaired surrogates and embedded or missing NULs are passed
// through untouched.
func Units(key string, units []uint16) Node {
	value := make([]byte, 2*len(units))
	for i, u := range units {
		value[2*i] = byte(u)
		value[2*i+1] = byte(u >> 8)
	}
	return Node{Key: key, Type: 1, Value: value}
}

// Binary returns a binary node with the given value bytes.
func Binary(key string, value []byte) Node {
	return Node{Key: key, Type: 0, Value: value}
}

// Parent returns a valueless node holding children.
func Parent(key string, children ...Node) Node {
	return Node{Key: key, Type: 1, Children: children}
}

// With returns a copy of n with children appended.
func (n Node) With(children ...Node) Node {
	n.Children = append(n.Children, children...)
	return n
}

// Build encodes the tree rooted at n into a resource block.
func Build(n Node) []byte {
	return encode(n)
}

func encode(n Node) []byte {
	var buf []byte

	// Header placeholder, patched once the full length is known.
	buf = append(buf, 0, 0, 0, 0, 0, 0)

	for _, r := range utf16.Encode([]rune(n.Key)) {
		buf = append(buf, byte(r), byte(r>>8))
	}
	buf = append(buf, 0, 0) // key terminator

	buf = pad4(buf)
	buf = append(buf, n.Value...)

	for _, child := range n.Children {
		buf = pad4(buf)
		buf = append(buf, encode(child)...)
	}

	putU16(buf, 0, uint16(len(buf)))
	valueLen := len(n.Value)
	if n.Type == 1 {
		valueLen /= 2 // text values count 16-bit words
	}
	putU16(buf, 2, uint16(valueLen))
	putU16(buf, 4, n.Type)
	return buf
}

func pad4(b []byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}

func putU16(b []byte, off int, v uint16) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
}
