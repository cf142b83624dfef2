package verblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-file-version/internal/verblock/verblocktest"
)

// demoBlock builds a representative version resource: fixed info at
// the root, one string table under StringFileInfo and a Translation
// variable.
func demoBlock() []byte {
	fixed := make([]byte, 52)
	fixed[0] = 0xBD
	fixed[1] = 0x04
	fixed[2] = 0xEF
	fixed[3] = 0xFE

	root := verblocktest.Binary("VS_VERSION_INFO", fixed).With(
		verblocktest.Parent("StringFileInfo",
			verblocktest.Parent("040904B0",
				verblocktest.Text("FileVersion", "1.2.3.4"),
				verblocktest.Text("FileDescription", "Demo App"),
				verblocktest.Text("CompanyName", "Demo Co"),
			),
		),
		verblocktest.Parent("VarFileInfo",
			verblocktest.Binary("Translation", []byte{0x09, 0x04, 0xB0, 0x04}),
		),
	)
	return verblocktest.Build(root)
}

func TestQueryValueRoot(t *testing.T) {
	block := demoBlock()

	value, ok := QueryValue(block, `\`)
	require.True(t, ok)
	require.Len(t, value, 52)
	assert.Equal(t, []byte{0xBD, 0x04, 0xEF, 0xFE}, value[:4])
}

func TestQueryValueStringTable(t *testing.T) {
	block := demoBlock()

	value, ok := QueryValue(block, `\StringFileInfo\040904B0\FileVersion`)
	require.True(t, ok)
	// "1.2.3.4" as UTF-16LE plus the NUL terminator
	assert.Len(t, value, 16)
	assert.Equal(t, byte('1'), value[0])
	assert.Equal(t, byte(0), value[1])
}

func TestQueryValueCaseInsensitive(t *testing.T) {
	block := demoBlock()

	// VerQueryValueW matches keys case-insensitively; the pure parser
	// has to do the same since tools author table keys in either case.
	_, ok := QueryValue(block, `\stringfileinfo\040904b0\fileversion`)
	assert.True(t, ok)
}

func TestQueryValueTranslation(t *testing.T) {
	block := demoBlock()

	value, ok := QueryValue(block, `\VarFileInfo\Translation`)
	require.True(t, ok)
	assert.Equal(t, []byte{0x09, 0x04, 0xB0, 0x04}, value)
}

func TestQueryValueMissingPath(t *testing.T) {
	block := demoBlock()

	for _, path := range []string{
		`\StringFileInfo\041904B0\FileVersion`,
		`\StringFileInfo\040904B0\Comments`,
		`\VarFileInfo\Nope`,
		`\Nonsense`,
	} {
		_, ok := QueryValue(block, path)
		assert.False(t, ok, "path %s should be absent", path)
	}
}

func TestQueryValueEmptyBlock(t *testing.T) {
	_, ok := QueryValue(nil, `\`)
	assert.False(t, ok)

	_, ok = QueryValue([]byte{0x06, 0x00, 0x00}, `\`)
	assert.False(t, ok)
}

func TestQueryValueTruncatedBlock(t *testing.T) {
	block := demoBlock()

	// Chop the block mid-tree; lookups must fail cleanly, not panic.
	for _, n := range []int{7, 20, len(block) / 2} {
		_, ok := QueryValue(block[:n], `\StringFileInfo\040904B0\FileVersion`)
		assert.False(t, ok, "truncated to %d bytes", n)
	}
}

func TestQueryValueChildLengthEscapesBlock(t *testing.T) {
	block := demoBlock()
	short := block[:len(block)-4]

	// The root length may overshoot the buffer (the OS hands back
	// whatever it allocated) and still serve its own value.
	value, ok := QueryValue(short, `\`)
	require.True(t, ok)
	assert.Len(t, value, 52)

	// A child whose declared length escapes the buffer is corrupt and
	// must be rejected, not clamped.
	_, ok = QueryValue(short, `\VarFileInfo\Translation`)
	assert.False(t, ok)
}

func TestQueryValueZeroLengthNode(t *testing.T) {
	// A node declaring zero length must not loop or panic.
	block := make([]byte, 16)
	_, ok := QueryValue(block, `\Anything`)
	assert.False(t, ok)
}

func TestTextValueLengthInWords(t *testing.T) {
	root := verblocktest.Parent("VS_VERSION_INFO",
		verblocktest.Parent("StringFileInfo",
			verblocktest.Parent("040904B0",
				verblocktest.Text("FileVersion", "7"),
			),
		),
	)
	block := verblocktest.Build(root)

	value, ok := QueryValue(block, `\StringFileInfo\040904B0\FileVersion`)
	require.True(t, ok)
	// 2 words ("7" + NUL) means 4 bytes.
	assert.Len(t, value, 4)
}

func TestReadU32(t *testing.T) {
	b := []byte{0x01, 0x02, 0x03, 0x04, 0x05}

	v, ok := ReadU32(b, 0)
	require.True(t, ok)
	assert.Equal(t, uint32(0x04030201), v)

	v, ok = ReadU32(b, 1)
	require.True(t, ok)
	assert.Equal(t, uint32(0x05040302), v)

	_, ok = ReadU32(b, 2)
	assert.False(t, ok)

	_, ok = ReadU32(b, -1)
	assert.False(t, ok)
}
