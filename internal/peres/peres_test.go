package peres

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRsrc lays out a minimal three-level resource section: one type
// directory holding one name, one language and one data entry pointing
// at payload.
func buildRsrc(typeID uint32, sectionRVA uint32, payload []byte) []byte {
	const (
		rootOff  = 0
		nameOff  = 24 // root header + 1 entry
		langOff  = 48
		dataOff  = 72
		bytesOff = 88
	)
	rsrc := make([]byte, bytesOff+len(payload))

	dir := func(off int, entryID, entryOffset uint32) {
		binary.LittleEndian.PutUint16(rsrc[off+14:], 1) // one id entry
		binary.LittleEndian.PutUint32(rsrc[off+16:], entryID)
		binary.LittleEndian.PutUint32(rsrc[off+20:], entryOffset)
	}

	dir(rootOff, typeID, subdirFlag|nameOff)
	dir(nameOff, 1, subdirFlag|langOff)
	dir(langOff, 0x0409, dataOff)

	binary.LittleEndian.PutUint32(rsrc[dataOff:], sectionRVA+bytesOff)
	binary.LittleEndian.PutUint32(rsrc[dataOff+4:], uint32(len(payload)))

	copy(rsrc[bytesOff:], payload)
	return rsrc
}

func TestFindVersion(t *testing.T) {
	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE}
	rsrc := buildRsrc(resourceTypeVersion, 0x4000, payload)

	got, err := findVersion(rsrc, 0x4000)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFindVersionCopiesData(t *testing.T) {
	payload := []byte{1, 2, 3, 4}
	rsrc := buildRsrc(resourceTypeVersion, 0x1000, payload)

	got, err := findVersion(rsrc, 0x1000)
	require.NoError(t, err)

	rsrc[len(rsrc)-1] = 0xFF
	assert.Equal(t, byte(4), got[3])
}

func TestFindVersionWrongType(t *testing.T) {
	// An icon resource only; no RT_VERSION directory.
	rsrc := buildRsrc(3, 0x4000, []byte{1, 2, 3})

	_, err := findVersion(rsrc, 0x4000)
	assert.ErrorIs(t, err, ErrNoVersionResource)
}

func TestFindVersionEmptySection(t *testing.T) {
	_, err := findVersion(nil, 0x4000)
	assert.ErrorIs(t, err, ErrNoVersionResource)

	_, err = findVersion(make([]byte, 8), 0x4000)
	assert.ErrorIs(t, err, ErrNoVersionResource)
}

func TestFindVersionBadDataRVA(t *testing.T) {
	rsrc := buildRsrc(resourceTypeVersion, 0x4000, []byte{1, 2, 3})

	// Data entry RVA below the section start cannot be resolved.
	_, err := findVersion(rsrc, 0x9000)
	assert.ErrorIs(t, err, ErrNoVersionResource)
}

func TestFindVersionTruncatedDirectory(t *testing.T) {
	rsrc := buildRsrc(resourceTypeVersion, 0x4000, []byte{1, 2, 3})

	// Chopping inside the tree must fail cleanly at every point.
	for n := 0; n < len(rsrc); n += 7 {
		_, err := findVersion(rsrc[:n], 0x4000)
		assert.Error(t, err, "truncated to %d bytes", n)
	}
}

func TestEntriesMalformedCount(t *testing.T) {
	// Directory claiming more entries than fit decodes only the ones
	// that do.
	rsrc := make([]byte, 24)
	binary.LittleEndian.PutUint16(rsrc[14:], 100)
	binary.LittleEndian.PutUint32(rsrc[16:], 16)
	binary.LittleEndian.PutUint32(rsrc[20:], subdirFlag|0xFFFF)

	got := entries(rsrc, 0)
	assert.Len(t, got, 1)
}
