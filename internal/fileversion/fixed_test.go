package fileversion

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fixedPayload(fileMS, fileLS, prodMS, prodLS uint32) []byte {
	b := make([]byte, fixedInfoSize)
	binary.LittleEndian.PutUint32(b[offSignature:], fixedSignature)
	binary.LittleEndian.PutUint32(b[offFileVersionMS:], fileMS)
	binary.LittleEndian.PutUint32(b[offFileVersionLS:], fileLS)
	binary.LittleEndian.PutUint32(b[offProdVersionMS:], prodMS)
	binary.LittleEndian.PutUint32(b[offProdVersionLS:], prodLS)
	binary.LittleEndian.PutUint32(b[offFileOS:], 0x00040004) // VOS_NT_WINDOWS32
	binary.LittleEndian.PutUint32(b[offFileType:], 1)        // VFT_APP
	return b
}

func TestParseFixedInfo(t *testing.T) {
	payload := fixedPayload(0x00010002, 0x00030004, 0x000A000B, 0x000C000D)

	fixed := parseFixedInfo(payload)
	assert.Equal(t, VersionNumber{Major: 1, Minor: 2, Build: 3, Revision: 4}, fixed.FileVersion)
	assert.Equal(t, VersionNumber{Major: 10, Minor: 11, Build: 12, Revision: 13}, fixed.ProductVersion)
	assert.Equal(t, uint32(0x00040004), fixed.FileOS)
	assert.Equal(t, uint32(1), fixed.FileType)
}

func TestParseFixedInfoBadSignature(t *testing.T) {
	payload := fixedPayload(0x00010002, 0x00030004, 0, 0)
	payload[0] = 0x00

	assert.Equal(t, &FixedInfo{}, parseFixedInfo(payload))
}

func TestParseFixedInfoShortPayload(t *testing.T) {
	assert.Equal(t, &FixedInfo{}, parseFixedInfo(nil))
	assert.Equal(t, &FixedInfo{}, parseFixedInfo(make([]byte, 20)))
}

func TestVersionNumberString(t *testing.T) {
	v := VersionNumber{Major: 6, Minor: 1, Build: 7601, Revision: 17514}
	assert.Equal(t, "6.1.7601.17514", v.String())
	assert.Equal(t, "0.0.0.0", VersionNumber{}.String())
}
