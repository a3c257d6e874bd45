package snapshot

import (
	"encoding/binary"
	"hash/crc64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HenryZhang-ZHY/beetle/internal/errors"
)

func TestEncodeDecode_Empty(t *testing.T) {
	encoded, err := Encode(nil)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	records := []FileRecord{
		{Path: "/repo/test1.txt", Size: 1024, ModifiedTime: 1622547800},
		{Path: "/repo/src/lib.go", Size: 2048, ModifiedTime: 1622547900},
		{Path: "/repo/docs/README.md", Size: 512, ModifiedTime: 1622548000},
	}

	encoded, err := Encode(records)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, records, decoded)
}

func TestEncodeDecode_UnicodePaths(t *testing.T) {
	records := []FileRecord{
		{Path: "/repo/测试.txt", Size: 100, ModifiedTime: 1622547800},
		{Path: "/repo/файл.go", Size: 200, ModifiedTime: 1622547900},
		{Path: "/repo/文档/自述文件.md", Size: 300, ModifiedTime: 1622548000},
	}

	encoded, err := Encode(records)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, records, decoded)
}

func TestEncode_Deterministic(t *testing.T) {
	records := []FileRecord{
		{Path: "/repo/a.c", Size: 1, ModifiedTime: 2},
		{Path: "/repo/b.c", Size: 3, ModifiedTime: 4},
	}

	first, err := Encode(records)
	require.NoError(t, err)
	second, err := Encode(records)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEncode_LongPathWithinLimit(t *testing.T) {
	longPath := "/" + strings.Repeat("a", 65534)

	encoded, err := Encode([]FileRecord{{Path: longPath, Size: 1, ModifiedTime: 1}})
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, longPath, decoded[0].Path)
}

func TestEncode_PathTooLong(t *testing.T) {
	tooLong := strings.Repeat("a", 65536)

	_, err := Encode([]FileRecord{{Path: tooLong, Size: 1, ModifiedTime: 1}})

	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindPathTooLong))
}

func TestDecode_TooShort(t *testing.T) {
	_, err := Decode([]byte("BTLX"))

	assert.ErrorIs(t, err, ErrTooShort)
}

func TestDecode_BadMagic(t *testing.T) {
	blob := make([]byte, 20)
	copy(blob, "XYZW")

	_, err := Decode(blob)

	assert.ErrorIs(t, err, ErrBadMagic)
	assert.True(t, errors.IsKind(err, errors.KindCorrupted))
}

func TestDecode_UnsupportedVersion(t *testing.T) {
	blob := make([]byte, 20)
	copy(blob, "BTLX")
	binary.BigEndian.PutUint32(blob[4:], 999)

	_, err := Decode(blob)

	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestDecode_ChecksumMismatch(t *testing.T) {
	encoded, err := Encode([]FileRecord{{Path: "/repo/test.txt", Size: 1024, ModifiedTime: 1622547800}})
	require.NoError(t, err)

	encoded[len(encoded)-1]++

	_, err = Decode(encoded)

	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestDecode_TruncatedEntries(t *testing.T) {
	// A header announcing one entry with no entry data; checksum valid over
	// the header so framing is the first failure.
	blob := make([]byte, 12)
	copy(blob, "BTLX")
	binary.BigEndian.PutUint32(blob[4:], 1)
	binary.BigEndian.PutUint32(blob[8:], 1)
	blob = appendChecksum(blob)

	_, err := Decode(blob)

	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecode_InvalidUTF8Path(t *testing.T) {
	blob := make([]byte, 12, 64)
	copy(blob, "BTLX")
	binary.BigEndian.PutUint32(blob[4:], 1)
	binary.BigEndian.PutUint32(blob[8:], 1)

	var entry [18]byte
	binary.BigEndian.PutUint64(entry[0:], 10)
	binary.BigEndian.PutUint64(entry[8:], 20)
	binary.BigEndian.PutUint16(entry[16:], 2)
	blob = append(blob, entry[:]...)
	blob = append(blob, 0xff, 0xfe)
	blob = appendChecksum(blob)

	_, err := Decode(blob)

	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestDecode_SingleByteFlipsNeverDecodeSilently(t *testing.T) {
	records := []FileRecord{
		{Path: "/repo/a.c", Size: 100, ModifiedTime: 1622547800},
		{Path: "/repo/b.c", Size: 200, ModifiedTime: 1622547900},
	}
	encoded, err := Encode(records)
	require.NoError(t, err)

	for i := range encoded {
		mutated := make([]byte, len(encoded))
		copy(mutated, encoded)
		mutated[i] ^= 0x01

		decoded, err := Decode(mutated)
		if err == nil {
			// The only acceptable silent outcome is an unchanged decode,
			// which a single-bit flip cannot produce without breaking the
			// checksum.
			assert.Failf(t, "undetected corruption", "byte %d flip decoded to %v", i, decoded)
		}
		assert.True(t, errors.IsKind(err, errors.KindCorrupted),
			"byte %d flip produced unexpected kind: %v", i, err)
	}
}

// appendChecksum frames blob with the CRC the codec expects.
func appendChecksum(blob []byte) []byte {
	sum := crc64.Checksum(blob, crc64.MakeTable(crc64.ECMA))
	var trailer [8]byte
	binary.BigEndian.PutUint64(trailer[:], sum)
	return append(blob, trailer[:]...)
}
