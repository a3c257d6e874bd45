package snapshot

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"hash/crc64"
	"math"
	"unicode/utf8"

	"github.com/HenryZhang-ZHY/beetle/internal/errors"
)

// Framed binary layout, big-endian:
//
//	magic       "BTLX"          4 bytes
//	version     u32             4 bytes
//	num_entries u32             4 bytes
//	entries     repeated        size u64, modified u64, path_len u16, path bytes
//	checksum    u64             CRC-64/ECMA over every preceding byte
const (
	codecVersion = 1
	headerSize   = 12
	trailerSize  = 8
	minBlobSize  = headerSize + trailerSize
	entryFixed   = 18 // size (8) + modified (8) + path_len (2)
)

var (
	magic     = []byte("BTLX")
	crc64ECMA = crc64.MakeTable(crc64.ECMA)
)

// Decode failure reasons. Each is surfaced wrapped in a Corrupted error so
// callers can match either the kind or the specific reason.
var (
	ErrTooShort           = stderrors.New("snapshot blob too short")
	ErrBadMagic           = stderrors.New("invalid magic signature")
	ErrUnsupportedVersion = stderrors.New("unsupported snapshot version")
	ErrTruncated          = stderrors.New("truncated snapshot entry data")
	ErrInvalidUTF8        = stderrors.New("invalid UTF-8 in snapshot path")
	ErrChecksumMismatch   = stderrors.New("snapshot checksum mismatch")
)

// Encode serializes records into the framed blob. Encoding is
// deterministic: the same input always produces identical bytes.
func Encode(records []FileRecord) ([]byte, error) {
	capacity := minBlobSize
	for _, r := range records {
		capacity += entryFixed + len(r.Path)
	}
	buf := bytes.NewBuffer(make([]byte, 0, capacity))

	buf.Write(magic)
	writeUint32(buf, codecVersion)
	writeUint32(buf, uint32(len(records)))

	for _, r := range records {
		pathBytes := []byte(r.Path)
		if len(pathBytes) > math.MaxUint16 {
			return nil, errors.New(errors.KindPathTooLong, "path too long: %d bytes", len(pathBytes))
		}

		writeUint64(buf, r.Size)
		writeUint64(buf, r.ModifiedTime)
		writeUint16(buf, uint16(len(pathBytes)))
		buf.Write(pathBytes)
	}

	checksum := crc64.Checksum(buf.Bytes(), crc64ECMA)
	writeUint64(buf, checksum)

	return buf.Bytes(), nil
}

// Decode parses a framed blob back into records. It validates magic,
// version, and checksum before walking the entries.
func Decode(data []byte) ([]FileRecord, error) {
	if len(data) < minBlobSize {
		return nil, corrupted(ErrTooShort, "%d bytes", len(data))
	}

	if !bytes.Equal(data[:4], magic) {
		return nil, corrupted(ErrBadMagic, "%q", data[:4])
	}

	version := binary.BigEndian.Uint32(data[4:8])
	if version != codecVersion {
		return nil, corrupted(ErrUnsupportedVersion, "version %d", version)
	}

	dataEnd := len(data) - trailerSize
	stored := binary.BigEndian.Uint64(data[dataEnd:])
	if computed := crc64.Checksum(data[:dataEnd], crc64ECMA); stored != computed {
		return nil, corrupted(ErrChecksumMismatch, "stored %x, computed %x", stored, computed)
	}

	numEntries := binary.BigEndian.Uint32(data[8:headerSize])
	records := make([]FileRecord, 0, numEntries)

	body := data[headerSize:dataEnd]
	offset := 0
	for i := uint32(0); i < numEntries; i++ {
		if offset+entryFixed > len(body) {
			return nil, corrupted(ErrTruncated, "entry %d", i)
		}

		size := binary.BigEndian.Uint64(body[offset : offset+8])
		modified := binary.BigEndian.Uint64(body[offset+8 : offset+16])
		pathLen := int(binary.BigEndian.Uint16(body[offset+16 : offset+18]))
		offset += entryFixed

		if offset+pathLen > len(body) {
			return nil, corrupted(ErrTruncated, "path of entry %d", i)
		}

		pathBytes := body[offset : offset+pathLen]
		if !utf8.Valid(pathBytes) {
			return nil, corrupted(ErrInvalidUTF8, "entry %d", i)
		}
		offset += pathLen

		records = append(records, FileRecord{
			Path:         string(pathBytes),
			Size:         size,
			ModifiedTime: modified,
		})
	}

	return records, nil
}

func corrupted(reason error, format string, args ...any) error {
	return errors.Wrap(errors.KindCorrupted, reason, format, args...)
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
