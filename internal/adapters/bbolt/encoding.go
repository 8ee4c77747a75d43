// Binary encoding for keyword dictionary blobs.
//
// Keyword list format (little-endian):
//
//	version:  uint8 (formatVersion)
//	count:    uint32
//	per keyword:
//	  len:    uint16
//	  bytes:  [len]byte
//
// Dictionary metadata (timestamps, source file) is small and gob-encoded.
package bbolt

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
)

const (
	formatVersion = 1
	headerSize    = 5 // version + count
	maxKeywordLen = 65535
)

// encodeKeywords encodes a keyword list to the compact binary format.
// Order is preserved. A single buffer is pre-allocated to avoid repeated
// growth.
func encodeKeywords(keywords []string) ([]byte, error) {
	totalSize := headerSize
	for i, kw := range keywords {
		if len(kw) > maxKeywordLen {
			return nil, fmt.Errorf("keyword %d too long: %d bytes", i, len(kw))
		}
		totalSize += 2 + len(kw)
	}

	buf := make([]byte, totalSize)
	buf[0] = formatVersion
	binary.LittleEndian.PutUint32(buf[1:], uint32(len(keywords)))
	offset := headerSize

	for _, kw := range keywords {
		binary.LittleEndian.PutUint16(buf[offset:], uint16(len(kw)))
		offset += 2
		copy(buf[offset:], kw)
		offset += len(kw)
	}
	return buf, nil
}

// decodeKeywords decodes a binary keyword list.
// Every read is bounds-checked to avoid panics on corrupt data.
func decodeKeywords(data []byte) ([]string, error) {
	count, err := keywordCount(data)
	if err != nil {
		return nil, err
	}

	// Each keyword takes at least its 2-byte length, so a corrupt count
	// cannot ask for more capacity than the blob could hold.
	offset := headerSize
	keywords := make([]string, 0, min(count, (len(data)-headerSize)/2))
	for i := 0; i < count; i++ {
		if offset+2 > len(data) {
			return nil, fmt.Errorf("truncated at keyword %d length (offset %d)", i, offset)
		}
		n := int(binary.LittleEndian.Uint16(data[offset:]))
		offset += 2

		if offset+n > len(data) {
			return nil, fmt.Errorf("truncated at keyword %d (offset %d, need %d)", i, offset, n)
		}
		keywords = append(keywords, string(data[offset:offset+n]))
		offset += n
	}
	if offset != len(data) {
		return nil, fmt.Errorf("trailing bytes after %d keywords: %d", count, len(data)-offset)
	}
	return keywords, nil
}

// keywordCount reads only the header of an encoded keyword list.
func keywordCount(data []byte) (int, error) {
	if len(data) < headerSize {
		return 0, fmt.Errorf("keyword list too short: %d bytes", len(data))
	}
	if data[0] != formatVersion {
		return 0, fmt.Errorf("unsupported keyword list version %d", data[0])
	}
	return int(binary.LittleEndian.Uint32(data[1:])), nil
}

// encodeGob encodes a value using gob.
func encodeGob(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob decodes gob-encoded data into target. Target must be a pointer.
func decodeGob(data []byte, target any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(target)
}
