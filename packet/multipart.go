package packet

import (
	"bytes"
	"encoding/binary"
)

// MultipartMessage is one chunk of a message as laid out on the wire.
//
//	0      version
//	1      type
//	2-3    chunk count
//	4-5    chunk index
//	6-7    chunk size
//	8-11   message id
//	12-15  message length
//	16-19  message checksum
//	20-21  tag block length
//	22-23  reserved
//	24-    tag block, then payload
//
// All integers are big endian.
type MultipartMessage struct {
	Id        uint32
	Length    uint32
	Checksum  uint32
	ChunkSize uint16
	Count     uint16
	Index     uint16
	Tags      []string
	Payload   []byte
}

func TagBlockSize(tags []string) int {
	size := 0
	for _, t := range tags {
		size += len(t) + 1
	}
	return size
}

// EncodeTags validates tags and returns the NUL terminated tag block, nil
// when there are no tags.
func EncodeTags(tags []string) ([]byte, error) {
	size := TagBlockSize(tags)
	if size == 0 {
		return nil, nil
	}
	if size > MaxTagBlockSize {
		return nil, ErrTagBlockTooLarge
	}
	block := make([]byte, 0, size)
	for _, t := range tags {
		if len(t) == 0 || bytes.IndexByte([]byte(t), 0) >= 0 {
			return nil, ErrInvalidTag
		}
		block = append(block, t...)
		block = append(block, 0)
	}
	return block, nil
}

func decodeTags(block []byte) ([]string, error) {
	if len(block) == 0 {
		return nil, nil
	}
	if block[len(block)-1] != 0 {
		return nil, ErrInvalidTagBlock
	}
	parts := bytes.Split(block[:len(block)-1], []byte{0})
	tags := make([]string, len(parts))
	for i, p := range parts {
		if len(p) == 0 {
			return nil, ErrInvalidTagBlock
		}
		tags[i] = string(p)
	}
	return tags, nil
}

// Encode expects the tags to be valid already, see EncodeTags.
func (m *MultipartMessage) Encode() []byte {
	tagLen := TagBlockSize(m.Tags)
	buf := make([]byte, MultipartHeaderSize, MultipartHeaderSize+tagLen+len(m.Payload))

	buf[0] = ProtocolVersion
	buf[1] = TypeMultipartMessage
	binary.BigEndian.PutUint16(buf[2:4], m.Count)
	binary.BigEndian.PutUint16(buf[4:6], m.Index)
	binary.BigEndian.PutUint16(buf[6:8], m.ChunkSize)
	binary.BigEndian.PutUint32(buf[8:12], m.Id)
	binary.BigEndian.PutUint32(buf[12:16], m.Length)
	binary.BigEndian.PutUint32(buf[16:20], m.Checksum)
	binary.BigEndian.PutUint16(buf[20:22], uint16(tagLen))

	for _, t := range m.Tags {
		buf = append(buf, t...)
		buf = append(buf, 0)
	}
	return append(buf, m.Payload...)
}

// ParseMultipartMessage decodes a datagram, the payload aliases b.
func ParseMultipartMessage(b []byte) (*MultipartMessage, error) {
	if len(b) < MultipartHeaderSize {
		return nil, ErrInvalidHeader
	}
	typ, err := Type(b)
	if err != nil {
		return nil, err
	}
	if typ != TypeMultipartMessage {
		return nil, ErrInvalidType
	}

	m := &MultipartMessage{
		Count:     binary.BigEndian.Uint16(b[2:4]),
		Index:     binary.BigEndian.Uint16(b[4:6]),
		ChunkSize: binary.BigEndian.Uint16(b[6:8]),
		Id:        binary.BigEndian.Uint32(b[8:12]),
		Length:    binary.BigEndian.Uint32(b[12:16]),
		Checksum:  binary.BigEndian.Uint32(b[16:20]),
	}
	if m.Count == 0 || m.Index >= m.Count {
		return nil, ErrInvalidHeader
	}

	tagLen := int(binary.BigEndian.Uint16(b[20:22]))
	if MultipartHeaderSize+tagLen > len(b) {
		return nil, ErrInvalidTagBlock
	}
	m.Tags, err = decodeTags(b[MultipartHeaderSize : MultipartHeaderSize+tagLen])
	if err != nil {
		return nil, err
	}
	m.Payload = b[MultipartHeaderSize+tagLen:]
	return m, nil
}
