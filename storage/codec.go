package storage

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v4"
)

func init() {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(2), zstd.WithDecoderLowmem(true))
	if err != nil {
		panic(err)
	}
	zstdEncoder, zstdDecoder = enc, dec
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder

	CompressionVersionZero   = []byte{0, 0, 0, 0}
	CompressionVersionLatest = CompressionVersionZero
)

func compress(b []byte) []byte {
	out := append([]byte{}, CompressionVersionLatest...)
	return zstdEncoder.EncodeAll(b, out)
}

func decompress(b []byte) ([]byte, error) {
	header := len(CompressionVersionLatest)
	if len(b) < header {
		return nil, fmt.Errorf("decompress invalid data size %d", len(b))
	}
	if !bytes.Equal(b[:header], CompressionVersionZero) {
		return nil, fmt.Errorf("decompress invalid version %x", b[:header])
	}
	return zstdDecoder.DecodeAll(b[header:], nil)
}

func msgpackMarshal(val interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf).UseCompactEncoding(true).SortMapKeys(true)
	err := enc.Encode(val)
	return buf.Bytes(), err
}

func msgpackUnmarshal(data []byte, val interface{}) error {
	return msgpack.Unmarshal(data, val)
}
