package journal

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const headerSize = 2

// Coder frames journal records on a byte stream.
type Coder interface {
	Encode(*structpb.Struct) ([]byte, error)
	Decode(io.Reader) (*structpb.Struct, error)
}

// DefaultCoder writes each record as protobuf prefixed by a 2-byte
// big-endian length.
type DefaultCoder struct{}

func (c DefaultCoder) Encode(rec *structpb.Struct) ([]byte, error) {
	out, err := proto.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if len(out) > math.MaxUint16 {
		return nil, fmt.Errorf("record of %d bytes exceeds frame limit %d", len(out), math.MaxUint16)
	}
	hdr := make([]byte, headerSize)
	binary.BigEndian.PutUint16(hdr, uint16(len(out)))
	return append(hdr, out...), nil
}

// Decode returns io.EOF only when the stream ends cleanly between records.
func (c DefaultCoder) Decode(r io.Reader) (*structpb.Struct, error) {
	headerBuf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	msgLength := binary.BigEndian.Uint16(headerBuf)
	msgBuf := make([]byte, int(msgLength))
	if _, err := io.ReadFull(r, msgBuf); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}

	rec := &structpb.Struct{}
	if err := proto.Unmarshal(msgBuf, rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}
