package fpm

import (
	"encoding/binary"
	"errors"
)

// ErrMalformedResponse 应答长度不足
var ErrMalformedResponse = errors.New("fpm: malformed response")

// Decode 按固定布局解析一帧
// 只检查长度；包头、地址、校验和由 Validate 负责
func Decode(b []byte) (*Frame, error) {
	if len(b) < MinFrameSize {
		return nil, ErrMalformedResponse
	}
	total, ok := FrameLength(b)
	if !ok || len(b) < total {
		return nil, ErrMalformedResponse
	}

	f := &Frame{
		PID:    b[6],
		Length: binary.BigEndian.Uint16(b[7:9]),
		Code:   b[9],
	}
	copy(f.header[:], b[0:2])
	copy(f.Address[:], b[2:6])

	params := b[10 : total-2]
	if len(params) > 0 {
		f.Params = append([]byte(nil), params...)
	}
	f.Checksum = binary.BigEndian.Uint16(b[total-2 : total])
	return f, nil
}
