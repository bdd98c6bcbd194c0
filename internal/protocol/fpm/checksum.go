package fpm

import "errors"

var (
	// ErrChecksumMismatch 校验和错误
	ErrChecksumMismatch = errors.New("fpm: checksum mismatch")
	// ErrBadHeader 包头错误
	ErrBadHeader = errors.New("fpm: bad header")
)

// Checksum 计算校验和
// 从包标识开始累加到参数结束，溢出丢弃高位
func Checksum(pid byte, length uint16, code byte, params []byte) uint16 {
	sum := uint16(pid) + length>>8 + length&0xFF + uint16(code)
	for _, b := range params {
		sum += uint16(b)
	}
	return sum
}

// Validate 校验包头与校验和
// Decode 本身不做这两项检查
func (f *Frame) Validate() error {
	if f.header != Magic {
		return ErrBadHeader
	}
	if int(f.Length) != len(f.Params)+3 {
		return ErrMalformedResponse
	}
	if Checksum(f.PID, f.Length, f.Code, f.Params) != f.Checksum {
		return ErrChecksumMismatch
	}
	return nil
}
