package fpm

import "encoding/binary"

// Frame 指纹模组协议帧
// 命令包中 Code 为指令码、Params 为参数；应答包中 Code 为确认码、Params 为返回数据
type Frame struct {
	Address  [4]byte
	PID      byte
	Length   uint16 // Code(1) + Params(n) + Checksum(2)
	Code     byte
	Params   []byte
	Checksum uint16

	header [2]byte
}

// IsCommand 判断是否为命令包
func (f *Frame) IsCommand() bool {
	return f.PID == PIDCommand
}

// IsAck 判断是否为应答包
func (f *Frame) IsAck() bool {
	return f.PID == PIDAck
}

// Status 应答包确认码
func (f *Frame) Status() Status {
	return Status(f.Code)
}

// Payload 应答包确认码之后的数据
func (f *Frame) Payload() []byte {
	return f.Params
}

// FrameLength 根据包头计算完整帧长度
// header 至少需要 HeaderSize 字节，否则返回 false
func FrameLength(header []byte) (int, bool) {
	if len(header) < HeaderSize {
		return 0, false
	}
	length := int(binary.BigEndian.Uint16(header[7:9]))
	if length < 3 {
		return 0, false
	}
	return HeaderSize + length, true
}

// CommandCode 取编码后命令帧的指令码，帧过短返回 0
func CommandCode(frame []byte) byte {
	if len(frame) < MinFrameSize {
		return 0
	}
	return frame[HeaderSize]
}
