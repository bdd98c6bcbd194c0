package fpm

import "encoding/binary"

// Encode 构造命令包（默认地址）
func Encode(code byte, params []byte) []byte {
	return EncodeFrame(&Frame{
		Address: BroadcastAddress,
		PID:     PIDCommand,
		Code:    code,
		Params:  params,
	})
}

// EncodeFrame 按 Frame 字段构造完整帧，Length 与 Checksum 自动计算
func EncodeFrame(f *Frame) []byte {
	length := uint16(1 + len(f.Params) + 2)
	buf := make([]byte, 0, HeaderSize+int(length))

	// 包头
	buf = append(buf, Magic[:]...)
	// 设备地址
	buf = append(buf, f.Address[:]...)
	// 包标识
	buf = append(buf, f.PID)
	// 包长度
	buf = binary.BigEndian.AppendUint16(buf, length)
	// 指令码/确认码
	buf = append(buf, f.Code)
	// 参数
	buf = append(buf, f.Params...)
	// 校验和
	buf = binary.BigEndian.AppendUint16(buf, Checksum(f.PID, length, f.Code, f.Params))

	return buf
}

// EncodeAck 构造应答包（模拟器与测试使用）
func EncodeAck(status Status, payload []byte) []byte {
	return EncodeFrame(&Frame{
		Address: BroadcastAddress,
		PID:     PIDAck,
		Code:    byte(status),
		Params:  payload,
	})
}
