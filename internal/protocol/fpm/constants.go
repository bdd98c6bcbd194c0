// Package fpm 指纹模组（EF01 帧协议）编解码
//
// 帧格式：EF01(2) + 地址(4) + 包标识(1) + 包长度(2) + 指令码/确认码(1) + 参数(n) + 校验和(2)
// 包长度 = 指令码(1) + 参数(n) + 校验和(2)，大端
// 校验和 = 包标识 + 包长度 + 指令码 + 参数，累加取低16位，大端
package fpm

import "time"

// 包标识
const (
	PIDCommand byte = 0x01 // 命令包
	PIDData    byte = 0x02 // 数据包（有后续包）
	PIDAck     byte = 0x07 // 应答包
	PIDDataEnd byte = 0x08 // 最后一个数据包
)

// 指令码
const (
	CmdGetImage         byte = 0x01 // 录入图像 PS_GetImage
	CmdGenChar          byte = 0x02 // 生成特征 PS_GenChar
	CmdSearch           byte = 0x04 // 搜索指纹 PS_Search
	CmdRegModel         byte = 0x05 // 合并特征 PS_RegModel
	CmdStoreChar        byte = 0x06 // 储存模板 PS_StoreChar
	CmdWriteReg         byte = 0x0E // 写系统寄存器 PS_WriteReg
	CmdValidTemplateNum byte = 0x1D // 读有效模板个数 PS_ValidTempleteNum
	CmdSleep            byte = 0x33 // 休眠 PS_Sleep
	CmdGetChipSN        byte = 0x34 // 获取芯片序列号 PS_GetChipSN
)

// 系统寄存器序号
const (
	RegSecurityLevel byte = 0x07 // 安全等级
)

const (
	// HeaderSize 包头到包长度（含）的字节数
	HeaderSize = 9
	// MinFrameSize 最小帧：包头(9) + 指令码/确认码(1) + 校验和(2)
	MinFrameSize = HeaderSize + 1 + 2
	// SerialNumberSize 芯片序列号长度
	SerialNumberSize = 32
)

var (
	// Magic 包头
	Magic = [2]byte{0xEF, 0x01}
	// BroadcastAddress 默认设备地址
	BroadcastAddress = [4]byte{0xFF, 0xFF, 0xFF, 0xFF}
)

// 应答超时
const (
	QuickTimeout = 100 * time.Millisecond
	SlowTimeout  = 500 * time.Millisecond
)

// TimeoutFor 返回指令对应的应答等待时间
// 图像处理、合并、写 flash、搜索在模组内部耗时较长，必须使用长超时
func TimeoutFor(code byte) time.Duration {
	switch code {
	case CmdGetChipSN, CmdSleep, CmdGetImage, CmdWriteReg, CmdValidTemplateNum:
		return QuickTimeout
	case CmdGenChar, CmdRegModel, CmdStoreChar, CmdSearch:
		return SlowTimeout
	default:
		return SlowTimeout
	}
}

// CommandName 指令名称（日志与指标标签）
func CommandName(code byte) string {
	switch code {
	case CmdGetImage:
		return "get_image"
	case CmdGenChar:
		return "gen_char"
	case CmdSearch:
		return "search"
	case CmdRegModel:
		return "reg_model"
	case CmdStoreChar:
		return "store_char"
	case CmdWriteReg:
		return "write_reg"
	case CmdValidTemplateNum:
		return "valid_template_num"
	case CmdSleep:
		return "sleep"
	case CmdGetChipSN:
		return "get_chip_sn"
	default:
		return "unknown"
	}
}
