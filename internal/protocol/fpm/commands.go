package fpm

import "encoding/binary"

// 搜索全部指纹库
const (
	SearchStartPage uint16 = 0x0000
	SearchPageCount uint16 = 0xFFFF
)

// DefaultBufferID 识别与存储使用的特征缓冲区
const DefaultBufferID byte = 0x01

// BuildGetImage 录入图像
func BuildGetImage() []byte {
	return Encode(CmdGetImage, nil)
}

// BuildGenChar 图像生成特征，存于 bufferID 缓冲区
func BuildGenChar(bufferID byte) []byte {
	return Encode(CmdGenChar, []byte{bufferID})
}

// BuildSearch 以 bufferID 中的特征搜索指纹库
func BuildSearch(bufferID byte, startPage, pageCount uint16) []byte {
	params := make([]byte, 0, 5)
	params = append(params, bufferID)
	params = binary.BigEndian.AppendUint16(params, startPage)
	params = binary.BigEndian.AppendUint16(params, pageCount)
	return Encode(CmdSearch, params)
}

// BuildRegModel 合并特征生成模板
func BuildRegModel() []byte {
	return Encode(CmdRegModel, nil)
}

// BuildStoreChar 将 bufferID 中的模板存到 pageID
func BuildStoreChar(bufferID byte, pageID uint16) []byte {
	params := make([]byte, 0, 3)
	params = append(params, bufferID)
	params = binary.BigEndian.AppendUint16(params, pageID)
	return Encode(CmdStoreChar, params)
}

// BuildWriteReg 写系统寄存器
func BuildWriteReg(reg, value byte) []byte {
	return Encode(CmdWriteReg, []byte{reg, value})
}

// BuildSetSecurityLevel 设置安全等级
func BuildSetSecurityLevel(level byte) []byte {
	return BuildWriteReg(RegSecurityLevel, level)
}

// BuildValidTemplateNum 读有效模板个数
func BuildValidTemplateNum() []byte {
	return Encode(CmdValidTemplateNum, nil)
}

// BuildSleep 休眠
func BuildSleep() []byte {
	return Encode(CmdSleep, nil)
}

// BuildGetChipSN 获取芯片序列号
func BuildGetChipSN() []byte {
	return Encode(CmdGetChipSN, []byte{0x00})
}
