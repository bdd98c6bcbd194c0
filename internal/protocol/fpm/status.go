package fpm

import "fmt"

// Status 应答确认码
type Status byte

const (
	StatusOK                 Status = 0x00 // 指令执行完毕或 OK
	StatusPacketError        Status = 0x01 // 数据包接收错误
	StatusNoFinger           Status = 0x02 // 传感器上没有手指
	StatusImageMessy         Status = 0x06 // 指纹图像太乱而生不成特征
	StatusFewFeatures        Status = 0x07 // 特征点太少而生不成特征
	StatusFeatureUnrelated   Status = 0x08 // 当前指纹特征与之前特征之间无关联
	StatusNotFound           Status = 0x09 // 没搜索到指纹
	StatusMergeFailed        Status = 0x0A // 合并失败
	StatusPageOutOfRange     Status = 0x0B // PageID 超出指纹库范围
	StatusNoValidImage       Status = 0x15 // 图像缓冲区内没有有效原始图
	StatusResidualPrint      Status = 0x17 // 残留指纹或两次采集之间手指没有移动过
	StatusFlashError         Status = 0x18 // 读写 FLASH 出错
	StatusRegisterIndex      Status = 0x1A // 寄存器序号错误
	StatusRegisterContent    Status = 0x1B // 寄存器设定内容错误
	StatusFeatureRelated     Status = 0x28 // 当前指纹特征与之前特征之间有关联
	StatusEncryptionMismatch Status = 0x31 // 功能与加密等级不匹配

	// StatusNoResponse 本地哨兵值：没有收到有效应答，不会出现在模组应答中
	StatusNoResponse Status = 0xFF
)

// OK 是否成功
func (s Status) OK() bool {
	return s == StatusOK
}

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPacketError:
		return "packet receive error"
	case StatusNoFinger:
		return "no finger on sensor"
	case StatusImageMessy:
		return "image too messy"
	case StatusFewFeatures:
		return "too few feature points"
	case StatusFeatureUnrelated:
		return "feature unrelated to previous"
	case StatusNotFound:
		return "no match found"
	case StatusMergeFailed:
		return "merge failed"
	case StatusPageOutOfRange:
		return "page id out of range"
	case StatusNoValidImage:
		return "no valid image in buffer"
	case StatusResidualPrint:
		return "residual print or finger not lifted"
	case StatusFlashError:
		return "flash read/write error"
	case StatusRegisterIndex:
		return "register index error"
	case StatusRegisterContent:
		return "register content error"
	case StatusFeatureRelated:
		return "feature related to previous"
	case StatusEncryptionMismatch:
		return "encryption level mismatch"
	case StatusNoResponse:
		return "no response"
	default:
		return fmt.Sprintf("unknown status 0x%02X", byte(s))
	}
}

// Describe 指令相关的确认码含义
// 同一个确认码在不同指令下含义不同，未特殊说明的按通用含义
func Describe(code byte, s Status) string {
	switch {
	case code == CmdGenChar && s == StatusMergeFailed:
		return "feature merge failed"
	case code == CmdSearch && s == StatusResidualPrint:
		return "residual print"
	case code == CmdWriteReg && s == StatusFlashError:
		return "flash write error while saving register"
	}
	return s.String()
}

// StatusError 指令返回非零确认码
type StatusError struct {
	Code   byte
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %s (0x%02X)", CommandName(e.Code), Describe(e.Code, e.Status), byte(e.Status))
}

// IsStatusError 判断是否为 StatusError
func IsStatusError(err error) bool {
	_, ok := err.(*StatusError)
	return ok
}
