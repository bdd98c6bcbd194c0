package fpm

import (
	"encoding/binary"
	"errors"
	"strings"
)

// ErrShortPayload 返回数据不足
var ErrShortPayload = errors.New("fpm: short payload")

// SerialNumber 解析芯片序列号（最多 32 字节 ASCII，去掉末尾 NUL）
func SerialNumber(payload []byte) string {
	if len(payload) > SerialNumberSize {
		payload = payload[:SerialNumberSize]
	}
	return strings.TrimRight(string(payload), "\x00 ")
}

// TemplateCount 解析有效模板个数（2 字节大端）
func TemplateCount(payload []byte) (uint16, error) {
	if len(payload) < 2 {
		return 0, ErrShortPayload
	}
	return binary.BigEndian.Uint16(payload[:2]), nil
}

// SearchResult 搜索命中结果：页码 + 得分
type SearchResult struct {
	PageID uint16
	Score  uint16
}

// ParseSearchResult 解析搜索返回数据
func ParseSearchResult(payload []byte) (SearchResult, error) {
	if len(payload) < 4 {
		return SearchResult{}, ErrShortPayload
	}
	return SearchResult{
		PageID: binary.BigEndian.Uint16(payload[0:2]),
		Score:  binary.BigEndian.Uint16(payload[2:4]),
	}, nil
}
