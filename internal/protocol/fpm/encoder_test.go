package fpm

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_GetImageLiteral(t *testing.T) {
	want := []byte{0xEF, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x03, 0x01, 0x00, 0x05}
	assert.Equal(t, want, Encode(CmdGetImage, nil))
	assert.Equal(t, want, BuildGetImage())
}

func TestBuilders(t *testing.T) {
	tests := []struct {
		name string
		got  []byte
		want []byte
	}{
		{
			name: "休眠",
			got:  BuildSleep(),
			want: []byte{0xEF, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x03, 0x33, 0x00, 0x37},
		},
		{
			name: "芯片序列号",
			got:  BuildGetChipSN(),
			want: []byte{0xEF, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x04, 0x34, 0x00, 0x00, 0x39},
		},
		{
			name: "合并特征",
			got:  BuildRegModel(),
			want: []byte{0xEF, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x03, 0x05, 0x00, 0x09},
		},
		{
			name: "有效模板个数",
			got:  BuildValidTemplateNum(),
			want: []byte{0xEF, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x03, 0x1D, 0x00, 0x21},
		},
		{
			name: "生成特征 buffer1",
			got:  BuildGenChar(1),
			want: []byte{0xEF, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x04, 0x02, 0x01, 0x00, 0x08},
		},
		{
			name: "储存模板 page1",
			got:  BuildStoreChar(1, 1),
			want: []byte{0xEF, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x06, 0x06, 0x01, 0x00, 0x01, 0x00, 0x0F},
		},
		{
			name: "安全等级0",
			got:  BuildSetSecurityLevel(0),
			want: []byte{0xEF, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x05, 0x0E, 0x07, 0x00, 0x00, 0x1B},
		},
		{
			name: "全库搜索",
			got:  BuildSearch(1, SearchStartPage, SearchPageCount),
			want: []byte{0xEF, 0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00, 0x08, 0x04, 0x01, 0x00, 0x00, 0xFF, 0xFF, 0x02, 0x0C},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !bytes.Equal(tt.got, tt.want) {
				t.Errorf("frame = % X, want % X", tt.got, tt.want)
			}
		})
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	codes := []byte{CmdGetImage, CmdGenChar, CmdSearch, CmdRegModel, CmdStoreChar, CmdWriteReg, CmdValidTemplateNum, CmdSleep, CmdGetChipSN}

	for _, code := range codes {
		for v := 0; v <= 0xFF; v++ {
			params := []byte{byte(v), byte(0xFF - v), byte(v)}
			frame := Encode(code, params)

			f, err := Decode(frame)
			require.NoError(t, err)
			require.NoError(t, f.Validate())
			assert.Equal(t, code, f.Code)
			assert.Equal(t, params, f.Params)
			assert.True(t, f.IsCommand())

			// 独立重算校验和
			var sum uint16
			for _, b := range frame[6 : len(frame)-2] {
				sum += uint16(b)
			}
			assert.Equal(t, sum, binary.BigEndian.Uint16(frame[len(frame)-2:]))
		}
	}
}

func TestEncodeDecode_NoParams(t *testing.T) {
	f, err := Decode(Encode(CmdSleep, nil))
	require.NoError(t, err)
	assert.Equal(t, CmdSleep, f.Code)
	assert.Empty(t, f.Params)
	assert.Equal(t, uint16(3), f.Length)
}

func TestChecksum_Overflow(t *testing.T) {
	params := bytes.Repeat([]byte{0xFF}, 300)
	frame := Encode(CmdGetImage, params)

	f, err := Decode(frame)
	require.NoError(t, err)
	assert.NoError(t, f.Validate())
	assert.Equal(t, Checksum(PIDCommand, uint16(len(params)+3), CmdGetImage, params), f.Checksum)
}
