package feedback

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// 提示事件
const (
	EventKey     = "key"     // 按键音
	EventGranted = "granted" // 开锁
	EventDenied  = "denied"  // 拒绝
	EventEnroll  = "enroll"  // 进入录入
	EventLift    = "lift"    // 请拿开手指
	EventPlace   = "place"   // 请再次放置手指
)

// ToneMap 提示事件 -> 语音模块曲目编号
type ToneMap struct {
	Tones map[string]uint8 `yaml:"tones"`
}

// DefaultToneMap 默认曲目表
func DefaultToneMap() *ToneMap {
	return &ToneMap{
		Tones: map[string]uint8{
			EventKey:     11,
			EventGranted: 20,
			EventDenied:  21,
			EventEnroll:  22,
			EventLift:    23,
			EventPlace:   24,
		},
	}
}

// LoadToneMap 读取 YAML 曲目表，与默认表合并
func LoadToneMap(path string) (*ToneMap, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tone map: %w", err)
	}
	var m ToneMap
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal tone map: %w", err)
	}
	out := DefaultToneMap()
	out.Merge(&m)
	return out, nil
}

// Tone 查找事件曲目
func (m *ToneMap) Tone(event string) (uint8, bool) {
	if m == nil || m.Tones == nil {
		return 0, false
	}
	v, ok := m.Tones[event]
	return v, ok
}

// Merge 合并另一张表，后者覆盖
func (m *ToneMap) Merge(other *ToneMap) {
	if m == nil || other == nil || other.Tones == nil {
		return
	}
	if m.Tones == nil {
		m.Tones = make(map[string]uint8)
	}
	for k, v := range other.Tones {
		m.Tones[k] = v
	}
}
