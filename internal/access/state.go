package access

import "fmt"

// StateKind 状态类别
type StateKind int

const (
	StateIdle                 StateKind = iota // 空闲
	StateAwaitingMorePassword                  // 已输入部分密码
	StateEnrollTriggerPending                  // 已按下 1~2 次 '#'
)

// State 门禁状态
type State struct {
	Kind     StateKind
	Length   int // 已输入位数
	Triggers int // 连续 '#' 次数
}

func (s State) String() string {
	switch s.Kind {
	case StateAwaitingMorePassword:
		return fmt.Sprintf("AwaitingMorePassword(%d)", s.Length)
	case StateEnrollTriggerPending:
		return fmt.Sprintf("EnrollTriggerPending(%d)", s.Triggers)
	default:
		return "Idle"
	}
}

// State 当前状态；数字键清零 '#' 计数，'#' 清空输入，二者不会同时非零
func (cc *ControllerContext) State() State {
	length, triggers := cc.snapshot()
	switch {
	case length > 0:
		return State{Kind: StateAwaitingMorePassword, Length: length}
	case triggers > 0:
		return State{Kind: StateEnrollTriggerPending, Triggers: triggers}
	default:
		return State{Kind: StateIdle}
	}
}
