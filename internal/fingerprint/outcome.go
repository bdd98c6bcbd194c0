package fingerprint

import "errors"

var (
	// ErrCaptureTimeout 录入过程中 5 秒内没有完成一次采集
	ErrCaptureTimeout = errors.New("fingerprint: enroll capture timeout")
	// ErrEnrollFailed 采集完成后合并/读数/存储失败
	ErrEnrollFailed = errors.New("fingerprint: enroll failed")
	// ErrIdentifyFailed 识别任一步骤失败
	ErrIdentifyFailed = errors.New("fingerprint: identify failed")
)

// Outcome 录入/识别流程结果
type Outcome int

const (
	OutcomeSuccess      Outcome = iota // 成功
	OutcomeFailure                     // 识别失败
	OutcomeTimeout                     // 录入采集超时
	OutcomeEnrollFailed                // 录入失败
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeEnrollFailed:
		return "enroll_failed"
	default:
		return "unknown"
	}
}

// OK 是否成功
func (o Outcome) OK() bool {
	return o == OutcomeSuccess
}

// Err 对应的错误，成功返回 nil
func (o Outcome) Err() error {
	switch o {
	case OutcomeSuccess:
		return nil
	case OutcomeTimeout:
		return ErrCaptureTimeout
	case OutcomeEnrollFailed:
		return ErrEnrollFailed
	default:
		return ErrIdentifyFailed
	}
}
