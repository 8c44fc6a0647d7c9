package brain

import (
	"time"

	"healthbrain/common/model"
)

// Recorder 运行指标上报
type Recorder interface {
	ObserveRun(outcome string, d time.Duration)
	ObserveReport(r *model.Report)
	RuleFailed(rule string)
	Remediated(mutation string, rows int64)
	NarrativeFallback()
}

// 运行结果
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// NopRecorder 不上报
type NopRecorder struct{}

func (NopRecorder) ObserveRun(string, time.Duration) {}
func (NopRecorder) ObserveReport(*model.Report)      {}
func (NopRecorder) RuleFailed(string)                {}
func (NopRecorder) Remediated(string, int64)         {}
func (NopRecorder) NarrativeFallback()               {}
