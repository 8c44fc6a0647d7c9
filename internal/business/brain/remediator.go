package brain

import (
	"context"
	"fmt"
	"time"

	"healthbrain/common/model"
	"healthbrain/pkg/logger"
)

// 内置修复动作名
const (
	MutationPurgeExpiredOTP      = "purge_expired_otp_sessions"
	MutationDisableExpiredCoupon = "disable_expired_coupons"
	MutationDeactivateBanned     = "deactivate_banned_members"
)

// Mutation 幂等修复动作
// Apply 只作用于过滤条件命中的行，重复执行第二次返回 0；Describe 根据影响行数生成描述
type Mutation struct {
	Name     string
	Title    string
	Describe func(rows int64) string
	Apply    func(ctx context.Context, r Remediation, now time.Time) (int64, error)
}

// BuiltinMutations 内置修复动作
func BuiltinMutations() []Mutation {
	return []Mutation{
		{
			Name:  MutationPurgeExpiredOTP,
			Title: "Purged expired OTP sessions",
			Describe: func(rows int64) string {
				return fmt.Sprintf("Deleted %d expired OTP session(s)", rows)
			},
			Apply: func(ctx context.Context, r Remediation, now time.Time) (int64, error) {
				return r.DeleteExpiredOTPSessions(ctx, now)
			},
		},
		{
			Name:  MutationDisableExpiredCoupon,
			Title: "Disabled expired coupons",
			Describe: func(rows int64) string {
				return fmt.Sprintf("Deactivated %d coupon(s) past their validity date", rows)
			},
			Apply: func(ctx context.Context, r Remediation, now time.Time) (int64, error) {
				return r.DeactivateExpiredCoupons(ctx, now)
			},
		},
		{
			Name:  MutationDeactivateBanned,
			Title: "Deactivated banned room members",
			Describe: func(rows int64) string {
				return fmt.Sprintf("Deactivated %d banned member(s) that were still active", rows)
			},
			Apply: func(ctx context.Context, r Remediation, _ time.Time) (int64, error) {
				return r.DeactivateBannedMembers(ctx)
			},
		},
	}
}

// RemediationOutcome 修复阶段输出
// Applied 为执行成功的动作名（含影响 0 行）
type RemediationOutcome struct {
	Actions []model.Action
	Applied []string
	Failed  []string
}

// Remediator 顺序执行修复动作
type Remediator struct {
	target    Remediation
	mutations []Mutation
	logger    logger.Logger
	recorder  Recorder
}

// NewRemediator 创建修复器，mutations 为空时使用内置动作
func NewRemediator(target Remediation, mutations []Mutation, log logger.Logger, recorder Recorder) *Remediator {
	if len(mutations) == 0 {
		mutations = BuiltinMutations()
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Remediator{target: target, mutations: mutations, logger: log, recorder: recorder}
}

// Run 执行全部修复动作
// 单个动作失败记录日志后继续；仅当影响行数 > 0 时产出 auto_fix Action
func (r *Remediator) Run(ctx context.Context, now time.Time) *RemediationOutcome {
	outcome := &RemediationOutcome{Actions: make([]model.Action, 0)}

	for _, m := range r.mutations {
		rows, err := r.apply(ctx, m, now)
		if err != nil {
			r.logger.Errorf(ctx, "[Remediator] mutation %s failed: %v", m.Name, err)
			outcome.Failed = append(outcome.Failed, m.Name)
			continue
		}

		r.logger.Infof(ctx, "[Remediator] mutation %s affected %d row(s)", m.Name, rows)
		outcome.Applied = append(outcome.Applied, m.Name)
		if rows <= 0 {
			continue
		}
		r.recorder.Remediated(m.Name, rows)

		action := newAction(now, model.ActionTypeAutoFix, model.SeveritySuccess,
			m.Title, m.Describe(rows), model.NewRemediationEvidence(m.Name, rows))
		action.AutoExecuted = true
		outcome.Actions = append(outcome.Actions, action)
	}

	return outcome
}

// apply 执行单个动作，panic 视为失败
func (r *Remediator) apply(ctx context.Context, m Mutation, now time.Time) (rows int64, err error) {
	defer func() {
		if p := recover(); p != nil {
			rows, err = 0, fmt.Errorf("panic: %v", p)
		}
	}()
	return m.Apply(ctx, r.target, now)
}
