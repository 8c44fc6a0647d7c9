package brain

import (
	"context"
	"fmt"

	"healthbrain/common/model"
)

// 数据完整性与清理类规则名
const (
	RuleOrphanProfiles       = "orphan_profiles"
	RuleOrphanProducts       = "orphan_products"
	RuleBannedActiveMembers  = "banned_active_members"
	RuleExpiredActiveCoupons = "expired_active_coupons"
	RuleExpiredOTPBacklog    = "expired_otp_backlog"
	RuleOTPFlood             = "otp_flood"
)

// orphanProfilesRule 没有关联登录账号的用户资料
func orphanProfilesRule(ctx context.Context, in RuleInput) ([]model.Action, error) {
	sample, err := in.Source.ProfilesWithoutAuthUser(ctx, in.Thresholds.ProductEvidenceLimit)
	if err != nil {
		return nil, err
	}
	if sample.Total == 0 {
		return nil, nil
	}

	return []model.Action{newAction(in.Now,
		model.ActionTypeMonitoring, model.SeverityWarning,
		"Profiles without a linked account",
		fmt.Sprintf("%d profile(s) have no auth_user_id; link or remove them", sample.Total),
		model.NewSampleEvidence(model.EvidenceOrphanProfile, sample.IDs, sample.Total),
	)}, nil
}

// orphanProductsRule 没有归属商家的商品
func orphanProductsRule(ctx context.Context, in RuleInput) ([]model.Action, error) {
	sample, err := in.Source.ProductsWithoutMerchant(ctx, in.Thresholds.ProductEvidenceLimit)
	if err != nil {
		return nil, err
	}
	if sample.Total == 0 {
		return nil, nil
	}

	return []model.Action{newAction(in.Now,
		model.ActionTypeMonitoring, model.SeverityWarning,
		"Products without a merchant",
		fmt.Sprintf("%d product(s) have no merchant_id", sample.Total),
		model.NewSampleEvidence(model.EvidenceOrphanProduct, sample.IDs, sample.Total),
	)}, nil
}

// bannedActiveMembersRule 已封禁但仍激活的聊天室成员，可自动修复
func bannedActiveMembersRule(ctx context.Context, in RuleInput) ([]model.Action, error) {
	sample, err := in.Source.BannedActiveMembers(ctx, in.Thresholds.ProductEvidenceLimit)
	if err != nil {
		return nil, err
	}
	if sample.Total == 0 {
		return nil, nil
	}

	action := newAction(in.Now,
		model.ActionTypeSecurity, model.SeverityWarning,
		"Banned members still active",
		fmt.Sprintf("%d banned member(s) are still active", sample.Total),
		model.NewSampleEvidence(model.EvidenceBannedMember, sample.IDs, sample.Total),
	)
	action.Fix = MutationDeactivateBanned
	return []model.Action{action}, nil
}

// expiredActiveCouponsRule 已过期但仍启用的优惠券，可自动修复
func expiredActiveCouponsRule(ctx context.Context, in RuleInput) ([]model.Action, error) {
	sample, err := in.Source.ExpiredActiveCoupons(ctx, in.Now, in.Thresholds.ProductEvidenceLimit)
	if err != nil {
		return nil, err
	}
	if sample.Total == 0 {
		return nil, nil
	}

	action := newAction(in.Now,
		model.ActionTypeMonitoring, model.SeverityInfo,
		"Expired coupons still active",
		fmt.Sprintf("%d coupon(s) are past their validity date but still active", sample.Total),
		model.NewSampleEvidence(model.EvidenceExpiredCoupon, sample.IDs, sample.Total),
	)
	action.Fix = MutationDisableExpiredCoupon
	return []model.Action{action}, nil
}

// expiredOTPBacklogRule 过期 OTP 会话堆积
func expiredOTPBacklogRule(ctx context.Context, in RuleInput) ([]model.Action, error) {
	n, err := in.Source.CountExpiredOTPSessions(ctx, in.Now)
	if err != nil {
		return nil, err
	}
	if n <= in.Thresholds.ExpiredOTPBacklog {
		return nil, nil
	}

	action := newAction(in.Now,
		model.ActionTypePerformance, model.SeverityInfo,
		"Expired OTP sessions",
		fmt.Sprintf("%d expired OTP session(s) can be cleaned up", n),
		model.NewSampleEvidence(model.EvidenceExpiredOTPBacklog, nil, n),
	)
	action.Fix = MutationPurgeExpiredOTP
	return []model.Action{action}, nil
}

// otpFloodRule 窗口内未验证 OTP 总量异常，与单号码的 otp_abuse 互补
func otpFloodRule(ctx context.Context, in RuleInput) ([]model.Action, error) {
	since := in.Now.Add(-in.Thresholds.OTPWindow)
	n, err := in.Source.CountUnverifiedOTPSessions(ctx, since)
	if err != nil {
		return nil, err
	}
	if n <= in.Thresholds.OTPFloodThreshold {
		return nil, nil
	}

	return []model.Action{newAction(in.Now,
		model.ActionTypeSecurity, model.SeverityWarning,
		"High volume of failed OTP attempts",
		fmt.Sprintf("%d unverified OTP session(s) within %s", n, humanDuration(in.Thresholds.OTPWindow)),
		model.NewSampleEvidence(model.EvidenceOTPFlood, nil, n),
	)}, nil
}
