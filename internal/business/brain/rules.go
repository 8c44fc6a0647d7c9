package brain

import (
	"context"
	"fmt"

	"healthbrain/common/model"
)

// 内置规则名
const (
	RuleNegativeBalance          = "negative_balance"
	RuleStalePendingOrders       = "stale_pending_orders"
	RuleOTPAbuse                 = "otp_abuse"
	RuleStaleWithdrawals         = "stale_withdrawals"
	RuleStaleMerchantWithdrawals = "stale_merchant_withdrawals"
	RuleLowStock                 = "low_stock"
	RuleOutOfStock               = "out_of_stock"
	RuleFraudSuspects            = "fraud_suspects"
)

// 可由运维触发的智能动作
const (
	SmartActionDisableOutOfStock   = "disable_out_of_stock"
	SmartActionNotifyLowStock      = "notify_merchants_low_stock"
	SmartActionEscalateStuckOrders = "escalate_stuck_orders"
	SmartActionFlagSuspicious      = "flag_suspicious_orders"
	SmartActionReviewWithdrawals   = "review_withdrawals"
)

// BuiltinRules 内置规则，按报告中的展示顺序排列
func BuiltinRules() []Rule {
	return []Rule{
		RuleFunc{RuleName: RuleNegativeBalance, Fn: negativeBalanceRule},
		RuleFunc{RuleName: RuleStalePendingOrders, Fn: stalePendingOrdersRule},
		RuleFunc{RuleName: RuleOTPAbuse, Fn: otpAbuseRule},
		RuleFunc{RuleName: RuleStaleWithdrawals, Fn: staleWithdrawalsRule},
		RuleFunc{RuleName: RuleStaleMerchantWithdrawals, Fn: staleMerchantWithdrawalsRule},
		RuleFunc{RuleName: RuleLowStock, Fn: lowStockRule},
		RuleFunc{RuleName: RuleOutOfStock, Fn: outOfStockRule},
		RuleFunc{RuleName: RuleFraudSuspects, Fn: fraudSuspectsRule},
		RuleFunc{RuleName: RuleOrphanProfiles, Fn: orphanProfilesRule},
		RuleFunc{RuleName: RuleOrphanProducts, Fn: orphanProductsRule},
		RuleFunc{RuleName: RuleBannedActiveMembers, Fn: bannedActiveMembersRule},
		RuleFunc{RuleName: RuleExpiredActiveCoupons, Fn: expiredActiveCouponsRule},
		RuleFunc{RuleName: RuleExpiredOTPBacklog, Fn: expiredOTPBacklogRule},
		RuleFunc{RuleName: RuleOTPFlood, Fn: otpFloodRule},
	}
}

// negativeBalanceRule 钱包可用余额为负属于数据一致性事故
func negativeBalanceRule(ctx context.Context, in RuleInput) ([]model.Action, error) {
	wallets, err := in.Source.NegativeBalances(ctx)
	if err != nil {
		return nil, err
	}
	if len(wallets) == 0 {
		return nil, nil
	}

	records := make([]model.WalletRecord, 0, len(wallets))
	for _, w := range wallets {
		records = append(records, model.WalletRecord{
			ID:                 w.ID,
			AffiliateProfileID: w.AffiliateProfileID,
			AvailableBalance:   w.AvailableBalanceSAR,
		})
	}

	return []model.Action{newAction(in.Now,
		model.ActionTypeMonitoring, model.SeverityCritical,
		"Negative wallet balances",
		fmt.Sprintf("Found %d wallet(s) with a negative available balance", len(records)),
		model.NewNegativeBalanceEvidence(records),
	)}, nil
}

// stalePendingOrdersRule 超过阈值仍为 PENDING 的订单
func stalePendingOrdersRule(ctx context.Context, in RuleInput) ([]model.Action, error) {
	before := in.Now.Add(-in.Thresholds.StaleOrderAge)
	orders, err := in.Source.StalePendingOrders(ctx, before, in.Thresholds.StaleOrderLimit)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	records := make([]model.OrderRecord, 0, len(orders))
	for _, o := range orders {
		records = append(records, model.OrderRecord{ID: o.ID, OrderNumber: o.OrderNumber, CreatedAt: o.CreatedAt})
	}

	action := newAction(in.Now,
		model.ActionTypeMonitoring, model.SeverityWarning,
		"Orders stuck in PENDING",
		fmt.Sprintf("%d order(s) pending for more than %s", len(records), humanDuration(in.Thresholds.StaleOrderAge)),
		model.NewStaleOrderEvidence(records),
	)
	action.ActionType = SmartActionEscalateStuckOrders
	return []model.Action{action}, nil
}

// otpAbuseRule 时间窗口内未验证 OTP 次数严格大于阈值的手机号
func otpAbuseRule(ctx context.Context, in RuleInput) ([]model.Action, error) {
	since := in.Now.Add(-in.Thresholds.OTPWindow)
	attempts, err := in.Source.UnverifiedOTPAttempts(ctx, since)
	if err != nil {
		return nil, err
	}

	flagged := make([]model.PhoneAttempts, 0)
	for _, a := range attempts {
		if a.Attempts > in.Thresholds.OTPMaxAttempts {
			flagged = append(flagged, a)
		}
	}
	if len(flagged) == 0 {
		return nil, nil
	}

	return []model.Action{newAction(in.Now,
		model.ActionTypeSecurity, model.SeverityWarning,
		"Suspicious OTP activity",
		fmt.Sprintf("%d phone number(s) exceeded %d unverified OTP attempts within %s",
			len(flagged), in.Thresholds.OTPMaxAttempts, humanDuration(in.Thresholds.OTPWindow)),
		model.NewOTPAbuseEvidence(flagged),
	)}, nil
}

// staleWithdrawalsRule 长时间未处理的联盟用户提现
func staleWithdrawalsRule(ctx context.Context, in RuleInput) ([]model.Action, error) {
	before := in.Now.Add(-in.Thresholds.StaleWithdrawalAge)
	rows, err := in.Source.StalePendingWithdrawals(ctx, before)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]model.WithdrawalRecord, 0, len(rows))
	for _, w := range rows {
		records = append(records, model.WithdrawalRecord{
			ID:        w.ID,
			OwnerID:   w.AffiliateProfileID,
			Amount:    w.AmountSAR,
			CreatedAt: w.CreatedAt,
		})
	}
	evidence := model.NewWithdrawalEvidence(model.EvidenceStaleWithdrawal, records)

	action := newAction(in.Now,
		model.ActionTypeAlert, model.SeverityWarning,
		"Pending withdrawals awaiting review",
		fmt.Sprintf("%d withdrawal request(s) totalling %s SAR pending for more than %s",
			len(records), evidence.Total.StringFixed(2), humanDuration(in.Thresholds.StaleWithdrawalAge)),
		evidence,
	)
	action.ActionType = SmartActionReviewWithdrawals
	return []model.Action{action}, nil
}

// staleMerchantWithdrawalsRule 长时间未处理的商家提现
func staleMerchantWithdrawalsRule(ctx context.Context, in RuleInput) ([]model.Action, error) {
	before := in.Now.Add(-in.Thresholds.StaleWithdrawalAge)
	rows, err := in.Source.StalePendingMerchantWithdrawals(ctx, before)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]model.WithdrawalRecord, 0, len(rows))
	for _, w := range rows {
		records = append(records, model.WithdrawalRecord{
			ID:        w.ID,
			OwnerID:   w.MerchantID,
			Amount:    w.AmountSAR,
			CreatedAt: w.CreatedAt,
		})
	}
	evidence := model.NewWithdrawalEvidence(model.EvidenceStaleMerchantWithdrawal, records)

	action := newAction(in.Now,
		model.ActionTypeAlert, model.SeverityWarning,
		"Pending merchant withdrawals",
		fmt.Sprintf("%d merchant withdrawal request(s) totalling %s SAR are still pending",
			len(records), evidence.Total.StringFixed(2)),
		evidence,
	)
	action.ActionType = SmartActionReviewWithdrawals
	return []model.Action{action}, nil
}

// lowStockRule 库存即将售罄的商品
func lowStockRule(ctx context.Context, in RuleInput) ([]model.Action, error) {
	products, err := in.Source.LowStockProducts(ctx, in.Thresholds.LowStockThreshold, in.Thresholds.ProductEvidenceLimit)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}

	records := make([]model.ProductRecord, 0, len(products))
	for _, p := range products {
		records = append(records, model.ProductRecord{ID: p.ID, Name: p.Name, MerchantID: p.MerchantID, StockQuantity: p.StockQuantity})
	}

	action := newAction(in.Now,
		model.ActionTypePerformance, model.SeverityWarning,
		"Low stock",
		fmt.Sprintf("%d product(s) have fewer than %d units left", len(records), in.Thresholds.LowStockThreshold),
		model.NewProductEvidence(model.EvidenceLowStock, records),
	)
	action.ActionType = SmartActionNotifyLowStock
	return []model.Action{action}, nil
}

// outOfStockRule 已售罄但仍上架的商品
func outOfStockRule(ctx context.Context, in RuleInput) ([]model.Action, error) {
	products, err := in.Source.ActiveOutOfStockProducts(ctx, in.Thresholds.ProductEvidenceLimit)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, nil
	}

	records := make([]model.ProductRecord, 0, len(products))
	for _, p := range products {
		records = append(records, model.ProductRecord{ID: p.ID, Name: p.Name, MerchantID: p.MerchantID})
	}

	action := newAction(in.Now,
		model.ActionTypePerformance, model.SeverityCritical,
		"Active products out of stock",
		fmt.Sprintf("%d active product(s) have no stock left", len(records)),
		model.NewProductEvidence(model.EvidenceOutOfStock, records),
	)
	action.ActionType = SmartActionDisableOutOfStock
	return []model.Action{action}, nil
}

// fraudSuspectsRule 同一手机号短期内多次高额下单
func fraudSuspectsRule(ctx context.Context, in RuleInput) ([]model.Action, error) {
	since := in.Now.Add(-in.Thresholds.FraudWindow)
	groups, err := in.Source.HighValueOrdersByPhone(ctx, since, in.Thresholds.FraudMinOrderAmount)
	if err != nil {
		return nil, err
	}

	suspects := make([]model.FraudSuspect, 0)
	for _, g := range groups {
		if g.Phone == "" {
			continue
		}
		if g.Count >= in.Thresholds.FraudMinOrders && g.Total.GreaterThanOrEqual(in.Thresholds.FraudMinTotal) {
			suspects = append(suspects, g)
		}
	}
	if len(suspects) == 0 {
		return nil, nil
	}

	action := newAction(in.Now,
		model.ActionTypeSecurity, model.SeverityWarning,
		"Possible fraudulent ordering",
		fmt.Sprintf("%d phone number(s) placed repeated high-value orders", len(suspects)),
		model.NewFraudEvidence(suspects),
	)
	action.ActionType = SmartActionFlagSuspicious
	return []model.Action{action}, nil
}
