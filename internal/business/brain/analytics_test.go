package brain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"healthbrain/common/model"
)

func TestCustomerValueOf(t *testing.T) {
	v := CustomerValueOf(model.CustomerSpending{Orders: 3, Total: sar(100), Customers: 3, RepeatCustomers: 1})
	assert.Equal(t, "33.33", v.AvgOrderValue.String())
	assert.Equal(t, 33.3, v.RepeatRate)
	// 33.33 × 1.333 × 12
	assert.Equal(t, "533.15", v.EstimatedCLV.String())

	empty := CustomerValueOf(model.CustomerSpending{})
	assert.True(t, empty.AvgOrderValue.IsZero())
	assert.Zero(t, empty.RepeatRate)
	assert.True(t, empty.EstimatedCLV.IsZero())
}

func TestSecurityReportOf(t *testing.T) {
	withdrawals := make([]model.WithdrawalRecord, 11)
	actions := []model.Action{
		{Data: model.NewOTPAbuseEvidence([]model.PhoneAttempts{{Phone: "1"}, {Phone: "2"}})},
		{Data: model.NewWithdrawalEvidence(model.EvidenceStaleWithdrawal, withdrawals)},
		{Data: model.NewWithdrawalEvidence(model.EvidenceStaleMerchantWithdrawal, withdrawals[:2])},
		{Title: "no evidence"},
	}

	r := SecurityReportOf(actions)
	assert.Equal(t, 2, r.SuspiciousPhones)
	assert.Equal(t, 11, r.PendingWithdrawals)
	assert.Equal(t, 2, r.MerchantPendingWithdrawals)
	// 100 - 2×10 - 5
	assert.Equal(t, 75, r.Score)
}

func TestPerformanceReportOf_Clamped(t *testing.T) {
	out := make([]model.ProductRecord, 25)
	actions := []model.Action{
		{Data: model.NewProductEvidence(model.EvidenceLowStock, make([]model.ProductRecord, 3))},
		{Data: model.NewProductEvidence(model.EvidenceOutOfStock, out)},
	}

	r := PerformanceReportOf(actions)
	assert.Equal(t, 3, r.LowStock)
	assert.Equal(t, 25, r.OutOfStock)
	assert.Zero(t, r.Score)

	assert.Equal(t, 100, PerformanceReportOf(nil).Score)
}
