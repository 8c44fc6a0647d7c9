package brain

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"healthbrain/common/entity"
	"healthbrain/common/model"
)

// fakeStore 内存版 Store，过滤语义与 gorm 实现一致
type fakeStore struct {
	mu sync.Mutex

	counts   map[string]int64 // key: table|status|column
	countErr error
	sumErr   error
	revenue  decimal.Decimal

	wallets             []entity.WalletBalance
	orders              []entity.Order
	otpAttempts         []model.PhoneAttempts
	withdrawals         []entity.WithdrawalRequest
	merchantWithdrawals []entity.MerchantWithdrawalRequest
	products            []entity.Product
	fraud               []model.FraudSuspect

	otpSessions []entity.CustomerOTPSession
	coupons     []entity.AffiliateCoupon
	members     []entity.RoomMember

	profiles      []entity.Profile
	unverifiedOTP int64

	topMerchants  []model.RankedEntity
	topAffiliates []model.RankedEntity
	spending      model.CustomerSpending

	failing map[string]error
	writes  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		counts:  make(map[string]int64),
		revenue: decimal.Zero,
		failing: make(map[string]error),
	}
}

func countKey(q CountQuery) string {
	return q.Table + "|" + q.Status + "|" + q.Column
}

func (f *fakeStore) fail(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failing[method]
}

func (f *fakeStore) Count(_ context.Context, q CountQuery) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[countKey(q)], nil
}

func (f *fakeStore) Sum(_ context.Context, _ SumQuery) (decimal.Decimal, error) {
	if f.sumErr != nil {
		return decimal.Zero, f.sumErr
	}
	return f.revenue, nil
}

func (f *fakeStore) NegativeBalances(context.Context) ([]entity.WalletBalance, error) {
	if err := f.fail("NegativeBalances"); err != nil {
		return nil, err
	}
	out := make([]entity.WalletBalance, 0)
	for _, w := range f.wallets {
		if w.AvailableBalanceSAR.IsNegative() {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) StalePendingOrders(_ context.Context, before time.Time, limit int) ([]entity.Order, error) {
	if err := f.fail("StalePendingOrders"); err != nil {
		return nil, err
	}
	out := make([]entity.Order, 0)
	for _, o := range f.orders {
		if o.Status == entity.OrderStatusPending && o.CreatedAt.Before(before) && len(out) < limit {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) UnverifiedOTPAttempts(context.Context, time.Time) ([]model.PhoneAttempts, error) {
	if err := f.fail("UnverifiedOTPAttempts"); err != nil {
		return nil, err
	}
	return f.otpAttempts, nil
}

func (f *fakeStore) StalePendingWithdrawals(_ context.Context, before time.Time) ([]entity.WithdrawalRequest, error) {
	if err := f.fail("StalePendingWithdrawals"); err != nil {
		return nil, err
	}
	out := make([]entity.WithdrawalRequest, 0)
	for _, w := range f.withdrawals {
		if w.Status == entity.WithdrawalStatusPending && w.CreatedAt.Before(before) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) StalePendingMerchantWithdrawals(_ context.Context, before time.Time) ([]entity.MerchantWithdrawalRequest, error) {
	if err := f.fail("StalePendingMerchantWithdrawals"); err != nil {
		return nil, err
	}
	out := make([]entity.MerchantWithdrawalRequest, 0)
	for _, w := range f.merchantWithdrawals {
		if w.Status == entity.WithdrawalStatusPending && w.CreatedAt.Before(before) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) LowStockProducts(_ context.Context, below int64, limit int) ([]entity.Product, error) {
	if err := f.fail("LowStockProducts"); err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0)
	for _, p := range f.products {
		if p.StockQuantity > 0 && p.StockQuantity < below && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ActiveOutOfStockProducts(_ context.Context, limit int) ([]entity.Product, error) {
	if err := f.fail("ActiveOutOfStockProducts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Product, 0)
	for _, p := range f.products {
		if p.StockQuantity == 0 && p.IsActive && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) HighValueOrdersByPhone(context.Context, time.Time, decimal.Decimal) ([]model.FraudSuspect, error) {
	if err := f.fail("HighValueOrdersByPhone"); err != nil {
		return nil, err
	}
	return f.fraud, nil
}

func sample(ids []string, limit int) IDSample {
	s := IDSample{Total: int64(len(ids))}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	s.IDs = ids
	return s
}

func (f *fakeStore) ProfilesWithoutAuthUser(_ context.Context, limit int) (IDSample, error) {
	if err := f.fail("ProfilesWithoutAuthUser"); err != nil {
		return IDSample{}, err
	}
	var ids []string
	for _, p := range f.profiles {
		if p.AuthUserID == nil {
			ids = append(ids, p.ID)
		}
	}
	return sample(ids, limit), nil
}

func (f *fakeStore) ProductsWithoutMerchant(_ context.Context, limit int) (IDSample, error) {
	if err := f.fail("ProductsWithoutMerchant"); err != nil {
		return IDSample{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, p := range f.products {
		if p.MerchantID == "" {
			ids = append(ids, p.ID)
		}
	}
	return sample(ids, limit), nil
}

func (f *fakeStore) BannedActiveMembers(_ context.Context, limit int) (IDSample, error) {
	if err := f.fail("BannedActiveMembers"); err != nil {
		return IDSample{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, m := range f.members {
		if m.IsBanned && m.IsActive {
			ids = append(ids, m.ID)
		}
	}
	return sample(ids, limit), nil
}

func (f *fakeStore) ExpiredActiveCoupons(_ context.Context, now time.Time, limit int) (IDSample, error) {
	if err := f.fail("ExpiredActiveCoupons"); err != nil {
		return IDSample{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for _, c := range f.coupons {
		if c.IsActive && c.ValidUntil != nil && c.ValidUntil.Before(now) {
			ids = append(ids, c.ID)
		}
	}
	return sample(ids, limit), nil
}

func (f *fakeStore) CountExpiredOTPSessions(_ context.Context, now time.Time) (int64, error) {
	if err := f.fail("CountExpiredOTPSessions"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, s := range f.otpSessions {
		if s.ExpiresAt.Before(now) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CountUnverifiedOTPSessions(context.Context, time.Time) (int64, error) {
	if err := f.fail("CountUnverifiedOTPSessions"); err != nil {
		return 0, err
	}
	return f.unverifiedOTP, nil
}

func (f *fakeStore) TopMerchants(context.Context, time.Time, int) ([]model.RankedEntity, error) {
	if err := f.fail("TopMerchants"); err != nil {
		return nil, err
	}
	return f.topMerchants, nil
}

func (f *fakeStore) TopAffiliateStores(context.Context, time.Time, int) ([]model.RankedEntity, error) {
	if err := f.fail("TopAffiliateStores"); err != nil {
		return nil, err
	}
	return f.topAffiliates, nil
}

func (f *fakeStore) CustomerSpending(context.Context) (model.CustomerSpending, error) {
	if err := f.fail("CustomerSpending"); err != nil {
		return model.CustomerSpending{}, err
	}
	return f.spending, nil
}

func (f *fakeStore) DeleteExpiredOTPSessions(_ context.Context, now time.Time) (int64, error) {
	if err := f.fail("DeleteExpiredOTPSessions"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++

	kept := make([]entity.CustomerOTPSession, 0, len(f.otpSessions))
	var deleted int64
	for _, s := range f.otpSessions {
		if s.ExpiresAt.Before(now) {
			deleted++
			continue
		}
		kept = append(kept, s)
	}
	f.otpSessions = kept
	return deleted, nil
}

func (f *fakeStore) DeactivateExpiredCoupons(_ context.Context, now time.Time) (int64, error) {
	if err := f.fail("DeactivateExpiredCoupons"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++

	var n int64
	for i := range f.coupons {
		c := &f.coupons[i]
		if c.IsActive && c.ValidUntil != nil && c.ValidUntil.Before(now) {
			c.IsActive = false
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DeactivateBannedMembers(context.Context) (int64, error) {
	if err := f.fail("DeactivateBannedMembers"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++

	var n int64
	for i := range f.members {
		m := &f.members[i]
		if m.IsBanned && m.IsActive {
			m.IsActive = false
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DisableOutOfStockProducts(context.Context) (int64, error) {
	if err := f.fail("DisableOutOfStockProducts"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++

	var n int64
	for i := range f.products {
		p := &f.products[i]
		if p.StockQuantity == 0 && p.IsActive {
			p.IsActive = false
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func sar(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
