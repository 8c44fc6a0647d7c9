package brain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthbrain/common/entity"
)

func TestNewWindows(t *testing.T) {
	riyadh, err := time.LoadLocation("Asia/Riyadh")
	require.NoError(t, err)

	now := time.Date(2026, 3, 10, 1, 30, 0, 0, riyadh)
	w := NewWindows(now)

	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, riyadh), w.Today)
	assert.Equal(t, now.Add(-7*24*time.Hour), w.WeekAgo)
	assert.Equal(t, now.Add(-30*24*time.Hour), w.MonthAgo)
	// 01:30 Riyadh 仍是当地的 3 月 10 日，而 UTC 是 3 月 9 日
	assert.Equal(t, 9, now.UTC().Day())
}

func TestAggregator_Aggregate(t *testing.T) {
	store := newFakeStore()
	store.counts[countKey(CountQuery{Table: TableProfiles})] = 200
	store.counts[countKey(CountQuery{Table: TableProfiles, Column: "last_activity_at"})] = 50
	store.counts[countKey(CountQuery{Table: TableOrders})] = 1000
	store.counts[countKey(CountQuery{Table: TableOrders, Column: "created_at"})] = 70
	store.counts[countKey(CountQuery{Table: TableOrders, Status: entity.OrderStatusPending})] = 12
	store.counts[countKey(CountQuery{Table: TableOrders, Status: entity.OrderStatusDelivered})] = 900
	store.counts[countKey(CountQuery{Table: TableProducts})] = 40
	store.counts[countKey(CountQuery{Table: TableAffiliateStores})] = 8
	store.counts[countKey(CountQuery{Table: TableMerchants})] = 5
	store.revenue = sar(1000)

	stats, err := NewAggregator(store).Aggregate(context.Background(), NewWindows(ruleNow))
	require.NoError(t, err)

	assert.EqualValues(t, 200, stats.Users.Total)
	assert.EqualValues(t, 50, stats.Users.ActiveWeek)
	assert.InDelta(t, 25.0, stats.Users.GrowthRate, 1e-9)
	assert.EqualValues(t, 1000, stats.Orders.Total)
	// today/week/month 共用同一个 fake key
	assert.EqualValues(t, 70, stats.Orders.Week)
	assert.InDelta(t, 10.0, stats.Orders.AvgDaily, 1e-9)
	assert.InDelta(t, 700.0, stats.Orders.TodayProgress, 1e-9)
	assert.EqualValues(t, 12, stats.Orders.Pending)
	assert.EqualValues(t, 900, stats.Orders.Delivered)
	assert.EqualValues(t, 40, stats.Products.Total)
	assert.EqualValues(t, 8, stats.Stores.Total)
	assert.EqualValues(t, 5, stats.Merchants.Total)
	assert.True(t, stats.Revenue.Month.Equal(sar(1000)))
	// (1000*4 - 1000) / 1000 * 100
	assert.InDelta(t, 300.0, stats.Revenue.Growth, 1e-9)
}

func TestAggregator_AnyFailureFailsAll(t *testing.T) {
	store := newFakeStore()
	store.countErr = errors.New("connection reset")

	stats, err := NewAggregator(store).Aggregate(context.Background(), NewWindows(ruleNow))
	assert.Nil(t, stats)
	assert.ErrorContains(t, err, "connection reset")

	store = newFakeStore()
	store.sumErr = errors.New("bad column")
	stats, err = NewAggregator(store).Aggregate(context.Background(), NewWindows(ruleNow))
	assert.Nil(t, stats)
	assert.ErrorContains(t, err, "bad column")
}

func TestAggregator_EmptyPlatform(t *testing.T) {
	stats, err := NewAggregator(newFakeStore()).Aggregate(context.Background(), NewWindows(ruleNow))
	require.NoError(t, err)
	assert.Zero(t, stats.Users.GrowthRate)
	assert.Zero(t, stats.Revenue.Growth)
	assert.Zero(t, stats.Orders.TodayProgress)
}
