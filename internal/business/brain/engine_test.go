package brain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthbrain/common/entity"
	"healthbrain/common/model"
	"healthbrain/pkg/errorutil"
	"healthbrain/pkg/logger"
)

// 2026-03-10 10:00 UTC
var engineNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

type narratorFunc func(ctx context.Context, in NarrativeInput) (*Narrative, error)

func (f narratorFunc) Generate(ctx context.Context, in NarrativeInput) (*Narrative, error) {
	return f(ctx, in)
}

type countingRecorder struct {
	NopRecorder
	runs       map[string]int
	remediated map[string]int64
	fallbacks  int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{runs: map[string]int{}, remediated: map[string]int64{}}
}

func (r *countingRecorder) ObserveRun(outcome string, _ time.Duration) { r.runs[outcome]++ }
func (r *countingRecorder) Remediated(m string, rows int64)            { r.remediated[m] += rows }
func (r *countingRecorder) NarrativeFallback()                         { r.fallbacks++ }

func newTestEngine(t *testing.T, store Store, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return engineNow })}, opts...)
	e, err := NewEngine(store, DefaultThresholds(), logger.NewNop(), opts...)
	require.NoError(t, err)
	return e
}

func seedRemediable(store *fakeStore) {
	past := engineNow.Add(-time.Hour)
	future := engineNow.Add(time.Hour)
	store.otpSessions = []entity.CustomerOTPSession{
		{ID: "s1", ExpiresAt: past},
		{ID: "s2", ExpiresAt: past},
		{ID: "s3", ExpiresAt: future},
	}
	store.coupons = []entity.AffiliateCoupon{
		{ID: "c1", IsActive: true, ValidUntil: &past},
		{ID: "c2", IsActive: true, ValidUntil: &future},
		{ID: "c3", IsActive: true},
	}
	store.members = []entity.RoomMember{
		{ID: "m1", IsBanned: true, IsActive: true},
		{ID: "m2", IsBanned: false, IsActive: true},
	}
}

func TestNewEngine_RequiresStore(t *testing.T) {
	_, err := NewEngine(nil, DefaultThresholds(), logger.NewNop())
	require.Error(t, err)
	assert.True(t, errorutil.IsKind(err, errorutil.KindConfig))
}

func TestEngine_Run_NoAnomalies(t *testing.T) {
	e := newTestEngine(t, newFakeStore())

	report, err := e.Run(context.Background(), RunRequest{})
	require.NoError(t, err)

	assert.Empty(t, report.Actions)
	assert.NotNil(t, report.Actions)
	assert.Empty(t, report.Predictions)
	assert.Equal(t, 100, report.HealthScore)
	assert.Equal(t, FallbackSummary(100), report.Summary)
	assert.NotNil(t, report.Recommendations)
	assert.NotEmpty(t, report.RunID)
	assert.Empty(t, report.Degraded)
	assert.True(t, report.GeneratedAt.Equal(engineNow))
}

func TestEngine_Run_NegativeBalances(t *testing.T) {
	store := newFakeStore()
	store.wallets = []entity.WalletBalance{
		{ID: "w1", AvailableBalanceSAR: sar(-1)},
		{ID: "w2", AvailableBalanceSAR: sar(-2)},
		{ID: "w3", AvailableBalanceSAR: sar(-3)},
	}

	report, err := newTestEngine(t, store).Run(context.Background(), RunRequest{})
	require.NoError(t, err)

	require.Len(t, report.Actions, 1)
	assert.Equal(t, model.SeverityCritical, report.Actions[0].Severity)
	assert.Len(t, report.Actions[0].Data.Wallets, 3)
	assert.Equal(t, 80, report.HealthScore)
}

func TestEngine_Run_AutoFixDisabledNeverWrites(t *testing.T) {
	store := newFakeStore()
	seedRemediable(store)

	report, err := newTestEngine(t, store).Run(context.Background(), RunRequest{AutoFix: false})
	require.NoError(t, err)

	assert.Zero(t, store.writeCount())
	for _, a := range report.Actions {
		assert.False(t, a.AutoExecuted)
		assert.NotEqual(t, model.ActionTypeAutoFix, a.Type)
	}
	assert.Len(t, store.otpSessions, 3)
}

func TestEngine_Run_AutoFixIdempotent(t *testing.T) {
	store := newFakeStore()
	seedRemediable(store)
	rec := newCountingRecorder()
	e := newTestEngine(t, store, WithRecorder(rec))

	first, err := e.Run(context.Background(), RunRequest{AutoFix: true})
	require.NoError(t, err)

	fixes := make(map[string]int64)
	for _, a := range first.Actions {
		if a.Type == model.ActionTypeAutoFix {
			assert.True(t, a.AutoExecuted)
			assert.Equal(t, model.SeveritySuccess, a.Severity)
			fixes[a.Data.Remediation.Mutation] = a.Data.Remediation.RowsAffected
		} else {
			assert.False(t, a.AutoExecuted)
		}
	}
	assert.Equal(t, map[string]int64{
		MutationPurgeExpiredOTP:      2,
		MutationDisableExpiredCoupon: 1,
		MutationDeactivateBanned:     1,
	}, fixes)
	assert.Equal(t, 100, first.HealthScore)

	second, err := e.Run(context.Background(), RunRequest{AutoFix: true})
	require.NoError(t, err)
	for _, a := range second.Actions {
		assert.NotEqual(t, model.ActionTypeAutoFix, a.Type)
	}
	assert.EqualValues(t, 2, rec.remediated[MutationPurgeExpiredOTP])
	assert.Equal(t, 2, rec.runs[OutcomeSuccess])
}

func TestEngine_Run_MutationFailureSkipped(t *testing.T) {
	store := newFakeStore()
	seedRemediable(store)
	store.failing["DeactivateExpiredCoupons"] = errors.New("permission denied")

	report, err := newTestEngine(t, store).Run(context.Background(), RunRequest{AutoFix: true})
	require.NoError(t, err)

	// 两条修复结果 + 未能修复的过期优惠券发现
	require.Len(t, report.Actions, 3)
	assert.Contains(t, report.Degraded, "mutation:"+MutationDisableExpiredCoupon)

	var pending []model.EvidenceKind
	for _, a := range report.Actions {
		if a.Type != model.ActionTypeAutoFix {
			pending = append(pending, a.Data.Kind)
		}
	}
	assert.Equal(t, []model.EvidenceKind{model.EvidenceExpiredCoupon}, pending)
}

func TestEngine_Run_MutationPanicSkipped(t *testing.T) {
	store := newFakeStore()
	seedRemediable(store)

	mutations := []Mutation{
		{
			Name:     "explode",
			Title:    "Explode",
			Describe: func(int64) string { return "" },
			Apply: func(context.Context, Remediation, time.Time) (int64, error) {
				panic("boom")
			},
		},
	}
	mutations = append(mutations, BuiltinMutations()[0])

	report, err := newTestEngine(t, store, WithMutations(mutations)).Run(context.Background(), RunRequest{AutoFix: true})
	require.NoError(t, err)

	assert.Contains(t, report.Degraded, "mutation:explode")
	var fixed []string
	for _, a := range report.Actions {
		if a.Type == model.ActionTypeAutoFix {
			fixed = append(fixed, a.Data.Remediation.Mutation)
		}
	}
	assert.Equal(t, []string{MutationPurgeExpiredOTP}, fixed)
}

func TestEngine_Run_AggregationFailure(t *testing.T) {
	store := newFakeStore()
	store.countErr = errors.New("too many connections")
	rec := newCountingRecorder()

	report, err := newTestEngine(t, store, WithRecorder(rec)).Run(context.Background(), RunRequest{})
	assert.Nil(t, report)
	require.Error(t, err)
	assert.True(t, errorutil.IsKind(err, errorutil.KindAggregation))
	assert.Equal(t, 1, rec.runs[OutcomeFailed])
}

func TestEngine_Run_RuleFailureDegrades(t *testing.T) {
	store := newFakeStore()
	store.failing["StalePendingWithdrawals"] = errors.New("relation missing")
	store.otpAttempts = []model.PhoneAttempts{{Phone: "0501", Attempts: 9}}

	report, err := newTestEngine(t, store).Run(context.Background(), RunRequest{})
	require.NoError(t, err)

	require.Len(t, report.Actions, 1)
	assert.Equal(t, model.EvidenceOTPAbuse, report.Actions[0].Data.Kind)
	assert.Equal(t, []string{"rule:" + RuleStaleWithdrawals}, report.Degraded)
	assert.Equal(t, 95, report.HealthScore)
}

func TestEngine_Run_NarrativeUsed(t *testing.T) {
	var got NarrativeInput
	narrator := narratorFunc(func(_ context.Context, in NarrativeInput) (*Narrative, error) {
		got = in
		return &Narrative{Summary: "Everything is fine", Recommendations: []string{"Keep going"}}, nil
	})

	report, err := newTestEngine(t, newFakeStore(), WithNarrator(narrator)).
		Run(context.Background(), RunRequest{Question: "How are we doing?"})
	require.NoError(t, err)

	assert.Equal(t, "Everything is fine", report.Summary)
	assert.Equal(t, []string{"Keep going"}, report.Recommendations)
	assert.Equal(t, "How are we doing?", got.Question)
	assert.Equal(t, 100, got.HealthScore)
	assert.Equal(t, "How are we doing?", report.Question)
}

func TestEngine_Run_NarrativeFailureFallsBack(t *testing.T) {
	rec := newCountingRecorder()
	narrator := narratorFunc(func(context.Context, NarrativeInput) (*Narrative, error) {
		return nil, errors.New("429 rate limited")
	})

	report, err := newTestEngine(t, newFakeStore(), WithNarrator(narrator), WithRecorder(rec)).
		Run(context.Background(), RunRequest{})
	require.NoError(t, err)

	assert.Equal(t, FallbackSummary(report.HealthScore), report.Summary)
	assert.Contains(t, report.Degraded, "narrative")
	assert.Equal(t, 1, rec.fallbacks)
}

func TestEngine_Run_NarrativeTimeoutStillReports(t *testing.T) {
	th := DefaultThresholds()
	th.RunTimeout = 50 * time.Millisecond

	narrator := narratorFunc(func(ctx context.Context, _ NarrativeInput) (*Narrative, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	e, err := NewEngine(newFakeStore(), th, logger.NewNop(),
		WithClock(func() time.Time { return engineNow }), WithNarrator(narrator))
	require.NoError(t, err)

	report, err := e.Run(context.Background(), RunRequest{})
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, FallbackSummary(100), report.Summary)
}

func TestEngine_Run_SurgePredictionRecommendation(t *testing.T) {
	store := newFakeStore()
	store.counts[countKey(CountQuery{Table: TableOrders, Column: "created_at"})] = 70

	afternoon := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	e, err := NewEngine(store, DefaultThresholds(), logger.NewNop(),
		WithClock(func() time.Time { return afternoon }))
	require.NoError(t, err)

	// today=70, avg=10 → surge
	report, err := e.Run(context.Background(), RunRequest{})
	require.NoError(t, err)
	require.Len(t, report.Predictions, 1)
	assert.Equal(t, model.PredictionSalesSurge, report.Predictions[0].Type)
	assert.Equal(t, []string{report.Predictions[0].Suggestion}, report.Recommendations)
}

func TestEngine_ExecuteSmartAction(t *testing.T) {
	store := newFakeStore()
	store.products = []entity.Product{
		{ID: "p1", StockQuantity: 0, IsActive: true},
		{ID: "p2", StockQuantity: 0, IsActive: true},
		{ID: "p3", StockQuantity: 4, IsActive: true},
	}
	e := newTestEngine(t, store)

	res, err := e.ExecuteSmartAction(context.Background(), SmartActionRequest{Type: SmartActionDisableOutOfStock})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.EqualValues(t, 2, res.Affected)

	again, err := e.ExecuteSmartAction(context.Background(), SmartActionRequest{Type: SmartActionDisableOutOfStock})
	require.NoError(t, err)
	assert.Zero(t, again.Affected)

	ack, err := e.ExecuteSmartAction(context.Background(), SmartActionRequest{Type: SmartActionNotifyLowStock})
	require.NoError(t, err)
	assert.True(t, ack.Success)
	assert.Zero(t, ack.Affected)

	_, err = e.ExecuteSmartAction(context.Background(), SmartActionRequest{Type: "launch_rockets"})
	require.Error(t, err)
	assert.True(t, errorutil.IsKind(err, errorutil.KindValidation))
}

func TestEngine_ExecuteSmartAction_StoreFailure(t *testing.T) {
	store := newFakeStore()
	store.failing["DisableOutOfStockProducts"] = errors.New("lock wait timeout")

	_, err := newTestEngine(t, store).ExecuteSmartAction(context.Background(),
		SmartActionRequest{Type: SmartActionDisableOutOfStock})
	require.Error(t, err)
	assert.True(t, errorutil.IsKind(err, errorutil.KindUnavailable))
	assert.True(t, errorutil.IsRetryable(err))
}

func TestEngine_Run_FixableFindingsWithoutAutoFix(t *testing.T) {
	store := newFakeStore()
	seedRemediable(store)

	report, err := newTestEngine(t, store).Run(context.Background(), RunRequest{})
	require.NoError(t, err)

	fixes := make(map[model.EvidenceKind]string)
	for _, a := range report.Actions {
		fixes[a.Data.Kind] = a.Fix
	}
	assert.Equal(t, map[model.EvidenceKind]string{
		model.EvidenceBannedMember:  MutationDeactivateBanned,
		model.EvidenceExpiredCoupon: MutationDisableExpiredCoupon,
	}, fixes)
	// banned 为 warning，过期优惠券为 info
	assert.Equal(t, 95, report.HealthScore)
}

func TestEngine_Run_Analytics(t *testing.T) {
	store := newFakeStore()
	store.topMerchants = []model.RankedEntity{{ID: "m1", Amount: sar(900)}, {ID: "m2", Amount: sar(300)}}
	store.topAffiliates = []model.RankedEntity{{ID: "s1", Amount: sar(500)}}
	store.spending = model.CustomerSpending{Orders: 4, Total: sar(400), Customers: 2, RepeatCustomers: 1}

	report, err := newTestEngine(t, store).Run(context.Background(), RunRequest{})
	require.NoError(t, err)

	require.NotNil(t, report.Analytics)
	assert.Equal(t, "m1", report.Analytics.TopMerchants[0].ID)
	assert.Len(t, report.Analytics.TopAffiliates, 1)
	assert.Equal(t, 50.0, report.Analytics.Customers.RepeatRate)
	// 100 × 1.5 × 12
	assert.Equal(t, "1800", report.Analytics.Customers.EstimatedCLV.String())

	require.NotNil(t, report.Security)
	assert.Equal(t, 100, report.Security.Score)
	require.NotNil(t, report.Performance)
	assert.Equal(t, 100, report.Performance.Score)
}

func TestEngine_Run_AnalyticsFailureDegrades(t *testing.T) {
	store := newFakeStore()
	store.failing["CustomerSpending"] = errors.New("timeout")

	report, err := newTestEngine(t, store).Run(context.Background(), RunRequest{})
	require.NoError(t, err)

	assert.Nil(t, report.Analytics)
	assert.Equal(t, []string{"analytics"}, report.Degraded)
	assert.Equal(t, 100, report.HealthScore)
}
