package brain

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthbrain/common/entity"
	"healthbrain/common/model"
)

func TestOrphanProfilesRule(t *testing.T) {
	linked := "auth-1"
	store := newFakeStore()
	for i := 0; i < 12; i++ {
		store.profiles = append(store.profiles, entity.Profile{ID: fmt.Sprintf("p%d", i)})
	}
	store.profiles = append(store.profiles, entity.Profile{ID: "ok", AuthUserID: &linked})

	actions, err := orphanProfilesRule(context.Background(), ruleInput(store))
	require.NoError(t, err)
	require.Len(t, actions, 1)

	a := actions[0]
	assert.Equal(t, model.SeverityWarning, a.Severity)
	assert.Equal(t, model.EvidenceOrphanProfile, a.Data.Kind)
	assert.Len(t, a.Data.IDs, DefaultThresholds().ProductEvidenceLimit)
	assert.EqualValues(t, 12, *a.Data.Count)
	assert.Empty(t, a.Fix)
}

func TestOrphanProductsRule(t *testing.T) {
	store := newFakeStore()
	store.products = []entity.Product{
		{ID: "p1", MerchantID: "m1"},
		{ID: "p2"},
	}

	actions, err := orphanProductsRule(context.Background(), ruleInput(store))
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, []string{"p2"}, actions[0].Data.IDs)

	store.products = store.products[:1]
	actions, err = orphanProductsRule(context.Background(), ruleInput(store))
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestFixableRules(t *testing.T) {
	past := ruleNow.Add(-time.Minute)
	store := newFakeStore()
	store.members = []entity.RoomMember{
		{ID: "m1", IsBanned: true, IsActive: true},
		{ID: "m2", IsBanned: true, IsActive: false},
	}
	store.coupons = []entity.AffiliateCoupon{
		{ID: "c1", IsActive: true, ValidUntil: &past},
		{ID: "c2", IsActive: true},
	}

	banned, err := bannedActiveMembersRule(context.Background(), ruleInput(store))
	require.NoError(t, err)
	require.Len(t, banned, 1)
	assert.Equal(t, model.ActionTypeSecurity, banned[0].Type)
	assert.Equal(t, MutationDeactivateBanned, banned[0].Fix)
	assert.Equal(t, []string{"m1"}, banned[0].Data.IDs)

	coupons, err := expiredActiveCouponsRule(context.Background(), ruleInput(store))
	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Equal(t, model.SeverityInfo, coupons[0].Severity)
	assert.Equal(t, MutationDisableExpiredCoupon, coupons[0].Fix)
}

func TestExpiredOTPBacklogRule_StrictThreshold(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 10; i++ {
		store.otpSessions = append(store.otpSessions, entity.CustomerOTPSession{
			ID: fmt.Sprintf("s%d", i), ExpiresAt: ruleNow.Add(-time.Hour),
		})
	}

	actions, err := expiredOTPBacklogRule(context.Background(), ruleInput(store))
	require.NoError(t, err)
	assert.Empty(t, actions)

	store.otpSessions = append(store.otpSessions, entity.CustomerOTPSession{ID: "s10", ExpiresAt: ruleNow.Add(-time.Second)})
	actions, err = expiredOTPBacklogRule(context.Background(), ruleInput(store))
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, model.SeverityInfo, actions[0].Severity)
	assert.EqualValues(t, 11, *actions[0].Data.Count)
	assert.Equal(t, MutationPurgeExpiredOTP, actions[0].Fix)
}

func TestOTPFloodRule(t *testing.T) {
	store := newFakeStore()
	store.unverifiedOTP = 50

	actions, err := otpFloodRule(context.Background(), ruleInput(store))
	require.NoError(t, err)
	assert.Empty(t, actions)

	store.unverifiedOTP = 51
	actions, err = otpFloodRule(context.Background(), ruleInput(store))
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, model.SeverityWarning, actions[0].Severity)
	assert.Equal(t, model.EvidenceOTPFlood, actions[0].Data.Kind)
}
