package membership

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/jwalitptl/training-api/internal/model"
	"github.com/jwalitptl/training-api/internal/repository/inmem"
	apperrors "github.com/jwalitptl/training-api/pkg/errors"
)

type fixture struct {
	db       *inmem.DB
	svc      *Service
	userPlan *model.Plan
	corpPlan *model.Plan
}

func newFixture() *fixture {
	db := inmem.New()
	f := &fixture{
		db:       db,
		svc:      NewService(inmem.NewMembershipRepository(db), inmem.NewProfileRepository(db)),
		userPlan: &model.Plan{Name: "Solo", Price: 9.5, Currency: "USD", DurationDays: 30, Audience: model.SubjectUser, IsActive: true},
		corpPlan: &model.Plan{Name: "Team", Price: 99, Currency: "USD", Audience: model.SubjectCorporate, IsActive: true},
	}
	db.AddPlan(f.userPlan)
	db.AddPlan(f.corpPlan)
	db.AddPlan(&model.Plan{Name: "Legacy", Audience: model.SubjectUser})
	return f
}

func TestPlans_ByAudience(t *testing.T) {
	f := newFixture()

	plans, err := f.svc.Plans(context.Background(), model.Viewer{Role: model.RoleIndividual})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Solo", plans[0].Name)

	plans, err = f.svc.Plans(context.Background(), model.Viewer{Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, plans, 2)
}

func TestPurchase_RecordsPaymentAndMembership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	viewer := model.Viewer{ID: bson.NewObjectID(), Role: model.RoleIndividual}
	fixed := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }

	res, err := f.svc.Purchase(ctx, viewer, &model.PurchaseRequest{PlanID: f.userPlan.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, 9.5, res.Payment.Amount)
	assert.Equal(t, model.PaymentCompleted, res.Payment.Status)
	assert.Equal(t, model.MembershipActive, res.Membership.Status)
	require.NotNil(t, res.Membership.EndDate)
	assert.Equal(t, fixed.AddDate(0, 0, 30), *res.Membership.EndDate)

	current, err := f.svc.Current(ctx, viewer)
	require.NoError(t, err)
	assert.Equal(t, res.Membership.ID, current.ID)

	// Buying the same plan again starts a new membership.
	again, err := f.svc.Purchase(ctx, viewer, &model.PurchaseRequest{PlanID: f.userPlan.ID.Hex()})
	require.NoError(t, err)
	assert.NotEqual(t, res.Membership.ID, again.Membership.ID)
	assert.Len(t, f.db.Payments(), 2)

	all := f.db.Memberships()
	require.Len(t, all, 2)
	assert.Equal(t, model.MembershipExpired, all[0].Status)
	assert.Equal(t, model.MembershipActive, all[1].Status)
}

func TestPurchase_LatestPurchaseIsCurrent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	viewer := model.Viewer{ID: bson.NewObjectID(), Role: model.RoleIndividual}
	pro := &model.Plan{Name: "Pro", Price: 19, Currency: "USD", DurationDays: 30, Audience: model.SubjectUser, IsActive: true}
	f.db.AddPlan(pro)

	var last *model.PurchaseResult
	for _, plan := range []*model.Plan{f.userPlan, pro, f.userPlan} {
		res, err := f.svc.Purchase(ctx, viewer, &model.PurchaseRequest{PlanID: plan.ID.Hex()})
		require.NoError(t, err)
		last = res
	}

	current, err := f.svc.Current(ctx, viewer)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, f.userPlan.ID, current.PlanID)
	assert.Equal(t, last.Membership.ID, current.ID)

	active := 0
	for _, m := range f.db.Memberships() {
		if m.Status == model.MembershipActive {
			active++
			assert.Equal(t, last.Membership.ID, m.ID)
		}
	}
	assert.Equal(t, 1, active)
}

func TestPurchase_CorporateUsesProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := model.Viewer{ID: bson.NewObjectID(), Role: model.RoleCorporate}
	corp := &model.CorporateProfile{OwnerID: owner.ID}
	require.NoError(t, inmem.NewProfileRepository(f.db).CreateCorporate(ctx, corp))

	_, err := f.svc.Purchase(ctx, owner, &model.PurchaseRequest{PlanID: f.userPlan.ID.Hex()})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	res, err := f.svc.Purchase(ctx, owner, &model.PurchaseRequest{PlanID: f.corpPlan.ID.Hex()})
	require.NoError(t, err)
	assert.Equal(t, model.SubjectCorporate, res.Membership.SubjectType)
	assert.Equal(t, corp.ID, res.Membership.SubjectID)
	assert.Nil(t, res.Membership.EndDate)
}

func TestPurchase_FailureWritesNothing(t *testing.T) {
	f := newFixture()
	viewer := model.Viewer{ID: bson.NewObjectID(), Role: model.RoleIndividual}
	f.db.FailOn("memberships.purchase", errors.New("transaction aborted"))

	_, err := f.svc.Purchase(context.Background(), viewer, &model.PurchaseRequest{PlanID: f.userPlan.ID.Hex()})
	require.Error(t, err)
	assert.Empty(t, f.db.Payments())

	current, err := f.svc.Current(context.Background(), viewer)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestPurchase_UnknownOrInactivePlan(t *testing.T) {
	f := newFixture()
	viewer := model.Viewer{ID: bson.NewObjectID(), Role: model.RoleIndividual}

	_, err := f.svc.Purchase(context.Background(), viewer, &model.PurchaseRequest{PlanID: bson.NewObjectID().Hex()})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}
