package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morpheus-mall/mall-backend/internal/domain"
)

// scenarioEvent is event 1 running through 2024 with designer 10 registered
// at boutique 20 in mall 30.
func scenarioEvent(mall *uint) domain.Event {
	return domain.Event{
		ID:        1,
		Code:      "Y24",
		Name:      "Mall Year 2024",
		StartDate: date("2024-01-01"),
		EndDate:   date("2024-12-31"),
		Records: []domain.RegistrationRecord{
			{ID: 1, EventID: 1, DesignerID: ptr(10), BoutiqueID: ptr(20), MallID: mall},
		},
	}
}

func TestValidate_Scenario(t *testing.T) {
	ctx := context.Background()

	t.Run("complete registration is valid", func(t *testing.T) {
		svc, _, _ := newTestService(newFakeRepo(scenarioEvent(ptr(30))), "2024-06-01")
		res, err := svc.Validate(ctx, 1, ptr(10), ptr(20))
		require.NoError(t, err)
		assert.True(t, res.IsValid)
		assert.Equal(t, ReasonOK, res.Reason)
		require.NotNil(t, res.Registration)
		assert.Equal(t, uint(30), *res.Registration.MallID)
	})

	t.Run("missing mall", func(t *testing.T) {
		svc, _, _ := newTestService(newFakeRepo(scenarioEvent(nil)), "2024-06-01")
		res, err := svc.Validate(ctx, 1, ptr(10), ptr(20))
		require.NoError(t, err)
		assert.False(t, res.IsValid)
		assert.Equal(t, ReasonRegistrationNoMall, res.Reason)
		assert.Equal(t, "registration missing mall", res.Message)
	})

	t.Run("event over", func(t *testing.T) {
		svc, _, _ := newTestService(newFakeRepo(scenarioEvent(ptr(30))), "2025-01-01")
		res, err := svc.Validate(ctx, 1, ptr(10), ptr(20))
		require.NoError(t, err)
		assert.False(t, res.IsValid)
		assert.Equal(t, ReasonEventNotActive, res.Reason)
		require.NotNil(t, res.Event, "inactive result still carries the event")
		assert.Equal(t, uint(1), res.Event.ID)
	})
}

func TestValidate_ActiveBoundaries(t *testing.T) {
	for _, today := range []string{"2024-01-01", "2024-12-31"} {
		svc, _, _ := newTestService(newFakeRepo(scenarioEvent(ptr(30))), today)
		res, err := svc.Validate(context.Background(), 1, ptr(10), ptr(20))
		require.NoError(t, err)
		assert.True(t, res.IsValid, today)
	}

	svc, _, _ := newTestService(newFakeRepo(scenarioEvent(ptr(30))), "2023-12-31")
	res, err := svc.Validate(context.Background(), 1, ptr(10), ptr(20))
	require.NoError(t, err)
	assert.Equal(t, ReasonEventNotActive, res.Reason)
}

func TestValidate_AssignmentNeverMatches(t *testing.T) {
	e := scenarioEvent(ptr(30))
	e.Records = []domain.RegistrationRecord{
		{ID: 2, EventID: 1, DesignerID: ptr(10), BoutiqueID: ptr(20), MallID: ptr(30), ProductID: ptr(500)},
	}
	svc, _, _ := newTestService(newFakeRepo(e), "2024-06-01")
	ctx := context.Background()

	tests := []struct {
		name       string
		designerID *uint
		boutiqueID *uint
		want       ReasonCode
	}{
		{"pair", ptr(10), ptr(20), ReasonNoMatchingRegistration},
		{"designer only", ptr(10), nil, ReasonDesignerNotRegistered},
		{"boutique only", nil, ptr(20), ReasonBoutiqueNotRegistered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Validate(ctx, 1, tt.designerID, tt.boutiqueID)
			require.NoError(t, err)
			assert.False(t, res.IsValid)
			assert.Equal(t, tt.want, res.Reason)
		})
	}
}

func TestValidate_Preconditions(t *testing.T) {
	repo := newFakeRepo(scenarioEvent(ptr(30)))
	svc, _, _ := newTestService(repo, "2024-06-01")
	ctx := context.Background()

	res, err := svc.Validate(ctx, 1, nil, nil)
	require.NoError(t, err)
	assert.False(t, res.IsValid)
	assert.Equal(t, ReasonMissingParticipant, res.Reason)
	assert.Equal(t, "no designer or boutique specified", res.Message)

	res, err = svc.Validate(ctx, 0, ptr(10), ptr(20))
	require.NoError(t, err)
	assert.Equal(t, ReasonMissingEventID, res.Reason)

	assert.Zero(t, repo.calls, "preconditions must not reach the repository")
}

func TestValidate_EventNotFound(t *testing.T) {
	svc, _, _ := newTestService(newFakeRepo(), "2024-06-01")
	res, err := svc.Validate(context.Background(), 99, ptr(10), nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonEventNotFound, res.Reason)
	assert.Nil(t, res.Event)
}

func TestValidate_BackendFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.err = errors.New("connection refused")
	svc, _, _ := newTestService(repo, "2024-06-01")

	_, err := svc.Validate(context.Background(), 1, ptr(10), ptr(20))
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")
}

func TestValidate_SingleFilterIgnoresMall(t *testing.T) {
	// the pair path rejects this row, the single id paths accept it
	svc, _, _ := newTestService(newFakeRepo(scenarioEvent(nil)), "2024-06-01")
	ctx := context.Background()

	pair, err := svc.Validate(ctx, 1, ptr(10), ptr(20))
	require.NoError(t, err)
	assert.Equal(t, ReasonRegistrationNoMall, pair.Reason)

	byDesigner, err := svc.Validate(ctx, 1, ptr(10), nil)
	require.NoError(t, err)
	assert.True(t, byDesigner.IsValid)

	byBoutique, err := svc.Validate(ctx, 1, nil, ptr(20))
	require.NoError(t, err)
	assert.True(t, byBoutique.IsValid)

	other, err := svc.Validate(ctx, 1, ptr(11), nil)
	require.NoError(t, err)
	assert.Equal(t, ReasonDesignerNotRegistered, other.Reason)
}

func TestValidate_PairMustMatchOneRow(t *testing.T) {
	e := scenarioEvent(ptr(30))
	e.Records = []domain.RegistrationRecord{
		{ID: 1, EventID: 1, DesignerID: ptr(10), BoutiqueID: ptr(21), MallID: ptr(30)},
		{ID: 2, EventID: 1, DesignerID: ptr(11), BoutiqueID: ptr(20), MallID: ptr(30)},
	}
	svc, _, _ := newTestService(newFakeRepo(e), "2024-06-01")

	res, err := svc.Validate(context.Background(), 1, ptr(10), ptr(20))
	require.NoError(t, err)
	assert.Equal(t, ReasonNoMatchingRegistration, res.Reason)
}

func TestValidate_Idempotent(t *testing.T) {
	repo := newFakeRepo(scenarioEvent(ptr(30)))
	svc, _, _ := newTestService(repo, "2024-06-01")
	ctx := context.Background()

	first, err := svc.Validate(ctx, 1, ptr(10), ptr(20))
	require.NoError(t, err)
	second, err := svc.Validate(ctx, 1, ptr(10), ptr(20))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, repo.events[1].Records, 1)
}
