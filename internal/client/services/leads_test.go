package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/leadgrid/internal/client/client"
	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeadClient struct {
	CreateRet *models.Lead
	CreateErr error
	UpdateRet *models.Lead
	UpdateErr error
	DeleteErr error

	LastID    models.LeadID
	LastInput models.LeadInput
}

func (f *fakeLeadClient) CreateLead(_ context.Context, in models.LeadInput) (*models.Lead, error) {
	f.LastInput = in
	return f.CreateRet, f.CreateErr
}

func (f *fakeLeadClient) UpdateLead(_ context.Context, id models.LeadID, in models.LeadInput) (*models.Lead, error) {
	f.LastID, f.LastInput = id, in
	return f.UpdateRet, f.UpdateErr
}

func (f *fakeLeadClient) DeleteLead(_ context.Context, id models.LeadID) error {
	f.LastID = id
	return f.DeleteErr
}

func TestLeadService_NotifiesOnSuccess(t *testing.T) {
	fc := &fakeLeadClient{CreateRet: &models.Lead{ID: "5"}, UpdateRet: &models.Lead{ID: "5"}}
	s := NewLeadService(fc, nil)
	ctx := context.Background()

	var got []Mutation
	s.Subscribe(func(m Mutation) { got = append(got, m) })

	in := models.LeadInput{FirstName: "A", LastName: "B", Email: "e", Status: models.StatusNew}
	l, err := s.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.LeadID("5"), l.ID)
	assert.Equal(t, in, fc.LastInput)

	_, err = s.Update(ctx, "5", in)
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "5"))
	assert.Equal(t, models.LeadID("5"), fc.LastID)

	assert.Equal(t, []Mutation{{LeadCreated, "5"}, {LeadUpdated, "5"}, {LeadDeleted, "5"}}, got)
}

func TestLeadService_FailuresDoNotNotify(t *testing.T) {
	apiErr := &client.APIError{Status: http.StatusBadRequest, Message: "Email is required"}
	fc := &fakeLeadClient{CreateErr: apiErr, UpdateErr: client.ErrNotFound, DeleteErr: errors.New("boom")}
	s := NewLeadService(fc, nil)
	ctx := context.Background()

	notified := false
	s.Subscribe(func(Mutation) { notified = true })

	_, err := s.Create(ctx, models.LeadInput{})
	require.ErrorAs(t, err, new(*client.APIError))
	assert.Equal(t, "Email is required", DisplayMessage(err))

	_, err = s.Update(ctx, "9", models.LeadInput{})
	require.ErrorIs(t, err, client.ErrNotFound)
	assert.Equal(t, "An error occurred.", DisplayMessage(err))

	err = s.Delete(ctx, "9")
	require.ErrorContains(t, err, "delete lead 9")

	assert.False(t, notified)
}
