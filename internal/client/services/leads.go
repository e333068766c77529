package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/dmitrijs2005/leadgrid/internal/logging"
)

type MutationKind string

const (
	LeadCreated MutationKind = "created"
	LeadUpdated MutationKind = "updated"
	LeadDeleted MutationKind = "deleted"
)

// Mutation describes a successful change to a lead.
type Mutation struct {
	Kind MutationKind
	ID   models.LeadID
}

// LeadClient is the part of the transport the lead service needs.
type LeadClient interface {
	CreateLead(ctx context.Context, in models.LeadInput) (*models.Lead, error)
	UpdateLead(ctx context.Context, id models.LeadID, in models.LeadInput) (*models.Lead, error)
	DeleteLead(ctx context.Context, id models.LeadID) error
}

// LeadService changes leads on the backend. Subscribers hear about every
// successful change, which is how cached grid blocks get invalidated.
type LeadService interface {
	Create(ctx context.Context, in models.LeadInput) (*models.Lead, error)
	Update(ctx context.Context, id models.LeadID, in models.LeadInput) (*models.Lead, error)
	Delete(ctx context.Context, id models.LeadID) error
	Subscribe(fn func(Mutation)) (unsubscribe func())
}

type leadService struct {
	client LeadClient
	log    logging.Logger
	subs   listeners[Mutation]
}

func NewLeadService(c LeadClient, log logging.Logger) LeadService {
	if log == nil {
		log = logging.Discard()
	}
	return &leadService{client: c, log: log}
}

func (s *leadService) Subscribe(fn func(Mutation)) func() {
	return s.subs.add(fn)
}

func (s *leadService) Create(ctx context.Context, in models.LeadInput) (*models.Lead, error) {
	l, err := s.client.CreateLead(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	s.log.Info(ctx, "lead created", "id", l.ID.String())
	s.subs.notify(Mutation{Kind: LeadCreated, ID: l.ID})
	return l, nil
}

func (s *leadService) Update(ctx context.Context, id models.LeadID, in models.LeadInput) (*models.Lead, error) {
	l, err := s.client.UpdateLead(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update lead %s: %w", id, err)
	}
	s.log.Info(ctx, "lead updated", "id", id.String())
	s.subs.notify(Mutation{Kind: LeadUpdated, ID: id})
	return l, nil
}

func (s *leadService) Delete(ctx context.Context, id models.LeadID) error {
	if err := s.client.DeleteLead(ctx, id); err != nil {
		return fmt.Errorf("delete lead %s: %w", id, err)
	}
	s.log.Info(ctx, "lead deleted", "id", id.String())
	s.subs.notify(Mutation{Kind: LeadDeleted, ID: id})
	return nil
}
