package client

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/leadgrid/internal/client/models"
)

// Client is the transport contract for the leads backend.
type Client interface {
	Close() error
	Me(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, email, password string) (*models.Account, error)
	Logout(ctx context.Context) error
	ListLeads(ctx context.Context, params url.Values) (*models.LeadPage, error)
	CreateLead(ctx context.Context, in models.LeadInput) (*models.Lead, error)
	UpdateLead(ctx context.Context, id models.LeadID, in models.LeadInput) (*models.Lead, error)
	DeleteLead(ctx context.Context, id models.LeadID) error
	Ping(ctx context.Context) error
}
