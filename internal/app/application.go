// Package app ties the DAO client services together and manages their
// lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/filmdao/daoclient/internal/allowance"
	"github.com/filmdao/daoclient/internal/app/domain/proposal"
	metadatasvc "github.com/filmdao/daoclient/internal/app/services/metadata"
	proposalsvc "github.com/filmdao/daoclient/internal/app/services/proposals"
	treasurysvc "github.com/filmdao/daoclient/internal/app/services/treasury"
	"github.com/filmdao/daoclient/internal/app/system"
	"github.com/filmdao/daoclient/internal/gateway"
	"github.com/filmdao/daoclient/internal/wallet"
	"github.com/filmdao/daoclient/pkg/logger"
)

// Options configures optional application behavior.
type Options struct {
	// ContentGateway rewrites content-addressed metadata references.
	ContentGateway string
	// PublishEndpoint accepts idea payloads and returns content locators.
	// Empty disables publishing.
	PublishEndpoint string
	// RefreshInterval drives the background proposal refresher. Zero
	// disables it.
	RefreshInterval time.Duration
}

// Application exposes the wired services.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Session   *wallet.Session
	Store     *proposalsvc.Store
	Proposals *proposalsvc.Workflows
	Treasury  *treasurysvc.Service
	Metadata  *metadatasvc.Resolver
	Publisher *metadatasvc.Publisher
}

// New builds a fully initialised application over a connected session and a
// contract gateway.
func New(session *wallet.Session, gov gateway.Governance, tok gateway.Token, opts Options, log *logger.Logger) (*Application, error) {
	if session == nil {
		return nil, fmt.Errorf("wallet session required")
	}
	if gov == nil || tok == nil {
		return nil, fmt.Errorf("governance and token gateways required")
	}
	if log == nil {
		log = logger.NewDefault("app")
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}

	// One pending-operation set spans all mutating workflows so proposal and
	// treasury keys share a namespace.
	pending := proposal.NewPendingSet()

	store := proposalsvc.NewStore(gov, log)
	gate := allowance.NewGate(tok, log)
	workflows := proposalsvc.NewWorkflows(gov, gate, store, session, pending, log)
	treasury := treasurysvc.New(gov, tok, gate, store, session, pending, log)
	resolver := metadatasvc.NewResolver(httpClient, opts.ContentGateway, log)

	var publisher *metadatasvc.Publisher
	if opts.PublishEndpoint != "" {
		var err error
		publisher, err = metadatasvc.NewPublisher(httpClient, opts.PublishEndpoint, opts.ContentGateway, log)
		if err != nil {
			return nil, fmt.Errorf("configure publisher: %w", err)
		}
	} else {
		log.Warn("publish endpoint not set; idea publishing disabled")
	}

	manager := system.NewManager()
	if opts.RefreshInterval > 0 {
		refresher := proposalsvc.NewRefresher(store, opts.RefreshInterval, log)
		if err := manager.Register(refresher); err != nil {
			return nil, fmt.Errorf("register refresher: %w", err)
		}
	}

	return &Application{
		manager:   manager,
		log:       log,
		Session:   session,
		Store:     store,
		Proposals: workflows,
		Treasury:  treasury,
		Metadata:  resolver,
		Publisher: publisher,
	}, nil
}

// Start loads initial state from the ledger and starts background services.
func (a *Application) Start(ctx context.Context) error {
	if err := a.Treasury.Reload(ctx); err != nil {
		return fmt.Errorf("initial load: %w", err)
	}
	return a.manager.StartAll(ctx)
}

// Stop stops background services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.StopAll(ctx)
}
