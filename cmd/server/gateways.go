package main

import (
	"errors"

	"github.com/wagginmeals/backend/internal/domain/integration"
	"github.com/wagginmeals/backend/internal/domain/shipping"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"github.com/wagginmeals/backend/internal/infrastructure/crm"
	"github.com/wagginmeals/backend/internal/infrastructure/email"
	"github.com/wagginmeals/backend/internal/infrastructure/printing"
	shippo "github.com/wagginmeals/backend/internal/infrastructure/shipping"
	"github.com/wagginmeals/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// gateways holds the optional third-party integrations. A nil field means
// the integration is not configured and the services degrade without it.
type gateways struct {
	crm     integration.CRM
	mailer  integration.Mailer
	storage integration.ObjectStorage
	pdf     integration.PDFRenderer
	rates   shipping.RateProvider

	closers []func() error
	log     *zap.Logger
}

func newGateways(cfg *config.Config, log *zap.Logger) *gateways {
	g := &gateways{log: log}

	// The client reports ErrCRMNotConfigured per call when no webhook is set.
	g.crm = crm.NewGHLClient(cfg.GHL, log)

	if client, err := shippo.NewShippoClient(cfg.Shippo, log); err == nil {
		g.rates = client
	} else {
		g.skip("shippo", err)
	}

	if renderer, err := email.NewRenderer(cfg.Site.PublicURL); err != nil {
		g.skip("email", err)
	} else if mailer, err := email.NewSMTPMailer(cfg.SMTP, renderer, log); err == nil {
		g.mailer = mailer
	} else {
		g.skip("email", err)
	}

	if cfg.Storage.IsConfigured() {
		if s3, err := storage.NewS3ObjectStorage(cfg.Storage, storage.WithLogger(log)); err == nil {
			g.storage = s3
		} else {
			g.skip("storage", err)
		}
	} else {
		g.skip("storage", errors.New("no bucket configured"))
	}

	if cfg.Printing.Enabled {
		if renderer, err := printing.NewChromedpRenderer(printing.ConfigFromSettings(cfg.Printing, log)); err == nil {
			g.pdf = renderer
			g.closers = append(g.closers, renderer.Close)
		} else {
			g.skip("printing", err)
		}
	} else {
		g.skip("printing", errors.New("disabled"))
	}

	return g
}

func (g *gateways) skip(name string, err error) {
	g.log.Warn("Integration not available", zap.String("integration", name), zap.Error(err))
}

// Close releases integrations that hold processes or connections
func (g *gateways) Close() {
	for _, c := range g.closers {
		if err := c(); err != nil {
			g.log.Error("Error closing integration", zap.Error(err))
		}
	}
}
