// Package gateway implements the gateway bounded context: chain contexts,
// venue registration and the venue-agnostic service.
package gateway

import (
	"context"
	"fmt"

	"github.com/cardex/gateway/business/gateway/app"
	gatewayDI "github.com/cardex/gateway/business/gateway/di"
	"github.com/cardex/gateway/business/gateway/infra/blockfrost"
	"github.com/cardex/gateway/business/gateway/infra/walletstore"
	"github.com/cardex/gateway/business/venues/ammvenue"
	"github.com/cardex/gateway/business/venues/minswap"
	"github.com/cardex/gateway/business/venues/sundaeswap"
	"github.com/cardex/gateway/internal/asset"
	"github.com/cardex/gateway/internal/config"
	"github.com/cardex/gateway/internal/connector"
	"github.com/cardex/gateway/internal/di"
	"github.com/cardex/gateway/internal/logger"
	"github.com/cardex/gateway/internal/monolith"
	"github.com/cardex/gateway/internal/venue"
)

// Module implements the gateway bounded context.
type Module struct{}

// RegisterServices registers all gateway services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Wallet store - private dependency
	di.RegisterToken(c, gatewayDI.WalletStore, func(sr di.ServiceRegistry) app.WalletStore {
		cfg := sr.Get("config").(*config.Config)

		store, err := walletstore.NewStore(cfg.Wallet.StoreDir, cfg.Wallet.Passphrase)
		if err != nil {
			panic("failed to open wallet store: " + err.Error())
		}
		return store
	})

	// Chain registry - private dependency. One chain context per
	// network, created lazily on first request.
	di.RegisterToken(c, gatewayDI.ChainRegistry, func(sr di.ServiceRegistry) *app.ChainRegistry {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return app.NewChainRegistry(func(ctx context.Context, key connector.Key) (*app.ChainContext, error) {
			nc, ok := cfg.Cardano.Network(key.Network)
			if !ok {
				return nil, fmt.Errorf("network %s not configured", key.Network)
			}

			tokens := asset.DefaultCatalog(key.Network)
			provider, err := blockfrost.NewProvider(blockfrost.Config{
				BaseURL:           nc.ProviderURL,
				ProjectID:         nc.ProjectID,
				Network:           key.Network,
				RequestTimeout:    nc.RequestTimeout,
				RequestsPerMinute: nc.RequestsPerMinute,
			}, tokens, log)
			if err != nil {
				return nil, err
			}

			log.Info(ctx, "chain context initialized", "chain", key.Chain, "network", key.Network)
			return app.NewChainContext(key.Network, tokens, provider, nil), nil
		})
	})

	// Gateway service (public - exposed to other modules)
	di.RegisterToken(c, gatewayDI.GatewayService, func(sr di.ServiceRegistry) *app.GatewayService {
		log := sr.Get("logger").(logger.LoggerInterface)
		venues := sr.Get("venues").(*venue.Catalog)
		chains := gatewayDI.GetChainRegistry(sr)

		svc, err := app.NewGatewayService(chains, venues, log)
		if err != nil {
			panic("failed to create gateway service: " + err.Error())
		}
		return svc
	})

	return nil
}

// Startup registers the enabled venues and health checks.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	log := mono.Logger()
	chains := gatewayDI.GetChainRegistry(mono.Services())
	wallets := gatewayDI.GetWalletStore(mono.Services())

	register := func(name string, vc config.VenueConfig, build func(network, poolID string, deps ammvenue.Deps) venue.Handle) error {
		if !vc.Enabled {
			log.Info(ctx, "venue disabled", "venue", name)
			return nil
		}
		return mono.Venues().Register(name, venue.CapSpotFull, func(ctx context.Context, network string) (venue.Handle, error) {
			cc, err := chains.GetOrCreate(ctx, connector.Key{Chain: app.ChainName, Network: network})
			if err != nil {
				return nil, err
			}
			submitter, ok := cc.Pools.(ammvenue.TxSubmitter)
			if !ok {
				return nil, fmt.Errorf("data provider for %s cannot submit transactions", network)
			}

			asm := ammvenue.NewAssembler(name, network, wallets, submitter, log)
			poolID, _ := vc.DefaultPoolID(network)
			return build(network, poolID, ammvenue.Deps{
				Pools:     cc.Pools,
				Assembler: asm,
				Log:       log,
			}), nil
		})
	}

	if err := register(minswap.Name, cfg.Venues.Minswap, func(network, poolID string, deps ammvenue.Deps) venue.Handle {
		return minswap.New(network, poolID, cfg.Venues.Minswap.AllowedSlippagePct, deps)
	}); err != nil {
		return err
	}
	if err := register(sundaeswap.Name, cfg.Venues.Sundaeswap, func(network, poolID string, deps ammvenue.Deps) venue.Handle {
		return sundaeswap.New(network, poolID, cfg.Venues.Sundaeswap.AllowedSlippagePct, deps)
	}); err != nil {
		return err
	}

	// Readiness: the default network's data provider, once initialized.
	defaultNetwork := cfg.Cardano.DefaultNetwork
	mono.Health().Register("provider-"+defaultNetwork, func(ctx context.Context) (bool, string) {
		cc, ok := chains.Get(connector.Key{Chain: app.ChainName, Network: defaultNetwork})
		if !ok {
			// Lazy init: nothing to probe yet.
			return true, "chain context not initialized"
		}
		if h, ok := cc.Pools.(interface {
			Healthy(context.Context) (bool, string)
		}); ok {
			return h.Healthy(ctx)
		}
		return true, ""
	})

	log.Info(ctx, "gateway module started", "venues", mono.Venues().Names())
	return nil
}
