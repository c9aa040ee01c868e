// Package di contains dependency injection tokens for the gateway context.
package di

import (
	"github.com/cardex/gateway/business/gateway/app"
	"github.com/cardex/gateway/internal/di"
)

// Public service tokens - exposed to other modules
var (
	GatewayService = di.NewToken[*app.GatewayService]("gateway.GatewayService")
)

// Private dependency tokens - internal to the gateway module
var (
	ChainRegistry = di.NewToken[*app.ChainRegistry]("gateway:chainRegistry")
	WalletStore   = di.NewToken[app.WalletStore]("gateway:walletStore")
)

// Helper functions for type-safe access
func GetGatewayService(c di.ServiceRegistry) *app.GatewayService {
	return di.GetToken(c, GatewayService)
}

func GetChainRegistry(c di.ServiceRegistry) *app.ChainRegistry {
	return di.GetToken(c, ChainRegistry)
}

func GetWalletStore(c di.ServiceRegistry) app.WalletStore {
	return di.GetToken(c, WalletStore)
}
