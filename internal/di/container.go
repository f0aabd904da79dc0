// Package di provides dependency injection configuration for the SnapTag server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/snaptagapp/snaptag-server/internal/catalog"
	"github.com/snaptagapp/snaptag-server/internal/collection"
	"github.com/snaptagapp/snaptag-server/internal/config"
	"github.com/snaptagapp/snaptag-server/internal/di/providers"
	"github.com/snaptagapp/snaptag-server/internal/logger"
	"github.com/snaptagapp/snaptag-server/internal/selection"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideStaging)
	do.Provide(injector, providers.ProvideLibrary)
	do.Provide(injector, providers.ProvidePermissions)
	do.Provide(injector, providers.ProvideNotifier)

	// Business services
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideCollectionManager)
	do.Provide(injector, providers.ProvideSelectionManager)
	do.Provide(injector, providers.ProvideExporter)

	// Workers
	do.Provide(injector, providers.ProvideInboxWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)

	_ = do.MustInvoke[*catalog.Service](injector)
	_ = do.MustInvoke[*collection.Manager](injector)
	_ = do.MustInvoke[*selection.Manager](injector)
	_ = do.MustInvoke[*providers.ExporterHandle](injector)

	_ = do.MustInvoke[*providers.InboxWatcherHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
