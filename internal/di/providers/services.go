package providers

import (
	"github.com/samber/do/v2"

	"github.com/snaptagapp/snaptag-server/internal/catalog"
	"github.com/snaptagapp/snaptag-server/internal/collection"
	"github.com/snaptagapp/snaptag-server/internal/config"
	"github.com/snaptagapp/snaptag-server/internal/export"
	"github.com/snaptagapp/snaptag-server/internal/logger"
	"github.com/snaptagapp/snaptag-server/internal/media/images"
	"github.com/snaptagapp/snaptag-server/internal/notify"
	"github.com/snaptagapp/snaptag-server/internal/photolib"
	"github.com/snaptagapp/snaptag-server/internal/selection"
)

// ProvideCatalogService provides the tag catalog service.
func ProvideCatalogService(i do.Injector) (*catalog.Service, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return catalog.NewService(storeHandle.Store, log.Logger), nil
}

// ProvideCollectionManager provides the image collection manager.
func ProvideCollectionManager(i do.Injector) (*collection.Manager, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return collection.NewManager(storeHandle.Store, cfg.Capture.MaxImages, log.Logger), nil
}

// ProvideSelectionManager provides the tag selection manager.
func ProvideSelectionManager(i do.Injector) (*selection.Manager, error) {
	cfg := do.MustInvoke[*config.Config](i)
	imageManager := do.MustInvoke[*collection.Manager](i)
	log := do.MustInvoke[*logger.Logger](i)

	return selection.NewManager(imageManager, cfg.Catalog.Locale, log.Logger), nil
}

// ExporterHandle wraps the exporter together with its notifier so the
// bus connection is released on shutdown.
type ExporterHandle struct {
	*export.Exporter
	notifier notify.Notifier
}

// Shutdown implements do.Shutdownable.
func (h *ExporterHandle) Shutdown() error {
	if closer, ok := h.notifier.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// ProvideExporter provides the export pipeline.
func ProvideExporter(i do.Injector) (*ExporterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	library := do.MustInvoke[photolib.Library](i)
	perms := do.MustInvoke[photolib.Permissions](i)
	staging := do.MustInvoke[*images.Staging](i)
	notifier := do.MustInvoke[notify.Notifier](i)
	log := do.MustInvoke[*logger.Logger](i)

	exporter := export.New(library, perms, staging, notifier, cfg.Library.AlbumName, cfg.Export.BatchSize, log.Logger)

	return &ExporterHandle{Exporter: exporter, notifier: notifier}, nil
}
