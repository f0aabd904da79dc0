package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/snaptagapp/snaptag-server/internal/config"
	"github.com/snaptagapp/snaptag-server/internal/logger"
	"github.com/snaptagapp/snaptag-server/internal/media/images"
	"github.com/snaptagapp/snaptag-server/internal/notify"
	"github.com/snaptagapp/snaptag-server/internal/photolib"
	"github.com/snaptagapp/snaptag-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the badger document store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Storage.DataPath, "db")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// ProvideStaging provides the export staging area.
func ProvideStaging(i do.Injector) (*images.Staging, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return images.NewStaging(cfg.Storage.StagingPath)
}

// ProvideLibrary provides the filesystem photo library.
func ProvideLibrary(i do.Injector) (photolib.Library, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return photolib.NewFSLibrary(cfg.Library.Path, log.Logger)
}

// ProvidePermissions provides the library write-permission checker.
func ProvidePermissions(i do.Injector) (photolib.Permissions, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return photolib.NewDirPermissions(cfg.Library.Path), nil
}

// ProvideNotifier provides the export summary notifier.
// Falls back to a no-op when notifications are disabled or the session
// bus is unreachable.
func ProvideNotifier(i do.Injector) (notify.Notifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Notify.Enabled {
		return notify.Noop{}, nil
	}

	desktop, err := notify.NewDesktop(log.Logger)
	if err != nil {
		log.Warn("Desktop notifications unavailable", "error", err)
		return notify.Noop{}, nil
	}

	return desktop, nil
}
