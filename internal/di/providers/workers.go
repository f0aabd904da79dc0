package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/snaptagapp/snaptag-server/internal/collection"
	"github.com/snaptagapp/snaptag-server/internal/config"
	"github.com/snaptagapp/snaptag-server/internal/logger"
	"github.com/snaptagapp/snaptag-server/internal/watcher"
)

// InboxWatcherHandle wraps the inbox watcher with shutdown capability.
// The watcher is nil when no inbox path is configured.
type InboxWatcherHandle struct {
	*watcher.Inbox
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *InboxWatcherHandle) Shutdown() error {
	if h.Inbox == nil {
		return nil
	}
	h.cancel()
	return h.Inbox.Stop()
}

// ProvideInboxWatcher provides the capture inbox watcher.
func ProvideInboxWatcher(i do.Injector) (*InboxWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	imageManager := do.MustInvoke[*collection.Manager](i)

	if cfg.Capture.InboxPath == "" {
		log.Info("Capture inbox disabled")
		return &InboxWatcherHandle{}, nil
	}

	capturesDir := filepath.Join(cfg.Storage.DataPath, "captures")
	inbox, err := watcher.NewInbox(cfg.Capture.InboxPath, capturesDir, imageManager, 0, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := inbox.Start(ctx); err != nil {
			log.Error("Inbox watcher stopped", "error", err)
		}
	}()

	log.Info("Capture inbox watching", "path", cfg.Capture.InboxPath)

	return &InboxWatcherHandle{Inbox: inbox, cancel: cancel}, nil
}
