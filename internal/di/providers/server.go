package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/snaptagapp/snaptag-server/internal/api"
	"github.com/snaptagapp/snaptag-server/internal/catalog"
	"github.com/snaptagapp/snaptag-server/internal/collection"
	"github.com/snaptagapp/snaptag-server/internal/config"
	"github.com/snaptagapp/snaptag-server/internal/logger"
	"github.com/snaptagapp/snaptag-server/internal/selection"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Catalog:    do.MustInvoke[*catalog.Service](i),
		Images:     do.MustInvoke[*collection.Manager](i),
		Selections: do.MustInvoke[*selection.Manager](i),
		Exporter:   do.MustInvoke[*ExporterHandle](i).Exporter,
	}

	handler := api.NewServer(storeHandle.Store, services, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
