// Package export copies the image collection into a device photo-library
// album with deduplicated, tag-derived filenames.
package export

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/snaptagapp/snaptag-server/internal/domain"
	apperrors "github.com/snaptagapp/snaptag-server/internal/errors"
	"github.com/snaptagapp/snaptag-server/internal/media/images"
	"github.com/snaptagapp/snaptag-server/internal/notify"
	"github.com/snaptagapp/snaptag-server/internal/photolib"
)

// DefaultBatchSize is the number of images staged and attached per batch.
const DefaultBatchSize = 10

// Summary reports the outcome of an export run. A gap between Exported
// and Total is the only per-run signal of partial failure.
type Summary struct {
	Exported int `json:"exported"`
	Total    int `json:"total"`
}

// Exporter runs the export pipeline against a photo library.
//
// Batches are processed strictly in sequence, and images within a batch
// are staged strictly in sequence: filename deduplication relies on a
// single per-run name set, so concurrent staging would race on it.
type Exporter struct {
	library   photolib.Library
	perms     photolib.Permissions
	staging   *images.Staging
	notifier  notify.Notifier
	logger    *slog.Logger
	albumName string
	batchSize int
	now       func() time.Time
}

// New creates an exporter targeting the album named albumName.
func New(
	library photolib.Library,
	perms photolib.Permissions,
	staging *images.Staging,
	notifier notify.Notifier,
	albumName string,
	batchSize int,
	logger *slog.Logger,
) *Exporter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	return &Exporter{
		library:   library,
		perms:     perms,
		staging:   staging,
		notifier:  notifier,
		logger:    logger,
		albumName: albumName,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Export copies items into the target album and returns a summary.
//
// An empty input returns {0,0} without requesting permission or touching
// the library. Permission denial aborts before any side effects. The
// album is created lazily, seeded by the first image that stages
// successfully; if nothing stages, the whole run fails. Per-image
// staging or asset-creation failures are logged and skipped, never
// aborting the run. A run always processes all batches once started.
func (e *Exporter) Export(ctx context.Context, items []domain.ImageItem) (Summary, error) {
	total := len(items)
	if total == 0 {
		return Summary{Exported: 0, Total: 0}, nil
	}

	log := e.logger.With("run_id", uuid.NewString(), "album", e.albumName, "total", total)
	log.Info("export started")

	granted, err := e.perms.RequestWrite(ctx)
	if err != nil {
		return Summary{Total: total}, apperrors.Wrap(err, apperrors.CodePermissionDenied, "library permission request failed")
	}
	if !granted {
		log.Warn("export aborted, library write permission denied")
		return Summary{Total: total}, apperrors.PermissionDenied("photo library write permission denied")
	}

	album, err := e.library.FindAlbum(ctx, e.albumName)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			log.Warn("album lookup failed, will create lazily", "error", err)
		}
		album = nil
	}

	namer := newNamer()
	exported := 0

	for start := 0; start < total; start += e.batchSize {
		end := min(start+e.batchSize, total)
		batch := items[start:end]

		var assetIDs []string
		for _, item := range batch {
			name := namer.unique(baseName(item, e.now()))

			assetID, seeded, err := e.exportOne(ctx, name, item.URI, &album, log)
			if err != nil {
				log.Warn("image skipped", "image_id", item.ID, "name", name, "error", err)
				continue
			}
			exported++
			if !seeded {
				// The seed asset is attached by album creation itself.
				assetIDs = append(assetIDs, assetID)
			}
		}

		if album != nil && len(assetIDs) > 0 {
			if err := e.library.AddToAlbum(ctx, album.ID, assetIDs); err != nil {
				log.Error("batch attach failed", "batch_start", start, "assets", len(assetIDs), "error", err)
			}
		}
	}

	if album == nil {
		log.Error("export failed, no image could be staged")
		return Summary{Total: total}, apperrors.AlbumCreation("could not create album: no image could be staged")
	}

	log.Info("export finished", "exported", exported)
	if err := e.notifier.ExportFinished(ctx, exported, total); err != nil {
		log.Warn("export notification failed", "error", err)
	}

	return Summary{Exported: exported, Total: total}, nil
}

// exportOne stages one image and materializes it as a library asset.
// When no album exists yet, the staged file seeds album creation and
// seeded is true. The staged copy is released whether or not asset
// creation succeeds.
func (e *Exporter) exportOne(ctx context.Context, name, uri string, album **photolib.Album, log *slog.Logger) (assetID string, seeded bool, err error) {
	staged, err := e.staging.Stage(name, uri)
	if err != nil {
		return "", false, err
	}
	defer func() {
		if rerr := e.staging.Release(staged); rerr != nil {
			log.Warn("staged file release failed", "path", staged, "error", rerr)
		}
	}()

	if *album == nil {
		created, seedAsset, err := e.library.CreateAlbum(ctx, e.albumName, staged)
		if err != nil {
			return "", false, err
		}
		*album = created
		log.Info("album created", "album_id", created.ID, "seed_asset", seedAsset.ID)
		return seedAsset.ID, true, nil
	}

	asset, err := e.library.CreateAsset(ctx, staged)
	if err != nil {
		return "", false, err
	}
	return asset.ID, false, nil
}
