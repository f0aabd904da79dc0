// Package watcher ingests photos dropped into the capture inbox.
//
// Files written to the inbox directory are debounced until they stop
// changing, moved into the captures directory, and registered with the
// image collection. A full collection leaves the file in the inbox.
package watcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/snaptagapp/snaptag-server/internal/collection"
	apperrors "github.com/snaptagapp/snaptag-server/internal/errors"
)

// DefaultSettleDelay is how long a file must stay unchanged before it
// is considered fully written.
const DefaultSettleDelay = 2 * time.Second

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// pendingFile tracks an inbox file that may still be changing.
type pendingFile struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// Inbox watches a single directory for incoming photos.
type Inbox struct {
	inboxDir    string
	capturesDir string
	images      *collection.Manager
	logger      *slog.Logger
	settleDelay time.Duration

	watcher *fsnotify.Watcher

	pending map[string]*pendingFile
	mu      sync.Mutex // protects pending map

	done chan struct{}
	wg   sync.WaitGroup
}

// NewInbox creates an inbox watcher. Both directories are created if
// missing. A settleDelay of zero uses DefaultSettleDelay.
func NewInbox(inboxDir, capturesDir string, images *collection.Manager, settleDelay time.Duration, logger *slog.Logger) (*Inbox, error) {
	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}

	for _, dir := range []string{inboxDir, capturesDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(inboxDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch inbox: %w", err)
	}

	return &Inbox{
		inboxDir:    inboxDir,
		capturesDir: capturesDir,
		images:      images,
		logger:      logger,
		settleDelay: settleDelay,
		watcher:     watcher,
		pending:     make(map[string]*pendingFile),
		done:        make(chan struct{}),
	}, nil
}

// Start processes inbox events until the context is cancelled.
// Files already sitting in the inbox at startup are ingested first.
func (i *Inbox) Start(ctx context.Context) error {
	i.ingestExisting(ctx)

	i.wg.Add(1)
	go i.processEvents(ctx)

	<-ctx.Done()
	return nil
}

// Stop stops the watcher and releases resources.
func (i *Inbox) Stop() error {
	close(i.done)

	i.mu.Lock()
	for _, pending := range i.pending {
		pending.timer.Stop()
	}
	clear(i.pending)
	i.mu.Unlock()

	err := i.watcher.Close()
	i.wg.Wait()
	return err
}

// ingestExisting picks up files dropped while the watcher was down.
func (i *Inbox) ingestExisting(ctx context.Context) {
	entries, err := os.ReadDir(i.inboxDir)
	if err != nil {
		i.logger.Warn("failed to scan inbox", "path", i.inboxDir, "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(i.inboxDir, entry.Name())
		if !isImage(path) {
			continue
		}
		i.ingest(ctx, path)
	}
}

func (i *Inbox) processEvents(ctx context.Context) {
	defer i.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-i.done:
			return
		case event, ok := <-i.watcher.Events:
			if !ok {
				return
			}
			i.handleEvent(event)
		case err, ok := <-i.watcher.Errors:
			if !ok {
				return
			}
			i.logger.Error("inbox watch error", "error", err)
		}
	}
}

func (i *Inbox) handleEvent(event fsnotify.Event) {
	path := event.Name
	if !isImage(path) {
		return
	}

	if event.Op&fsnotify.Remove != 0 {
		i.cancelPending(path)
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
		i.startSettling(path)
	}
}

// startSettling begins or restarts the settle timer for a file.
func (i *Inbox) startSettling(path string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if pending, exists := i.pending[path]; exists {
		pending.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(i.pending, path)
		return
	}
	if info.IsDir() {
		return
	}

	pending := &pendingFile{size: info.Size(), modTime: info.ModTime()}
	pending.timer = time.AfterFunc(i.settleDelay, func() {
		i.checkSettled(path)
	})
	i.pending[path] = pending
}

// checkSettled ingests a file once its size and mtime stop moving.
func (i *Inbox) checkSettled(path string) {
	i.mu.Lock()

	pending, exists := i.pending[path]
	if !exists {
		i.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(i.pending, path)
		i.mu.Unlock()
		return
	}

	if info.Size() != pending.size || info.ModTime() != pending.modTime {
		// Still being written, restart the timer.
		pending.size = info.Size()
		pending.modTime = info.ModTime()
		pending.timer = time.AfterFunc(i.settleDelay, func() {
			i.checkSettled(path)
		})
		i.mu.Unlock()
		return
	}

	delete(i.pending, path)
	i.mu.Unlock()

	i.ingest(context.Background(), path)
}

// ingest moves an inbox file into the captures directory and registers
// it with the collection. On failure the file is moved back so nothing
// is lost; a full collection is expected and logged at warn level.
func (i *Inbox) ingest(ctx context.Context, path string) {
	dst := i.captureDestination(filepath.Base(path))

	if err := moveFile(path, dst); err != nil {
		i.logger.Error("failed to move inbox file", "path", path, "error", err)
		return
	}

	item, err := i.images.Capture(ctx, dst)
	if err != nil {
		if merr := moveFile(dst, path); merr != nil {
			i.logger.Error("failed to return file to inbox", "path", dst, "error", merr)
		}
		if apperrors.Is(err, apperrors.ErrCapacity) {
			i.logger.Warn("collection full, file left in inbox", "path", path)
			return
		}
		i.logger.Error("failed to capture inbox file", "path", path, "error", err)
		return
	}

	i.logger.Info("photo captured from inbox", "image_id", item.ID, "uri", item.URI)
}

// captureDestination picks a free path in the captures directory.
func (i *Inbox) captureDestination(name string) string {
	dst := filepath.Join(i.capturesDir, name)
	if _, err := os.Stat(dst); os.IsNotExist(err) {
		return dst
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		dst = filepath.Join(i.capturesDir, fmt.Sprintf("%s_%d%s", stem, n, ext))
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			return dst
		}
	}
}

func isImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// moveFile renames src to dst, copying when rename crosses filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src) //#nosec G304 -- Paths stay inside the inbox and captures directories
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst) //#nosec G304 -- Paths stay inside the captures directory
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		_ = os.Remove(dst) //nolint:errcheck // Best-effort cleanup of a partial copy
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Remove(src)
}
