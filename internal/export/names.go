package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/snaptagapp/snaptag-server/internal/domain"
	"github.com/snaptagapp/snaptag-server/internal/util"
)

const (
	nameSeparator      = "_"
	untaggedNameLayout = "IMG_20060102_150405"
)

// baseName derives an export filename from the image's tags, joined in
// list order. Tag names are sanitized for filesystem use; untagged
// images, or images whose tags sanitize away entirely, fall back to a
// timestamp name.
func baseName(item domain.ImageItem, now time.Time) string {
	parts := make([]string, 0, len(item.Tags))
	for _, name := range item.TagNames() {
		if s := util.SanitizeFilename(name); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return now.Format(untaggedNameLayout)
	}
	return strings.Join(parts, nameSeparator)
}

// namer deduplicates filenames within a single export run.
// Names are never persisted across runs; collisions with assets from
// earlier exports are the library's problem, not the namer's.
//
// Not safe for concurrent use. Export stages strictly in sequence,
// which keeps suffix assignment deterministic for a given input order.
type namer struct {
	used map[string]struct{}
}

func newNamer() *namer {
	return &namer{used: make(map[string]struct{})}
}

// unique returns base, or base with the first free integer suffix
// (base_1, base_2, ...) when base was already handed out this run.
// The returned name is recorded before returning.
func (n *namer) unique(base string) string {
	name := base
	for i := 1; ; i++ {
		if _, taken := n.used[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s%s%d", base, nameSeparator, i)
	}
	n.used[name] = struct{}{}
	return name
}
