// Package naming assigns collision-free sequence numbers for custom output
// naming. An Allocator is scoped to one batch run and must never be shared
// across runs.
package naming

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
)

// Separator sits between the base name and the sequence number, as in
// base__3.mp4.
const Separator = "__"

// Allocator hands out monotonically increasing sequence numbers for files
// named base__N. The first allocation scans the destination directory and
// starts one past the highest number already used, so re-runs never collide
// with files from earlier batches.
type Allocator struct {
	dir     string
	base    string
	next    int
	scanned bool
}

// NewAllocator creates an allocator for the given destination directory and
// base name. The directory is not scanned until the first Next call.
func NewAllocator(dir, base string) *Allocator {
	return &Allocator{dir: dir, base: base}
}

// Next returns the next free sequence number and advances the counter. The
// counter advances once per allocated name regardless of whether the
// download using it later succeeds.
func (a *Allocator) Next() (int, error) {
	if !a.scanned {
		start, err := a.scan()
		if err != nil {
			return 0, err
		}
		a.next = start
		a.scanned = true
		slog.Debug("naming counter initialized", "base", a.base, "start", start)
	}

	n := a.next
	a.next++
	return n, nil
}

// FileName renders the allocated name without an extension.
func (a *Allocator) FileName(n int) string {
	return fmt.Sprintf("%s%s%d", a.base, Separator, n)
}

func (a *Allocator) scan() (int, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("failed to scan destination %s: %w", a.dir, err)
	}

	pattern, err := regexp.Compile("^" + regexp.QuoteMeta(a.base+Separator) + `(\d+)\.`)
	if err != nil {
		return 0, fmt.Errorf("failed to compile name pattern: %w", err)
	}

	max := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(m[1], "%d", &n); err == nil && n > max {
			max = n
		}
	}

	return max + 1, nil
}
