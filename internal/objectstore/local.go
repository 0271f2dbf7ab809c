package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/edsrzf/mmap-go"

	"github.com/xtdb-labs/xtdb/internal/xerrors"
)

// Local is a Store backed by the local filesystem, memory-mapping files for
// reads the way a production object-store client would mmap a locally
// cached page instead of copying it.
type Local struct {
	root string

	mu   sync.Mutex
	maps map[string]mmap.MMap
}

// NewLocal creates a Local store rooted at dir, creating it if necessary.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("objectstore: mkdir %s: %w", dir, err)
	}
	return &Local{root: dir, maps: make(map[string]mmap.MMap)}, nil
}

func (l *Local) abs(path string) string {
	return filepath.Join(l.root, filepath.FromSlash(path))
}

func (l *Local) mmapFor(path string) (mmap.MMap, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.maps[path]; ok {
		return m, nil
	}
	f, err := os.Open(l.abs(path))
	if err != nil {
		return nil, fmt.Errorf("objectstore: open %s: %w", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		l.maps[path] = mmap.MMap{}
		return l.maps[path], nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("objectstore: mmap %s: %w", path, err)
	}
	l.maps[path] = m
	return m, nil
}

// readBackoff bounds the retry for an idempotent read through to the
// underlying filesystem (§7: "StorageError... retried transparently for
// idempotent reads"), the same shape `github.com/cenkalti/backoff/v4`
// gives the teacher's own retried network calls.
func readBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	return backoff.WithMaxRetries(b, 3)
}

func (l *Local) ReadRange(ctx context.Context, path string, offset, length int64) ([]byte, error) {
	var m mmap.MMap
	op := func() error {
		mm, err := l.mmapFor(path)
		if err != nil {
			return err
		}
		m = mm
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(readBackoff(), ctx)); err != nil {
		return nil, xerrors.Storage(fmt.Sprintf("objectstore: read %s", path), err)
	}

	if offset < 0 || offset > int64(len(m)) {
		return nil, xerrors.InvalidArgument("objectstore: %s: offset %d out of range", path, offset)
	}
	end := int64(len(m))
	if length >= 0 && offset+length < end {
		end = offset + length
	}
	out := make([]byte, end-offset)
	copy(out, m[offset:end])
	return out, nil
}

func (l *Local) Size(_ context.Context, path string) (int64, error) {
	info, err := os.Stat(l.abs(path))
	if err != nil {
		return 0, fmt.Errorf("objectstore: stat %s: %w", path, err)
	}
	return info.Size(), nil
}

func (l *Local) Write(_ context.Context, path string, data []byte) error {
	full := l.abs(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("objectstore: mkdir for %s: %w", path, err)
	}
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("objectstore: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		return fmt.Errorf("objectstore: publish %s: %w", path, err)
	}
	return nil
}

func (l *Local) Delete(_ context.Context, path string) error {
	l.mu.Lock()
	if m, ok := l.maps[path]; ok {
		if len(m) > 0 {
			_ = m.Unmap()
		}
		delete(l.maps, path)
	}
	l.mu.Unlock()
	if err := os.Remove(l.abs(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("objectstore: delete %s: %w", path, err)
	}
	return nil
}

func (l *Local) List(_ context.Context, prefix string) ([]string, error) {
	root := l.abs(prefix)
	var out []string
	err := filepath.Walk(filepath.Dir(root), func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: list %s: %w", prefix, err)
	}
	sort.Strings(out)
	return out, nil
}
