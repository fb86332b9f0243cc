package interop

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/mod/semver"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/debug"
)

// SourceQuerier walks a Cargo workspace's .rs files and extracts item
// signatures (spec.md §4.4 item 3). The examples pack carries no Rust
// syntax-tree library for Go, so this provider does lexical scanning with
// the standard library's regexp over `pub fn`/`impl` lines — a deliberate,
// documented stdlib choice (see DESIGN.md), not a missed dependency.
type SourceQuerier struct {
	WorkspacePaths []string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	dirty   map[string]bool // crate name -> needs re-scan
}

// NewSourceQuerier builds a provider scanning the given Cargo workspace
// root paths (SPEC_FULL.md §2.3's config.CratePaths).
func NewSourceQuerier(workspacePaths []string) *SourceQuerier {
	return &SourceQuerier{WorkspacePaths: workspacePaths, dirty: make(map[string]bool)}
}

func (s *SourceQuerier) Name() string  { return "source" }
func (s *SourceQuerier) Priority() int { return 10 }

func (s *SourceQuerier) SupportsCrate(name string) bool {
	return s.crateRoot(name) != ""
}

func (s *SourceQuerier) crateRoot(name string) string {
	for _, root := range s.WorkspacePaths {
		candidate := filepath.Join(root, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return ""
}

var (
	pubFnRe   = regexp.MustCompile(`^\s*pub\s+fn\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\(`)
	implRe    = regexp.MustCompile(`^\s*impl(?:<[^>]*>)?\s+(?:([A-Za-z_][A-Za-z0-9_]*)\s+for\s+)?([A-Za-z_][A-Za-z0-9_]*)`)
	versionRe = regexp.MustCompile(`(?m)^version\s*=\s*"([^"]+)"`)
)

func (s *SourceQuerier) QueryCrate(ctx context.Context, name string) (*CrateInfo, error) {
	root := s.crateRoot(name)
	if root == "" {
		return nil, fmt.Errorf("crate %q not found under configured workspace paths", name)
	}

	version, err := bestVersion(root)
	if err != nil {
		debug.Logger().Debug("source querier: no parseable Cargo.toml version", "crate", name, "error", err)
	}

	types := make(map[RustTypePath]TypeInfo)
	var walkErr error
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			walkErr = err
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(path, ".rs") {
			return nil
		}
		scanRustFile(path, types)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking crate %q: %w", name, walkErr)
	}

	debug.Logger().Debug("source querier scanned crate", "crate", name, "version", version, "types", len(types))
	return &CrateInfo{Crate: name, Functions: map[string]MethodSignature{}, Types: types, Traits: map[string]TraitInfo{}}, nil
}

// scanRustFile extracts `impl Type { pub fn method(...) }` blocks via
// simple brace-depth tracking; it is not a full parser, only enough to
// populate inherent method names for the checker's registry queries.
func scanRustFile(path string, types map[RustTypePath]TypeInfo) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	var currentType RustTypePath
	depthAtImpl := -1
	depth := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if m := implRe.FindStringSubmatch(line); m != nil {
			currentType = RustTypePath(m[2])
			depthAtImpl = depth
			if _, ok := types[currentType]; !ok {
				types[currentType] = TypeInfo{Path: currentType, Methods: map[string]MethodSignature{}}
			}
		} else if currentType != "" {
			if m := pubFnRe.FindStringSubmatch(line); m != nil {
				ti := types[currentType]
				ti.Methods[m[1]] = MethodSignature{Name: m[1], Receiver: ReceiverRef}
				types[currentType] = ti
			}
		}
		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if currentType != "" && depth <= depthAtImpl {
			currentType = ""
		}
	}
}

// bestVersion scans root/Cargo.toml for the highest semver-valid version
// string, per spec.md §4.4/SPEC_FULL.md §3.
func bestVersion(root string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(root, "Cargo.toml"))
	if err != nil {
		return "", err
	}
	matches := versionRe.FindAllStringSubmatch(string(raw), -1)
	best := ""
	for _, m := range matches {
		v := "v" + m[1]
		if !semver.IsValid(v) {
			continue
		}
		if best == "" || semver.Compare(v, best) > 0 {
			best = v
		}
	}
	if best == "" {
		return "", fmt.Errorf("no semver-valid version found in Cargo.toml")
	}
	return strings.TrimPrefix(best, "v"), nil
}

// Watch starts an fsnotify watch over every configured workspace path so
// a long-running `--watch` driver (SPEC_FULL.md §3) can invalidate this
// provider's upstream registry cache on source change, instead of relying
// only on the registry's time-unbounded in-memory cache. Invalidation
// itself is the caller's job (it should drop the registry's per-crate
// cache entry when Changed reports a hit); Watch only tracks dirtiness.
func (s *SourceQuerier) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting source watch: %w", err)
	}
	for _, root := range s.WorkspacePaths {
		if err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			return w.Add(path)
		}); err != nil {
			debug.Logger().Debug("source watch: failed to add path", "root", root, "error", err)
		}
	}

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					s.markDirty(ev.Name)
				}
			case <-w.Errors:
				// Best-effort watcher; errors don't abort the pipeline.
			}
		}
	}()
	return nil
}

func (s *SourceQuerier) markDirty(path string) {
	for _, root := range s.WorkspacePaths {
		rel, err := filepath.Rel(root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		crate := strings.SplitN(rel, string(filepath.Separator), 2)[0]
		s.mu.Lock()
		s.dirty[crate] = true
		s.mu.Unlock()
	}
}

// Changed reports and clears whether crate's sources changed since the
// last call, for a caller to decide whether to evict a cached CrateInfo.
func (s *SourceQuerier) Changed(crate string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dirty[crate] {
		delete(s.dirty, crate)
		return true
	}
	return false
}
