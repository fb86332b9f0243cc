package interop

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/crypto/blake2b"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/debug"
)

// rustdocSchema is the bundled JSON Schema (SPEC_FULL.md §3) a rustdoc
// JSON payload must satisfy before RustdocQuerier decodes it: every crate
// item rustdoc emits has at least a name and a kind, and the payload
// itself is an object keyed by "index".
const rustdocSchema = `{
  "type": "object",
  "required": ["index"],
  "properties": {
    "index": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["name", "kind"],
        "properties": {
          "name": {"type": ["string", "null"]},
          "kind": {"type": "string"}
        }
      }
    }
  }
}`

// rustdocItem is the subset of one rustdoc JSON index entry this provider
// understands: enough to reconstruct inherent methods and trait impls.
type rustdocItem struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	Parent string `json:"parent,omitempty"`
}

type rustdocPayload struct {
	Index map[string]rustdocItem `json:"index"`
}

// cacheEntry is one row of the on-disk cache index (SPEC_FULL.md §3): the
// CBOR-encoded index.cbor maps crate name to fetch time + content hash,
// while the rustdoc JSON payload itself is stored as a plain .json file
// alongside it (spec.md §6 cache layout).
type cacheEntry struct {
	FetchedAt time.Time `cbor:"fetched_at"`
	Hash      string    `cbor:"hash"`
}

type cacheIndex map[string]cacheEntry

// RustdocQuerier shells out to `rustdoc --output-format json` and caches
// results on disk for 24 hours keyed by crate name (spec.md §4.4 item 2).
type RustdocQuerier struct {
	CacheDir string
	TTL      time.Duration
	RunRustdoc func(ctx context.Context, crate string) ([]byte, error) // overridable for tests
	schema   *jsonschema.Schema
}

// NewRustdocQuerier builds the provider, compiling its bundled schema.
func NewRustdocQuerier(cacheDir string, ttl time.Duration) (*RustdocQuerier, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rustdoc.json", strings.NewReader(rustdocSchema)); err != nil {
		return nil, fmt.Errorf("compiling rustdoc schema: %w", err)
	}
	schema, err := compiler.Compile("rustdoc.json")
	if err != nil {
		return nil, fmt.Errorf("compiling rustdoc schema: %w", err)
	}
	q := &RustdocQuerier{CacheDir: cacheDir, TTL: ttl, schema: schema}
	q.RunRustdoc = q.execRustdoc
	return q, nil
}

func (q *RustdocQuerier) Name() string  { return "rustdoc" }
func (q *RustdocQuerier) Priority() int { return 50 }

// SupportsCrate is permissive: the rustdoc provider is attempted for any
// crate name the builtin provider didn't already claim.
func (q *RustdocQuerier) SupportsCrate(name string) bool { return name != "" }

func (q *RustdocQuerier) QueryCrate(ctx context.Context, name string) (*CrateInfo, error) {
	payload, err := q.loadOrFetch(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("rustdoc querier for %q: %w", name, err)
	}
	return payloadToCrateInfo(name, payload), nil
}

func (q *RustdocQuerier) loadOrFetch(ctx context.Context, crate string) (*rustdocPayload, error) {
	cachePath := filepath.Join(q.CacheDir, crate+".json")
	indexPath := filepath.Join(q.CacheDir, "index.cbor")

	idx, _ := readCacheIndex(indexPath)
	if entry, ok := idx[crate]; ok && time.Since(entry.FetchedAt) < q.TTL {
		if raw, err := os.ReadFile(cachePath); err == nil {
			if hashHex(raw) == entry.Hash {
				debug.Logger().Debug("rustdoc cache hit", "crate", crate)
				return decodeValidated(q.schema, raw)
			}
		}
	}

	debug.Logger().Debug("rustdoc cache miss, invoking rustdoc", "crate", crate)
	raw, err := q.RunRustdoc(ctx, crate)
	if err != nil {
		return nil, err
	}
	payload, err := decodeValidated(q.schema, raw)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(q.CacheDir, 0o755); err == nil {
		tmp := cachePath + ".tmp"
		if err := os.WriteFile(tmp, raw, 0o644); err == nil {
			_ = os.Rename(tmp, cachePath) // atomic replace, spec.md §6
		}
		if idx == nil {
			idx = make(cacheIndex)
		}
		idx[crate] = cacheEntry{FetchedAt: time.Now(), Hash: hashHex(raw)}
		_ = writeCacheIndex(indexPath, idx)
	}
	return payload, nil
}

func decodeValidated(schema *jsonschema.Schema, raw []byte) (*rustdocPayload, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("decoding rustdoc json: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("rustdoc json failed schema validation: %w", err)
	}
	var payload rustdocPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding rustdoc json: %w", err)
	}
	return &payload, nil
}

func (q *RustdocQuerier) execRustdoc(ctx context.Context, crate string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "rustdoc", "--output-format", "json", "--crate-name", crate)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("running rustdoc for %q: %w", crate, err)
	}
	return out, nil
}

// hashHex renders a crate-content hash the way core/planfmt/writer.go
// content-addresses plan bodies: BLAKE2b-256 over the raw bytes.
func hashHex(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func readCacheIndex(path string) (cacheIndex, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx cacheIndex
	if err := cbor.Unmarshal(raw, &idx); err != nil {
		return nil, err
	}
	return idx, nil
}

func writeCacheIndex(path string, idx cacheIndex) error {
	raw, err := cbor.Marshal(idx)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// payloadToCrateInfo reduces a rustdoc JSON index into the registry's
// CrateInfo shape: methods nest under their parent struct/enum/trait item
// by rustdoc's own "parent" linkage.
func payloadToCrateInfo(crate string, payload *rustdocPayload) *CrateInfo {
	types := make(map[RustTypePath]TypeInfo)
	traits := make(map[string]TraitInfo)

	for _, item := range payload.Index {
		switch item.Kind {
		case "struct", "enum":
			if _, ok := types[RustTypePath(item.Name)]; !ok {
				types[RustTypePath(item.Name)] = TypeInfo{
					Path:    RustTypePath(item.Name),
					Methods: map[string]MethodSignature{},
				}
			}
		case "trait":
			if _, ok := traits[item.Name]; !ok {
				traits[item.Name] = TraitInfo{Name: item.Name, Methods: map[string]MethodSignature{}}
			}
		}
	}
	for _, item := range payload.Index {
		if item.Kind != "function" || item.Parent == "" {
			continue
		}
		sig := MethodSignature{Name: item.Name, Receiver: ReceiverRef}
		if ti, ok := types[RustTypePath(item.Parent)]; ok {
			ti.Methods[item.Name] = sig
			types[RustTypePath(item.Parent)] = ti
		} else if tr, ok := traits[item.Parent]; ok {
			tr.Methods[item.Name] = sig
			traits[item.Parent] = tr
		}
	}

	return &CrateInfo{
		Crate:     crate,
		Functions: map[string]MethodSignature{},
		Types:     types,
		Traits:    traits,
	}
}
