// Package asset resolves model references to local files, downloading
// gs:// objects into a cache directory on first use.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"k8s.io/klog/v2"
)

// Source opens remote objects.
type Source interface {
	Open(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

// Ref is a parsed model reference.
type Ref struct {
	Bucket string
	Object string
	Path   string // set for local references
}

// Remote reports whether the reference points at object storage.
func (r Ref) Remote() bool {
	return r.Bucket != ""
}

func (r Ref) String() string {
	if r.Remote() {
		return "gs://" + r.Bucket + "/" + r.Object
	}
	return r.Path
}

// ParseRef parses a local path or a gs://bucket/object URL.
func ParseRef(ref string) (Ref, error) {
	if ref == "" {
		return Ref{}, errors.New("empty model reference")
	}
	rest, ok := strings.CutPrefix(ref, "gs://")
	if !ok {
		return Ref{Path: ref}, nil
	}

	bucket, object, _ := strings.Cut(rest, "/")
	if bucket == "" || object == "" || strings.HasSuffix(object, "/") {
		return Ref{}, fmt.Errorf("invalid object URL %q: want gs://bucket/object", ref)
	}
	if clean := path.Clean("/" + object); clean != "/"+object {
		return Ref{}, fmt.Errorf("invalid object name %q", object)
	}
	return Ref{Bucket: bucket, Object: object}, nil
}

// Resolver maps model references to readable local paths.
type Resolver struct {
	CacheDir string
	Remote   Source
}

// NewResolver creates a resolver caching downloads under cacheDir. An empty
// cacheDir selects <user cache dir>/nnebind.
func NewResolver(cacheDir string) (*Resolver, error) {
	if cacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("locating cache directory: %w", err)
		}
		cacheDir = filepath.Join(base, "nnebind")
	}
	return &Resolver{CacheDir: cacheDir, Remote: &GCSSource{}}, nil
}

// Resolve returns a local path for ref. Local paths must exist; remote
// objects are downloaded once and then served from the cache.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	parsed, err := ParseRef(ref)
	if err != nil {
		return "", err
	}
	if !parsed.Remote() {
		if _, err := os.Stat(parsed.Path); err != nil {
			return "", fmt.Errorf("model asset: %w", err)
		}
		return parsed.Path, nil
	}
	return r.fetch(ctx, parsed)
}

// CachePath returns where a remote reference is stored locally.
func (r *Resolver) CachePath(ref Ref) string {
	return filepath.Join(r.CacheDir, ref.Bucket, filepath.FromSlash(ref.Object))
}

func (r *Resolver) fetch(ctx context.Context, ref Ref) (string, error) {
	log := klog.FromContext(ctx)

	dest := r.CachePath(ref)
	if _, err := os.Stat(dest); err == nil {
		log.V(2).Info("using cached model", "url", ref.String(), "path", dest)
		return dest, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("checking cache: %w", err)
	}

	if r.Remote == nil {
		return "", fmt.Errorf("no remote source configured for %s", ref)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	log.Info("downloading model", "source", ref.String(), "destination", dest)

	startedAt := time.Now()
	src, err := r.Remote.Open(ctx, ref.Bucket, ref.Object)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", ref, err)
	}
	defer src.Close()

	n, err := writeToFile(ctx, src, dest)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", ref, err)
	}

	log.Info("downloaded model", "source", ref.String(), "bytes", n, "duration", time.Since(startedAt))
	return dest, nil
}

func writeToFile(ctx context.Context, src io.Reader, destinationPath string) (int64, error) {
	log := klog.FromContext(ctx)

	dir := filepath.Dir(destinationPath)
	tempFile, err := os.CreateTemp(dir, "download")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}

	shouldDeleteTempFile := true
	defer func() {
		if shouldDeleteTempFile {
			if err := os.Remove(tempFile.Name()); err != nil {
				log.Error(err, "removing temp file", "path", tempFile.Name())
			}
		}
	}()

	shouldCloseTempFile := true
	defer func() {
		if shouldCloseTempFile {
			if err := tempFile.Close(); err != nil {
				log.Error(err, "closing temp file", "path", tempFile.Name())
			}
		}
	}()

	n, err := io.Copy(tempFile, src)
	if err != nil {
		return n, fmt.Errorf("copying from source: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return n, fmt.Errorf("closing temp file: %w", err)
	}
	shouldCloseTempFile = false

	if err := os.Rename(tempFile.Name(), destinationPath); err != nil {
		return n, fmt.Errorf("renaming temp file: %w", err)
	}
	shouldDeleteTempFile = false

	return n, nil
}
