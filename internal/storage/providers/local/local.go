// Package local is a storage.Client on the local filesystem.
package local

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

	"github.com/tulisify/tulisify/internal/storage"
)

var _ storage.Client = (*Provider)(nil)

// Provider keeps files under a root directory. Writes go to a temp file in
// the target directory and are renamed into place, so readers never see a
// partial file.
type Provider struct {
	root string
}

func New(root string) (*Provider, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Provider{root: abs}, nil
}

func (p *Provider) Root() string {
	return p.root
}

// resolve maps a relative slash path to a filesystem path inside root.
// Any ".." segment is rejected rather than cleaned away.
func (p *Provider) resolve(rel string) (string, error) {
	if strings.ContainsRune(rel, 0) || strings.Contains(rel, "\\") {
		return "", storage.ErrInvalidPath
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", storage.ErrInvalidPath
		}
	}
	return filepath.Join(p.root, filepath.FromSlash(path.Clean("/"+rel))), nil
}

func (p *Provider) relative(full string) string {
	rel, err := filepath.Rel(p.root, full)
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}

func (p *Provider) List(ctx context.Context, dir string) ([]storage.FileInfo, error) {
	full, err := p.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	out := make([]storage.FileInfo, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.HasPrefix(e.Name(), ".upload-") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, toFileInfo(p.relative(filepath.Join(full, e.Name())), info))
	}
	return out, nil
}

func (p *Provider) Download(_ context.Context, rel string) (io.ReadCloser, error) {
	full, err := p.resolve(rel)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", rel, err)
	}
	if info, err := f.Stat(); err == nil && info.IsDir() {
		f.Close()
		return nil, storage.ErrNotFound
	}
	return f, nil
}

func (p *Provider) Upload(ctx context.Context, rel string, content io.Reader) error {
	full, err := p.resolve(rel)
	if err != nil {
		return err
	}
	if full == p.root {
		return storage.ErrInvalidPath
	}
	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", rel, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".upload-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // no-op after a successful rename
	}()

	if _, err := io.Copy(tmpFile, readerWithContext(ctx, content)); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close %s: %w", rel, err)
	}
	if err := os.Rename(tmpPath, full); err != nil {
		return fmt.Errorf("rename into %s: %w", rel, err)
	}
	return nil
}

func (p *Provider) Delete(_ context.Context, rel string) error {
	full, err := p.resolve(rel)
	if err != nil {
		return err
	}
	if full == p.root {
		return storage.ErrInvalidPath
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", rel, err)
	}
	return nil
}

func (p *Provider) Exists(_ context.Context, rel string) (bool, error) {
	full, err := p.resolve(rel)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", rel, err)
	}
	return true, nil
}

func (p *Provider) GetMetadata(_ context.Context, rel string) (*storage.FileInfo, error) {
	full, err := p.resolve(rel)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", rel, err)
	}
	fi := toFileInfo(p.relative(full), info)
	return &fi, nil
}

func toFileInfo(rel string, info fs.FileInfo) storage.FileInfo {
	return storage.FileInfo{
		Name:       info.Name(),
		Path:       rel,
		IsDir:      info.IsDir(),
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
	}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
