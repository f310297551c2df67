package imagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/seronsenapati/STAYLO/internal/domain/gateway"
)

// Local writes uploads into Dir; the HTTP layer serves Dir at /uploads.
type Local struct {
	Dir string
	now func() time.Time
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{Dir: dir, now: time.Now}, nil
}

func (l *Local) Name() string { return "local" }

func (l *Local) Upload(ctx context.Context, u *gateway.Upload) (gateway.StoredImage, error) {
	if err := checkFormat(u.Filename); err != nil {
		return gateway.StoredImage{}, err
	}
	src, err := u.Open()
	if err != nil {
		return gateway.StoredImage{}, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = src.Close() }()

	name := strconv.FormatInt(l.now().UnixNano(), 10) + "-" + safeBase(u.Filename)
	full := filepath.Join(l.Dir, name)
	dst, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return gateway.StoredImage{}, fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, ctxReader{ctx: ctx, r: src}); err != nil {
		_ = dst.Close()
		_ = os.Remove(full)
		return gateway.StoredImage{}, fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(full)
		return gateway.StoredImage{}, fmt.Errorf("write file: %w", err)
	}
	return gateway.StoredImage{Path: full, Filename: name}, nil
}

// ctxReader stops a copy once the request is gone.
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

var _ gateway.ImageStore = (*Local)(nil)
