// Package blob archiva los documentos emitidos. Drivers: memory (tests y
// desarrollo), fs (disco local) y s3 (AWS S3 o compatible, p. ej. MinIO).
package blob

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/pkg/config"
)

// Open construye el almacén según cfg.Driver. Si cfg.Prefix no está vacío
// todas las claves se guardan bajo ese prefijo.
func Open(ctx context.Context, cfg config.BlobConfig) (ports.DocumentStore, error) {
	var (
		store ports.DocumentStore
		err   error
	)
	switch cfg.Driver {
	case "memory":
		store = NewMemory()
	case "fs", "":
		store, err = NewFS(cfg.Dir)
	case "s3":
		store, err = NewS3(ctx, S3Config{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
	default:
		return nil, fmt.Errorf("blob: driver desconocido %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if p := strings.Trim(cfg.Prefix, "/"); p != "" {
		store = &prefixed{inner: store, prefix: p + "/"}
	}
	return store, nil
}

// sanitizeKey impide claves vacías, absolutas o con "..".
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("blob: clave vacía")
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("blob: clave inválida %q", key)
	}
	return path.Clean(key), nil
}

// prefixed antepone un prefijo a todas las claves.
type prefixed struct {
	inner  ports.DocumentStore
	prefix string
}

func (p *prefixed) Put(ctx context.Context, key string, r io.Reader, contentType string) (ports.Document, error) {
	d, err := p.inner.Put(ctx, p.prefix+key, r, contentType)
	d.Key = strings.TrimPrefix(d.Key, p.prefix)
	return d, err
}

func (p *prefixed) Get(ctx context.Context, key string) (ports.Document, io.ReadCloser, error) {
	d, rc, err := p.inner.Get(ctx, p.prefix+key)
	d.Key = strings.TrimPrefix(d.Key, p.prefix)
	return d, rc, err
}

func (p *prefixed) List(ctx context.Context, prefix string) ([]ports.Document, error) {
	docs, err := p.inner.List(ctx, p.prefix+prefix)
	for i := range docs {
		docs[i].Key = strings.TrimPrefix(docs[i].Key, p.prefix)
	}
	return docs, err
}

func (p *prefixed) PresignURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return p.inner.PresignURL(ctx, p.prefix+key, expiry)
}
