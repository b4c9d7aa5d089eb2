package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
)

const metaSuffix = ".meta"

// FS almacén en disco bajo root. Junto a cada archivo se guarda un
// sidecar <archivo>.meta con tipo de contenido, tamaño y fecha.
type FS struct {
	root string
}

type fsMeta struct {
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewFS crea el directorio root si no existe.
func NewFS(root string) (*FS, error) {
	if root == "" {
		root = "./data/documents"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob: crear %s: %w", root, err)
	}
	return &FS{root: root}, nil
}

func (s *FS) pathFor(key string) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

// Put escribe a un temporal y lo mueve a su lugar.
func (s *FS) Put(_ context.Context, key string, r io.Reader, contentType string) (ports.Document, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return ports.Document{}, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return ports.Document{}, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return ports.Document{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	size, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return ports.Document{}, err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return ports.Document{}, err
	}
	meta := fsMeta{ContentType: contentType, Size: size, CreatedAt: time.Now().UTC()}
	b, _ := json.Marshal(meta)
	if err := os.WriteFile(p+metaSuffix, b, 0o644); err != nil {
		return ports.Document{}, err
	}
	return ports.Document{Key: strings.TrimPrefix(key, "/"), Size: size, ContentType: contentType, LastModified: meta.CreatedAt}, nil
}

// Get abre el archivo; el llamador lo cierra.
func (s *FS) Get(_ context.Context, key string) (ports.Document, io.ReadCloser, error) {
	p, err := s.pathFor(key)
	if err != nil {
		return ports.Document{}, nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return ports.Document{}, nil, domain.ErrNotFound
	}
	if err != nil {
		return ports.Document{}, nil, err
	}
	doc := s.describe(key, p)
	return doc, f, nil
}

// List recorre root y devuelve las claves con el prefijo, en orden.
func (s *FS) List(_ context.Context, prefix string) ([]ports.Document, error) {
	out := make([]ports.Document, 0)
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, metaSuffix) || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			out = append(out, s.describe(key, p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// PresignURL no está disponible en disco; la descarga pasa por la API.
func (s *FS) PresignURL(context.Context, string, time.Duration) (string, error) {
	return "", ports.ErrUnsupported
}

func (s *FS) describe(key, p string) ports.Document {
	doc := ports.Document{Key: key}
	if b, err := os.ReadFile(p + metaSuffix); err == nil {
		var m fsMeta
		if json.Unmarshal(b, &m) == nil {
			doc.Size, doc.ContentType, doc.LastModified = m.Size, m.ContentType, m.CreatedAt
			return doc
		}
	}
	if fi, err := os.Stat(p); err == nil {
		doc.Size, doc.LastModified = fi.Size(), fi.ModTime().UTC()
	}
	return doc
}
