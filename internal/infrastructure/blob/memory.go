package blob

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/Cotizaciones-api/internal/application/ports"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
)

type memObject struct {
	data []byte
	doc  ports.Document
}

// Memory almacén en memoria; se pierde al reiniciar.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

// NewMemory crea un almacén vacío.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

// Put guarda o reemplaza key.
func (m *Memory) Put(_ context.Context, key string, r io.Reader, contentType string) (ports.Document, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return ports.Document{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ports.Document{}, err
	}
	doc := ports.Document{Key: k, Size: int64(len(data)), ContentType: contentType, LastModified: time.Now().UTC()}
	m.mu.Lock()
	m.objects[k] = memObject{data: data, doc: doc}
	m.mu.Unlock()
	return doc, nil
}

// Get devuelve una copia del contenido.
func (m *Memory) Get(_ context.Context, key string) (ports.Document, io.ReadCloser, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return ports.Document{}, nil, err
	}
	m.mu.RLock()
	obj, ok := m.objects[k]
	m.mu.RUnlock()
	if !ok {
		return ports.Document{}, nil, domain.ErrNotFound
	}
	return obj.doc, io.NopCloser(bytes.NewReader(obj.data)), nil
}

// List claves con el prefijo, en orden.
func (m *Memory) List(_ context.Context, prefix string) ([]ports.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ports.Document, 0)
	for k, obj := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, obj.doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// PresignURL no está disponible en memoria.
func (m *Memory) PresignURL(context.Context, string, time.Duration) (string, error) {
	return "", ports.ErrUnsupported
}
