// Package testutil contiene repositorios en memoria con las mismas reglas que
// los adaptadores de postgres (unicidad, cascadas, orden, nil si no existe).
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/repository"
)

type data struct {
	users      map[string]entity.User
	library    map[string]entity.PartLibraryItem
	quotes     map[string]entity.Quote
	parts      map[string]entity.QuotePart
	columns    map[string]entity.GridColumn
	defCells   map[string]entity.DefinitionCell
	countCells map[string]entity.CountCell
	tracking   map[string]entity.TrackingEntry
	audit      []entity.AuditEntry
	seq        int64
}

func (d *data) clone() data {
	return data{
		users:      cloneMap(d.users),
		library:    cloneMap(d.library),
		quotes:     cloneMap(d.quotes),
		parts:      cloneMap(d.parts),
		columns:    cloneMap(d.columns),
		defCells:   cloneMap(d.defCells),
		countCells: cloneMap(d.countCells),
		tracking:   cloneMap(d.tracking),
		audit:      append([]entity.AuditEntry(nil), d.audit...),
		seq:        d.seq,
	}
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store base de datos en memoria. Implementa repository.TxRunner: si fn
// falla se restaura el estado previo.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	d    data

	// failNext errores programados por operación ("CreateColumn",
	// "UpsertCountCell"...); cada uno se consume una vez.
	failMu   sync.Mutex
	failNext map[string]error
}

// NewStore crea una base vacía.
func NewStore() *Store {
	return &Store{d: data{
		users:      map[string]entity.User{},
		library:    map[string]entity.PartLibraryItem{},
		quotes:     map[string]entity.Quote{},
		parts:      map[string]entity.QuotePart{},
		columns:    map[string]entity.GridColumn{},
		defCells:   map[string]entity.DefinitionCell{},
		countCells: map[string]entity.CountCell{},
		tracking:   map[string]entity.TrackingEntry{},
	}}
}

// FailNext programa un error para la próxima llamada a op.
func (s *Store) FailNext(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if s.failNext == nil {
		s.failNext = map[string]error{}
	}
	s.failNext[op] = err
}

func (s *Store) injected(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	err := s.failNext[op]
	delete(s.failNext, op)
	return err
}

// Run ejecuta fn con los mismos repositorios; revierte si fn falla.
func (s *Store) Run(_ context.Context, fn func(r repository.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	snapshot := s.d.clone()
	s.mu.Unlock()
	if err := fn(s.Repos()); err != nil {
		s.mu.Lock()
		s.d = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Repos repositorios de la base.
func (s *Store) Repos() repository.Repos {
	return repository.Repos{
		Quotes:     s.Quotes(),
		QuoteParts: s.QuoteParts(),
		Grid:       s.Grid(),
		Tracking:   s.Tracking(),
	}
}

func (s *Store) Users() repository.UserRepository { return userRepo{s} }
func (s *Store) Library() repository.PartLibraryRepository { return libraryRepo{s} }
func (s *Store) Quotes() repository.QuoteRepository { return quoteRepo{s} }
func (s *Store) QuoteParts() repository.QuotePartRepository { return quotePartRepo{s} }
func (s *Store) Grid() repository.GridRepository { return gridRepo{s} }
func (s *Store) Tracking() repository.TrackingRepository { return trackingRepo{s} }
func (s *Store) Audit() repository.AuditRepository { return auditRepo{s} }

// AuditEntries copia del log de auditoría.
func (s *Store) AuditEntries() []entity.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.AuditEntry(nil), s.d.audit...)
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}

// ── users ─────────────────────────────────────────────────────────────────────

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.d.users {
		if strings.EqualFold(x.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.d.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.d.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.d.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r userRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.d.users[u.ID] = *u
	return nil
}

func (r userRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.User, 0, len(r.s.d.users))
	for _, u := range r.s.d.users {
		u := u
		list = append(list, &u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, limit, offset), nil
}

// ── part library ──────────────────────────────────────────────────────────────

type libraryRepo struct{ s *Store }

func (r libraryRepo) Create(_ context.Context, p *entity.PartLibraryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.d.library {
		if x.PartNumber == p.PartNumber {
			return domain.ErrDuplicate
		}
	}
	r.s.d.library[p.ID] = *p
	return nil
}

func (r libraryRepo) GetByID(_ context.Context, id string) (*entity.PartLibraryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.d.library[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r libraryRepo) GetByPartNumber(_ context.Context, pn string) (*entity.PartLibraryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.d.library {
		if p.PartNumber == pn {
			return &p, nil
		}
	}
	return nil, nil
}

func (r libraryRepo) Update(_ context.Context, p *entity.PartLibraryItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.library[p.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, x := range r.s.d.library {
		if id != p.ID && x.PartNumber == p.PartNumber {
			return domain.ErrDuplicate
		}
	}
	r.s.d.library[p.ID] = *p
	return nil
}

func (r libraryRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.library[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.d.library, id)
	return nil
}

func (r libraryRepo) Search(_ context.Context, search string, limit, offset int) ([]*entity.PartLibraryItem, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.PartLibraryItem, 0)
	for _, p := range r.s.d.library {
		p := p
		if search == "" || contains(p.PartNumber, search) || contains(p.Description, search) || contains(p.Category, search) {
			list = append(list, &p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].PartNumber < list[j].PartNumber })
	return page(list, limit, offset), len(list), nil
}

// ── quotes ────────────────────────────────────────────────────────────────────

type quoteRepo struct{ s *Store }

func (r quoteRepo) Create(_ context.Context, q *entity.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.d.quotes {
		if x.Number == q.Number {
			return domain.ErrDuplicate
		}
	}
	r.s.d.quotes[q.ID] = *q
	return nil
}

func (r quoteRepo) GetByID(_ context.Context, id string) (*entity.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.d.quotes[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r quoteRepo) Update(_ context.Context, q *entity.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.quotes[q.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.d.quotes[q.ID] = *q
	return nil
}

// Delete elimina en cascada partes, columnas, celdas y avances.
func (r quoteRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.quotes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.d.quotes, id)
	for pid, p := range r.s.d.parts {
		if p.QuoteID == id {
			r.s.deletePartLocked(pid)
		}
	}
	for cid, c := range r.s.d.columns {
		if c.QuoteID == id {
			r.s.deleteColumnLocked(cid)
		}
	}
	for tid, t := range r.s.d.tracking {
		if t.QuoteID == id {
			delete(r.s.d.tracking, tid)
		}
	}
	return nil
}

func (r quoteRepo) Search(_ context.Context, search string, limit, offset int) ([]*entity.Quote, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.Quote, 0)
	for _, q := range r.s.d.quotes {
		q := q
		if search == "" || contains(q.Number, search) || contains(q.CustomerName, search) ||
			contains(q.ProjectName, search) || contains(q.Location, search) {
			list = append(list, &q)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].Number > list[j].Number
	})
	return page(list, limit, offset), len(list), nil
}

func (r quoteRepo) NextNumber(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.seq++
	return r.s.d.seq, nil
}

// ── quote parts ───────────────────────────────────────────────────────────────

type quotePartRepo struct{ s *Store }

func (r quotePartRepo) Create(_ context.Context, p *entity.QuotePart) error {
	if err := r.s.injected("CreateQuotePart"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.quotes[p.QuoteID]; !ok {
		return domain.ErrNotFound
	}
	maxPos := 0
	for _, x := range r.s.d.parts {
		if x.QuoteID != p.QuoteID {
			continue
		}
		if x.PartNumber == p.PartNumber {
			return domain.ErrDuplicate
		}
		maxPos = max(maxPos, x.Position)
	}
	if p.Position <= 0 {
		p.Position = maxPos + 1
	}
	r.s.d.parts[p.ID] = *p
	return nil
}

func (r quotePartRepo) GetByID(_ context.Context, id string) (*entity.QuotePart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.d.parts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r quotePartRepo) Update(_ context.Context, p *entity.QuotePart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.parts[p.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, x := range r.s.d.parts {
		if id != p.ID && x.QuoteID == p.QuoteID && x.PartNumber == p.PartNumber {
			return domain.ErrDuplicate
		}
	}
	r.s.d.parts[p.ID] = *p
	return nil
}

func (r quotePartRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.parts[id]; !ok {
		return domain.ErrNotFound
	}
	r.s.deletePartLocked(id)
	return nil
}

func (r quotePartRepo) ListByQuote(_ context.Context, quoteID string) ([]*entity.QuotePart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.QuotePart, 0)
	for _, p := range r.s.d.parts {
		p := p
		if p.QuoteID == quoteID {
			list = append(list, &p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Position != list[j].Position {
			return list[i].Position < list[j].Position
		}
		return list[i].PartNumber < list[j].PartNumber
	})
	return list, nil
}

func (s *Store) deletePartLocked(id string) {
	delete(s.d.parts, id)
	for cid, c := range s.d.defCells {
		if c.QuotePartID == id {
			delete(s.d.defCells, cid)
		}
	}
	for tid, t := range s.d.tracking {
		lines := t.Lines[:0:0]
		for _, l := range t.Lines {
			if l.QuotePartID != id {
				lines = append(lines, l)
			}
		}
		t.Lines = lines
		s.d.tracking[tid] = t
	}
}

// ── grid ──────────────────────────────────────────────────────────────────────

type gridRepo struct{ s *Store }

func (r gridRepo) CreateColumn(_ context.Context, c *entity.GridColumn) error {
	if err := r.s.injected("CreateColumn"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.quotes[c.QuoteID]; !ok {
		return domain.ErrNotFound
	}
	maxPos := 0
	for _, x := range r.s.d.columns {
		if x.QuoteID != c.QuoteID || x.Kind != c.Kind {
			continue
		}
		if x.Name == c.Name {
			return domain.ErrDuplicate
		}
		maxPos = max(maxPos, x.Position)
	}
	c.Position = maxPos + 1
	r.s.d.columns[c.ID] = *c
	return nil
}

func (r gridRepo) GetColumn(_ context.Context, id string) (*entity.GridColumn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.d.columns[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r gridRepo) GetColumnByName(_ context.Context, quoteID string, kind entity.GridKind, name string) (*entity.GridColumn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.d.columns {
		if c.QuoteID == quoteID && c.Kind == kind && c.Name == name {
			return &c, nil
		}
	}
	return nil, nil
}

func (r gridRepo) ListColumns(_ context.Context, quoteID string, kind entity.GridKind) ([]*entity.GridColumn, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.columnsLocked(quoteID, kind), nil
}

func (s *Store) columnsLocked(quoteID string, kind entity.GridKind) []*entity.GridColumn {
	list := make([]*entity.GridColumn, 0)
	for _, c := range s.d.columns {
		c := c
		if c.QuoteID == quoteID && c.Kind == kind {
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Position != list[j].Position {
			return list[i].Position < list[j].Position
		}
		return list[i].Name < list[j].Name
	})
	return list
}

func (r gridRepo) DeleteColumn(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.columns[id]; !ok {
		return domain.ErrNotFound
	}
	r.s.deleteColumnLocked(id)
	return nil
}

func (s *Store) deleteColumnLocked(id string) {
	delete(s.d.columns, id)
	for cid, c := range s.d.defCells {
		if c.ColumnID == id {
			delete(s.d.defCells, cid)
		}
	}
	for cid, c := range s.d.countCells {
		if c.ColumnID == id || c.RowID == id {
			delete(s.d.countCells, cid)
		}
	}
}

func (r gridRepo) CreateDefinitionCells(_ context.Context, cells []*entity.DefinitionCell) error {
	if err := r.s.injected("CreateDefinitionCells"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range cells {
		if r.s.findDefLocked(c.ColumnID, c.QuotePartID) != nil {
			continue
		}
		r.s.d.defCells[c.ID] = *c
	}
	return nil
}

func (s *Store) findDefLocked(columnID, partID string) *entity.DefinitionCell {
	for _, c := range s.d.defCells {
		if c.ColumnID == columnID && c.QuotePartID == partID {
			return &c
		}
	}
	return nil
}

func (r gridRepo) ListDefinitionCells(_ context.Context, quoteID string, kind entity.GridKind) ([]*entity.DefinitionCell, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.DefinitionCell, 0)
	for _, c := range r.s.d.defCells {
		c := c
		col, ok := r.s.d.columns[c.ColumnID]
		if ok && col.QuoteID == quoteID && col.Kind == kind {
			list = append(list, &c)
		}
	}
	return list, nil
}

func (r gridRepo) UpsertDefinitionCell(_ context.Context, c *entity.DefinitionCell) (*entity.DefinitionCell, error) {
	if err := r.s.injected("UpsertDefinitionCell"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.columns[c.ColumnID]; !ok {
		return nil, domain.ErrNotFound
	}
	if _, ok := r.s.d.parts[c.QuotePartID]; !ok {
		return nil, domain.ErrNotFound
	}
	out := *c
	if cur := r.s.findDefLocked(c.ColumnID, c.QuotePartID); cur != nil {
		out.ID = cur.ID
	}
	r.s.d.defCells[out.ID] = out
	return &out, nil
}

func (r gridRepo) ListCountCells(_ context.Context, quoteID string, kind entity.GridKind) ([]*entity.CountCell, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.CountCell, 0)
	for _, c := range r.s.d.countCells {
		c := c
		col, ok := r.s.d.columns[c.ColumnID]
		if ok && col.QuoteID == quoteID && col.Kind == kind {
			list = append(list, &c)
		}
	}
	return list, nil
}

func (r gridRepo) UpsertCountCell(_ context.Context, c *entity.CountCell) (*entity.CountCell, error) {
	if err := r.s.injected("UpsertCountCell"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.columns[c.ColumnID]; !ok {
		return nil, domain.ErrNotFound
	}
	if _, ok := r.s.d.columns[c.RowID]; !ok {
		return nil, domain.ErrNotFound
	}
	out := *c
	for _, cur := range r.s.d.countCells {
		if cur.ColumnID == c.ColumnID && cur.RowID == c.RowID {
			out.ID = cur.ID
		}
	}
	r.s.d.countCells[out.ID] = out
	return &out, nil
}

// ── tracking ──────────────────────────────────────────────────────────────────

type trackingRepo struct{ s *Store }

func (r trackingRepo) Create(_ context.Context, e *entity.TrackingEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.quotes[e.QuoteID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	cp.Lines = append([]entity.PartQuantity(nil), e.Lines...)
	r.s.d.tracking[e.ID] = cp
	return nil
}

func (r trackingRepo) GetByID(_ context.Context, id string) (*entity.TrackingEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.d.tracking[id]
	if !ok {
		return nil, nil
	}
	e.Lines = append([]entity.PartQuantity(nil), e.Lines...)
	return &e, nil
}

func (r trackingRepo) Update(_ context.Context, e *entity.TrackingEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.tracking[e.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *e
	cp.Lines = append([]entity.PartQuantity(nil), e.Lines...)
	r.s.d.tracking[e.ID] = cp
	return nil
}

func (r trackingRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.tracking[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.d.tracking, id)
	return nil
}

func (r trackingRepo) ListByQuote(_ context.Context, quoteID string, kind entity.TrackingKind) ([]*entity.TrackingEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.TrackingEntry, 0)
	for _, e := range r.s.d.tracking {
		e := e
		if e.QuoteID == quoteID && e.Kind == kind {
			e.Lines = append([]entity.PartQuantity(nil), e.Lines...)
			list = append(list, &e)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

// ── audit ─────────────────────────────────────────────────────────────────────

type auditRepo struct{ s *Store }

func (r auditRepo) Create(_ context.Context, e *entity.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.d.audit = append(r.s.d.audit, *e)
	return nil
}

func (r auditRepo) Search(_ context.Context, f repository.AuditFilter) ([]*entity.AuditEntry, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]*entity.AuditEntry, 0)
	for _, e := range r.s.d.audit {
		e := e
		if f.Search == "" || contains(e.UserEmail, f.Search) || contains(e.Path, f.Search) ||
			contains(e.Entity, f.Search) || contains(e.Action, f.Search) {
			list = append(list, &e)
		}
	}
	key := func(e *entity.AuditEntry) string {
		switch f.OrderBy {
		case "user_email":
			return e.UserEmail
		case "action":
			return e.Action
		case "path":
			return e.Path
		case "entity":
			return e.Entity
		}
		return e.CreatedAt.UTC().Format("20060102150405.000000000")
	}
	sort.SliceStable(list, func(i, j int) bool {
		if f.OrderBy == "status" {
			if f.IsAscending {
				return list[i].Status < list[j].Status
			}
			return list[i].Status > list[j].Status
		}
		if f.IsAscending {
			return key(list[i]) < key(list[j])
		}
		return key(list[i]) > key(list[j])
	})
	return page(list, f.Limit, f.Offset), len(list), nil
}
