package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"commerce-api/internal/errs"
	"commerce-api/internal/models"
)

// FileProductStore keeps the whole product collection in one JSON array
// on disk, loading it on every read and rewriting it on every write.
// A store-level mutex serializes the read-modify-write cycles; it does
// not protect against other processes touching the same file.
type FileProductStore struct {
	path string
	mu   sync.Mutex
}

// NewFileProductStore stores products in products.json under dir.
func NewFileProductStore(dir string) *FileProductStore {
	return &FileProductStore{path: filepath.Join(dir, "products.json")}
}

func (s *FileProductStore) load() ([]models.Product, error) {
	var ps []models.Product
	if err := readJSON(s.path, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

func (s *FileProductStore) List(ctx context.Context, f Filter, srt Sort, page, limit int) ([]models.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.load()
	if err != nil {
		return nil, 0, err
	}

	matched := make([]models.Product, 0, len(ps))
	for _, p := range ps {
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		matched = append(matched, p)
	}

	switch srt {
	case SortPriceAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case SortPriceDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	}

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Product{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *FileProductStore) FindByID(ctx context.Context, id string) (*models.Product, error) {
	if err := checkNumericID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range ps {
		if ps[i].ID == id {
			p := ps[i]
			return &p, nil
		}
	}
	return nil, errs.NotFound("product")
}

func (s *FileProductStore) Insert(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.load()
	if err != nil {
		return err
	}
	p.ID = nextID(productIDs(ps))
	ps = append(ps, *p)
	return writeJSON(s.path, ps)
}

func (s *FileProductStore) InsertMany(ctx context.Context, batch []*models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.load()
	if err != nil {
		return err
	}
	for _, p := range batch {
		p.ID = nextID(productIDs(ps))
		ps = append(ps, *p)
	}
	return writeJSON(s.path, ps)
}

func (s *FileProductStore) Update(ctx context.Context, id string, u models.ProductUpdate) (*models.Product, error) {
	if err := checkNumericID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range ps {
		if ps[i].ID == id {
			u.Apply(&ps[i])
			if err := writeJSON(s.path, ps); err != nil {
				return nil, err
			}
			p := ps[i]
			return &p, nil
		}
	}
	return nil, errs.NotFound("product")
}

func (s *FileProductStore) Delete(ctx context.Context, id string) error {
	if err := checkNumericID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.load()
	if err != nil {
		return err
	}
	kept := make([]models.Product, 0, len(ps))
	for _, p := range ps {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(ps) {
		return errs.NotFound("product")
	}
	return writeJSON(s.path, kept)
}

// FileCartStore is the cart counterpart of FileProductStore, backed by
// carts.json.
type FileCartStore struct {
	path string
	mu   sync.Mutex
}

// NewFileCartStore stores carts in carts.json under dir.
func NewFileCartStore(dir string) *FileCartStore {
	return &FileCartStore{path: filepath.Join(dir, "carts.json")}
}

func (s *FileCartStore) load() ([]models.Cart, error) {
	var cs []models.Cart
	if err := readJSON(s.path, &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

func (s *FileCartStore) Insert(ctx context.Context) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, err := s.load()
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	cart := models.Cart{ID: nextID(ids), Products: []models.CartItem{}}
	cs = append(cs, cart)
	if err := writeJSON(s.path, cs); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *FileCartStore) FindByID(ctx context.Context, id string) (*models.Cart, error) {
	if err := checkNumericID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range cs {
		if cs[i].ID == id {
			c := cs[i]
			return &c, nil
		}
	}
	return nil, errs.NotFound("cart")
}

func (s *FileCartStore) Save(ctx context.Context, cart *models.Cart) error {
	if err := checkNumericID(cart.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, err := s.load()
	if err != nil {
		return err
	}
	for i := range cs {
		if cs[i].ID == cart.ID {
			cs[i] = *cart
			return writeJSON(s.path, cs)
		}
	}
	return errs.NotFound("cart")
}

// nextID allocates the next numeric identifier: max(existing)+1, or 1
// for an empty collection. Non-numeric ids are ignored; this allocator
// is only used by the file backend, which never produces them.
func nextID(ids []string) string {
	max := 0
	for _, id := range ids {
		if n, err := strconv.Atoi(id); err == nil && n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}

func productIDs(ps []models.Product) []string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	return ids
}

// checkNumericID rejects identifiers the file backend could never have
// allocated.
func checkNumericID(id string) error {
	if n, err := strconv.Atoi(id); err != nil || n < 1 {
		return errs.ErrInvalidID
	}
	return nil
}

// readJSON decodes the whole collection file into v. A missing file is
// an empty collection, not an error.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errs.Storage("read "+filepath.Base(path), err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errs.Storage("decode "+filepath.Base(path), err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errs.Storage("encode "+filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Storage("write "+filepath.Base(path), err)
	}
	return nil
}
