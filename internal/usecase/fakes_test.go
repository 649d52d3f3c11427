package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func intPtr(n int) *int { return &n }

func cloneProduct(p *domain.Product) *domain.Product {
	cp := *p
	cp.Colors = make([]domain.ColorVariant, len(p.Colors))
	for i, c := range p.Colors {
		cp.Colors[i] = domain.ColorVariant{Name: c.Name}
		if c.Quantity != nil {
			cp.Colors[i].Quantity = intPtr(*c.Quantity)
		}
	}
	return &cp
}

type fakeProductRepo struct {
	mu        sync.Mutex
	products  map[int64]*domain.Product
	nextID    int64
	failColor string
	decrCalls int
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[int64]*domain.Product{}}
	for _, p := range products {
		r.products[p.ID] = cloneProduct(p)
		r.nextID = max(r.nextID, p.ID)
	}
	return r
}

func (r *fakeProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	r.products[p.ID] = cloneProduct(p)
	return p, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %d %w", id, domain.ErrNotFound)
	}
	return cloneProduct(p), nil
}

func (r *fakeProductRepo) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Product{}
	for _, p := range r.products {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, *cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProductRepo) Update(_ context.Context, id int64, u domain.ProductUpdate) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %d %w", id, domain.ErrNotFound)
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.Colors != nil {
		p.Colors = *u.Colors
	}
	return cloneProduct(p), nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with id %d %w", id, domain.ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) SetColorQuantity(_ context.Context, id int64, color string, qty *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with id %d %w", id, domain.ErrNotFound)
	}
	for i := range p.Colors {
		if p.Colors[i].Name == color {
			p.Colors[i].Quantity = qty
			return nil
		}
	}
	return fmt.Errorf("color %w", domain.ErrNotFound)
}

func (r *fakeProductRepo) DecrementColorStock(_ context.Context, id int64, color string, n int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decrCalls++
	if color == r.failColor {
		return false, errors.New("connection reset")
	}
	p, ok := r.products[id]
	if !ok {
		return false, nil
	}
	for i := range p.Colors {
		c := &p.Colors[i]
		if c.Name == color && c.Quantity != nil {
			c.Quantity = intPtr(max(*c.Quantity-n, 0))
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProductRepo) quantity(id int64, color string) *int {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, _ := r.products[id].Color(color)
	return c.Quantity
}

type fakeCategoryRepo struct {
	categories map[int64]*domain.Category
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	for _, existing := range r.categories {
		if existing.Name == c.Name {
			return nil, fmt.Errorf("category '%s' %w", c.Name, domain.ErrConflict)
		}
	}
	c.ID = int64(len(r.categories) + 1)
	r.categories[c.ID] = c
	return c, nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	if c, ok := r.categories[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("category with id %d %w", id, domain.ErrNotFound)
}

func (r *fakeCategoryRepo) Update(_ context.Context, c *domain.Category) (*domain.Category, error) {
	if _, ok := r.categories[c.ID]; !ok {
		return nil, fmt.Errorf("category with id %d %w", c.ID, domain.ErrNotFound)
	}
	r.categories[c.ID] = c
	return c, nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.categories[id]; !ok {
		return fmt.Errorf("category with id %d %w", id, domain.ErrNotFound)
	}
	delete(r.categories, id)
	return nil
}

func (r *fakeCategoryRepo) List(context.Context) ([]domain.Category, error) {
	out := []domain.Category{}
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

type fakeCartRepo struct {
	mu       sync.Mutex
	lines    []domain.CartLine
	owners   map[int64]int64
	nextID   int64
	products *fakeProductRepo
}

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{owners: map[int64]int64{}, products: products}
}

func (r *fakeCartRepo) Lines(ctx context.Context, customerID int64) ([]domain.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.CartLine{}
	for _, l := range r.lines {
		if r.owners[l.ID] != customerID {
			continue
		}
		if p, err := r.products.GetByID(ctx, l.ProductID); err == nil {
			l.Product = &domain.CartProduct{Name: p.Name, Price: p.Price, Status: p.Status}
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeCartRepo) GetLine(_ context.Context, customerID, lineID int64) (*domain.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if l.ID == lineID && r.owners[l.ID] == customerID {
			return &l, nil
		}
	}
	return nil, fmt.Errorf("cart line %d %w", lineID, domain.ErrNotFound)
}

func (r *fakeCartRepo) AddLine(_ context.Context, customerID, productID int64, color string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.lines {
		l := &r.lines[i]
		if r.owners[l.ID] == customerID && l.ProductID == productID && l.Color == color {
			l.Quantity += qty
			return nil
		}
	}
	r.nextID++
	r.lines = append(r.lines, domain.CartLine{ID: r.nextID, ProductID: productID, Color: color, Quantity: qty})
	r.owners[r.nextID] = customerID
	return nil
}

func (r *fakeCartRepo) UpdateLine(_ context.Context, customerID, lineID int64, color string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, l := range r.lines {
		if l.ID == lineID && r.owners[l.ID] == customerID {
			idx = i
		}
	}
	if idx < 0 {
		return fmt.Errorf("cart line %d %w", lineID, domain.ErrNotFound)
	}
	for i := range r.lines {
		other := &r.lines[i]
		if i != idx && r.owners[other.ID] == customerID && other.ProductID == r.lines[idx].ProductID && other.Color == color {
			other.Quantity += qty
			r.lines = append(r.lines[:idx], r.lines[idx+1:]...)
			return nil
		}
	}
	r.lines[idx].Color = color
	r.lines[idx].Quantity = qty
	return nil
}

func (r *fakeCartRepo) RemoveLine(_ context.Context, customerID, lineID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.lines {
		if l.ID == lineID && r.owners[l.ID] == customerID {
			r.lines = append(r.lines[:i], r.lines[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("cart line %d %w", lineID, domain.ErrNotFound)
}

func (r *fakeCartRepo) Clear(_ context.Context, customerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.lines[:0]
	for _, l := range r.lines {
		if r.owners[l.ID] != customerID {
			kept = append(kept, l)
		}
	}
	r.lines = kept
	return nil
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[int64]*domain.Order
	nextID    int64
	cart      *fakeCartRepo
	createErr error
	claimErr  error
}

func newFakeOrderRepo(cart *fakeCartRepo) *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[int64]*domain.Order{}, cart: cart}
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	o.ID = r.nextID
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	r.orders[o.ID] = cloneOrder(o)
	if r.cart != nil {
		_ = r.cart.Clear(ctx, o.CustomerID)
	}
	return o, nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with id %d %w", id, domain.ErrNotFound)
	}
	return cloneOrder(o), nil
}

func (r *fakeOrderRepo) List(_ context.Context, f domain.OrderFilter) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Order{}
	for _, o := range r.orders {
		if f.CustomerID > 0 && o.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id int64, u domain.OrderStatusUpdate) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with id %d %w", id, domain.ErrNotFound)
	}
	if u.Status != nil {
		o.Status = *u.Status
	}
	if u.ReceiptStatus != nil {
		o.ReceiptStatus = *u.ReceiptStatus
	}
	if u.AdminNotes != nil {
		o.AdminNotes = *u.AdminNotes
	}
	return cloneOrder(o), nil
}

func (r *fakeOrderRepo) ClaimStockApplication(_ context.Context, id int64) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimErr != nil {
		return time.Time{}, false, r.claimErr
	}
	o, ok := r.orders[id]
	if !ok || o.StockAppliedAt != nil {
		return time.Time{}, false, nil
	}
	now := time.Now()
	o.StockAppliedAt = &now
	return now, true, nil
}

func (r *fakeOrderRepo) DeletePending(_ context.Context, id, customerID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.CustomerID != customerID || o.Status != domain.StatusPendingPayment {
		return false, nil
	}
	delete(r.orders, id)
	return true, nil
}

func (r *fakeOrderRepo) CountOpenByProduct(_ context.Context, productID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.orders {
		open := false
		for _, s := range domain.OpenStatuses {
			open = open || o.Status == s
		}
		if !open {
			continue
		}
		for _, it := range o.Items {
			if it.ProductID == productID {
				n++
				break
			}
		}
	}
	return n, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
	deleted []string
	n       int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: map[string][]byte{}}
}

func (s *fakeStorage) Save(_ context.Context, folder string, r io.Reader, _ []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return "", s.saveErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	s.n++
	path := fmt.Sprintf("%s/file-%d.pdf", folder, s.n)
	s.files[path] = buf.Bytes()
	return path, nil
}

func (s *fakeStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == "" {
		return nil
	}
	delete(s.files, path)
	s.deleted = append(s.deleted, path)
	return nil
}

func (s *fakeStorage) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file %w", domain.ErrNotFound)
	}
	return "/uploads/" + path, nil
}

func (s *fakeStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}
