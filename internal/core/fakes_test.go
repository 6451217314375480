package core_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stocktrail-backend-go/internal/db"
	"stocktrail-backend-go/internal/models"
)

// fakeStore is an in-memory stand-in for Firestore shared by the fake
// repositories, so cross-collection effects (orphaned history after a
// product delete) stay observable.
type fakeStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	groups   map[string]*models.ProductGroup
	products map[string]*models.Product
	history  []*models.StockHistoryEntry
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]*models.User),
		groups:   make(map[string]*models.ProductGroup),
		products: make(map[string]*models.Product),
	}
}

func (s *fakeStore) genID() string {
	s.nextID++
	return fmt.Sprintf("doc-%d", s.nextID)
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func cloneProduct(p *models.Product) *models.Product {
	c := *p
	return &c
}

func cloneEntry(e *models.StockHistoryEntry) *models.StockHistoryEntry {
	c := *e
	return &c
}

// --- fakeUserRepo -----------------------------------------------------------

type fakeUserRepo struct {
	store *fakeStore

	failGet    error
	failCreate error
	failFind   error
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID string) (*models.User, error) {
	if r.failGet != nil {
		return nil, r.failGet
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[userID]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", userID, db.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if r.failFind != nil {
		return nil, r.failFind
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, fmt.Errorf("email '%s': %w", email, db.ErrNotFound)
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[user.ID]; ok {
		return errors.New("already exists")
	}
	r.store.users[user.ID] = cloneUser(user)
	return nil
}

// Update mirrors the real repository's field-map merge: only the mutable
// fields change, createdAt and createdBy stay as stored. A missing document
// is created, matching MergeAll's upsert behavior.
func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.users[user.ID]
	if !ok {
		r.store.users[user.ID] = cloneUser(user)
		return nil
	}
	stored.Email = user.Email
	stored.DisplayName = user.DisplayName
	stored.Name = user.Name
	stored.Role = user.Role
	stored.IsInitialAdmin = user.IsInitialAdmin
	stored.LastUpdated = user.LastUpdated
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.users, userID)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var users []*models.User
	for _, u := range r.store.users {
		users = append(users, cloneUser(u))
	}
	return users, nil
}

// --- fakeGroupRepo ----------------------------------------------------------

type fakeGroupRepo struct {
	store *fakeStore
}

func (r *fakeGroupRepo) Create(_ context.Context, group *models.ProductGroup) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	group.ID = r.store.genID()
	g := *group
	r.store.groups[group.ID] = &g
	return group.ID, nil
}

func (r *fakeGroupRepo) List(_ context.Context) ([]*models.ProductGroup, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var groups []*models.ProductGroup
	for _, g := range r.store.groups {
		c := *g
		groups = append(groups, &c)
	}
	return groups, nil
}

func (r *fakeGroupRepo) Watch(context.Context, func([]*models.ProductGroup)) (*db.Subscription, error) {
	return nil, errors.New("watch not supported by fake")
}

// --- fakeProductRepo --------------------------------------------------------

type fakeProductRepo struct {
	store *fakeStore
}

func (r *fakeProductRepo) Create(_ context.Context, product *models.Product) (string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	product.ID = r.store.genID()
	r.store.products[product.ID] = cloneProduct(product)
	return product.ID, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, productID string) (*models.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[productID]
	if !ok {
		return nil, fmt.Errorf("product '%s': %w", productID, db.ErrNotFound)
	}
	return cloneProduct(p), nil
}

func (r *fakeProductRepo) ListByGroup(_ context.Context, groupID string) ([]*models.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var products []*models.Product
	for _, p := range r.store.products {
		if p.GroupID == groupID {
			products = append(products, cloneProduct(p))
		}
	}
	return products, nil
}

func (r *fakeProductRepo) Count(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.products)), nil
}

func (r *fakeProductRepo) Delete(_ context.Context, productID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.products, productID)
	return nil
}

func (r *fakeProductRepo) WatchByGroup(context.Context, string, func([]*models.Product)) (*db.Subscription, error) {
	return nil, errors.New("watch not supported by fake")
}

func (r *fakeProductRepo) WatchByID(context.Context, string, func(*models.Product)) (*db.Subscription, error) {
	return nil, errors.New("watch not supported by fake")
}

// --- fakeStockRepo ----------------------------------------------------------

// fakeStockRepo reproduces the transactional contract in memory: the read of
// the current counters, the counter update and the history append happen
// under one lock, so per-product isolation holds for concurrent callers.
type fakeStockRepo struct {
	store *fakeStore

	missingIndex bool // make the ordered query fail like an absent composite index
	failUpdate   error
}

func (r *fakeStockRepo) UpdateStock(_ context.Context, productID string, newStock, newCartons int64, actorID, reason string) (*models.StockHistoryEntry, error) {
	if r.failUpdate != nil {
		return nil, r.failUpdate
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.products[productID]
	if !ok {
		return nil, fmt.Errorf("product '%s': %w", productID, db.ErrNotFound)
	}

	now := time.Now().UTC()
	entry := &models.StockHistoryEntry{
		ID:              r.store.genID(),
		ProductID:       productID,
		ProductName:     current.Name,
		PreviousStock:   current.Stock,
		NewStock:        newStock,
		PreviousCartons: current.Cartons,
		NewCartons:      newCartons,
		ChangeAmount:    newStock - current.Stock,
		UserID:          actorID,
		ChangeReason:    reason,
		Timestamp:       now,
	}

	current.Stock = newStock
	current.Cartons = newCartons
	current.LastUpdated = now
	r.store.history = append(r.store.history, entry)
	return cloneEntry(entry), nil
}

func (r *fakeStockRepo) ListHistoryByProduct(_ context.Context, productID string) ([]*models.StockHistoryEntry, error) {
	if r.missingIndex {
		return nil, fmt.Errorf("sorted stock history query: %w", db.ErrMissingIndex)
	}
	entries, err := r.ListHistoryByProductUnordered(context.Background(), productID)
	if err != nil {
		return nil, err
	}
	models.SortHistoryNewestFirst(entries)
	return entries, nil
}

func (r *fakeStockRepo) ListHistoryByProductUnordered(_ context.Context, productID string) ([]*models.StockHistoryEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var entries []*models.StockHistoryEntry
	for _, e := range r.store.history {
		if e.ProductID == productID {
			entries = append(entries, cloneEntry(e))
		}
	}
	return entries, nil
}

func (r *fakeStockRepo) WatchHistoryByProduct(context.Context, string, func([]*models.StockHistoryEntry)) (*db.Subscription, error) {
	return nil, errors.New("watch not supported by fake")
}

// --- fakeAuthAccounts -------------------------------------------------------

type fakeAuthAccounts struct {
	mu       sync.Mutex
	accounts map[string]string // email -> uid
	nextUID  int

	failCreate error
}

func newFakeAuthAccounts() *fakeAuthAccounts {
	return &fakeAuthAccounts{accounts: make(map[string]string)}
}

func (a *fakeAuthAccounts) Create(_ context.Context, email, _, _ string) (string, error) {
	if a.failCreate != nil {
		return "", a.failCreate
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.accounts[email]; ok {
		return "", fmt.Errorf("auth account for '%s': %w", email, db.ErrEmailExists)
	}
	a.nextUID++
	uid := fmt.Sprintf("uid-%d", a.nextUID)
	a.accounts[email] = uid
	return uid, nil
}

func (a *fakeAuthAccounts) LookupByEmail(_ context.Context, email string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	uid, ok := a.accounts[email]
	if !ok {
		return "", fmt.Errorf("auth account for '%s': %w", email, db.ErrNotFound)
	}
	return uid, nil
}
