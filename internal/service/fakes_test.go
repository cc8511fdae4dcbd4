package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cupitman9/finanzas-bot/internal/apperr"
	"github.com/cupitman9/finanzas-bot/internal/model"
)

// memStore is an in-memory stand-in for storage.Storage.
type memStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]model.User
	categories  map[uuid.UUID]model.Category
	wallets     map[uuid.UUID]model.Wallet
	operations  map[uuid.UUID]model.Operation
	objectives  map[uuid.UUID]model.Objective
	professions map[uuid.UUID]model.Profession
	provinces   []model.Province
	lastQuery   model.SimilarityQuery
	similar     []model.User
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[uuid.UUID]model.User{},
		categories:  map[uuid.UUID]model.Category{},
		wallets:     map[uuid.UUID]model.Wallet{},
		operations:  map[uuid.UUID]model.Operation{},
		objectives:  map[uuid.UUID]model.Objective{},
		professions: map[uuid.UUID]model.Profession{},
	}
}

func ptr[T any](v T) *T { return &v }

func (m *memStore) addUser(u model.User) model.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addDefaultCategory(name string) model.Category {
	c := model.Category{ID: uuid.New(), Nombre: name}
	m.categories[c.ID] = c
	return c
}

func (m *memStore) CreateUser(_ context.Context, u model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = uuid.New()
	m.users[u.ID] = u
	return &u, nil
}

func (m *memStore) UpdateUser(_ context.Context, u model.User) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return nil, nil
	}
	m.users[u.ID] = u
	return &u, nil
}

func (m *memStore) findUser(match func(model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memStore) UserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return m.findUser(func(u model.User) bool { return u.ID == id })
}

func (m *memStore) UserByAuthID(_ context.Context, authID string) (*model.User, error) {
	return m.findUser(func(u model.User) bool { return u.AuthID == authID })
}

func (m *memStore) UserByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	return m.findUser(func(u model.User) bool { return u.TelegramID != nil && *u.TelegramID == telegramID })
}

func (m *memStore) UserByPhone(_ context.Context, phone string) (*model.User, error) {
	return m.findUser(func(u model.User) bool { return u.Telefono == phone })
}

// SimilarUsers returns the canned result when one is set, otherwise filters like the SQL query.
func (m *memStore) SimilarUsers(_ context.Context, q model.SimilarityQuery) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = q
	if m.similar != nil {
		return m.similar, nil
	}
	var out []model.User
	for _, u := range m.users {
		if u.ID == q.ExcludeUserID {
			continue
		}
		if q.RequireSalary && u.Sueldo == nil {
			continue
		}
		if q.Profession != nil && u.Profesion != *q.Profession {
			continue
		}
		if q.Location != nil && !sameLocation(u.Ubicacion, *q.Location, q.Precision) {
			continue
		}
		out = append(out, u)
	}
	if q.Salary != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return salaryDistance(out[i], *q.Salary) < salaryDistance(out[j], *q.Salary)
		})
	}
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func sameLocation(a, b model.Location, p model.LocationPrecision) bool {
	for _, f := range p.MatchFields() {
		if locationField(a, f) != locationField(b, f) {
			return false
		}
	}
	return true
}

func salaryDistance(u model.User, ref float64) float64 {
	if u.Sueldo == nil {
		return 1e18
	}
	d := *u.Sueldo - ref
	if d < 0 {
		return -d
	}
	return d
}

func (m *memStore) CreateCategory(_ context.Context, c model.Category) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	m.categories[c.ID] = c
	return &c, nil
}

func (m *memStore) UpdateCategory(_ context.Context, c model.Category) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.ID]; !ok {
		return nil, nil
	}
	m.categories[c.ID] = c
	return &c, nil
}

func (m *memStore) DeleteCategory(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.categories, id)
	return nil
}

func (m *memStore) CategoryByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *memStore) CategoriesForUser(_ context.Context, userID uuid.UUID) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Category
	for _, c := range m.categories {
		if c.IsDefault() || *c.UserID == userID {
			out = append(out, c)
		}
	}
	sortCategories(out)
	return out, nil
}

func (m *memStore) DefaultCategories(_ context.Context) ([]model.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Category
	for _, c := range m.categories {
		if c.IsDefault() {
			out = append(out, c)
		}
	}
	sortCategories(out)
	return out, nil
}

func sortCategories(cs []model.Category) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].IsDefault() != cs[j].IsDefault() {
			return cs[i].IsDefault()
		}
		return strings.Compare(cs[i].Nombre, cs[j].Nombre) < 0
	})
}

func (m *memStore) CreateWallet(_ context.Context, w model.Wallet) (*model.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.wallets {
		if existing.UserID == w.UserID && existing.Nombre == w.Nombre {
			return nil, apperr.Conflict("billetera ya existe")
		}
	}
	w.ID = uuid.New()
	w.CreatedAt = time.Now().Add(time.Duration(len(m.wallets)) * time.Millisecond)
	m.wallets[w.ID] = w
	return &w, nil
}

func (m *memStore) UpdateWallet(_ context.Context, w model.Wallet) (*model.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.wallets[w.ID]; !ok {
		return nil, nil
	}
	m.wallets[w.ID] = w
	return &w, nil
}

func (m *memStore) DeleteWallet(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.wallets, id)
	return nil
}

func (m *memStore) WalletByID(_ context.Context, id uuid.UUID) (*model.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (m *memStore) WalletsByUser(_ context.Context, userID uuid.UUID) ([]model.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Wallet
	for _, w := range m.wallets {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) applyToWallet(op model.Operation, sign float64) error {
	w, ok := m.wallets[op.WalletID]
	if !ok {
		return apperr.NotFound("billetera", op.WalletID)
	}
	amount := sign * op.Monto
	if op.Tipo == model.OperationExpense {
		w.Saldo -= amount
		w.TotalEgresos += amount
	} else {
		w.Saldo += amount
		w.TotalIngresos += amount
	}
	m.wallets[op.WalletID] = w
	return nil
}

func (m *memStore) CreateOperation(_ context.Context, op model.Operation) (*model.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	op.ID = uuid.New()
	if err := m.applyToWallet(op, 1); err != nil {
		return nil, err
	}
	m.operations[op.ID] = op
	return &op, nil
}

func (m *memStore) UpdateOperation(_ context.Context, old, op model.Operation) (*model.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.applyToWallet(old, -1); err != nil {
		return nil, err
	}
	op.ID = old.ID
	if err := m.applyToWallet(op, 1); err != nil {
		return nil, err
	}
	m.operations[op.ID] = op
	return &op, nil
}

func (m *memStore) DeleteOperation(_ context.Context, op model.Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.operations, op.ID)
	return m.applyToWallet(op, -1)
}

func (m *memStore) OperationByID(_ context.Context, id uuid.UUID) (*model.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	op, ok := m.operations[id]
	if !ok {
		return nil, nil
	}
	return &op, nil
}

func (m *memStore) OperationsByUser(_ context.Context, userID uuid.UUID, f model.OperationFilter) ([]model.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Operation
	for _, op := range m.operations {
		if op.UserID != userID || (f.Tipo != "" && op.Tipo != f.Tipo) {
			continue
		}
		if f.Desde != nil && op.Fecha.Before(*f.Desde) {
			continue
		}
		if f.Hasta != nil && !op.Fecha.Before(*f.Hasta) {
			continue
		}
		out = append(out, op)
	}
	return out, nil
}

func (m *memStore) OperationsByObjective(_ context.Context, objectiveID uuid.UUID) ([]model.Operation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Operation
	for _, op := range m.operations {
		if op.ObjectiveID != nil && *op.ObjectiveID == objectiveID {
			out = append(out, op)
		}
	}
	return out, nil
}

func (m *memStore) CreateObjective(_ context.Context, o model.Objective) (*model.Objective, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = uuid.New()
	m.objectives[o.ID] = o
	return &o, nil
}

func (m *memStore) UpdateObjective(_ context.Context, o model.Objective) (*model.Objective, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objectives[o.ID]; !ok {
		return nil, nil
	}
	m.objectives[o.ID] = o
	return &o, nil
}

func (m *memStore) DeleteObjective(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objectives, id)
	for opID, op := range m.operations {
		if op.ObjectiveID != nil && *op.ObjectiveID == id {
			op.ObjectiveID = nil
			m.operations[opID] = op
		}
	}
	return nil
}

func (m *memStore) ObjectiveByID(_ context.Context, id uuid.UUID) (*model.Objective, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objectives[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *memStore) ObjectivesByUser(_ context.Context, userID uuid.UUID) ([]model.Objective, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Objective
	for _, o := range m.objectives {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) CreateProfession(_ context.Context, nombre string) (*model.Profession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := model.Profession{ID: uuid.New(), Nombre: nombre}
	m.professions[p.ID] = p
	return &p, nil
}

func (m *memStore) UpdateProfession(_ context.Context, p model.Profession) (*model.Profession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.professions[p.ID]; !ok {
		return nil, nil
	}
	m.professions[p.ID] = p
	return &p, nil
}

func (m *memStore) DeleteProfession(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.professions[id]
	delete(m.professions, id)
	return ok, nil
}

func (m *memStore) Professions(_ context.Context) ([]model.Profession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Profession
	for _, p := range m.professions {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) Provinces(_ context.Context) ([]model.Province, error) {
	return m.provinces, nil
}

func (m *memStore) ProvinceByID(_ context.Context, id uuid.UUID) (*model.Province, error) {
	for _, p := range m.provinces {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

// seqRandom replays fixed values.
type seqRandom struct {
	values []float64
	i      int
}

func (r *seqRandom) Float64() float64 {
	v := r.values[r.i%len(r.values)]
	r.i++
	return v
}

type testEnv struct {
	store       *memStore
	users       *Users
	categories  *Categories
	wallets     *Wallets
	objectives  *Objectives
	operations  *Operations
	professions *Professions
	locations   *Locations
}

func newTestEnv() *testEnv {
	store := newMemStore()
	categories := NewCategories(store)
	wallets := NewWallets(store)
	objectives := NewObjectives(store, store, categories, wallets)
	return &testEnv{
		store:       store,
		users:       NewUsers(store),
		categories:  categories,
		wallets:     wallets,
		objectives:  objectives,
		operations:  NewOperations(store, categories, wallets, objectives),
		professions: NewProfessions(store),
		locations:   NewLocations(store),
	}
}
