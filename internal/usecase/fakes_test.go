package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"
)

// memStore backs the registration flow in tests. Transactions are
// serialised and roll every map back when fn fails, which is how the
// Postgres row and advisory locks behave for these tests.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users     map[string]domain.User
	regs      map[domain.RegistrationKind]map[int64]domain.Registration
	companies map[int64]domain.Company
	nextID    int64

	failUpdateAccess error
}

func newMemStore() *memStore {
	return &memStore{
		users: map[string]domain.User{},
		regs: map[domain.RegistrationKind]map[int64]domain.Registration{
			domain.KindAlumni:  {},
			domain.KindCompany: {},
		},
		companies: map[int64]domain.Company{},
	}
}

func (s *memStore) addUser(id, email string, role domain.Role, status domain.UserStatus) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.User{ID: id, Email: email, Username: strings.Split(email, "@")[0], Role: role, Status: status}
	s.users[id] = u
	return &u
}

func (s *memStore) user(id string) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *memStore) registration(kind domain.RegistrationKind, id int64) domain.Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[kind][id]
}

func (s *memStore) companyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.companies)
}

func (s *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	users := make(map[string]domain.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	regs := map[domain.RegistrationKind]map[int64]domain.Registration{}
	for kind, m := range s.regs {
		regs[kind] = make(map[int64]domain.Registration, len(m))
		for k, v := range m {
			regs[kind][k] = v
		}
	}
	companies := make(map[int64]domain.Company, len(s.companies))
	for k, v := range s.companies {
		companies[k] = v
	}
	nextID := s.nextID
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.users, s.regs, s.companies, s.nextID = users, regs, companies, nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

type memUserRepo struct{ *memStore }

func (r memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperror.Conflict("User already exists")
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r memUserRepo) UpdateProfile(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[user.ID]
	u.Username, u.AvatarURL = user.Username, user.AvatarURL
	r.users[user.ID] = u
	return nil
}

func (r memUserRepo) UpdateAccess(_ context.Context, id string, role domain.Role, status domain.UserStatus) error {
	if r.failUpdateAccess != nil {
		return r.failUpdateAccess
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.Role, u.Status = role, status
	r.users[id] = u
	return nil
}

func (r memUserRepo) UpdateStatus(_ context.Context, id string, status domain.UserStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.Status = status
	r.users[id] = u
	return nil
}

type memRegRepo struct{ *memStore }

func (r memRegRepo) Create(_ context.Context, reg *domain.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	reg.ID = r.nextID
	reg.CreatedAt = time.Now()
	reg.UpdatedAt = reg.CreatedAt
	r.regs[reg.Kind][reg.ID] = *reg
	return nil
}

func (r memRegRepo) GetByID(_ context.Context, kind domain.RegistrationKind, id int64) (*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[kind][id]
	if !ok {
		return nil, nil
	}
	return &reg, nil
}

func (r memRegRepo) GetForUpdate(ctx context.Context, kind domain.RegistrationKind, id int64) (*domain.Registration, error) {
	return r.GetByID(ctx, kind, id)
}

func (r memRegRepo) FindActiveByEmail(_ context.Context, kind domain.RegistrationKind, email string) (*domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.regs[kind] {
		if reg.Email == email && reg.Status.IsActive() {
			return &reg, nil
		}
	}
	return nil, nil
}

func (r memRegRepo) ListByEmail(_ context.Context, email string) ([]domain.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Registration
	for _, m := range r.regs {
		for _, reg := range m {
			if reg.Email == email {
				out = append(out, reg)
			}
		}
	}
	return out, nil
}

func (r memRegRepo) List(_ context.Context, filter domain.RegistrationFilter) ([]domain.Registration, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.Registration
	for kind, m := range r.regs {
		if filter.Kind != "" && filter.Kind != kind {
			continue
		}
		for _, reg := range m {
			if filter.Status != "" && filter.Status != reg.Status {
				continue
			}
			all = append(all, reg)
		}
	}
	total := len(all)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (r memRegRepo) UpdateReview(_ context.Context, reg *domain.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.regs[reg.Kind][reg.ID]; !ok {
		return errors.New("registration not found")
	}
	r.regs[reg.Kind][reg.ID] = *reg
	return nil
}

func (r memRegRepo) LockEmail(context.Context, string) error { return nil }

type memCompanyRepo struct{ *memStore }

func (r memCompanyRepo) Create(_ context.Context, c *domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	r.companies[c.ID] = *c
	return nil
}

func (r memCompanyRepo) GetByID(_ context.Context, id int64) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r memCompanyRepo) GetByEmail(_ context.Context, email string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, nil
}

func (r memCompanyRepo) List(context.Context, domain.CompanyFilter) ([]domain.Company, int, error) {
	return nil, 0, errors.New("not used")
}

func (r memCompanyRepo) Update(_ context.Context, c *domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[c.ID] = *c
	return nil
}

func (r memCompanyRepo) UpdateLogo(_ context.Context, id int64, logoURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.companies[id]
	c.LogoURL = &logoURL
	r.companies[id] = c
	return nil
}

func (r memCompanyRepo) SetPublished(_ context.Context, id int64, published bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.companies[id]
	c.Published = published
	r.companies[id] = c
	return nil
}

const testCDN = "https://cdn.test/"

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) Put(_ context.Context, content []byte, key, _ string) (string, error) {
	if s.failPut != nil {
		return "", s.failPut
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = content
	return testCDN + key, nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memStorage) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, testCDN) {
		return "", false
	}
	return strings.TrimPrefix(url, testCDN), true
}

func (s *memStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type countingCache struct {
	mu          sync.Mutex
	pages       map[domain.RegistrationFilter]*domain.RegistrationPage
	invalidated int
}

func newCountingCache() *countingCache {
	return &countingCache{pages: map[domain.RegistrationFilter]*domain.RegistrationPage{}}
}

// The version is the invalidation count, mirroring the Redis cache.
func (c *countingCache) GetList(_ context.Context, f domain.RegistrationFilter) (*domain.RegistrationPage, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pages[f]
	return p, int64(c.invalidated), ok
}

func (c *countingCache) SetList(_ context.Context, version int64, f domain.RegistrationFilter, p *domain.RegistrationPage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version != int64(c.invalidated) {
		return
	}
	c.pages[f] = p
}

func (c *countingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages = map[domain.RegistrationFilter]*domain.RegistrationPage{}
	c.invalidated++
	return nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	decisions []domain.RegistrationDecision
	err       error
}

func (n *recordingNotifier) NotifyDecision(_ context.Context, d domain.RegistrationDecision) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decisions = append(n.decisions, d)
	return n.err
}

type staticQuota struct{ allowed bool }

func (q staticQuota) Allow(context.Context, string) (bool, error) { return q.allowed, nil }
