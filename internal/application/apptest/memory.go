// Package apptest provides in-memory repository implementations for
// application service tests. They mirror the query semantics of the
// GORM repositories, including the not-found convention of returning
// (nil, nil) and the optimistic version check on payment writes.
package apptest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openaccounting/backend/internal/domain/booking"
	"github.com/openaccounting/backend/internal/domain/catalog"
	"github.com/openaccounting/backend/internal/domain/identity"
	"github.com/openaccounting/backend/internal/domain/shared"
)

// MemoryPaymentRepository is an in-memory booking.PaymentRepository
type MemoryPaymentRepository struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]booking.Payment
}

// NewMemoryPaymentRepository creates an empty payment repository
func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{payments: make(map[uuid.UUID]booking.Payment)}
}

func (r *MemoryPaymentRepository) FindByID(_ context.Context, id uuid.UUID) (*booking.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.payments[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *MemoryPaymentRepository) FindByTransactionCode(_ context.Context, serviceID uuid.UUID, code string) (*booking.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.ServiceID == serviceID && p.TransactionCode == code {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (r *MemoryPaymentRepository) FindByRange(_ context.Context, from, to time.Time) ([]booking.Payment, error) {
	return r.filter(func(p booking.Payment) bool {
		return !p.BookedAt.Before(from) && p.BookedAt.Before(to)
	}), nil
}

func (r *MemoryPaymentRepository) FindOpen(_ context.Context) ([]booking.Payment, error) {
	return r.filter(func(p booking.Payment) bool { return p.IsOpen }), nil
}

func (r *MemoryPaymentRepository) FindOpenInRange(_ context.Context, from, to time.Time) ([]booking.Payment, error) {
	return r.filter(func(p booking.Payment) bool {
		return p.IsOpen && !p.BookedAt.Before(from) && p.BookedAt.Before(to)
	}), nil
}

func (r *MemoryPaymentRepository) FindClosed(_ context.Context) ([]booking.Payment, error) {
	return r.filter(func(p booking.Payment) bool { return !p.IsOpen }), nil
}

func (r *MemoryPaymentRepository) Save(_ context.Context, payment *booking.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.ID] = *payment
	return nil
}

// SaveWithLock rejects the write when the stored row has moved past the
// version the caller read.
func (r *MemoryPaymentRepository) SaveWithLock(_ context.Context, payment *booking.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.payments[payment.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != payment.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.payments[payment.ID] = *payment
	return nil
}

func (r *MemoryPaymentRepository) filter(keep func(booking.Payment) bool) []booking.Payment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []booking.Payment
	for _, p := range r.payments {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookedAt.Before(out[j].BookedAt) })
	return out
}

// MemoryItemRepository is an in-memory booking.ItemRepository
type MemoryItemRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]booking.Item
}

// NewMemoryItemRepository creates an empty item repository
func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{items: make(map[uuid.UUID]booking.Item)}
}

func (r *MemoryItemRepository) FindByID(_ context.Context, id uuid.UUID) (*booking.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if it, ok := r.items[id]; ok {
		return &it, nil
	}
	return nil, nil
}

func (r *MemoryItemRepository) FindByRange(_ context.Context, from, to time.Time) ([]booking.Item, error) {
	return r.filter(func(it booking.Item) bool {
		return !it.BookedAt.Before(from) && it.BookedAt.Before(to)
	}), nil
}

func (r *MemoryItemRepository) FindOpen(_ context.Context) ([]booking.Item, error) {
	return r.filter(func(it booking.Item) bool { return it.IsOpen }), nil
}

func (r *MemoryItemRepository) FindOpenInRange(_ context.Context, from, to time.Time) ([]booking.Item, error) {
	return r.filter(func(it booking.Item) bool {
		return it.IsOpen && !it.BookedAt.Before(from) && it.BookedAt.Before(to)
	}), nil
}

func (r *MemoryItemRepository) Save(_ context.Context, item *booking.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = *item
	return nil
}

func (r *MemoryItemRepository) filter(keep func(booking.Item) bool) []booking.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []booking.Item
	for _, it := range r.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookedAt.Before(out[j].BookedAt) })
	return out
}

// MemoryAssociationRepository is an in-memory booking.AssociationRepository.
// It needs the item repository to resolve edges into items.
type MemoryAssociationRepository struct {
	mu    sync.RWMutex
	edges []booking.PaymentItemAssociation
	links []booking.PaymentLink
	items *MemoryItemRepository
}

// NewMemoryAssociationRepository creates an empty association repository
func NewMemoryAssociationRepository(items *MemoryItemRepository) *MemoryAssociationRepository {
	return &MemoryAssociationRepository{items: items}
}

func (r *MemoryAssociationRepository) CreateItemAssociation(_ context.Context, assoc *booking.PaymentItemAssociation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edges = append(r.edges, *assoc)
	return nil
}

// FindItemsForPayment returns one item per edge, so an item associated
// twice appears twice.
func (r *MemoryAssociationRepository) FindItemsForPayment(ctx context.Context, paymentID uuid.UUID) ([]booking.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []booking.Item
	for _, e := range r.edges {
		if e.PaymentID != paymentID {
			continue
		}
		item, err := r.items.FindByID(ctx, e.ItemID)
		if err != nil {
			return nil, err
		}
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *MemoryAssociationRepository) FindPaymentIDsForItem(_ context.Context, itemID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []uuid.UUID
	for _, e := range r.edges {
		if e.ItemID == itemID {
			out = append(out, e.PaymentID)
		}
	}
	return out, nil
}

func (r *MemoryAssociationRepository) CreateLink(_ context.Context, link *booking.PaymentLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links = append(r.links, *link)
	return nil
}

func (r *MemoryAssociationRepository) FindOutgoingLinks(_ context.Context, paymentID uuid.UUID) ([]booking.PaymentLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []booking.PaymentLink
	for _, l := range r.links {
		if l.SourcePaymentID == paymentID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *MemoryAssociationRepository) FindIncomingLinks(_ context.Context, paymentID uuid.UUID) ([]booking.PaymentLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []booking.PaymentLink
	for _, l := range r.links {
		if l.TargetPaymentID == paymentID {
			out = append(out, l)
		}
	}
	return out, nil
}

// MemoryAccountingMonthRepository is an in-memory booking.AccountingMonthRepository
type MemoryAccountingMonthRepository struct {
	mu     sync.Mutex
	months map[[2]int]booking.AccountingMonth
}

// NewMemoryAccountingMonthRepository creates an empty month repository
func NewMemoryAccountingMonthRepository() *MemoryAccountingMonthRepository {
	return &MemoryAccountingMonthRepository{months: make(map[[2]int]booking.AccountingMonth)}
}

func (r *MemoryAccountingMonthRepository) FindByKey(_ context.Context, year, month int) (*booking.AccountingMonth, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.months[[2]int{year, month}]; ok {
		return &m, nil
	}
	return nil, nil
}

func (r *MemoryAccountingMonthRepository) FindAll(_ context.Context) ([]booking.AccountingMonth, error) {
	return r.sorted(func(booking.AccountingMonth) bool { return true }), nil
}

func (r *MemoryAccountingMonthRepository) FindYears(_ context.Context) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[int]bool)
	var years []int
	for key := range r.months {
		if !seen[key[0]] {
			seen[key[0]] = true
			years = append(years, key[0])
		}
	}
	sort.Ints(years)
	return years, nil
}

func (r *MemoryAccountingMonthRepository) FindByYear(_ context.Context, year int) ([]booking.AccountingMonth, error) {
	return r.sorted(func(m booking.AccountingMonth) bool { return m.Year == year }), nil
}

func (r *MemoryAccountingMonthRepository) FindLast(_ context.Context) (*booking.AccountingMonth, error) {
	all := r.sorted(func(booking.AccountingMonth) bool { return true })
	if len(all) == 0 {
		return nil, nil
	}
	last := all[len(all)-1]
	return &last, nil
}

func (r *MemoryAccountingMonthRepository) Save(_ context.Context, month *booking.AccountingMonth) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.months[[2]int{month.Year, month.Month}] = *month
	return nil
}

func (r *MemoryAccountingMonthRepository) IncrementCashCounter(_ context.Context, year, month int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.months[[2]int{year, month}]
	if !ok {
		return 0, shared.ErrNotFound
	}
	m.CashTransactionCounter++
	r.months[[2]int{year, month}] = m
	return m.CashTransactionCounter, nil
}

func (r *MemoryAccountingMonthRepository) sorted(keep func(booking.AccountingMonth) bool) []booking.AccountingMonth {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []booking.AccountingMonth
	for _, m := range r.months {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// MemoryPaymentServiceRepository is an in-memory booking.PaymentServiceRepository
type MemoryPaymentServiceRepository struct {
	mu       sync.RWMutex
	services map[uuid.UUID]booking.PaymentService
}

// NewMemoryPaymentServiceRepository creates an empty service repository
func NewMemoryPaymentServiceRepository() *MemoryPaymentServiceRepository {
	return &MemoryPaymentServiceRepository{services: make(map[uuid.UUID]booking.PaymentService)}
}

func (r *MemoryPaymentServiceRepository) FindByID(_ context.Context, id uuid.UUID) (*booking.PaymentService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.services[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r *MemoryPaymentServiceRepository) FindByCode(_ context.Context, code string) (*booking.PaymentService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.services {
		if s.Code == code {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (r *MemoryPaymentServiceRepository) FindAll(_ context.Context) ([]booking.PaymentService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []booking.PaymentService
	for _, s := range r.services {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *MemoryPaymentServiceRepository) Save(_ context.Context, service *booking.PaymentService) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[service.ID] = *service
	return nil
}

// MemoryIdentityRepository is an in-memory identity.IdentityRepository
type MemoryIdentityRepository struct {
	mu         sync.RWMutex
	identities map[uuid.UUID]identity.Identity
}

// NewMemoryIdentityRepository creates an empty identity repository
func NewMemoryIdentityRepository() *MemoryIdentityRepository {
	return &MemoryIdentityRepository{identities: make(map[uuid.UUID]identity.Identity)}
}

func (r *MemoryIdentityRepository) FindByID(_ context.Context, id uuid.UUID) (*identity.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i, ok := r.identities[id]; ok {
		return &i, nil
	}
	return nil, nil
}

func (r *MemoryIdentityRepository) FindAll(_ context.Context) ([]identity.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []identity.Identity
	for _, i := range r.identities {
		out = append(out, i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastName < out[j].LastName })
	return out, nil
}

func (r *MemoryIdentityRepository) Save(_ context.Context, record *identity.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identities[record.ID] = *record
	return nil
}

// MemoryPaymentAccountRepository is an in-memory identity.PaymentAccountRepository
type MemoryPaymentAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]identity.PaymentAccount
}

// NewMemoryPaymentAccountRepository creates an empty account repository
func NewMemoryPaymentAccountRepository() *MemoryPaymentAccountRepository {
	return &MemoryPaymentAccountRepository{accounts: make(map[uuid.UUID]identity.PaymentAccount)}
}

func (r *MemoryPaymentAccountRepository) FindByID(_ context.Context, id uuid.UUID) (*identity.PaymentAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.accounts[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (r *MemoryPaymentAccountRepository) FindByServiceAndExternal(_ context.Context, serviceID uuid.UUID, externalAccount string) (*identity.PaymentAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.ServiceID == serviceID && a.ExternalAccount == externalAccount {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (r *MemoryPaymentAccountRepository) FindByIdentity(_ context.Context, identityID uuid.UUID) ([]identity.PaymentAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []identity.PaymentAccount
	for _, a := range r.accounts {
		if a.IdentityID == identityID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *MemoryPaymentAccountRepository) Save(_ context.Context, account *identity.PaymentAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = *account
	return nil
}

// MemorySubscriptionAssignmentRepository is an in-memory identity.SubscriptionAssignmentRepository
type MemorySubscriptionAssignmentRepository struct {
	mu          sync.RWMutex
	assignments map[uuid.UUID]identity.SubscriptionAssignment
}

// NewMemorySubscriptionAssignmentRepository creates an empty assignment repository
func NewMemorySubscriptionAssignmentRepository() *MemorySubscriptionAssignmentRepository {
	return &MemorySubscriptionAssignmentRepository{assignments: make(map[uuid.UUID]identity.SubscriptionAssignment)}
}

func (r *MemorySubscriptionAssignmentRepository) FindByID(_ context.Context, id uuid.UUID) (*identity.SubscriptionAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.assignments[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (r *MemorySubscriptionAssignmentRepository) FindByIdentity(_ context.Context, identityID uuid.UUID) ([]identity.SubscriptionAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []identity.SubscriptionAssignment
	for _, a := range r.assignments {
		if a.IdentityID == identityID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *MemorySubscriptionAssignmentRepository) FindActiveAt(_ context.Context, monthStart time.Time) ([]identity.SubscriptionAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []identity.SubscriptionAssignment
	for _, a := range r.assignments {
		if a.ActiveAt(monthStart) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BeginsAt.Before(out[j].BeginsAt) })
	return out, nil
}

func (r *MemorySubscriptionAssignmentRepository) Save(_ context.Context, assignment *identity.SubscriptionAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[assignment.ID] = *assignment
	return nil
}

// MemorySubscriptionRepository is an in-memory catalog.SubscriptionRepository
type MemorySubscriptionRepository struct {
	mu            sync.RWMutex
	subscriptions map[uuid.UUID]catalog.Subscription
}

// NewMemorySubscriptionRepository creates an empty subscription repository
func NewMemorySubscriptionRepository() *MemorySubscriptionRepository {
	return &MemorySubscriptionRepository{subscriptions: make(map[uuid.UUID]catalog.Subscription)}
}

func (r *MemorySubscriptionRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.subscriptions[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r *MemorySubscriptionRepository) FindAll(_ context.Context) ([]catalog.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []catalog.Subscription
	for _, s := range r.subscriptions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemorySubscriptionRepository) Save(_ context.Context, subscription *catalog.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions[subscription.ID] = *subscription
	return nil
}

// MemoryProductRepository is an in-memory catalog.ProductRepository
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[uuid.UUID]catalog.Product
}

// NewMemoryProductRepository creates an empty product repository
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{products: make(map[uuid.UUID]catalog.Product)}
}

func (r *MemoryProductRepository) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *MemoryProductRepository) FindAll(_ context.Context) ([]catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []catalog.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *MemoryProductRepository) Save(_ context.Context, product *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
	return nil
}

// Repositories bundles one fresh instance of every in-memory repository
type Repositories struct {
	Payments      *MemoryPaymentRepository
	Items         *MemoryItemRepository
	Associations  *MemoryAssociationRepository
	Months        *MemoryAccountingMonthRepository
	Services      *MemoryPaymentServiceRepository
	Identities    *MemoryIdentityRepository
	Accounts      *MemoryPaymentAccountRepository
	Assignments   *MemorySubscriptionAssignmentRepository
	Subscriptions *MemorySubscriptionRepository
	Products      *MemoryProductRepository
}

// NewRepositories creates a full set of empty in-memory repositories
func NewRepositories() *Repositories {
	items := NewMemoryItemRepository()
	return &Repositories{
		Payments:      NewMemoryPaymentRepository(),
		Items:         items,
		Associations:  NewMemoryAssociationRepository(items),
		Months:        NewMemoryAccountingMonthRepository(),
		Services:      NewMemoryPaymentServiceRepository(),
		Identities:    NewMemoryIdentityRepository(),
		Accounts:      NewMemoryPaymentAccountRepository(),
		Assignments:   NewMemorySubscriptionAssignmentRepository(),
		Subscriptions: NewMemorySubscriptionRepository(),
		Products:      NewMemoryProductRepository(),
	}
}

// Interface assertions
var (
	_ booking.PaymentRepository                 = (*MemoryPaymentRepository)(nil)
	_ booking.ItemRepository                    = (*MemoryItemRepository)(nil)
	_ booking.AssociationRepository             = (*MemoryAssociationRepository)(nil)
	_ booking.AccountingMonthRepository         = (*MemoryAccountingMonthRepository)(nil)
	_ booking.PaymentServiceRepository          = (*MemoryPaymentServiceRepository)(nil)
	_ identity.IdentityRepository               = (*MemoryIdentityRepository)(nil)
	_ identity.PaymentAccountRepository         = (*MemoryPaymentAccountRepository)(nil)
	_ identity.SubscriptionAssignmentRepository = (*MemorySubscriptionAssignmentRepository)(nil)
	_ catalog.SubscriptionRepository            = (*MemorySubscriptionRepository)(nil)
	_ catalog.ProductRepository                 = (*MemoryProductRepository)(nil)
)
