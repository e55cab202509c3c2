package memory

import (
	"context"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/ledger"
	"fuelbook/backend/internal/store"
	"fuelbook/backend/internal/xid"
)

type Store struct {
	mu             sync.RWMutex
	accounts       map[string]domain.Account
	receipts       map[string]domain.Receipt
	cashflow       map[string]domain.CashflowEntry
	summary        domain.SummaryResponse
	shiftsByID     map[string]domain.Shift
	activeShiftID  string
	products       map[string]domain.Product
	tanks          map[string]domain.Tank
	invoices       map[string]domain.Invoice
	stockMovements []domain.StockMovement
	auditLogs      []domain.AuditLog
	users          map[string]domain.UserAccount
}

func New() *Store {
	return &Store{
		accounts:   map[string]domain.Account{},
		receipts:   map[string]domain.Receipt{},
		cashflow:   map[string]domain.CashflowEntry{},
		shiftsByID: map[string]domain.Shift{},
		products:   map[string]domain.Product{},
		tanks:      map[string]domain.Tank{},
		invoices:   map[string]domain.Invoice{},
		users:      map[string]domain.UserAccount{},
	}
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_OPERATOR_PASSWORD; if
// unset, hardcoded dev defaults are used with a warning. These credentials
// are never used in production (the backend uses PostgreSQL when
// DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	operatorPwd := envOr("SEED_OPERATOR_PASSWORD", "operator123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_OPERATOR_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_OPERATOR_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"operator", operatorPwd, "operator"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewSeeded returns a store pre-loaded with a small petrol station layout:
// two fuel products with their tanks, a lubricant shelf product and the
// dev user accounts.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	petrol := domain.Product{
		ID:        xid.New("prd"),
		Name:      "Petrol",
		Category:  domain.ProductCategoryFuel,
		UnitPrice: decimal.NewFromFloat(272.50),
		CreatedAt: now,
	}
	diesel := domain.Product{
		ID:        xid.New("prd"),
		Name:      "Diesel",
		Category:  domain.ProductCategoryFuel,
		UnitPrice: decimal.NewFromFloat(285.00),
		CreatedAt: now,
	}
	lubricant := domain.Product{
		ID:        xid.New("prd"),
		Name:      "Engine Oil 4L",
		Category:  "lubricant",
		UnitPrice: decimal.NewFromInt(4800),
		Stock:     decimal.NewFromInt(24),
		CreatedAt: now,
	}
	for _, p := range []domain.Product{petrol, diesel, lubricant} {
		s.products[p.ID] = p
	}

	tanks := []domain.Tank{
		{ID: xid.New("tnk"), Name: "Tank 1 (Petrol)", ProductID: petrol.ID, Capacity: decimal.NewFromInt(30000), Stock: decimal.NewFromInt(12000), CreatedAt: now},
		{ID: xid.New("tnk"), Name: "Tank 2 (Diesel)", ProductID: diesel.ID, Capacity: decimal.NewFromInt(25000), Stock: decimal.NewFromInt(8000), CreatedAt: now},
	}
	for _, t := range tanks {
		s.tanks[t.ID] = t
	}

	s.users = seedUsers()
	return s
}

var _ store.Repository = (*Store)(nil)

func (s *Store) CreateAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account.ID == "" {
		account.ID = xid.New("acc")
	}
	if _, exists := s.accounts[account.ID]; exists {
		return nil, store.ErrConflict
	}
	s.accounts[account.ID] = account
	copied := account
	return &copied, nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := account
	return &copied, nil
}

func (s *Store) ListAccounts(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if accountType != "" && a.Type != accountType {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.accounts[account.ID] = account
	copied := account
	return &copied, nil
}

func (s *Store) GetReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.receipts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := r
	return &copied, nil
}

func (s *Store) ListReceiptsByAccount(ctx context.Context, accountID string) ([]domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Receipt{}
	for _, r := range s.receipts {
		if r.AccountID == accountID {
			out = append(out, r)
		}
	}
	ledger.SortChain(out)
	return out, nil
}

func (s *Store) ListReceipts(ctx context.Context, from, to time.Time) ([]domain.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Receipt{}
	for _, r := range s.receipts {
		if inRange(r.Date, from, to) {
			out = append(out, r)
		}
	}
	ledger.SortChain(out)
	return out, nil
}

func (s *Store) GetCashflowEntry(ctx context.Context, id string) (*domain.CashflowEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.cashflow[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := e
	return &copied, nil
}

func (s *Store) ListCashflow(ctx context.Context, from, to time.Time) ([]domain.CashflowEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.CashflowEntry{}
	for _, e := range s.cashflow {
		if inRange(e.CreatedAt, from, to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetSummaries(ctx context.Context) (domain.SummaryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary, nil
}

func (s *Store) CreateShift(ctx context.Context, shift domain.Shift) (*domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeShiftID != "" {
		return nil, store.ErrConflict
	}
	if shift.ID == "" {
		shift.ID = xid.New("shf")
	}
	shift.Status = domain.ShiftStatusOpen
	shift.EndTime = nil
	s.shiftsByID[shift.ID] = shift
	s.activeShiftID = shift.ID
	copied := shift
	return &copied, nil
}

func (s *Store) CloseActiveShift(ctx context.Context, closedAt time.Time) (*domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeShiftID == "" {
		return nil, store.ErrNotFound
	}
	shift := s.shiftsByID[s.activeShiftID]
	end := closedAt
	shift.EndTime = &end
	shift.Status = domain.ShiftStatusClosed
	s.shiftsByID[shift.ID] = shift
	s.activeShiftID = ""
	copied := shift
	return &copied, nil
}

func (s *Store) GetActiveShift(ctx context.Context) (*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeShiftID == "" {
		return nil, store.ErrNotFound
	}
	shift := s.shiftsByID[s.activeShiftID]
	copied := shift
	return &copied, nil
}

func (s *Store) ListShifts(ctx context.Context, limit int) ([]domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Shift, 0, len(s.shiftsByID))
	for _, sh := range s.shiftsByID {
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	if _, exists := s.products[product.ID]; exists {
		return nil, store.ErrConflict
	}
	s.products[product.ID] = product
	copied := product
	return &copied, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.products[product.ID] = product
	copied := product
	return &copied, nil
}

func (s *Store) CreateTank(ctx context.Context, tank domain.Tank) (*domain.Tank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tank.ID == "" {
		tank.ID = xid.New("tnk")
	}
	if _, ok := s.products[tank.ProductID]; !ok {
		return nil, store.ErrNotFound
	}
	s.tanks[tank.ID] = tank
	copied := tank
	return &copied, nil
}

func (s *Store) GetTank(ctx context.Context, id string) (*domain.Tank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tanks[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := t
	return &copied, nil
}

func (s *Store) GetTankByProduct(ctx context.Context, productID string) (*domain.Tank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *domain.Tank
	for _, t := range s.tanks {
		if t.ProductID != productID {
			continue
		}
		// Deterministic pick when a product has several tanks.
		if found == nil || t.ID < found.ID {
			copied := t
			found = &copied
		}
	}
	if found == nil {
		return nil, store.ErrNotFound
	}
	return found, nil
}

func (s *Store) ListTanks(ctx context.Context) ([]domain.Tank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Tank, 0, len(s.tanks))
	for _, t := range s.tanks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := inv
	return &copied, nil
}

func (s *Store) ListInvoices(ctx context.Context, kind domain.InvoiceKind, from, to time.Time) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Invoice{}
	for _, inv := range s.invoices {
		if kind != "" && inv.Kind != kind {
			continue
		}
		if !inRange(inv.Date, from, to) {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) AppendStockMovement(ctx context.Context, movement domain.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if movement.ID == "" {
		movement.ID = xid.New("stm")
	}
	s.stockMovements = append(s.stockMovements, movement)
	return nil
}

func (s *Store) ListStockMovements(ctx context.Context, productID string, limit int) ([]domain.StockMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.StockMovement{}
	for i := len(s.stockMovements) - 1; i >= 0; i-- {
		m := s.stockMovements[i]
		if productID != "" && m.ProductID != productID {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = xid.New("aud")
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(ctx context.Context, from, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.AuditLog{}
	for i := len(s.auditLogs) - 1; i >= 0; i-- {
		entry := s.auditLogs[i]
		if !inRange(entry.CreatedAt, from, to) {
			continue
		}
		out = append(out, entry)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, username string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := u
	return &copied, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Username]; exists {
		return store.ErrConflict
	}
	s.users[user.Username] = user
	return nil
}

// Apply commits the write set under one lock section, so concurrent readers
// never observe a half-applied mutation. Stock floors are re-checked here
// because the set was computed outside the lock.
func (s *Store) Apply(ctx context.Context, ws ledger.WriteSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range ws.Stock {
		if err := store.GuardStock(w); err != nil {
			return err
		}
		switch w.Kind {
		case ledger.TargetTank:
			if _, ok := s.tanks[w.ID]; !ok {
				return store.ErrNotFound
			}
		case ledger.TargetProduct:
			if _, ok := s.products[w.ID]; !ok {
				return store.ErrNotFound
			}
		}
	}
	if ws.Balance != nil {
		if _, ok := s.accounts[ws.Balance.AccountID]; !ok {
			return store.ErrNotFound
		}
	}

	for _, r := range ws.Receipts {
		s.receipts[r.ID] = r
	}
	for _, id := range ws.DeleteReceipts {
		delete(s.receipts, id)
	}
	for _, inv := range ws.Invoices {
		s.invoices[inv.ID] = inv
	}
	for _, id := range ws.DeleteInvoices {
		delete(s.invoices, id)
	}

	if ws.Balance != nil {
		account := s.accounts[ws.Balance.AccountID]
		account.CurrentBalance = ws.Balance.NewBalance
		s.accounts[account.ID] = account
	}

	for _, op := range ws.Cashflows {
		switch op.Kind {
		case ledger.CashflowCreate, ledger.CashflowUpdate:
			s.cashflow[op.Entry.ID] = op.Entry
		case ledger.CashflowDelete:
			delete(s.cashflow, op.Entry.ID)
		}
	}

	s.summary.Global.TotalWasooli = s.summary.Global.TotalWasooli.Add(ws.Summary.Wasooli)
	s.summary.Global.TotalOdhar = s.summary.Global.TotalOdhar.Add(ws.Summary.Odhar)
	s.summary.Global.TotalSalaries = s.summary.Global.TotalSalaries.Add(ws.Summary.Salaries)
	s.summary.Global.TotalExpenses = s.summary.Global.TotalExpenses.Add(ws.Summary.Expenses)
	s.summary.Banks.TotalDeposits = s.summary.Banks.TotalDeposits.Add(ws.Summary.Deposits)
	s.summary.Banks.TotalWithdrawals = s.summary.Banks.TotalWithdrawals.Add(ws.Summary.Withdrawals)

	for _, w := range ws.Stock {
		switch w.Kind {
		case ledger.TargetTank:
			t := s.tanks[w.ID]
			t.Stock = w.NewStock
			s.tanks[w.ID] = t
		case ledger.TargetProduct:
			p := s.products[w.ID]
			p.Stock = w.NewStock
			s.products[w.ID] = p
		}
	}

	if ws.DeleteAccount != "" {
		delete(s.accounts, ws.DeleteAccount)
	}
	return nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
