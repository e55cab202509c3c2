package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"fuelbook/backend/internal/domain"
	"fuelbook/backend/internal/ledger"
	"fuelbook/backend/internal/store"
	"fuelbook/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	if account.ID == "" {
		account.ID = xid.New("acc")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (
			id, type, name, phone_number, initial_balance, current_balance,
			salary, credit_limit, status, joined_at, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, account.ID, account.Type, account.Name, account.PhoneNumber,
		account.InitialBalance, account.CurrentBalance, account.Salary,
		account.CreditLimit, account.Status, nullTime(account.JoinedAt), account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	created := account
	return &created, nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, name, phone_number, initial_balance, current_balance,
			salary, credit_limit, status, joined_at, created_at
		FROM accounts
		WHERE id = $1
	`, id)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *Store) ListAccounts(ctx context.Context, accountType domain.AccountType) ([]domain.Account, error) {
	query := `
		SELECT id, type, name, phone_number, initial_balance, current_balance,
			salary, credit_limit, status, joined_at, created_at
		FROM accounts
	`
	args := []any{}
	if accountType != "" {
		query += ` WHERE type = $1`
		args = append(args, accountType)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0, 64)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func (s *Store) UpdateAccount(ctx context.Context, account domain.Account) (*domain.Account, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = $2, phone_number = $3, salary = $4, credit_limit = $5,
			status = $6, joined_at = $7
		WHERE id = $1
	`, account.ID, account.Name, account.PhoneNumber, account.Salary,
		account.CreditLimit, account.Status, nullTime(account.JoinedAt))
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	updated := account
	return &updated, nil
}

func (s *Store) GetReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, type, amount, date, balance_after, shift_id,
			cashflow_id, note, created_at
		FROM receipts
		WHERE id = $1
	`, id)
	receipt, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return receipt, nil
}

func (s *Store) ListReceiptsByAccount(ctx context.Context, accountID string) ([]domain.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, type, amount, date, balance_after, shift_id,
			cashflow_id, note, created_at
		FROM receipts
		WHERE account_id = $1
		ORDER BY date, created_at, id
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReceipts(rows)
}

func (s *Store) ListReceipts(ctx context.Context, from, to time.Time) ([]domain.Receipt, error) {
	query := `
		SELECT id, account_id, type, amount, date, balance_after, shift_id,
			cashflow_id, note, created_at
		FROM receipts
	`
	where, args := rangeClause("date", from, to)
	rows, err := s.db.QueryContext(ctx, query+where+` ORDER BY date, created_at, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReceipts(rows)
}

func (s *Store) GetCashflowEntry(ctx context.Context, id string) (*domain.CashflowEntry, error) {
	var e domain.CashflowEntry
	err := s.db.QueryRowContext(ctx, `
		SELECT id, amount, type, category, COALESCE(receipt_id, ''),
			COALESCE(invoice_id, ''), created_at, updated_at
		FROM cashflow_entries
		WHERE id = $1
	`, id).Scan(&e.ID, &e.Amount, &e.Type, &e.Category, &e.ReceiptID, &e.InvoiceID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (s *Store) ListCashflow(ctx context.Context, from, to time.Time) ([]domain.CashflowEntry, error) {
	query := `
		SELECT id, amount, type, category, COALESCE(receipt_id, ''),
			COALESCE(invoice_id, ''), created_at, updated_at
		FROM cashflow_entries
	`
	where, args := rangeClause("created_at", from, to)
	rows, err := s.db.QueryContext(ctx, query+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.CashflowEntry, 0, 128)
	for rows.Next() {
		var e domain.CashflowEntry
		if err := rows.Scan(&e.ID, &e.Amount, &e.Type, &e.Category, &e.ReceiptID, &e.InvoiceID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) GetSummaries(ctx context.Context) (domain.SummaryResponse, error) {
	var out domain.SummaryResponse
	err := s.db.QueryRowContext(ctx, `
		SELECT total_wasooli, total_odhar, total_salaries, total_expenses,
			total_deposits, total_withdrawals
		FROM summaries
		WHERE id = 'global'
	`).Scan(&out.Global.TotalWasooli, &out.Global.TotalOdhar,
		&out.Global.TotalSalaries, &out.Global.TotalExpenses,
		&out.Banks.TotalDeposits, &out.Banks.TotalWithdrawals)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SummaryResponse{}, nil
	}
	return out, err
}

func (s *Store) CreateShift(ctx context.Context, shift domain.Shift) (*domain.Shift, error) {
	if shift.ID == "" {
		shift.ID = xid.New("shf")
	}
	shift.Status = domain.ShiftStatusOpen
	shift.EndTime = nil

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var active int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM shifts WHERE status = $1
	`, domain.ShiftStatusOpen).Scan(&active); err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, store.ErrConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shifts (id, start_time, end_time, status, opened_by)
		VALUES ($1,$2,NULL,$3,$4)
	`, shift.ID, shift.StartTime, shift.Status, shift.OpenedBy)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := shift
	return &created, nil
}

func (s *Store) CloseActiveShift(ctx context.Context, closedAt time.Time) (*domain.Shift, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE shifts
		SET end_time = $1, status = $2
		WHERE status = $3
		RETURNING id, start_time, end_time, status, COALESCE(opened_by, '')
	`, closedAt, domain.ShiftStatusClosed, domain.ShiftStatusOpen)
	shift, err := scanShift(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return shift, nil
}

func (s *Store) GetActiveShift(ctx context.Context) (*domain.Shift, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, start_time, end_time, status, COALESCE(opened_by, '')
		FROM shifts
		WHERE status = $1
	`, domain.ShiftStatusOpen)
	shift, err := scanShift(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return shift, nil
}

func (s *Store) ListShifts(ctx context.Context, limit int) ([]domain.Shift, error) {
	// limit <= 0 returns the full history, which shift resolution relies on
	// for backdated entries.
	query := `
		SELECT id, start_time, end_time, status, COALESCE(opened_by, '')
		FROM shifts
		ORDER BY start_time DESC
	`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]domain.Shift, 0, 16)
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *shift)
	}
	return shifts, rows.Err()
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, unit_price, stock, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, product.ID, product.Name, product.Category, product.UnitPrice, product.Stock, product.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	created := product
	return &created, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, unit_price, stock, created_at
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Category, &p.UnitPrice, &p.Stock, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, unit_price = $4, stock = $5
		WHERE id = $1
	`, product.ID, product.Name, product.Category, product.UnitPrice, product.Stock)
	if err != nil {
		return nil, err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, store.ErrNotFound
	}
	updated := product
	return &updated, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, unit_price, stock, created_at
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 32)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.UnitPrice, &p.Stock, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) CreateTank(ctx context.Context, tank domain.Tank) (*domain.Tank, error) {
	if tank.ID == "" {
		tank.ID = xid.New("tnk")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tanks (id, name, product_id, capacity, stock, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, tank.ID, tank.Name, tank.ProductID, tank.Capacity, tank.Stock, tank.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	created := tank
	return &created, nil
}

func (s *Store) GetTank(ctx context.Context, id string) (*domain.Tank, error) {
	var t domain.Tank
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, product_id, capacity, stock, created_at
		FROM tanks
		WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.ProductID, &t.Capacity, &t.Stock, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *Store) GetTankByProduct(ctx context.Context, productID string) (*domain.Tank, error) {
	var t domain.Tank
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, product_id, capacity, stock, created_at
		FROM tanks
		WHERE product_id = $1
		ORDER BY id
		LIMIT 1
	`, productID).Scan(&t.ID, &t.Name, &t.ProductID, &t.Capacity, &t.Stock, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *Store) ListTanks(ctx context.Context) ([]domain.Tank, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, product_id, capacity, stock, created_at
		FROM tanks
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tanks := make([]domain.Tank, 0, 8)
	for rows.Next() {
		var t domain.Tank
		if err := rows.Scan(&t.ID, &t.Name, &t.ProductID, &t.Capacity, &t.Stock, &t.CreatedAt); err != nil {
			return nil, err
		}
		tanks = append(tanks, t)
	}
	return tanks, rows.Err()
}

func (s *Store) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, product_id, COALESCE(tank_id, ''), quantity, unit_price,
			amount, shift_id, remaining_stock_after, cashflow_id,
			COALESCE(created_by, ''), date, created_at
		FROM invoices
		WHERE id = $1
	`, id)
	invoice, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return invoice, nil
}

func (s *Store) ListInvoices(ctx context.Context, kind domain.InvoiceKind, from, to time.Time) ([]domain.Invoice, error) {
	query := `
		SELECT id, kind, product_id, COALESCE(tank_id, ''), quantity, unit_price,
			amount, shift_id, remaining_stock_after, cashflow_id,
			COALESCE(created_by, ''), date, created_at
		FROM invoices
	`
	clauses := ""
	args := []any{}
	if kind != "" {
		args = append(args, kind)
		clauses = ` WHERE kind = $1`
	}
	rangeWhere, rangeArgs := rangeClauseFrom("date", from, to, len(args))
	if rangeWhere != "" {
		if clauses == "" {
			clauses = " WHERE " + rangeWhere
		} else {
			clauses += " AND " + rangeWhere
		}
		args = append(args, rangeArgs...)
	}

	rows, err := s.db.QueryContext(ctx, query+clauses+` ORDER BY date, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, 128)
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *invoice)
	}
	return invoices, rows.Err()
}

func (s *Store) AppendStockMovement(ctx context.Context, movement domain.StockMovement) error {
	if movement.ID == "" {
		movement.ID = xid.New("stm")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stock_movements (
			id, product_id, tank_id, event_type, quantity, unit_price,
			remaining_stock_after, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, movement.ID, movement.ProductID, nullIfEmpty(movement.TankID),
		movement.EventType, movement.Quantity, movement.UnitPrice,
		movement.RemainingStockAfter, movement.CreatedAt)
	return err
}

func (s *Store) ListStockMovements(ctx context.Context, productID string, limit int) ([]domain.StockMovement, error) {
	if limit < 1 {
		limit = 200
	}
	query := `
		SELECT id, product_id, COALESCE(tank_id, ''), event_type, quantity,
			unit_price, remaining_stock_after, created_at
		FROM stock_movements
	`
	args := []any{}
	if productID != "" {
		query += ` WHERE product_id = $1`
		args = append(args, productID)
	}
	args = append(args, limit)
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := make([]domain.StockMovement, 0, limit)
	for rows.Next() {
		var m domain.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.TankID, &m.EventType,
			&m.Quantity, &m.UnitPrice, &m.RemainingStockAfter, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("aud")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, actor_username, actor_role, action, entity_type, entity_id,
			detail, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action,
		entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 200
	}
	query := `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id,
			detail, created_at
		FROM audit_logs
	`
	where, args := rangeClause("created_at", from, to)
	args = append(args, limit)
	query += where + ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole,
			&entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail,
			&entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *Store) GetUser(ctx context.Context, username string) (*domain.UserAccount, error) {
	var u domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&u.Username, &u.Password, &u.Role, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if isUniqueViolation(err) {
		return store.ErrConflict
	}
	return err
}

// Apply commits a write set in one serializable transaction. Stock levels
// were computed outside the transaction, so the floor guard is re-checked
// here before the absolute writes go out.
func (s *Store) Apply(ctx context.Context, ws ledger.WriteSet) error {
	if ws.IsEmpty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, w := range ws.Stock {
		if err := store.GuardStock(w); err != nil {
			return err
		}
	}

	for _, r := range ws.Receipts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO receipts (
				id, account_id, type, amount, date, balance_after, shift_id,
				cashflow_id, note, created_at
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			ON CONFLICT (id) DO UPDATE SET
				type = EXCLUDED.type,
				amount = EXCLUDED.amount,
				date = EXCLUDED.date,
				balance_after = EXCLUDED.balance_after,
				shift_id = EXCLUDED.shift_id,
				cashflow_id = EXCLUDED.cashflow_id,
				note = EXCLUDED.note
		`, r.ID, r.AccountID, r.Type, r.Amount, r.Date, r.BalanceAfter,
			r.ShiftID, nullIfEmpty(r.CashflowID), r.Note, r.CreatedAt)
		if err != nil {
			return err
		}
	}
	for _, id := range ws.DeleteReceipts {
		if _, err := tx.ExecContext(ctx, `DELETE FROM receipts WHERE id = $1`, id); err != nil {
			return err
		}
	}

	for _, inv := range ws.Invoices {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO invoices (
				id, kind, product_id, tank_id, quantity, unit_price, amount,
				shift_id, remaining_stock_after, cashflow_id, created_by,
				date, created_at
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (id) DO UPDATE SET
				quantity = EXCLUDED.quantity,
				unit_price = EXCLUDED.unit_price,
				amount = EXCLUDED.amount,
				remaining_stock_after = EXCLUDED.remaining_stock_after,
				cashflow_id = EXCLUDED.cashflow_id,
				date = EXCLUDED.date
		`, inv.ID, inv.Kind, inv.ProductID, nullIfEmpty(inv.TankID),
			inv.Quantity, inv.UnitPrice, inv.Amount, inv.ShiftID,
			inv.RemainingStockAfter, inv.CashflowID, inv.CreatedBy,
			inv.Date, inv.CreatedAt)
		if err != nil {
			return err
		}
	}
	for _, id := range ws.DeleteInvoices {
		if _, err := tx.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id); err != nil {
			return err
		}
	}

	if ws.Balance != nil {
		res, err := tx.ExecContext(ctx, `
			UPDATE accounts SET current_balance = $2 WHERE id = $1
		`, ws.Balance.AccountID, ws.Balance.NewBalance)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return store.ErrNotFound
		}
	}

	for _, op := range ws.Cashflows {
		switch op.Kind {
		case ledger.CashflowCreate, ledger.CashflowUpdate:
			_, err := tx.ExecContext(ctx, `
				INSERT INTO cashflow_entries (
					id, amount, type, category, receipt_id, invoice_id,
					created_at, updated_at
				)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
				ON CONFLICT (id) DO UPDATE SET
					amount = EXCLUDED.amount,
					type = EXCLUDED.type,
					category = EXCLUDED.category,
					updated_at = EXCLUDED.updated_at
			`, op.Entry.ID, op.Entry.Amount, op.Entry.Type, op.Entry.Category,
				nullIfEmpty(op.Entry.ReceiptID), nullIfEmpty(op.Entry.InvoiceID),
				op.Entry.CreatedAt, op.Entry.UpdatedAt)
			if err != nil {
				return err
			}
		case ledger.CashflowDelete:
			if _, err := tx.ExecContext(ctx, `DELETE FROM cashflow_entries WHERE id = $1`, op.Entry.ID); err != nil {
				return err
			}
		}
	}

	if !ws.Summary.IsZero() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO summaries (
				id, total_wasooli, total_odhar, total_salaries, total_expenses,
				total_deposits, total_withdrawals
			)
			VALUES ('global',$1,$2,$3,$4,$5,$6)
			ON CONFLICT (id) DO UPDATE SET
				total_wasooli = summaries.total_wasooli + EXCLUDED.total_wasooli,
				total_odhar = summaries.total_odhar + EXCLUDED.total_odhar,
				total_salaries = summaries.total_salaries + EXCLUDED.total_salaries,
				total_expenses = summaries.total_expenses + EXCLUDED.total_expenses,
				total_deposits = summaries.total_deposits + EXCLUDED.total_deposits,
				total_withdrawals = summaries.total_withdrawals + EXCLUDED.total_withdrawals
		`, ws.Summary.Wasooli, ws.Summary.Odhar, ws.Summary.Salaries,
			ws.Summary.Expenses, ws.Summary.Deposits, ws.Summary.Withdrawals)
		if err != nil {
			return err
		}
	}

	for _, w := range ws.Stock {
		var table string
		switch w.Kind {
		case ledger.TargetTank:
			table = "tanks"
		case ledger.TargetProduct:
			table = "products"
		default:
			return store.ErrInvalid
		}
		res, err := tx.ExecContext(ctx, `UPDATE `+table+` SET stock = $2 WHERE id = $1`, w.ID, w.NewStock)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return store.ErrNotFound
		}
	}

	if ws.DeleteAccount != "" {
		if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, ws.DeleteAccount); err != nil {
			return err
		}
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		account  domain.Account
		joinedAt sql.NullTime
	)
	err := row.Scan(&account.ID, &account.Type, &account.Name,
		&account.PhoneNumber, &account.InitialBalance, &account.CurrentBalance,
		&account.Salary, &account.CreditLimit, &account.Status, &joinedAt,
		&account.CreatedAt)
	if err != nil {
		return nil, err
	}
	if joinedAt.Valid {
		account.JoinedAt = joinedAt.Time
	}
	return &account, nil
}

func scanReceipt(row rowScanner) (*domain.Receipt, error) {
	var (
		r          domain.Receipt
		cashflowID sql.NullString
	)
	err := row.Scan(&r.ID, &r.AccountID, &r.Type, &r.Amount, &r.Date,
		&r.BalanceAfter, &r.ShiftID, &cashflowID, &r.Note, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.CashflowID = cashflowID.String
	return &r, nil
}

func collectReceipts(rows *sql.Rows) ([]domain.Receipt, error) {
	receipts := make([]domain.Receipt, 0, 128)
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, *r)
	}
	return receipts, rows.Err()
}

func scanShift(row rowScanner) (*domain.Shift, error) {
	var (
		shift   domain.Shift
		endTime sql.NullTime
	)
	err := row.Scan(&shift.ID, &shift.StartTime, &endTime, &shift.Status, &shift.OpenedBy)
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		t := endTime.Time
		shift.EndTime = &t
	}
	return &shift, nil
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := row.Scan(&invoice.ID, &invoice.Kind, &invoice.ProductID,
		&invoice.TankID, &invoice.Quantity, &invoice.UnitPrice, &invoice.Amount,
		&invoice.ShiftID, &invoice.RemainingStockAfter, &invoice.CashflowID,
		&invoice.CreatedBy, &invoice.Date, &invoice.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func rangeClause(column string, from, to time.Time) (string, []any) {
	where, args := rangeClauseFrom(column, from, to, 0)
	if where == "" {
		return "", nil
	}
	return " WHERE " + where, args
}

func rangeClauseFrom(column string, from, to time.Time, offset int) (string, []any) {
	clauses := ""
	args := []any{}
	if !from.IsZero() {
		args = append(args, from)
		clauses = column + ` >= $` + strconv.Itoa(offset+len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		if clauses != "" {
			clauses += " AND "
		}
		clauses += column + ` < $` + strconv.Itoa(offset+len(args))
	}
	return clauses, args
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val time.Time) any {
	if val.IsZero() {
		return nil
	}
	return val
}
