package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/mcclellann/emiLedger/pkg/models"
)

// SQLiteStore manages the database connection and operations for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore and initializes the database.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	// Manually enable foreign keys and WAL mode
	if _, err = db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err = db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	slog.Info("sqlite store ready", "dsn", dataSourceName)
	return s, nil
}

// initSchema creates the tables if they don't already exist.
// Money columns are TEXT so no decimal precision is lost; the installment
// schedule is embedded in each customer row as a JSON document.
func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		father_name TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		contact TEXT NOT NULL DEFAULT '',
		alternate_number TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		imei TEXT NOT NULL UNIQUE,
		supplier TEXT NOT NULL DEFAULT '',
		supplier_number TEXT NOT NULL DEFAULT '',
		price TEXT NOT NULL DEFAULT '0',
		down_payment TEXT NOT NULL DEFAULT '0',
		emi_amount TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL,
		created_by_id TEXT NOT NULL,
		created_by_role TEXT NOT NULL,
		emis TEXT NOT NULL DEFAULT '[]',
		version INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_customers_status ON customers(status);
	CREATE INDEX IF NOT EXISTS idx_customers_created_by ON customers(created_by_id);
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func isSQLiteUnique(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// CreateCustomer inserts a new customer. An IMEI collision yields ErrDuplicate.
func (s *SQLiteStore) CreateCustomer(ctx context.Context, c *models.Customer) error {
	emis, err := encodeEMIs(c.EMIs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO customers (`+customerColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.Name, c.FatherName, c.Address, c.Contact, c.AlternateNumber, c.Model, c.IMEI, c.Supplier, c.SupplierNumber,
		c.Price, c.DownPayment, c.EMIAmount, string(c.Status), c.CreatedBy.UserID.String(), string(c.CreatedBy.Role),
		emis, c.Version, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isSQLiteUnique(err) {
			return fmt.Errorf("customer imei %s: %w", c.IMEI, ErrDuplicate)
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// GetCustomer retrieves a customer by its ID.
func (s *SQLiteStore) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id.String())
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

// UpdateCustomer writes every mutable column guarded by the version counter.
func (s *SQLiteStore) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	emis, err := encodeEMIs(c.EMIs)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE customers SET name = ?, father_name = ?, address = ?, contact = ?, alternate_number = ?, model = ?, imei = ?,
		supplier = ?, supplier_number = ?, price = ?, down_payment = ?, emi_amount = ?, status = ?, emis = ?,
		version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		c.Name, c.FatherName, c.Address, c.Contact, c.AlternateNumber, c.Model, c.IMEI,
		c.Supplier, c.SupplierNumber, c.Price, c.DownPayment, c.EMIAmount, string(c.Status), emis,
		c.UpdatedAt, c.ID.String(), c.Version,
	)
	if err != nil {
		if isSQLiteUnique(err) {
			return fmt.Errorf("customer imei %s: %w", c.IMEI, ErrDuplicate)
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return s.missOrConflict(ctx, c.ID)
	}
	c.Version++
	return nil
}

func (s *SQLiteStore) missOrConflict(ctx context.Context, id uuid.UUID) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM customers WHERE id = ?`, id.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check customer: %w", err)
	}
	return fmt.Errorf("customer %s: %w", id, ErrVersionConflict)
}

// DeleteCustomer removes a customer together with its embedded schedule.
func (s *SQLiteStore) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("customer %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListCustomers retrieves customers matching f, newest first.
func (s *SQLiteStore) ListCustomers(ctx context.Context, f CustomerFilter) ([]*models.Customer, error) {
	where, args := customerWhere(f, questionMark)
	rows, err := s.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers`+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return customers, nil
}

// CreateUser inserts a new user. An email collision yields ErrDuplicate.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.Name, strings.ToLower(u.Email), u.PasswordHash, string(u.Role), u.CreatedAt,
	)
	if err != nil {
		if isSQLiteUnique(err) {
			return fmt.Errorf("user email %s: %w", u.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) UpdateUserRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, string(role), id.String())
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	} else if n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	} else if n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context, role models.Role) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if role != "" {
		query += ` WHERE role = ?`
		args = append(args, string(role))
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY created_at ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return users, nil
}

// Health pings the database with a short deadline.
func (s *SQLiteStore) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
