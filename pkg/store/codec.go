package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcclellann/emiLedger/pkg/models"
)

const customerColumns = `id, name, father_name, address, contact, alternate_number, model, imei, supplier, supplier_number,
	price, down_payment, emi_amount, status, created_by_id, created_by_role, emis, version, created_at, updated_at`

const userColumns = `id, name, email, password_hash, role, created_at`

// rowScanner is satisfied by *sql.Row, *sql.Rows and pgx.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

func encodeEMIs(emis []models.Installment) (string, error) {
	if emis == nil {
		emis = []models.Installment{}
	}
	b, err := json.Marshal(emis)
	if err != nil {
		return "", fmt.Errorf("encode emis: %w", err)
	}
	return string(b), nil
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var (
		c                   models.Customer
		idStr, creatorStr   string
		emis                string
		created, updated    time.Time
		status, creatorRole string
	)
	if err := row.Scan(&idStr, &c.Name, &c.FatherName, &c.Address, &c.Contact, &c.AlternateNumber, &c.Model, &c.IMEI,
		&c.Supplier, &c.SupplierNumber, &c.Price, &c.DownPayment, &c.EMIAmount, &status, &creatorStr, &creatorRole,
		&emis, &c.Version, &created, &updated); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse customer id %q: %w", idStr, err)
	}
	creator, err := uuid.Parse(creatorStr)
	if err != nil {
		return nil, fmt.Errorf("parse creator id %q: %w", creatorStr, err)
	}
	if err := json.Unmarshal([]byte(emis), &c.EMIs); err != nil {
		return nil, fmt.Errorf("decode emis for customer %s: %w", id, err)
	}
	c.ID = id
	c.Status = models.ApprovalStatus(status)
	c.CreatedBy = models.Principal{UserID: creator, Role: models.Role(creatorRole)}
	c.CreatedAt = created
	c.UpdatedAt = updated
	return &c, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u     models.User
		idStr string
		role  string
	)
	if err := row.Scan(&idStr, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", idStr, err)
	}
	u.ID = id
	u.Role = models.Role(role)
	return &u, nil
}
