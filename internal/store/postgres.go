package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rBrown1405/zentry-pos-sub001/internal/database"
	"github.com/rBrown1405/zentry-pos-sub001/internal/model"
)

// PostgresStore is the primary Store implementation. Unique constraints on
// the code columns give atomic create-if-absent, which closes the
// check-then-write race the key-value cache path still has.
type PostgresStore struct {
	db database.Database
}

func NewPostgresStore(db database.Database) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateBusiness(ctx context.Context, b model.Business) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tbl_business (id, code, business_id, company_name, business_type,
			owner_name, owner_email, phone, tax_rate, currency, auto_approve_staff,
			is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		b.ID, b.Code, b.BusinessID, b.CompanyName, b.Type, b.OwnerName, b.OwnerEmail,
		b.Phone, b.Settings.TaxRate, b.Settings.Currency, b.Settings.AutoApproveStaff,
		b.IsActive, b.CreatedAt, b.UpdatedAt)
	return translateError(err)
}

const businessColumns = `id, code, business_id, company_name, business_type, owner_name,
	owner_email, phone, tax_rate, currency, auto_approve_staff, is_active, created_at, updated_at`

func (s *PostgresStore) scanBusiness(row *sql.Row) (model.Business, error) {
	var b model.Business
	err := row.Scan(&b.ID, &b.Code, &b.BusinessID, &b.CompanyName, &b.Type, &b.OwnerName,
		&b.OwnerEmail, &b.Phone, &b.Settings.TaxRate, &b.Settings.Currency,
		&b.Settings.AutoApproveStaff, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Business{}, ErrBusinessNotFound
		}
		return model.Business{}, err
	}
	return b, nil
}

func (s *PostgresStore) GetBusinessByID(ctx context.Context, id uuid.UUID) (model.Business, error) {
	return s.scanBusiness(s.db.QueryRowContext(ctx,
		`SELECT `+businessColumns+` FROM tbl_business WHERE id = $1`, id))
}

func (s *PostgresStore) GetBusinessByCode(ctx context.Context, code string) (model.Business, error) {
	return s.scanBusiness(s.db.QueryRowContext(ctx,
		`SELECT `+businessColumns+` FROM tbl_business WHERE code = $1`, code))
}

func (s *PostgresStore) GetBusinessByBusinessID(ctx context.Context, businessID string) (model.Business, error) {
	return s.scanBusiness(s.db.QueryRowContext(ctx,
		`SELECT `+businessColumns+` FROM tbl_business WHERE business_id = $1`, businessID))
}

func (s *PostgresStore) ListBusinessesByOwner(ctx context.Context, ownerEmail string) ([]model.Business, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+businessColumns+` FROM tbl_business WHERE owner_email = $1 AND is_active ORDER BY created_at`, ownerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var businesses []model.Business
	for rows.Next() {
		var b model.Business
		if err := rows.Scan(&b.ID, &b.Code, &b.BusinessID, &b.CompanyName, &b.Type, &b.OwnerName,
			&b.OwnerEmail, &b.Phone, &b.Settings.TaxRate, &b.Settings.Currency,
			&b.Settings.AutoApproveStaff, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		businesses = append(businesses, b)
	}
	return businesses, rows.Err()
}

func (s *PostgresStore) UpdateBusiness(ctx context.Context, b model.Business) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tbl_business SET company_name = $1, business_type = $2, owner_name = $3,
			owner_email = $4, phone = $5, tax_rate = $6, currency = $7,
			auto_approve_staff = $8, is_active = $9, updated_at = $10
		WHERE id = $11`,
		b.CompanyName, b.Type, b.OwnerName, b.OwnerEmail, b.Phone, b.Settings.TaxRate,
		b.Settings.Currency, b.Settings.AutoApproveStaff, b.IsActive, time.Now(), b.ID)
	if err != nil {
		return translateError(err)
	}
	return checkAffected(res, ErrBusinessNotFound)
}

func (s *PostgresStore) CreateProperty(ctx context.Context, p model.Property) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tbl_property (id, code, name, connection_code, business_id, address,
			is_main, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.Code, p.Name, p.ConnectionCode, p.BusinessID, p.Address,
		p.IsMain, p.IsActive, p.CreatedAt, p.UpdatedAt)
	return translateError(err)
}

const propertyColumns = `id, code, name, connection_code, business_id, address, is_main,
	is_active, created_at, updated_at`

func (s *PostgresStore) scanProperty(row *sql.Row) (model.Property, error) {
	var p model.Property
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.ConnectionCode, &p.BusinessID, &p.Address,
		&p.IsMain, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Property{}, ErrPropertyNotFound
		}
		return model.Property{}, err
	}
	return p, nil
}

func (s *PostgresStore) GetPropertyByID(ctx context.Context, id uuid.UUID) (model.Property, error) {
	return s.scanProperty(s.db.QueryRowContext(ctx,
		`SELECT `+propertyColumns+` FROM tbl_property WHERE id = $1`, id))
}

func (s *PostgresStore) GetPropertyByCode(ctx context.Context, code string) (model.Property, error) {
	return s.scanProperty(s.db.QueryRowContext(ctx,
		`SELECT `+propertyColumns+` FROM tbl_property WHERE code = $1`, code))
}

func (s *PostgresStore) GetPropertyByConnectionCode(ctx context.Context, connectionCode string) (model.Property, error) {
	return s.scanProperty(s.db.QueryRowContext(ctx,
		`SELECT `+propertyColumns+` FROM tbl_property WHERE connection_code = $1`, connectionCode))
}

func (s *PostgresStore) ListPropertiesByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Property, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+propertyColumns+` FROM tbl_property WHERE business_id = $1 ORDER BY created_at`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []model.Property
	for rows.Next() {
		var p model.Property
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.ConnectionCode, &p.BusinessID,
			&p.Address, &p.IsMain, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func (s *PostgresStore) UpdateProperty(ctx context.Context, p model.Property) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tbl_property SET name = $1, address = $2, is_main = $3, is_active = $4,
			updated_at = $5
		WHERE id = $6`,
		p.Name, p.Address, p.IsMain, p.IsActive, time.Now(), p.ID)
	if err != nil {
		return translateError(err)
	}
	return checkAffected(res, ErrPropertyNotFound)
}

func (s *PostgresStore) DeleteProperty(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tbl_property WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res, ErrPropertyNotFound)
}

func (s *PostgresStore) CreateStaff(ctx context.Context, st model.Staff) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tbl_staff (id, staff_id, first_name, last_name, email, phone, role,
			business_id, business_code, password_hash, property_access, is_approved,
			is_active, last_login, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		st.ID, st.StaffID, st.FirstName, st.LastName, st.Email, st.Phone, st.Role,
		st.BusinessID, st.BusinessCode, st.PasswordHash, pq.Array(accessToStrings(st.PropertyAccess)),
		st.IsApproved, st.IsActive, st.LastLogin, st.CreatedAt, st.UpdatedAt)
	return translateError(err)
}

const staffColumns = `id, staff_id, first_name, last_name, email, phone, role, business_id,
	business_code, password_hash, property_access, is_approved, is_active, last_login,
	created_at, updated_at`

func (s *PostgresStore) scanStaff(row *sql.Row) (model.Staff, error) {
	var st model.Staff
	var access pq.StringArray
	err := row.Scan(&st.ID, &st.StaffID, &st.FirstName, &st.LastName, &st.Email, &st.Phone,
		&st.Role, &st.BusinessID, &st.BusinessCode, &st.PasswordHash, &access,
		&st.IsApproved, &st.IsActive, &st.LastLogin, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Staff{}, ErrStaffNotFound
		}
		return model.Staff{}, err
	}
	st.PropertyAccess, err = accessFromStrings(access)
	if err != nil {
		return model.Staff{}, fmt.Errorf("corrupt property access list for staff %s: %w", st.StaffID, err)
	}
	return st, nil
}

func (s *PostgresStore) GetStaffByStaffID(ctx context.Context, staffID string) (model.Staff, error) {
	return s.scanStaff(s.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM tbl_staff WHERE staff_id = $1`, staffID))
}

func (s *PostgresStore) GetStaffByEmail(ctx context.Context, email string) (model.Staff, error) {
	return s.scanStaff(s.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM tbl_staff WHERE email = $1`, email))
}

func (s *PostgresStore) ListStaffByBusiness(ctx context.Context, businessID uuid.UUID) ([]model.Staff, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+staffColumns+` FROM tbl_staff WHERE business_id = $1 ORDER BY created_at`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []model.Staff
	for rows.Next() {
		var st model.Staff
		var access pq.StringArray
		if err := rows.Scan(&st.ID, &st.StaffID, &st.FirstName, &st.LastName, &st.Email,
			&st.Phone, &st.Role, &st.BusinessID, &st.BusinessCode, &st.PasswordHash,
			&access, &st.IsApproved, &st.IsActive, &st.LastLogin, &st.CreatedAt,
			&st.UpdatedAt); err != nil {
			return nil, err
		}
		st.PropertyAccess, err = accessFromStrings(access)
		if err != nil {
			return nil, fmt.Errorf("corrupt property access list for staff %s: %w", st.StaffID, err)
		}
		staff = append(staff, st)
	}
	return staff, rows.Err()
}

func (s *PostgresStore) UpdateStaff(ctx context.Context, st model.Staff) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tbl_staff SET first_name = $1, last_name = $2, email = $3, phone = $4,
			role = $5, password_hash = $6, property_access = $7, is_approved = $8,
			is_active = $9, last_login = $10, updated_at = $11
		WHERE id = $12`,
		st.FirstName, st.LastName, st.Email, st.Phone, st.Role, st.PasswordHash,
		pq.Array(accessToStrings(st.PropertyAccess)), st.IsApproved, st.IsActive,
		st.LastLogin, time.Now(), st.ID)
	if err != nil {
		return translateError(err)
	}
	return checkAffected(res, ErrStaffNotFound)
}

func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func accessToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func accessFromStrings(raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// translateError maps postgres unique violations onto ErrDuplicate so the
// registry's bounded retry and the registration flow see one error shape.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
	return err
}

func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
