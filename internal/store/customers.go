// internal/store/customers.go
package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"churn-analytics/internal/common/errors"
	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/models"
)

const customerColumns = `customer_id, gender, senior_citizen, partner, dependents, tenure,
	phone_service, multiple_lines, internet_service, online_security, online_backup,
	device_protection, tech_support, streaming_tv, streaming_movies, contract,
	paperless_billing, payment_method, monthly_charges, total_charges, churn,
	churn_probability, risk_level, last_updated`

// CustomerStore persists the canonical customer collection in
// Postgres.
type CustomerStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewCustomerStore(db *sql.DB, log logger.Logger) *CustomerStore {
	return &CustomerStore{db: db, log: log}
}

// ListAll returns every customer, most recently updated first.
func (s *CustomerStore) ListAll(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		ORDER BY last_updated DESC`)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list customers", err)
	}
	defer rows.Close()
	return scanCustomers(rows)
}

// FindByID returns one customer or a RECORD_NOT_FOUND error.
func (s *CustomerStore) FindByID(ctx context.Context, customerID string) (models.Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE customer_id = $1`, customerID)

	customer, err := scanCustomer(row)
	if err == sql.ErrNoRows {
		return models.Customer{}, errors.NewRecordNotFoundError(customerID)
	}
	if err != nil {
		return models.Customer{}, errors.NewQueryExecutionFailedError("find customer", err)
	}
	return customer, nil
}

// FindByRisk returns all customers currently at the given risk level.
func (s *CustomerStore) FindByRisk(ctx context.Context, riskLevel string) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE risk_level = $1
		ORDER BY last_updated DESC`, riskLevel)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("find customers by risk", err)
	}
	defer rows.Close()
	return scanCustomers(rows)
}

// FindByChurn returns up to limit customers filtered by churn status.
func (s *CustomerStore) FindByChurn(ctx context.Context, churned bool, limit int) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE churn = $1
		ORDER BY last_updated DESC
		LIMIT $2`, churned, limit)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("find customers by churn", err)
	}
	defer rows.Close()
	return scanCustomers(rows)
}

// Insert stores one customer record.
func (s *CustomerStore) Insert(ctx context.Context, c models.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`,
		c.CustomerID, c.Gender, c.SeniorCitizen, c.Partner, c.Dependents, c.Tenure,
		c.PhoneService, c.MultipleLines, c.InternetService, c.OnlineSecurity, c.OnlineBackup,
		c.DeviceProtection, c.TechSupport, c.StreamingTV, c.StreamingMovies, c.Contract,
		c.PaperlessBilling, c.PaymentMethod, c.MonthlyCharges, c.TotalCharges, c.Churn,
		c.ChurnProbability, c.RiskLevel, c.LastUpdated)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

// DeleteAll clears the whole collection ahead of a full-replace load.
func (s *CustomerStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM customers`); err != nil {
		return errors.NewQueryExecutionFailedError("delete customers", err)
	}
	return nil
}

// UpdateRisk patches the risk fields written by an assessment run.
func (s *CustomerStore) UpdateRisk(ctx context.Context, customerID string, churnProbability float64, riskLevel string, now time.Time) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET churn_probability = $1, risk_level = $2, last_updated = $3
		WHERE customer_id = $4`,
		churnProbability, riskLevel, now, customerID)
	if err != nil {
		return errors.NewQueryExecutionFailedError("update customer risk", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errors.NewRecordNotFoundError(customerID)
	}
	return nil
}

// Update applies a partial edit of the directly editable fields and
// bumps last_updated.
func (s *CustomerStore) Update(ctx context.Context, customerID string, update models.CustomerUpdate) error {
	setClauses := []string{}
	args := []interface{}{}

	addSet := func(column string, value interface{}) {
		args = append(args, value)
		setClauses = append(setClauses, column+" = $"+strconv.Itoa(len(args)))
	}

	if update.MonthlyCharges != nil {
		addSet("monthly_charges", *update.MonthlyCharges)
	}
	if update.Contract != nil {
		addSet("contract", *update.Contract)
	}
	if update.PaymentMethod != nil {
		addSet("payment_method", *update.PaymentMethod)
	}
	if update.InternetService != nil {
		addSet("internet_service", *update.InternetService)
	}
	if len(setClauses) == 0 {
		return nil
	}
	addSet("last_updated", time.Now())

	args = append(args, customerID)
	query := `UPDATE customers SET ` + strings.Join(setClauses, ", ") +
		` WHERE customer_id = $` + strconv.Itoa(len(args))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewQueryExecutionFailedError("update customer", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return errors.NewRecordNotFoundError(customerID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCustomer(row rowScanner) (models.Customer, error) {
	var c models.Customer
	var churnProbability sql.NullFloat64
	var riskLevel sql.NullString

	err := row.Scan(
		&c.CustomerID, &c.Gender, &c.SeniorCitizen, &c.Partner, &c.Dependents, &c.Tenure,
		&c.PhoneService, &c.MultipleLines, &c.InternetService, &c.OnlineSecurity, &c.OnlineBackup,
		&c.DeviceProtection, &c.TechSupport, &c.StreamingTV, &c.StreamingMovies, &c.Contract,
		&c.PaperlessBilling, &c.PaymentMethod, &c.MonthlyCharges, &c.TotalCharges, &c.Churn,
		&churnProbability, &riskLevel, &c.LastUpdated,
	)
	if err != nil {
		return models.Customer{}, err
	}

	if churnProbability.Valid {
		c.ChurnProbability = &churnProbability.Float64
	}
	if riskLevel.Valid {
		c.RiskLevel = &riskLevel.String
	}
	return c, nil
}

func scanCustomers(rows *sql.Rows) ([]models.Customer, error) {
	var customers []models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("scan customer", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("iterate customers", err)
	}
	return customers, nil
}
