// internal/ingest/normalize.go
package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"churn-analytics/internal/models"
)

// serviceAliases maps each Yes/No service field to its accepted source
// keys plus the boolean "has_x" style flag used by the flat export
// format. Order matters: the first present, non-empty key wins.
var serviceAliases = []struct {
	keys    []string
	hasFlag string
	assign  func(*models.Customer, string)
}{
	{[]string{"MultipleLines", "multipleLines"}, "has_multiple_lines", func(c *models.Customer, v string) { c.MultipleLines = v }},
	{[]string{"InternetService", "internetService"}, "has_internet", func(c *models.Customer, v string) { c.InternetService = v }},
	{[]string{"OnlineSecurity", "onlineSecurity"}, "has_online_security", func(c *models.Customer, v string) { c.OnlineSecurity = v }},
	{[]string{"OnlineBackup", "onlineBackup"}, "has_online_backup", func(c *models.Customer, v string) { c.OnlineBackup = v }},
	{[]string{"DeviceProtection", "deviceProtection"}, "has_device_protection", func(c *models.Customer, v string) { c.DeviceProtection = v }},
	{[]string{"TechSupport", "techSupport"}, "has_tech_support", func(c *models.Customer, v string) { c.TechSupport = v }},
	{[]string{"StreamingTV", "streamingTV"}, "has_streaming_tv", func(c *models.Customer, v string) { c.StreamingTV = v }},
	{[]string{"StreamingMovies", "streamingMovies"}, "has_streaming_movies", func(c *models.Customer, v string) { c.StreamingMovies = v }},
}

// Normalize resolves a loosely-typed row into a canonical customer
// record. It tolerates any subset of fields being absent and never
// fails: a fully-defaulted record is always producible. fallbackIndex
// disambiguates synthesized customer IDs within a batch.
func Normalize(row map[string]any, fallbackIndex int, now time.Time) models.Customer {
	customer := models.Customer{
		CustomerID:       resolveString(row, "", "customerID", "customerId", "customer_id"),
		SeniorCitizen:    resolveBool(row, "SeniorCitizen", "seniorCitizen"),
		Partner:          resolveBool(row, "Partner", "partner"),
		Dependents:       resolveBool(row, "Dependents", "dependents"),
		Tenure:           int(resolveNumber(row, "tenure", "tenure_months")),
		PhoneService:     resolveBool(row, "PhoneService", "phoneService", "has_phone"),
		Contract:         resolveString(row, models.ContractMonthToMonth, "Contract", "contract", "contract_type"),
		PaperlessBilling: resolveBool(row, "PaperlessBilling", "paperlessBilling"),
		PaymentMethod:    resolveString(row, "Electronic check", "PaymentMethod", "paymentMethod", "payment_method"),
		MonthlyCharges:   resolveNumber(row, "MonthlyCharges", "monthlyCharges", "monthly_charges"),
		TotalCharges:     resolveNumber(row, "TotalCharges", "totalCharges", "total_charges"),
		Churn:            resolveBool(row, "Churn", "churn", "churned"),
		LastUpdated:      now,
	}

	if customer.CustomerID == "" {
		customer.CustomerID = fmt.Sprintf("CUST_%d_%d", now.UnixMilli(), fallbackIndex)
	}

	age, hasAge := row["age"]
	customer.Gender = resolveString(row, "", "gender")
	if customer.Gender == "" {
		if hasAge && present(age) {
			if toNumber(age) >= 65 {
				customer.Gender = "Senior"
			} else {
				customer.Gender = "Adult"
			}
		} else {
			customer.Gender = "Unknown"
		}
	}
	if !customer.SeniorCitizen && hasAge && present(age) {
		customer.SeniorCitizen = toNumber(age) >= 65
	}

	for _, field := range serviceAliases {
		value := resolveString(row, "", field.keys...)
		if value == "" {
			if toBool(row[field.hasFlag]) {
				value = "Yes"
			} else {
				value = "No"
			}
		}
		field.assign(&customer, value)
	}

	return customer
}

// present reports whether a value counts as set: nil, empty strings,
// zero numbers and false are all treated as absent so alias chains
// fall through to the next candidate.
func present(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	case bool:
		return v
	default:
		return true
	}
}

func resolveString(row map[string]any, def string, keys ...string) string {
	for _, key := range keys {
		if value, ok := row[key]; ok && present(value) {
			return stringify(value)
		}
	}
	return def
}

func resolveNumber(row map[string]any, keys ...string) float64 {
	for _, key := range keys {
		if num := toNumber(row[key]); num != 0 {
			return num
		}
	}
	return 0
}

func resolveBool(row map[string]any, keys ...string) bool {
	for _, key := range keys {
		if toBool(row[key]) {
			return true
		}
	}
	return false
}

func toBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v == 1
	case int:
		return v == 1
	case string:
		lower := strings.ToLower(strings.TrimSpace(v))
		return lower == "yes" || lower == "true" || lower == "1"
	default:
		return false
	}
}

func toNumber(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		num, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return num
	default:
		return 0
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
