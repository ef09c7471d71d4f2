// internal/ingest/sample.go
package ingest

import (
	"time"

	"churn-analytics/internal/models"
)

// SampleCustomers returns the canned demo dataset used for seeding a
// fresh environment.
func SampleCustomers(now time.Time) []models.Customer {
	return []models.Customer{
		{
			CustomerID: "CUST001", Gender: "Female", SeniorCitizen: false, Partner: true, Dependents: false,
			Tenure: 1, PhoneService: false, MultipleLines: "No phone service", InternetService: "DSL",
			OnlineSecurity: "No", OnlineBackup: "Yes", DeviceProtection: "No", TechSupport: "No",
			StreamingTV: "No", StreamingMovies: "No", Contract: models.ContractMonthToMonth,
			PaperlessBilling: true, PaymentMethod: "Electronic check",
			MonthlyCharges: 29.85, TotalCharges: 29.85, Churn: false, LastUpdated: now,
		},
		{
			CustomerID: "CUST002", Gender: "Male", SeniorCitizen: false, Partner: false, Dependents: false,
			Tenure: 34, PhoneService: true, MultipleLines: "No", InternetService: "DSL",
			OnlineSecurity: "Yes", OnlineBackup: "No", DeviceProtection: "Yes", TechSupport: "No",
			StreamingTV: "No", StreamingMovies: "No", Contract: models.ContractOneYear,
			PaperlessBilling: false, PaymentMethod: "Mailed check",
			MonthlyCharges: 56.95, TotalCharges: 1889.5, Churn: false, LastUpdated: now,
		},
		{
			CustomerID: "CUST003", Gender: "Male", SeniorCitizen: false, Partner: false, Dependents: false,
			Tenure: 2, PhoneService: true, MultipleLines: "No", InternetService: "DSL",
			OnlineSecurity: "Yes", OnlineBackup: "Yes", DeviceProtection: "No", TechSupport: "No",
			StreamingTV: "No", StreamingMovies: "No", Contract: models.ContractMonthToMonth,
			PaperlessBilling: true, PaymentMethod: "Mailed check",
			MonthlyCharges: 53.85, TotalCharges: 108.15, Churn: true, LastUpdated: now,
		},
		{
			CustomerID: "CUST004", Gender: "Male", SeniorCitizen: false, Partner: false, Dependents: false,
			Tenure: 45, PhoneService: false, MultipleLines: "No phone service", InternetService: "DSL",
			OnlineSecurity: "Yes", OnlineBackup: "No", DeviceProtection: "Yes", TechSupport: "Yes",
			StreamingTV: "No", StreamingMovies: "No", Contract: models.ContractOneYear,
			PaperlessBilling: false, PaymentMethod: "Bank transfer (automatic)",
			MonthlyCharges: 42.30, TotalCharges: 1840.75, Churn: false, LastUpdated: now,
		},
		{
			CustomerID: "CUST005", Gender: "Female", SeniorCitizen: false, Partner: false, Dependents: false,
			Tenure: 2, PhoneService: true, MultipleLines: "No", InternetService: "Fiber optic",
			OnlineSecurity: "No", OnlineBackup: "No", DeviceProtection: "No", TechSupport: "No",
			StreamingTV: "No", StreamingMovies: "No", Contract: models.ContractMonthToMonth,
			PaperlessBilling: true, PaymentMethod: "Electronic check",
			MonthlyCharges: 70.70, TotalCharges: 151.65, Churn: true, LastUpdated: now,
		},
		{
			CustomerID: "CUST006", Gender: "Female", SeniorCitizen: false, Partner: false, Dependents: false,
			Tenure: 8, PhoneService: true, MultipleLines: "Yes", InternetService: "Fiber optic",
			OnlineSecurity: "No", OnlineBackup: "No", DeviceProtection: "Yes", TechSupport: "No",
			StreamingTV: "Yes", StreamingMovies: "Yes", Contract: models.ContractMonthToMonth,
			PaperlessBilling: true, PaymentMethod: "Electronic check",
			MonthlyCharges: 99.65, TotalCharges: 820.5, Churn: true, LastUpdated: now,
		},
		{
			CustomerID: "CUST007", Gender: "Male", SeniorCitizen: true, Partner: true, Dependents: false,
			Tenure: 22, PhoneService: true, MultipleLines: "Yes", InternetService: "Fiber optic",
			OnlineSecurity: "No", OnlineBackup: "Yes", DeviceProtection: "No", TechSupport: "No",
			StreamingTV: "Yes", StreamingMovies: "No", Contract: models.ContractMonthToMonth,
			PaperlessBilling: true, PaymentMethod: "Credit card (automatic)",
			MonthlyCharges: 89.10, TotalCharges: 1949.4, Churn: false, LastUpdated: now,
		},
		{
			CustomerID: "CUST008", Gender: "Female", SeniorCitizen: false, Partner: true, Dependents: true,
			Tenure: 10, PhoneService: false, MultipleLines: "No phone service", InternetService: "DSL",
			OnlineSecurity: "Yes", OnlineBackup: "No", DeviceProtection: "No", TechSupport: "No",
			StreamingTV: "No", StreamingMovies: "No", Contract: models.ContractMonthToMonth,
			PaperlessBilling: false, PaymentMethod: "Mailed check",
			MonthlyCharges: 29.75, TotalCharges: 301.9, Churn: false, LastUpdated: now,
		},
	}
}
