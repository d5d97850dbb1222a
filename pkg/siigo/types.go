package siigo

import "github.com/shopspring/decimal"

// Credentials are the SIIGO API credentials resolved at call time so that
// admin updates take effect without a restart.
type Credentials struct {
	Username  string
	AccessKey string
}

type authRequest struct {
	Username  string `json:"username"`
	AccessKey string `json:"access_key"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Customer is the subset of the SIIGO customer payload the backend consumes.
type Customer struct {
	ID             string   `json:"id"`
	Identification string   `json:"identification"`
	BranchOffice   int      `json:"branch_office"`
	Name           []string `json:"name"`
	CommercialName string   `json:"commercial_name"`
	Active         bool     `json:"active"`
	Phones         []Phone  `json:"phones"`
	Address        *Address `json:"address"`
}

type Phone struct {
	Number string `json:"number"`
}

type Address struct {
	AddressLine string `json:"address"`
	City        *City  `json:"city"`
}

type City struct {
	CityName string `json:"city_name"`
}

// Invoice carries the invoice fields used for receivables and status checks.
type Invoice struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Date     string          `json:"date"`
	Total    decimal.Decimal `json:"total"`
	Balance  decimal.Decimal `json:"balance"`
	Customer struct {
		ID             string `json:"id"`
		Identification string `json:"identification"`
	} `json:"customer"`
}

type listResponse[T any] struct {
	Pagination struct {
		Page         int `json:"page"`
		PageSize     int `json:"page_size"`
		TotalResults int `json:"total_results"`
	} `json:"pagination"`
	Results []T `json:"results"`
}

// ConnectionStatus summarizes the health probe against the SIIGO API.
type ConnectionStatus struct {
	Connected   bool   `json:"connected"`
	Message     string `json:"message"`
	RateLimited bool   `json:"rate_limited"`
}
