package models

// CurrentUser is the authenticated user record exposed by the auth service.
// Only the credit balance matters to campaign planning.
type CurrentUser struct {
	ID            string `json:"id" example:"550e8400-e29b-41d4-a716-446655440001"`
	Email         string `json:"email" example:"founder@example.com"`
	CreditBalance int    `json:"credit_balance" example:"2000"`
}
