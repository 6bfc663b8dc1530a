package model

type PaymentSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

type SessionVerification struct {
	SessionID       string
	Paid            bool
	Status          string
	PaymentStatus   string
	CustomerEmail   string
	PaymentIntentID string
	AmountTotal     Money
	Currency        string
}

// Complete reports whether the hosted checkout finished.
func (v SessionVerification) Complete() bool {
	return v.Status == "complete"
}

type ContactMessage struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Phone   string `json:"phone" validate:"omitempty,min=6,max=30,phone"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}
