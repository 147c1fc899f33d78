package backend

import "time"

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category,omitempty"`
	Available   bool    `json:"available"`
}

type Restaurant struct {
	ID         string     `json:"id"`
	BusinessID string     `json:"businessId"`
	Name       string     `json:"name"`
	Cuisine    string     `json:"cuisine,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Rating     float64    `json:"rating"`
	Location   *GeoPoint  `json:"location,omitempty"`
	Address    string     `json:"address,omitempty"`
	ImageURL   string     `json:"imageUrl,omitempty"`
	Menu       []MenuItem `json:"menu,omitempty"`
	Open       bool       `json:"open"`
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type OrderItem struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Order struct {
	ID           string      `json:"id"`
	RestaurantID string      `json:"restaurantId"`
	BusinessID   string      `json:"businessId"`
	Items        []OrderItem `json:"items"`
	Total        float64     `json:"total"`
	Status       string      `json:"status"`
	PaymentState string      `json:"paymentState,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type Reservation struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId"`
	BusinessID   string    `json:"businessId"`
	PartySize    int       `json:"partySize"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Status       string    `json:"status"`
	FeeAmount    float64   `json:"feeAmount,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ReservationPolicy struct {
	FeeRequired bool    `json:"feeRequired"`
	FeeAmount   float64 `json:"feeAmount"`
	Currency    string  `json:"currency,omitempty"`
}

type Review struct {
	ID           string    `json:"id"`
	RestaurantID string    `json:"restaurantId"`
	UserID       string    `json:"userId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ReviewEligibility struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// ManualMethod is a manually-settled mobile money destination (till, paybill
// or pochi number) a restaurant accepts.
type ManualMethod struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Label   string `json:"label,omitempty"`
	Number  string `json:"number"`
	Account string `json:"account,omitempty"`
}

type EnabledMethods struct {
	Mpesa bool `json:"mpesa"`
	Card  bool `json:"card"`
	Cash  bool `json:"cash"`
}

// PaymentMethods is the restaurant-level rails listing.
type PaymentMethods struct {
	BusinessID         string         `json:"businessId"`
	Enabled            EnabledMethods `json:"enabled"`
	Providers          []string       `json:"providers,omitempty"`
	ManualMpesaMethods []ManualMethod `json:"manualMpesaMethods,omitempty"`
}

// InstasendConfig carries the aggregator identifiers that gate whether an
// STK push is actually wired up, independent of the enabled flag.
type InstasendConfig struct {
	SubMerchantID    string `json:"subMerchantId,omitempty"`
	MpesaProductCode string `json:"mpesaProductCode,omitempty"`
	StoreID          string `json:"storeId,omitempty"`
}

// PaymentConfig is the business-level payment configuration.
type PaymentConfig struct {
	BusinessID     string           `json:"businessId"`
	EnabledMethods EnabledMethods   `json:"enabledMethods"`
	Instasend      *InstasendConfig `json:"instasend,omitempty"`
	ManualMethods  []ManualMethod   `json:"manualMethods,omitempty"`
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentSuccess    PaymentStatus = "success"
	PaymentFailed     PaymentStatus = "failed"
	PaymentCancelled  PaymentStatus = "cancelled"
)

func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentSuccess, PaymentFailed, PaymentCancelled:
		return true
	}
	return false
}

type PaymentStatusResult struct {
	Status     PaymentStatus `json:"status"`
	PaidAmount float64       `json:"paidAmount,omitempty"`
	Provider   string        `json:"provider,omitempty"`
}

type PaymentInitiation struct {
	Reference   string `json:"reference"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}
