package models

import "time"

type User struct {
	Username  string `json:"username"   bson:"username"`
	Email     string `json:"email"      bson:"email"`
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name"  bson:"last_name"`

	// PasswordHash must survive the storage round-trip, so it carries a real
	// json tag for the JSON-backed stores. The guard strips it before the
	// user reaches request handling; omitempty keeps the stripped form free
	// of the field.
	PasswordHash string `json:"password_hash,omitempty" bson:"password_hash"`
}

// Session is the single live session of a username. It is replaced wholesale
// on every login, registration and refresh, and deleted on logout.
type Session struct {
	Username        string    `json:"username"          bson:"username"`
	RefreshToken    string    `json:"refresh_token"     bson:"refresh_token"`
	AccessExpiresAt time.Time `json:"access_expires_at" bson:"access_expires_at"`
	CreatedAt       time.Time `json:"created_at"        bson:"created_at"`
}

type TokenPair struct {
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token"`
	TokenType       string    `json:"token_type"`
	AccessExpiresAt time.Time `json:"access_token_expiration"`
}

type Presentation struct {
	ID    string `json:"id"    bson:"id"`
	Title string `json:"title" bson:"title"`
	Price int    `json:"price" bson:"price"`
}

type Purchase struct {
	ID             string    `json:"id"              bson:"id"`
	UserID         string    `json:"user_id"         bson:"user_id"`
	PresentationID string    `json:"presentation_id" bson:"presentation_id"`
	PurchaseDate   time.Time `json:"purchase_date"   bson:"purchase_date"`
}

const (
	SubscriptionStandard = "standard"
	SubscriptionPremium  = "premium"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Subscription struct {
	ID        string    `json:"id"         bson:"id"`
	UserID    string    `json:"user_id"    bson:"user_id"`
	Type      string    `json:"type"       bson:"type"`
	StartDate time.Time `json:"start_date" bson:"start_date"`
	EndDate   time.Time `json:"end_date"   bson:"end_date"`
	Status    string    `json:"status"     bson:"status"`
}
