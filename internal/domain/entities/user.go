package entities

import (
	"time"
)

// User represents a user in the system. Email and Username are optional
// so that wallet-only (anonymous) users can exist.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Email    *string `gorm:"uniqueIndex;size:100" json:"email,omitempty"`
	Username *string `gorm:"uniqueIndex;size:50" json:"username,omitempty"`

	EthereumAddress string `gorm:"uniqueIndex;size:42;not null" json:"ethereum_address"`

	PaymentTemplates []PaymentTemplate `gorm:"foreignKey:UserID" json:"payment_templates,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// IsAnonymous reports whether the user has no profile beyond the wallet.
func (u *User) IsAnonymous() bool {
	return u.Email == nil && u.Username == nil
}
