package models

import (
	"time"

	"gorm.io/gorm"
)

// ABCClass represents the revenue classification of a client
type ABCClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"
)

// Client represents a customer account. Clients are never hard-deleted;
// deactivation flips Active to false.
type Client struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	Name             string     `json:"name" gorm:"not null"`
	Email            string     `json:"email" gorm:"index"`
	Phone            string     `json:"phone"`
	Address          string     `json:"address"`
	Category         string     `json:"category"`
	Reason           string     `json:"reason"`
	ABCClass         ABCClass   `json:"abcClass" gorm:"column:abc_class"`
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
	Active           bool       `json:"active" gorm:"default:true"`
	LastPurchaseDate *time.Time `json:"lastPurchaseDate" gorm:"column:last_purchase_date"`
	Sales            []Sale     `json:"sales,omitempty" gorm:"foreignKey:ClientID"`
	gorm.Model
}

// TableName specifies the table name for Client Model
func (Client) TableName() string {
	return "clients"
}
