package models

import (
	"time"

	"gorm.io/gorm"
)

// Sale represents a single recorded sale, optionally linked to a client.
type Sale struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Date          time.Time `json:"date" gorm:"not null;index"`
	Amount        float64   `json:"amount" gorm:"not null"`
	Quantity      int       `json:"quantity" gorm:"default:1"`
	ProductFamily string    `json:"productFamily" gorm:"column:product_family;not null;index"`
	ProductName   string    `json:"productName" gorm:"column:product_name;not null"`
	InvoiceNumber string    `json:"invoiceNumber" gorm:"column:invoice_number"`
	Notes         string    `json:"notes"`
	ClientID      string    `json:"clientId" gorm:"column:client_id;index"`
	Client        *Client   `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	gorm.Model
}

// TableName specifies the table name for Sale Model
func (Sale) TableName() string {
	return "sales"
}
