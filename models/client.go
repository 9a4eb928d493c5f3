package models

import "time"

// Client is a captured lead.
type Client struct {
	ID                string    `bson:"id" json:"id"`
	Name              string    `bson:"name" json:"name"`
	ContactInfo       string    `bson:"contact_info" json:"contact_info"`
	ProductInterested string    `bson:"product_interested" json:"product_interested"`
	Source            string    `bson:"source" json:"source"` // e.g. "Website", "WhatsApp", "Pesapal"
	Status            string    `bson:"status" json:"status"` // free text, "New" on capture
	CreatedAt         time.Time `bson:"created_at" json:"created_at"`
}

// Lead sources that mean the visitor wants to pay straight away.
const (
	SourcePesapal = "Pesapal"
	SourceAzamPay = "AzamPay"
	SourceWebsite = "Website"
)

// IsPaymentSource reports whether a lead source starts a gateway checkout.
func IsPaymentSource(source string) bool {
	return source == SourcePesapal || source == SourceAzamPay
}
