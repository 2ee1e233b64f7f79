package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Image      string          `json:"image"`
	Price      decimal.Decimal `json:"price"`
	CategoryID string          `json:"category_id"`
	Sold       int             `json:"sold"`
}

type Variant struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

type Favorite struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
}
