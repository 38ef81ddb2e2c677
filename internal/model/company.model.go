package model

import "time"

type Company struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	BusinessEmail string    `json:"business_email"`
	Logo          string    `json:"logo"`
	Signature     string    `json:"signature"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Company) TableName() string { return "companies" }
