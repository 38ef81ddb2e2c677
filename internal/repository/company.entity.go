package repository

import (
	"time"

	"github.com/emailzus/reminder-engine/internal/model"
)

type CompanyEntity struct {
	ID            int64     `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	Name          string    `db:"name"           gorm:"column:name;not null"`
	Address       string    `db:"address"        gorm:"column:address"`
	BusinessEmail string    `db:"business_email" gorm:"column:business_email"`
	Logo          string    `db:"logo"           gorm:"column:logo"`
	Signature     string    `db:"signature"      gorm:"column:signature"`
	CreatedAt     time.Time `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
}

func (CompanyEntity) TableName() string {
	return "companies"
}

func toCompanyEntity(m *model.Company) *CompanyEntity {
	if m == nil {
		return nil
	}
	return &CompanyEntity{
		ID:            m.ID,
		Name:          m.Name,
		Address:       m.Address,
		BusinessEmail: m.BusinessEmail,
		Logo:          m.Logo,
		Signature:     m.Signature,
		CreatedAt:     m.CreatedAt,
	}
}

func toCompanyModel(e *CompanyEntity) *model.Company {
	if e == nil {
		return nil
	}
	return &model.Company{
		ID:            e.ID,
		Name:          e.Name,
		Address:       e.Address,
		BusinessEmail: e.BusinessEmail,
		Logo:          e.Logo,
		Signature:     e.Signature,
		CreatedAt:     e.CreatedAt,
	}
}
