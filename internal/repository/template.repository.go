package repository

import (
	"context"
	"errors"

	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/emailzus/reminder-engine/pkg/pg"
	"gorm.io/gorm"
)

var ErrTemplateNotFound = errors.New("template not found")

type TemplateRepository struct {
	*pg.DB
}

func NewTemplateRepository(db *pg.DB) *TemplateRepository {
	return &TemplateRepository{
		db,
	}
}

func (r *TemplateRepository) Create(ctx context.Context, template *model.Template) (*model.Template, error) {
	entity := toTemplateEntity(template)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toTemplateModel(entity), nil
}

func (r *TemplateRepository) Get(ctx context.Context, id int64) (*model.Template, error) {
	var entity TemplateEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	return toTemplateModel(&entity), nil
}

// GetForCompany fetches a template only if it belongs to the given company.
func (r *TemplateRepository) GetForCompany(ctx context.Context, companyID, templateID int64) (*model.Template, error) {
	var entity TemplateEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND company_id = ?", templateID, companyID).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	return toTemplateModel(&entity), nil
}

func (r *TemplateRepository) ListByCompany(ctx context.Context, companyID int64) ([]*model.Template, error) {
	var entities []*TemplateEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&entities).
		Error

	if err != nil {
		return nil, err
	}

	return toTemplateModels(entities), nil
}

// CountByCompany backs the per-plan template limit check.
func (r *TemplateRepository) CountByCompany(ctx context.Context, companyID int64) (int64, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&TemplateEntity{}).
		Where("company_id = ?", companyID).
		Count(&count).
		Error

	if err != nil {
		return 0, err
	}

	return count, nil
}
