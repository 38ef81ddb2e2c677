package repository

import (
	"context"
	"testing"

	"github.com/emailzus/reminder-engine/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTemplateRepository(db.DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Template{
		CompanyID:   1,
		Channel:     model.ChannelEmail,
		Title:       "Invoice reminder",
		Body:        "Dear {{customer.name}}, invoice attached.",
		Attachments: []string{"invoices/inv-001.pdf"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"invoices/inv-001.pdf"}, got.Attachments)
	assert.Equal(t, model.ChannelEmail, got.Channel)
}

func TestTemplateRepository_GetForCompany(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTemplateRepository(db.DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Template{
		CompanyID: 1,
		Channel:   model.ChannelSMS,
		Title:     "Ping",
		Body:      "Hi {{customer.name}}",
	})
	require.NoError(t, err)

	got, err := repo.GetForCompany(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	// another tenant sees not found, not a permission error
	_, err = repo.GetForCompany(ctx, 2, created.ID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestTemplateRepository_CountByCompany(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTemplateRepository(db.DB)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, &model.Template{
			CompanyID: 5,
			Channel:   model.ChannelEmail,
			Title:     "T",
			Body:      "B",
		})
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, &model.Template{
		CompanyID: 6,
		Channel:   model.ChannelEmail,
		Title:     "T",
		Body:      "B",
	})
	require.NoError(t, err)

	count, err := repo.CountByCompany(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
