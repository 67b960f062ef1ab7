package service

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/errs"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
)

func TestKnowledgeCreateExtractsKeywords(t *testing.T) {
	svc := NewKnowledgeService(newTestDB(t))
	ctx := context.Background()

	entry := &model.KnowledgeEntry{
		Title:   "Política de trocas",
		Content: "Trocas são aceitas em até 30 dias com nota fiscal.",
		Active:  true,
	}
	require.NoError(t, svc.Create(ctx, entry))
	assert.NotEmpty(t, entry.ID)
	assert.Contains(t, []string(entry.Keywords), "trocas")
	assert.Contains(t, []string(entry.Keywords), "fiscal")
	assert.NotContains(t, []string(entry.Keywords), "com")

	// explicit keywords are kept as given
	manual := &model.KnowledgeEntry{
		Title:    "Boleto",
		Content:  "Segunda via pelo portal.",
		Keywords: pq.StringArray{"boleto", "segunda-via"},
		Active:   true,
	}
	require.NoError(t, svc.Create(ctx, manual))
	assert.Equal(t, pq.StringArray{"boleto", "segunda-via"}, manual.Keywords)
}

func TestKnowledgeUpdateAndDelete(t *testing.T) {
	svc := NewKnowledgeService(newTestDB(t))
	ctx := context.Background()

	entry := &model.KnowledgeEntry{Title: "Frete", Content: "Prazo de entrega padrão.", Active: true}
	require.NoError(t, svc.Create(ctx, entry))

	updated, err := svc.Update(ctx, entry.ID, &model.KnowledgeEntry{
		Title:   "Frete e prazos",
		Content: "Entrega expressa disponível nas capitais.",
		Active:  false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Frete e prazos", updated.Title)
	assert.False(t, updated.Active)
	assert.Contains(t, []string(updated.Keywords), "expressa")

	_, err = svc.Update(ctx, "missing", &model.KnowledgeEntry{})
	assert.ErrorIs(t, err, errs.ErrKnowledgeNotFound)

	require.NoError(t, svc.Delete(ctx, entry.ID))
	assert.ErrorIs(t, svc.Delete(ctx, entry.ID), errs.ErrKnowledgeNotFound)
	_, err = svc.GetByID(ctx, entry.ID)
	assert.ErrorIs(t, err, errs.ErrKnowledgeNotFound)
}

func TestKnowledgeSearchRanking(t *testing.T) {
	svc := NewKnowledgeService(newTestDB(t))
	ctx := context.Background()

	seed := []*model.KnowledgeEntry{
		{Title: "Trocas", Content: "x", Keywords: pq.StringArray{"troca", "devolução", "prazo"}, Active: true},
		{Title: "Garantia", Content: "x", Keywords: pq.StringArray{"garantia", "defeito", "troca"}, Active: true},
		{Title: "Frete", Content: "x", Keywords: pq.StringArray{"frete", "entrega"}, Active: true},
		{Title: "Antiga", Content: "x", Keywords: pq.StringArray{"troca"}, Active: false},
	}
	for _, e := range seed {
		require.NoError(t, svc.Create(ctx, e))
	}

	got, err := svc.Search(ctx, "qual o prazo para troca e devolução?", "", 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// three overlapping keywords beat one
	assert.Equal(t, "Trocas", got[0].Title)
	assert.Equal(t, "Garantia", got[1].Title)
}

func TestKnowledgeSearchProductBoost(t *testing.T) {
	svc := NewKnowledgeService(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, &model.KnowledgeEntry{
		Title: "Geral", Content: "x",
		Keywords: pq.StringArray{"garantia", "defeito"},
		Active:   true,
	}))
	require.NoError(t, svc.Create(ctx, &model.KnowledgeEntry{
		Title: "Sub000", Content: "x",
		Keywords: pq.StringArray{"garantia"},
		Product:  "sub000",
		Active:   true,
	}))

	got, err := svc.Search(ctx, "garantia contra defeito", "sub000", 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// product match (+2) outranks the extra keyword overlap
	assert.Equal(t, "Sub000", got[0].Title)
}

func TestKnowledgeSearchEdgeCases(t *testing.T) {
	svc := NewKnowledgeService(newTestDB(t))
	ctx := context.Background()

	// query of pure stop words yields nothing without touching the table
	got, err := svc.Search(ctx, "olá bom dia", "", 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, svc.Create(ctx, &model.KnowledgeEntry{
		Title: "Trocas", Content: "x", Keywords: pq.StringArray{"troca"}, Active: true,
	}))
	got, err = svc.Search(ctx, "segunda via do boleto", "", 3)
	require.NoError(t, err)
	assert.Empty(t, got)

	// limit defaults and truncates
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Create(ctx, &model.KnowledgeEntry{
			Title: "Extra", Content: "x", Keywords: pq.StringArray{"troca"}, Active: true,
		}))
	}
	got, err = svc.Search(ctx, "troca", "", 0)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
