package service

import (
	"context"
	"errors"
	"sort"

	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/errs"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/knowledge"
	"github.com/tomasbalestrin-brius/Suporte-sub000/internal/model"
	"gorm.io/gorm"
)

type KnowledgeService struct {
	db *gorm.DB
}

func NewKnowledgeService(db *gorm.DB) *KnowledgeService {
	return &KnowledgeService{db: db}
}

// Create persists an entry; keywords default to those extracted from
// the title and content when none are supplied.
func (s *KnowledgeService) Create(ctx context.Context, k *model.KnowledgeEntry) error {
	if len(k.Keywords) == 0 {
		k.Keywords = knowledge.ExtractKeywords(k.Title + " " + k.Content)
	}
	return s.db.WithContext(ctx).Create(k).Error
}

func (s *KnowledgeService) GetByID(ctx context.Context, id string) (*model.KnowledgeEntry, error) {
	var k model.KnowledgeEntry
	if err := s.db.WithContext(ctx).First(&k, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrKnowledgeNotFound
		}
		return nil, err
	}
	return &k, nil
}

func (s *KnowledgeService) List(ctx context.Context, activeOnly bool) ([]model.KnowledgeEntry, error) {
	tx := s.db.WithContext(ctx).Model(&model.KnowledgeEntry{})
	if activeOnly {
		tx = tx.Where("active = ?", true)
	}
	var items []model.KnowledgeEntry
	if err := tx.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *KnowledgeService) Update(ctx context.Context, id string, k *model.KnowledgeEntry) (*model.KnowledgeEntry, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Title = k.Title
	existing.Content = k.Content
	existing.Category = k.Category
	existing.Keywords = k.Keywords
	existing.Product = k.Product
	existing.Active = k.Active
	if len(existing.Keywords) == 0 {
		existing.Keywords = knowledge.ExtractKeywords(existing.Title + " " + existing.Content)
	}
	if err := s.db.WithContext(ctx).Save(existing).Error; err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *KnowledgeService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.KnowledgeEntry{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrKnowledgeNotFound
	}
	return nil
}

// Search extracts keywords from the query and ranks active entries by
// keyword-set overlap. Entries matching the ticket's product get a
// boost; ties keep insertion order. The knowledge table is small and
// read-mostly, so scoring happens in process over the active set.
func (s *KnowledgeService) Search(ctx context.Context, query, product string, limit int) ([]model.KnowledgeEntry, error) {
	kws := knowledge.ExtractKeywords(query)
	if len(kws) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 3
	}
	want := make(map[string]struct{}, len(kws))
	for _, k := range kws {
		want[k] = struct{}{}
	}

	var entries []model.KnowledgeEntry
	if err := s.db.WithContext(ctx).Where("active = ?", true).Find(&entries).Error; err != nil {
		return nil, err
	}

	type scored struct {
		entry model.KnowledgeEntry
		score int
	}
	var hits []scored
	for _, e := range entries {
		overlap := 0
		for _, k := range e.Keywords {
			if _, ok := want[k]; ok {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		if product != "" && e.Product == product {
			overlap += 2
		}
		hits = append(hits, scored{entry: e, score: overlap})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]model.KnowledgeEntry, len(hits))
	for i, h := range hits {
		out[i] = h.entry
	}
	return out, nil
}
