// Package taxonomy exposes the curation operations behind the management
// API: tier counts, CRUD on managed and distilled skills, and the manual
// merge/associate actions.
package taxonomy

import (
	"context"

	"skillscope/internal/domain/skill"
	"skillscope/internal/infrastructure/cache"
	"skillscope/internal/shared/logger"
)

type Service struct {
	taxonomy skill.TaxonomyRepository
	counts   cache.TaxonomyCountsCache
	logger   logger.Interface
}

func NewService(taxonomy skill.TaxonomyRepository, counts cache.TaxonomyCountsCache, log logger.Interface) *Service {
	return &Service{
		taxonomy: taxonomy,
		counts:   counts,
		logger:   log.With("component", "taxonomy"),
	}
}

// Counts returns the tier metrics, served from cache when fresh.
func (s *Service) Counts(ctx context.Context) (*skill.TaxonomyCounts, error) {
	if cached, err := s.counts.Get(ctx); err != nil {
		s.logger.Warnw("taxonomy counts cache read failed", "error", err)
	} else if cached != nil {
		return cached, nil
	}

	unassociated, err := s.taxonomy.UnassociatedCount(ctx)
	if err != nil {
		return nil, err
	}
	associated, err := s.taxonomy.AssociatedCount(ctx)
	if err != nil {
		return nil, err
	}
	managed, err := s.taxonomy.ManagedCount(ctx)
	if err != nil {
		return nil, err
	}
	distillationReady, err := s.taxonomy.UnassociatedManagedCount(ctx)
	if err != nil {
		return nil, err
	}

	result := &skill.TaxonomyCounts{
		Unassociated:      unassociated,
		Associated:        associated,
		Managed:           managed,
		DistillationReady: distillationReady,
	}

	if err := s.counts.Set(ctx, result); err != nil {
		s.logger.Warnw("taxonomy counts cache write failed", "error", err)
	}
	return result, nil
}

func (s *Service) invalidateCounts(ctx context.Context) {
	if err := s.counts.Invalidate(ctx); err != nil {
		s.logger.Warnw("taxonomy counts cache invalidation failed", "error", err)
	}
}

func (s *Service) ListManaged(ctx context.Context) ([]*skill.ManagedSkill, error) {
	return s.taxonomy.ListManaged(ctx)
}

func (s *Service) CreateManaged(ctx context.Context, name, description string, isException bool) (*skill.ManagedSkill, error) {
	created, err := s.taxonomy.CreateManaged(ctx, name, description, isException)
	if err != nil {
		return nil, err
	}
	s.invalidateCounts(ctx)
	return created, nil
}

func (s *Service) UpdateManaged(ctx context.Context, id uint, name, description string, isException bool) error {
	if err := s.taxonomy.UpdateManaged(ctx, id, name, description, isException); err != nil {
		return err
	}
	s.invalidateCounts(ctx)
	return nil
}

func (s *Service) DeleteManaged(ctx context.Context, id uint) error {
	if err := s.taxonomy.DeleteManaged(ctx, id); err != nil {
		return err
	}
	s.invalidateCounts(ctx)
	return nil
}

// MergeManaged folds every discovered skill under source into target, then
// removes source.
func (s *Service) MergeManaged(ctx context.Context, sourceID, targetID uint) error {
	if err := s.taxonomy.MergeManaged(ctx, sourceID, targetID); err != nil {
		return err
	}
	s.invalidateCounts(ctx)
	return nil
}

func (s *Service) AssociateDiscovered(ctx context.Context, discoveredSkillID, managedSkillID uint) error {
	if err := s.taxonomy.AssociateDiscovered(ctx, discoveredSkillID, managedSkillID); err != nil {
		return err
	}
	s.invalidateCounts(ctx)
	return nil
}

func (s *Service) ListDistilled(ctx context.Context) ([]*skill.DistilledSkill, error) {
	return s.taxonomy.ListDistilled(ctx)
}

func (s *Service) CreateDistilled(ctx context.Context, name, description string) (*skill.DistilledSkill, error) {
	created, err := s.taxonomy.CreateDistilled(ctx, name, description)
	if err != nil {
		return nil, err
	}
	s.invalidateCounts(ctx)
	return created, nil
}

func (s *Service) UpdateDistilled(ctx context.Context, id uint, name, description string) error {
	if err := s.taxonomy.UpdateDistilled(ctx, id, name, description); err != nil {
		return err
	}
	s.invalidateCounts(ctx)
	return nil
}

func (s *Service) DeleteDistilled(ctx context.Context, id uint) error {
	if err := s.taxonomy.DeleteDistilled(ctx, id); err != nil {
		return err
	}
	s.invalidateCounts(ctx)
	return nil
}

func (s *Service) MergeDistilled(ctx context.Context, sourceID, targetID uint) error {
	if err := s.taxonomy.MergeDistilled(ctx, sourceID, targetID); err != nil {
		return err
	}
	s.invalidateCounts(ctx)
	return nil
}

func (s *Service) AssociateManaged(ctx context.Context, managedSkillID, distilledSkillID uint) error {
	if err := s.taxonomy.AssociateManaged(ctx, managedSkillID, distilledSkillID); err != nil {
		return err
	}
	s.invalidateCounts(ctx)
	return nil
}
