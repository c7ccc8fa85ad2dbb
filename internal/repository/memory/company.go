package memory

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/internal/utils"
)

type companyRepository struct {
	store *Store
}

func (r *companyRepository) Create(ctx context.Context, company *models.Company, defaultRoles []models.TeamRole) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	for _, existing := range s.companies {
		if existing.Slug == company.Slug && !existing.DeletedAt.Valid {
			return repository.ErrAlreadyExists
		}
	}
	if err := runHook(company); err != nil {
		return err
	}
	stamp(&company.CreatedAt, &company.UpdatedAt)
	copied := *company
	s.companies[company.ID] = &copied

	for i := range defaultRoles {
		defaultRoles[i].CompanyID = company.ID
		if err := runHook(&defaultRoles[i]); err != nil {
			return err
		}
		stamp(&defaultRoles[i].CreatedAt, &defaultRoles[i].UpdatedAt)
		role := defaultRoles[i]
		s.roles[role.ID] = &role
	}
	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, companyId string) (*models.Company, error) {
	return r.first(func(c *models.Company) bool { return c.ID == companyId })
}

func (r *companyRepository) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	return r.first(func(c *models.Company) bool { return c.Slug == slug })
}

func (r *companyRepository) FindByVerifiedDomain(ctx context.Context, domain string) (*models.Company, error) {
	return r.first(func(c *models.Company) bool {
		return c.Domain != nil && *c.Domain == domain && c.CustomDomainEnabled &&
			c.DomainVerificationStatus != nil && *c.DomainVerificationStatus == enum.VerificationStatusVerified
	})
}

func (r *companyRepository) first(match func(*models.Company) bool) (*models.Company, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, c := range r.store.companies {
		if !c.DeletedAt.Valid && match(c) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *companyRepository) UpdateFields(ctx context.Context, companyId string, fields map[string]interface{}) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	c, ok := s.companies[companyId]
	if !ok || c.DeletedAt.Valid {
		return nil
	}
	if slug, ok := fields["slug"].(string); ok {
		for id, existing := range s.companies {
			if id != companyId && existing.Slug == slug && !existing.DeletedAt.Valid {
				return repository.ErrAlreadyExists
			}
		}
	}
	fields["updated_at"] = utils.Now()
	return applyFields(c, fields)
}

func (r *companyRepository) SoftDelete(ctx context.Context, companyId string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if c, ok := s.companies[companyId]; ok {
		c.DeletedAt = gorm.DeletedAt{Time: utils.Now(), Valid: true}
	}
	return nil
}

func (r *companyRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.Company, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	var matches []models.Company
	for _, c := range r.store.companies {
		if c.DeletedAt.Valid {
			continue
		}
		if query == "" || strings.Contains(strings.ToLower(c.Name), query) || strings.Contains(strings.ToLower(c.Slug), query) {
			matches = append(matches, *c)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })

	total := int64(len(matches))
	if offset >= len(matches) {
		return []models.Company{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], total, nil
}
