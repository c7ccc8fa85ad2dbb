// Package memory holds in-memory implementations of the repository interfaces. Services are
// tested against it; it follows the same nil-on-missing conventions as the gorm repositories.
package memory

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/internal/utils"
)

// Store is shared by all repositories so cross entity transactions stay consistent.
type Store struct {
	mu            sync.RWMutex
	companies     map[string]*models.Company
	verifications map[string]*models.DomainVerification
	roles         map[string]*models.TeamRole
	members       map[string]*models.TeamMember
	invitations   map[string]*models.TeamInvitation
	assets        map[string]*models.CompanyAsset
	// FailNext makes the next write return the error.
	FailNext error
}

func NewStore() *Store {
	return &Store{
		companies:     make(map[string]*models.Company),
		verifications: make(map[string]*models.DomainVerification),
		roles:         make(map[string]*models.TeamRole),
		members:       make(map[string]*models.TeamMember),
		invitations:   make(map[string]*models.TeamInvitation),
		assets:        make(map[string]*models.CompanyAsset),
	}
}

// NewRepositories wires every repository to one Store.
func NewRepositories() (*repository.Repositories, *Store) {
	store := NewStore()
	return &repository.Repositories{
		CompanyRepository:            &companyRepository{store: store},
		CompanyAssetRepository:       &companyAssetRepository{store: store},
		DomainVerificationRepository: &domainVerificationRepository{store: store},
		TeamInvitationRepository:     &teamInvitationRepository{store: store},
		TeamMemberRepository:         &teamMemberRepository{store: store},
		TeamRoleRepository:           &teamRoleRepository{store: store},
	}, store
}

func (s *Store) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

// Company returns a copy of the stored company, including soft deleted ones.
func (s *Store) Company(id string) *models.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.companies[id]; ok {
		copied := *c
		return &copied
	}
	return nil
}

func (s *Store) Verification(id string) *models.DomainVerification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.verifications[id]; ok {
		return copyVerification(v)
	}
	return nil
}

func (s *Store) Verifications() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.verifications)
}

func (s *Store) Invitation(id string) *models.TeamInvitation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.invitations[id]; ok {
		copied := *i
		return &copied
	}
	return nil
}

func (s *Store) Asset(id string) *models.CompanyAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.assets[id]; ok {
		copied := *a
		return &copied
	}
	return nil
}

// PutCompany stores a copy of company as is, bypassing validation and hooks.
func (s *Store) PutCompany(company models.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&company.CreatedAt, &company.UpdatedAt)
	s.companies[company.ID] = &company
}

func (s *Store) PutVerification(verification models.DomainVerification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&verification.CreatedAt, &verification.UpdatedAt)
	s.verifications[verification.ID] = copyVerification(&verification)
}

func (s *Store) PutInvitation(invitation models.TeamInvitation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&invitation.CreatedAt, &invitation.UpdatedAt)
	s.invitations[invitation.ID] = &invitation
}

func copyVerification(v *models.DomainVerification) *models.DomainVerification {
	copied := *v
	copied.DNSRecords = append(models.DNSRecords{}, v.DNSRecords...)
	return &copied
}

func stamp(createdAt, updatedAt *time.Time) {
	now := utils.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

// runHook runs the model's BeforeCreate, which assigns prefixed ids.
func runHook(model interface{ BeforeCreate(*gorm.DB) error }) error {
	return model.BeforeCreate(nil)
}

// applyFields sets struct fields by their gorm column names, the way Updates(map) does.
func applyFields(target interface{}, fields map[string]interface{}) error {
	value := reflect.ValueOf(target).Elem()
	columns := columnIndex(value.Type())

	for column, raw := range fields {
		index, ok := columns[column]
		if !ok {
			return errors.Errorf("unknown column %s", column)
		}
		field := value.Field(index)
		if raw == nil {
			field.Set(reflect.Zero(field.Type()))
			continue
		}

		v := reflect.ValueOf(raw)
		switch {
		case v.Type().AssignableTo(field.Type()):
			field.Set(v)
		case v.Type().ConvertibleTo(field.Type()):
			field.Set(v.Convert(field.Type()))
		case field.Kind() == reflect.Ptr && v.Type().ConvertibleTo(field.Type().Elem()):
			ptr := reflect.New(field.Type().Elem())
			ptr.Elem().Set(v.Convert(field.Type().Elem()))
			field.Set(ptr)
		case v.Kind() == reflect.Ptr && v.IsNil():
			field.Set(reflect.Zero(field.Type()))
		case v.Kind() == reflect.Ptr && v.Elem().Type().ConvertibleTo(field.Type()):
			field.Set(v.Elem().Convert(field.Type()))
		default:
			return errors.Errorf("cannot assign %T to column %s", raw, column)
		}
	}
	return nil
}

func columnIndex(t reflect.Type) map[string]int {
	columns := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		for _, part := range strings.Split(t.Field(i).Tag.Get("gorm"), ";") {
			if name, ok := strings.CutPrefix(part, "column:"); ok {
				columns[name] = i
			}
		}
	}
	return columns
}
