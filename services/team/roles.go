package team

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/dto"
	apperrors "github.com/calcbuilder/adminstack/internal/errors"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/internal/utils"
	"github.com/calcbuilder/adminstack/internal/validation"
)

func (s *teamService) CreateRole(ctx context.Context, companyId string, request dto.CreateRoleRequest) (*models.TeamRole, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.CreateRole")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	tracing.LogObjectAsJson(span, "request", request)

	name := strings.TrimSpace(request.Name)
	permissions := utils.UniqueStrings(request.Permissions)

	validationErr := apperrors.NewValidationError()
	validateRoleName(validationErr, name)
	validationErr.Merge(validation.ValidatePermissions("permissions", permissions))
	if err := validationErr.OrNil(); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if _, err := s.getCompany(ctx, companyId); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if request.IsDefault {
		if err := s.clearDefaultRole(ctx, companyId); err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
	}

	role := &models.TeamRole{
		CompanyID:   companyId,
		Name:        name,
		Description: strings.TrimSpace(request.Description),
		Permissions: pq.StringArray(permissions),
		IsDefault:   request.IsDefault,
	}
	err := s.roles.Create(ctx, role)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperrors.ErrRoleNameTaken
		}
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to create role")
	}

	return role, nil
}

func (s *teamService) ListRoles(ctx context.Context, companyId string) ([]models.TeamRole, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.ListRoles")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)

	if _, err := s.getCompany(ctx, companyId); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	roles, err := s.roles.ListByCompany(ctx, companyId)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to list roles")
	}
	return roles, nil
}

func (s *teamService) UpdateRole(ctx context.Context, companyId, roleId string, request dto.UpdateRoleRequest) (*models.TeamRole, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.UpdateRole")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, roleId)
	tracing.LogObjectAsJson(span, "request", request)

	role, err := s.resolveRole(ctx, companyId, roleId)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	fields := map[string]interface{}{}
	validationErr := apperrors.NewValidationError()
	if request.Name != nil {
		name := strings.TrimSpace(*request.Name)
		validateRoleName(validationErr, name)
		if name != role.Name {
			fields["name"] = name
		}
	}
	if request.Description != nil {
		fields["description"] = strings.TrimSpace(*request.Description)
	}
	if request.Permissions != nil {
		permissions := utils.UniqueStrings(request.Permissions)
		validationErr.Merge(validation.ValidatePermissions("permissions", permissions))
		fields["permissions"] = pq.StringArray(permissions)
	}
	if err := validationErr.OrNil(); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if request.IsDefault != nil && *request.IsDefault != role.IsDefault {
		if *request.IsDefault {
			if err := s.clearDefaultRole(ctx, companyId); err != nil {
				tracing.TraceErr(span, err)
				return nil, err
			}
		}
		fields["is_default"] = *request.IsDefault
	}

	if err := s.roles.UpdateFields(ctx, companyId, roleId, fields); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperrors.ErrRoleNameTaken
		}
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to update role")
	}

	return s.resolveRole(ctx, companyId, roleId)
}

// DeleteRole refuses to delete a role that is still assigned to members.
func (s *teamService) DeleteRole(ctx context.Context, companyId, roleId string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.DeleteRole")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, roleId)

	if _, err := s.resolveRole(ctx, companyId, roleId); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	inUse, err := s.members.CountByRole(ctx, companyId, roleId)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to count role members")
	}
	if inUse > 0 {
		return apperrors.ErrRoleInUse
	}

	if err := s.roles.Delete(ctx, companyId, roleId); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to delete role")
	}
	return nil
}

func (s *teamService) clearDefaultRole(ctx context.Context, companyId string) error {
	current, err := s.roles.GetDefault(ctx, companyId)
	if err != nil {
		return errors.Wrap(err, "failed to get default role")
	}
	if current == nil {
		return nil
	}
	err = s.roles.UpdateFields(ctx, companyId, current.ID, map[string]interface{}{"is_default": false})
	if err != nil {
		return errors.Wrap(err, "failed to clear default role")
	}
	return nil
}

func validateRoleName(validationErr *apperrors.ValidationError, name string) {
	if name == "" {
		validationErr.Add("name", "name is required")
	} else if len(name) > maxRoleNameLength {
		validationErr.Add("name", "name must be at most 100 characters")
	}
}
