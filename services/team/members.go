package team

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/internal/enum"
	apperrors "github.com/calcbuilder/adminstack/internal/errors"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/internal/validation"
)

func (s *teamService) AddMember(ctx context.Context, companyId string, request dto.AddMemberRequest) (*models.TeamMember, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.AddMember")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	tracing.LogObjectAsJson(span, "request", request)

	userId := strings.TrimSpace(request.UserId)
	validationErr := apperrors.NewValidationError()
	validationErr.Merge(validation.ValidateUserId("user_id", userId))
	email, err := validation.NormalizeEmail("email", request.Email)
	validationErr.Merge(err)
	if err := validationErr.OrNil(); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if _, err := s.getCompany(ctx, companyId); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	role, err := s.resolveRole(ctx, companyId, request.RoleId)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	existing, err := s.members.FindByUserOrEmail(ctx, companyId, userId, email)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to check membership")
	}
	if existing != nil {
		return nil, apperrors.ErrAlreadyMember
	}

	member := &models.TeamMember{
		CompanyID: companyId,
		UserID:    userId,
		Email:     email,
		FullName:  strings.TrimSpace(request.FullName),
		RoleID:    role.ID,
		Status:    enum.MemberStatusActive,
		JoinedAt:  s.now(),
	}
	if err := s.members.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperrors.ErrAlreadyMember
		}
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to add member")
	}
	tracing.TagEntity(span, member.ID)

	s.publisher.PublishNotification(ctx, companyId, member.ID, enum.TEAM_MEMBER, &dto.EventCompletedDetails{Create: true})
	return member, nil
}

func (s *teamService) ListMembers(ctx context.Context, companyId string) ([]models.TeamMember, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.ListMembers")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)

	if _, err := s.getCompany(ctx, companyId); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	members, err := s.members.ListByCompany(ctx, companyId)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to list members")
	}
	return members, nil
}

func (s *teamService) UpdateMember(ctx context.Context, companyId, memberId string, request dto.UpdateMemberRequest) (*models.TeamMember, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.UpdateMember")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, memberId)
	tracing.LogObjectAsJson(span, "request", request)

	if _, err := s.getMember(ctx, companyId, memberId); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	fields := map[string]interface{}{}
	if request.Status != nil {
		if !request.Status.IsValid() {
			err := apperrors.NewFieldError("status", "status must be one of active, suspended")
			tracing.TraceErr(span, err)
			return nil, err
		}
		fields["status"] = *request.Status
	}
	if request.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*request.FullName)
	}
	if request.RoleId != nil {
		role, err := s.resolveRole(ctx, companyId, strings.TrimSpace(*request.RoleId))
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		fields["role_id"] = role.ID
	}

	if err := s.members.UpdateFields(ctx, companyId, memberId, fields); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to update member")
	}
	if len(fields) > 0 {
		s.publisher.PublishNotification(ctx, companyId, memberId, enum.TEAM_MEMBER, &dto.EventCompletedDetails{Update: true})
	}

	return s.getMember(ctx, companyId, memberId)
}

func (s *teamService) RemoveMember(ctx context.Context, companyId, memberId string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.RemoveMember")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, memberId)

	if _, err := s.getMember(ctx, companyId, memberId); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	if err := s.members.Delete(ctx, companyId, memberId); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to remove member")
	}

	s.publisher.PublishNotification(ctx, companyId, memberId, enum.TEAM_MEMBER, &dto.EventCompletedDetails{Delete: true})
	return nil
}

func (s *teamService) getMember(ctx context.Context, companyId, memberId string) (*models.TeamMember, error) {
	member, err := s.members.GetByID(ctx, companyId, memberId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get member")
	}
	if member == nil {
		return nil, apperrors.ErrMemberNotFound
	}
	return member, nil
}
