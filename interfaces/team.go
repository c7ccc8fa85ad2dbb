package interfaces

import (
	"context"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/internal/models"
)

type TeamService interface {
	CreateRole(ctx context.Context, companyId string, request dto.CreateRoleRequest) (*models.TeamRole, error)
	ListRoles(ctx context.Context, companyId string) ([]models.TeamRole, error)
	UpdateRole(ctx context.Context, companyId, roleId string, request dto.UpdateRoleRequest) (*models.TeamRole, error)
	DeleteRole(ctx context.Context, companyId, roleId string) error

	AddMember(ctx context.Context, companyId string, request dto.AddMemberRequest) (*models.TeamMember, error)
	ListMembers(ctx context.Context, companyId string) ([]models.TeamMember, error)
	UpdateMember(ctx context.Context, companyId, memberId string, request dto.UpdateMemberRequest) (*models.TeamMember, error)
	RemoveMember(ctx context.Context, companyId, memberId string) error

	CreateInvitation(ctx context.Context, companyId string, request dto.CreateInvitationRequest) (*models.TeamInvitation, error)
	ListInvitations(ctx context.Context, companyId string) ([]models.TeamInvitation, error)
	RevokeInvitation(ctx context.Context, companyId, invitationId string) error
	AcceptInvitation(ctx context.Context, token string, request dto.AcceptInvitationRequest) (*models.TeamMember, error)
	ExpireStaleInvitations(ctx context.Context) (int64, error)
}
