package dto

import (
	"github.com/calcbuilder/adminstack/internal/enum"
)

type CreateRoleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	IsDefault   bool     `json:"is_default"`
}

// UpdateRoleRequest leaves nil fields untouched.
type UpdateRoleRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Permissions []string `json:"permissions"`
	IsDefault   *bool    `json:"is_default"`
}

type AddMemberRequest struct {
	UserId   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	RoleId   string `json:"role_id"`
}

type UpdateMemberRequest struct {
	RoleId   *string            `json:"role_id"`
	Status   *enum.MemberStatus `json:"status"`
	FullName *string            `json:"full_name"`
}

type CreateInvitationRequest struct {
	Email    string        `json:"email"`
	RoleId   string        `json:"role_id"`
	Language enum.Language `json:"language"`
}

type AcceptInvitationRequest struct {
	UserId   string `json:"user_id"`
	FullName string `json:"full_name"`
}
