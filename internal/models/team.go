package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/utils"
)

type TeamRole struct {
	ID          string         `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	CompanyID   string         `gorm:"column:company_id;type:varchar(50);not null;uniqueIndex:idx_team_roles_company_name" json:"company_id"`
	Name        string         `gorm:"column:name;type:varchar(100);not null;uniqueIndex:idx_team_roles_company_name" json:"name"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	Permissions pq.StringArray `gorm:"column:permissions;type:text[];not null" json:"permissions"`
	IsDefault   bool           `gorm:"column:is_default;not null;default:false" json:"is_default"`
	CreatedAt   time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updated_at"`
}

func (TeamRole) TableName() string {
	return "team_roles"
}

func (r *TeamRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = utils.GenerateNanoIDWithPrefix("role", 16)
	}
	return nil
}

type TeamMember struct {
	ID        string            `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	CompanyID string            `gorm:"column:company_id;type:varchar(50);not null;uniqueIndex:idx_team_members_company_user;uniqueIndex:idx_team_members_company_email" json:"company_id"`
	UserID    string            `gorm:"column:user_id;type:varchar(50);not null;uniqueIndex:idx_team_members_company_user" json:"user_id"`
	Email     string            `gorm:"column:email;type:varchar(255);not null;uniqueIndex:idx_team_members_company_email" json:"email"`
	FullName  string            `gorm:"column:full_name;type:varchar(255)" json:"full_name"`
	RoleID    string            `gorm:"column:role_id;type:varchar(50);not null;index" json:"role_id"`
	Status    enum.MemberStatus `gorm:"column:status;type:varchar(20);not null;default:active" json:"status"`
	JoinedAt  time.Time         `gorm:"column:joined_at;type:timestamp;not null" json:"joined_at"`
	CreatedAt time.Time         `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time         `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updated_at"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

func (m *TeamMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = utils.GenerateNanoIDWithPrefix("memb", 16)
	}
	if m.Status == "" {
		m.Status = enum.MemberStatusActive
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = utils.Now()
	}
	return nil
}

type TeamInvitation struct {
	ID         string                `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	CompanyID  string                `gorm:"column:company_id;type:varchar(50);not null;index" json:"company_id"`
	Email      string                `gorm:"column:email;type:varchar(255);not null;index" json:"email"`
	RoleID     string                `gorm:"column:role_id;type:varchar(50);not null" json:"role_id"`
	Token      string                `gorm:"column:token;type:varchar(64);not null;uniqueIndex" json:"-"`
	Status     enum.InvitationStatus `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	InvitedBy  string                `gorm:"column:invited_by;type:varchar(50)" json:"invited_by"`
	Language   enum.Language         `gorm:"column:language;type:varchar(5);not null;default:fi" json:"language"`
	ExpiresAt  time.Time             `gorm:"column:expires_at;type:timestamp;not null" json:"expires_at"`
	AcceptedAt *time.Time            `gorm:"column:accepted_at;type:timestamp" json:"accepted_at"`
	CreatedAt  time.Time             `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time             `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updated_at"`
}

func (TeamInvitation) TableName() string {
	return "team_invitations"
}

func (i *TeamInvitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = utils.GenerateNanoIDWithPrefix("invt", 16)
	}
	return nil
}
