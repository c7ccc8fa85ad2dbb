package enum

type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusSuspended MemberStatus = "suspended"
)

func (s MemberStatus) IsValid() bool {
	return s == MemberStatusActive || s == MemberStatusSuspended
}

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRevoked  InvitationStatus = "revoked"
	InvitationStatusExpired  InvitationStatus = "expired"
)

func (s InvitationStatus) String() string {
	return string(s)
}

type Permission string

const (
	PermissionCompanyManage   Permission = "company.manage"
	PermissionTeamManage      Permission = "team.manage"
	PermissionDomainsManage   Permission = "domains.manage"
	PermissionAssetsManage    Permission = "assets.manage"
	PermissionTemplatesManage Permission = "templates.manage"
	PermissionCalculatorsEdit Permission = "calculators.edit"
	PermissionCalculatorsView Permission = "calculators.view"
)

var AllPermissions = []Permission{
	PermissionCompanyManage,
	PermissionTeamManage,
	PermissionDomainsManage,
	PermissionAssetsManage,
	PermissionTemplatesManage,
	PermissionCalculatorsEdit,
	PermissionCalculatorsView,
}

func (p Permission) IsValid() bool {
	for _, known := range AllPermissions {
		if p == known {
			return true
		}
	}
	return false
}
