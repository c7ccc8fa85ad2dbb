package enum

type EntityType string

const (
	COMPANY             EntityType = "COMPANY"
	DOMAIN_VERIFICATION EntityType = "DOMAIN_VERIFICATION"
	TEAM_MEMBER         EntityType = "TEAM_MEMBER"
	TEAM_INVITATION     EntityType = "TEAM_INVITATION"
	COMPANY_ASSET       EntityType = "COMPANY_ASSET"
)

func (entityType EntityType) String() string {
	return string(entityType)
}
