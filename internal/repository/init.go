package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/calcbuilder/adminstack/config"
	"github.com/calcbuilder/adminstack/internal/models"
)

type Repositories struct {
	CompanyRepository            CompanyRepository
	CompanyAssetRepository       CompanyAssetRepository
	DomainVerificationRepository DomainVerificationRepository
	TeamInvitationRepository     TeamInvitationRepository
	TeamMemberRepository         TeamMemberRepository
	TeamRoleRepository           TeamRoleRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		CompanyRepository:            NewCompanyRepository(db),
		CompanyAssetRepository:       NewCompanyAssetRepository(db),
		DomainVerificationRepository: NewDomainVerificationRepository(db),
		TeamInvitationRepository:     NewTeamInvitationRepository(db),
		TeamMemberRepository:         NewTeamMemberRepository(db),
		TeamRoleRepository:           NewTeamRoleRepository(db),
	}
}

func MigrateDB(dbConfig *config.DatabaseConfig, adminDB *gorm.DB) error {
	db, err := adminDB.DB()
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(5)

	err = adminDB.AutoMigrate(
		&models.Company{},
		&models.CompanyAsset{},
		&models.DomainVerification{},
		&models.TeamInvitation{},
		&models.TeamMember{},
		&models.TeamRole{},
	)

	db.SetMaxIdleConns(dbConfig.MaxIdleConn)
	db.SetMaxOpenConns(dbConfig.MaxConn)
	db.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)

	return err
}
