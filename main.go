package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/calcbuilder/adminstack/config"
	"github.com/calcbuilder/adminstack/internal/database"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/server"
)

func main() {
	app := &cli.App{
		Name:  "adminstack",
		Usage: "CalcBuilder Pro admin backend",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Run database migrations",
				Action: migrate,
			},
			{
				Name:   "server",
				Usage:  "Start the application server",
				Action: serve,
			},
			{
				Name:   "expire",
				Usage:  "Expire stale domain verifications and team invitations once",
				Action: expire,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, nil, cli.Exit("Config initialization failed: "+err.Error(), 1)
	}

	adminDB, err := database.InitAdminDatabase(&database.DatabaseConfig{
		DBName:          cfg.DatabaseConfig.DBName,
		Host:            cfg.DatabaseConfig.Host,
		Port:            cfg.DatabaseConfig.Port,
		User:            cfg.DatabaseConfig.User,
		Password:        cfg.DatabaseConfig.Password,
		MaxConn:         cfg.DatabaseConfig.MaxConn,
		MaxIdleConn:     cfg.DatabaseConfig.MaxIdleConn,
		ConnMaxLifetime: cfg.DatabaseConfig.ConnMaxLifetime,
		LogLevel:        cfg.DatabaseConfig.LogLevel,
		SSLMode:         cfg.DatabaseConfig.SSLMode,
	})
	if err != nil {
		return nil, nil, cli.Exit("Database initialization failed: "+err.Error(), 1)
	}

	return cfg, adminDB, nil
}

func migrate(c *cli.Context) error {
	cfg, adminDB, err := setup()
	if err != nil {
		return err
	}

	if err := repository.MigrateDB(cfg.DatabaseConfig, adminDB); err != nil {
		return cli.Exit("Database migration failed: "+err.Error(), 1)
	}
	log.Println("Database migration completed successfully")
	return nil
}

func serve(c *cli.Context) error {
	cfg, adminDB, err := setup()
	if err != nil {
		return err
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Admin stack starting up...")

	srv, err := server.NewServer(cfg, adminDB)
	if err != nil {
		return cli.Exit("Server setup failed: "+err.Error(), 1)
	}

	if err := srv.Run(); err != nil {
		return cli.Exit("Server startup failed: "+err.Error(), 1)
	}

	log.Println("Shutdown complete")
	return nil
}

func expire(c *cli.Context) error {
	cfg, adminDB, err := setup()
	if err != nil {
		return err
	}

	srv, err := server.NewServer(cfg, adminDB)
	if err != nil {
		return cli.Exit("Server setup failed: "+err.Error(), 1)
	}
	defer srv.Close()

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return srv.ExpireNow(ctx)
}
