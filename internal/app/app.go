package app

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNoDatabase = errors.New("postgres.host is not configured")

type App struct {
	Cfg *Cfg
	// DB is nil when no postgres host is configured.
	DB *gorm.DB
}

func InitApp() (*App, error) {
	cfg, err := initConfig()
	if err != nil {
		return nil, err
	}

	if err := initLogger(cfg.LogLevel, cfg.Verbose); err != nil {
		return nil, err
	}

	db, err := initDatabase(cfg.Postgres)
	if err != nil {
		return nil, err
	}

	return &App{Cfg: cfg, DB: db}, nil
}
