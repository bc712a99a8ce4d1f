package main

import (
	"log"

	"github.com/qynonyq/autoswap/internal/app"
	"github.com/qynonyq/autoswap/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	a, err := app.InitApp()
	if err != nil {
		return err
	}
	if a.DB == nil {
		return app.ErrNoDatabase
	}

	dbTx := a.DB.Begin()
	if err := dbTx.AutoMigrate(
		&storage.Token{},
	); err != nil {
		dbTx.Rollback()
		return err
	}
	if err := dbTx.Commit().Error; err != nil {
		return err
	}

	return nil
}
