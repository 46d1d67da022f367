package models

import (
	"github.com/mmdatafocus/shop_backend/config"
)

func MigrateTable() error {
	db := config.GetDB()

	return db.AutoMigrate(
		&Product{},
		&ProductStock{},
		&Order{},
		&OrderItem{},
		&OrderStatus{},
	)
}
