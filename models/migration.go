package models

import (
	"log"

	"github.com/mmdatafocus/vendex_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Product{}, &Stock{}, &StockMovement{},
		&SalesRecord{},
		&PurchaseOrder{}, &PurchaseOrderItem{},
		&Manufacturer{}, &ManufacturerPaymentProfile{}, &ManufacturerProduct{}, &ManufacturerRating{},
		&Staff{}, &StaffSkill{}, &StaffAvailability{},
		&Shift{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
