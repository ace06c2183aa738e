// seed-demo loads a small demo dataset: products with stock, a month of
// sales, manufacturers with payment profiles and catalogs, staff with skills
// and weekly availability, and the default shift day for tomorrow.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-demo
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/mmdatafocus/vendex_backend/config"
	"github.com/mmdatafocus/vendex_backend/models"
	"github.com/mmdatafocus/vendex_backend/utils"
	"github.com/shopspring/decimal"
)

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fatal("database not initialized (config.GetDB returned nil). Set DB_* env vars.")
	}
	models.MigrateTable()

	products := []models.NewProduct{
		{Sku: "SKU-RICE-5KG", ProductName: "Basmati Rice 5kg", Category: "GROCERY", UnitCost: decimal.NewFromFloat(12.50)},
		{Sku: "SKU-OIL-1L", ProductName: "Sunflower Oil 1L", Category: "GROCERY", UnitCost: decimal.NewFromFloat(3.20)},
		{Sku: "SKU-SOAP-4PK", ProductName: "Bath Soap 4 Pack", Category: "PERSONAL_CARE", UnitCost: decimal.NewFromFloat(2.10)},
	}
	for _, p := range products {
		if _, err := models.CreateProduct(ctx, &p); err != nil {
			fatal("create product %s: %v", p.Sku, err)
		}
		if err := models.AddStock(ctx, p.Sku, 300); err != nil {
			fatal("seed stock %s: %v", p.Sku, err)
		}
		// a month of uneven daily sales feeding the forecast series
		for day := 30; day >= 1; day-- {
			qty := 1 + rand.Intn(8)
			_, err := models.CreateSalesRecord(ctx, &models.NewSalesRecord{
				Sku:          p.Sku,
				QuantitySold: qty,
				SaleDate:     time.Now().AddDate(0, 0, -day),
			})
			if err != nil {
				fatal("seed sales %s: %v", p.Sku, err)
			}
		}
	}

	manufacturers := []struct {
		input   models.NewManufacturer
		mode    models.PaymentMode
		advance bool
	}{
		{models.NewManufacturer{Name: "Sunrise Traders", EmailId: "orders@sunrise.example", DistanceKm: decimal.NewFromFloat(42)}, models.PaymentModeCredit, false},
		{models.NewManufacturer{Name: "Metro Wholesale", EmailId: "sales@metro.example", DistanceKm: decimal.NewFromFloat(12)}, models.PaymentModeBankTransfer, true},
	}
	for _, m := range manufacturers {
		created, err := models.CreateManufacturer(ctx, &m.input)
		if err != nil {
			fatal("create manufacturer %s: %v", m.input.Name, err)
		}
		advance := m.advance
		_, err = models.UpsertManufacturerPaymentProfile(ctx, &models.ManufacturerPaymentProfile{
			ManufacturerId:       created.ID,
			PreferredPaymentMode: m.mode,
			AdvanceRequired:      &advance,
		})
		if err != nil {
			fatal("payment profile %s: %v", m.input.Name, err)
		}
		for _, p := range products {
			_, err = models.CreateManufacturerProduct(ctx, &models.ManufacturerProduct{
				ManufacturerId:       created.ID,
				ProductName:          p.Sku,
				CostPrice:            p.UnitCost.Mul(decimal.NewFromFloat(0.9)),
				MinimumOrderQuantity: 50,
			})
			if err != nil {
				fatal("catalog %s: %v", m.input.Name, err)
			}
		}
		_, err = models.CreateManufacturerRating(ctx, &models.ManufacturerRating{
			ManufacturerId: created.ID,
			Rating:         3 + rand.Intn(3),
			Comment:        "seeded rating",
		})
		if err != nil {
			fatal("rating %s: %v", m.input.Name, err)
		}
	}

	staff := []models.NewStaff{
		{Name: "Asha Pillai", Role: "CASHIER", HourlyRate: decimal.NewFromFloat(9.5), Skills: []string{"BILLING"}},
		{Name: "Ravi Menon", Role: "PICKER", HourlyRate: decimal.NewFromFloat(8.0), Skills: []string{"ORDER_PICKING", "INVENTORY_HANDLING"}},
		{Name: "Divya Nair", Role: "FLOOR", HourlyRate: decimal.NewFromFloat(8.75), Skills: []string{"BILLING", "INVENTORY_HANDLING"}},
	}
	weekdays := []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY"}
	for _, s := range staff {
		created, err := models.CreateStaff(ctx, &s)
		if err != nil {
			fatal("create staff %s: %v", s.Name, err)
		}
		for _, day := range weekdays {
			_, err = models.CreateStaffAvailability(ctx, &models.StaffAvailability{
				StaffId:   created.ID,
				DayOfWeek: day,
				StartTime: "09:00",
				EndTime:   "22:00",
			})
			if err != nil {
				fatal("availability %s: %v", s.Name, err)
			}
		}
	}

	tomorrow := time.Now().AddDate(0, 0, 1)
	if _, err := models.GenerateDefaultShifts(ctx, tomorrow); err != nil && !errors.Is(err, utils.ErrorAlreadyExists) {
		fatal("default shifts: %v", err)
	}

	fmt.Println("demo data seeded")
}
