package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	operatorDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/operator"
	reservationDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/reservation"
	spotDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/spot"
	tariffDatamodel "github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/datamodel/tariff"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/reservation"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		gormDB, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"payments", "reservations", "parking_spots", "tariffs", "operators"} {
				if err := gormDB.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		operatorEmail := "operator@parking.local"

		var count int64
		gormDB.Model(&operatorDatamodel.Operator{}).Where("email = ?", operatorEmail).Count(&count)
		if count == 0 {
			op := &operatorDatamodel.Operator{
				Email:        operatorEmail,
				Name:         "Booth Operator",
				PasswordHash: string(hash),
				IsActive:     true,
			}
			if err := gormDB.Create(op).Error; err != nil {
				log.Fatalf("failed to seed operator: %v", err)
			}
			fmt.Println("Seeded operator:", operatorEmail)
		}

		tariffs := []*tariffDatamodel.Tariff{
			{Name: "standard-car", VehicleType: "CAR", EntranceFee: 20000, HourlyRate: 10000, DailyCap: 100000, FreeMinutes: 15, IsActive: true},
			{Name: "motorbike", VehicleType: "MOTORBIKE", EntranceFee: 10000, HourlyRate: 5000, DailyCap: 50000, FreeMinutes: 15, IsActive: true},
		}
		for _, t := range tariffs {
			gormDB.Model(&tariffDatamodel.Tariff{}).Where("name = ?", t.Name).Count(&count)
			if count == 0 {
				if err := gormDB.Create(t).Error; err != nil {
					log.Fatalf("failed to seed tariff %s: %v", t.Name, err)
				}
				fmt.Println("Seeded tariff:", t.Name)
			}
		}

		for level := 1; level <= 2; level++ {
			for n := 1; n <= 10; n++ {
				code := fmt.Sprintf("L%d-%02d", level, n)
				gormDB.Model(&spotDatamodel.ParkingSpot{}).Where("code = ?", code).Count(&count)
				if count == 0 {
					s := &spotDatamodel.ParkingSpot{
						Code:   code,
						Level:  fmt.Sprintf("%d", level),
						Zone:   "A",
						Status: spotDatamodel.StatusAvailable,
					}
					if err := gormDB.Create(s).Error; err != nil {
						log.Fatalf("failed to seed spot %s: %v", code, err)
					}
				}
			}
		}
		fmt.Println("Seeded parking spots")

		gormDB.Model(&reservationDatamodel.Reservation{}).Count(&count)
		if count == 0 {
			entry := time.Now().Add(-2 * time.Hour)
			sample := &reservationDatamodel.Reservation{
				ReservationCode: reservation.NewReservationCode(),
				CustomerName:    "Sample Customer",
				CustomerPhone:   "09120000000",
				LicensePlate:    "12A345-66",
				EntryTime:       entry,
				TotalAmount:     40000,
				Status:          reservationDatamodel.StatusPending,
			}
			if err := gormDB.Create(sample).Error; err != nil {
				log.Fatalf("failed to seed reservation: %v", err)
			}
			fmt.Println("Seeded sample reservation:", sample.ReservationCode)
		}
	},
}
