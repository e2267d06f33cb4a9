package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fisa/matjip-backend/config"
	"github.com/fisa/matjip-backend/internal/app/model"
	"github.com/fisa/matjip-backend/internal/app/repository"
	"github.com/fisa/matjip-backend/internal/db"
	"github.com/fisa/matjip-backend/internal/sheet"
	"gorm.io/gorm"
)

const usage = "Usage: go run cmd/seed/main.go <import|export> <xlsx_file_path>"

func main() {
	// 명령줄 인자 확인
	if len(os.Args) < 3 {
		log.Fatal(usage)
	}

	command, filePath := os.Args[1], os.Args[2]

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// DB 연결
	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	restaurantRepo := repository.NewRestaurantRepository(db.GetDB())

	switch command {
	case "import":
		err = importRestaurants(restaurantRepo, filePath)
	case "export":
		err = exportRestaurants(restaurantRepo, filePath)
	default:
		log.Fatal(usage)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// importRestaurants 시트의 restaurants 탭을 DB 로 옮긴다
// 좌표가 없거나 이미 있는 맛집(이름 또는 주소)은 건너뛴다
func importRestaurants(repo repository.RestaurantRepository, filePath string) error {
	fmt.Printf("Reading XLSX file: %s\n", filePath)

	wb, err := sheet.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open XLSX file: %w", err)
	}
	records, err := wb.Records(sheet.RestaurantSheet)
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	fmt.Printf("Total rows to import: %d\n", len(records))

	// 사용자 확인
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return nil
	}

	imported, skipped, invalidCoord := 0, 0, 0
	for _, rec := range records {
		r := sheet.DecodeRestaurant(rec)
		r.ID = 0
		r.Name = strings.TrimSpace(r.Name)
		r.Address = strings.TrimSpace(r.Address)

		if r.Name == "" || r.Address == "" || !r.Category.IsValid() {
			skipped++
			continue
		}
		if r.Latitude == nil || r.Longitude == nil {
			invalidCoord++
			skipped++
			continue
		}

		_, err := repo.FindByNameOrAddress(r.Name, r.Address)
		if err == nil {
			skipped++
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if r.CleanedAddress == "" {
			r.CleanedAddress = r.Address
		}
		if err := repo.Create(&r); err != nil {
			return fmt.Errorf("failed to create restaurant %q: %w", r.Name, err)
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Imported: %d, skipped: %d (no coordinates: %d)\n", imported, skipped, invalidCoord)
	return nil
}

// exportRestaurants DB 의 맛집을 시트 레이아웃으로 덮어쓴다
func exportRestaurants(repo repository.RestaurantRepository, filePath string) error {
	restaurants, err := repo.List(model.CategoryAll)
	if err != nil {
		return fmt.Errorf("failed to list restaurants: %w", err)
	}

	wb, err := sheet.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open XLSX file: %w", err)
	}

	err = wb.Update(sheet.RestaurantSheet, func([]sheet.Record) ([]sheet.Record, error) {
		records := make([]sheet.Record, 0, len(restaurants))
		for i := range restaurants {
			records = append(records, sheet.EncodeRestaurant(&restaurants[i]))
		}
		return records, nil
	})
	if err != nil {
		return fmt.Errorf("failed to write XLSX file: %w", err)
	}

	fmt.Printf("Exported %d restaurants to %s\n", len(restaurants), filePath)
	return nil
}
