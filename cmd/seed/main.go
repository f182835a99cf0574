package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/dvfens/ags/config"
	"github.com/dvfens/ags/internal/app/repository"
	"github.com/dvfens/ags/internal/app/service"
	"github.com/dvfens/ags/internal/db"
)

func main() {
	yes := flag.Bool("yes", false, "import without asking for confirmation")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: go run ./cmd/seed [-yes] <xlsx_file_path>")
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	catalog := service.NewCatalogService(
		repository.NewProductRepository(db.GetDB()),
		repository.NewCategoryRepository(db.GetDB()),
		repository.NewGiftRepository(db.GetDB()),
	)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	parsed, err := ReadCatalog(f)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("To import: %d categories, %d products, %d gift wraps, %d occasions\n",
		len(parsed.Categories), len(parsed.Products), len(parsed.GiftWraps), len(parsed.Occasions))
	for _, s := range parsed.Skipped {
		fmt.Printf("  skipped %s\n", s)
	}

	if !*yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	result := Import(catalog, parsed)

	fmt.Println("Import completed.")
	fmt.Printf("  Created: %d\n", result.Created)
	fmt.Printf("  Failed:  %d\n", len(result.Failed))
	for _, msg := range result.Failed {
		fmt.Printf("  %s\n", msg)
	}
	if len(result.Failed) > 0 {
		os.Exit(1)
	}
}
