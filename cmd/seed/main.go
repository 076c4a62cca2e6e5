package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/movieranker/movieranker-backend/config"
	"github.com/movieranker/movieranker-backend/internal/app/model"
	"github.com/movieranker/movieranker-backend/internal/app/repository"
	"github.com/movieranker/movieranker-backend/internal/db"
	"github.com/xuri/excelize/v2"
)

// Imports a ranked movie list from an XLSX file and assigns every row to
// the user identified by email. Expected columns, in order:
// Movie Name | Genre | Release Date (YYYY-MM-DD) | Studio | Score

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: go run cmd/seed/main.go <owner_email> <xlsx_file_path>")
	}

	ownerEmail := os.Args[1]
	filePath := os.Args[2]

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

	userRepo := repository.NewUserRepository(db.GetDB())
	movieRepo := repository.NewMovieRepository(db.GetDB())

	owner, err := userRepo.FindByEmail(ownerEmail)
	if err != nil {
		log.Fatalf("Owner account %s not found: %v", ownerEmail, err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	movies, err := readMoviesFromXLSX(filePath, owner.ID)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total movies to import for %s: %d\n", ownerEmail, len(movies))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 100
	if err := movieRepo.BulkCreate(movies, batchSize); err != nil {
		log.Fatal("Failed to bulk create movies:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total movies imported: %d\n", len(movies))
}

func readMoviesFromXLSX(filePath string, ownerID uint) ([]model.Movie, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	var movies []model.Movie
	seen := make(map[string]bool)
	skippedCount := 0

	for i, row := range rows {
		// Header row
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 5 {
			skippedCount++
			continue
		}

		name := strings.TrimSpace(row[0])
		genre := strings.TrimSpace(row[1])
		releaseDateStr := strings.TrimSpace(row[2])
		studio := strings.TrimSpace(row[3])
		scoreStr := strings.TrimSpace(row[4])

		if name == "" || genre == "" {
			skippedCount++
			continue
		}

		releaseDate, err := model.ParseDate(releaseDateStr)
		if err != nil {
			skippedCount++
			continue
		}

		score, err := strconv.Atoi(scoreStr)
		if err != nil || score < model.MinScore || score > model.MaxScore {
			skippedCount++
			continue
		}

		// Same title is allowed once per list
		key := strings.ToLower(name)
		if seen[key] {
			skippedCount++
			continue
		}
		seen[key] = true

		movies = append(movies, model.Movie{
			MovieName:   name,
			Genre:       genre,
			ReleaseDate: releaseDate,
			Studio:      studio,
			Score:       score,
			UserID:      ownerID,
		})
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid movies: %d\n", len(movies))
	fmt.Printf("  Skipped rows: %d\n", skippedCount)

	return movies, nil
}
