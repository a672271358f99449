package utils

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ArowuTest/raffle-explorer/internal/models"
	"github.com/ArowuTest/raffle-explorer/internal/repositories"
	"gopkg.in/yaml.v3"
)

// RaffleWriter is the part of a raffle repository the importer writes through
type RaffleWriter interface {
	UpsertMany(ctx context.Context, raffles []models.Raffle) error
}

var _ RaffleWriter = (repositories.RaffleRepository)(nil)

// ImportResult summarises an import run
type ImportResult struct {
	TotalRows int      `json:"totalRows"`
	Imported  int      `json:"imported"`
	Errors    []string `json:"errors"`
}

// RaffleImporter loads raffle fixtures into a repository
type RaffleImporter struct {
	repo RaffleWriter
}

// NewRaffleImporter creates a new RaffleImporter
func NewRaffleImporter(repo RaffleWriter) *RaffleImporter {
	return &RaffleImporter{repo: repo}
}

// ImportFile imports a .yaml, .yml or .csv fixture file
func (i *RaffleImporter) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return i.ImportYAML(ctx, file)
	case ".csv":
		return i.ImportCSV(ctx, file)
	}
	return nil, fmt.Errorf("unsupported fixture format %q", filepath.Ext(path))
}

// ImportYAML imports a YAML list of raffles
func (i *RaffleImporter) ImportYAML(ctx context.Context, r io.Reader) (*ImportResult, error) {
	var raffles []models.Raffle
	if err := yaml.NewDecoder(r).Decode(&raffles); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	result := &ImportResult{TotalRows: len(raffles), Errors: []string{}}
	valid := make([]models.Raffle, 0, len(raffles))
	for n, raffle := range raffles {
		if err := validateRaffle(&raffle); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Entry %d: %v", n+1, err))
			continue
		}
		valid = append(valid, raffle)
	}
	return i.write(ctx, valid, result)
}

// ImportCSV imports one raffle per CSV row. The header row names the columns.
func (i *RaffleImporter) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idIdx := findColumnIndex(header, "id", "address", "raffle")
	nameIdx := findColumnIndex(header, "name", "title")
	endIdx := findColumnIndex(header, "end", "endtimestamp", "ends")
	priceIdx := findColumnIndex(header, "ticketprice", "price")
	prizesIdx := findColumnIndex(header, "totalprizes", "prizes")
	imageIdx := findColumnIndex(header, "imageuri", "image")
	creatorIdx := findColumnIndex(header, "creator")
	entrantsIdx := findColumnIndex(header, "entrants", "tickets")

	if idIdx == -1 || endIdx == -1 {
		return nil, fmt.Errorf("CSV needs an id and an end column")
	}

	result := &ImportResult{Errors: []string{}}
	var raffles []models.Raffle
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		result.TotalRows++
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", result.TotalRows, err))
			continue
		}

		raffle := models.Raffle{
			ID:       column(row, idIdx),
			Name:     column(row, nameIdx),
			ImageURI: column(row, imageIdx),
			Creator:  column(row, creatorIdx),
			Entrants: models.EntrantSet{},
		}
		if raffle.EndTimestamp, err = parseTimestamp(column(row, endIdx)); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid end timestamp: %v", result.TotalRows, err))
			continue
		}
		if v := column(row, priceIdx); v != "" {
			if raffle.TicketPrice, err = strconv.ParseUint(v, 10, 64); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid ticket price: %s", result.TotalRows, v))
				continue
			}
		}
		if v := column(row, prizesIdx); v != "" {
			prizes, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid prize count: %s", result.TotalRows, v))
				continue
			}
			raffle.TotalPrizes = uint32(prizes)
		}
		for _, wallet := range strings.Split(column(row, entrantsIdx), ";") {
			if wallet = strings.TrimSpace(wallet); wallet != "" {
				raffle.Entrants = append(raffle.Entrants, wallet)
			}
		}

		if err := validateRaffle(&raffle); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", result.TotalRows, err))
			continue
		}
		raffles = append(raffles, raffle)
	}
	return i.write(ctx, raffles, result)
}

func (i *RaffleImporter) write(ctx context.Context, raffles []models.Raffle, result *ImportResult) (*ImportResult, error) {
	if len(raffles) == 0 {
		return result, nil
	}
	if err := i.repo.UpsertMany(ctx, raffles); err != nil {
		return result, fmt.Errorf("failed to store raffles: %w", err)
	}
	result.Imported = len(raffles)
	return result, nil
}

func validateRaffle(raffle *models.Raffle) error {
	if raffle.ID == "" {
		return fmt.Errorf("missing id")
	}
	if raffle.EndTimestamp.IsZero() {
		return fmt.Errorf("missing end timestamp")
	}
	raffle.EndTimestamp = raffle.EndTimestamp.UTC()
	if raffle.Entrants == nil {
		raffle.Entrants = models.EntrantSet{}
	}
	return nil
}

var columnNormalizer = strings.NewReplacer(" ", "", "_", "", "-", "")

func findColumnIndex(header []string, names ...string) int {
	for idx, col := range header {
		normalized := columnNormalizer.Replace(strings.ToLower(strings.TrimSpace(col)))
		for _, name := range names {
			if normalized == name {
				return idx
			}
		}
	}
	return -1
}

func column(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseTimestamp accepts RFC 3339 or unix seconds
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty value")
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Parse(time.RFC3339, value)
}
