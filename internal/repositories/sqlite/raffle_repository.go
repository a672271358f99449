package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/raffle-explorer/internal/logger"
	"github.com/ArowuTest/raffle-explorer/internal/models"
	"github.com/ArowuTest/raffle-explorer/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// RaffleRecord is the row layout of a raffle
type RaffleRecord struct {
	ID              string         `gorm:"primaryKey"`
	Creator         string         `gorm:"not null;index"`
	Name            string         `gorm:"not null"`
	ImageURI        string         `gorm:"size:320"`
	EndTimestamp    time.Time      `gorm:"not null;index"`
	TicketPrice     uint64         `gorm:"default:0"`
	TotalPrizes     uint32         `gorm:"default:0"`
	ClaimedPrizes   uint32         `gorm:"default:0"`
	EntrantsAccount string         `gorm:"size:44"`
	MaxEntrants     uint32         `gorm:"default:0"`
	Entrants        []string       `gorm:"serializer:json"`
	Prizes          []models.Prize `gorm:"serializer:json"`
	Randomness      []byte         `gorm:"size:32"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
}

func (RaffleRecord) TableName() string {
	return "raffles"
}

func toRecord(r *models.Raffle) *RaffleRecord {
	return &RaffleRecord{
		ID:              r.ID,
		Creator:         r.Creator,
		Name:            r.Name,
		ImageURI:        r.ImageURI,
		EndTimestamp:    r.EndTimestamp.UTC(),
		TicketPrice:     r.TicketPrice,
		TotalPrizes:     r.TotalPrizes,
		ClaimedPrizes:   r.ClaimedPrizes,
		EntrantsAccount: r.EntrantsAccount,
		MaxEntrants:     r.MaxEntrants,
		Entrants:        []string(r.Entrants),
		Prizes:          r.Prizes,
		Randomness:      r.Randomness,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (rec *RaffleRecord) toModel() models.Raffle {
	entrants := models.EntrantSet(rec.Entrants)
	if entrants == nil {
		entrants = models.EntrantSet{}
	}
	return models.Raffle{
		ID:              rec.ID,
		Creator:         rec.Creator,
		Name:            rec.Name,
		ImageURI:        rec.ImageURI,
		EndTimestamp:    rec.EndTimestamp.UTC(),
		TicketPrice:     rec.TicketPrice,
		TotalPrizes:     rec.TotalPrizes,
		ClaimedPrizes:   rec.ClaimedPrizes,
		EntrantsAccount: rec.EntrantsAccount,
		MaxEntrants:     rec.MaxEntrants,
		Entrants:        entrants,
		Prizes:          rec.Prizes,
		Randomness:      rec.Randomness,
		UpdatedAt:       rec.UpdatedAt,
	}
}

// RaffleRepository implements repositories.RaffleRepository on a SQLite file
type RaffleRepository struct {
	db *gorm.DB
}

// NewRaffleRepository opens (and migrates) the database at path.
// Use "file::memory:?cache=shared" for a throwaway database.
func NewRaffleRepository(path string) (*RaffleRepository, error) {
	logger.Debug("initializing raffle database...", zap.String("path", path))

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.AutoMigrate(&RaffleRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}

	logger.Debug("initializing raffle database... done")
	return &RaffleRepository{db: db}, nil
}

// Close releases the underlying connection pool
func (r *RaffleRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// FetchRaffles returns every stored raffle, latest-ending first
func (r *RaffleRepository) FetchRaffles(ctx context.Context) ([]models.Raffle, error) {
	var records []RaffleRecord
	err := r.db.WithContext(ctx).Order("end_timestamp desc").Order("id").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query raffles: %w", err)
	}

	raffles := make([]models.Raffle, 0, len(records))
	for i := range records {
		raffles = append(raffles, records[i].toModel())
	}
	return raffles, nil
}

// FindByID finds a raffle by its account address
func (r *RaffleRepository) FindByID(ctx context.Context, id string) (*models.Raffle, error) {
	var record RaffleRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrRaffleNotFound
		}
		return nil, err
	}
	raffle := record.toModel()
	return &raffle, nil
}

// UpsertMany upserts raffles in batches of 100
func (r *RaffleRepository) UpsertMany(ctx context.Context, raffles []models.Raffle) error {
	logger.Debug("upserting raffles...", zap.Int("count", len(raffles)))

	if len(raffles) == 0 {
		logger.Debug("no raffles to persist")
		return nil
	}

	now := time.Now()
	records := make([]*RaffleRecord, 0, len(raffles))
	for i := range raffles {
		raffles[i].UpdatedAt = now
		records = append(records, toRecord(&raffles[i]))
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).CreateInBatches(records, 100).Error
	if err != nil {
		return fmt.Errorf("failed to upsert raffles: %w", err)
	}

	logger.Debug("upserting raffles... done")
	return nil
}

// Count returns the number of stored raffles
func (r *RaffleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&RaffleRecord{}).Count(&count).Error
	return count, err
}
