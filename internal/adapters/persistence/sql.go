package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/okian/pong/internal/domain/model"
)

// tournamentRow is one tournament record; Position keeps collection order.
type tournamentRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	Position  int    `gorm:"not null;index"`
	Payload   string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (tournamentRow) TableName() string { return "tournament_records" }

// SQL stores one row per tournament through gorm.
type SQL struct {
	db *gorm.DB
}

// OpenSQL opens driver ("sqlite" or "postgres") at dsn and migrates the table.
func OpenSQL(driver, dsn string) (*SQL, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: sql driver %q", ErrBackendConfig, driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return NewSQL(db)
}

// NewSQL uses an open gorm handle and migrates the table.
func NewSQL(db *gorm.DB) (*SQL, error) {
	if err := db.AutoMigrate(&tournamentRow{}); err != nil {
		return nil, fmt.Errorf("migrate tournament_records: %w", err)
	}
	return &SQL{db: db}, nil
}

// Load implements Persister.Load. Rows are reassembled into the collection
// array and decoded leniently.
func (s *SQL) Load(ctx context.Context) ([]*model.Tournament, error) {
	var rows []tournamentRow
	if err := s.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("select tournament_records: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		if json.Valid([]byte(row.Payload)) {
			buf.WriteString(row.Payload)
		} else {
			buf.WriteString("null")
		}
	}
	buf.WriteByte(']')
	return model.Decode(buf.Bytes())
}

// Save implements Persister.Save by replacing every row in one transaction.
func (s *SQL) Save(ctx context.Context, tournaments []*model.Tournament) error {
	rows := make([]tournamentRow, 0, len(tournaments))
	now := time.Now().UTC()
	for i, t := range tournaments {
		payload, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode tournament %s: %w", t.ID, err)
		}
		rows = append(rows, tournamentRow{ID: t.ID, Position: i, Payload: string(payload), UpdatedAt: now})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&tournamentRow{}).Error; err != nil {
			return fmt.Errorf("clear tournament_records: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("insert tournament_records: %w", err)
		}
		return nil
	})
}

// Name implements Persister.Name.
func (s *SQL) Name() string { return "sql" }

// Close implements Persister.Close.
func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
