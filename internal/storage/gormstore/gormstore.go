// Package gormstore implements storage.Store on top of GORM with the
// SQLite driver.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aanand-mishra/people-api/internal/storage"
	"github.com/aanand-mishra/people-api/internal/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// person is the row model. It corresponds to the 'people' table.
type person struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"not null"`
	Age       int       `gorm:"not null"`
	Email     string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (person) TableName() string {
	return "people"
}

func (p person) toType() types.Person {
	return types.Person{
		ID:        p.ID,
		Name:      p.Name,
		Age:       p.Age,
		Email:     p.Email,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

var _ storage.Store = (*Store)(nil)

type Option func(*Store)

// WithClock replaces the clock used for created_at / updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (creating if needed) the SQLite database at dsn and migrates
// the people table.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	s := &Store{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(s)
	}

	// GORM logs through slog like the rest of the application.
	gormLogger := logger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormLogger,
		NowFunc: s.now,
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore.Open: connect: %w", err)
	}
	s.db = db

	if err := db.WithContext(ctx).AutoMigrate(&person{}); err != nil {
		s.Close()
		return nil, fmt.Errorf("gormstore.Open: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) FindAll(ctx context.Context) ([]types.Person, error) {
	var rows []person
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("FindAll: %w", err)
	}

	people := make([]types.Person, 0, len(rows))
	for _, r := range rows {
		people = append(people, r.toType())
	}
	return people, nil
}

func (s *Store) FindOne(ctx context.Context, id int64) (types.Person, error) {
	var row person
	err := s.db.WithContext(ctx).First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.Person{}, storage.ErrNotFound
		}
		return types.Person{}, fmt.Errorf("FindOne: %w", err)
	}
	return row.toType(), nil
}

func (s *Store) Save(ctx context.Context, in types.CreatePerson) (types.Person, error) {
	now := s.now()
	row := person{
		Name:      in.Name,
		Age:       in.Age,
		Email:     in.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return types.Person{}, fmt.Errorf("Save: create: %w", err)
	}

	p, err := s.FindOne(ctx, row.ID)
	if err != nil {
		return types.Person{}, fmt.Errorf("Save: reload: %w", err)
	}
	return p, nil
}

// Update writes the supplied columns through a map so that zero values
// the caller did supply (age 0) are still written.
func (s *Store) Update(ctx context.Context, id int64, patch types.UpdatePerson) error {
	fields := patch.Fields()
	fields["updated_at"] = s.now()

	res := s.db.WithContext(ctx).Model(&person{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("Update: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, p types.Person) error {
	res := s.db.WithContext(ctx).Delete(&person{}, p.ID)
	if res.Error != nil {
		return fmt.Errorf("Remove: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
