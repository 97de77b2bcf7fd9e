package roomstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dkeye/whowasi/internal/core"
	"github.com/dkeye/whowasi/internal/domain"
)

// RoomRecord is the persisted row of the rooms table.
type RoomRecord struct {
	ID           string     `gorm:"type:uuid;primaryKey"`
	RoomCode     string     `gorm:"size:16;uniqueIndex;not null"`
	Name         string     `gorm:"size:100;not null"`
	PasswordHash string     `gorm:"size:255"`
	CreatedAt    time.Time  `gorm:"not null"`
	ExpiresAt    *time.Time `gorm:"index"`
}

func (RoomRecord) TableName() string { return "rooms" }

func (r *RoomRecord) toDomain() *domain.Room {
	return &domain.Room{
		ID:           domain.RoomID(r.ID),
		Code:         domain.RoomCode(r.RoomCode),
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		ExpiresAt:    r.ExpiresAt,
	}
}

// Gorm is the RoomStore backed by a SQL database.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	if db == nil {
		panic("roomstore: nil *gorm.DB")
	}
	return &Gorm{db: db}
}

// Migrate creates or updates the rooms table.
func (g *Gorm) Migrate(ctx context.Context) error {
	if err := g.db.WithContext(ctx).AutoMigrate(&RoomRecord{}); err != nil {
		return fmt.Errorf("gorm: migrate rooms: %w", err)
	}
	return nil
}

func (g *Gorm) FindByCode(ctx context.Context, code domain.RoomCode) (*domain.Room, error) {
	var rec RoomRecord
	err := g.db.WithContext(ctx).Where("room_code = ?", string(code)).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.ErrNoSuchRoom
		}
		return nil, fmt.Errorf("gorm: find room by code: %w", err)
	}
	return rec.toDomain(), nil
}

func (g *Gorm) Insert(ctx context.Context, room *domain.Room) error {
	if room.ID == "" {
		room.ID = domain.RoomID(uuid.NewString())
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	rec := RoomRecord{
		ID:           string(room.ID),
		RoomCode:     string(room.Code),
		Name:         room.Name,
		PasswordHash: room.PasswordHash,
		CreatedAt:    room.CreatedAt,
		ExpiresAt:    room.ExpiresAt,
	}
	if err := g.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isDuplicateKey(err) {
			return core.ErrDuplicateCode
		}
		return fmt.Errorf("gorm: insert room: %w", err)
	}
	return nil
}

func (g *Gorm) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return fmt.Errorf("gorm: underlying db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// isDuplicateKey recognises unique violations both when the dialector
// translates errors and when it does not.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
