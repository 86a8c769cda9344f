package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"stationwatch/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// SnapshotStore persists the per-account cache image: one map of
// stationID -> snapshot, read at the start of an account's cycle and
// written back once at the end.
type SnapshotStore interface {
	Load(ctx context.Context, account string) (map[string]models.StationSnapshot, error)
	Save(ctx context.Context, account string, image map[string]models.StationSnapshot) error
}

// RunLock provides per-account single-flight. Overlapping cycles for one
// account would race on the cache image and double-fire alerts.
type RunLock interface {
	Acquire(ctx context.Context, account string) (bool, error)
	Release(ctx context.Context, account string) error
}

type EventRepo interface {
	Append(ctx context.Context, e models.StationEvent) error
	List(ctx context.Context, from, to time.Time, category string) ([]models.StationEvent, error)
}

type Repository struct {
	Snapshots SnapshotStore
	Lock      RunLock
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB, blobs *minio.Client, bucket string, rdb *redis.Client) *Repository {
	return &Repository{
		Snapshots: NewSnapshotS3(blobs, bucket),
		Lock:      NewRedisRunLock(rdb),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
