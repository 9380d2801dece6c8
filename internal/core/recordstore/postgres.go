package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var _ Store = (*PostgresStore)(nil)

// PostgreSQL error classes relevant to classification.
const (
	pgClassConnection        = "08" // connection_exception
	pgClassOperatorIntervene = "57" // operator_intervention, includes 57014 query_canceled
	pgClassInsufficientRes   = "53" // insufficient_resources
	pgErrQueryCanceled       = "57014"
	pgErrUniqueViolation     = "23505"
)

// recordRow is the single table backing every collection.
type recordRow struct {
	ID         string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Collection string    `gorm:"column:collection;primaryKey;type:varchar(64);index"`
	Data       string    `gorm:"column:data;type:jsonb;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;index"`
}

func (recordRow) TableName() string { return "records" }

// PostgresStore implements Store on one jsonb table through gorm.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore opens the database and migrates the records table.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.AutoMigrate(&recordRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate records table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Insert stores one row.
func (p *PostgresStore) Insert(ctx context.Context, collection string, record Record) (string, error) {
	row, err := toRow(collection, record)
	if err != nil {
		return "", Rejection("insert", collection, "INVALID_RECORD", err.Error())
	}
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", classifyPostgres("insert", collection, err)
	}
	return row.ID, nil
}

// Update patches every matching row inside one transaction.
func (p *PostgresStore) Update(ctx context.Context, collection string, filter Filter, patch Record) (int, error) {
	clonedPatch, err := patch.Clone()
	if err != nil {
		return 0, Rejection("update", collection, "INVALID_RECORD", err.Error())
	}

	count := 0
	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := p.rows(tx, collection)
		if err != nil {
			return err
		}
		for _, row := range rows {
			rec, err := fromRow(row)
			if err != nil {
				return err
			}
			if !Matches(rec, filter) {
				continue
			}
			Apply(rec, clonedPatch)
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			res := tx.Model(&recordRow{}).
				Where("collection = ? AND id = ?", collection, row.ID).
				Update("data", string(data))
			if res.Error != nil {
				return res.Error
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, classifyPostgres("update", collection, err)
	}
	return count, nil
}

// Select loads the collection and filters rows client side.
func (p *PostgresStore) Select(ctx context.Context, collection string, filter Filter, order Order) ([]Record, error) {
	rows, err := p.rows(p.db.WithContext(ctx), collection)
	if err != nil {
		return nil, classifyPostgres("select", collection, err)
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := fromRow(row)
		if err != nil {
			return nil, Rejection("select", collection, "CORRUPT_RECORD", err.Error())
		}
		if Matches(rec, filter) {
			out = append(out, rec)
		}
	}
	SortRecords(out, order)
	return out, nil
}

// Delete removes every matching row.
func (p *PostgresStore) Delete(ctx context.Context, collection string, filter Filter) (int, error) {
	recs, err := p.Select(ctx, collection, filter, Order{})
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.String(IDField)
	}
	res := p.db.WithContext(ctx).
		Where("collection = ? AND id IN ?", collection, ids).
		Delete(&recordRow{})
	if res.Error != nil {
		return 0, classifyPostgres("delete", collection, res.Error)
	}
	return int(res.RowsAffected), nil
}

// Ping checks the database connection.
func (p *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return Connectivity("ping", "", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return classifyPostgres("ping", "", err)
	}
	return nil
}

// Close closes the database pool.
func (p *PostgresStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (p *PostgresStore) rows(db *gorm.DB, collection string) ([]recordRow, error) {
	var rows []recordRow
	err := db.Where("collection = ?", collection).Order("created_at asc").Find(&rows).Error
	return rows, err
}

func toRow(collection string, record Record) (recordRow, error) {
	clone, err := record.Clone()
	if err != nil {
		return recordRow{}, err
	}
	id := clone.String(IDField)
	if id == "" {
		id = uuid.NewString()
		clone[IDField] = id
	}
	data, err := json.Marshal(clone)
	if err != nil {
		return recordRow{}, err
	}
	return recordRow{ID: id, Collection: collection, Data: string(data)}, nil
}

func fromRow(row recordRow) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(row.Data), &rec); err != nil {
		return nil, fmt.Errorf("record %s/%s: %w", row.Collection, row.ID, err)
	}
	if rec == nil {
		rec = Record{}
	}
	rec[IDField] = row.ID
	return rec, nil
}

// classifyPostgres maps driver errors onto the remote error taxonomy:
// connection class 08 and resource class 53 are connectivity, query_canceled is
// a timeout, every other SQLSTATE is a rejection carrying the code.
func classifyPostgres(op, collection string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgErrQueryCanceled:
			return Timeout(op, collection, err)
		case pgErr.Code == pgErrUniqueViolation:
			return Rejection(op, collection, CodeDuplicateID, pgErr.Message)
		case strings.HasPrefix(pgErr.Code, pgClassConnection),
			strings.HasPrefix(pgErr.Code, pgClassInsufficientRes),
			strings.HasPrefix(pgErr.Code, pgClassOperatorIntervene):
			return Connectivity(op, collection, err)
		default:
			msg := pgErr.Message
			if pgErr.Detail != "" {
				msg += ": " + pgErr.Detail
			}
			return Rejection(op, collection, pgErr.Code, msg)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Rejection(op, collection, CodeDuplicateID, "duplicate record id")
	}
	return Classify(op, collection, err)
}
