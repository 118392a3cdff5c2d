package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// document is the single table the SQL backend uses: one row per document,
// the payload kept as JSON text so all collections share a schema.
type document struct {
	Collection string `gorm:"primaryKey;size:64"`
	Key        string `gorm:"primaryKey;size:191;column:doc_key"`
	Data       string `gorm:"type:text;not null"`
}

type SQL struct {
	db *gorm.DB
}

var _ Store = (*SQL)(nil)

func NewSQL(db *gorm.DB) (*SQL, error) {
	if err := db.AutoMigrate(&document{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	return &SQL{db: db}, nil
}

func OpenPostgres(host, port, user, password, dbname string) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, dbname,
	)
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func OpenSQLite(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}

func (s *SQL) Get(ctx context.Context, collection, key string, out any) error {
	var doc document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_key = ?", collection, key).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(doc.Data), out)
}

func (s *SQL) FindOne(ctx context.Context, collection, field, value string, out any) error {
	var doc document
	err := s.byField(ctx, collection, field, value).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(doc.Data), out)
}

func (s *SQL) List(ctx context.Context, collection string, out any) error {
	var docs []document
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("doc_key ASC").
		Find(&docs).Error
	if err != nil {
		return err
	}
	return decodeDocs(docs, out)
}

func (s *SQL) ListByField(ctx context.Context, collection, field, value string, out any) error {
	var docs []document
	if err := s.byField(ctx, collection, field, value).Order("doc_key ASC").Find(&docs).Error; err != nil {
		return err
	}
	return decodeDocs(docs, out)
}

func (s *SQL) Upsert(ctx context.Context, collection, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	row := document{Collection: collection, Key: key, Data: string(raw)}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"data"}),
		}).
		Create(&row).Error
}

func (s *SQL) Delete(ctx context.Context, collection, key string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("collection = ? AND doc_key = ?", collection, key).
		Delete(&document{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *SQL) byField(ctx context.Context, collection, field, value string) *gorm.DB {
	q := s.db.WithContext(ctx).Where("collection = ?", collection)
	if s.db.Dialector.Name() == "postgres" {
		return q.Where("data::jsonb ->> ? = ?", field, value)
	}
	return q.Where("json_extract(data, '$.' || ?) = ?", field, value)
}

func decodeDocs(docs []document, out any) error {
	raws := make([]json.RawMessage, len(docs))
	for i, d := range docs {
		raws[i] = json.RawMessage(d.Data)
	}
	raw, err := json.Marshal(raws)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
