package services

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TargetResolver finds the current author of reportable content.
type TargetResolver interface {
	AuthorOf(ctx context.Context, targetType models.TargetType, targetID string) (uuid.UUID, error)
}

type targetTable struct {
	table  string
	column string
}

// SQLTargetResolver reads authors straight from the content tables owned by the
// post, comment and chat services, which share this database.
type SQLTargetResolver struct {
	db     *gorm.DB
	tables map[models.TargetType]targetTable
}

func NewSQLTargetResolver(db *gorm.DB) *SQLTargetResolver {
	return &SQLTargetResolver{
		db: db,
		tables: map[models.TargetType]targetTable{
			models.TargetPost:    {table: "posts", column: "author_id"},
			models.TargetComment: {table: "comments", column: "author_id"},
			models.TargetChat:    {table: "chat_messages", column: "sender_id"},
			models.TargetUser:    {table: "users", column: "id"},
		},
	}
}

func (r *SQLTargetResolver) AuthorOf(ctx context.Context, targetType models.TargetType, targetID string) (uuid.UUID, error) {
	t, ok := r.tables[targetType]
	if !ok {
		return uuid.Nil, ErrInvalidTarget
	}

	var authors []string
	err := r.db.WithContext(ctx).
		Table(t.table).
		Where("id = ?", targetID).
		Limit(1).
		Pluck(t.column, &authors).Error
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve %s author: %w", targetType, err)
	}
	if len(authors) == 0 {
		return uuid.Nil, ErrTargetNotFound
	}

	author, err := uuid.Parse(authors[0])
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve %s author: %w", targetType, err)
	}
	return author, nil
}
