package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"naskahpad/internal/document/model"
	"naskahpad/pkg/logger"
)

// ErrNotFound is returned by updates that match no row.
var ErrNotFound = errors.New("document not found")

const selectDocument = `SELECT id, title, content, created_at, updated_at FROM documents WHERE id = $1`

type DocumentRepository struct {
	DB *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

// Create inserts a row with empty content. Timestamps come from the database.
func (r *DocumentRepository) Create(ctx context.Context, id, title string) (*model.Document, error) {
	var doc model.Document
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO documents (id, title, content) VALUES ($1, $2, '')
		RETURNING id, title, content, created_at, updated_at`,
		id, title,
	).Scan(&doc.ID, &doc.Title, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to create document: %v", err)
		return nil, err
	}
	return &doc, nil
}

// Get returns (nil, nil) when no row has the given id.
func (r *DocumentRepository) Get(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	err := r.DB.QueryRowContext(ctx, selectDocument, id).
		Scan(&doc.ID, &doc.Title, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get doc %s: %v", id, err)
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) UpdateContent(ctx context.Context, id, content string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE documents SET content = $1 WHERE id = $2`, content, id)
	if err != nil {
		logger.Sugar.Errorf("Failed to update content for doc %s: %v", id, err)
		return err
	}
	return requireRow(result, id)
}

func (r *DocumentRepository) UpdateTitle(ctx context.Context, id, title string) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE documents SET title = $1 WHERE id = $2`, title, id)
	if err != nil {
		logger.Sugar.Errorf("Failed to update title for doc %s: %v", id, err)
		return err
	}
	return requireRow(result, id)
}

func requireRow(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("doc %s: %w", id, ErrNotFound)
	}
	return nil
}
