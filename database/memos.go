package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/Camelus33/tedin-sub000/helper"
	"github.com/Camelus33/tedin-sub000/model"
	loadSql "github.com/Camelus33/tedin-sub000/sql"
)

// MemosDBHandlerFunctions defines the interface for memo database operations.
type MemosDBHandlerFunctions interface {
	InsertMemo(memo *model.Memo) error
	UpdateMemoTags(memo *model.Memo) error
	DeleteMemo(rid uuid.UUID) error
	SelectMemo(rid uuid.UUID) (*model.Memo, error)
	SelectMemosByUser(userID string, limit int) ([]*model.Memo, error)
	SelectMemosBySearch(searchTerm string, limit int) ([]*model.Memo, error)
	SelectMemosBySimilarity(embedding []float32, limit int, threshold float64) ([]*model.Memo, error)
}

// MemosDBHandler handles memo-related database operations
type MemosDBHandler struct {
	db *helper.Database
}

// NewMemosDBHandler creates a new memos database handler.
// It initializes the database connection and loads memo-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewMemosDBHandler(db *helper.Database, embeddingDim int, force bool) (*MemosDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	memosDbHandler := &MemosDBHandler{
		db: db,
	}

	err := loadSql.LoadMemosSql(memosDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load memos sql", err)
	}

	err = memosDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized MemosDBHandler")

	return memosDbHandler, nil
}

// CreateTable creates the 'memos' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary extensions and indexes.
func (h *MemosDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init_memos() function to create the table and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_memos($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing memos table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table memos")

	return nil
}

// InsertMemo inserts a new memo
func (h *MemosDBHandler) InsertMemo(memo *model.Memo) error {
	var embedding interface{}
	if len(memo.Embedding) > 0 {
		embedding = pgvector.NewVector(memo.Embedding)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_memo($1, $2, $3, $4, $5)`,
		memo.UserID,
		memo.Content,
		pq.Array(memo.Tags),
		embedding,
		memo.Metadata,
	)

	var stored *pgvector.Vector
	err := row.Scan(
		&memo.ID,
		&memo.RID,
		&memo.UserID,
		&memo.Content,
		pq.Array(&memo.Tags),
		&stored,
		&memo.Metadata,
		&memo.CreatedAt,
		&memo.UpdatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}
	if stored != nil {
		memo.Embedding = stored.Slice()
	}

	return nil
}

// UpdateMemoTags replaces the tags of a memo
func (h *MemosDBHandler) UpdateMemoTags(memo *model.Memo) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM update_memo_tags($1, $2)`,
		memo.RID,
		pq.Array(memo.Tags),
	)

	var stored *pgvector.Vector
	err := row.Scan(
		&memo.ID,
		&memo.RID,
		&memo.UserID,
		&memo.Content,
		pq.Array(&memo.Tags),
		&stored,
		&memo.Metadata,
		&memo.CreatedAt,
		&memo.UpdatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}
	if stored != nil {
		memo.Embedding = stored.Slice()
	}

	return nil
}

// DeleteMemo deletes a memo by RID
func (h *MemosDBHandler) DeleteMemo(rid uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_memo($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectMemo retrieves a memo by RID
func (h *MemosDBHandler) SelectMemo(rid uuid.UUID) (*model.Memo, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_memo($1)`,
		rid,
	)

	memo := &model.Memo{}
	var stored *pgvector.Vector
	err := row.Scan(
		&memo.ID,
		&memo.RID,
		&memo.UserID,
		&memo.Content,
		pq.Array(&memo.Tags),
		&stored,
		&memo.Metadata,
		&memo.CreatedAt,
		&memo.UpdatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}
	if stored != nil {
		memo.Embedding = stored.Slice()
	}

	return memo, nil
}

// SelectMemosByUser retrieves the newest memos of a user
func (h *MemosDBHandler) SelectMemosByUser(userID string, limit int) ([]*model.Memo, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_memos_by_user($1, $2)`,
		userID,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var memos []*model.Memo
	for rows.Next() {
		memo := &model.Memo{}
		var stored *pgvector.Vector
		err := rows.Scan(
			&memo.ID,
			&memo.RID,
			&memo.UserID,
			&memo.Content,
			pq.Array(&memo.Tags),
			&stored,
			&memo.Metadata,
			&memo.CreatedAt,
			&memo.UpdatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		if stored != nil {
			memo.Embedding = stored.Slice()
		}

		memos = append(memos, memo)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return memos, nil
}

// SelectMemosBySearch retrieves memos whose content or tags contain the
// search term, case-insensitively
func (h *MemosDBHandler) SelectMemosBySearch(searchTerm string, limit int) ([]*model.Memo, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_memos_by_search($1, $2)`,
		searchTerm,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var memos []*model.Memo
	for rows.Next() {
		memo := &model.Memo{}
		var stored *pgvector.Vector
		err := rows.Scan(
			&memo.ID,
			&memo.RID,
			&memo.UserID,
			&memo.Content,
			pq.Array(&memo.Tags),
			&stored,
			&memo.Metadata,
			&memo.CreatedAt,
			&memo.UpdatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		if stored != nil {
			memo.Embedding = stored.Slice()
		}

		memos = append(memos, memo)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return memos, nil
}

// SelectMemosBySimilarity retrieves memos by cosine similarity to the
// given embedding. Memos below the similarity threshold are excluded.
func (h *MemosDBHandler) SelectMemosBySimilarity(embedding []float32, limit int, threshold float64) ([]*model.Memo, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_memos_by_similarity($1, $2, $3)`,
		pgvector.NewVector(embedding),
		limit,
		threshold,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var memos []*model.Memo
	for rows.Next() {
		memo := &model.Memo{}
		var stored *pgvector.Vector
		err := rows.Scan(
			&memo.ID,
			&memo.RID,
			&memo.UserID,
			&memo.Content,
			pq.Array(&memo.Tags),
			&stored,
			&memo.Metadata,
			&memo.CreatedAt,
			&memo.UpdatedAt,
			&memo.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		if stored != nil {
			memo.Embedding = stored.Slice()
		}

		memos = append(memos, memo)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return memos, nil
}
