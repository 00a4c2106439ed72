package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cirocosta/todopage/internal/model"
)

// NewPGPool opens a pgx pool for dsn and checks it is reachable
func NewPGPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

// PGTodoRepository implements TodoRepository on an existing todos table
type PGTodoRepository struct {
	db *pgxpool.Pool
}

// NewPGTodoRepository creates a Postgres backed todo repository
func NewPGTodoRepository(db *pgxpool.Pool) *PGTodoRepository {
	return &PGTodoRepository{db: db}
}

// ListByUser returns the todos owned by userID, newest first
func (r *PGTodoRepository) ListByUser(ctx context.Context, userID string) ([]model.Todo, error) {
	query := `
		SELECT id, title, is_done, user_id, created_at
		FROM todos WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.IsDone, &t.UserID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}

	return todos, rows.Err()
}

// Insert stores a new todo, leaving is_done and created_at to column defaults
func (r *PGTodoRepository) Insert(ctx context.Context, todo model.Todo) (model.Todo, error) {
	if todo.UserID == "" {
		return model.Todo{}, ErrInvalidTodo{Reason: "user_id is required"}
	}

	query := `
		INSERT INTO todos (title, user_id)
		VALUES ($1, $2)
		RETURNING id, title, is_done, user_id, created_at`
	var out model.Todo
	err := r.db.QueryRow(ctx, query, todo.Title, todo.UserID).Scan(
		&out.ID, &out.Title, &out.IsDone, &out.UserID, &out.CreatedAt,
	)
	if err != nil {
		return model.Todo{}, fmt.Errorf("insert todo: %w", err)
	}

	return out, nil
}

// SetDone sets is_done on the todo matching both id and userID
func (r *PGTodoRepository) SetDone(ctx context.Context, userID string, id int64, done bool) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE todos SET is_done = $3 WHERE id = $1 AND user_id = $2`,
		id, userID, done,
	)
	if err != nil {
		return 0, fmt.Errorf("update todo: %w", err)
	}

	return tag.RowsAffected(), nil
}
