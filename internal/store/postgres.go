package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"lightnav/internal/model"
)

// Postgres persists route plans as JSONB rows. Schema:
//
//	CREATE TABLE IF NOT EXISTS route_plans (
//	    id UUID PRIMARY KEY,
//	    created_unix BIGINT NOT NULL,
//	    plan JSONB NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) SavePlan(ctx context.Context, plan *model.RoutePlan) (string, error) {
	id := uuid.New().String()
	plan.ID = id
	body, err := json.Marshal(plan)
	if err != nil {
		return "", err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO route_plans (id, created_unix, plan) VALUES ($1,$2,$3)`,
		id, plan.CreatedUnix, body)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) GetPlan(ctx context.Context, id string) (*model.RoutePlan, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT plan FROM route_plans WHERE id=$1`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var plan model.RoutePlan
	if err := json.Unmarshal(body, &plan); err != nil {
		return nil, err
	}
	plan.ID = id
	return &plan, nil
}

func (p *Postgres) ListPlans(ctx context.Context, cursor string, limit int) ([]*model.RoutePlan, string, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows *sql.Rows
	var err error
	if cursor != "" {
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, plan FROM route_plans WHERE id::text > $1 ORDER BY id LIMIT $2`, cursor, limit)
	} else {
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, plan FROM route_plans ORDER BY id LIMIT $1`, limit)
	}
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	out := []*model.RoutePlan{}
	var last string
	for rows.Next() {
		var id string
		var body []byte
		if err := rows.Scan(&id, &body); err != nil {
			return nil, "", err
		}
		var plan model.RoutePlan
		if err := json.Unmarshal(body, &plan); err != nil {
			return nil, "", err
		}
		plan.ID = id
		out = append(out, &plan)
		last = id
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}
	var next string
	if len(out) == limit {
		next = last
	}
	return out, next, nil
}

func (p *Postgres) ReplacePlan(ctx context.Context, id string, plan *model.RoutePlan) error {
	cp := *plan
	cp.ID = id
	body, err := json.Marshal(&cp)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE route_plans SET created_unix=$2, plan=$3 WHERE id=$1`,
		id, cp.CreatedUnix, body)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeletePlan(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM route_plans WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
