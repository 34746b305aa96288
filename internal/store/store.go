// Package store opens the restaurant's SQLite database and loads the dish
// and sales tables shown by the application.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	sqladapter "github.com/magpierre/dishledger/adapters/sql"
	"github.com/magpierre/dishledger/adapters/slice"
	"github.com/magpierre/dishledger/datatable"
)

// Columns of the dish table.
const (
	DishID = iota
	DishName
	DishPrice
	DishSoldWeek
	DishRemarks
)

// Columns of the sales table.
const (
	SaleDishID = iota
	SaleDate
	SaleDishName
	SalePrice
	SaleSold
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS dish (
		id integer PRIMARY KEY,
		name text NOT NULL,
		price numeric NOT NULL,
		remarks text,
		UNIQUE (name, price)
	)`,
	`CREATE TABLE IF NOT EXISTS dish_data (
		dish_id integer NOT NULL REFERENCES dish(id) ON DELETE CASCADE,
		date date,
		sell_num integer DEFAULT 0,
		PRIMARY KEY (dish_id, date)
	)`,
	`CREATE TRIGGER IF NOT EXISTS place_holder_data
		AFTER INSERT ON dish
		BEGIN
			INSERT INTO dish_data (dish_id, date, sell_num) VALUES (new.id, null, 0);
		END`,
}

const dishQuery = `
	SELECT dish.id AS id, dish.name AS name, dish.price AS price,
		COALESCE(SUM(dish_data.sell_num), 0) AS sold_7d, dish.remarks AS remarks
	FROM dish LEFT JOIN dish_data ON dish.id = dish_data.dish_id
	WHERE dish_data.date IS NULL OR dish_data.date BETWEEN date(?) AND date(?)
	GROUP BY dish.id
	ORDER BY dish.name, dish.price`

const salesQuery = `
	SELECT dish_data.dish_id AS dish_id, dish_data.date AS date, dish.name AS name,
		dish.price AS price, dish_data.sell_num AS sold
	FROM dish_data LEFT JOIN dish ON dish_data.dish_id = dish.id
	WHERE dish_data.date IS NOT NULL
	ORDER BY dish_data.date DESC, dish.name, dish.price, dish_data.sell_num`

// Store reads the dish and sales tables.
type Store struct {
	db *sqlx.DB
}

// Open connects to the SQLite database at dsn and creates the schema if
// it is missing.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// DB exposes the connection for callers that maintain the data.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dishes loads every dish with its sales over the seven days up to now.
func (s *Store) Dishes(ctx context.Context, now time.Time) (*slice.Source, error) {
	high := now.Format(datatable.DateLayout)
	low := now.AddDate(0, 0, -7).Format(datatable.DateLayout)
	src, err := sqladapter.Query(ctx, s.db, dishQuery, low, high)
	if err != nil {
		return nil, fmt.Errorf("load dishes: %w", err)
	}
	return src, nil
}

// Sales loads every dated sales record, newest first.
func (s *Store) Sales(ctx context.Context) (*slice.Source, error) {
	src, err := sqladapter.Query(ctx, s.db, salesQuery)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	return src, nil
}

// Object is a table or view of the database.
type Object struct {
	Name string `db:"name"`
	Kind string `db:"type"`
}

// Objects lists the tables and views of the database by kind and name.
// SQLite's internal tables are left out.
func (s *Store) Objects(ctx context.Context) ([]Object, error) {
	var objects []Object
	err := s.db.SelectContext(ctx, &objects, `
		SELECT name, type FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY type, name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return objects, nil
}

// Table loads every row of the table or view called name.
func (s *Store) Table(ctx context.Context, name string) (*slice.Source, error) {
	src, err := sqladapter.Query(ctx, s.db, "SELECT * FROM "+quoteIdent(name))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return src, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
