// Package registry provides storage and HTTP access for the reference
// entities of the simulation: periods, population groups and parties,
// plus their per-period snapshots.
package registry

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/codingBeanie/Chronodemica/internal/database"
	"github.com/codingBeanie/Chronodemica/internal/domain"
)

// PeriodRepository handles period database operations
type PeriodRepository struct {
	db  database.Querier
	log zerolog.Logger
}

// NewPeriodRepository creates a new period repository
func NewPeriodRepository(db database.Querier, log zerolog.Logger) *PeriodRepository {
	return &PeriodRepository{
		db:  db,
		log: log.With().Str("repo", "period").Logger(),
	}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PeriodRepository) WithTx(tx *sql.Tx) *PeriodRepository {
	return &PeriodRepository{db: tx, log: r.log}
}

// List returns all periods ordered by year
func (r *PeriodRepository) List() ([]domain.Period, error) {
	rows, err := r.db.Query("SELECT id, year FROM periods ORDER BY year")
	if err != nil {
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	var periods []domain.Period
	for rows.Next() {
		var p domain.Period
		if err := rows.Scan(&p.ID, &p.Year); err != nil {
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		periods = append(periods, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating periods: %w", err)
	}

	return periods, nil
}

// GetByID returns one period
func (r *PeriodRepository) GetByID(id int64) (*domain.Period, error) {
	var p domain.Period
	err := r.db.QueryRow("SELECT id, year FROM periods WHERE id = ?", id).Scan(&p.ID, &p.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("period %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query period: %w", err)
	}
	return &p, nil
}

// GetByYear returns the period of one year
func (r *PeriodRepository) GetByYear(year int) (*domain.Period, error) {
	var p domain.Period
	err := r.db.QueryRow("SELECT id, year FROM periods WHERE year = ?", year).Scan(&p.ID, &p.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("period for year %d: %w", year, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query period: %w", err)
	}
	return &p, nil
}

// Create inserts a new period and returns it with its assigned ID
func (r *PeriodRepository) Create(p domain.Period) (*domain.Period, error) {
	result, err := r.db.Exec("INSERT INTO periods (year) VALUES (?)", p.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to insert period: %w", err)
	}
	p.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get period id: %w", err)
	}
	return &p, nil
}

// Update modifies an existing period
func (r *PeriodRepository) Update(p domain.Period) error {
	result, err := r.db.Exec("UPDATE periods SET year = ? WHERE id = ?", p.Year, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update period: %w", err)
	}
	return checkAffected(result, p.ID)
}

// Delete removes a period
func (r *PeriodRepository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM periods WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete period: %w", err)
	}
	return checkAffected(result, id)
}

// PopRepository handles population group database operations
type PopRepository struct {
	db  database.Querier
	log zerolog.Logger
}

// NewPopRepository creates a new pop repository
func NewPopRepository(db database.Querier, log zerolog.Logger) *PopRepository {
	return &PopRepository{
		db:  db,
		log: log.With().Str("repo", "pop").Logger(),
	}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PopRepository) WithTx(tx *sql.Tx) *PopRepository {
	return &PopRepository{db: tx, log: r.log}
}

// List returns all population groups ordered by name
func (r *PopRepository) List() ([]domain.Pop, error) {
	rows, err := r.db.Query("SELECT id, name FROM pops ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query pops: %w", err)
	}
	defer rows.Close()

	var pops []domain.Pop
	for rows.Next() {
		var p domain.Pop
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan pop: %w", err)
		}
		pops = append(pops, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pops: %w", err)
	}

	return pops, nil
}

// GetByID returns one population group
func (r *PopRepository) GetByID(id int64) (*domain.Pop, error) {
	var p domain.Pop
	err := r.db.QueryRow("SELECT id, name FROM pops WHERE id = ?", id).Scan(&p.ID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pop %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pop: %w", err)
	}
	return &p, nil
}

// GetByName returns the population group with the given name
func (r *PopRepository) GetByName(name string) (*domain.Pop, error) {
	var p domain.Pop
	err := r.db.QueryRow("SELECT id, name FROM pops WHERE name = ?", name).Scan(&p.ID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pop %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pop: %w", err)
	}
	return &p, nil
}

// Create inserts a new population group
func (r *PopRepository) Create(p domain.Pop) (*domain.Pop, error) {
	result, err := r.db.Exec("INSERT INTO pops (name) VALUES (?)", p.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to insert pop: %w", err)
	}
	p.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get pop id: %w", err)
	}
	return &p, nil
}

// Update modifies an existing population group
func (r *PopRepository) Update(p domain.Pop) error {
	result, err := r.db.Exec("UPDATE pops SET name = ? WHERE id = ?", p.Name, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update pop: %w", err)
	}
	return checkAffected(result, p.ID)
}

// Delete removes a population group
func (r *PopRepository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM pops WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete pop: %w", err)
	}
	return checkAffected(result, id)
}

// PartyRepository handles party database operations
type PartyRepository struct {
	db  database.Querier
	log zerolog.Logger
}

// NewPartyRepository creates a new party repository
func NewPartyRepository(db database.Querier, log zerolog.Logger) *PartyRepository {
	return &PartyRepository{
		db:  db,
		log: log.With().Str("repo", "party").Logger(),
	}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PartyRepository) WithTx(tx *sql.Tx) *PartyRepository {
	return &PartyRepository{db: tx, log: r.log}
}

// List returns all parties ordered by name
func (r *PartyRepository) List() ([]domain.Party, error) {
	rows, err := r.db.Query("SELECT id, name, COALESCE(full_name, ''), color FROM parties ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query parties: %w", err)
	}
	defer rows.Close()

	var parties []domain.Party
	for rows.Next() {
		var p domain.Party
		if err := rows.Scan(&p.ID, &p.Name, &p.FullName, &p.Color); err != nil {
			return nil, fmt.Errorf("failed to scan party: %w", err)
		}
		parties = append(parties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parties: %w", err)
	}

	return parties, nil
}

// GetByID returns one party
func (r *PartyRepository) GetByID(id int64) (*domain.Party, error) {
	var p domain.Party
	err := r.db.QueryRow(
		"SELECT id, name, COALESCE(full_name, ''), color FROM parties WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &p.FullName, &p.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("party %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query party: %w", err)
	}
	return &p, nil
}

// GetByName returns the party with the given short name
func (r *PartyRepository) GetByName(name string) (*domain.Party, error) {
	var p domain.Party
	err := r.db.QueryRow(
		"SELECT id, name, COALESCE(full_name, ''), color FROM parties WHERE name = ?", name,
	).Scan(&p.ID, &p.Name, &p.FullName, &p.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("party %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query party: %w", err)
	}
	return &p, nil
}

// Create inserts a new party
func (r *PartyRepository) Create(p domain.Party) (*domain.Party, error) {
	if p.Color == "" {
		p.Color = "#525252"
	}
	result, err := r.db.Exec(
		"INSERT INTO parties (name, full_name, color) VALUES (?, ?, ?)",
		p.Name, p.FullName, p.Color,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert party: %w", err)
	}
	p.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get party id: %w", err)
	}
	return &p, nil
}

// Update modifies an existing party
func (r *PartyRepository) Update(p domain.Party) error {
	result, err := r.db.Exec(
		"UPDATE parties SET name = ?, full_name = ?, color = ? WHERE id = ?",
		p.Name, p.FullName, p.Color, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update party: %w", err)
	}
	return checkAffected(result, p.ID)
}

// Delete removes a party
func (r *PartyRepository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM parties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete party: %w", err)
	}
	return checkAffected(result, id)
}

// checkAffected translates a zero-row update or delete into ErrNotFound
func checkAffected(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("record %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
