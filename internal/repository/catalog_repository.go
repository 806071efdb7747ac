package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/it-helpdesk/internal/domain"
)

// DepartmentRepository manages department persistence.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context) ([]domain.Department, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	const query = `
        INSERT INTO departments (name, responsible_user_id)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		dept.Name,
		dept.ResponsibleUserID,
	).Scan(&dept.ID, &dept.CreatedAt)
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	const query = `
        SELECT id, name, responsible_user_id, created_at
        FROM departments WHERE id=$1`
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&dept.ID,
		&dept.Name,
		&dept.ResponsibleUserID,
		&dept.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	const query = `
        SELECT id, name, responsible_user_id, created_at
        FROM departments ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.ResponsibleUserID, &dept.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, dept)
	}
	return result, rows.Err()
}

// ApplicationRepository manages the software catalog.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	List(ctx context.Context) ([]domain.Application, error)
}

type applicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository builds the repository.
func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &applicationRepository{pool: pool}
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	const query = `INSERT INTO applications (name) VALUES ($1) RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, app.Name).Scan(&app.ID, &app.CreatedAt)
}

func (r *applicationRepository) List(ctx context.Context) ([]domain.Application, error) {
	const query = `SELECT id, name, created_at FROM applications ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Application
	for rows.Next() {
		var app domain.Application
		if err := rows.Scan(&app.ID, &app.Name, &app.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, app)
	}
	return result, rows.Err()
}

// MaterielRepository manages the hardware catalog.
type MaterielRepository interface {
	Create(ctx context.Context, materiel *domain.Materiel) error
	List(ctx context.Context) ([]domain.Materiel, error)
}

type materielRepository struct {
	pool *pgxpool.Pool
}

// NewMaterielRepository builds the repository.
func NewMaterielRepository(pool *pgxpool.Pool) MaterielRepository {
	return &materielRepository{pool: pool}
}

func (r *materielRepository) Create(ctx context.Context, materiel *domain.Materiel) error {
	const query = `INSERT INTO materiels (name) VALUES ($1) RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, materiel.Name).Scan(&materiel.ID, &materiel.CreatedAt)
}

func (r *materielRepository) List(ctx context.Context) ([]domain.Materiel, error) {
	const query = `SELECT id, name, created_at FROM materiels ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Materiel
	for rows.Next() {
		var materiel domain.Materiel
		if err := rows.Scan(&materiel.ID, &materiel.Name, &materiel.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, materiel)
	}
	return result, rows.Err()
}
