package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"procurement-api/internal/entity"
	"procurement-api/internal/repo/repo_errors"
	"procurement-api/pkg/postgres"

	"github.com/google/uuid"
)

type ProductRepo struct {
	*postgres.Postgres
}

func NewProductRepo(pgdb *postgres.Postgres) *ProductRepo {
	return &ProductRepo{pgdb}
}

func (r *ProductRepo) GetProductById(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	sqlReq, args, _ := r.SqlBuilder.
		Select("id, code, name").
		From("product").
		Where("id = ?", id).
		ToSql()

	var product entity.Product
	err := r.Database.QueryRowContext(ctx, sqlReq, args...).Scan(&product.Id, &product.Code, &product.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return &product, nil
}

func (r *ProductRepo) GetProductByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.getProductByColumn(ctx, "code", code)
}

func (r *ProductRepo) GetProductByName(ctx context.Context, name string) (*entity.Product, error) {
	return r.getProductByColumn(ctx, "name", name)
}

// getProductByColumn matches case-insensitively on the trimmed value. A value
// matching more than one product returns ErrAmbiguous; the importer treats
// that the same as no match.
func (r *ProductRepo) getProductByColumn(ctx context.Context, column string, value string) (*entity.Product, error) {
	sqlReq, args, _ := r.SqlBuilder.
		Select("id, code, name").
		From("product").
		Where("lower(trim("+column+")) = lower(trim(?))", value).
		Limit(2).
		ToSql()

	rows, err := r.Database.QueryContext(ctx, sqlReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]entity.Product, 0, 2)
	for rows.Next() {
		var product entity.Product
		if err := rows.Scan(&product.Id, &product.Code, &product.Name); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(products) == 0 {
		return nil, repo_errors.ErrNotFound
	}
	if len(products) > 1 {
		return nil, repo_errors.ErrAmbiguous
	}

	return &products[0], nil
}
