package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"job-board/domain/dto"
	"job-board/domain/model"
	"job-board/domain/repository"
	"job-board/infrastructure/logger"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const listingTable = "job_posts"

var listingColumns = []string{
	"id", "title", "company", "description", "location", "type", "status",
	"start_date", "end_date", "user_id", "created_at", "updated_at",
}

type ListingRepository struct {
	db *sql.DB
	qb sq.StatementBuilderType
}

func NewListingRepository(db *sql.DB) repository.IListing {
	return &ListingRepository{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// escapeLike makes user input literal inside an ILIKE pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func applyCriteria(b sq.SelectBuilder, c dto.ListingCriteria) sq.SelectBuilder {
	if c.OwnerID != nil {
		b = b.Where(sq.Eq{"user_id": *c.OwnerID})
	}
	f := c.Filter
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": f.Status})
	}
	if f.Type != "" {
		b = b.Where(sq.Eq{"type": f.Type})
	}
	if f.Company != "" {
		b = b.Where(sq.ILike{"company": escapeLike(f.Company)})
	}
	if f.Location != "" {
		b = b.Where(sq.ILike{"location": escapeLike(f.Location)})
	}
	if f.Search != "" {
		p := escapeLike(f.Search)
		b = b.Where(sq.Or{
			sq.ILike{"title": p},
			sq.ILike{"description": p},
			sq.ILike{"company": p},
		})
	}
	return b
}

func scanListing(row interface{ Scan(...interface{}) error }) (model.Listing, error) {
	var (
		l       model.Listing
		endDate sql.NullTime
	)
	err := row.Scan(&l.ID, &l.Title, &l.Company, &l.Description, &l.Location, &l.Type, &l.Status,
		&l.StartDate, &endDate, &l.UserID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return model.Listing{}, err
	}
	if endDate.Valid {
		t := endDate.Time
		l.EndDate = &t
	}
	return l, nil
}

// List returns rows ordered newest first, ties broken by id so consecutive
// pages never overlap.
func (r *ListingRepository) List(ctx context.Context, criteria dto.ListingCriteria, offset, limit int) ([]model.Listing, error) {
	b := applyCriteria(r.qb.Select(listingColumns...).From(listingTable), criteria).
		OrderBy("created_at DESC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while listing job posts")
		return nil, err
	}
	defer rows.Close()

	listings := make([]model.Listing, 0, limit)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *ListingRepository) Count(ctx context.Context, criteria dto.ListingCriteria) (int64, error) {
	query, args, err := applyCriteria(r.qb.Select("COUNT(*)").From(listingTable), criteria).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while counting job posts")
		return 0, err
	}
	return total, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Listing, error) {
	query, args, err := r.qb.Select(listingColumns...).From(listingTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Listing{}, fmt.Errorf("build get query: %w", err)
	}
	l, err := scanListing(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Listing{}, model.ErrListingNotFound
	}
	return l, err
}

func (r *ListingRepository) Create(ctx context.Context, l model.Listing) (model.Listing, error) {
	query, args, err := r.qb.Insert(listingTable).
		Columns("title", "company", "description", "location", "type", "status", "start_date", "end_date", "user_id").
		Values(l.Title, l.Company, l.Description, l.Location, string(l.Type), string(l.Status), l.StartDate, l.EndDate, l.UserID).
		Suffix("RETURNING " + strings.Join(listingColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Listing{}, fmt.Errorf("build insert: %w", err)
	}
	created, err := scanListing(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":   err,
			"user_id": l.UserID,
		}).Error("Error while creating job post")
		return model.Listing{}, err
	}
	return created, nil
}

func (r *ListingRepository) Update(ctx context.Context, ownerID uuid.UUID, l model.Listing) (model.Listing, error) {
	query, args, err := r.qb.Update(listingTable).
		Set("title", l.Title).
		Set("company", l.Company).
		Set("description", l.Description).
		Set("location", l.Location).
		Set("type", string(l.Type)).
		Set("status", string(l.Status)).
		Set("start_date", l.StartDate).
		Set("end_date", l.EndDate).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": l.ID, "user_id": ownerID}).
		Suffix("RETURNING " + strings.Join(listingColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Listing{}, fmt.Errorf("build update: %w", err)
	}
	updated, err := scanListing(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Listing{}, model.ErrListingNotFound
	}
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error": err,
			"id":    l.ID,
		}).Error("Error while updating job post")
	}
	return updated, err
}

func (r *ListingRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query, args, err := r.qb.Delete(listingTable).Where(sq.Eq{"id": id, "user_id": ownerID}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error": err,
			"id":    id,
		}).Error("Error while deleting job post")
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) SetStatus(ctx context.Context, ownerID, id uuid.UUID, status model.ListingStatus) (model.Listing, error) {
	query, args, err := r.qb.Update(listingTable).
		Set("status", string(status)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "user_id": ownerID}).
		Suffix("RETURNING " + strings.Join(listingColumns, ", ")).
		ToSql()
	if err != nil {
		return model.Listing{}, fmt.Errorf("build status update: %w", err)
	}
	l, err := scanListing(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Listing{}, model.ErrListingNotFound
	}
	return l, err
}
