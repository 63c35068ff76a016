package repository

import (
	"context"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/yakoovad/volunteer-board/internal/db"
	"github.com/yakoovad/volunteer-board/internal/model"
	"time"
)

type Request struct {
	ID             string              `db:"id"`
	PostID         string              `db:"post_id"`
	VolunteerEmail string              `db:"volunteer_email"`
	VolunteerName  string              `db:"volunteer_name"`
	OrganizerEmail string              `db:"organizer_email"`
	Suggestion     string              `db:"suggestion"`
	Status         model.RequestStatus `db:"status"`
	CreatedAt      *time.Time          `db:"created_at"`
}

type RequestRepository interface {
	// Create inserts the request unless the volunteer already has one against the
	// same post, in which case ErrAlreadyExists is returned and nothing is written.
	Create(ctx context.Context, req *Request) error
	// GetForUpdate locks the (volunteer, post) request until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, volunteerEmail, postID string) (*Request, error)
	ListByOrganizer(ctx context.Context, organizerEmail string) ([]*Request, error)
	ListByVolunteer(ctx context.Context, volunteerEmail string) ([]*Request, error)
	Delete(ctx context.Context, volunteerEmail, postID string) error
}

var requestColumns = []any{
	"id", "post_id", "volunteer_email", "volunteer_name", "organizer_email", "suggestion", "status", "created_at",
}

type pgxRequestRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &pgxRequestRepository{pool: pool}
}

func scanRequest(row pgx.Row) (*Request, error) {
	r := &Request{}
	if err := row.Scan(
		&r.ID,
		&r.PostID,
		&r.VolunteerEmail,
		&r.VolunteerName,
		&r.OrganizerEmail,
		&r.Suggestion,
		&r.Status,
		&r.CreatedAt,
	); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *pgxRequestRepository) Create(ctx context.Context, req *Request) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("requests", "id", "post_id", "volunteer_email", "volunteer_name", "organizer_email", "suggestion", "status"),
		im.Values(
			psql.Arg(req.ID), psql.Arg(req.PostID), psql.Arg(req.VolunteerEmail), psql.Arg(req.VolunteerName),
			psql.Arg(req.OrganizerEmail), psql.Arg(req.Suggestion), psql.Arg(req.Status),
		),
		im.OnConflict(psql.Quote("volunteer_email"), psql.Quote("post_id")).DoNothing(),
		im.Returning("created_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	if err = e.QueryRow(ctx, sql, args...).Scan(&req.CreatedAt); err != nil {
		// DO NOTHING returns no row when the pair is already taken.
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAlreadyExists
		}
		return mapPgError(err)
	}
	return nil
}

func (p *pgxRequestRepository) GetForUpdate(ctx context.Context, volunteerEmail, postID string) (*Request, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(requestColumns...),
		sm.From("requests"),
		sm.Where(
			psql.Quote("volunteer_email").EQ(psql.Arg(volunteerEmail)).
				And(psql.Quote("post_id").EQ(psql.Arg(postID))),
		),
		sm.ForUpdate("requests"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	req, err := scanRequest(e.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (p *pgxRequestRepository) ListByOrganizer(ctx context.Context, organizerEmail string) ([]*Request, error) {
	return p.listBy(ctx, "organizer_email", organizerEmail)
}

func (p *pgxRequestRepository) ListByVolunteer(ctx context.Context, volunteerEmail string) ([]*Request, error) {
	return p.listBy(ctx, "volunteer_email", volunteerEmail)
}

func (p *pgxRequestRepository) listBy(ctx context.Context, column, email string) ([]*Request, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(requestColumns...),
		sm.From("requests"),
		sm.Where(psql.Quote(column).EQ(psql.Arg(email))),
		sm.OrderBy("created_at").Asc(),
		sm.OrderBy("id").Asc(),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Request, error) {
		return scanRequest(row)
	})
}

func (p *pgxRequestRepository) Delete(ctx context.Context, volunteerEmail, postID string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("requests"),
		dm.Where(
			psql.Quote("volunteer_email").EQ(psql.Arg(volunteerEmail)).
				And(psql.Quote("post_id").EQ(psql.Arg(postID))),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	commandTag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}

	if commandTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
