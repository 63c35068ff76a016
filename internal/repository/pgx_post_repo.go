package repository

import (
	"context"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/yakoovad/volunteer-board/internal/db"
	"strings"
	"time"
)

type Post struct {
	ID               string     `db:"id"`
	Title            string     `db:"title"`
	Category         string     `db:"category"`
	Description      string     `db:"description"`
	Location         string     `db:"location"`
	Thumbnail        string     `db:"thumbnail"`
	OrganizerName    string     `db:"organizer_name"`
	OrganizerEmail   string     `db:"organizer_email"`
	Deadline         time.Time  `db:"deadline"`
	VolunteersTotal  int        `db:"volunteers_total"`
	VolunteersNeeded int        `db:"volunteers_needed"`
	CreatedAt        *time.Time `db:"created_at"`
}

type PostOrder string

const (
	PostOrderCreated      PostOrder = ""
	PostOrderDeadlineAsc  PostOrder = "deadline_asc"
	PostOrderDeadlineDesc PostOrder = "deadline_desc"
)

// PostQuery selects posts. Zero values disable the corresponding clause.
type PostQuery struct {
	OrganizerEmail string
	Category       string
	// Search is matched case-insensitively as a substring of the title.
	Search string
	Order  PostOrder
	Limit  int
	Offset int
}

type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	Upsert(ctx context.Context, post *Post) error
	Get(ctx context.Context, id string) (*Post, error)
	// GetForUpdate locks the post row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*Post, error)
	List(ctx context.Context, q PostQuery) ([]*Post, error)
	Count(ctx context.Context, q PostQuery) (int64, error)
	Delete(ctx context.Context, id string) error
	// TakeSlot decrements the remaining counter by one when it is positive and
	// returns the new value. ErrNoSlotsLeft when the counter is already zero.
	TakeSlot(ctx context.Context, id string) (int, error)
	// ReleaseSlot gives a slot back without exceeding the total.
	ReleaseSlot(ctx context.Context, id string) error
}

var postColumns = []any{
	"id", "title", "category", "description", "location", "thumbnail",
	"organizer_name", "organizer_email", "deadline", "volunteers_total", "volunteers_needed", "created_at",
}

type pgxPostRepository struct {
	pool *pgxpool.Pool
}

func NewPgxPostRepository(pool *pgxpool.Pool) PostRepository {
	return &pgxPostRepository{pool: pool}
}

func scanPost(row pgx.Row) (*Post, error) {
	p := &Post{}
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Category,
		&p.Description,
		&p.Location,
		&p.Thumbnail,
		&p.OrganizerName,
		&p.OrganizerEmail,
		&p.Deadline,
		&p.VolunteersTotal,
		&p.VolunteersNeeded,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a post with every slot open and fills post.CreatedAt.
func (p *pgxPostRepository) Create(ctx context.Context, post *Post) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	post.VolunteersNeeded = post.VolunteersTotal

	q := psql.Insert(
		im.Into("posts", "id", "title", "category", "description", "location", "thumbnail",
			"organizer_name", "organizer_email", "deadline", "volunteers_total", "volunteers_needed"),
		im.Values(
			psql.Arg(post.ID), psql.Arg(post.Title), psql.Arg(post.Category), psql.Arg(post.Description),
			psql.Arg(post.Location), psql.Arg(post.Thumbnail), psql.Arg(post.OrganizerName),
			psql.Arg(post.OrganizerEmail), psql.Arg(post.Deadline), psql.Arg(post.VolunteersTotal),
			psql.Arg(post.VolunteersNeeded),
		),
		im.Returning("created_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	if err = e.QueryRow(ctx, sql, args...).Scan(&post.CreatedAt); err != nil {
		return mapPgError(err)
	}
	return nil
}

// Upsert replaces the post with the given id or inserts it. On replace the remaining
// counter is recomputed from the new total and the requests already made.
func (p *pgxPostRepository) Upsert(ctx context.Context, post *Post) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("posts", "id", "title", "category", "description", "location", "thumbnail",
			"organizer_name", "organizer_email", "deadline", "volunteers_total", "volunteers_needed"),
		im.Values(
			psql.Arg(post.ID), psql.Arg(post.Title), psql.Arg(post.Category), psql.Arg(post.Description),
			psql.Arg(post.Location), psql.Arg(post.Thumbnail), psql.Arg(post.OrganizerName),
			psql.Arg(post.OrganizerEmail), psql.Arg(post.Deadline), psql.Arg(post.VolunteersTotal),
			psql.Arg(post.VolunteersTotal),
		),
		im.OnConflict(psql.Quote("id")).DoUpdate(
			im.SetCol("title").ToArg(post.Title),
			im.SetCol("category").ToArg(post.Category),
			im.SetCol("description").ToArg(post.Description),
			im.SetCol("location").ToArg(post.Location),
			im.SetCol("thumbnail").ToArg(post.Thumbnail),
			im.SetCol("organizer_name").ToArg(post.OrganizerName),
			im.SetCol("organizer_email").ToArg(post.OrganizerEmail),
			im.SetCol("deadline").ToArg(post.Deadline),
			im.SetCol("volunteers_total").ToArg(post.VolunteersTotal),
			im.SetCol("volunteers_needed").To(psql.Raw(
				"GREATEST(EXCLUDED.volunteers_total - (SELECT count(*) FROM requests r WHERE r.post_id = posts.id), 0)",
			)),
		),
		im.Returning(postColumns...),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	saved, err := scanPost(e.QueryRow(ctx, sql, args...))
	if err != nil {
		return mapPgError(err)
	}
	*post = *saved
	return nil
}

func (p *pgxPostRepository) Get(ctx context.Context, id string) (*Post, error) {
	return p.get(ctx, id, false)
}

func (p *pgxPostRepository) GetForUpdate(ctx context.Context, id string) (*Post, error) {
	return p.get(ctx, id, true)
}

func (p *pgxPostRepository) get(ctx context.Context, id string, lock bool) (*Post, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(postColumns...),
		sm.From("posts"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	if lock {
		q.Apply(sm.ForUpdate("posts"))
	}

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	post, err := scanPost(e.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

func (p *pgxPostRepository) List(ctx context.Context, pq PostQuery) ([]*Post, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(postColumns...),
		sm.From("posts"),
	)
	q.Apply(postFilters(pq)...)

	switch pq.Order {
	case PostOrderDeadlineAsc:
		q.Apply(sm.OrderBy("deadline").Asc())
	case PostOrderDeadlineDesc:
		q.Apply(sm.OrderBy("deadline").Desc())
	}
	// Ties and unsorted listings fall back to insertion order so offsets stay stable.
	q.Apply(sm.OrderBy("created_at").Asc(), sm.OrderBy("id").Asc())

	if pq.Limit > 0 {
		q.Apply(sm.Limit(psql.Arg(pq.Limit)))
	}
	if pq.Offset > 0 {
		q.Apply(sm.Offset(psql.Arg(pq.Offset)))
	}

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Post, error) {
		return scanPost(row)
	})
	if err != nil {
		return nil, err
	}

	return posts, nil
}

func (p *pgxPostRepository) Count(ctx context.Context, pq PostQuery) (int64, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("count(*)"),
		sm.From("posts"),
	)
	q.Apply(postFilters(pq)...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	if err = e.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (p *pgxPostRepository) Delete(ctx context.Context, id string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("posts"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
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

func (p *pgxPostRepository) TakeSlot(ctx context.Context, id string) (int, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("posts"),
		um.SetCol("volunteers_needed").To(psql.Raw("volunteers_needed - 1")),
		um.Where(
			psql.Quote("id").EQ(psql.Arg(id)).
				And(psql.Quote("volunteers_needed").GT(psql.Arg(0))),
		),
		um.Returning("volunteers_needed"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return 0, err
	}

	var remaining int
	if err = e.QueryRow(ctx, sql, args...).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNoSlotsLeft
		}
		return 0, err
	}
	return remaining, nil
}

func (p *pgxPostRepository) ReleaseSlot(ctx context.Context, id string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("posts"),
		um.SetCol("volunteers_needed").To(psql.Raw("volunteers_needed + 1")),
		um.Where(
			psql.Quote("id").EQ(psql.Arg(id)).
				And(psql.Quote("volunteers_needed").LT(psql.Quote("volunteers_total"))),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)
	return err
}

func postFilters(pq PostQuery) []bob.Mod[*dialect.SelectQuery] {
	mods := make([]bob.Mod[*dialect.SelectQuery], 0, 3)

	if pq.OrganizerEmail != "" {
		mods = append(mods, sm.Where(psql.Quote("organizer_email").EQ(psql.Arg(pq.OrganizerEmail))))
	}
	if pq.Category != "" {
		mods = append(mods, sm.Where(psql.Quote("category").EQ(psql.Arg(pq.Category))))
	}
	if pq.Search != "" {
		mods = append(mods, sm.Where(psql.Raw("title ILIKE ?", likePattern(pq.Search))))
	}

	return mods
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns user input into a substring pattern, escaping LIKE wildcards.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
