package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"energy-admin/internal/gateway"
	"energy-admin/internal/resource"
)

// GormStore implements gateway.Gateway on top of GORM. Tables and columns are
// resolved through the resource registry; nothing from the caller reaches SQL
// as an identifier without being checked against a descriptor.
type GormStore struct {
	db  *gorm.DB
	reg *resource.Registry
	now func() time.Time

	mu      sync.Mutex
	entropy io.Reader
}

var _ gateway.Gateway = (*GormStore)(nil)

// NewGormStore creates a new GORM-backed gateway.
func NewGormStore(db *gorm.DB, reg *resource.Registry) *GormStore {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &GormStore{
		db:      db,
		reg:     reg,
		now:     func() time.Time { return time.Now().UTC() },
		entropy: ulid.Monotonic(src, 0),
	}
}

func (s *GormStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

func col(name string) clause.Column { return clause.Column{Name: name} }

// likePattern escapes LIKE wildcards so the term matches literally.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToUpper(term)) + "%"
}

// List returns one page of rows and the total number of matching rows.
func (s *GormStore) List(ctx context.Context, table string, q gateway.Query) (gateway.Page, error) {
	d, err := s.reg.Get(table)
	if err != nil {
		return gateway.Page{}, err
	}
	sortCol := q.Sort
	if sortCol == "" {
		sortCol = d.DefaultSort
	}
	if !d.Sortable(sortCol) {
		return gateway.Page{}, fmt.Errorf("%w: cannot sort %s by %q", gateway.ErrUnknownColumn, table, sortCol)
	}
	for c := range q.Eq {
		if !d.Filterable(c) {
			return gateway.Page{}, fmt.Errorf("%w: cannot filter %s by %q", gateway.ErrUnknownColumn, table, c)
		}
	}

	base := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Table(table)
		if term := strings.TrimSpace(q.Search); term != "" {
			// names are stored uppercase, so UPPER keeps non-ASCII letters comparable on SQLite too
			tx = tx.Where(clause.Expr{SQL: `UPPER(?) LIKE ? ESCAPE '\'`, Vars: []any{col("name"), likePattern(term)}})
		}
		for c, v := range q.Eq {
			tx = tx.Where(clause.Eq{Column: col(c), Value: v})
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return gateway.Page{}, fmt.Errorf("count %s: %w", table, err)
	}

	tx := base().
		Order(clause.OrderByColumn{Column: col(sortCol), Desc: q.Desc}).
		Order(clause.OrderByColumn{Column: col("id"), Desc: q.Desc})
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return gateway.Page{}, fmt.Errorf("list %s: %w", table, err)
	}

	page := gateway.Page{Rows: make([]gateway.Row, 0, len(rows)), Total: total}
	for _, r := range rows {
		page.Rows = append(page.Rows, normalizeRow(r))
	}
	return page, nil
}

// ExistsByName reports whether another row already uses name within scope.
func (s *GormStore) ExistsByName(ctx context.Context, table, name string, scope gateway.Scope, excludeID string) (bool, error) {
	d, err := s.reg.Get(table)
	if err != nil {
		return false, err
	}
	tx := s.db.WithContext(ctx).Table(table).Where(clause.Eq{Column: col("name"), Value: name})
	if !scope.IsGlobal() {
		if !d.Filterable(scope.Column) {
			return false, fmt.Errorf("%w: cannot scope %s by %q", gateway.ErrUnknownColumn, table, scope.Column)
		}
		tx = tx.Where(clause.Eq{Column: col(scope.Column), Value: scope.Value})
	}
	if excludeID != "" {
		tx = tx.Where(clause.Neq{Column: col("id"), Value: excludeID})
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return false, fmt.Errorf("exists %s: %w", table, err)
	}
	return n > 0, nil
}

// Insert creates a row owned by actor.
func (s *GormStore) Insert(ctx context.Context, table string, fields gateway.Fields, actor string) (gateway.Row, error) {
	if actor == "" {
		return nil, gateway.ErrNotAuthenticated
	}
	d, err := s.reg.Get(table)
	if err != nil {
		return nil, err
	}
	values, err := s.writable(ctx, d, fields)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	values["id"] = id
	values["created_at"] = s.now()
	values["created_by"] = actor

	if err := s.db.WithContext(ctx).Table(table).Create(values).Error; err != nil {
		return nil, translate(d, err)
	}
	return s.get(ctx, table, id)
}

// Update overwrites the given fields of row id and stamps the editor.
func (s *GormStore) Update(ctx context.Context, table, id string, fields gateway.Fields, actor string) (gateway.Row, error) {
	if actor == "" {
		return nil, gateway.ErrNotAuthenticated
	}
	d, err := s.reg.Get(table)
	if err != nil {
		return nil, err
	}
	values, err := s.writable(ctx, d, fields)
	if err != nil {
		return nil, err
	}
	values["updated_at"] = s.now()
	values["updated_by"] = actor

	res := s.db.WithContext(ctx).Table(table).
		Where(clause.Eq{Column: col("id"), Value: id}).
		Updates(values)
	if res.Error != nil {
		return nil, translate(d, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%s %s: %w", table, id, gateway.ErrNotFound)
	}
	return s.get(ctx, table, id)
}

// writable keeps descriptor fields only and verifies that referenced parents exist.
func (s *GormStore) writable(ctx context.Context, d *resource.Descriptor, fields gateway.Fields) (map[string]any, error) {
	values := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		if _, ok := d.Field(k); !ok {
			return nil, &gateway.ValidationError{Fields: []gateway.FieldError{
				{Code: gateway.CodeInvalid, Field: k, Message: "unknown field"},
			}}
		}
		values[k] = v
	}

	var missing []gateway.FieldError
	for _, p := range d.Parents() {
		v, ok := values[p.Name]
		if !ok {
			continue
		}
		var n int64
		if err := s.db.WithContext(ctx).Table(p.Ref).Where(clause.Eq{Column: col("id"), Value: v}).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("lookup %s: %w", p.Ref, err)
		}
		if n == 0 {
			missing = append(missing, gateway.FieldError{Code: gateway.CodeRefNotFound, Field: p.Name, Message: p.Label + " does not exist"})
		}
	}
	if len(missing) > 0 {
		return nil, &gateway.ValidationError{Fields: missing}
	}
	return values, nil
}

func (s *GormStore) get(ctx context.Context, table, id string) (gateway.Row, error) {
	var rows []map[string]any
	if err := s.db.WithContext(ctx).Table(table).Where(clause.Eq{Column: col("id"), Value: id}).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get %s %s: %w", table, id, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s %s: %w", table, id, gateway.ErrNotFound)
	}
	return normalizeRow(rows[0]), nil
}

func normalizeRow(r map[string]any) gateway.Row {
	row := make(gateway.Row, len(r))
	for k, v := range r {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row[k] = v
	}
	return row
}

const sqliteUnique = "UNIQUE constraint failed: "

// translate maps driver uniqueness violations to *gateway.ConflictError.
func translate(d *resource.Descriptor, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &gateway.ConflictError{
			Table:      d.Table,
			Field:      d.ConflictField(pgErr.ConstraintName, nil),
			Constraint: pgErr.ConstraintName,
			Err:        err,
		}
	}
	if i := strings.Index(err.Error(), sqliteUnique); i >= 0 {
		cols := strings.Split(err.Error()[i+len(sqliteUnique):], ", ")
		return &gateway.ConflictError{
			Table:      d.Table,
			Field:      d.ConflictField("", cols),
			Constraint: strings.Join(cols, ","),
			Err:        err,
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &gateway.ConflictError{Table: d.Table, Err: err}
	}
	return fmt.Errorf("write %s: %w", d.Table, err)
}
