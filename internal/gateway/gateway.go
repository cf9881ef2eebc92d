// Package gateway defines the table-scoped query and mutation contract that the
// list controller consumes. internal/store implements it over GORM and
// internal/remote implements it over HTTP.
package gateway

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// Gateway is the remote data gateway.
type Gateway interface {
	List(ctx context.Context, table string, q Query) (Page, error)
	ExistsByName(ctx context.Context, table, name string, scope Scope, excludeID string) (bool, error)
	Insert(ctx context.Context, table string, fields Fields, actor string) (Row, error)
	Update(ctx context.Context, table, id string, fields Fields, actor string) (Row, error)
}

// Query is one filtered, sorted, paginated list request.
type Query struct {
	Search string            // case-insensitive substring on name
	Sort   string            // column; empty means the table default
	Desc   bool              // descending order
	Offset int               // rows to skip
	Limit  int               // 0 means no limit
	Eq     map[string]string // equality filters
}

// Page is one window of rows plus the total matching count.
type Page struct {
	Rows  []Row `json:"rows"`
	Total int64 `json:"total"`
}

// Scope restricts a uniqueness check to rows sharing a parent reference.
// The zero value means global uniqueness.
type Scope struct {
	Column string
	Value  string
}

// IsGlobal reports whether no parent column is set.
func (s Scope) IsGlobal() bool { return s.Column == "" }

// Fields are column values for insert/update.
type Fields map[string]any

// Row is a single record as returned by the gateway.
type Row map[string]any

// ID returns the row id.
func (r Row) ID() string { return r.String("id") }

// String renders a column for display; nil becomes "".
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format("2006-01-02 15:04")
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format("2006-01-02 15:04")
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Int reads an integer column regardless of how the backend typed it
// (int64 from SQL drivers, float64 from JSON, string from forms).
func (r Row) Int(col string) (int, bool) {
	return ToInt(r[col])
}

// ToInt converts common numeric representations to int.
func ToInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	case []byte:
		i, err := strconv.Atoi(string(n))
		return i, err == nil
	default:
		return 0, false
	}
}
