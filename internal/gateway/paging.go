package gateway

import "context"

// DefaultPageSize is used by ListAll when no page size is given.
const DefaultPageSize = 200

// ListAll pages through every row matching q. On error the rows fetched so
// far are returned with it.
func ListAll(ctx context.Context, gw Gateway, table string, q Query, pageSize int) ([]Row, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	var all []Row
	q.Limit = pageSize
	for q.Offset = 0; ; q.Offset += pageSize {
		page, err := gw.List(ctx, table, q)
		if err != nil {
			return all, err
		}
		all = append(all, page.Rows...)
		if len(page.Rows) == 0 || int64(q.Offset+len(page.Rows)) >= page.Total {
			return all, nil
		}
	}
}
