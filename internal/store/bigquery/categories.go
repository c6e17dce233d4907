package bigquery

import (
	"context"
	"fmt"

	"google.golang.org/api/iterator"

	"github.com/kayuse/usekudibackend/internal/domain"
)

func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	q := s.client.Query(`
		SELECT
			category_id,
			name,
			icon,
			description
		FROM ` + s.tableRef(categoriesTable) + `
		ORDER BY name
	`)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: query read: %w", err)
	}

	var categories []*domain.Category
	for {
		var row CategoryRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCategories: iter next: %w", err)
		}
		categories = append(categories, row.toDomain())
	}
	return categories, nil
}
