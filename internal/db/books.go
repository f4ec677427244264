package db

import (
	"context"

	"github.com/fotowand/backend/internal/model"
)

const listBooksQuery = `
	SELECT b.id, b.title, a.name, b.pages, b.year, b.image_url, b.favorite
	FROM books b
	JOIN authors a ON a.id = b.author_id
	ORDER BY b.id
`

func (db *Postgres) ListBooks(ctx context.Context) ([]model.Book, error) {
	rows, err := db.Pool.Query(ctx, listBooksQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []model.Book{}
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Pages, &b.Year, &b.ImageURL, &b.Favorite); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
