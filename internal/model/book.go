package model

type Book struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Pages    int    `json:"pages"`
	Year     int    `json:"year"`
	ImageURL string `json:"imageUrl"`
	Favorite bool   `json:"favorite"`
}
