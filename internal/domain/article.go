package domain

import "time"

// FeedDescriptor описывает одну настроенную RSS-ленту.
// Имя уникально в пределах конфигурации и используется как ключ в хранилище.
type FeedDescriptor struct {
	Name string
	URL  string
}

// Entry - одна запись ленты в том порядке, в котором её отдал источник.
type Entry struct {
	Title string
	Link  string
}

// Article - новая, ранее не виденная статья, найденная за цикл опроса.
type Article struct {
	Feed  string `json:"feed"`
	Title string `json:"title"`
	Link  string `json:"link"`
}

// SeenRecord - сохраненное доказательство того, что пара (Feed, Link) уже была отправлена.
// Записи только добавляются и никогда не меняются.
type SeenRecord struct {
	Feed   string    `json:"feed"`
	Title  string    `json:"title"`
	Link   string    `json:"link"`
	SeenAt time.Time `json:"seen_at"`
}

// Article превращает запись в статью для рассылки.
func (r SeenRecord) Article() Article {
	return Article{Feed: r.Feed, Title: r.Title, Link: r.Link}
}
