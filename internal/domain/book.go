package domain

// BookPage is one page of manuscript content.
type BookPage struct {
	Number  int
	Content string
}

// BookChapter groups the pages of one chapter, in page order.
type BookChapter struct {
	Name   string
	Number int
	Pages  []BookPage
}
