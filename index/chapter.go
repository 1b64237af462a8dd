package index

// Chapter is one reading order entry of an ingested book. Number starts
// at 1 and follows the spine, SpineIndex is the zero based position the
// entry had in it.
type Chapter struct {
	Number     int    `json:"number"`
	SpineIndex int    `json:"spineIndex"`
	Title      string `json:"title,omitempty"`
	Path       string `json:"path,omitempty"`
	WordCount  int    `json:"wordCount"`
	Content    string `json:"content,omitempty"`
}

const chapterTableDef = `CREATE TABLE IF NOT EXISTS chapter (
	book_id varchar(255) NOT NULL,
	number int NOT NULL,
	spine_index int NOT NULL,
	title text,
	path varchar(255),
	word_count int NOT NULL,
	content text,
	PRIMARY KEY (book_id, number) )`

// AddChapters inserts the chapters of a book, one row each.
func (i dbIndex) AddChapters(bookID string, chapters []Chapter) error {
	for _, c := range chapters {
		_, err := i.addChapter.Exec(bookID, c.Number, c.SpineIndex, c.Title, c.Path, c.WordCount, c.Content)
		if err != nil {
			return err
		}
	}
	return nil
}

// Chapters lists the chapters of a book in reading order, content
// omitted.
func (i dbIndex) Chapters(bookID string) ([]Chapter, error) {
	rows, err := i.chapters.Query(bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Chapter
	for rows.Next() {
		var c Chapter
		err = rows.Scan(&c.Number, &c.SpineIndex, &c.Title, &c.Path, &c.WordCount)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Chapter returns one chapter of a book, content included.
func (i dbIndex) Chapter(bookID string, number int) (Chapter, error) {
	records, err := i.chapter.Query(bookID, number)
	if err != nil {
		return Chapter{}, err
	}
	defer records.Close()
	if records.Next() {
		var c Chapter
		err = records.Scan(&c.Number, &c.SpineIndex, &c.Title, &c.Path, &c.WordCount, &c.Content)
		return c, err
	}
	return Chapter{}, ErrNotFound
}
