package index

import (
	"database/sql"
	"errors"
	"time"

	"github.com/readium/readium-shelf-server/config"
	"github.com/readium/readium-shelf-server/dbutils"
)

// Book statuses, in the order ingestion moves through them.
const (
	StatusProcessing string = "processing"
	StatusReady      string = "ready"
	StatusError      string = "error"
)

// ErrNotFound is returned when the requested book is not in the catalog.
var ErrNotFound = errors.New("book not found")

// Index is the book catalog.
type Index interface {
	Get(id string) (Book, error)
	Add(b Book) error
	SetStatus(id string, status string) error
	Delete(id string) error
	List(limit int, offset int) func() (Book, error)
	AddChapters(bookID string, chapters []Chapter) error
	Chapters(bookID string) ([]Chapter, error)
	Chapter(bookID string, number int) (Chapter, error)
}

// Book is one catalog row: the normalized metadata of an ingested
// publication plus its ingestion summary.
type Book struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Status       string    `json:"status"`
	Title        string    `json:"title"`
	Author       string    `json:"author,omitempty"`
	Authors      string    `json:"authors,omitempty"`
	Publisher    string    `json:"publisher,omitempty"`
	Language     string    `json:"language,omitempty"`
	Isbn         string    `json:"isbn,omitempty"`
	Description  string    `json:"description,omitempty"`
	Subjects     string    `json:"subjects,omitempty"`
	Date         string    `json:"date,omitempty"`
	Rights       string    `json:"rights,omitempty"`
	Version      string    `json:"version,omitempty"`
	CoverExt     string    `json:"coverExt,omitempty"`
	WordCount    int       `json:"wordCount"`
	ChapterCount int       `json:"chapterCount"`
	ReadingTime  string    `json:"readingTime,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type dbIndex struct {
	db *sql.DB

	get       *sql.Stmt
	add       *sql.Stmt
	setStatus *sql.Stmt
	delete    *sql.Stmt
	list      *sql.Stmt

	addChapter     *sql.Stmt
	chapters       *sql.Stmt
	chapter        *sql.Stmt
	deleteChapters *sql.Stmt
}

const bookColumns = "id, filename, status, title, author, authors, publisher, language, isbn, description, subjects, date, rights, version, cover_ext, word_count, chapter_count, reading_time, created_at"

const bookTableDef = `CREATE TABLE IF NOT EXISTS book (
	id varchar(255) PRIMARY KEY,
	filename varchar(255) NOT NULL,
	status varchar(255) NOT NULL,
	title text NOT NULL,
	author text,
	authors text,
	publisher text,
	language varchar(255),
	isbn varchar(255),
	description text,
	subjects text,
	date varchar(255),
	rights text,
	version varchar(255),
	cover_ext varchar(255),
	word_count int NOT NULL,
	chapter_count int NOT NULL,
	reading_time varchar(255),
	created_at datetime NOT NULL )`

func scanBook(records *sql.Rows) (Book, error) {
	var b Book
	err := records.Scan(&b.ID, &b.Filename, &b.Status, &b.Title, &b.Author, &b.Authors,
		&b.Publisher, &b.Language, &b.Isbn, &b.Description, &b.Subjects, &b.Date,
		&b.Rights, &b.Version, &b.CoverExt, &b.WordCount, &b.ChapterCount,
		&b.ReadingTime, &b.CreatedAt)
	return b, err
}

// Get returns the book with the given id.
func (i dbIndex) Get(id string) (Book, error) {
	records, err := i.get.Query(id)
	if err != nil {
		return Book{}, err
	}
	defer records.Close()
	if records.Next() {
		return scanBook(records)
	}
	return Book{}, ErrNotFound
}

// Add inserts a new catalog row.
func (i dbIndex) Add(b Book) error {
	_, err := i.add.Exec(b.ID, b.Filename, b.Status, b.Title, b.Author, b.Authors,
		b.Publisher, b.Language, b.Isbn, b.Description, b.Subjects, b.Date,
		b.Rights, b.Version, b.CoverExt, b.WordCount, b.ChapterCount,
		b.ReadingTime, b.CreatedAt)
	return err
}

// SetStatus moves the book to the given status.
func (i dbIndex) SetStatus(id string, status string) error {
	result, err := i.setStatus.Exec(status, id)
	if err != nil {
		return err
	}
	if count, err := result.RowsAffected(); err == nil && count == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a book and its chapters from the catalog.
func (i dbIndex) Delete(id string) error {
	if _, err := i.deleteChapters.Exec(id); err != nil {
		return err
	}
	result, err := i.delete.Exec(id)
	if err != nil {
		return err
	}
	if count, err := result.RowsAffected(); err == nil && count == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns an iterator over one page of the catalog, newest first.
// The iterator ends with ErrNotFound.
func (i dbIndex) List(limit int, offset int) func() (Book, error) {
	rows, err := i.list.Query(limit, offset)
	if err != nil {
		return func() (Book, error) { return Book{}, err }
	}
	return func() (Book, error) {
		if rows.Next() {
			return scanBook(rows)
		}
		rows.Close()
		return Book{}, ErrNotFound
	}
}

// Open creates the catalog tables when needed and prepares the
// statements the catalog runs.
func Open(db *sql.DB) (i Index, err error) {
	d := config.Config.ShelfServer.Database

	_, err = db.Exec(bookTableDef)
	if err != nil {
		return
	}
	_, err = db.Exec(chapterTableDef)
	if err != nil {
		return
	}

	get, err := db.Prepare(dbutils.GetParamQuery(d, "SELECT "+bookColumns+" FROM book WHERE id = ? LIMIT 1"))
	if err != nil {
		return
	}
	add, err := db.Prepare(dbutils.GetParamQuery(d, "INSERT INTO book ("+bookColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"))
	if err != nil {
		return
	}
	setStatus, err := db.Prepare(dbutils.GetParamQuery(d, "UPDATE book SET status = ? WHERE id = ?"))
	if err != nil {
		return
	}
	delete, err := db.Prepare(dbutils.GetParamQuery(d, "DELETE FROM book WHERE id = ?"))
	if err != nil {
		return
	}
	list, err := db.Prepare(dbutils.GetParamQuery(d, "SELECT "+bookColumns+" FROM book ORDER BY created_at DESC LIMIT ? OFFSET ?"))
	if err != nil {
		return
	}
	addChapter, err := db.Prepare(dbutils.GetParamQuery(d, "INSERT INTO chapter (book_id, number, spine_index, title, path, word_count, content) VALUES (?, ?, ?, ?, ?, ?, ?)"))
	if err != nil {
		return
	}
	chapters, err := db.Prepare(dbutils.GetParamQuery(d, "SELECT number, spine_index, title, path, word_count FROM chapter WHERE book_id = ? ORDER BY number"))
	if err != nil {
		return
	}
	chapter, err := db.Prepare(dbutils.GetParamQuery(d, "SELECT number, spine_index, title, path, word_count, content FROM chapter WHERE book_id = ? AND number = ? LIMIT 1"))
	if err != nil {
		return
	}
	deleteChapters, err := db.Prepare(dbutils.GetParamQuery(d, "DELETE FROM chapter WHERE book_id = ?"))
	if err != nil {
		return
	}

	i = dbIndex{db: db, get: get, add: add, setStatus: setStatus, delete: delete, list: list,
		addChapter: addChapter, chapters: chapters, chapter: chapter, deleteChapters: deleteChapters}
	return
}
