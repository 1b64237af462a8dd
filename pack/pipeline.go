// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package pack

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/rickb777/date/period"
	uuid "github.com/satori/go.uuid"

	"github.com/readium/readium-shelf-server/config"
	"github.com/readium/readium-shelf-server/epub"
	"github.com/readium/readium-shelf-server/index"
	"github.com/readium/readium-shelf-server/logging"
	"github.com/readium/readium-shelf-server/storage"
)

// Fallbacks for the ingestion section of the configuration.
const (
	DefaultConcurrency    = 4
	DefaultWordsPerMinute = 260
	DefaultThumbnailWidth = 360
)

type Source interface {
	Feed(chan<- *Task)
}

type Task struct {
	Name string
	Body io.ReaderAt
	Size int64
	done chan Result
}

func NewTask(name string, body io.ReaderAt, size int64) *Task {
	return &Task{Name: name, Body: body, Size: size, done: make(chan Result, 1)}
}

type Result struct {
	Error   error
	ID      string
	Elapsed time.Duration
}

func (t *Task) Wait() Result {
	r := <-t.done
	return r
}

func (t *Task) Done(r Result) {
	t.done <- r
}

type ManualSource struct {
	ch chan<- *Task
}

func (s *ManualSource) Feed(ch chan<- *Task) {
	s.ch = ch
}

func (s *ManualSource) Post(t *Task) Result {
	s.ch <- t
	return t.Wait()
}

type Ingester struct {
	Incoming chan *Task
	done     chan struct{}
	store    storage.Store
	idx      index.Index
}

// coverFiles is the cover selected for a book, plus its thumbnail when
// one could be generated.
type coverFiles struct {
	ext   string
	data  []byte
	thumb []byte
}

// diagnostics routes the non fatal findings of the epub core to the
// server log, prefixed with the book id.
type diagnostics struct {
	id string
}

func (d diagnostics) Infof(format string, args ...interface{}) {
	logging.Printf(d.id+": "+format, args...)
}

func (d diagnostics) Warnf(format string, args ...interface{}) {
	logging.Printf(d.id+": "+format, args...)
}

func (p Ingester) work() {
	for t := range p.Incoming {
		logging.Print("Ingesting an incoming EPUB, " + t.Name)
		r := Result{}
		start := time.Now()

		raw := p.readAll(&r, t.Body, t.Size)
		p.genID(&r)
		ing := p.ingest(&r, raw)
		cover := p.makeCover(&r, raw, ing)
		p.register(&r, t.Name, ing, cover)
		registered := r.Error == nil
		p.storeOriginal(&r, raw)
		p.storeAssets(&r, ing)
		p.storeCover(&r, cover)
		p.addChapters(&r, ing)
		p.finish(&r, registered)

		r.Elapsed = time.Since(start)
		t.Done(r)
	}
}

func (p Ingester) readAll(r *Result, in io.ReaderAt, size int64) []byte {
	buf := make([]byte, size)
	if _, err := in.ReadAt(buf, 0); err != nil && err != io.EOF {
		r.Error = err
		return nil
	}
	return buf
}

func (p Ingester) genID(r *Result) {
	if r.Error != nil {
		return
	}

	uid, err := uuid.NewV4()
	if err != nil {
		r.Error = err
		return
	}
	r.ID = uid.String()
}

func (p Ingester) ingest(r *Result, raw []byte) *epub.Ingestion {
	if r.Error != nil {
		return nil
	}

	ing, err := epub.Ingest(raw, diagnostics{id: r.ID})
	r.Error = err
	return ing
}

// makeCover keeps the cover inferred from the publication itself. When
// there is none and the fallback is enabled, the first page is rendered
// instead. Runs before the book is registered so the catalog row carries
// the final cover extension.
func (p Ingester) makeCover(r *Result, raw []byte, ing *epub.Ingestion) *coverFiles {
	if r.Error != nil {
		return nil
	}

	cover := &coverFiles{}
	if ing.Cover != nil {
		cover.ext = ing.Cover.Ext
		cover.data = ing.Cover.Data
	} else if config.Config.Ingestion.RenderedCoverFallback {
		data, err := renderFirstPage(raw)
		if err != nil {
			logging.Print("Cover render failed for " + r.ID + ": " + err.Error())
			return nil
		}
		cover.ext = ".jpg"
		cover.data = data
	} else {
		return nil
	}

	width := config.Config.Ingestion.ThumbnailWidth
	if width == 0 {
		width = DefaultThumbnailWidth
	}
	thumb, err := makeThumbnail(cover.data, width)
	if err != nil {
		// not an image the thumbnailer can read, keep the original only
		logging.Print("Thumbnail failed for " + r.ID + ": " + err.Error())
	} else {
		cover.thumb = thumb
	}
	return cover
}

// register inserts the catalog row, in processing status, before any
// file is stored. Stored files therefore always have a row, and the
// sweep can treat keys without one as orphans.
func (p Ingester) register(r *Result, name string, ing *epub.Ingestion, cover *coverFiles) {
	if r.Error != nil {
		return
	}

	md := ing.Book.Metadata
	words := 0
	for _, c := range ing.Chapters {
		words += c.WordCount
	}
	b := index.Book{
		ID:           r.ID,
		Filename:     name,
		Status:       index.StatusProcessing,
		Title:        md.Title,
		Author:       md.Author,
		Authors:      strings.Join(md.Authors, ", "),
		Publisher:    md.Publisher,
		Language:     md.Language,
		Isbn:         md.Isbn,
		Description:  md.Description,
		Subjects:     strings.Join(md.Subjects, ", "),
		Date:         md.Date,
		Rights:       md.Rights,
		Version:      md.Version,
		WordCount:    words,
		ChapterCount: len(ing.Chapters),
		ReadingTime:  readingTime(words),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if cover != nil {
		b.CoverExt = cover.ext
	}
	r.Error = p.idx.Add(b)
}

func (p Ingester) storeOriginal(r *Result, raw []byte) {
	if r.Error != nil {
		return
	}

	_, r.Error = p.store.Add(r.ID+"/book.epub", bytes.NewReader(raw))
}

func (p Ingester) storeAssets(r *Result, ing *epub.Ingestion) {
	if r.Error != nil {
		return
	}

	for href, data := range ing.Assets {
		if _, err := p.store.Add(r.ID+"/assets/"+href, bytes.NewReader(data)); err != nil {
			r.Error = err
			return
		}
	}
}

func (p Ingester) storeCover(r *Result, cover *coverFiles) {
	if r.Error != nil || cover == nil {
		return
	}

	if _, err := p.store.Add(r.ID+"/cover"+cover.ext, bytes.NewReader(cover.data)); err != nil {
		r.Error = err
		return
	}
	if cover.thumb != nil {
		_, r.Error = p.store.Add(r.ID+"/cover_thumb.jpg", bytes.NewReader(cover.thumb))
	}
}

func (p Ingester) addChapters(r *Result, ing *epub.Ingestion) {
	if r.Error != nil {
		return
	}

	chapters := make([]index.Chapter, len(ing.Chapters))
	for i, c := range ing.Chapters {
		chapters[i] = index.Chapter{
			Number:     c.Number,
			SpineIndex: c.SpineIndex,
			Title:      c.Title,
			Path:       c.Path,
			WordCount:  c.WordCount,
			Content:    c.Content,
		}
	}
	r.Error = p.idx.AddChapters(r.ID, chapters)
}

// finish marks the book ready, or flags the row when a stage failed
// after registration. The row keeps its error status for inspection;
// its files go away with it on deletion.
func (p Ingester) finish(r *Result, registered bool) {
	if r.Error == nil {
		r.Error = p.idx.SetStatus(r.ID, index.StatusReady)
		return
	}
	if registered {
		if err := p.idx.SetStatus(r.ID, index.StatusError); err != nil {
			logging.Print("Cannot mark " + r.ID + " as failed: " + err.Error())
		}
	}
}

// readingTime estimates the time needed to read the given number of
// words, as an ISO 8601 duration.
func readingTime(words int) string {
	wpm := config.Config.Ingestion.WordsPerMinute
	if wpm == 0 {
		wpm = DefaultWordsPerMinute
	}
	mins := words / wpm
	if words%wpm != 0 {
		mins++
	}
	return period.NewHMS(mins/60, mins%60, 0).String()
}

// NewIngester waits for incoming EPUB files, ingests them and adds them to the shelf
func NewIngester(store storage.Store, idx index.Index, concurrency int) *Ingester {
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	ingester := Ingester{
		Incoming: make(chan *Task),
		done:     make(chan struct{}),
		store:    store,
		idx:      idx,
	}

	for i := 0; i < concurrency; i++ {
		go ingester.work()
	}

	return &ingester
}
