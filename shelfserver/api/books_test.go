// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package apishelf_test

import (
	"archive/zip"
	"bytes"
	"crypto/sha1"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/readium/readium-shelf-server/config"
	"github.com/readium/readium-shelf-server/index"
	"github.com/readium/readium-shelf-server/pack"
	"github.com/readium/readium-shelf-server/problem"
	shelfserver "github.com/readium/readium-shelf-server/shelfserver/server"
	"github.com/readium/readium-shelf-server/storage"

	auth "github.com/abbot/go-http-auth"
)

const testContainer = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

const testOpf = `<?xml version="1.0" encoding="utf-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>A Practical Shelf</dc:title>
    <dc:creator>Ada Writer</dc:creator>
    <dc:language>en</dc:language>
  </metadata>
  <manifest>
    <item id="ch1" href="c1/ch1.xhtml" media-type="application/xhtml+xml"/>
    <item id="cov" href="images/cover.jpg" media-type="image/jpeg" properties="cover-image"/>
  </manifest>
  <spine>
    <itemref idref="ch1"/>
  </spine>
</package>`

const testChapter = `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>Chapter One</title></head>
<body>
<p>First words of the opening chapter here now.</p>
<p>Seven more words close the fifteen total. <img src="../images/cover.jpg" alt=""/></p>
</body>
</html>`

func buildTestEpub(t *testing.T) []byte {
	t.Helper()
	files := map[string]string{
		"mimetype":               "application/epub+zip",
		"META-INF/container.xml": testContainer,
		"OEBPS/content.opf":      testOpf,
		"OEBPS/c1/ch1.xhtml":     testChapter,
		"OEBPS/images/cover.jpg": "JPEGDATA",
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func htpasswdFile(t *testing.T, user, pass string) string {
	t.Helper()
	h := sha1.Sum([]byte(pass))
	line := user + ":{SHA}" + base64.StdEncoding.EncodeToString(h[:]) + "\n"
	p := filepath.Join(t.TempDir(), "htpasswd")
	if err := os.WriteFile(p, []byte(line), 0600); err != nil {
		t.Fatal(err)
	}
	return p
}

// newTestServer assembles the full stack: router and middlewares, a
// sqlite catalog, a filesystem store and the ingestion workers.
func newTestServer(t *testing.T, dbName string, readonly bool) *httptest.Server {
	t.Helper()

	config.Config.ShelfServer.Database = "sqlite3://file:" + dbName + "?mode=memory&cache=shared"
	driver, cnxn := config.GetDatabase(config.Config.ShelfServer.Database)
	db, err := sql.Open(driver, cnxn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	idx, err := index.Open(db)
	if err != nil {
		t.Fatal(err)
	}

	var store storage.Store = storage.NewFileSystem(t.TempDir(), "http://localhost/files")
	ingester := pack.NewIngester(store, idx, 1)

	htpasswd := auth.HtpasswdFileProvider(htpasswdFile(t, "testuser", "testpass"))
	authenticator := auth.NewBasicAuthenticator("test", htpasswd)

	s := shelfserver.New(":0", readonly, &idx, &store, ingester, authenticator)
	ts := httptest.NewServer(s.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func upload(t *testing.T, ts *httptest.Server, name string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest("POST", ts.URL+"/books/"+name, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.SetBasicAuth("testuser", "testpass")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestBooksAPI(t *testing.T) {
	savedLinks := config.Config.Links
	config.Config.Links = map[string]string{"reader": "https://shelf.example.org/read/{id}"}
	defer func() { config.Config.Links = savedLinks }()

	ts := newTestServer(t, "booksapi", false)

	// upload
	resp := upload(t, ts, "practical-shelf.epub", buildTestEpub(t))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status = %d, want 201", resp.StatusCode)
	}
	var id string
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if id == "" {
		t.Fatal("upload returned no id")
	}

	// catalog record
	resp, err := http.Get(ts.URL + "/books/" + id)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	var book struct {
		index.Book
		Links map[string]string `json:"links"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if book.Title != "A Practical Shelf" || book.Status != index.StatusReady {
		t.Errorf("book = %q in status %q", book.Title, book.Status)
	}
	if book.WordCount != 15 || book.ChapterCount != 1 {
		t.Errorf("counts = (%d, %d), want (15, 1)", book.WordCount, book.ChapterCount)
	}
	if book.Links["reader"] != "https://shelf.example.org/read/"+id {
		t.Errorf("reader link = %q", book.Links["reader"])
	}

	// listing
	resp, err = http.Get(ts.URL + "/books")
	if err != nil {
		t.Fatal(err)
	}
	var books []index.Book
	if err := json.NewDecoder(resp.Body).Decode(&books); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(books) != 1 || books[0].ID != id {
		t.Fatalf("listing = %+v", books)
	}

	// chapters without content
	resp, err = http.Get(ts.URL + "/books/" + id + "/chapters")
	if err != nil {
		t.Fatal(err)
	}
	var chapters []index.Chapter
	if err := json.NewDecoder(resp.Body).Decode(&chapters); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(chapters) != 1 || chapters[0].Title != "Chapter One" {
		t.Fatalf("chapters = %+v", chapters)
	}
	if chapters[0].Content != "" {
		t.Error("the chapter listing must not carry content")
	}

	// one chapter with content
	resp, err = http.Get(ts.URL + "/books/" + id + "/chapters/1")
	if err != nil {
		t.Fatal(err)
	}
	var chapter index.Chapter
	if err := json.NewDecoder(resp.Body).Decode(&chapter); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if !strings.Contains(chapter.Content, "opening chapter") {
		t.Error("chapter content not served")
	}

	// asset by its declared path
	resp, err = http.Get(ts.URL + "/books/" + id + "/assets/images/cover.jpg")
	if err != nil {
		t.Fatal(err)
	}
	assetBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(assetBody) != "JPEGDATA" {
		t.Errorf("asset status = %d body = %q", resp.StatusCode, assetBody)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("asset content type = %q", ct)
	}

	// cover
	resp, err = http.Get(ts.URL + "/books/" + id + "/cover")
	if err != nil {
		t.Fatal(err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("cover status = %d, want 200", resp.StatusCode)
	}

	// download of the original file
	resp, err = http.Get(ts.URL + "/books/" + id + "/download")
	if err != nil {
		t.Fatal(err)
	}
	downloaded, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d, want 200", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "attachment; filename=a-practical-shelf.epub" {
		t.Errorf("content disposition = %q", cd)
	}
	if !bytes.Equal(downloaded, buildTestEpub(t)) {
		t.Error("the download differs from the upload")
	}

	// deletion
	req, err := http.NewRequest("DELETE", ts.URL+"/books/"+id, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.SetBasicAuth("testuser", "testpass")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/books/" + id)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != problem.ContentType_PROBLEM_JSON {
		t.Errorf("error content type = %q", ct)
	}
}

func TestBooksAPIRejectsBadUploads(t *testing.T) {
	ts := newTestServer(t, "booksapibad", false)

	resp := upload(t, ts, "junk.epub", []byte("definitely not a zip archive"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("garbage upload status = %d, want 400", resp.StatusCode)
	}

	// a readable archive that is not a publication
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("just-a-file.txt")
	w.Write([]byte("hello"))
	zw.Close()

	resp = upload(t, ts, "notabook.epub", buf.Bytes())
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("broken package upload status = %d, want 422", resp.StatusCode)
	}
}

func TestBooksAPIAuth(t *testing.T) {
	ts := newTestServer(t, "booksapiauth", false)

	req, err := http.NewRequest("POST", ts.URL+"/books/x.epub", bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated upload status = %d, want 401", resp.StatusCode)
	}
	if resp.Header.Get("WWW-Authenticate") == "" {
		t.Error("missing WWW-Authenticate challenge")
	}

	req.SetBasicAuth("testuser", "wrong")
	req.Body = io.NopCloser(bytes.NewReader([]byte("x")))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad password upload status = %d, want 401", resp.StatusCode)
	}
}

func TestBooksAPIReadonly(t *testing.T) {
	ts := newTestServer(t, "booksapiro", true)

	resp := upload(t, ts, "x.epub", buildTestEpub(t))
	resp.Body.Close()
	if resp.StatusCode == http.StatusCreated {
		t.Error("a readonly server must not accept uploads")
	}

	resp, err := http.Get(ts.URL + "/books")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("readonly listing status = %d, want 200", resp.StatusCode)
	}
}
