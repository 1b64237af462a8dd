// Copyright 2024 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package apishelf

import (
	"encoding/json"
	"errors"
	"io"
	"io/ioutil"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Machiel/slugify"
	"github.com/gorilla/mux"
	"github.com/jtacoma/uritemplates"

	"github.com/readium/readium-shelf-server/api"
	"github.com/readium/readium-shelf-server/config"
	"github.com/readium/readium-shelf-server/epub"
	"github.com/readium/readium-shelf-server/index"
	"github.com/readium/readium-shelf-server/logging"
	"github.com/readium/readium-shelf-server/pack"
	"github.com/readium/readium-shelf-server/problem"
	"github.com/readium/readium-shelf-server/storage"
)

// Server groups functions used by the shelf server
type Server interface {
	Store() storage.Store
	Index() index.Index
	Source() *pack.ManualSource
}

// BookResponse is a catalog row decorated with the navigation links
// configured for this deployment.
type BookResponse struct {
	index.Book
	Links map[string]string `json:"links,omitempty"`
}

func writeRequestFileToTemp(r io.Reader) (int64, *os.File, error) {
	dir := os.TempDir()
	file, err := ioutil.TempFile(dir, "readium-shelf")
	if err != nil {
		return 0, file, err
	}

	n, err := io.Copy(file, r)

	// Rewind to the beginning of the file
	file.Seek(0, 0)

	return n, file, err
}

func cleanupTempFile(f *os.File) {
	if f == nil {
		return
	}
	f.Close()
	os.Remove(f.Name())
}

// StoreBook ingests the EPUB passed through the request body.
// The original file name is given in the url (name).
// A temporary file is created, then deleted after the book has been
// ingested. This function is using an async task.
func StoreBook(w http.ResponseWriter, r *http.Request, s Server) {

	vars := mux.Vars(r)

	size, f, err := writeRequestFileToTemp(r.Body)
	if err != nil {
		problem.Error(w, r, problem.Problem{Detail: err.Error()}, http.StatusBadRequest)
		return
	}

	defer cleanupTempFile(f)

	t := pack.NewTask(vars["name"], f, size)
	result := s.Source().Post(t)

	if result.Error != nil {
		problem.Error(w, r, problem.Problem{Detail: result.Error.Error()}, ingestStatus(result.Error))
		return
	}

	// must come *after* w.Header().Add()/Set(), but before w.Write()
	w.WriteHeader(http.StatusCreated)

	json.NewEncoder(w).Encode(result.ID)
}

// ingestStatus maps the ingestion error taxonomy to response codes:
// bytes that are not an archive are a plain bad request, a broken
// publication is unprocessable, anything else is on us.
func ingestStatus(err error) int {
	switch {
	case errors.Is(err, epub.ErrInvalidArchive):
		return http.StatusBadRequest
	case errors.Is(err, epub.ErrInvalidPackage):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// ListBooks lists the books on the shelf, newest first, with the
// additional get params {page?,per_page?}
func ListBooks(w http.ResponseWriter, r *http.Request, s Server) {

	rPage := r.FormValue("page")
	if rPage == "" {
		rPage = "1"
	}
	rPerPage := r.FormValue("per_page")
	if rPerPage == "" {
		rPerPage = "20"
	}

	page, err := strconv.ParseInt(rPage, 10, 32)
	if err != nil {
		problem.Error(w, r, problem.Problem{Detail: err.Error()}, http.StatusBadRequest)
		return
	}
	perPage, err := strconv.ParseInt(rPerPage, 10, 32)
	if err != nil {
		problem.Error(w, r, problem.Problem{Detail: err.Error()}, http.StatusBadRequest)
		return
	}
	if (page < 1) || (perPage < 1) {
		problem.Error(w, r, problem.Problem{Detail: "page and per_page must be positive numbers"}, http.StatusBadRequest)
		return
	}
	page--

	books := make([]BookResponse, 0)
	fn := s.Index().List(int(perPage), int(page*perPage))
	for it, err := fn(); err == nil; it, err = fn() {
		books = append(books, bookResponse(it))
	}

	logging.Print("List books, total " + strconv.Itoa(len(books)))

	var resultLink string
	if int64(len(books)) == perPage {
		nextPage := strconv.Itoa(int(page) + 2)
		resultLink += "</books?page=" + nextPage + "&per_page=" + rPerPage + ">; rel=\"next\"; title=\"next\""
	}
	if page > 0 {
		previousPage := strconv.Itoa(int(page))
		if len(resultLink) > 0 {
			resultLink += ", "
		}
		resultLink += "</books?page=" + previousPage + "&per_page=" + rPerPage + ">; rel=\"previous\"; title=\"previous\""
	}
	if len(resultLink) > 0 {
		w.Header().Set("Link", resultLink)
	}

	w.Header().Set("Content-Type", api.ContentType_JSON)
	enc := json.NewEncoder(w)
	if err = enc.Encode(books); err != nil {
		problem.Error(w, r, problem.Problem{Detail: err.Error()}, http.StatusInternalServerError)
	}
}

// GetBook returns the catalog record of a book, selected by its id
func GetBook(w http.ResponseWriter, r *http.Request, s Server) {

	vars := mux.Vars(r)
	id := vars["id"]

	book, err := s.Index().Get(id)
	if err != nil {
		if err == index.ErrNotFound {
			problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: id}, http.StatusNotFound)
		} else {
			problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: id}, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", api.ContentType_JSON)
	enc := json.NewEncoder(w)
	if err = enc.Encode(bookResponse(book)); err != nil {
		problem.Error(w, r, problem.Problem{Detail: err.Error()}, http.StatusInternalServerError)
	}
}

// DeleteBook removes a book from the catalog, its chapters and its
// stored files included
func DeleteBook(w http.ResponseWriter, r *http.Request, s Server) {

	vars := mux.Vars(r)
	id := vars["id"]

	logging.Print("Delete book " + id)

	err := s.Index().Delete(id)
	if err != nil {
		if err == index.ErrNotFound {
			problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: id}, http.StatusNotFound)
		} else {
			problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: id}, http.StatusInternalServerError)
		}
		return
	}

	// the row is gone; anything left behind here is reclaimed by the sweep
	if err = pack.RemoveBookFiles(s.Store(), id); err != nil {
		logging.Print("Cannot remove files of " + id + ": " + err.Error())
	}

	w.WriteHeader(http.StatusOK)
}

// DownloadBook returns the original EPUB file of a book
func DownloadBook(w http.ResponseWriter, r *http.Request, s Server) {

	vars := mux.Vars(r)
	id := vars["id"]

	logging.Print("Download book " + id)

	book, err := s.Index().Get(id)
	if err != nil {
		if err == index.ErrNotFound {
			problem.Error(w, r, problem.Problem{Detail: "Index:" + err.Error(), Instance: id}, http.StatusNotFound)
		} else {
			problem.Error(w, r, problem.Problem{Detail: "Index:" + err.Error(), Instance: id}, http.StatusInternalServerError)
		}
		return
	}

	item, err := s.Store().Get(id + "/book.epub")
	if err != nil {
		if err == storage.ErrNotFound {
			problem.Error(w, r, problem.Problem{Detail: "Storage:" + err.Error(), Instance: id}, http.StatusNotFound)
		} else {
			problem.Error(w, r, problem.Problem{Detail: "Storage:" + err.Error(), Instance: id}, http.StatusInternalServerError)
		}
		return
	}
	contents, err := item.Contents()
	if err != nil {
		problem.Error(w, r, problem.Problem{Detail: "File:" + err.Error(), Instance: id}, http.StatusInternalServerError)
		return
	}
	defer contents.Close()

	w.Header().Set("Content-Disposition", "attachment; filename="+slugify.Slugify(book.Title)+".epub")
	w.Header().Set("Content-Type", epub.ContentTypeEpub)

	io.Copy(w, contents)
}

// ListChapters returns the chapters of a book in reading order,
// without their content
func ListChapters(w http.ResponseWriter, r *http.Request, s Server) {

	vars := mux.Vars(r)
	id := vars["id"]

	if _, err := s.Index().Get(id); err != nil {
		if err == index.ErrNotFound {
			problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: id}, http.StatusNotFound)
		} else {
			problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: id}, http.StatusInternalServerError)
		}
		return
	}

	chapters, err := s.Index().Chapters(id)
	if err != nil {
		problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: id}, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", api.ContentType_JSON)
	enc := json.NewEncoder(w)
	if err = enc.Encode(chapters); err != nil {
		problem.Error(w, r, problem.Problem{Detail: err.Error()}, http.StatusInternalServerError)
	}
}

// GetChapter returns one chapter of a book with its stored markup,
// selected by its number
func GetChapter(w http.ResponseWriter, r *http.Request, s Server) {

	vars := mux.Vars(r)
	id := vars["id"]

	number, err := strconv.Atoi(vars["number"])
	if err != nil {
		problem.Error(w, r, problem.Problem{Detail: "The chapter number must be an integer"}, http.StatusBadRequest)
		return
	}

	chapter, err := s.Index().Chapter(id, number)
	if err != nil {
		if err == index.ErrNotFound {
			problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: r.URL.Path}, http.StatusNotFound)
		} else {
			problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: r.URL.Path}, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", api.ContentType_JSON)
	enc := json.NewEncoder(w)
	if err = enc.Encode(chapter); err != nil {
		problem.Error(w, r, problem.Problem{Detail: err.Error()}, http.StatusInternalServerError)
	}
}

// GetAsset streams a stored asset of a book, selected by the path the
// publication declared for it
func GetAsset(w http.ResponseWriter, r *http.Request, s Server) {

	vars := mux.Vars(r)
	id := vars["id"]
	asset := vars["asset"]

	item, err := s.Store().Get(id + "/assets/" + asset)
	if err != nil {
		if err == storage.ErrNotFound {
			problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: asset}, http.StatusNotFound)
		} else {
			problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: asset}, http.StatusInternalServerError)
		}
		return
	}
	contents, err := item.Contents()
	if err != nil {
		problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: asset}, http.StatusInternalServerError)
		return
	}
	defer contents.Close()

	w.Header().Set("Content-Type", assetContentType(asset))
	io.Copy(w, contents)
}

// GetCover returns the cover image of a book
func GetCover(w http.ResponseWriter, r *http.Request, s Server) {

	vars := mux.Vars(r)
	id := vars["id"]

	book, err := s.Index().Get(id)
	if err != nil {
		if err == index.ErrNotFound {
			problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: id}, http.StatusNotFound)
		} else {
			problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: id}, http.StatusInternalServerError)
		}
		return
	}
	if book.CoverExt == "" {
		problem.Error(w, r, problem.Problem{Detail: "The book has no cover", Instance: id}, http.StatusNotFound)
		return
	}

	serveStored(w, r, s, id+"/cover"+book.CoverExt, assetContentType("cover"+book.CoverExt))
}

// GetCoverThumbnail returns the cover thumbnail of a book
func GetCoverThumbnail(w http.ResponseWriter, r *http.Request, s Server) {

	vars := mux.Vars(r)
	id := vars["id"]

	serveStored(w, r, s, id+"/cover_thumb.jpg", "image/jpeg")
}

func serveStored(w http.ResponseWriter, r *http.Request, s Server, key string, contentType string) {
	item, err := s.Store().Get(key)
	if err != nil {
		if err == storage.ErrNotFound {
			problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: key}, http.StatusNotFound)
		} else {
			problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: key}, http.StatusInternalServerError)
		}
		return
	}
	contents, err := item.Contents()
	if err != nil {
		problem.Error(w, r, problem.Problem{Detail: err.Error(), Instance: key}, http.StatusInternalServerError)
		return
	}
	defer contents.Close()

	w.Header().Set("Content-Type", contentType)
	io.Copy(w, contents)
}

// assetContentType guesses a content type from the declared path; the
// manifest media type is not kept after ingestion.
func assetContentType(name string) string {
	if ctype := mime.TypeByExtension(filepath.Ext(name)); ctype != "" {
		return ctype
	}
	return "application/octet-stream"
}

func bookResponse(b index.Book) BookResponse {
	resp := BookResponse{Book: b}
	if len(config.Config.Links) == 0 {
		return resp
	}
	resp.Links = make(map[string]string)
	for rel, tpl := range config.Config.Links {
		resp.Links[rel] = expandUriTemplate(tpl, "id", b.ID)
	}
	return resp
}

// expandUriTemplate resolves a url template from the configuration to a url the system can embed in a response
func expandUriTemplate(uriTemplate, variable, value string) string {
	template, err := uritemplates.Parse(uriTemplate)
	if err != nil {
		logging.Print("Failed to parse an uri template: " + uriTemplate)
		return uriTemplate
	}
	values := make(map[string]interface{})
	values[variable] = value
	expanded, err := template.Expand(values)
	if err != nil {
		logging.Print("Failed to expand an uri template: " + uriTemplate)
		return uriTemplate
	}
	return expanded
}
