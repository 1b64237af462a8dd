// Copyright (c) 2016 Readium Foundation
//
// Redistribution and use in source and binary forms, with or without modification,
// are permitted provided that the following conditions are met:
//
// 1. Redistributions of source code must retain the above copyright notice, this
//    list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright notice,
//    this list of conditions and the following disclaimer in the documentation and/or
//    other materials provided with the distribution.
// 3. Neither the name of the organization nor the names of its contributors may be
//    used to endorse or promote products derived from this software without specific
//    prior written permission
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS" AND
// ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED
// WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT OWNER OR CONTRIBUTORS BE LIABLE FOR
// ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES
// (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES;
// LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND
// ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
// (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE OF THIS
// SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

package shelfserver

import (
	"net/http"
	"time"

	"github.com/abbot/go-http-auth"
	"github.com/gorilla/mux"

	"github.com/readium/readium-shelf-server/api"
	"github.com/readium/readium-shelf-server/index"
	"github.com/readium/readium-shelf-server/pack"
	apishelf "github.com/readium/readium-shelf-server/shelfserver/api"
	"github.com/readium/readium-shelf-server/storage"
)

type Server struct {
	http.Server
	readonly bool
	idx      *index.Index
	st       *storage.Store
	source   pack.ManualSource
}

func (s *Server) Store() storage.Store {
	return *s.st
}

func (s *Server) Index() index.Index {
	return *s.idx
}

func (s *Server) Source() *pack.ManualSource {
	return &s.source
}

func New(bindAddr string, readonly bool, idx *index.Index, st *storage.Store, ingester *pack.Ingester, basicAuth *auth.BasicAuth) *Server {

	sr := api.CreateServerRouter("")

	s := &Server{
		Server: http.Server{
			Handler:        sr.N,
			Addr:           bindAddr,
			WriteTimeout:   15 * time.Second,
			ReadTimeout:    15 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
		readonly: readonly,
		idx:      idx,
		st:       st,
		source:   pack.ManualSource{},
	}

	s.source.Feed(ingester.Incoming)

	// Route.PathPrefix: http://www.gorillatoolkit.org/pkg/mux#Route.PathPrefix
	// Route.Subrouter: http://www.gorillatoolkit.org/pkg/mux#Route.Subrouter
	// Router.StrictSlash: http://www.gorillatoolkit.org/pkg/mux#Router.StrictSlash

	bookRoutesPathPrefix := "/books"
	bookRoutes := sr.R.PathPrefix(bookRoutesPathPrefix).Subrouter().StrictSlash(false)

	s.handleFunc(sr.R, bookRoutesPathPrefix, apishelf.ListBooks).Methods("GET")

	s.handleFunc(bookRoutes, "/{id}", apishelf.GetBook).Methods("GET")
	s.handleFunc(bookRoutes, "/{id}/download", apishelf.DownloadBook).Methods("GET")
	s.handleFunc(bookRoutes, "/{id}/chapters", apishelf.ListChapters).Methods("GET")
	s.handleFunc(bookRoutes, "/{id}/chapters/{number}", apishelf.GetChapter).Methods("GET")
	s.handleFunc(bookRoutes, "/{id}/assets/{asset:.*}", apishelf.GetAsset).Methods("GET")
	s.handleFunc(bookRoutes, "/{id}/cover", apishelf.GetCover).Methods("GET")
	s.handleFunc(bookRoutes, "/{id}/cover/thumbnail", apishelf.GetCoverThumbnail).Methods("GET")

	if !readonly {
		s.handlePrivateFunc(bookRoutes, "/{name}", apishelf.StoreBook, basicAuth).Methods("POST")
		s.handlePrivateFunc(bookRoutes, "/{id}", apishelf.DeleteBook, basicAuth).Methods("DELETE")
	}

	return s
}

type HandlerFunc func(w http.ResponseWriter, r *http.Request, s apishelf.Server)

func (s *Server) handleFunc(router *mux.Router, route string, fn HandlerFunc) *mux.Route {
	return router.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, s)
	})
}

type HandlerPrivateFunc func(w http.ResponseWriter, r *http.Request, s apishelf.Server)

func (s *Server) handlePrivateFunc(router *mux.Router, route string, fn HandlerPrivateFunc, authenticator *auth.BasicAuth) *mux.Route {
	return router.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		if api.CheckAuth(authenticator, w, r) {
			fn(w, r, s)
		}
	})
}
