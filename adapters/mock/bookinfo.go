// Copyright (c) 2023 ubirch GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mock

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	h "github.com/ubirch/ubirch-load-test/adapters/httphelper"
	"github.com/ubirch/ubirch-load-test/vars"
)

const productpageHTML = `<!DOCTYPE html>
<html>
<head><title>Simple Bookstore App</title></head>
<body>
<div id="productpage">
<h3>The Comedy of Errors</h3>
<p>Wikipedia Summary: The Comedy of Errors is one of William Shakespeare's early plays.</p>
</div>
</body>
</html>
`

// Bookinfo is a fake of the Bookinfo product page and its backing
// details, reviews and ratings services. Latency delays every answer.
type Bookinfo struct {
	Latency time.Duration
}

func NewBookinfo(latency time.Duration) *Bookinfo {
	return &Bookinfo{Latency: latency}
}

// Handler returns a router serving the fake mesh
func (b *Bookinfo) Handler() http.Handler {
	r := h.NewRouter()
	b.Register(r)
	return r
}

func (b *Bookinfo) Register(r chi.Router) {
	r.Get(h.LivenessCheckEndpoint, h.Health("bookinfo"))

	r.Group(func(r chi.Router) {
		r.Use(b.delay)

		r.Get("/productpage", b.productpage)
		r.Get("/details/{id}", b.details)
		r.Get("/reviews/{id}", b.reviews)
		r.Get("/ratings/{id}", b.ratings)
	})
}

func (b *Bookinfo) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Latency > 0 {
			select {
			case <-time.After(b.Latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func productID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.Respond400(w, "please provide numeric product id")
		return 0, false
	}
	return id, true
}

func (b *Bookinfo) productpage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(vars.ContentTypeHeader, vars.HTMLType)
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, productpageHTML)
}

func (b *Bookinfo) details(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	h.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"author":    "William Shakespeare",
		"year":      1595,
		"type":      "paperback",
		"pages":     200,
		"publisher": "PublisherA",
		"language":  "English",
		"ISBN-10":   "1234567890",
		"ISBN-13":   "123-1234567890",
	})
}

func (b *Bookinfo) reviews(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	h.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":          strconv.Itoa(id),
		"podname":     "reviews-v1",
		"clustername": "null",
		"reviews": []map[string]string{
			{"reviewer": "Reviewer1", "text": "An extremely entertaining play by Shakespeare. The slapstick humour is refreshing!"},
			{"reviewer": "Reviewer2", "text": "Absolutely fun and entertaining. The play lacks thematic depth when compared to other plays by Shakespeare."},
		},
	})
}

func (b *Bookinfo) ratings(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	h.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"id":      id,
		"ratings": map[string]int{"Reviewer1": 5, "Reviewer2": 4},
	})
}
