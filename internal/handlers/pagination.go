package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// pageEnvelope is the list-response shape: a total count plus absolute
// next/previous page links.
type pageEnvelope struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

var errInvalidPage = errors.New("invalid page")

// pageParam reads ?page=N, defaulting to the first page.
func pageParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errInvalidPage
	}
	return n, nil
}

// pageWindow turns a page number into limit/offset and rejects pages past
// the end. Page 1 is always valid, even when the collection is empty. The
// bound is checked before the offset multiplication so an absurd page
// number cannot overflow into a negative offset.
func pageWindow(page, size int, count int64) (limit, offset int, err error) {
	lastPage := count / int64(size)
	if count%int64(size) != 0 {
		lastPage++
	}
	if lastPage < 1 {
		lastPage = 1
	}
	if int64(page) > lastPage {
		return 0, 0, errInvalidPage
	}
	return size, (page - 1) * size, nil
}

// envelope builds the paginated response around the current request URL.
func envelope(r *http.Request, count int64, page, size int, results interface{}) pageEnvelope {
	env := pageEnvelope{Count: count, Results: results}

	if int64(page*size) < count {
		next := pageURL(r, page+1)
		env.Next = &next
	}
	if page > 1 {
		prev := pageURL(r, page-1)
		env.Previous = &prev
	}
	return env
}

// pageURL rebuilds the request URL pointing at the given page. The first
// page is linked without an explicit page parameter.
func pageURL(r *http.Request, page int) string {
	u := *r.URL
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return absoluteURL(r, u.RequestURI())
}

// absoluteURL resolves a server-relative path against the request's
// scheme and host.
func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, path)
}
