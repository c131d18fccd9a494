// Copyright (c) 2026 Planora. All rights reserved.

// Package pagination decodes and forwards page-based list navigation.
//
// # Overview
//
// The backend serves lists in the DRF envelope {count, next, previous,
// results}, except for a handful of endpoints that return bare arrays.
// [Page] absorbs both shapes, and [Params] carries the shell's page/limit
// query parameters through to the backend unchanged.
package pagination

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page forwarded to the backend.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Page is a decoded backend list response.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// HasNext reports whether another page exists after this one.
func (p Page[T]) HasNext() bool { return p.Next != nil }

// UnmarshalJSON accepts both the paginated envelope and a bare JSON array.
// A bare array becomes a single complete page.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}

	type envelope Page[T] // drop the method set to avoid recursion
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	*p = Page[T](e)
	return nil
}

// Params holds the parsed page and limit from a request's query string.
type Params struct {
	Page  int
	Limit int
}

// Query renders the parameters as a backend query string fragment, including
// the leading "?". Defaults are forwarded explicitly so the shell and the
// backend always agree on page boundaries.
func (p Params) Query() string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(p.Page))
	values.Set("page_size", strconv.Itoa(p.Limit))
	return "?" + values.Encode()
}

// FromRequest parses "page" and "limit" query parameters from an HTTP request.
//
// # Clamping
//
// Invalid, negative, or excessive values are automatically clamped to
// [DefaultPage], [DefaultLimit], or [MaxLimit].
func FromRequest(r *http.Request) Params {
	page := parseIntParam(r, "page", DefaultPage)
	limit := parseIntParam(r, "limit", DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}

	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: limit}
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}
