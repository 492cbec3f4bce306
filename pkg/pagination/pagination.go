// Package pagination reads the listing query a table navigates with and
// describes the page a listing returns.
package pagination

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/iota-uz/bizdesk/pkg/composables"
	"github.com/iota-uz/bizdesk/pkg/datatable"
)

const (
	DefaultPerPage  = 25
	MaxPerPage      = 100
	MaxSearchLength = 200

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

type Options struct {
	DefaultPerPage int
	MaxPerPage     int
	// Sortable lists the accepted sort keys. Others fall back to DefaultSort.
	Sortable    []string
	DefaultSort string
	// DefaultOrder is asc unless set.
	DefaultOrder string
	// Filterable lists the query keys accepted as filters.
	Filterable []string
}

// Params is a normalized listing request. Page is 1-based.
type Params struct {
	Page    int
	PerPage int
	Search  string
	Sort    string
	Order   string
	Filters datatable.Filters
}

func (p Params) Offset() int {
	if p.Page < 1 || p.PerPage < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

func (p Params) Limit() int {
	return p.PerPage
}

type query struct {
	Page    string `form:"page"`
	PerPage string `form:"per_page"`
	Search  string `form:"search" validate:"max=200"`
	Sort    string `form:"sort"`
	Order   string `form:"order" validate:"omitempty,oneof=asc desc"`
}

// ValidationError maps query keys to readable messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "invalid listing query: " + strings.Join(parts, "; ")
}

var (
	validate   *validator.Validate
	translator ut.Translator
	initOnce   sync.Once
)

func use() (*validator.Validate, ut.Translator) {
	initOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		locale := en.New()
		translator, _ = ut.New(locale, locale).GetTranslator("en")
		if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
			panic(err)
		}
	})
	return validate, translator
}

// Parse reads page, per_page, search, sort, order and the allowed filters
// from r. Out-of-range page and per_page values are clamped, an unknown sort
// falls back to the default; a bad order or an oversized search is an error.
func Parse(r *http.Request, opts Options) (Params, error) {
	opts = opts.withDefaults()

	// Duplicate keys resolve to their last occurrence, as in the table.
	last := url.Values{}
	for k, v := range composables.LastValues(r.URL.Query()) {
		last.Set(k, v)
	}
	q := &query{}
	if err := composables.Decoder.Decode(q, last); err != nil {
		return Params{}, err
	}
	q.Order = strings.ToLower(strings.TrimSpace(q.Order))

	v, trans := use()
	if err := v.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Params{}, err
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return Params{}, &ValidationError{Fields: fields}
	}

	p := Params{
		Page:    positiveOr(q.Page, 1),
		PerPage: positiveOr(q.PerPage, opts.DefaultPerPage),
		Search:  strings.TrimSpace(q.Search),
		Sort:    opts.DefaultSort,
		Order:   opts.DefaultOrder,
		Filters: datatable.Filters{},
	}
	if p.PerPage > opts.MaxPerPage {
		p.PerPage = opts.MaxPerPage
	}
	// Offset must fit in an int (and a Postgres bigint).
	if maxPage := math.MaxInt / p.PerPage; p.Page > maxPage {
		p.Page = maxPage
	}
	if sort := strings.TrimSpace(q.Sort); slices.Contains(opts.Sortable, sort) {
		p.Sort = sort
	}
	if q.Order != "" {
		p.Order = q.Order
	}

	seed := datatable.ParseQuery(r.URL.Query())
	for _, key := range opts.Filterable {
		if v := seed.Filters.Get(key); v != "" {
			p.Filters.Set(key, v)
		}
	}
	return p, nil
}

func (o Options) withDefaults() Options {
	if o.DefaultPerPage <= 0 {
		o.DefaultPerPage = DefaultPerPage
	}
	if o.MaxPerPage <= 0 {
		o.MaxPerPage = MaxPerPage
	}
	if o.MaxPerPage < o.DefaultPerPage {
		o.MaxPerPage = o.DefaultPerPage
	}
	if o.DefaultOrder != OrderDesc {
		o.DefaultOrder = OrderAsc
	}
	return o
}

func positiveOr(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// Meta describes the returned page to the table.
type Meta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	TotalPages  int `json:"total_pages"`
}

func NewMeta(p Params, total int) Meta {
	return Meta{
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		Total:       total,
		TotalPages:  TotalPages(total, p.PerPage),
	}
}

// TotalPages is ceil(total/perPage), and at least 1 so an empty listing
// still has a page to show.
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}
