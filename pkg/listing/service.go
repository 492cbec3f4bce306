package listing

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/bizdesk/pkg/composables"
	"github.com/iota-uz/bizdesk/pkg/pagination"
)

// Page is one listing page with its pagination meta.
type Page struct {
	Records []Record
	Meta    pagination.Meta
	// Params are the params the page was loaded with, after clamping.
	Params pagination.Params
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List loads the requested page. A page past the end is answered with the
// last page, so a stale URL never shows an empty table.
func (s *Service) List(ctx context.Context, res Resource, p pagination.Params) (Page, error) {
	start := time.Now()
	logger := composables.UseLogger(ctx).WithFields(logrus.Fields{
		"resource": res.Name,
		"page":     p.Page,
		"per_page": p.PerPage,
	})

	records, total, err := s.repo.Find(ctx, res, p)
	if err == nil {
		if last := pagination.TotalPages(total, p.PerPage); p.Page > last {
			logger.WithField("last_page", last).Debug("page out of range, loading last page")
			p.Page = last
			records, total, err = s.repo.Find(ctx, res, p)
		}
	}
	queryDuration.WithLabelValues(res.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		queriesTotal.WithLabelValues(res.Name, "error").Inc()
		logger.WithError(err).Error("listing query failed")
		return Page{}, err
	}
	queriesTotal.WithLabelValues(res.Name, "ok").Inc()

	logger.WithFields(logrus.Fields{
		"total":    total,
		"returned": len(records),
		"search":   p.Search != "",
		"filters":  p.Filters.ActiveCount(),
	}).Debug("listing loaded")
	return Page{
		Records: records,
		Meta:    pagination.NewMeta(p, total),
		Params:  p,
	}, nil
}
