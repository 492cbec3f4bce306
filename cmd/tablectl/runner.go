package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/bizdesk/pkg/datatable"
	"github.com/iota-uz/bizdesk/pkg/inertia"
)

const defaultSubjectHeader = "X-Subject"

// Result is the page a step left the table on.
type Result struct {
	Step       Step
	URL        string
	Page       int
	TotalPages int
}

type Runner struct {
	Scenario *Scenario
	Out      io.Writer
	Logger   *logrus.Entry
}

// Run boots the listing, replays every step and reports the URL each one
// produced. Search steps only type; the navigation lands on the next wait or
// at the end of the scenario.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	sc := r.Scenario
	logger := r.Logger
	if logger == nil {
		logger = logrus.WithField("component", "tablectl")
	}

	var (
		ctrl     *datatable.Controller
		failures = make(chan error, len(sc.Steps)+1)
	)
	header := sc.SubjectHeader
	if header == "" {
		header = defaultSubjectHeader
	}
	opts := []inertia.ClientOption{
		inertia.WithLogger(logger),
		inertia.OnSuccess(func(page inertia.Page) {
			if ctrl != nil {
				ctrl.SetTotalPages(totalPages(page))
			}
		}),
		inertia.OnError(func(err error) {
			select {
			case failures <- err:
			default:
			}
		}),
	}
	if sc.Subject != "" {
		opts = append(opts, inertia.WithHeader(header, sc.Subject))
	}
	client, err := inertia.NewClient(sc.BaseURL, opts...)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	boot, err := client.Load(ctx, sc.Path)
	if err != nil {
		return nil, err
	}
	route := boot.URL
	if u, err := parsePath(boot.URL); err == nil {
		route = u
	}

	ctrl, err = datatable.New(datatable.Config{
		RouteURL:       route,
		Only:           sc.Only,
		Navigator:      client,
		Location:       client,
		Pager:          datatable.PageIndexFromQuery(client.Query().Get(datatable.KeyPage)),
		TotalPages:     totalPages(boot),
		PerPage:        sc.PerPage,
		InitialFilters: sc.Filters,
		Debounce:       time.Duration(sc.Debounce),
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}
	defer ctrl.Close()
	fmt.Fprintf(r.Out, "load %s (page %d/%d)\n", boot.URL, ctrl.PageIndex()+1, ctrl.TotalPages())

	results := make([]Result, 0, len(sc.Steps))
	settle := func(step Step) error {
		client.Wait()
		select {
		case err := <-failures:
			return fmt.Errorf("%s: %w", step, err)
		default:
		}
		res := Result{
			Step:       step,
			URL:        client.Page().URL,
			Page:       ctrl.PageIndex() + 1,
			TotalPages: ctrl.TotalPages(),
		}
		results = append(results, res)
		fmt.Fprintf(r.Out, "%-24s -> %s (page %d/%d)\n", step, res.URL, res.Page, res.TotalPages)
		return nil
	}

	for _, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		switch step.Op {
		case opSearch:
			ctrl.HandleSearchChange(step.Value)
			continue
		case opClearSearch:
			ctrl.ClearSearch()
		case opFilter:
			ctrl.UpdateFilter(step.Key, step.Value)
		case opReset:
			ctrl.ResetFilters()
		case opPage:
			ctrl.GoToPage(step.Page - 1)
		case opPageSize:
			ctrl.ChangePageSize(step.PerPage)
		case opWait:
			if step.Delay > 0 {
				select {
				case <-time.After(time.Duration(step.Delay)):
				case <-ctx.Done():
					return results, ctx.Err()
				}
			}
			ctrl.FlushSearch()
		}
		if err := settle(step); err != nil {
			return results, err
		}
	}
	if ctrl.FlushSearch() {
		if err := settle(Step{Op: opWait}); err != nil {
			return results, err
		}
	}
	return results, nil
}

// totalPages reads pagination.total_pages from a decoded page.
func totalPages(page inertia.Page) int {
	meta, ok := page.Props["pagination"].(map[string]any)
	if !ok {
		return 0
	}
	n, ok := meta["total_pages"].(float64)
	if !ok {
		return 0
	}
	return int(n)
}

func parsePath(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return u.Path, nil
}
