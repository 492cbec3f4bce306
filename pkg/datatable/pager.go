package datatable

import (
	"strconv"
	"sync"
)

// Pager owns the zero-based page index the table renders. The controller
// writes it optimistically on every intent; the page remains the owner.
type Pager interface {
	PageIndex() int
	SetPageIndex(index int)
}

// PageIndex is a Pager holding the index itself.
type PageIndex struct {
	mu    sync.Mutex
	index int
}

func NewPageIndex(index int) *PageIndex {
	if index < 0 {
		index = 0
	}
	return &PageIndex{index: index}
}

// PageIndexFromQuery reads the 1-based page query value. Missing or invalid
// values map to the first page.
func PageIndexFromQuery(page string) *PageIndex {
	n, err := strconv.Atoi(page)
	if err != nil || n < 1 {
		return NewPageIndex(0)
	}
	return NewPageIndex(n - 1)
}

func (p *PageIndex) PageIndex() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

func (p *PageIndex) SetPageIndex(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.index = index
}
