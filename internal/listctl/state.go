package listctl

import (
	"time"

	"energy-admin/internal/gateway"
)

// Status is the state of the list query.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusLoaded
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusErrored:
		return "errored"
	default:
		return "idle"
	}
}

// ModalState is the state of the create/edit form.
type ModalState int

const (
	ModalClosed ModalState = iota
	ModalOpen
	ModalSubmitting
)

// Option is one choice for a reference field.
type Option struct {
	ID   string
	Name string
}

// Config tunes a controller. Zero values fall back to the defaults below.
type Config struct {
	Debounce    time.Duration
	RowsPerPage int
	FlashTTL    time.Duration
	LookupPage  int
}

const (
	DefaultDebounce    = 300 * time.Millisecond
	DefaultRowsPerPage = 15
	DefaultFlashTTL    = 3 * time.Second
)

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.RowsPerPage <= 0 {
		c.RowsPerPage = DefaultRowsPerPage
	}
	if c.FlashTTL <= 0 {
		c.FlashTTL = DefaultFlashTTL
	}
	if c.LookupPage <= 0 {
		c.LookupPage = gateway.DefaultPageSize
	}
	return c
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	Search      string
	Sort        string
	Desc        bool
	Page        int
	RowsPerPage int
	Total       int64
	Rows        []gateway.Row
	Status      Status
	Err         string // list banner
	Success     string // transient, empty once expired

	Modal       ModalState
	EditingID   string
	Form        map[string]string
	FieldErrors map[string]string
	FormErr     string // modal banner
	Options     map[string][]Option
	Taken       map[string][]int
}

// PageCount is the number of pages for Total, at least 1.
func (s Snapshot) PageCount() int {
	if s.RowsPerPage <= 0 || s.Total <= 0 {
		return 1
	}
	return int((s.Total + int64(s.RowsPerPage) - 1) / int64(s.RowsPerPage))
}

// OptionName resolves a reference id to its display name, falling back to id.
func (s Snapshot) OptionName(field, id string) string {
	for _, o := range s.Options[field] {
		if o.ID == id {
			return o.Name
		}
	}
	return id
}
