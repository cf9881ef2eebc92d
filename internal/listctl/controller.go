// Package listctl implements the list-and-edit workflow shared by every
// administrable table: debounced search, sorting, paging, and a create/edit
// form with validation and uniqueness checks.
//
// A Controller is safe for concurrent use. Queries run on their own
// goroutines; only the result of the most recently issued query is applied.
// Observers register with OnChange and read state through Snapshot.
package listctl

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"energy-admin/internal/gateway"
	"energy-admin/internal/names"
	"energy-admin/internal/resource"
)

// Actor supplies the id of the signed-in operator, or "".
type Actor interface {
	Actor() string
}

// Controller drives one table.
type Controller struct {
	desc  *resource.Descriptor
	gw    gateway.Gateway
	actor Actor
	cfg   Config
	log   *zap.Logger
	now   func() time.Time

	debounce *debouncer
	wg       sync.WaitGroup

	mu       sync.Mutex
	onChange func()
	closed   bool

	// list
	search     string
	sortCol    string
	descending bool
	page       int
	perPage    int
	total      int64
	rows       []gateway.Row
	status     Status
	err        string
	lookupErr  string
	seq        uint64
	cancel     context.CancelFunc

	// flash
	success    string
	flashUntil time.Time
	flashTimer *time.Timer

	// form
	modal       ModalState
	modalSeq    uint64
	editingID   string
	form        map[string]string
	fieldErrors map[string]string
	formErr     string
	options     map[string][]Option
	taken       map[string][]int
}

// New creates a controller for desc. Nothing is fetched until Load.
func New(desc *resource.Descriptor, gw gateway.Gateway, actor Actor, cfg Config, log *zap.Logger) *Controller {
	cfg = cfg.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		desc:     desc,
		gw:       gw,
		actor:    actor,
		cfg:      cfg,
		log:      log.With(zap.String("table", desc.Table)),
		now:      time.Now,
		debounce: newDebouncer(cfg.Debounce),
		sortCol:  desc.DefaultSort,
		perPage:  cfg.RowsPerPage,
		options:  map[string][]Option{},
	}
}

// Descriptor returns the table schema the controller was built for.
func (c *Controller) Descriptor() *resource.Descriptor { return c.desc }

// OnChange registers fn to be called after every state change. fn must not
// block; it may be called from any goroutine.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Search:      c.search,
		Sort:        c.sortCol,
		Desc:        c.descending,
		Page:        c.page,
		RowsPerPage: c.perPage,
		Total:       c.total,
		Rows:        append([]gateway.Row(nil), c.rows...),
		Status:      c.status,
		Err:         c.err,
		Modal:       c.modal,
		EditingID:   c.editingID,
		Form:        copyStrings(c.form),
		FieldErrors: copyStrings(c.fieldErrors),
		FormErr:     c.formErr,
		Options:     make(map[string][]Option, len(c.options)),
		Taken:       make(map[string][]int, len(c.taken)),
	}
	if s.Err == "" {
		s.Err = c.lookupErr
	}
	if c.success != "" && c.now().Before(c.flashUntil) {
		s.Success = c.success
	}
	for k, v := range c.options {
		s.Options[k] = append([]Option(nil), v...)
	}
	for k, v := range c.taken {
		s.Taken[k] = append([]int(nil), v...)
	}
	return s
}

// Load fetches parent lookups for display and issues the first query.
func (c *Controller) Load(ctx context.Context) {
	c.loadOptions(ctx, 0)
	c.Refresh()
}

// Refresh re-issues the current query immediately.
func (c *Controller) Refresh() {
	c.debounce.Cancel()
	c.mu.Lock()
	c.issueLocked()
	c.mu.Unlock()
	c.notify()
}

// SetSearch changes the search term. The page goes back to the first one and
// the query is issued once the term has been stable for the debounce window.
func (c *Controller) SetSearch(term string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.search = term
	c.page = 0
	c.mu.Unlock()

	c.debounce.Debounce(func() {
		c.mu.Lock()
		c.issueLocked()
		c.mu.Unlock()
		c.notify()
	})
	c.notify()
}

// SetSort orders by col. Choosing the current column again flips the direction.
func (c *Controller) SetSort(col string) error {
	if !c.desc.Sortable(col) {
		return fmt.Errorf("%w: %s is not sortable", gateway.ErrUnknownColumn, col)
	}
	c.apply(func() {
		if c.sortCol == col {
			c.descending = !c.descending
		} else {
			c.sortCol = col
			c.descending = false
		}
	})
	return nil
}

// SetDirection sets the sort direction.
func (c *Controller) SetDirection(desc bool) {
	c.apply(func() { c.descending = desc })
}

// SetPage moves to page p (0-based), clamped to the known page range.
func (c *Controller) SetPage(p int) {
	c.apply(func() {
		last := Snapshot{RowsPerPage: c.perPage, Total: c.total}.PageCount() - 1
		if p > last {
			p = last
		}
		if p < 0 {
			p = 0
		}
		c.page = p
	})
}

// SetRowsPerPage changes the page size and returns to the first page.
func (c *Controller) SetRowsPerPage(n int) {
	if n <= 0 {
		return
	}
	c.apply(func() {
		c.perPage = n
		c.page = 0
	})
}

// apply mutates query state and issues the query at once, superseding any
// pending debounced search.
func (c *Controller) apply(mutate func()) {
	c.debounce.Cancel()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	mutate()
	c.issueLocked()
	c.mu.Unlock()
	c.notify()
}

// issueLocked starts a query for the current state. Any query still in flight
// is cancelled and its result will be ignored.
func (c *Controller) issueLocked() {
	if c.closed {
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	seq := c.seq
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.status = StatusLoading

	q := gateway.Query{
		Search: strings.TrimSpace(c.search),
		Sort:   c.sortCol,
		Desc:   c.descending,
		Offset: c.page * c.perPage,
		Limit:  c.perPage,
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		page, err := c.gw.List(ctx, c.desc.Table, q)

		c.mu.Lock()
		if seq != c.seq || c.closed {
			c.mu.Unlock()
			return
		}
		c.cancel = nil
		if err != nil {
			c.status = StatusErrored
			c.err = "failed to load " + strings.ToLower(c.desc.Title)
			c.mu.Unlock()
			c.log.Warn("list query failed", zap.Error(err))
			c.notify()
			return
		}
		c.status = StatusLoaded
		c.err = ""
		c.rows = page.Rows
		c.total = page.Total
		c.mu.Unlock()
		c.notify()
	}()
}

// OpenCreate opens an empty form and loads reference options.
func (c *Controller) OpenCreate(ctx context.Context) {
	c.mu.Lock()
	form := make(map[string]string, len(c.desc.Fields))
	for _, f := range c.desc.Fields {
		form[f.Name] = ""
	}
	seq := c.openLocked("", form)
	c.mu.Unlock()
	c.notify()

	c.loadOptions(ctx, seq)
}

// OpenEdit opens the form filled from row, loads reference options and the
// values already taken within the row's scope.
func (c *Controller) OpenEdit(ctx context.Context, row gateway.Row) {
	c.mu.Lock()
	form := make(map[string]string, len(c.desc.Fields))
	for _, f := range c.desc.Fields {
		form[f.Name] = row.String(f.Name)
	}
	seq := c.openLocked(row.ID(), form)
	c.mu.Unlock()
	c.notify()

	c.loadOptions(ctx, seq)
	c.loadTaken(ctx, seq)
}

func (c *Controller) openLocked(id string, form map[string]string) uint64 {
	c.modalSeq++
	c.modal = ModalOpen
	c.editingID = id
	c.form = form
	c.fieldErrors = map[string]string{}
	c.formErr = ""
	c.taken = nil
	return c.modalSeq
}

// CloseModal discards the form.
func (c *Controller) CloseModal() {
	c.mu.Lock()
	c.modalSeq++
	c.modal = ModalClosed
	c.editingID = ""
	c.form = nil
	c.fieldErrors = nil
	c.formErr = ""
	c.taken = nil
	c.mu.Unlock()
	c.notify()
}

// SetField updates one form value. Name fields are uppercased as typed and
// checked against the name rule; a changed scope field reloads taken values.
func (c *Controller) SetField(ctx context.Context, name, value string) {
	c.mu.Lock()
	if c.modal != ModalOpen {
		c.mu.Unlock()
		return
	}
	f, ok := c.desc.Field(name)
	if !ok {
		c.mu.Unlock()
		return
	}
	value = c.desc.Normalize(name, value)
	prev := c.form[name]
	c.form[name] = value
	delete(c.fieldErrors, name)

	switch f.Kind {
	case resource.KindName:
		if names.Canonical(value) != "" {
			if fe := c.desc.CheckField(name, value); fe != nil {
				c.fieldErrors[name] = fe.Message
			}
		}
	case resource.KindOrder:
		if strings.TrimSpace(value) != "" {
			if fe := c.desc.CheckField(name, value); fe != nil {
				c.fieldErrors[name] = fe.Message
			} else if msg := c.takenLocked(name, value); msg != "" {
				c.fieldErrors[name] = msg
			}
		}
	}

	reload := false
	for _, s := range c.desc.Scoped {
		if s.Scope == name && prev != value {
			reload = true
		}
	}
	seq := c.modalSeq
	c.mu.Unlock()
	c.notify()

	if reload {
		c.loadTaken(ctx, seq)
	}
}

// takenLocked returns the conflict message when value of field is already
// used within its scope.
func (c *Controller) takenLocked(field, value string) string {
	n, ok := gateway.ToInt(strings.TrimSpace(value))
	if !ok {
		return ""
	}
	for _, v := range c.taken[field] {
		if v == n {
			return c.desc.ConflictMessage(field)
		}
	}
	return ""
}

// loadOptions fetches the rows of every parent table. A non-zero seq ties the
// result to one opening of the form; a zero seq reports failures on the page
// until the next Load.
func (c *Controller) loadOptions(ctx context.Context, seq uint64) {
	if seq == 0 {
		c.mu.Lock()
		c.lookupErr = ""
		c.mu.Unlock()
	}
	for _, p := range c.desc.Parents() {
		rows, err := gateway.ListAll(ctx, c.gw, p.Ref, gateway.Query{Sort: "name"}, c.cfg.LookupPage)

		c.mu.Lock()
		if c.closed || (seq != 0 && seq != c.modalSeq) {
			c.mu.Unlock()
			return
		}
		if err != nil {
			msg := "failed to load " + strings.ToLower(p.Label) + " options"
			if seq != 0 {
				c.formErr = msg
			} else {
				c.lookupErr = msg
			}
			c.mu.Unlock()
			c.log.Warn("lookup failed", zap.String("ref", p.Ref), zap.Error(err))
			c.notify()
			continue
		}
		opts := make([]Option, 0, len(rows))
		for _, r := range rows {
			opts = append(opts, Option{ID: r.ID(), Name: r.String("name")})
		}
		c.options[p.Name] = opts
		c.mu.Unlock()
		c.notify()
	}
}

// loadTaken fetches the values of scoped-unique fields already used by other
// rows sharing the form's scope value.
func (c *Controller) loadTaken(ctx context.Context, seq uint64) {
	for _, s := range c.desc.Scoped {
		c.mu.Lock()
		if c.modalSeq != seq || c.form == nil {
			c.mu.Unlock()
			return
		}
		scopeValue := c.form[s.Scope]
		exclude := c.editingID
		c.mu.Unlock()

		var taken []int
		if scopeValue != "" {
			rows, err := gateway.ListAll(ctx, c.gw, c.desc.Table,
				gateway.Query{Sort: s.Field, Eq: map[string]string{s.Scope: scopeValue}}, c.cfg.LookupPage)
			if err != nil {
				c.log.Warn("taken values lookup failed", zap.String("field", s.Field), zap.Error(err))
			}
			for _, r := range rows {
				if r.ID() == exclude {
					continue
				}
				if n, ok := r.Int(s.Field); ok {
					taken = append(taken, n)
				}
			}
			sort.Ints(taken)
		}

		c.mu.Lock()
		if c.modalSeq != seq || c.form == nil || c.form[s.Scope] != scopeValue {
			c.mu.Unlock()
			return
		}
		if c.taken == nil {
			c.taken = map[string][]int{}
		}
		c.taken[s.Field] = taken
		if v := c.form[s.Field]; c.fieldErrors[s.Field] == "" {
			if msg := c.takenLocked(s.Field, v); msg != "" {
				c.fieldErrors[s.Field] = msg
			}
		}
		c.mu.Unlock()
		c.notify()
	}
}

// Submit validates the form and saves it. On success the form closes, a
// success message is shown and the list is refreshed. Every failure leaves
// the form open with its values; the returned error says why.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.modal != ModalOpen {
		c.mu.Unlock()
		return nil
	}
	actor := ""
	if c.actor != nil {
		actor = c.actor.Actor()
	}
	if actor == "" {
		c.formErr = gateway.ErrNotAuthenticated.Error()
		c.mu.Unlock()
		c.notify()
		return gateway.ErrNotAuthenticated
	}

	fields, errs := c.desc.Validate(c.form)
	for _, s := range c.desc.Scoped {
		if _, bad := indexOf(errs, s.Field); bad {
			continue
		}
		if msg := c.takenLocked(s.Field, c.form[s.Field]); msg != "" {
			errs = append(errs, gateway.FieldError{Code: gateway.CodeUniqueViolation, Field: s.Field, Message: msg})
		}
	}
	if len(errs) > 0 {
		c.fieldErrors = map[string]string{}
		for _, fe := range errs {
			c.fieldErrors[fe.Field] = fe.Message
		}
		c.formErr = ""
		c.mu.Unlock()
		c.notify()
		return &gateway.ValidationError{Fields: errs}
	}

	c.modal = ModalSubmitting
	c.formErr = ""
	c.fieldErrors = map[string]string{}
	seq := c.modalSeq
	id := c.editingID
	scope := c.desc.NameFieldScope(c.form)
	c.mu.Unlock()
	c.notify()

	name, _ := fields["name"].(string)
	exists, err := c.gw.ExistsByName(ctx, c.desc.Table, name, scope, id)
	if err != nil {
		return c.failSubmit(seq, err)
	}
	if exists {
		fe := gateway.FieldError{Code: gateway.CodeUniqueViolation, Field: "name", Message: c.desc.ConflictMessage("name")}
		return c.failSubmit(seq, &gateway.ValidationError{Fields: []gateway.FieldError{fe}})
	}

	var row gateway.Row
	if id == "" {
		row, err = c.gw.Insert(ctx, c.desc.Table, fields, actor)
	} else {
		row, err = c.gw.Update(ctx, c.desc.Table, id, fields, actor)
	}
	if err != nil {
		return c.failSubmit(seq, err)
	}

	verb := "created"
	if id != "" {
		verb = "updated"
	}
	c.log.Info("saved", zap.String("id", row.ID()), zap.String("op", verb))

	c.mu.Lock()
	if seq == c.modalSeq {
		c.modalSeq++
		c.modal = ModalClosed
		c.editingID = ""
		c.form = nil
		c.fieldErrors = nil
		c.taken = nil
	}
	c.flashLocked(c.desc.Singular + " " + verb)
	c.issueLocked()
	c.mu.Unlock()
	c.notify()
	return nil
}

// failSubmit reopens the form with err reported on the offending field or as
// the form banner.
func (c *Controller) failSubmit(seq uint64, err error) error {
	var conflict *gateway.ConflictError
	var verr *gateway.ValidationError

	c.mu.Lock()
	if seq != c.modalSeq {
		c.mu.Unlock()
		return err
	}
	c.modal = ModalOpen
	switch {
	case errors.As(err, &conflict) && conflict.Field != "":
		c.fieldErrors[conflict.Field] = c.desc.ConflictMessage(conflict.Field)
		if n, ok := gateway.ToInt(c.form[conflict.Field]); ok {
			if _, scoped := c.desc.ScopedFor(conflict.Field); scoped {
				if c.taken == nil {
					c.taken = map[string][]int{}
				}
				c.taken[conflict.Field] = append(c.taken[conflict.Field], n)
			}
		}
	case errors.As(err, &verr):
		for _, fe := range verr.Fields {
			c.fieldErrors[fe.Field] = fe.Message
		}
	case errors.Is(err, gateway.ErrNotAuthenticated):
		c.formErr = gateway.ErrNotAuthenticated.Error()
	default:
		c.formErr = "failed to save " + strings.ToLower(c.desc.Singular)
		c.log.Warn("save failed", zap.Error(err))
	}
	c.mu.Unlock()
	c.notify()
	return err
}

// flashLocked shows msg until FlashTTL has passed.
func (c *Controller) flashLocked(msg string) {
	c.success = msg
	c.flashUntil = c.now().Add(c.cfg.FlashTTL)
	if c.flashTimer != nil {
		c.flashTimer.Stop()
	}
	c.flashTimer = time.AfterFunc(c.cfg.FlashTTL, c.notify)
}

// Close stops timers, cancels the query in flight and waits for running
// queries to return. The controller ignores all calls afterwards.
func (c *Controller) Close() {
	c.debounce.Cancel()
	c.mu.Lock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.flashTimer != nil {
		c.flashTimer.Stop()
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func indexOf(errs []gateway.FieldError, field string) (int, bool) {
	for i, fe := range errs {
		if fe.Field == field {
			return i, true
		}
	}
	return -1, false
}

func copyStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
