package console

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"

	"osiedle/internal/core/apperror"
	appctx "osiedle/internal/core/context"
	"osiedle/internal/gateway"
	"osiedle/internal/schema"
	"osiedle/pkg/logger"
)

// backend is the slice of the gateway the controller drives. The concrete
// gateway.Client satisfies it; tests substitute a fake.
type backend interface {
	List(ctx context.Context, table string) ([]*schema.Record, error)
	Search(ctx context.Context, table, query string) ([]*schema.Record, error)
	Insert(ctx context.Context, table string, record *schema.Record) error
	Update(ctx context.Context, table, idField, idValue string, record *schema.Record) error
	Delete(ctx context.Context, table, idField, idValue string) error
	BulkDelete(ctx context.Context, table, idField string, idValues []string) error
	AddFee(ctx context.Context, apartmentID, serviceID int64, consumption float64) (*gateway.AddFeeResult, error)
	LoginAdmin(ctx context.Context, login, password string) (*gateway.LoginResponse, error)
	LoginResident(ctx context.Context, email, apartmentNumber string) (*gateway.LoginResponse, error)
	IncreaseFees(ctx context.Context, percent float64) (*gateway.AddFeeResult, error)
	CountRecords(ctx context.Context, table string) (int64, error)
	ApartmentFees(ctx context.Context, apartmentID int64) (float64, error)
	View(ctx context.Context, name string) ([]*schema.Record, error)
	ReportSummary(ctx context.Context) (map[string]json.RawMessage, error)
	AuditLogs(ctx context.Context) ([]*schema.Record, error)
	MyData(ctx context.Context, apartmentID int64) (*gateway.ResidentSummary, error)
	ResidentRecords(ctx context.Context, kind string, apartmentID int64) ([]*schema.Record, error)
	Meetings(ctx context.Context) ([]*schema.Record, error)
	SubmitRepair(ctx context.Context, apartmentID int64, description string) error
	SetToken(token string)
}

// residentKinds maps resident views to the scoped endpoint kinds.
var residentKinds = map[string]string{
	"oplata":  "payments",
	"naprawa": "repairs",
	"zuzycie": "consumption",
}

// Controller wires the engine parts together: it owns the loaded record
// snapshot, the selection, the sort and search state, and the active form.
type Controller struct {
	api      backend
	sessions *SessionStore

	Router    *Router
	Selection *Selection
	Notifier  *Notifier
	searcher  *Searcher

	session *Session
	refdata *RefData

	// mu guards the fields below. Everything else is touched only by the
	// caller's event loop, but debounced searches complete on a timer
	// goroutine and land their results here.
	mu              sync.Mutex
	sortCfg         SortConfig
	searchTerm      string
	searchView      string
	records         []*schema.Record
	residentSummary *gateway.ResidentSummary
}

// NewController creates a Controller in the logged-out state.
func NewController(api backend, sessions *SessionStore) *Controller {
	c := &Controller{
		api:       api,
		sessions:  sessions,
		Router:    NewRouter(),
		Selection: NewSelection(""),
		Notifier:  NewNotifier(),
	}
	c.searcher = NewSearcher(c.dispatchSearch)
	return c
}

// Session returns the active session, nil when logged out.
func (c *Controller) Session() *Session {
	return c.session
}

// RefData returns the reference caches for dropdown rendering.
func (c *Controller) RefData() *RefData {
	return c.refdata
}

// SearchTerm returns the current search input.
func (c *Controller) SearchTerm() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchTerm
}

// Sort returns the active sort configuration.
func (c *Controller) Sort() SortConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sortCfg
}

// Records returns the loaded snapshot with the active sort applied.
func (c *Controller) Records() []*schema.Record {
	c.mu.Lock()
	rows, cfg := c.records, c.sortCfg
	c.mu.Unlock()
	return SortRecords(rows, cfg)
}

// ResidentSummary returns the dashboard payload loaded for the moje-dane
// view, nil elsewhere.
func (c *Controller) ResidentSummary() *gateway.ResidentSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.residentSummary
}

func (c *Controller) setRecords(rows []*schema.Record) {
	c.mu.Lock()
	c.records = rows
	c.mu.Unlock()
}

// Restore recognizes a persisted session at startup. An expired or missing
// session leaves the controller logged out without error.
func (c *Controller) Restore(ctx context.Context) error {
	sess, err := c.sessions.Load()
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	return c.enterSession(ctx, sess, sess.LastView)
}

// LoginAdmin authenticates an administrator and enters the admin view.
func (c *Controller) LoginAdmin(ctx context.Context, login, password string) error {
	resp, err := c.api.LoginAdmin(ctx, login, password)
	if err != nil {
		return err
	}
	sess := &Session{User: resp.User, Role: resp.Role, Token: resp.Token}
	if err := c.sessions.Save(sess); err != nil {
		logger.Warn(ctx, "failed to persist session", "error", err)
	}
	return c.enterSession(ctx, sess, "")
}

// LoginResident authenticates a resident and enters the resident portal.
func (c *Controller) LoginResident(ctx context.Context, email, apartmentNumber string) error {
	resp, err := c.api.LoginResident(ctx, email, apartmentNumber)
	if err != nil {
		return err
	}
	sess := &Session{User: resp.User, Role: resp.Role, Token: resp.Token}
	if err := c.sessions.Save(sess); err != nil {
		logger.Warn(ctx, "failed to persist session", "error", err)
	}
	return c.enterSession(ctx, sess, "")
}

func (c *Controller) enterSession(ctx context.Context, sess *Session, lastView string) error {
	c.api.SetToken(sess.Token)
	c.session = sess
	c.Selection = NewSelection(sess.Role)
	c.Router.Login(sess.Role, lastView)

	rd, err := LoadRefData(ctx, c.api)
	if err != nil {
		// Resident dropdown data is admin-gated; the portal works without it.
		if sess.Role == appctx.RoleAdmin {
			return err
		}
	} else {
		c.refdata = rd
	}
	return c.Reload(ctx)
}

// Logout clears the session, the persisted state and every piece of view
// state.
func (c *Controller) Logout() {
	if err := c.sessions.Clear(); err != nil {
		logger.Warn(context.Background(), "failed to clear session", "error", err)
	}
	c.searcher.Cancel()
	c.session = nil
	c.refdata = nil
	c.mu.Lock()
	c.records = nil
	c.residentSummary = nil
	c.searchTerm = ""
	c.searchView = ""
	c.sortCfg = SortConfig{}
	c.mu.Unlock()
	c.Selection = NewSelection("")
	c.Router.Logout()
	c.api.SetToken("")
}

// Navigate switches views. A real switch resets selection, search term and
// sort, and triggers exactly one fetch for the new view.
func (c *Controller) Navigate(ctx context.Context, view string) error {
	if !c.Router.Navigate(view) {
		return nil
	}
	c.searcher.Cancel()
	c.mu.Lock()
	c.searchTerm = ""
	c.searchView = ""
	c.sortCfg = SortConfig{}
	c.mu.Unlock()
	c.Selection.Clear()
	c.persistLastView()
	return c.Reload(ctx)
}

func (c *Controller) persistLastView() {
	if c.session == nil {
		return
	}
	c.session.LastView = c.Router.ActiveView()
	if err := c.sessions.Save(c.session); err != nil {
		logger.Warn(context.Background(), "failed to persist last view", "error", err)
	}
}

// Reload fetches the active view's records. Admins read the full table (or
// the server-side search when a term is active); residents only ever hit the
// endpoints scoped to their own apartment.
func (c *Controller) Reload(ctx context.Context) error {
	view := c.Router.ActiveView()

	switch c.Router.Screen() {
	case ScreenResident:
		return c.reloadResident(ctx, view)
	case ScreenAdmin:
		if !schema.IsValidTable(view) {
			c.setRecords(nil)
			return nil
		}
		term := c.SearchTerm()
		var (
			rows []*schema.Record
			err  error
		)
		if len(term) >= 1 {
			rows, err = c.api.Search(ctx, view, term)
		} else {
			rows, err = c.api.List(ctx, view)
		}
		if err != nil {
			c.Notifier.Error(userMessage(err))
			return err
		}
		c.setRecords(rows)
		return nil
	default:
		c.setRecords(nil)
		return nil
	}
}

func (c *Controller) reloadResident(ctx context.Context, view string) error {
	switch view {
	case "spotkania":
		rows, err := c.api.Meetings(ctx)
		if err != nil {
			c.Notifier.Error(userMessage(err))
			return err
		}
		c.setRecords(rows)
		return nil
	case "moje-dane":
		summary, err := c.api.MyData(ctx, c.session.ApartmentID())
		if err != nil {
			c.Notifier.Error(userMessage(err))
			return err
		}
		// The dashboard lists the fee history; the other sections are
		// read off the summary by the presentation layer.
		c.mu.Lock()
		c.residentSummary = summary
		c.records = summary.Fees
		c.mu.Unlock()
		return nil
	}
	kind, ok := residentKinds[view]
	if !ok {
		c.setRecords(nil)
		return nil
	}
	rows, err := c.api.ResidentRecords(ctx, kind, c.session.ApartmentID())
	if err != nil {
		c.Notifier.Error(userMessage(err))
		return err
	}
	c.setRecords(rows)
	return nil
}

// SearchInput registers a keystroke. The actual request fires after the
// debounce window; a change clears the selection immediately. The target
// view is captured here so the timer goroutine never reads the router.
func (c *Controller) SearchInput(term string) {
	view := ""
	if c.Router.Screen() == ScreenAdmin && schema.IsValidTable(c.Router.ActiveView()) {
		view = c.Router.ActiveView()
	}
	c.mu.Lock()
	c.searchTerm = term
	c.searchView = view
	c.mu.Unlock()
	c.Selection.Clear()
	c.searcher.Input(term)
}

// dispatchSearch runs on the debounce timer goroutine. It only touches
// mu-guarded state and the Notifier, and drops its result when the sequence
// number is no longer current.
func (c *Controller) dispatchSearch(term string, seq uint64) {
	ctx := context.Background()
	c.mu.Lock()
	view := c.searchView
	c.mu.Unlock()
	if view == "" {
		return
	}

	var (
		rows []*schema.Record
		err  error
	)
	if len(term) >= 1 {
		rows, err = c.api.Search(ctx, view, term)
	} else {
		rows, err = c.api.List(ctx, view)
	}
	if err != nil {
		if c.searcher.Current(seq) {
			c.Notifier.Error(userMessage(err))
		}
		return
	}
	c.mu.Lock()
	if c.searcher.Current(seq) {
		c.records = rows
	}
	c.mu.Unlock()
}

// ToggleSort applies a header click and clears the selection.
func (c *Controller) ToggleSort(key string) {
	c.mu.Lock()
	c.sortCfg = c.sortCfg.Toggle(key)
	c.mu.Unlock()
	c.Selection.Clear()
}

// BeginAdd opens an empty draft for the active table.
func (c *Controller) BeginAdd() *Form {
	return NewForm(c.Router.ActiveView(), nil, c.unitPrice)
}

// BeginEdit opens a draft seeded from record. Records without a resolvable
// primary key cannot be edited.
func (c *Controller) BeginEdit(record *schema.Record) (*Form, error) {
	if _, ok := record.PrimaryKey(); !ok {
		err := apperror.NewAmbiguousKey(c.Router.ActiveView())
		c.Notifier.Error(userMessage(err))
		return nil, err
	}
	return NewForm(c.Router.ActiveView(), record, c.unitPrice), nil
}

func (c *Controller) unitPrice(serviceID string) (decimal.Decimal, bool) {
	if c.refdata == nil {
		return decimal.Decimal{}, false
	}
	return c.refdata.UnitPrice(serviceID)
}

// SaveForm validates and submits a draft. On failure the caller must keep
// the form open; the draft is never discarded silently. On success the table
// reloads once and the selection resets.
func (c *Controller) SaveForm(ctx context.Context, f *Form) error {
	if err := f.Validate(); err != nil {
		c.Notifier.Error(userMessage(err))
		return err
	}

	var err error
	switch f.Plan() {
	case PlanAddFee:
		var (
			aptID, svcID int64
			qty          float64
		)
		aptID, svcID, qty, err = f.AddFeeParams()
		if err == nil {
			var res *gateway.AddFeeResult
			res, err = c.api.AddFee(ctx, aptID, svcID, qty)
			if err == nil {
				c.Notifier.Success(res.Message)
			}
		}
	case PlanUpdate:
		var field, value string
		field, value, err = f.OriginalKey()
		if err == nil {
			err = c.api.Update(ctx, c.Router.ActiveView(), field, value, f.Record())
			if err == nil {
				c.Notifier.Success("Zapisano zmiany")
			}
		}
	default:
		err = c.api.Insert(ctx, c.Router.ActiveView(), f.Record())
		if err == nil {
			c.Notifier.Success("Dodano rekord")
		}
	}

	if err != nil {
		c.Notifier.Error(userMessage(err))
		return err
	}
	c.Selection.Clear()
	return c.Reload(ctx)
}

// DeleteRecord removes one record after explicit confirmation. Unconfirmed
// calls do nothing.
func (c *Controller) DeleteRecord(ctx context.Context, record *schema.Record, confirmed bool) error {
	if !confirmed {
		return nil
	}
	key, ok := record.PrimaryKey()
	if !ok {
		err := apperror.NewAmbiguousKey(c.Router.ActiveView())
		c.Notifier.Error(userMessage(err))
		return err
	}
	if err := c.api.Delete(ctx, c.Router.ActiveView(), key, record.StringValue(key)); err != nil {
		c.Notifier.Error(userMessage(err))
		return err
	}
	c.Notifier.Success("Usunięto rekord")
	c.Selection.Clear()
	return c.Reload(ctx)
}

// BulkDeleteSelected deletes every selected record sequentially. Partial
// completion is expected: the table reloads exactly once regardless of
// failures and at most one failure notification is shown.
func (c *Controller) BulkDeleteSelected(ctx context.Context) error {
	keyField := schema.PrimaryKeyColumn(c.Router.ActiveView())
	rows := c.Records()
	visible := make([]string, 0, len(rows))
	for _, r := range rows {
		if key, ok := r.PrimaryKey(); ok {
			visible = append(visible, r.StringValue(key))
		}
	}
	ids := c.Selection.IDs(visible)
	if len(ids) == 0 {
		return nil
	}

	err := c.api.BulkDelete(ctx, c.Router.ActiveView(), keyField, ids)
	if err != nil {
		c.Notifier.Error(userMessage(err))
	} else {
		c.Notifier.Success("Usunięto zaznaczone rekordy")
	}

	c.Selection.Clear()
	if reloadErr := c.Reload(ctx); reloadErr != nil && err == nil {
		err = reloadErr
	}
	return err
}

// SubmitRepair files a repair request for the resident's own apartment.
func (c *Controller) SubmitRepair(ctx context.Context, description string) error {
	if c.session == nil || c.session.Role != appctx.RoleResident {
		return apperror.NewForbidden("tylko mieszkaniec może zgłosić naprawę")
	}
	if err := c.api.SubmitRepair(ctx, c.session.ApartmentID(), description); err != nil {
		c.Notifier.Error(userMessage(err))
		return err
	}
	c.Notifier.Success("Zgłoszenie przyjęte")
	return nil
}

func (c *Controller) requireAdmin() error {
	if c.session == nil || c.session.Role != appctx.RoleAdmin {
		return apperror.NewForbidden("wymagane uprawnienia administratora")
	}
	return nil
}

// IncreaseFees indexes every unit price by percent through the server-side
// procedure. Zero percent lets the server apply its default.
func (c *Controller) IncreaseFees(ctx context.Context, percent float64) error {
	if err := c.requireAdmin(); err != nil {
		c.Notifier.Error(userMessage(err))
		return err
	}
	res, err := c.api.IncreaseFees(ctx, percent)
	if err != nil {
		c.Notifier.Error(userMessage(err))
		return err
	}
	c.Notifier.Success(res.Message)
	return c.Reload(ctx)
}

// Summary fetches the aggregated management report.
func (c *Controller) Summary(ctx context.Context) (map[string]json.RawMessage, error) {
	if err := c.requireAdmin(); err != nil {
		c.Notifier.Error(userMessage(err))
		return nil, err
	}
	out, err := c.api.ReportSummary(ctx)
	if err != nil {
		c.Notifier.Error(userMessage(err))
		return nil, err
	}
	return out, nil
}

// ViewRecords fetches one of the predefined join views by name.
func (c *Controller) ViewRecords(ctx context.Context, name string) ([]*schema.Record, error) {
	if err := c.requireAdmin(); err != nil {
		c.Notifier.Error(userMessage(err))
		return nil, err
	}
	rows, err := c.api.View(ctx, name)
	if err != nil {
		c.Notifier.Error(userMessage(err))
		return nil, err
	}
	return rows, nil
}

// CountRecords returns the row count of one table.
func (c *Controller) CountRecords(ctx context.Context, table string) (int64, error) {
	if err := c.requireAdmin(); err != nil {
		c.Notifier.Error(userMessage(err))
		return 0, err
	}
	count, err := c.api.CountRecords(ctx, table)
	if err != nil {
		c.Notifier.Error(userMessage(err))
		return 0, err
	}
	return count, nil
}

// ApartmentFees returns the fee total of one apartment.
func (c *Controller) ApartmentFees(ctx context.Context, apartmentID int64) (float64, error) {
	if err := c.requireAdmin(); err != nil {
		c.Notifier.Error(userMessage(err))
		return 0, err
	}
	total, err := c.api.ApartmentFees(ctx, apartmentID)
	if err != nil {
		c.Notifier.Error(userMessage(err))
		return 0, err
	}
	return total, nil
}

// AuditLogs fetches the recent member-change audit entries.
func (c *Controller) AuditLogs(ctx context.Context) ([]*schema.Record, error) {
	if err := c.requireAdmin(); err != nil {
		c.Notifier.Error(userMessage(err))
		return nil, err
	}
	rows, err := c.api.AuditLogs(ctx)
	if err != nil {
		c.Notifier.Error(userMessage(err))
		return nil, err
	}
	return rows, nil
}

// userMessage extracts the human-readable message from an error.
func userMessage(err error) string {
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr.Message
	}
	return "Wystąpił nieoczekiwany błąd"
}
