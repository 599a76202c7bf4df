package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/teamsales/salesportal/models"
)

type fakeUsers struct {
	mu         sync.Mutex
	docs       map[string]models.User
	listErr    error
	failCreate error
}

func newFakeUsers(users ...models.User) *fakeUsers {
	f := &fakeUsers{docs: make(map[string]models.User)}
	for _, u := range users {
		f.docs[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Get(_ context.Context, uid string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.docs[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (f *fakeUsers) sorted(keep func(models.User) bool) []models.User {
	out := make([]models.User, 0)
	for _, id := range models.SortedKeys(f.docs) {
		if keep(f.docs[id]) {
			out = append(out, f.docs[id])
		}
	}
	return out
}

func (f *fakeUsers) List(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sorted(func(models.User) bool { return true }), nil
}

func (f *fakeUsers) ListByManager(_ context.Context, managerUID string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sorted(func(u models.User) bool { return u.ManagerUID == managerUID }), nil
}

func (f *fakeUsers) ListByLastWorkingDay(_ context.Context, date string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(u models.User) bool { return u.SistaArbetsdag == date }), nil
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	f.docs[user.ID] = *user
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, uid, name string, profile models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.docs[uid]
	if !ok {
		return ErrNotFound
	}
	u.Name, u.Profile = name, profile
	f.docs[uid] = u
	return nil
}

func (f *fakeUsers) Patch(_ context.Context, uid string, patch models.UserPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.docs[uid]
	if !ok {
		return ErrNotFound
	}
	patch.Apply(&u)
	f.docs[uid] = u
	return nil
}

func (f *fakeUsers) ClearManager(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.docs[uid]
	if !ok {
		return ErrNotFound
	}
	u.ManagerUID = ""
	f.docs[uid] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, uid)
	return nil
}

// fakeFinalReports keeps primaries and per-user copies the way the
// Firestore repository lays them out.
type fakeFinalReports struct {
	mu        sync.Mutex
	seq       int
	docs      map[string]models.FinalReport
	copies    map[string]map[string]models.UserReport
	listErr   error
	failWrite error
}

func newFakeFinalReports() *fakeFinalReports {
	return &fakeFinalReports{docs: make(map[string]models.FinalReport), copies: make(map[string]map[string]models.UserReport)}
}

func (f *fakeFinalReports) putCopies(r *models.FinalReport) {
	for _, c := range r.UserReports() {
		if f.copies[c.UserID] == nil {
			f.copies[c.UserID] = make(map[string]models.UserReport)
		}
		f.copies[c.UserID][c.ID] = c
	}
}

// seed stores reports without going through a service.
func (f *fakeFinalReports) seed(reports ...models.FinalReport) {
	for i := range reports {
		r := reports[i]
		r.Recount()
		_ = f.Create(context.Background(), &r)
	}
}

func (f *fakeFinalReports) duplicate(r *models.FinalReport) bool {
	for id, d := range f.docs {
		if id != r.ID && d.ManagerUID == r.ManagerUID && d.Date == r.Date &&
			d.Organisation == r.Organisation && d.Location == r.Location {
			return true
		}
	}
	return false
}

func (f *fakeFinalReports) Create(_ context.Context, r *models.FinalReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		return f.failWrite
	}
	if f.duplicate(r) {
		return ErrConflict
	}
	if r.ID == "" {
		f.seq++
		r.ID = fmt.Sprintf("fr-%d", f.seq)
	}
	f.docs[r.ID] = *r
	f.putCopies(r)
	return nil
}

func (f *fakeFinalReports) Replace(_ context.Context, r *models.FinalReport) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		return nil, f.failWrite
	}
	old, ok := f.docs[r.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if f.duplicate(r) {
		return nil, ErrConflict
	}
	var removed []string
	for _, uid := range models.SortedKeys(old.Members) {
		if _, still := r.Members[uid]; !still {
			delete(f.copies[uid], r.ID)
			removed = append(removed, uid)
		}
	}
	f.docs[r.ID] = *r
	f.putCopies(r)
	return removed, nil
}

func (f *fakeFinalReports) Delete(_ context.Context, id string) (*models.FinalReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	for _, byID := range f.copies {
		for key, c := range byID {
			if c.FinalReportID == id {
				delete(byID, key)
			}
		}
	}
	delete(f.docs, id)
	return &r, nil
}

func (f *fakeFinalReports) Get(_ context.Context, id string) (*models.FinalReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (f *fakeFinalReports) List(_ context.Context, q models.ReportQuery) ([]models.FinalReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.FinalReport, 0)
	for _, id := range models.SortedKeys(f.docs) {
		if r := f.docs[id]; q.Matches(r.ManagerUID, r.Date) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (f *fakeFinalReports) ListForUser(_ context.Context, uid string, q models.ReportQuery) ([]models.UserReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.UserReport, 0)
	for _, id := range models.SortedKeys(f.copies[uid]) {
		c := f.copies[uid][id]
		if (models.ReportQuery{From: q.From, To: q.To}).Matches("", c.Date) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

type fakeQualityReports struct {
	mu      sync.Mutex
	seq     int
	docs    map[string]models.QualityReport
	listErr error
}

func newFakeQualityReports(reports ...models.QualityReport) *fakeQualityReports {
	f := &fakeQualityReports{docs: make(map[string]models.QualityReport)}
	for i := range reports {
		r := reports[i]
		r.AssignedTo = r.Assignees()
		_ = f.Create(context.Background(), &r)
	}
	return f
}

func (f *fakeQualityReports) duplicate(r *models.QualityReport) bool {
	for id, d := range f.docs {
		if id != r.ID && d.Date == r.Date && d.Organisation == r.Organisation && d.ManagerUID == r.ManagerUID {
			return true
		}
	}
	return false
}

func (f *fakeQualityReports) Create(_ context.Context, r *models.QualityReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.duplicate(r) {
		return ErrConflict
	}
	if r.ID == "" {
		f.seq++
		r.ID = fmt.Sprintf("qr-%d", f.seq)
	}
	f.docs[r.ID] = *r
	return nil
}

func (f *fakeQualityReports) Replace(_ context.Context, r *models.QualityReport) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.docs[r.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if f.duplicate(r) {
		return nil, ErrConflict
	}
	var removed []string
	for _, uid := range models.SortedKeys(old.Members) {
		if _, still := r.Members[uid]; !still {
			removed = append(removed, uid)
		}
	}
	f.docs[r.ID] = *r
	return removed, nil
}

func (f *fakeQualityReports) Delete(_ context.Context, id string) (*models.QualityReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(f.docs, id)
	return &r, nil
}

func (f *fakeQualityReports) Get(_ context.Context, id string) (*models.QualityReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (f *fakeQualityReports) filter(keep func(models.QualityReport) bool) ([]models.QualityReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.QualityReport, 0)
	for _, id := range models.SortedKeys(f.docs) {
		if keep(f.docs[id]) {
			out = append(out, f.docs[id])
		}
	}
	return out, nil
}

func (f *fakeQualityReports) List(_ context.Context, q models.ReportQuery) ([]models.QualityReport, error) {
	return f.filter(func(r models.QualityReport) bool { return q.Matches(r.ManagerUID, r.Date) })
}

func (f *fakeQualityReports) ListAssignedTo(_ context.Context, uid string, q models.ReportQuery) ([]models.QualityReport, error) {
	return f.filter(func(r models.QualityReport) bool {
		if !(models.ReportQuery{From: q.From, To: q.To}).Matches("", r.Date) {
			return false
		}
		for _, a := range r.AssignedTo {
			if a == uid {
				return true
			}
		}
		return false
	})
}

func (f *fakeQualityReports) ListForUser(ctx context.Context, uid string, q models.ReportQuery) ([]models.UserQualityReport, error) {
	reports, err := f.ListAssignedTo(ctx, uid, q)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserQualityReport, 0)
	for i := range reports {
		for _, c := range reports[i].UserReports() {
			if c.UserID == uid {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

type fakeOrgs struct {
	orgs    []models.Organization
	listErr error
}

func (f *fakeOrgs) List(context.Context) ([]models.Organization, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Organization(nil), f.orgs...), nil
}

func (f *fakeOrgs) Create(_ context.Context, org *models.Organization) error {
	org.ID = fmt.Sprintf("org-%d", len(f.orgs)+1)
	f.orgs = append(f.orgs, *org)
	return nil
}

func (f *fakeOrgs) Rename(_ context.Context, id, name string) error {
	for i := range f.orgs {
		if f.orgs[i].ID == id {
			f.orgs[i].Name = name
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeOrgs) Delete(_ context.Context, id string) error {
	for i := range f.orgs {
		if f.orgs[i].ID == id {
			f.orgs = append(f.orgs[:i], f.orgs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type fakeCache struct {
	mu         sync.Mutex
	users      map[string]models.User
	revoked    map[string]time.Time
	suppressed map[string]bool
	evicted    []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{users: map[string]models.User{}, revoked: map[string]time.Time{}, suppressed: map[string]bool{}}
}

func (c *fakeCache) CachedUser(_ context.Context, uid string) (*models.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.users[uid]
	if !ok {
		return nil, false
	}
	return &u, true
}

func (c *fakeCache) CacheUser(_ context.Context, user *models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[user.ID] = *user
}

func (c *fakeCache) EvictUser(_ context.Context, uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, uid)
	c.evicted = append(c.evicted, uid)
}

func (c *fakeCache) Revoke(_ context.Context, tokenID string, until time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[tokenID] = until
	return nil
}

func (c *fakeCache) IsRevoked(_ context.Context, tokenID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.revoked[tokenID]
	return ok
}

func (c *fakeCache) SuppressProfileGate(_ context.Context, uid string, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suppressed[uid] = true
}

func (c *fakeCache) ReleaseProfileGate(_ context.Context, uid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.suppressed, uid)
}

func (c *fakeCache) ProfileGateSuppressed(_ context.Context, uid string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suppressed[uid]
}

// fakeIdentity records account calls. onCreate runs inside CreateAccount.
type fakeIdentity struct {
	seq       int
	passwords map[string]string
	uids      map[string]string
	disabled  []string
	signInErr error
	onCreate  func()
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{passwords: map[string]string{}, uids: map[string]string{}}
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (string, error) {
	if f.signInErr != nil {
		return "", f.signInErr
	}
	if p, ok := f.passwords[email]; !ok || p != password {
		return "", fmt.Errorf("%w: INVALID_PASSWORD", ErrInvalidCredentials)
	}
	return f.uids[email], nil
}

func (f *fakeIdentity) CreateAccount(_ context.Context, email, password, _ string) (string, error) {
	if f.onCreate != nil {
		f.onCreate()
	}
	if _, ok := f.uids[email]; ok {
		return "", fmt.Errorf("%w: email already exists", ErrConflict)
	}
	f.seq++
	uid := fmt.Sprintf("uid-%d", f.seq)
	f.passwords[email] = password
	f.uids[email] = uid
	return uid, nil
}

func (f *fakeIdentity) DisableAccount(_ context.Context, uid string) error {
	f.disabled = append(f.disabled, uid)
	return nil
}

func (f *fakeIdentity) PasswordResetLink(_ context.Context, email string) (string, error) {
	return "https://example.test/reset?email=" + email, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	uids []string
}

func (n *recordingNotifier) NotifyDashboardChanged(uids ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.uids = append(n.uids, uids...)
}

type fakeSpecs struct {
	stored map[string]map[string]models.SalesSpecification
	keys   map[string]string
}

func newFakeSpecs() *fakeSpecs {
	return &fakeSpecs{stored: map[string]map[string]models.SalesSpecification{}, keys: map[string]string{}}
}

func (f *fakeSpecs) Upsert(_ context.Context, uid, periodKey string, spec models.SalesSpecification) error {
	if f.stored[uid] == nil {
		f.stored[uid] = map[string]models.SalesSpecification{}
	}
	f.stored[uid][spec.Period] = spec
	f.keys[spec.Period] = periodKey
	return nil
}

func (f *fakeSpecs) ListStored(_ context.Context, uid string) (map[string]models.SalesSpecification, error) {
	return f.stored[uid], nil
}

type fakeMaterial struct {
	items map[string]models.MaterialItem
}

func newFakeMaterial() *fakeMaterial { return &fakeMaterial{items: map[string]models.MaterialItem{}} }

func (f *fakeMaterial) List(_ context.Context, managerUID string) ([]models.MaterialItem, error) {
	out := make([]models.MaterialItem, 0)
	for _, k := range models.SortedKeys(f.items) {
		if f.items[k].ManagerUID == managerUID {
			out = append(out, f.items[k])
		}
	}
	return out, nil
}

func (f *fakeMaterial) Get(_ context.Context, managerUID, itemID string) (*models.MaterialItem, error) {
	item, ok := f.items[itemID]
	if !ok || item.ManagerUID != managerUID {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (f *fakeMaterial) Save(_ context.Context, item *models.MaterialItem) error {
	if old, ok := f.items[item.ID]; ok {
		item.Reports = old.Reports
	}
	f.items[item.ID] = *item
	return nil
}

func (f *fakeMaterial) AppendReport(_ context.Context, managerUID, itemID string, report models.IncidentReport) error {
	item, ok := f.items[itemID]
	if !ok || item.ManagerUID != managerUID {
		return ErrNotFound
	}
	item.Reports = append(item.Reports, report)
	f.items[itemID] = item
	return nil
}

func (f *fakeMaterial) Delete(_ context.Context, managerUID, itemID string) error {
	if _, err := f.Get(context.Background(), managerUID, itemID); err != nil {
		return err
	}
	delete(f.items, itemID)
	return nil
}

func stockholm() *time.Location {
	loc, err := time.LoadLocation("Europe/Stockholm")
	if err != nil {
		panic(err)
	}
	return loc
}

func fixedNow(loc *time.Location, y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 12, 0, 0, 0, loc) }
}
