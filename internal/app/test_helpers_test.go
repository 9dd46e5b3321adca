package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/ports/secondary"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// ============================================================================
// Case repository
// ============================================================================

var _ secondary.CaseRepository = (*mockCaseRepository)(nil)

type mockCaseRepository struct {
	mu        sync.Mutex
	cases     map[int64]*secondary.CaseRecord
	nextID    int64
	createErr error
	closeErr  error
}

func newMockCaseRepository() *mockCaseRepository {
	return &mockCaseRepository{cases: make(map[int64]*secondary.CaseRecord), nextID: 1}
}

func (m *mockCaseRepository) put(c *secondary.CaseRecord) *secondary.CaseRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		c.ID = m.nextID
	}
	if c.ID >= m.nextID {
		m.nextID = c.ID + 1
	}
	m.cases[c.ID] = c
	return c
}

func (m *mockCaseRepository) get(id int64) secondary.CaseRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.cases[id]
}

func (m *mockCaseRepository) Create(ctx context.Context, c *secondary.CaseRecord) (*secondary.CaseRecord, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.mu.Lock()
	for _, existing := range m.cases {
		if existing.ChannelID == c.ChannelID {
			m.mu.Unlock()
			return nil, courterr.Conflict("case.create", "channel %d already has a case", c.ChannelID)
		}
	}
	m.mu.Unlock()
	cp := *c
	cp.ID = 0
	cp.CreatedAt = time.Now().UTC()
	created := m.put(&cp)
	out := *created
	return &out, nil
}

func (m *mockCaseRepository) GetByID(ctx context.Context, id int64) (*secondary.CaseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, courterr.NotFound("case.get", "case %d not found", id)
	}
	cp := *c
	return &cp, nil
}

func (m *mockCaseRepository) GetByChannel(ctx context.Context, channelID int64) (*secondary.CaseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cases {
		if c.ChannelID == channelID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, courterr.NotFound("case.get", "this channel is not a case channel")
}

func (m *mockCaseRepository) NextID(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextID, nil
}

func (m *mockCaseRepository) conflict(id int64) error {
	return courterr.Conflict("case.update", "case %d is already in a different state (status: %s)", id, m.cases[id].Status)
}

func (m *mockCaseRepository) Assign(ctx context.Context, id, judgeID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return courterr.NotFound("case.assign", "case %d not found", id)
	}
	if c.Status != "open" || c.AssignedJudgeID != 0 {
		return m.conflict(id)
	}
	c.Status = "assigned"
	c.AssignedJudgeID = judgeID
	return nil
}

func (m *mockCaseRepository) Close(ctx context.Context, id int64, fields secondary.CloseFields) error {
	if m.closeErr != nil {
		return m.closeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return courterr.NotFound("case.close", "case %d not found", id)
	}
	if c.Status == "closed" {
		return m.conflict(id)
	}
	c.Status = "closed"
	c.ClosedAt = fields.ClosedAt
	c.ClosingReason = fields.Reason
	c.ArchiveRef = fields.ArchiveRef
	c.Archived = true
	return nil
}

func (m *mockCaseRepository) MarkArchived(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return courterr.NotFound("case.archive", "case %d not found", id)
	}
	if c.Status == "closed" || c.Archived {
		return m.conflict(id)
	}
	c.Archived = true
	return nil
}

func (m *mockCaseRepository) sorted() []*secondary.CaseRecord {
	out := make([]*secondary.CaseRecord, 0, len(m.cases))
	for _, c := range m.cases {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *mockCaseRepository) List(ctx context.Context, filters secondary.CaseFilters) ([]*secondary.CaseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.CaseRecord
	for _, c := range m.sorted() {
		if filters.Status != "" && c.Status != filters.Status {
			continue
		}
		if filters.JudgeID != 0 && c.AssignedJudgeID != filters.JudgeID {
			continue
		}
		if filters.Archived != nil && c.Archived != *filters.Archived {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCaseRepository) Search(ctx context.Context, term string, limit int) ([]*secondary.CaseRecord, error) {
	return nil, nil
}

func (m *mockCaseRepository) Stats(ctx context.Context) (*secondary.CaseStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &secondary.CaseStats{ByStatus: map[string]int{}}
	for _, c := range m.cases {
		stats.Total++
		stats.ByStatus[c.Status]++
		if c.Archived {
			stats.Archived++
		}
	}
	return stats, nil
}

func (m *mockCaseRepository) CountOpenAssigned(ctx context.Context, judgeID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.cases {
		if c.AssignedJudgeID == judgeID && c.Status != "closed" {
			n++
		}
	}
	return n, nil
}

// ============================================================================
// Evidence repository
// ============================================================================

var _ secondary.EvidenceRepository = (*mockEvidenceRepository)(nil)

type mockEvidenceRepository struct {
	mu     sync.Mutex
	items  map[int64][]*secondary.EvidenceRecord
	nextID int64
	listErr error
}

func newMockEvidenceRepository() *mockEvidenceRepository {
	return &mockEvidenceRepository{items: make(map[int64][]*secondary.EvidenceRecord)}
}

func (m *mockEvidenceRepository) Add(ctx context.Context, item *secondary.EvidenceRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	item.ID = m.nextID
	item.SubmittedAt = time.Now().UTC()
	m.items[item.CaseID] = append(m.items[item.CaseID], item)
	item.Position = len(m.items[item.CaseID])
	return item.Position, nil
}

func (m *mockEvidenceRepository) RemoveAt(ctx context.Context, caseID int64, position int) (*secondary.EvidenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.items[caseID]
	if position < 1 || position > len(list) {
		return nil, courterr.NotFound("evidence.remove", "evidence %d.%d not found", caseID, position)
	}
	removed := *list[position-1]
	removed.Position = position
	m.items[caseID] = append(list[:position-1:position-1], list[position:]...)
	return &removed, nil
}

func (m *mockEvidenceRepository) List(ctx context.Context, caseID int64) ([]*secondary.EvidenceRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*secondary.EvidenceRecord, len(m.items[caseID]))
	for i, item := range m.items[caseID] {
		cp := *item
		cp.Position = i + 1
		out[i] = &cp
	}
	return out, nil
}

func (m *mockEvidenceRepository) At(ctx context.Context, caseID int64, position int) (*secondary.EvidenceRecord, error) {
	items, _ := m.List(ctx, caseID)
	if position < 1 || position > len(items) {
		return nil, courterr.NotFound("evidence.at", "evidence %d.%d not found", caseID, position)
	}
	return items[position-1], nil
}

func (m *mockEvidenceRepository) Count(ctx context.Context, caseID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items[caseID]), nil
}

// ============================================================================
// Judge and category repositories
// ============================================================================

var _ secondary.JudgeRepository = (*mockJudgeRepository)(nil)

type mockJudgeRepository struct {
	judges map[int64]*secondary.JudgeRecord
}

func newMockJudgeRepository() *mockJudgeRepository {
	return &mockJudgeRepository{judges: make(map[int64]*secondary.JudgeRecord)}
}

func (m *mockJudgeRepository) Upsert(ctx context.Context, j *secondary.JudgeRecord) error {
	cp := *j
	m.judges[j.UserID] = &cp
	return nil
}

func (m *mockJudgeRepository) GetByUser(ctx context.Context, userID int64) (*secondary.JudgeRecord, error) {
	j, ok := m.judges[userID]
	if !ok {
		return nil, courterr.NotFound("judge.get", "user %d is not a judge", userID)
	}
	cp := *j
	return &cp, nil
}

func (m *mockJudgeRepository) List(ctx context.Context) ([]*secondary.JudgeRecord, error) {
	var out []*secondary.JudgeRecord
	for _, j := range m.judges {
		cp := *j
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CategoryName < out[k].CategoryName })
	return out, nil
}

func (m *mockJudgeRepository) Delete(ctx context.Context, userID int64) error {
	if _, ok := m.judges[userID]; !ok {
		return courterr.NotFound("judge.delete", "user %d is not a judge", userID)
	}
	delete(m.judges, userID)
	return nil
}

var _ secondary.CategoryRepository = (*mockCategoryRepository)(nil)

type mockCategoryRepository struct {
	categories map[int64]*secondary.CategoryRecord
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[int64]*secondary.CategoryRecord)}
}

func (m *mockCategoryRepository) Upsert(ctx context.Context, c *secondary.CategoryRecord) error {
	cp := *c
	if cp.Kind == "" {
		cp.Kind = "custom"
	}
	m.categories[c.CategoryID] = &cp
	return nil
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, categoryID int64) (*secondary.CategoryRecord, error) {
	c, ok := m.categories[categoryID]
	if !ok {
		return nil, courterr.NotFound("category.get", "category %d is not registered", categoryID)
	}
	cp := *c
	return &cp, nil
}

func (m *mockCategoryRepository) GetArchive(ctx context.Context) (*secondary.CategoryRecord, error) {
	for _, c := range m.categories {
		if c.Kind == "archive" {
			cp := *c
			return &cp, nil
		}
	}
	return nil, courterr.NotFound("category.archive", "no archive category is configured")
}

func (m *mockCategoryRepository) SetArchive(ctx context.Context, categoryID int64, name string) error {
	for _, c := range m.categories {
		if c.Kind == "archive" {
			c.Kind = "custom"
		}
	}
	m.categories[categoryID] = &secondary.CategoryRecord{CategoryID: categoryID, Name: name, Kind: "archive"}
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context, kind string) ([]*secondary.CategoryRecord, error) {
	var out []*secondary.CategoryRecord
	for _, c := range m.categories {
		if kind != "" && c.Kind != kind {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, categoryID int64) error {
	if _, ok := m.categories[categoryID]; !ok {
		return courterr.NotFound("category.delete", "category %d is not registered", categoryID)
	}
	delete(m.categories, categoryID)
	return nil
}

// ============================================================================
// Notification, role and panel repositories
// ============================================================================

var _ secondary.NotificationRepository = (*mockNotificationRepository)(nil)

type mockNotificationRepository struct {
	notifications map[int64]*secondary.NotificationRecord
	nextID        int64
	// markedElsewhere simulates an overlapping sweep that already marked ids.
	markedElsewhere map[int64]bool
}

func newMockNotificationRepository() *mockNotificationRepository {
	return &mockNotificationRepository{
		notifications:   make(map[int64]*secondary.NotificationRecord),
		markedElsewhere: make(map[int64]bool),
	}
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *secondary.NotificationRecord) (int64, error) {
	m.nextID++
	cp := *n
	cp.ID = m.nextID
	m.notifications[cp.ID] = &cp
	return cp.ID, nil
}

func (m *mockNotificationRepository) GetByID(ctx context.Context, id int64) (*secondary.NotificationRecord, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, courterr.NotFound("notification.get", "notification %d not found", id)
	}
	cp := *n
	return &cp, nil
}

func (m *mockNotificationRepository) DeleteUnsent(ctx context.Context, id int64) error {
	n, ok := m.notifications[id]
	if !ok {
		return courterr.NotFound("notification.cancel", "notification %d not found", id)
	}
	if n.Sent {
		return courterr.Conflict("notification.cancel", "notification %d has already been sent and cannot be cancelled", id)
	}
	delete(m.notifications, id)
	return nil
}

func (m *mockNotificationRepository) ListPending(ctx context.Context) ([]*secondary.NotificationRecord, error) {
	var out []*secondary.NotificationRecord
	for _, n := range m.notifications {
		if !n.Sent {
			cp := *n
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (m *mockNotificationRepository) ListDue(ctx context.Context, now time.Time) ([]*secondary.NotificationRecord, error) {
	pending, _ := m.ListPending(ctx)
	var out []*secondary.NotificationRecord
	for _, n := range pending {
		if !n.ScheduledAt.After(now) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepository) MarkSent(ctx context.Context, id int64, at time.Time) (bool, error) {
	n, ok := m.notifications[id]
	if !ok || n.Sent || m.markedElsewhere[id] {
		return false, nil
	}
	n.Sent = true
	n.SentAt = at
	return true, nil
}

var _ secondary.RolePermissionRepository = (*mockRoleRepository)(nil)

type mockRoleRepository struct {
	bindings map[string]*secondary.RolePermissionRecord
}

func newMockRoleRepository() *mockRoleRepository {
	return &mockRoleRepository{bindings: make(map[string]*secondary.RolePermissionRecord)}
}

func (m *mockRoleRepository) Set(ctx context.Context, p *secondary.RolePermissionRecord) error {
	cp := *p
	m.bindings[p.Function] = &cp
	return nil
}

func (m *mockRoleRepository) Get(ctx context.Context, guildID int64, function string) (*secondary.RolePermissionRecord, error) {
	b, ok := m.bindings[function]
	if !ok || b.GuildID != guildID {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (m *mockRoleRepository) List(ctx context.Context, guildID int64) ([]*secondary.RolePermissionRecord, error) {
	var out []*secondary.RolePermissionRecord
	for _, b := range m.bindings {
		if b.GuildID == guildID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

var _ secondary.PanelRepository = (*mockPanelRepository)(nil)

type mockPanelRepository struct {
	panels []*secondary.PanelRecord
}

func (m *mockPanelRepository) Create(ctx context.Context, p *secondary.PanelRecord) (int64, error) {
	cp := *p
	cp.ID = int64(len(m.panels) + 1)
	m.panels = append(m.panels, &cp)
	return cp.ID, nil
}

func (m *mockPanelRepository) GetByCategory(ctx context.Context, categoryID int64) (*secondary.PanelRecord, error) {
	for i := len(m.panels) - 1; i >= 0; i-- {
		if m.panels[i].CategoryID == categoryID {
			cp := *m.panels[i]
			return &cp, nil
		}
	}
	return nil, courterr.NotFound("panel.get", "no panel for category %d", categoryID)
}

func (m *mockPanelRepository) List(ctx context.Context) ([]*secondary.PanelRecord, error) {
	return m.panels, nil
}

// ============================================================================
// Log writer, document store and permissions
// ============================================================================

var _ secondary.LogWriter = (*mockLogWriter)(nil)

type mockLogWriter struct {
	mu      sync.Mutex
	entries []string
}

func (m *mockLogWriter) add(s string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, s)
	return nil
}

func (m *mockLogWriter) LogCreate(ctx context.Context, entityType, entityID string) error {
	return m.add("create " + entityType + " " + entityID)
}

func (m *mockLogWriter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	return m.add("update " + entityType + " " + entityID + " " + fieldName + "=" + newValue)
}

func (m *mockLogWriter) LogDelete(ctx context.Context, entityType, entityID string) error {
	return m.add("delete " + entityType + " " + entityID)
}

var _ secondary.DocumentStore = (*mockDocumentStore)(nil)

type mockDocumentStore struct {
	stored   []secondary.Document
	storeErr error
}

func (m *mockDocumentStore) Store(ctx context.Context, doc secondary.Document) (string, error) {
	if m.storeErr != nil {
		return "", m.storeErr
	}
	m.stored = append(m.stored, doc)
	return "https://cdn.test/" + doc.Name, nil
}

var _ primary.PermissionService = (*mockPermissionService)(nil)

// mockPermissionService denies the functions listed in denied.
type mockPermissionService struct {
	mu     sync.Mutex
	denied map[string]bool
	checks []string
}

func allowAll() *mockPermissionService {
	return &mockPermissionService{denied: map[string]bool{}}
}

func denyFunctions(fns ...string) *mockPermissionService {
	m := allowAll()
	for _, fn := range fns {
		m.denied[fn] = true
	}
	return m
}

func (m *mockPermissionService) Check(ctx context.Context, req primary.CheckRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks = append(m.checks, req.Function)
	if m.denied[req.Function] {
		return courterr.Permission("permission.check", "you do not have permission for %s", req.Function)
	}
	return nil
}

func (m *mockPermissionService) SetRole(ctx context.Context, function string, roleID int64) error {
	return nil
}

func (m *mockPermissionService) ListRoles(ctx context.Context) ([]*primary.RoleBinding, error) {
	return nil, nil
}
