package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"campus-hub/backend/internal/model"
	"campus-hub/backend/internal/repository"
	pkgerrors "campus-hub/backend/pkg/errors"
)

// ── 内存数据集 ──
// 所有 mock repo 共享同一份 memStore，报表等跨表查询可以直接在内存中计算

type memStore struct {
	users       map[string]*model.User
	departments map[string]*model.Department
	subjects    map[string]*model.Subject
	entries     map[string]*model.TimetableEntry
	sessions    map[string]*model.AttendanceSession
	records     map[string]*model.AttendanceRecord // key: session_id/student_id
	seq         int
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]*model.User),
		departments: make(map[string]*model.Department),
		subjects:    make(map[string]*model.Subject),
		entries:     make(map[string]*model.TimetableEntry),
		sessions:    make(map[string]*model.AttendanceSession),
		records:     make(map[string]*model.AttendanceRecord),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func recordKey(sessionID, studentID string) string {
	return sessionID + "/" + studentID
}

// newTestRepository 用内存实现组装 Repository 聚合
func newTestRepository(store *memStore) (*repository.Repository, *mockSessionRepo) {
	sessions := &mockSessionRepo{store: store}
	return &repository.Repository{
		User:              &mockUserRepo{store: store},
		Department:        &mockDeptRepo{store: store},
		Subject:           &mockSubjectRepo{store: store},
		Timetable:         &mockTimetableRepo{store: store},
		AttendanceSession: sessions,
		AttendanceRecord:  &mockRecordRepo{store: store},
	}, sessions
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	store *memStore
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.store.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.store.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListRoster(_ context.Context, filter repository.RosterFilter) ([]model.User, error) {
	var result []model.User
	for _, u := range m.store.users {
		if u.Role != model.RoleStudent || !u.IsActive || u.StudentProfile == nil {
			continue
		}
		if u.DepartmentID == nil || *u.DepartmentID != filter.DepartmentID {
			continue
		}
		if !sameInt(u.StudentProfile.Semester, filter.Semester) {
			continue
		}
		if optString(u.StudentProfile.Section) != optString(filter.Section) {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StudentProfile.RollNumber < result[j].StudentProfile.RollNumber
	})
	return result, nil
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ── Mock DepartmentRepository / SubjectRepository ──

type mockDeptRepo struct {
	store *memStore
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.store.departments[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type mockSubjectRepo struct {
	store *memStore
}

func (m *mockSubjectRepo) GetByID(_ context.Context, id string) (*model.Subject, error) {
	if s, ok := m.store.subjects[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock TimetableRepository ──

type mockTimetableRepo struct {
	store *memStore
}

func (m *mockTimetableRepo) withRelations(e model.TimetableEntry) *model.TimetableEntry {
	e.Staff = m.store.users[e.StaffID]
	e.Subject = m.store.subjects[e.SubjectID]
	e.Department = m.store.departments[e.DepartmentID]
	return &e
}

func (m *mockTimetableRepo) Create(_ context.Context, entry *model.TimetableEntry) error {
	if entry.TimetableID == "" {
		entry.TimetableID = m.store.nextID("tt")
	}
	entry.Version = 1
	stored := *entry
	stored.Staff, stored.Subject, stored.Department = nil, nil, nil
	m.store.entries[entry.TimetableID] = &stored
	return nil
}

func (m *mockTimetableRepo) GetByID(_ context.Context, id string) (*model.TimetableEntry, error) {
	if e, ok := m.store.entries[id]; ok {
		return m.withRelations(*e), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimetableRepo) List(_ context.Context, filter repository.TimetableFilter) ([]model.TimetableEntry, error) {
	var result []model.TimetableEntry
	for _, e := range m.store.entries {
		if filter.StaffID != "" && e.StaffID != filter.StaffID {
			continue
		}
		if filter.DepartmentID != "" && e.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.DayOfWeek != "" && e.DayOfWeek != filter.DayOfWeek {
			continue
		}
		result = append(result, *m.withRelations(*e))
	}
	sortEntries(result)
	return result, nil
}

func (m *mockTimetableRepo) ListByStaffAndDay(ctx context.Context, staffID string, day model.DayOfWeek) ([]model.TimetableEntry, error) {
	return m.List(ctx, repository.TimetableFilter{StaffID: staffID, DayOfWeek: day})
}

func (m *mockTimetableRepo) FindStaffClash(_ context.Context, staffID string, q repository.ClashQuery) (*model.TimetableEntry, error) {
	return m.findClash(q, func(e *model.TimetableEntry) bool { return e.StaffID == staffID })
}

func (m *mockTimetableRepo) FindRoomClash(_ context.Context, room string, q repository.ClashQuery) (*model.TimetableEntry, error) {
	return m.findClash(q, func(e *model.TimetableEntry) bool { return e.Room != nil && *e.Room == room })
}

func (m *mockTimetableRepo) findClash(q repository.ClashQuery, match func(*model.TimetableEntry) bool) (*model.TimetableEntry, error) {
	var hits []model.TimetableEntry
	for _, e := range m.store.entries {
		if e.TimetableID == q.ExcludeID || e.DayOfWeek != q.DayOfWeek || !match(e) {
			continue
		}
		if model.Overlaps(e.StartTime, e.EndTime, q.Start, q.End) {
			hits = append(hits, *e)
		}
	}
	if len(hits) == 0 {
		return nil, nil
	}
	sortEntries(hits)
	return &hits[0], nil
}

func (m *mockTimetableRepo) Update(_ context.Context, entry *model.TimetableEntry) error {
	existing, ok := m.store.entries[entry.TimetableID]
	if !ok || existing.Version != entry.Version {
		return pkgerrors.ErrOptimisticLock
	}
	entry.Version++
	stored := *entry
	stored.Staff, stored.Subject, stored.Department = nil, nil, nil
	m.store.entries[entry.TimetableID] = &stored
	return nil
}

func (m *mockTimetableRepo) DeleteCascade(_ context.Context, id string) error {
	if _, ok := m.store.entries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for sid, sess := range m.store.sessions {
		if sess.TimetableID != id {
			continue
		}
		for key, r := range m.store.records {
			if r.SessionID == sid {
				delete(m.store.records, key)
			}
		}
		delete(m.store.sessions, sid)
	}
	delete(m.store.entries, id)
	return nil
}

func sortEntries(entries []model.TimetableEntry) {
	dayIndex := make(map[model.DayOfWeek]int, len(model.AllDaysOfWeek))
	for i, d := range model.AllDaysOfWeek {
		dayIndex[d] = i
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DayOfWeek != entries[j].DayOfWeek {
			return dayIndex[entries[i].DayOfWeek] < dayIndex[entries[j].DayOfWeek]
		}
		return entries[i].StartTime < entries[j].StartTime
	})
}

// ── Mock AttendanceSessionRepository ──

type mockSessionRepo struct {
	store *memStore
	// beforeCreate 在 Create 检查唯一键之前执行，用于模拟并发插入
	beforeCreate func()
	createCalls  int
}

func (m *mockSessionRepo) GetByID(_ context.Context, id string) (*model.AttendanceSession, error) {
	sess, ok := m.store.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sess
	cp.Subject = m.store.subjects[cp.SubjectID]
	if e, ok := m.store.entries[cp.TimetableID]; ok {
		entry := *e
		cp.Timetable = &entry
	}
	return &cp, nil
}

func (m *mockSessionRepo) GetByDateAndTimetable(_ context.Context, date time.Time, timetableID string) (*model.AttendanceSession, error) {
	for _, sess := range m.store.sessions {
		if sess.TimetableID == timetableID && sess.Date.Equal(date) {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSessionRepo) Create(_ context.Context, session *model.AttendanceSession) error {
	m.createCalls++
	if m.beforeCreate != nil {
		m.beforeCreate()
	}
	for _, sess := range m.store.sessions {
		if sess.TimetableID == session.TimetableID && sess.Date.Equal(session.Date) {
			return pkgerrors.ErrDuplicateKey
		}
	}
	session.SessionID = m.store.nextID("sess")
	stored := *session
	m.store.sessions[session.SessionID] = &stored
	return nil
}

func (m *mockSessionRepo) MarkAttendance(_ context.Context, sessionID string, records []model.AttendanceRecord) error {
	sess, ok := m.store.sessions[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if sess.IsLocked {
		return pkgerrors.ErrSessionLocked
	}
	for _, r := range records {
		key := recordKey(sessionID, r.StudentID)
		if existing, ok := m.store.records[key]; ok {
			existing.Status = r.Status
			existing.Remarks = r.Remarks
			continue
		}
		rec := r
		rec.SessionID = sessionID
		rec.RecordID = m.store.nextID("rec")
		m.store.records[key] = &rec
	}
	sess.Status = model.SessionCompleted
	return nil
}

func (m *mockSessionRepo) Cancel(_ context.Context, id string) error {
	sess, ok := m.store.sessions[id]
	if !ok || sess.IsLocked {
		return pkgerrors.ErrSessionLocked
	}
	sess.Status = model.SessionCancelled
	sess.IsLocked = true
	return nil
}

func (m *mockSessionRepo) Lock(_ context.Context, id string) error {
	sess, ok := m.store.sessions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sess.IsLocked = true
	return nil
}

func (m *mockSessionRepo) ListByStaffWithCounts(_ context.Context, staffID string) ([]repository.SessionWithCounts, error) {
	var rows []repository.SessionWithCounts
	for _, sess := range m.store.sessions {
		if sess.StaffID != staffID {
			continue
		}
		row := repository.SessionWithCounts{AttendanceSession: *sess}
		if sub, ok := m.store.subjects[sess.SubjectID]; ok {
			row.SubjectName = sub.Name
		}
		for _, r := range m.store.records {
			if r.SessionID != sess.SessionID {
				continue
			}
			row.TotalRecords++
			if r.Status == model.StatusPresent {
				row.PresentCount++
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.After(rows[j].Date)
		}
		return rows[i].StartTime > rows[j].StartTime
	})
	return rows, nil
}

// ── Mock AttendanceRecordRepository ──

type mockRecordRepo struct {
	store *memStore
}

func (m *mockRecordRepo) ListBySession(_ context.Context, sessionID string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.store.records {
		if r.SessionID == sessionID {
			rec := *r
			rec.Student = m.store.users[r.StudentID]
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StudentID < result[j].StudentID })
	return result, nil
}

func (m *mockRecordRepo) ListCompletedByStudent(_ context.Context, studentID string) ([]repository.StudentAttendanceRow, error) {
	var rows []repository.StudentAttendanceRow
	for _, r := range m.store.records {
		sess := m.store.sessions[r.SessionID]
		if r.StudentID != studentID || sess == nil || sess.Status != model.SessionCompleted {
			continue
		}
		row := repository.StudentAttendanceRow{
			SessionID: sess.SessionID,
			Date:      sess.Date,
			SubjectID: sess.SubjectID,
			Status:    r.Status,
			Remarks:   r.Remarks,
		}
		if sub, ok := m.store.subjects[sess.SubjectID]; ok {
			row.SubjectName = sub.Name
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })
	return rows, nil
}

func (m *mockRecordRepo) CountCompletedBySubject(_ context.Context, subjectID string) ([]repository.StudentCountRow, error) {
	counts := make(map[string]*repository.StudentCountRow)
	for _, r := range m.store.records {
		sess := m.store.sessions[r.SessionID]
		if sess == nil || sess.SubjectID != subjectID || sess.Status != model.SessionCompleted {
			continue
		}
		row, ok := counts[r.StudentID]
		if !ok {
			row = &repository.StudentCountRow{StudentID: r.StudentID}
			if u, ok := m.store.users[r.StudentID]; ok {
				row.StudentName = u.Name
				if u.StudentProfile != nil {
					row.RollNumber = u.StudentProfile.RollNumber
				}
			}
			counts[r.StudentID] = row
		}
		row.Total++
		if r.Status == model.StatusPresent {
			row.Present++
		}
	}
	rows := make([]repository.StudentCountRow, 0, len(counts))
	for _, row := range counts {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].RollNumber < rows[j].RollNumber })
	return rows, nil
}

// ── Mock TokenStore ──

type mockTokenStore struct {
	revoked map[string]time.Duration
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{revoked: make(map[string]time.Duration)}
}

func (m *mockTokenStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl > 0 {
		m.revoked[jti] = ttl
	}
	return nil
}

func (m *mockTokenStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}
