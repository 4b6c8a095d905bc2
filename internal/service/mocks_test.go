package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/repair-service/internal/domain"
	"github.com/spec-kit/repair-service/internal/events"
	"github.com/spec-kit/repair-service/internal/repository"
)

// fakeTxRunner runs the callback against a fixed repository bundle without a
// real transaction.
type fakeTxRunner struct {
	repos *repository.Repositories
}

func (f *fakeTxRunner) InTx(ctx context.Context, fn func(ctx context.Context, r *repository.Repositories) error) error {
	return fn(ctx, f.repos)
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

type mockJobRepo struct {
	CreateFn           func(ctx context.Context, job *domain.Job) error
	UpdateFn           func(ctx context.Context, job *domain.Job) error
	GetByIDFn          func(ctx context.Context, id int64) (*domain.Job, error)
	GetByIDForUpdateFn func(ctx context.Context, id int64) (*domain.Job, error)
	ListFn             func(ctx context.Context, scope repository.JobScope, filter repository.JobFilter) ([]domain.Job, error)
	UpdatePaymentFn    func(ctx context.Context, id int64, method string, status domain.PaymentStatus) error
}

func (m *mockJobRepo) Create(ctx context.Context, job *domain.Job) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, job)
}

func (m *mockJobRepo) Update(ctx context.Context, job *domain.Job) error {
	if m.UpdateFn == nil {
		return nil
	}
	return m.UpdateFn(ctx, job)
}

func (m *mockJobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	if m.GetByIDFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockJobRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Job, error) {
	if m.GetByIDForUpdateFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.GetByIDForUpdateFn(ctx, id)
}

func (m *mockJobRepo) List(ctx context.Context, scope repository.JobScope, filter repository.JobFilter) ([]domain.Job, error) {
	if m.ListFn == nil {
		return []domain.Job{}, nil
	}
	return m.ListFn(ctx, scope, filter)
}

func (m *mockJobRepo) UpdatePayment(ctx context.Context, id int64, method string, status domain.PaymentStatus) error {
	if m.UpdatePaymentFn == nil {
		return nil
	}
	return m.UpdatePaymentFn(ctx, id, method, status)
}

type mockUserRepo struct {
	CreateFn          func(ctx context.Context, user *domain.User) error
	GetByIDFn         func(ctx context.Context, id int64) (*domain.User, error)
	GetByUsernameFn   func(ctx context.Context, username string) (*domain.User, error)
	ListByRoleFn      func(ctx context.Context, role domain.Role) ([]domain.User, error)
	UpdateLastLoginFn func(ctx context.Context, id int64) error
	ListStoreGrantsFn func(ctx context.Context, userID int64) ([]int64, error)
	GrantStoreFn      func(ctx context.Context, userID, storeID int64, isPrimary bool) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, user)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetByIDFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.GetByUsernameFn(ctx, username)
}

func (m *mockUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if m.ListByRoleFn == nil {
		return []domain.User{}, nil
	}
	return m.ListByRoleFn(ctx, role)
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id int64) error {
	if m.UpdateLastLoginFn == nil {
		return nil
	}
	return m.UpdateLastLoginFn(ctx, id)
}

func (m *mockUserRepo) ListStoreGrants(ctx context.Context, userID int64) ([]int64, error) {
	if m.ListStoreGrantsFn == nil {
		return nil, nil
	}
	return m.ListStoreGrantsFn(ctx, userID)
}

func (m *mockUserRepo) GrantStore(ctx context.Context, userID, storeID int64, isPrimary bool) error {
	if m.GrantStoreFn == nil {
		return nil
	}
	return m.GrantStoreFn(ctx, userID, storeID, isPrimary)
}

type mockStoreRepo struct {
	GetByIDFn          func(ctx context.Context, id int64) (*domain.Store, error)
	ListFn             func(ctx context.Context) ([]domain.Store, error)
	UpdateContactFn    func(ctx context.Context, id int64, phone, email string) error
	ListTechniciansFn  func(ctx context.Context, storeID int64) ([]domain.User, error)
	TechnicianLinkedFn func(ctx context.Context, storeID, technicianID int64) (bool, error)
	LinkTechnicianFn   func(ctx context.Context, storeID, technicianID int64) error
	UnlinkTechnicianFn func(ctx context.Context, storeID, technicianID int64) error
}

func (m *mockStoreRepo) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	if m.GetByIDFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockStoreRepo) List(ctx context.Context) ([]domain.Store, error) {
	if m.ListFn == nil {
		return []domain.Store{}, nil
	}
	return m.ListFn(ctx)
}

func (m *mockStoreRepo) UpdateContact(ctx context.Context, id int64, phone, email string) error {
	if m.UpdateContactFn == nil {
		return nil
	}
	return m.UpdateContactFn(ctx, id, phone, email)
}

func (m *mockStoreRepo) ListTechnicians(ctx context.Context, storeID int64) ([]domain.User, error) {
	if m.ListTechniciansFn == nil {
		return []domain.User{}, nil
	}
	return m.ListTechniciansFn(ctx, storeID)
}

func (m *mockStoreRepo) TechnicianLinked(ctx context.Context, storeID, technicianID int64) (bool, error) {
	if m.TechnicianLinkedFn == nil {
		return true, nil
	}
	return m.TechnicianLinkedFn(ctx, storeID, technicianID)
}

func (m *mockStoreRepo) LinkTechnician(ctx context.Context, storeID, technicianID int64) error {
	if m.LinkTechnicianFn == nil {
		return nil
	}
	return m.LinkTechnicianFn(ctx, storeID, technicianID)
}

func (m *mockStoreRepo) UnlinkTechnician(ctx context.Context, storeID, technicianID int64) error {
	if m.UnlinkTechnicianFn == nil {
		return nil
	}
	return m.UnlinkTechnicianFn(ctx, storeID, technicianID)
}

type mockCustomerRepo struct {
	CreateFn             func(ctx context.Context, customer *domain.Customer) error
	UpdateFn             func(ctx context.Context, customer *domain.Customer) error
	GetByIDFn            func(ctx context.Context, id int64) (*domain.Customer, error)
	FindByPhoneOrEmailFn func(ctx context.Context, phone, email string) (*domain.Customer, error)
	ListByStoreFn        func(ctx context.Context, storeID int64, limit, offset int) ([]domain.Customer, error)
}

func (m *mockCustomerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, customer)
}

func (m *mockCustomerRepo) Update(ctx context.Context, customer *domain.Customer) error {
	if m.UpdateFn == nil {
		return nil
	}
	return m.UpdateFn(ctx, customer)
}

func (m *mockCustomerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	if m.GetByIDFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockCustomerRepo) FindByPhoneOrEmail(ctx context.Context, phone, email string) (*domain.Customer, error) {
	if m.FindByPhoneOrEmailFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.FindByPhoneOrEmailFn(ctx, phone, email)
}

func (m *mockCustomerRepo) ListByStore(ctx context.Context, storeID int64, limit, offset int) ([]domain.Customer, error) {
	if m.ListByStoreFn == nil {
		return []domain.Customer{}, nil
	}
	return m.ListByStoreFn(ctx, storeID, limit, offset)
}

type mockAssignmentRepo struct {
	CreateFn                  func(ctx context.Context, assignment *domain.TechnicianAssignment) error
	GetByIDFn                 func(ctx context.Context, id int64) (*domain.TechnicianAssignment, error)
	GetActiveByJobFn          func(ctx context.Context, jobID int64) (*domain.TechnicianAssignment, error)
	LinkJobFn                 func(ctx context.Context, assignmentID, jobID int64) error
	UnlinkOpenForJobFn        func(ctx context.Context, jobID int64) (int64, error)
	ListJobIDsFn              func(ctx context.Context, assignmentID int64) ([]int64, error)
	TechnicianAssignedToJobFn func(ctx context.Context, technicianID, jobID int64) (bool, error)
	ListByTechnicianFn        func(ctx context.Context, technicianID int64, limit, offset int) ([]domain.TechnicianAssignment, error)
	MarkInProgressForJobFn    func(ctx context.Context, jobID int64) error
	MarkCompletedForJobFn     func(ctx context.Context, jobID int64) error
}

func (m *mockAssignmentRepo) Create(ctx context.Context, assignment *domain.TechnicianAssignment) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, assignment)
}

func (m *mockAssignmentRepo) GetByID(ctx context.Context, id int64) (*domain.TechnicianAssignment, error) {
	if m.GetByIDFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.GetByIDFn(ctx, id)
}

func (m *mockAssignmentRepo) GetActiveByJob(ctx context.Context, jobID int64) (*domain.TechnicianAssignment, error) {
	if m.GetActiveByJobFn == nil {
		return nil, pgx.ErrNoRows
	}
	return m.GetActiveByJobFn(ctx, jobID)
}

func (m *mockAssignmentRepo) LinkJob(ctx context.Context, assignmentID, jobID int64) error {
	if m.LinkJobFn == nil {
		return nil
	}
	return m.LinkJobFn(ctx, assignmentID, jobID)
}

func (m *mockAssignmentRepo) UnlinkOpenForJob(ctx context.Context, jobID int64) (int64, error) {
	if m.UnlinkOpenForJobFn == nil {
		return 0, nil
	}
	return m.UnlinkOpenForJobFn(ctx, jobID)
}

func (m *mockAssignmentRepo) ListJobIDs(ctx context.Context, assignmentID int64) ([]int64, error) {
	if m.ListJobIDsFn == nil {
		return nil, nil
	}
	return m.ListJobIDsFn(ctx, assignmentID)
}

func (m *mockAssignmentRepo) TechnicianAssignedToJob(ctx context.Context, technicianID, jobID int64) (bool, error) {
	if m.TechnicianAssignedToJobFn == nil {
		return false, nil
	}
	return m.TechnicianAssignedToJobFn(ctx, technicianID, jobID)
}

func (m *mockAssignmentRepo) ListByTechnician(ctx context.Context, technicianID int64, limit, offset int) ([]domain.TechnicianAssignment, error) {
	if m.ListByTechnicianFn == nil {
		return []domain.TechnicianAssignment{}, nil
	}
	return m.ListByTechnicianFn(ctx, technicianID, limit, offset)
}

func (m *mockAssignmentRepo) MarkInProgressForJob(ctx context.Context, jobID int64) error {
	if m.MarkInProgressForJobFn == nil {
		return nil
	}
	return m.MarkInProgressForJobFn(ctx, jobID)
}

func (m *mockAssignmentRepo) MarkCompletedForJob(ctx context.Context, jobID int64) error {
	if m.MarkCompletedForJobFn == nil {
		return nil
	}
	return m.MarkCompletedForJobFn(ctx, jobID)
}

type mockNoteRepo struct {
	CreateFn    func(ctx context.Context, note *domain.JobNote) error
	ListByJobFn func(ctx context.Context, jobID int64) ([]domain.JobNote, error)
}

func (m *mockNoteRepo) Create(ctx context.Context, note *domain.JobNote) error {
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(ctx, note)
}

func (m *mockNoteRepo) ListByJob(ctx context.Context, jobID int64) ([]domain.JobNote, error) {
	if m.ListByJobFn == nil {
		return []domain.JobNote{}, nil
	}
	return m.ListByJobFn(ctx, jobID)
}

// testRepos assembles a repository bundle from mocks, defaulting any nil slot.
type testRepos struct {
	jobs        *mockJobRepo
	users       *mockUserRepo
	stores      *mockStoreRepo
	customers   *mockCustomerRepo
	assignments *mockAssignmentRepo
	notes       *mockNoteRepo
}

func (t *testRepos) bundle() *repository.Repositories {
	if t.jobs == nil {
		t.jobs = &mockJobRepo{}
	}
	if t.users == nil {
		t.users = &mockUserRepo{}
	}
	if t.stores == nil {
		t.stores = &mockStoreRepo{}
	}
	if t.customers == nil {
		t.customers = &mockCustomerRepo{}
	}
	if t.assignments == nil {
		t.assignments = &mockAssignmentRepo{}
	}
	if t.notes == nil {
		t.notes = &mockNoteRepo{}
	}
	return &repository.Repositories{
		Stores:      t.stores,
		Users:       t.users,
		Customers:   t.customers,
		Jobs:        t.jobs,
		Assignments: t.assignments,
		Notes:       t.notes,
	}
}
