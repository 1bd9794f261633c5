package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/krishang-r/vehicle-rental/internal/email"
	"github.com/krishang-r/vehicle-rental/internal/user"
	"github.com/krishang-r/vehicle-rental/internal/vehicle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock repositories
type MockBookingRepo struct{ mock.Mock }
type MockVehicleRepo struct{ mock.Mock }
type MockUserRepo struct{ mock.Mock }

func (m *MockBookingRepo) Reserve(ctx context.Context, params ReserveParams) (*Booking, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockBookingRepo) Cancel(ctx context.Context, bookingID int) error {
	return m.Called(ctx, bookingID).Error(0)
}

func (m *MockBookingRepo) GetBookingByID(ctx context.Context, id int) (*Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockBookingRepo) GetUserBookings(ctx context.Context, userID int) ([]BookingWithVehicle, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithVehicle), args.Error(1)
}

func (m *MockBookingRepo) GetAllBookings(ctx context.Context) ([]BookingWithVehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithVehicle), args.Error(1)
}

func (m *MockBookingRepo) GetBookingsByUserEmail(ctx context.Context, email string) ([]BookingWithVehicle, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]BookingWithVehicle), args.Error(1)
}

func (m *MockBookingRepo) GetActiveBookings(ctx context.Context) ([]Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

func (m *MockBookingRepo) GetActiveBookingsForVehicle(ctx context.Context, vehicleID int) ([]Booking, error) {
	args := m.Called(ctx, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

func (m *MockBookingRepo) RecomputeVehicleFlag(ctx context.Context, vehicleID int) error {
	return m.Called(ctx, vehicleID).Error(0)
}

func (m *MockVehicleRepo) Create(ctx context.Context, params vehicle.CreateVehicleRequest) (*vehicle.Vehicle, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vehicle.Vehicle), args.Error(1)
}

func (m *MockVehicleRepo) GetAll(ctx context.Context) ([]vehicle.Vehicle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vehicle.Vehicle), args.Error(1)
}

func (m *MockVehicleRepo) GetByType(ctx context.Context, vehicleType string) ([]vehicle.Vehicle, error) {
	args := m.Called(ctx, vehicleType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]vehicle.Vehicle), args.Error(1)
}

func (m *MockVehicleRepo) GetByID(ctx context.Context, id int) (*vehicle.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vehicle.Vehicle), args.Error(1)
}

func (m *MockVehicleRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockVehicleRepo) UpdateRate(ctx context.Context, id int, ratePerDay int64) error {
	return m.Called(ctx, id, ratePerDay).Error(0)
}

func (m *MockVehicleRepo) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepo) Create(ctx context.Context, fullName, email, username, passwordHash, role string) (*user.User, error) {
	args := m.Called(ctx, fullName, email, username, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) UpdateRole(ctx context.Context, id int, role string) error {
	return m.Called(ctx, id, role).Error(0)
}

func testEmailService() *email.Service {
	// Points at nothing; queue pushes fail silently and the service treats
	// notifications as best effort.
	return email.New("noreply@test", "Test", "localhost", "1025", "", "", "localhost:1")
}

func newTestService(repo Repository, vehicles vehicle.Repository, users user.Repository) Service {
	return NewService(repo, vehicles, users, testEmailService())
}

func testVehicle(id int, rate int64) *vehicle.Vehicle {
	return &vehicle.Vehicle{
		ID:         id,
		Code:       "VR001",
		Type:       "Sedan",
		Make:       "Maruti",
		Model:      "Swift",
		RatePerDay: rate,
	}
}

func TestReserveQuotesAdvance(t *testing.T) {
	repo := new(MockBookingRepo)
	vehicles := new(MockVehicleRepo)
	users := new(MockUserRepo)
	svc := newTestService(repo, vehicles, users)

	r := mustRange(t, "2099-03-10", "2099-03-12")

	vehicles.On("GetByID", mock.Anything, 3).Return(testVehicle(3, 1800), nil)
	repo.On("Reserve", mock.Anything, mock.MatchedBy(func(p ReserveParams) bool {
		return p.VehicleID == 3 &&
			p.Status == StatusConfirmed &&
			p.PaymentStatus == PaymentPaid &&
			p.AmountPaid == 2700 // 1800 * 3 days / 2
	})).Return(&Booking{ID: 10, UserID: 1, VehicleID: 3, StartDate: "2099-03-10", EndDate: "2099-03-12", Status: StatusConfirmed, AmountPaid: 2700}, nil)
	users.On("FindByID", mock.Anything, 1).Return(nil, errors.New("skip email"))

	b, err := svc.Reserve(context.Background(), 1, 3, r, PersonalDetails{GovID: "G", License: "L", StartPoint: "A", EndPoint: "B"})
	require.NoError(t, err)
	assert.Equal(t, 10, b.ID)
	assert.Equal(t, int64(2700), b.AmountPaid)
	repo.AssertExpectations(t)
}

func TestReserveVehicleMissing(t *testing.T) {
	repo := new(MockBookingRepo)
	vehicles := new(MockVehicleRepo)
	users := new(MockUserRepo)
	svc := newTestService(repo, vehicles, users)

	r := mustRange(t, "2099-03-10", "2099-03-12")

	vehicles.On("GetByID", mock.Anything, 99).Return(nil, vehicle.ErrVehicleNotFound)

	_, err := svc.Reserve(context.Background(), 1, 99, r, PersonalDetails{})
	require.ErrorIs(t, err, ErrVehicleNotFound)
	repo.AssertNotCalled(t, "Reserve")
}

func TestReserveConflictPassesThrough(t *testing.T) {
	repo := new(MockBookingRepo)
	vehicles := new(MockVehicleRepo)
	users := new(MockUserRepo)
	svc := newTestService(repo, vehicles, users)

	r := mustRange(t, "2099-03-10", "2099-03-12")

	vehicles.On("GetByID", mock.Anything, 3).Return(testVehicle(3, 1800), nil)
	repo.On("Reserve", mock.Anything, mock.Anything).Return(nil, ErrDateConflict)

	_, err := svc.Reserve(context.Background(), 1, 3, r, PersonalDetails{})
	require.ErrorIs(t, err, ErrDateConflict)
}

func TestCancelOwner(t *testing.T) {
	repo := new(MockBookingRepo)
	vehicles := new(MockVehicleRepo)
	users := new(MockUserRepo)
	svc := newTestService(repo, vehicles, users)

	repo.On("GetBookingByID", mock.Anything, 5).
		Return(&Booking{ID: 5, UserID: 1, VehicleID: 3, Status: StatusConfirmed}, nil)
	repo.On("Cancel", mock.Anything, 5).Return(nil)
	users.On("FindByID", mock.Anything, 1).Return(nil, errors.New("skip email"))

	err := svc.Cancel(context.Background(), 5, 1, false)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCancelForbiddenForStranger(t *testing.T) {
	repo := new(MockBookingRepo)
	vehicles := new(MockVehicleRepo)
	users := new(MockUserRepo)
	svc := newTestService(repo, vehicles, users)

	repo.On("GetBookingByID", mock.Anything, 5).
		Return(&Booking{ID: 5, UserID: 1, VehicleID: 3, Status: StatusConfirmed}, nil)

	err := svc.Cancel(context.Background(), 5, 2, false)
	require.ErrorIs(t, err, ErrForbidden)
	repo.AssertNotCalled(t, "Cancel")
}

func TestCancelAdminMayCancelAnyBooking(t *testing.T) {
	repo := new(MockBookingRepo)
	vehicles := new(MockVehicleRepo)
	users := new(MockUserRepo)
	svc := newTestService(repo, vehicles, users)

	repo.On("GetBookingByID", mock.Anything, 5).
		Return(&Booking{ID: 5, UserID: 1, VehicleID: 3, Status: StatusConfirmed}, nil)
	repo.On("Cancel", mock.Anything, 5).Return(nil)
	users.On("FindByID", mock.Anything, 1).Return(nil, errors.New("skip email"))

	err := svc.Cancel(context.Background(), 5, 2, true)
	require.NoError(t, err)
}

func TestCancelAlreadyCancelledPassesThrough(t *testing.T) {
	repo := new(MockBookingRepo)
	vehicles := new(MockVehicleRepo)
	users := new(MockUserRepo)
	svc := newTestService(repo, vehicles, users)

	repo.On("GetBookingByID", mock.Anything, 5).
		Return(&Booking{ID: 5, UserID: 1, VehicleID: 3, Status: StatusCancelled}, nil)
	repo.On("Cancel", mock.Anything, 5).Return(ErrAlreadyCancelled)

	err := svc.Cancel(context.Background(), 5, 1, false)
	require.ErrorIs(t, err, ErrAlreadyCancelled)
}

func TestUnavailableVehicleIDsParsesAndScans(t *testing.T) {
	repo := new(MockBookingRepo)
	vehicles := new(MockVehicleRepo)
	users := new(MockUserRepo)
	svc := newTestService(repo, vehicles, users)

	repo.On("GetActiveBookings", mock.Anything).Return([]Booking{
		activeBooking(1, 4, "2099-03-11", "2099-03-14"),
	}, nil)

	unavailable, err := svc.UnavailableVehicleIDs(context.Background(), "2099-03-10", "2099-03-12")
	require.NoError(t, err)
	require.Contains(t, unavailable, 4)
}

func TestUnavailableVehicleIDsRejectsBadRange(t *testing.T) {
	repo := new(MockBookingRepo)
	vehicles := new(MockVehicleRepo)
	users := new(MockUserRepo)
	svc := newTestService(repo, vehicles, users)

	_, err := svc.UnavailableVehicleIDs(context.Background(), "2099-03-12", "2099-03-10")
	require.ErrorIs(t, err, ErrInvertedRange)
	repo.AssertNotCalled(t, "GetActiveBookings")
}

// ledgerStub is an in-memory Repository whose Reserve serializes on a mutex
// the way the real one serializes on the vehicle row lock.
type ledgerStub struct {
	mu     sync.Mutex
	nextID int
	active []Booking
}

func (l *ledgerStub) Reserve(ctx context.Context, params ReserveParams) (*Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !IsAvailable(params.VehicleID, params.Range, l.active) {
		return nil, ErrDateConflict
	}

	l.nextID++
	b := Booking{
		ID:        l.nextID,
		UserID:    params.UserID,
		VehicleID: params.VehicleID,
		StartDate: params.Range.StartString(),
		EndDate:   params.Range.EndString(),
		Status:    params.Status,
	}
	l.active = append(l.active, b)
	return &b, nil
}

func (l *ledgerStub) Cancel(ctx context.Context, bookingID int) error       { return nil }
func (l *ledgerStub) GetBookingByID(ctx context.Context, id int) (*Booking, error) {
	return nil, ErrBookingNotFound
}
func (l *ledgerStub) GetUserBookings(ctx context.Context, userID int) ([]BookingWithVehicle, error) {
	return nil, nil
}
func (l *ledgerStub) GetAllBookings(ctx context.Context) ([]BookingWithVehicle, error) {
	return nil, nil
}
func (l *ledgerStub) GetBookingsByUserEmail(ctx context.Context, email string) ([]BookingWithVehicle, error) {
	return nil, nil
}
func (l *ledgerStub) GetActiveBookings(ctx context.Context) ([]Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Booking(nil), l.active...), nil
}
func (l *ledgerStub) GetActiveBookingsForVehicle(ctx context.Context, vehicleID int) ([]Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Booking(nil), l.active...), nil
}
func (l *ledgerStub) RecomputeVehicleFlag(ctx context.Context, vehicleID int) error { return nil }

func TestConcurrentReserveExactlyOneWins(t *testing.T) {
	ledger := &ledgerStub{}
	vehicles := new(MockVehicleRepo)
	users := new(MockUserRepo)
	svc := newTestService(ledger, vehicles, users)

	vehicles.On("GetByID", mock.Anything, 3).Return(testVehicle(3, 1800), nil)
	users.On("FindByID", mock.Anything, mock.Anything).Return(nil, errors.New("skip email"))

	r := mustRange(t, "2099-03-10", "2099-03-12")

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), userID, 3, r, PersonalDetails{
				GovID: "G", License: "L", StartPoint: "A", EndPoint: "B",
			})
			results <- err
		}(i + 1)
	}

	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrDateConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins, "exactly one reservation must win")
	assert.Equal(t, workers-1, conflicts)
	require.Len(t, ledger.active, 1)
}
