package branches

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/internal/scope"
	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
	"github.com/hmendoza/prepflow-backend/pkg/types"
)

func setupBranchesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS branches (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  tax_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS user_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  branch_id TEXT NOT NULL,
  employee_id TEXT NOT NULL,
  is_supervisor INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  model TEXT NOT NULL,
  color TEXT NOT NULL,
  chassis TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS appointments (
  id TEXT PRIMARY KEY,
  appointment_date DATETIME NOT NULL,
  scheduled_at DATETIME NOT NULL,
  delivery_date DATETIME NOT NULL,
  time TEXT NOT NULL,
  seller TEXT NOT NULL,
  client TEXT NOT NULL,
  client_phone TEXT NOT NULL DEFAULT '',
  client_email TEXT NOT NULL DEFAULT '',
  vehicle_id TEXT NOT NULL,
  branch_id TEXT NOT NULL,
  preparer_id TEXT,
  status TEXT NOT NULL DEFAULT 'scheduled',
  priority TEXT NOT NULL DEFAULT 'medium',
  estimated_duration INTEGER NOT NULL,
  actual_duration INTEGER,
  notes TEXT NOT NULL DEFAULT '',
  created_by_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS deliveries (
  id TEXT PRIMARY KEY,
  appointment_id TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'pending',
  delivery_date DATETIME,
  notes TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	for _, table := range []string{"deliveries", "appointments", "vehicles", "user_profiles", "branches"} {
		require.NoError(t, db.Exec("DELETE FROM "+table).Error)
	}
	return db
}

func seedBranch(t *testing.T, db *gorm.DB, name, taxID string) *models.Branch {
	t.Helper()

	branch := &models.Branch{Name: name, TaxID: taxID}
	require.NoError(t, db.Create(branch).Error)
	return branch
}

func adminAccess() scope.Access {
	return scope.Access{UserID: uuid.New(), IsAdmin: true}
}

func branchAccess(branchID uuid.UUID) scope.Access {
	profileID := uuid.New()
	return scope.Access{UserID: uuid.New(), ProfileID: &profileID, BranchID: &branchID}
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupBranchesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	branch, err := repo.Create(ctx, CreateBranchDTO{Name: "Centro", TaxID: "12345678000190"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, branch.ID)

	found, err := repo.FindByID(ctx, adminAccess(), branch.ID)
	require.NoError(t, err)
	assert.Equal(t, "Centro", found.Name)

	ok, err := repo.Exists(ctx, branch.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositoryScopedVisibility(t *testing.T) {
	db := setupBranchesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	branchA := seedBranch(t, db, "Norte", "11111111111111")
	branchB := seedBranch(t, db, "Sul", "22222222222222")

	listed, err := repo.List(ctx, branchAccess(branchA.ID), pagination.Params{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, branchA.ID, listed[0].ID)

	_, err = repo.FindByID(ctx, branchAccess(branchA.ID), branchB.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	all, err := repo.List(ctx, adminAccess(), pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRepositoryDeleteCascades(t *testing.T) {
	db := setupBranchesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	branch := seedBranch(t, db, "Leste", "33333333333333")
	other := seedBranch(t, db, "Oeste", "44444444444444")

	vehicle := &models.Vehicle{Model: "Corolla", Color: "#ffffff", Chassis: "ABC1234"}
	require.NoError(t, db.Create(vehicle).Error)

	profile := &models.UserProfile{UserID: uuid.New(), BranchID: branch.ID, EmployeeID: "E-1"}
	require.NoError(t, db.Create(profile).Error)
	otherProfile := &models.UserProfile{UserID: uuid.New(), BranchID: other.ID, EmployeeID: "E-2"}
	require.NoError(t, db.Create(otherProfile).Error)

	appt := &models.Appointment{
		AppointmentDate:   types.NewDate(2026, time.September, 10),
		ScheduledAt:       time.Now().UTC(),
		DeliveryDate:      types.NewDate(2026, time.September, 13),
		Time:              types.TimeOfDay{Hour: 10},
		Seller:            "S1",
		Client:            "C1",
		VehicleID:         vehicle.ID,
		BranchID:          branch.ID,
		Status:            "scheduled",
		Priority:          "medium",
		EstimatedDuration: types.DurationFrom(time.Hour),
		CreatedByID:       profile.ID,
	}
	require.NoError(t, db.Create(appt).Error)

	delivery := &models.Delivery{AppointmentID: appt.ID, Status: "pending"}
	require.NoError(t, db.Create(delivery).Error)

	otherAppt := &models.Appointment{
		AppointmentDate:   types.NewDate(2026, time.September, 11),
		ScheduledAt:       time.Now().UTC(),
		DeliveryDate:      types.NewDate(2026, time.September, 14),
		Time:              types.TimeOfDay{Hour: 9},
		Seller:            "S2",
		Client:            "C2",
		VehicleID:         vehicle.ID,
		BranchID:          other.ID,
		Status:            "scheduled",
		Priority:          "medium",
		EstimatedDuration: types.DurationFrom(time.Hour),
		CreatedByID:       otherProfile.ID,
	}
	require.NoError(t, db.Create(otherAppt).Error)

	require.NoError(t, repo.Delete(ctx, branch.ID))

	var counts struct {
		Branches     int64
		Appointments int64
		Deliveries   int64
		Profiles     int64
	}
	require.NoError(t, db.Model(&models.Branch{}).Count(&counts.Branches).Error)
	require.NoError(t, db.Model(&models.Appointment{}).Count(&counts.Appointments).Error)
	require.NoError(t, db.Model(&models.Delivery{}).Count(&counts.Deliveries).Error)
	require.NoError(t, db.Model(&models.UserProfile{}).Count(&counts.Profiles).Error)

	assert.EqualValues(t, 1, counts.Branches)
	assert.EqualValues(t, 1, counts.Appointments)
	assert.EqualValues(t, 0, counts.Deliveries)
	assert.EqualValues(t, 1, counts.Profiles)
}
