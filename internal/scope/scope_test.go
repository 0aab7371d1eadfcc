package scope

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/pkg/auth"
	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
)

func setupScopeTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS scoped_rows (
  id TEXT PRIMARY KEY,
  branch_id TEXT NOT NULL
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM scoped_rows").Error)
	return db
}

type scopedRow struct {
	ID       string
	BranchID string
}

func TestFromClaims(t *testing.T) {
	branchID := uuid.New()
	profileID := uuid.New()
	claims := &auth.AccessTokenClaims{
		UserID:       uuid.New(),
		ProfileID:    &profileID,
		BranchID:     &branchID,
		IsSupervisor: true,
	}

	access := FromClaims(claims)
	assert.Equal(t, claims.UserID, access.UserID)
	assert.Equal(t, &branchID, access.BranchID)
	assert.True(t, access.IsSupervisor)
	assert.False(t, access.IsAdmin)

	assert.Equal(t, Access{}, FromClaims(nil))
}

func TestBranchColumnFiltersNonAdmin(t *testing.T) {
	db := setupScopeTestDB(t)

	branchA := uuid.New()
	branchB := uuid.New()
	require.NoError(t, db.Exec("INSERT INTO scoped_rows (id, branch_id) VALUES (?, ?)", uuid.NewString(), branchA.String()).Error)
	require.NoError(t, db.Exec("INSERT INTO scoped_rows (id, branch_id) VALUES (?, ?)", uuid.NewString(), branchB.String()).Error)

	access := Access{UserID: uuid.New(), BranchID: &branchA}

	q, err := access.BranchColumn(db.Table("scoped_rows"), "branch_id")
	require.NoError(t, err)

	var rows []scopedRow
	require.NoError(t, q.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, branchA.String(), rows[0].BranchID)
}

func TestBranchColumnAdminUnrestricted(t *testing.T) {
	db := setupScopeTestDB(t)

	require.NoError(t, db.Exec("INSERT INTO scoped_rows (id, branch_id) VALUES (?, ?)", uuid.NewString(), uuid.NewString()).Error)
	require.NoError(t, db.Exec("INSERT INTO scoped_rows (id, branch_id) VALUES (?, ?)", uuid.NewString(), uuid.NewString()).Error)

	access := Access{UserID: uuid.New(), IsAdmin: true}

	q, err := access.BranchColumn(db.Table("scoped_rows"), "branch_id")
	require.NoError(t, err)

	var count int64
	require.NoError(t, q.Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestBranchColumnMissingProfile(t *testing.T) {
	db := setupScopeTestDB(t)

	access := Access{UserID: uuid.New()}
	_, err := access.BranchColumn(db.Table("scoped_rows"), "branch_id")
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeInternal, appErr.Code())
}

func TestRequireProfile(t *testing.T) {
	profileID := uuid.New()
	access := Access{UserID: uuid.New(), ProfileID: &profileID}

	got, err := access.RequireProfile()
	require.NoError(t, err)
	assert.Equal(t, profileID, got)

	_, err = Access{}.RequireProfile()
	require.Error(t, err)
}
