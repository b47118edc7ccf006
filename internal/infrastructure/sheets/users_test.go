package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unimate-backend/internal/domain"
)

// fakeTabular is an in-memory stand-in for the spreadsheet. It holds data
// rows only (sheet row N = index N-2, one header row assumed).
type fakeTabular struct {
	rows        [][]interface{}
	readErr     error
	writeErr    error
	batchCalls  int
	updateCalls int
}

func (f *fakeTabular) Read(_ context.Context, _ string) ([][]interface{}, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([][]interface{}, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeTabular) Update(_ context.Context, rng string, rows [][]interface{}) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.updateCalls++
	f.apply(rng, rows)
	return nil
}

func (f *fakeTabular) BatchUpdate(_ context.Context, data []RangeValues) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.batchCalls++
	for _, d := range data {
		f.apply(d.Range, d.Rows)
	}
	return nil
}

func (f *fakeTabular) Append(_ context.Context, _ string, row []interface{}) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.rows = append(f.rows, row)
	return nil
}

func (f *fakeTabular) DeleteRow(_ context.Context, _ string, row int64) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	i := int(row) - headerRows - 1
	f.rows = append(f.rows[:i], f.rows[i+1:]...)
	return nil
}

// apply writes a single-row value matrix at an A1 range like "users!C5:D5".
func (f *fakeTabular) apply(rng string, rows [][]interface{}) {
	ref := rng[strings.Index(rng, "!")+1:]
	if i := strings.Index(ref, ":"); i >= 0 {
		ref = ref[:i]
	}
	col := 0
	for ref[col] >= 'A' && ref[col] <= 'Z' {
		col++
	}
	startCol := 0
	for _, c := range ref[:col] {
		startCol = startCol*26 + int(c-'A'+1)
	}
	startCol-- // 0-based
	rowNum, _ := strconv.Atoi(ref[col:])
	target := f.rows[rowNum-headerRows-1]
	for len(target) < userColumns {
		target = append(target, "")
	}
	for j, v := range rows[0] {
		target[startCol+j] = v
	}
	f.rows[rowNum-headerRows-1] = target
}

func userRow(id, hash, name, affil, created, email, code, expires string) []interface{} {
	return []interface{}{id, hash, name, affil, created, email, code, expires}
}

func TestList_SkipsBlankKeyRows(t *testing.T) {
	ft := &fakeTabular{rows: [][]interface{}{
		userRow("stu001", "h1", "Kim", "Engineering", "2025-01-02T03:04:05Z", "a@b.com", "", ""),
		{"", "", ""},
		userRow("stu002", "h2", "Lee", "Law", "2025-02-02T03:04:05Z", "c@d.com", "", ""),
	}}
	repo := NewUserRepo(ft, "users")

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "stu001", users[0].UserID)
	assert.Equal(t, "stu002", users[1].UserID)
}

func TestList_EmptyTabReturnsEmptySlice(t *testing.T) {
	repo := NewUserRepo(&fakeTabular{}, "users")
	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, users)
	assert.Empty(t, users)
}

func TestList_ReadFailureIsUnavailable(t *testing.T) {
	repo := NewUserRepo(&fakeTabular{readErr: errors.New("network down")}, "users")
	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestAppendThenFind_RoundTrip(t *testing.T) {
	ft := &fakeTabular{}
	repo := NewUserRepo(ft, "users")
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	err := repo.Append(context.Background(), &domain.User{
		UserID:       "stu001",
		PasswordHash: "hash",
		DisplayName:  "Kim",
		Affiliation:  "Engineering",
		CreatedAt:    created,
		Email:        "a@b.com",
	})
	require.NoError(t, err)

	u, err := repo.FindByUserID(context.Background(), "stu001")
	require.NoError(t, err)
	assert.Equal(t, "stu001", u.UserID)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.Equal(t, "Kim", u.DisplayName)
	assert.Equal(t, "Engineering", u.Affiliation)
	assert.Equal(t, "a@b.com", u.Email)
	assert.True(t, created.Equal(u.CreatedAt))
	assert.False(t, u.HasActiveReset())
}

func TestFind_IsCaseSensitive(t *testing.T) {
	ft := &fakeTabular{rows: [][]interface{}{
		userRow("stu001", "h", "Kim", "", "", "a@b.com", "", ""),
	}}
	repo := NewUserRepo(ft, "users")

	_, err := repo.FindByUserID(context.Background(), "STU001")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSetResetCode_WritesPairTogether(t *testing.T) {
	ft := &fakeTabular{rows: [][]interface{}{
		userRow("stu001", "h", "Kim", "", "", "a@b.com", "", ""),
	}}
	repo := NewUserRepo(ft, "users")
	expires := time.Now().Add(5 * time.Minute).UTC().Truncate(time.Second)

	require.NoError(t, repo.SetResetCode(context.Background(), "stu001", "042137", expires))

	u, err := repo.FindByUserID(context.Background(), "stu001")
	require.NoError(t, err)
	require.True(t, u.HasActiveReset())
	assert.Equal(t, "042137", *u.ResetCode)
	assert.True(t, expires.Equal(*u.ResetExpires))
}

func TestConsumeResetCode_SingleBatchClearsBothAndSetsHash(t *testing.T) {
	ft := &fakeTabular{rows: [][]interface{}{
		userRow("stu001", "oldhash", "Kim", "", "", "a@b.com", "042137", "2030-01-01T00:00:00Z"),
	}}
	repo := NewUserRepo(ft, "users")

	require.NoError(t, repo.ConsumeResetCode(context.Background(), "stu001", "newhash"))
	assert.Equal(t, 1, ft.batchCalls, "password write and reset clear must be one combined call")

	u, err := repo.FindByUserID(context.Background(), "stu001")
	require.NoError(t, err)
	assert.Equal(t, "newhash", u.PasswordHash)
	assert.False(t, u.HasActiveReset())
}

func TestUpdateProfile_LeavesOtherColumnsUntouched(t *testing.T) {
	ft := &fakeTabular{rows: [][]interface{}{
		userRow("stu001", "hash", "Kim", "Engineering", "2025-01-02T03:04:05Z", "a@b.com", "111111", "2030-01-01T00:00:00Z"),
	}}
	repo := NewUserRepo(ft, "users")

	require.NoError(t, repo.UpdateProfile(context.Background(), "stu001", "Kim J.", "Law", "new@b.com"))

	u, err := repo.FindByUserID(context.Background(), "stu001")
	require.NoError(t, err)
	assert.Equal(t, "Kim J.", u.DisplayName)
	assert.Equal(t, "Law", u.Affiliation)
	assert.Equal(t, "new@b.com", u.Email)
	assert.Equal(t, "hash", u.PasswordHash)
	require.True(t, u.HasActiveReset())
	assert.Equal(t, "111111", *u.ResetCode)
}

func TestUpdatePassword_UnknownUser(t *testing.T) {
	repo := NewUserRepo(&fakeTabular{}, "users")
	err := repo.UpdatePassword(context.Background(), "nouser", "h")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteByUserID_RemovesExactlyOneRow(t *testing.T) {
	ft := &fakeTabular{rows: [][]interface{}{
		userRow("stu001", "h1", "Kim", "", "", "a@b.com", "", ""),
		userRow("stu002", "h2", "Lee", "", "", "c@d.com", "", ""),
		userRow("stu003", "h3", "Park", "", "", "e@f.com", "", ""),
	}}
	repo := NewUserRepo(ft, "users")

	require.NoError(t, repo.DeleteByUserID(context.Background(), "stu002"))

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "stu001", users[0].UserID)
	assert.Equal(t, "stu003", users[1].UserID)

	_, err = repo.FindByUserID(context.Background(), "stu002")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteByUserID_ShiftedRowsStillAddressable(t *testing.T) {
	ft := &fakeTabular{rows: [][]interface{}{
		userRow("stu001", "h1", "Kim", "", "", "a@b.com", "", ""),
		userRow("stu002", "h2", "Lee", "", "", "c@d.com", "", ""),
	}}
	repo := NewUserRepo(ft, "users")

	require.NoError(t, repo.DeleteByUserID(context.Background(), "stu001"))
	// stu002 moved up one row; a ranged write must target the new position.
	require.NoError(t, repo.UpdatePassword(context.Background(), "stu002", "h2b"))

	u, err := repo.FindByUserID(context.Background(), "stu002")
	require.NoError(t, err)
	assert.Equal(t, "h2b", u.PasswordHash)
}

func TestDelete_UnknownUserIsNotFoundNotUnavailable(t *testing.T) {
	repo := NewUserRepo(&fakeTabular{}, "users")
	err := repo.DeleteByUserID(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.False(t, errors.Is(err, domain.ErrUnavailable))
}

func TestAppend_WriteFailureIsUnavailable(t *testing.T) {
	repo := NewUserRepo(&fakeTabular{writeErr: fmt.Errorf("quota exceeded")}, "users")
	err := repo.Append(context.Background(), &domain.User{UserID: "stu001"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}
