package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/unimate-backend/internal/domain"
)

// Fixed positional column layout of the users tab (A through H). Schema
// changes must append columns; reordering breaks every ranged write below.
const (
	colUserID = iota
	colPasswordHash
	colDisplayName
	colAffiliation
	colCreatedAt
	colEmail
	colResetCode
	colResetExpires

	userColumns = 8
)

// headerRows is the number of non-data rows at the top of the tab.
// Sheet row = scan index + headerRows + 1 (A1 notation is 1-based).
const headerRows = 1

// UserRepo emulates record semantics for users on top of a spreadsheet tab.
// The sheet has no indexes, so every lookup is a full-range read plus a
// linear scan; acceptable at campus scale, but callers must not assume
// sub-linear behavior. It also cannot enforce uniqueness: Append trusts the
// caller's pre-check, and two concurrent signups with the same ID can race.
type UserRepo struct {
	store Tabular
	tab   string
}

func NewUserRepo(store Tabular, tab string) *UserRepo {
	return &UserRepo{store: store, tab: tab}
}

// List reads every data row and maps it positionally. Rows with an empty
// user_id cell are skipped (blank trailing rows, not errors). A tab with no
// data rows yields an empty, non-nil slice.
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	users, _, err := r.listWithRows(ctx)
	return users, err
}

// FindByUserID scans for an exact, case-sensitive user_id match.
func (r *UserRepo) FindByUserID(ctx context.Context, userID string) (*domain.User, error) {
	u, _, err := r.find(ctx, userID)
	return u, err
}

// Append writes a new user as the last row of the tab. Uniqueness is not
// checked here; callers run FindByUserID first.
func (r *UserRepo) Append(ctx context.Context, u *domain.User) error {
	row := []interface{}{
		u.UserID,
		u.PasswordHash,
		u.DisplayName,
		u.Affiliation,
		u.CreatedAt.UTC().Format(time.RFC3339),
		u.Email,
		"", // reset_code
		"", // reset_expires_at
	}
	if err := r.store.Append(ctx, fmt.Sprintf("%s!A:H", r.tab), row); err != nil {
		return fmt.Errorf("append user row: %w", domain.ErrUnavailable)
	}
	return nil
}

// UpdateProfile rewrites the display_name/affiliation pair (C:D) and the
// email cell (F) of the located row, leaving all other columns untouched.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID, displayName, affiliation, email string) error {
	_, row, err := r.find(ctx, userID)
	if err != nil {
		return err
	}
	err = r.store.BatchUpdate(ctx, []RangeValues{
		{Range: fmt.Sprintf("%s!C%d:D%d", r.tab, row, row), Rows: [][]interface{}{{displayName, affiliation}}},
		{Range: fmt.Sprintf("%s!F%d", r.tab, row), Rows: [][]interface{}{{email}}},
	})
	if err != nil {
		return fmt.Errorf("update profile row: %w", domain.ErrUnavailable)
	}
	return nil
}

// UpdatePassword rewrites only the password_hash cell (B).
func (r *UserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	_, row, err := r.find(ctx, userID)
	if err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!B%d", r.tab, row)
	if err := r.store.Update(ctx, rng, [][]interface{}{{passwordHash}}); err != nil {
		return fmt.Errorf("update password cell: %w", domain.ErrUnavailable)
	}
	return nil
}

// SetResetCode writes the reset code/expiry pair (G:H) in one ranged write.
// The two cells are never written separately.
func (r *UserRepo) SetResetCode(ctx context.Context, userID, code string, expires time.Time) error {
	_, row, err := r.find(ctx, userID)
	if err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!G%d:H%d", r.tab, row, row)
	values := [][]interface{}{{code, expires.UTC().Format(time.RFC3339)}}
	if err := r.store.Update(ctx, rng, values); err != nil {
		return fmt.Errorf("write reset code cells: %w", domain.ErrUnavailable)
	}
	return nil
}

// ConsumeResetCode writes the new password hash and blanks both reset cells
// in a single batch call, so a retried or reused code can never succeed twice.
func (r *UserRepo) ConsumeResetCode(ctx context.Context, userID, newPasswordHash string) error {
	_, row, err := r.find(ctx, userID)
	if err != nil {
		return err
	}
	err = r.store.BatchUpdate(ctx, []RangeValues{
		{Range: fmt.Sprintf("%s!B%d", r.tab, row), Rows: [][]interface{}{{newPasswordHash}}},
		{Range: fmt.Sprintf("%s!G%d:H%d", r.tab, row, row), Rows: [][]interface{}{{"", ""}}},
	})
	if err != nil {
		return fmt.Errorf("consume reset code: %w", domain.ErrUnavailable)
	}
	return nil
}

// DeleteByUserID removes the user's row entirely; rows below shift up.
func (r *UserRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, row, err := r.find(ctx, userID)
	if err != nil {
		return err
	}
	if err := r.store.DeleteRow(ctx, r.tab, int64(row)); err != nil {
		return fmt.Errorf("delete user row: %w", domain.ErrUnavailable)
	}
	return nil
}

// find returns the user plus its 1-based sheet row.
func (r *UserRepo) find(ctx context.Context, userID string) (*domain.User, int, error) {
	users, rows, err := r.listWithRows(ctx)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		if users[i].UserID == userID {
			return &users[i], rows[i], nil
		}
	}
	return nil, 0, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
}

func (r *UserRepo) listWithRows(ctx context.Context) ([]domain.User, []int, error) {
	rng := fmt.Sprintf("%s!A%d:H", r.tab, headerRows+1)
	raw, err := r.store.Read(ctx, rng)
	if err != nil {
		return nil, nil, fmt.Errorf("read users tab: %w", domain.ErrUnavailable)
	}
	users := make([]domain.User, 0, len(raw))
	rows := make([]int, 0, len(raw))
	for i, cells := range raw {
		if cell(cells, colUserID) == "" {
			continue
		}
		users = append(users, mapRow(cells))
		rows = append(rows, i+headerRows+1)
	}
	return users, rows, nil
}

func mapRow(cells []interface{}) domain.User {
	u := domain.User{
		UserID:       cell(cells, colUserID),
		PasswordHash: cell(cells, colPasswordHash),
		DisplayName:  cell(cells, colDisplayName),
		Affiliation:  cell(cells, colAffiliation),
		Email:        cell(cells, colEmail),
	}
	if ts := cell(cells, colCreatedAt); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			u.CreatedAt = t
		}
	}
	code := cell(cells, colResetCode)
	expires := cell(cells, colResetExpires)
	if code != "" && expires != "" {
		if t, err := time.Parse(time.RFC3339, expires); err == nil {
			u.ResetCode = &code
			exp := t
			u.ResetExpires = &exp
		}
	}
	return u
}

// cell reads column i as a string, tolerating short rows.
func cell(cells []interface{}, i int) string {
	if i >= len(cells) {
		return ""
	}
	s, _ := cells[i].(string)
	return s
}
