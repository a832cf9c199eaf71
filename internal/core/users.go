package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mdobak/go-xerrors"
	"github.com/mejova/bloggy/internal/auth"
	"github.com/mejova/bloggy/internal/utils/databaseutils"
	"github.com/mejova/bloggy/internal/utils/stringutils"
	"github.com/mejova/bloggy/models"
)

var (
	ErrDuplicateEmail    = xerrors.Message("Duplicate email")
	ErrDuplicateUsername = xerrors.Message("Duplicate username")
	NoRecordFound        = xerrors.Message("No record found")
)

const uniqueViolation = "23505"

func scanUser(rows *sql.Rows) (*auth.User, error) {
	var user = &auth.User{}

	if err := rows.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.Password,
		&user.GoogleID,
		&user.Image,
		&user.IsAdmin,
	); err != nil {
		return nil, xerrors.New(err)
	}
	return user, nil
}

func mapUserConstraintError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		switch pqErr.Constraint {
		case "users_email_key":
			return xerrors.New(ErrDuplicateEmail)
		case "users_username_key":
			return xerrors.New(ErrDuplicateUsername)
		}
	}
	return xerrors.New(err)
}

func (c *Core) CreateNewUser(ctx context.Context, user *auth.User) error {
	query := `
		INSERT INTO users (username, email, password, google_id, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	args := []any{user.Username, user.Email, user.Password, user.GoogleID, user.Image}
	_, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (*auth.User, error) {
		if err := rows.Scan(&user.ID); err != nil {
			return nil, xerrors.New(err)
		}
		return user, nil
	}, args...)

	if err != nil {
		return mapUserConstraintError(err)
	}

	return nil
}

func (c *Core) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	query := `
		SELECT id, email, username, password, google_id, image, is_admin
		FROM users
		WHERE email = $1
	`

	user, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanUser, email)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return user, nil
}

func (c *Core) GetUserByUsername(ctx context.Context, username string) (*auth.User, error) {
	query := `
		SELECT id, email, username, password, google_id, image, is_admin
		FROM users
		WHERE username = $1
	`

	user, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanUser, username)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return user, nil
}

func (c *Core) GetUserByID(ctx context.Context, userID int64) (*auth.User, error) {
	query := `
		SELECT id, email, username, password, google_id, image, is_admin
		FROM users
		WHERE id = $1
	`

	user, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, ctx, query, scanUser, userID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, xerrors.New(NoRecordFound)
		default:
			return nil, xerrors.New(err)
		}
	}

	return user, nil
}

func (c *Core) GetUsersByIdList(ctx context.Context, userIdList []int64) ([]*auth.User, error) {
	if len(userIdList) == 0 {
		return []*auth.User{}, nil
	}

	placeholders, args := stringutils.INClause(userIdList)
	query := fmt.Sprintf(`
		SELECT id, email, username, password, google_id, image, is_admin
		FROM users
		WHERE id in (%s)
	`, strings.Join(placeholders, ", "))

	queryResultList, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, scanUser, args...)
	if err != nil {
		return nil, xerrors.New(err)
	}

	return queryResultList, nil
}

// ListUsers returns the public user directory.
func (c *Core) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	query := `
		SELECT id, username
		FROM users
		ORDER BY username
	`

	users, err := databaseutils.ExecuteQuery(c.sqlTemplate, ctx, query, func(rows *sql.Rows) (models.UserSummary, error) {
		var summary models.UserSummary
		if err := rows.Scan(&summary.ID, &summary.Username); err != nil {
			return models.UserSummary{}, xerrors.New(err)
		}
		return summary, nil
	})

	if err != nil {
		return nil, xerrors.New(err)
	}

	return users, nil
}

// DeleteUser removes the user record only. Rows in followers pointing at the
// deleted user are left behind and drop out of reads that resolve through
// the users table.
func (c *Core) DeleteUser(ctx context.Context, userID int64) error {
	query := `
		DELETE FROM users
		WHERE id = $1
	`

	affected, err := databaseutils.ExecuteUpdate(c.sqlTemplate, ctx, query, userID)
	if err != nil {
		return xerrors.New(err)
	}

	if affected == 0 {
		return xerrors.New(NoRecordFound)
	}

	return nil
}

// GetOrCreateGoogleUser finds the account provisioned for the given Google
// identity, falling back to an email match, and creates one when neither
// exists. The lookup and the insert run in one transaction so two
// concurrent callbacks for the same identity cannot both insert.
func (c *Core) GetOrCreateGoogleUser(ctx context.Context, googleID, email, displayName string, image *string) (*auth.User, error) {
	return databaseutils.DoTransactionally(ctx, c.session, func(txCtx context.Context) (*auth.User, error) {
		query := `
			SELECT id, email, username, password, google_id, image, is_admin
			FROM users
			WHERE google_id = $1
		`

		user, err := databaseutils.ExecuteSingleQuery(c.sqlTemplate, txCtx, query, scanUser, googleID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, xerrors.New(err)
		}

		// A local account with the same email adopts the Google identity.
		user, err = c.GetUserByEmail(txCtx, email)
		if err == nil {
			linkQuery := `
				UPDATE users
				SET google_id = $1, updated_at = now()
				WHERE id = $2
			`
			if _, err := databaseutils.ExecuteUpdate(c.sqlTemplate, txCtx, linkQuery, googleID, user.ID); err != nil {
				return nil, xerrors.New(err)
			}
			user.GoogleID = &googleID
			return user, nil
		}
		if !errors.Is(err, NoRecordFound) {
			return nil, xerrors.New(err)
		}

		newUser := &auth.User{
			Email:    email,
			Username: c.usernameFromDisplayName(txCtx, displayName, googleID),
			GoogleID: &googleID,
			Image:    image,
		}
		if err := c.CreateNewUser(txCtx, newUser); err != nil {
			return nil, xerrors.New(err)
		}

		return newUser, nil
	})
}

func (c *Core) usernameFromDisplayName(ctx context.Context, displayName, googleID string) string {
	base := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(displayName), " ", "-"))
	if base == "" {
		base = "user"
	}

	if _, err := c.GetUserByUsername(ctx, base); errors.Is(err, NoRecordFound) {
		return base
	}

	// Collision: disambiguate with the tail of the external identity.
	suffix := googleID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return base + "-" + suffix
}
