package repos

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"storefront/internal/domain"
)

// SessionRepo is the durable storage for the bearer token and the minimal
// identity of the logged-in user, one row per profile.
type SessionRepo struct {
	db      *sqlx.DB
	profile string
}

func NewSessionRepo(db *sqlx.DB, profile string) *SessionRepo {
	if profile == "" {
		profile = "default"
	}
	return &SessionRepo{db: db, profile: profile}
}

type sessionRow struct {
	Token     string `db:"token"`
	UserID    int64  `db:"user_id"`
	Username  string `db:"username"`
	Email     string `db:"email"`
	RolesJSON string `db:"roles_json"`
}

func (r *SessionRepo) Save(s domain.Session) error {
	roles := s.Identity.Roles
	if roles == nil {
		roles = []string{}
	}
	b, err := json.Marshal(roles)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		INSERT INTO sessions(profile, token, user_id, username, email, roles_json, updated_at)
		VALUES(?,?,?,?,?,?,CURRENT_TIMESTAMP)
		ON CONFLICT(profile) DO UPDATE SET
		  token=excluded.token, user_id=excluded.user_id, username=excluded.username,
		  email=excluded.email, roles_json=excluded.roles_json, updated_at=CURRENT_TIMESTAMP
	`, r.profile, s.Token, s.Identity.ID, s.Identity.Username, s.Identity.Email, string(b))
	return err
}

// Load returns nil, nil when nothing is persisted for the profile.
func (r *SessionRepo) Load() (*domain.Session, error) {
	var row sessionRow
	err := r.db.Get(&row, `SELECT token, user_id, username, email, roles_json FROM sessions WHERE profile=?`, r.profile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var roles []string
	if err := json.Unmarshal([]byte(row.RolesJSON), &roles); err != nil {
		return nil, err
	}
	return &domain.Session{
		Token: row.Token,
		Identity: domain.Identity{
			ID:       row.UserID,
			Username: row.Username,
			Email:    row.Email,
			Roles:    roles,
		},
	}, nil
}

func (r *SessionRepo) Clear() error {
	_, err := r.db.Exec(`DELETE FROM sessions WHERE profile=?`, r.profile)
	return err
}

// Token satisfies api.TokenSource.
func (r *SessionRepo) Token() (string, error) {
	s, err := r.Load()
	if err != nil || s == nil {
		return "", err
	}
	return s.Token, nil
}

// Profiles lists every profile with a persisted session.
func (r *SessionRepo) Profiles() ([]string, error) {
	var out []string
	err := r.db.Select(&out, `SELECT profile FROM sessions ORDER BY profile`)
	return out, err
}
