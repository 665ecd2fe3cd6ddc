// AngelaMos | 2026
// entity.go

package user

import (
	"crypto/md5" //nolint:gosec // gravatar hash, not a security primitive
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clergo/steago/internal/unified"
)

const gravatarBaseURL = "https://www.gravatar.com/avatar/"

type User struct {
	ID          int64              `db:"id"`
	UUID        uuid.UUID          `db:"uuid"`
	Name        string             `db:"name"`
	Email       string             `db:"email"`
	Username    string             `db:"username"`
	Status      unified.UserStatus `db:"status"`
	Type        unified.UserType   `db:"type"`
	WorkspaceID int64              `db:"workspace_id"`
	CreatedTS   time.Time          `db:"created_ts"`
	ModifiedTS  time.Time          `db:"modified_ts"`
}

func (u *User) GetID() int64                  { return u.ID }
func (u *User) GetUUID() uuid.UUID            { return u.UUID }
func (u *User) GetName() string               { return u.Name }
func (u *User) GetEmail() string              { return u.Email }
func (u *User) GetUsername() string           { return u.Username }
func (u *User) GetStatus() unified.UserStatus { return u.Status }
func (u *User) GetType() unified.UserType     { return u.Type }
func (u *User) GetWorkspaceID() int64         { return u.WorkspaceID }
func (u *User) GetCreatedTS() time.Time       { return u.CreatedTS }
func (u *User) GetModifiedTS() time.Time      { return u.ModifiedTS }

func (u *User) IsSuperAdmin() bool {
	return u.Type == unified.UserTypeSuperAdmin
}

// DisplayPicture is the gravatar "retro" avatar for the user's email.
func (u *User) DisplayPicture() string {
	return GravatarURL(u.Email)
}

func (u *User) Touch(ts time.Time) {
	u.ModifiedTS = ts
}

// GravatarURL hashes the email exactly as stored. Create normalises emails
// before they are stored, so any later change to the value changes the URI.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(email)) //nolint:gosec // see import
	return gravatarBaseURL + hex.EncodeToString(sum[:]) + "?d=retro"
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ unified.User = (*User)(nil)
