// AngelaMos | 2026
// entity.go

package workspace

import (
	"crypto/md5" //nolint:gosec // avatar hash, not a security primitive
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/clergo/steago/internal/unified"
)

const avatarBaseURL = "https://www.gravatar.com/avatar/"

// Workspace is the default workspace entity stored in the configured table.
type Workspace struct {
	ID         int64                   `db:"id"`
	UUID       uuid.UUID               `db:"uuid"`
	Name       string                  `db:"name"`
	Status     unified.WorkspaceStatus `db:"status"`
	CreatedTS  time.Time               `db:"created_ts"`
	ModifiedTS time.Time               `db:"modified_ts"`
}

func (w *Workspace) GetID() int64                       { return w.ID }
func (w *Workspace) GetUUID() uuid.UUID                 { return w.UUID }
func (w *Workspace) GetName() string                    { return w.Name }
func (w *Workspace) GetStatus() unified.WorkspaceStatus { return w.Status }
func (w *Workspace) GetCreatedTS() time.Time            { return w.CreatedTS }
func (w *Workspace) GetModifiedTS() time.Time           { return w.ModifiedTS }

// DisplayPicture is an identicon keyed on the workspace uuid.
func (w *Workspace) DisplayPicture() string {
	sum := md5.Sum([]byte(w.UUID.String())) //nolint:gosec // see import
	return avatarBaseURL + hex.EncodeToString(sum[:]) + "?d=identicon"
}

func (w *Workspace) Touch(ts time.Time) {
	w.ModifiedTS = ts
}

var _ unified.Workspace = (*Workspace)(nil)
