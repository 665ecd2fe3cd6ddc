// AngelaMos | 2026
// enums.go

package unified

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// UserStatus governs sign-in eligibility. Values match the stored smallint.
type UserStatus int16

const (
	UserStatusActive UserStatus = iota
	// UserStatusUnverified is reserved for an email verification flow.
	UserStatusUnverified
	UserStatusSuspended
	// UserStatusDeleted marks the record for cleanup by an offline worker.
	UserStatusDeleted
)

var userStatusNames = map[UserStatus]string{
	UserStatusActive:     "ACTIVE",
	UserStatusUnverified: "UNVERIFIED",
	UserStatusSuspended:  "SUSPENDED",
	UserStatusDeleted:    "DELETED",
}

func (s UserStatus) String() string {
	if name, ok := userStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UserStatus(%d)", int16(s))
}

func (s UserStatus) Valid() bool {
	_, ok := userStatusNames[s]
	return ok
}

func (s UserStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid user status %d", int16(s))
	}
	return []byte(s.String()), nil
}

func (s *UserStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseUserStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseUserStatus(v string) (UserStatus, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	for s, name := range userStatusNames {
		if name == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown user status %q", v)
}

// UserType governs the authorization tier.
type UserType int16

const (
	UserTypeHubUser UserType = iota
	UserTypeSuperAdmin
)

var userTypeNames = map[UserType]string{
	UserTypeHubUser:    "HUB_USER",
	UserTypeSuperAdmin: "SUPER_ADMIN",
}

func (t UserType) String() string {
	if name, ok := userTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UserType(%d)", int16(t))
}

func (t UserType) Valid() bool {
	_, ok := userTypeNames[t]
	return ok
}

func (t UserType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid user type %d", int16(t))
	}
	return []byte(t.String()), nil
}

func (t *UserType) UnmarshalText(text []byte) error {
	parsed, err := ParseUserType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func ParseUserType(v string) (UserType, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	for t, name := range userTypeNames {
		if name == v {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown user type %q", v)
}

// WorkspaceStatus governs whether a workspace may receive traffic.
type WorkspaceStatus int16

const (
	// WorkspaceStatusNew is a placeholder for an activation flow.
	WorkspaceStatusNew WorkspaceStatus = iota
	WorkspaceStatusActive
	WorkspaceStatusSuspended
	// WorkspaceStatusOnHold is a placeholder: sign-in allowed, limited pages.
	WorkspaceStatusOnHold
	WorkspaceStatusDeleted
)

var workspaceStatusNames = map[WorkspaceStatus]string{
	WorkspaceStatusNew:       "NEW",
	WorkspaceStatusActive:    "ACTIVE",
	WorkspaceStatusSuspended: "SUSPENDED",
	WorkspaceStatusOnHold:    "ON_HOLD",
	WorkspaceStatusDeleted:   "DELETED",
}

func (s WorkspaceStatus) String() string {
	if name, ok := workspaceStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("WorkspaceStatus(%d)", int16(s))
}

func (s WorkspaceStatus) Valid() bool {
	_, ok := workspaceStatusNames[s]
	return ok
}

func (s WorkspaceStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid workspace status %d", int16(s))
	}
	return []byte(s.String()), nil
}

func (s *WorkspaceStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseWorkspaceStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseWorkspaceStatus(v string) (WorkspaceStatus, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	for s, name := range workspaceStatusNames {
		if name == v {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown workspace status %q", v)
}

// Statuses and types are stored as smallint columns.

func (s UserStatus) Value() (driver.Value, error) { return int64(s), nil }

func (s *UserStatus) Scan(src any) error {
	v, err := scanInt16(src)
	*s = UserStatus(v)
	return err
}

func (t UserType) Value() (driver.Value, error) { return int64(t), nil }

func (t *UserType) Scan(src any) error {
	v, err := scanInt16(src)
	*t = UserType(v)
	return err
}

func (s WorkspaceStatus) Value() (driver.Value, error) { return int64(s), nil }

func (s *WorkspaceStatus) Scan(src any) error {
	v, err := scanInt16(src)
	*s = WorkspaceStatus(v)
	return err
}

func scanInt16(src any) (int16, error) {
	switch v := src.(type) {
	case int64:
		return int16(v), nil //nolint:gosec // G115: smallint column
	case int32:
		return int16(v), nil //nolint:gosec // G115: smallint column
	case int16:
		return v, nil
	case []byte:
		n, err := strconv.ParseInt(string(v), 10, 16)
		return int16(n), err
	case string:
		n, err := strconv.ParseInt(v, 10, 16)
		return int16(n), err
	default:
		return 0, fmt.Errorf("cannot scan %T into smallint enum", src)
	}
}
