// AngelaMos | 2026
// enums_test.go

package unified

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStatus_StoredValues(t *testing.T) {
	assert.Equal(t, UserStatus(0), UserStatusActive)
	assert.Equal(t, UserStatus(1), UserStatusUnverified)
	assert.Equal(t, UserStatus(2), UserStatusSuspended)
	assert.Equal(t, UserStatus(3), UserStatusDeleted)

	assert.Equal(t, WorkspaceStatus(0), WorkspaceStatusNew)
	assert.Equal(t, WorkspaceStatus(1), WorkspaceStatusActive)
	assert.Equal(t, WorkspaceStatus(4), WorkspaceStatusDeleted)

	assert.Equal(t, UserType(1), UserTypeSuperAdmin)
}

func TestEnums_JSONUsesNames(t *testing.T) {
	payload := struct {
		Status UserStatus      `json:"status"`
		Type   UserType        `json:"type"`
		WS     WorkspaceStatus `json:"ws"`
	}{UserStatusSuspended, UserTypeSuperAdmin, WorkspaceStatusOnHold}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"SUSPENDED","type":"SUPER_ADMIN","ws":"ON_HOLD"}`, string(raw))

	var back struct {
		Status UserStatus `json:"status"`
		Type   UserType   `json:"type"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"active","type":"hub_user"}`), &back))
	assert.Equal(t, UserStatusActive, back.Status)
	assert.Equal(t, UserTypeHubUser, back.Type)
}

func TestEnums_RejectUnknown(t *testing.T) {
	_, err := ParseUserType("OWNER")
	assert.Error(t, err)

	_, err = ParseWorkspaceStatus("ARCHIVED")
	assert.Error(t, err)

	assert.False(t, UserStatus(9).Valid())
	_, err = UserStatus(9).MarshalText()
	assert.Error(t, err)
}

func TestEnums_ScanSmallint(t *testing.T) {
	var s UserStatus
	require.NoError(t, s.Scan(int64(2)))
	assert.Equal(t, UserStatusSuspended, s)

	var ws WorkspaceStatus
	require.NoError(t, ws.Scan([]byte("3")))
	assert.Equal(t, WorkspaceStatusOnHold, ws)

	v, err := UserTypeSuperAdmin.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	assert.Error(t, s.Scan(3.5))
}

func TestSchema_Validate(t *testing.T) {
	ok := Schema{Table: "core_user", Columns: RequiredUserColumns}
	assert.NoError(t, ok.Validate(RequiredUserColumns))

	extra := Schema{
		Table:   "hub_user",
		Columns: append(append([]string{}, RequiredUserColumns...), "locale"),
	}
	assert.NoError(t, extra.Validate(RequiredUserColumns))

	badTable := Schema{Table: "users; drop", Columns: RequiredUserColumns}
	assert.ErrorIs(t, badTable.Validate(RequiredUserColumns), ErrInvalidImplementation)

	missing := Schema{Table: "core_workspace", Columns: []string{"id", "uuid", "name"}}
	err := missing.Validate(RequiredWorkspaceColumns)
	assert.ErrorIs(t, err, ErrInvalidImplementation)
	assert.Contains(t, err.Error(), "status")
}
