// AngelaMos | 2026
// closers_test.go

package bootstrap_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clergo/steago/internal/bootstrap"
)

func TestClosers_ReverseOrderAfterEarlyFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var order []string
	track := func(name string, err error) func() error {
		return func() error {
			order = append(order, name)
			return err
		}
	}

	var closers bootstrap.Closers
	bindModels := func() error {
		closers.Add("database", track("database", nil))
		closers.Add("redis", track("redis", errors.New("connection reset")))
		return errors.New("bind models: table core_user does not exist")
	}

	err := func() error {
		defer closers.Close(logger)
		return bindModels()
	}()

	assert.Error(t, err)
	assert.Equal(t, []string{"redis", "database"}, order)
	assert.Contains(t, buf.String(), "resource=redis")
	assert.Contains(t, buf.String(), "connection reset")
	assert.NotContains(t, buf.String(), "resource=database")

	closers.Close(logger)
	assert.Len(t, order, 2)
}
