package query

import (
	"testing"

	"github.com/cskr/pubsub"
	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/domalab/cgtrace/daemon/domain"
	"github.com/domalab/cgtrace/daemon/services/persistence"
)

// newTestService builds a Service over a sqlmock-backed store and a config
// with auth disabled, so handler tests don't also have to authenticate.
func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := persistence.NewStoreForTesting(db)
	cfg := domain.DefaultConfig()

	return New(&domain.Context{Config: cfg, Hub: pubsub.New(1)}, store), mock
}
