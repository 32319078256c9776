package db

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrate(t *testing.T) {
	tests := []struct {
		name      string
		failAt    int
		failErr   error
		wantErr   bool
		wantCalls int
	}{
		{name: "all statements applied", failAt: -1, wantCalls: len(Statements())},
		{name: "duplicate column is skipped", failAt: len(schema), failErr: errors.New("Error 1060: Duplicate column name 'agent_enabled'"), wantCalls: len(Statements())},
		{name: "other errors stop the run", failAt: 1, failErr: errors.New("connection refused"), wantErr: true, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer conn.Close()

			for i, q := range Statements()[:tt.wantCalls] {
				exp := mock.ExpectExec(regexp.QuoteMeta(q))
				if i == tt.failAt {
					exp.WillReturnError(tt.failErr)
					continue
				}
				exp.WillReturnResult(sqlmock.NewResult(0, 0))
			}

			err = Migrate(context.Background(), conn, zap.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
