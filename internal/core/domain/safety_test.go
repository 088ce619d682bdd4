package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSafety(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sql     string
		wantErr bool
	}{
		{"plain select", "select * from users", false},
		{"updated_at is not update", "select name, updated_at from users", false},
		{"created_by is not create", "select created_by from audit", false},
		{"deleted flag", "select id from users where deleted = false", false},
		{"with cte", "with t as (select 1) select * from t", true},
		{"explain", "explain select 1", true},
		{"delete", "delete from users", true},
		{"stacked drop", "select * from users; drop table users", true},
		{"update inside select", "select * from users where 1 = 1; update users set name = 'x'", true},
		{"insert", "insert into users values (1)", true},
		{"truncate in tail", "select 1; truncate users", true},
		{"replace function", "select replace(name, 'a', 'b') from users", true},
		{"alter", "select 1 alter", true},
		{"create", "select 1; create table x (id int)", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := CheckSafety(tt.sql)
			assert.Equal(t, !tt.wantErr, IsSafe(tt.sql))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnsafeStatement)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckSafety_ReportsKeyword(t *testing.T) {
	t.Parallel()
	err := CheckSafety("select * from users; drop table users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"drop"`)
}

func TestCheckSafety_EveryForbiddenKeyword(t *testing.T) {
	t.Parallel()
	for _, kw := range ForbiddenKeywords {
		assert.False(t, IsSafe("select * from t where "+kw), kw)
		assert.True(t, IsSafe("select "+kw+"_x from t"), kw)
	}
}
