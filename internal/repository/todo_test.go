package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cirocosta/todopage/internal/model"
)

// stepClock returns a clock advancing by one second per call
func stepClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(time.Second)
		return t
	}
}

func TestInMemoryListByUser(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, tc := range map[string]struct {
		seed   []model.Todo
		userID string
		want   []model.Todo
	}{
		"no records": {
			userID: "alice",
			want:   []model.Todo{},
		},
		"newest first": {
			seed: []model.Todo{
				{Title: "first", UserID: "alice"},
				{Title: "second", UserID: "alice"},
			},
			userID: "alice",
			want: []model.Todo{
				{ID: 2, Title: "second", UserID: "alice", CreatedAt: start.Add(time.Second)},
				{ID: 1, Title: "first", UserID: "alice", CreatedAt: start},
			},
		},
		"other identities filtered out": {
			seed: []model.Todo{
				{Title: "mine", UserID: "alice"},
				{Title: "theirs", UserID: "bob"},
			},
			userID: "bob",
			want: []model.Todo{
				{ID: 2, Title: "theirs", UserID: "bob", CreatedAt: start.Add(time.Second)},
			},
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			repo := NewInMemoryTodoRepository().WithClock(stepClock(start))
			for _, todo := range tc.seed {
				_, err := repo.Insert(ctx, todo)
				require.NoError(t, err)
			}

			got, err := repo.ListByUser(ctx, tc.userID)
			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("todos mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInMemoryListTiesBrokenByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := NewInMemoryTodoRepository().WithClock(func() time.Time { return fixed })

	for _, title := range []string{"a", "b", "c"} {
		_, err := repo.Insert(ctx, model.Todo{Title: title, UserID: "alice"})
		require.NoError(t, err)
	}

	got, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{got[0].ID, got[1].ID, got[2].ID})
}

func TestInMemoryInsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("store assigns defaults", func(t *testing.T) {
		t.Parallel()

		repo := NewInMemoryTodoRepository()
		got, err := repo.Insert(ctx, model.Todo{ID: 99, Title: "x", IsDone: true, UserID: "alice"})
		require.NoError(t, err)

		assert.Equal(t, int64(1), got.ID)
		assert.False(t, got.IsDone)
		assert.False(t, got.CreatedAt.IsZero())
	})

	t.Run("empty title accepted", func(t *testing.T) {
		t.Parallel()

		repo := NewInMemoryTodoRepository()
		got, err := repo.Insert(ctx, model.Todo{Title: "", UserID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, "", got.Title)
	})

	t.Run("missing owner", func(t *testing.T) {
		t.Parallel()

		repo := NewInMemoryTodoRepository()
		_, err := repo.Insert(ctx, model.Todo{Title: "x"})

		var invalid ErrInvalidTodo
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "user_id is required", invalid.Reason)
	})
}

func TestInMemorySetDone(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		actingUser   string
		id           int64
		wantAffected int64
		wantDone     bool
	}{
		"owner": {
			actingUser:   "alice",
			id:           1,
			wantAffected: 1,
			wantDone:     true,
		},
		"other identity": {
			actingUser:   "bob",
			id:           1,
			wantAffected: 0,
			wantDone:     false,
		},
		"missing id": {
			actingUser:   "alice",
			id:           404,
			wantAffected: 0,
			wantDone:     false,
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			repo := NewInMemoryTodoRepository()
			_, err := repo.Insert(ctx, model.Todo{Title: "x", UserID: "alice"})
			require.NoError(t, err)

			affected, err := repo.SetDone(ctx, tc.actingUser, tc.id, true)
			require.NoError(t, err)
			assert.Equal(t, tc.wantAffected, affected)

			todos, err := repo.ListByUser(ctx, "alice")
			require.NoError(t, err)
			require.Len(t, todos, 1)
			assert.Equal(t, tc.wantDone, todos[0].IsDone)
		})
	}
}
