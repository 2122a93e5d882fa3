package service

import (
	"testing"
	"time"

	"github.com/arturoeanton/codehub/internal/domain"
	"github.com/arturoeanton/codehub/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopProjects_Limit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"default when unset", 0, DefaultTopProjects},
		{"default when negative", -3, DefaultTopProjects},
		{"explicit", 12, 12},
		{"capped", 1000, MaxTopProjects},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeProjectStore{}
			_, err := NewProjectService(st).Top(ctx, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, st.gotLimit)
		})
	}
}

func TestTopProjects_GroupName(t *testing.T) {
	g := &domain.Group{ID: "g1", Name: "Compilers 101", Slug: "compilers"}
	st := &fakeProjectStore{projects: []domain.Project{
		{ID: "p2", Name: "Parser", Group: g, CreatedAt: time.Now()},
		{ID: "p1", Name: "Loose"},
	}}

	out, err := NewProjectService(st).Top(ctx, 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Compilers 101", out[0].GroupName)
	assert.Equal(t, "compilers", out[0].GroupSlug)
	assert.Empty(t, out[1].GroupName)
}

func TestGroup(t *testing.T) {
	st := &fakeProjectStore{groups: []domain.Group{{
		ID: "g1", Name: "Compilers", Slug: "compilers",
		Projects: []domain.Project{{ID: "p1", Name: "Lexer"}},
	}}}
	svc := NewProjectService(st)

	g, err := svc.Group(ctx, "compilers")
	require.NoError(t, err)
	require.Len(t, g.Projects, 1)
	assert.Equal(t, "Compilers", g.Projects[0].GroupName)

	_, err = svc.Group(ctx, "nope")
	assert.ErrorIs(t, err, port.ErrNotFound)

	_, err = svc.Group(ctx, " ")
	assert.ErrorIs(t, err, port.ErrBadRequest)
}

func TestTasks(t *testing.T) {
	grade := 9.5
	st := &fakeProjectStore{
		tasks: []domain.Task{{ID: "t1", Title: "Write a lexer"}},
		feedback: []domain.Feedback{
			{TaskID: "t1", UserID: "u1", Grade: &grade, Comment: "nice"},
			{TaskID: "t1", UserID: "u2", Comment: "someone else"},
		},
	}
	svc := NewProjectService(st)

	tasks, err := svc.Tasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	detail, err := svc.Task(ctx, &domain.UserContext{UserID: "u1"}, "t1")
	require.NoError(t, err)
	require.Len(t, detail.Feedback, 1)
	assert.Equal(t, "nice", detail.Feedback[0].Comment)

	detail, err = svc.Task(ctx, &domain.UserContext{UserID: "u3"}, "t1")
	require.NoError(t, err)
	assert.NotNil(t, detail.Feedback)
	assert.Empty(t, detail.Feedback)

	_, err = svc.Task(ctx, &domain.UserContext{UserID: "u1"}, "t9")
	assert.ErrorIs(t, err, port.ErrTaskNotFound)
}

func TestTasks_EmptyIsArray(t *testing.T) {
	tasks, err := NewProjectService(&fakeProjectStore{}).Tasks(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
}
