package versioning

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectsyn/pr-label-tag-action/internal/domain/bump"
	"github.com/projectsyn/pr-label-tag-action/internal/domain/sourcecontrol"
	rperrors "github.com/projectsyn/pr-label-tag-action/internal/errors"
)

// mockTagLister implements sourcecontrol.TagLister for testing.
type mockTagLister struct {
	tags  sourcecontrol.TagList
	err   error
	calls int
}

func (m *mockTagLister) ListTags(ctx context.Context) (sourcecontrol.TagList, error) {
	m.calls++
	return m.tags, m.err
}

func TestTagHistory_LatestVersion(t *testing.T) {
	tests := []struct {
		name string
		tags sourcecontrol.TagList
		want string
	}{
		{"no tags", nil, "v0.0.0"},
		{"only non-release tags", sourcecontrol.TagList{"bar", "v1", "foo-v1.0.0"}, "v0.0.0"},
		{"release tags", sourcecontrol.TagList{"v1.0.0", "v1.0.1", "v1.1.0"}, "v1.1.0"},
		{"mixed", sourcecontrol.TagList{"v1.0.0", "bar", "v1.2.3", "v1", "foo-v9.0.0"}, "v1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &mockTagLister{tags: tt.tags}
			h := NewTagHistory(lister, nil)

			got, err := h.LatestVersion(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
			assert.Equal(t, 1, lister.calls)
		})
	}
}

func TestTagHistory_LatestVersion_OrderIndependent(t *testing.T) {
	tags := sourcecontrol.TagList{"v0.1.0", "v1.0.0", "v1.0.1", "v1.10.0", "v1.9.3", "bar", "v1"}
	rng := rand.New(rand.NewPCG(3, 9))

	for i := 0; i < 25; i++ {
		shuffled := append(sourcecontrol.TagList(nil), tags...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := NewTagHistory(&mockTagLister{tags: shuffled}, nil).LatestVersion(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "v1.10.0", got.String(), "order %v", shuffled)
	}
}

func TestTagHistory_LatestVersion_ListerError(t *testing.T) {
	cause := errors.New("403 rate limited")
	lister := &mockTagLister{err: cause}

	_, err := NewTagHistory(lister, nil).LatestVersion(context.Background())
	require.Error(t, err)
	assert.True(t, rperrors.IsKind(err, rperrors.KindUpstream))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, lister.calls, "listing must not be retried")
}

func TestCalculateVersionUseCase_Execute(t *testing.T) {
	lister := &mockTagLister{tags: sourcecontrol.TagList{"v1.2.3", "v1.2.2"}}
	uc := NewCalculateVersionUseCase(NewTagHistory(lister, nil), nil)

	tests := []struct {
		kind bump.Kind
		want string
	}{
		{bump.Patch, "v1.2.4"},
		{bump.Minor, "v1.3.0"},
		{bump.Major, "v2.0.0"},
	}
	for _, tt := range tests {
		out, err := uc.Execute(context.Background(), tt.kind)
		require.NoError(t, err)
		assert.Equal(t, "v1.2.3", out.CurrentVersion.String())
		assert.Equal(t, tt.want, out.NextVersion)
		assert.Equal(t, tt.kind, out.Kind)
	}
}

func TestCalculateVersionUseCase_Execute_FirstRelease(t *testing.T) {
	uc := NewCalculateVersionUseCase(NewTagHistory(&mockTagLister{}, nil), nil)

	out, err := uc.Execute(context.Background(), bump.Minor)
	require.NoError(t, err)
	assert.Equal(t, "v0.0.0", out.CurrentVersion.String())
	assert.Equal(t, "v0.1.0", out.NextVersion)
}

func TestCalculateVersionUseCase_Execute_ListerError(t *testing.T) {
	uc := NewCalculateVersionUseCase(NewTagHistory(&mockTagLister{err: errors.New("boom")}, nil), nil)

	_, err := uc.Execute(context.Background(), bump.Patch)
	assert.True(t, rperrors.IsKind(err, rperrors.KindUpstream))
}
