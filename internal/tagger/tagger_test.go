package tagger

import (
	"errors"
	"strings"
	"testing"

	"github.com/fusion-energy/cad-to-h5m/internal/engine"
	"github.com/fusion-energy/cad-to-h5m/internal/engine/enginetest"
	"github.com/fusion-energy/cad-to-h5m/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTag(t *testing.T) {
	s := enginetest.NewSession()
	details := models.GeometryDetails{
		{CADFilename: "a.stp", MaterialTag: "steel", Volumes: []int{1}},
		{CADFilename: "b.stp", MaterialTag: "steel", Volumes: []int{2}},
		{CADFilename: "c.stp", MaterialTag: "water", Volumes: []int{3, 4}},
	}

	require.NoError(t, NewTagger(s, "", nil).Tag(details))

	assert.Equal(t, []int{1, 2}, s.Groups["mat:steel"][engine.KindVolume])
	assert.Equal(t, []int{3, 4}, s.Groups["mat:water"][engine.KindVolume])
	assert.Len(t, s.Groups, 2)
}

func TestTagLengthBoundary(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		wantErr bool
	}{
		{"empty", "", true},
		{"short", "mat1", false},
		{"exactly max", strings.Repeat("a", 27), false},
		{"one over max", strings.Repeat("a", 28), true},
		{"multibyte at max", strings.Repeat("é", 27), false},
		{"multibyte over max", strings.Repeat("é", 28), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := enginetest.NewSession()
			entry := &models.InputEntry{CADFilename: "a.stp", MaterialTag: tt.tag, Volumes: []int{1}}

			err := NewTagger(s, "", nil).Tag(models.GeometryDetails{entry})
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Contains(t, s.Groups, "mat:"+tt.tag)
				return
			}
			require.Error(t, err)
			assert.False(t, s.Did("group"))
		})
	}
}

func TestTagErrorTypes(t *testing.T) {
	t.Run("missing tag", func(t *testing.T) {
		err := NewTagger(enginetest.NewSession(), "", nil).Tag(models.GeometryDetails{
			{CADFilename: "a.stp", Volumes: []int{1}},
		})
		var missing *MissingMaterialTagError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "a.stp", missing.CADFilename)
	})

	t.Run("tag too long", func(t *testing.T) {
		tag := strings.Repeat("x", 30)
		err := NewTagger(enginetest.NewSession(), "", nil).Tag(models.GeometryDetails{
			{CADFilename: "a.stp", MaterialTag: tag, Volumes: []int{1}},
		})
		var tooLong *MaterialTagTooLongError
		require.ErrorAs(t, err, &tooLong)
		assert.Equal(t, tag, tooLong.Tag)
		assert.Contains(t, err.Error(), "30 characters")
	})

	t.Run("tag too long counts characters", func(t *testing.T) {
		err := CheckTag(&models.InputEntry{CADFilename: "a.stp", MaterialTag: strings.Repeat("é", 28)})
		var tooLong *MaterialTagTooLongError
		require.ErrorAs(t, err, &tooLong)
		assert.Contains(t, err.Error(), "is 28 characters long, at most 27 are allowed")
	})

	t.Run("no volumes", func(t *testing.T) {
		err := NewTagger(enginetest.NewSession(), "", nil).Tag(models.GeometryDetails{
			{CADFilename: "a.stp", MaterialTag: "steel", Volumes: []int{}},
		})
		var noVolumes *NoVolumesError
		require.ErrorAs(t, err, &noVolumes)
	})

	t.Run("engine failure", func(t *testing.T) {
		s := enginetest.NewSession()
		s.Fail["group"] = &engine.CommandError{Command: "group", Message: "bad name"}
		err := NewTagger(s, "", nil).Tag(models.GeometryDetails{
			{CADFilename: "a.stp", MaterialTag: "steel", Volumes: []int{1}},
		})
		var cmdErr *engine.CommandError
		assert.True(t, errors.As(err, &cmdErr))
	})
}

func TestTagStopsAtFirstFailure(t *testing.T) {
	s := enginetest.NewSession()
	details := models.GeometryDetails{
		{CADFilename: "a.stp", MaterialTag: "steel", Volumes: []int{1}},
		{CADFilename: "b.stp", MaterialTag: "", Volumes: []int{2}},
		{CADFilename: "c.stp", MaterialTag: "water", Volumes: []int{3}},
	}

	require.Error(t, NewTagger(s, "", nil).Tag(details))
	assert.Contains(t, s.Groups, "mat:steel")
	assert.NotContains(t, s.Groups, "mat:water")
}

func TestImplicitComplement(t *testing.T) {
	tests := []struct {
		name       string
		tag        string
		complement string
		wantGroup  string
	}{
		{"graveyard with complement", "graveyard", "air", "mat:air_comp"},
		{"case insensitive", "GraveYard", "air", "mat:air_comp"},
		{"no complement configured", "graveyard", "", ""},
		{"not a graveyard", "steel", "air", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := enginetest.NewSession()
			entry := &models.InputEntry{CADFilename: "g.stp", MaterialTag: tt.tag, Volumes: []int{7, 8}}

			require.NoError(t, NewTagger(s, tt.complement, nil).Tag(models.GeometryDetails{entry}))

			assert.Equal(t, []int{7, 8}, s.Groups["mat:"+tt.tag][engine.KindVolume])
			if tt.wantGroup == "" {
				assert.Len(t, s.Groups, 1)
				return
			}
			assert.Equal(t, []int{7}, s.Groups[tt.wantGroup][engine.KindVolume])
		})
	}
}
