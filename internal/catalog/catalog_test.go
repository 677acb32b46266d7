package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPoemByID(t *testing.T) {
	s := NewStore()

	p, err := s.PoemByID(2)
	require.NoError(t, err)
	require.Equal(t, "We Real Cool", p.Title)

	_, err = s.PoemByID(99)
	require.ErrorIs(t, err, ErrNotFound)

	require.Len(t, s.Poems(), 5)
}

func TestImageByName(t *testing.T) {
	s := NewStore()

	// substring match, case-insensitive
	img, err := s.ImageByName("IMAGE3")
	require.NoError(t, err)
	require.Equal(t, 3, img.ID)

	_, err = s.ImageByName("nope")
	require.ErrorIs(t, err, ErrNotFound)

	require.Len(t, s.Images(), 5)
}
