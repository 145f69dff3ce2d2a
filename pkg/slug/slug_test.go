package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nike Space", "nike-space"},
		{"  New   Nike Graphic ", "new-nike-graphic"},
		{"Brand & Identity!", "brand-identity"},
		{"already-a-slug", "already-a-slug"},
		{"--dashes--", "dashes"},
		{"snake_case_name", "snake_case_name"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Of(tt.in))
		})
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Nike Space", Title("nike-space"))
	assert.Equal(t, "A B C", Title("a-b-c"))
}

func TestMatch(t *testing.T) {
	names := []string{"Moodboard", "New Nike Graphic", "Logos"}

	got, ok := Match("new-nike-graphic", names)
	assert.True(t, ok)
	assert.Equal(t, "New Nike Graphic", got)

	_, ok = Match("posters", names)
	assert.False(t, ok)
}

func TestPath(t *testing.T) {
	assert.Equal(t, "/jane/nike-space/new-nike-graphic", Path("jane", "Nike Space", "New Nike Graphic"))
}
