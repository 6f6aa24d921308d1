package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDriveURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"share link",
			"https://drive.google.com/file/d/1AbC-d_9xYz/view?usp=sharing",
			"https://lh3.googleusercontent.com/d/1AbC-d_9xYz",
		},
		{
			"share link without view suffix",
			"https://drive.google.com/file/d/1AbC-d_9xYz",
			"https://lh3.googleusercontent.com/d/1AbC-d_9xYz",
		},
		{
			"open form with id parameter",
			"https://drive.google.com/open?id=1AbC-d_9xYz",
			"https://lh3.googleusercontent.com/d/1AbC-d_9xYz",
		},
		{
			"uc form with id parameter",
			"https://drive.google.com/uc?export=view&id=1AbC-d_9xYz",
			"https://lh3.googleusercontent.com/d/1AbC-d_9xYz",
		},
		{
			"non-drive url untouched",
			"https://cdn.example.com/photo.jpg",
			"https://cdn.example.com/photo.jpg",
		},
		{
			"plain text untouched",
			"not a url",
			"not a url",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDriveURL(tt.in))
		})
	}
}

func TestNormalizeAll(t *testing.T) {
	in := []string{
		"https://drive.google.com/file/d/abc/view",
		"https://cdn.example.com/p.png",
	}
	out := NormalizeAll(in)
	assert.Equal(t, []string{
		"https://lh3.googleusercontent.com/d/abc",
		"https://cdn.example.com/p.png",
	}, out)
	// input is left untouched
	assert.Equal(t, "https://drive.google.com/file/d/abc/view", in[0])
}
