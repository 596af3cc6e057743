package proc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTexts(t *testing.T) {
	tests := []struct {
		name   string
		active int
		drawn  int
		want   []string
	}{
		{"idle", 0, 12, []string{"Giveaway running!"}},
		{"one running", 1, 0, []string{"🎉 1 giveaway running"}},
		{"many running", 3, 0, []string{"🎉 3 giveaways running"}},
		{"alternates with archive", 2, 7, []string{"🎉 2 giveaways running", "🏆 7 giveaways drawn"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusTexts("Giveaway running!", tt.active, tt.drawn))
		})
	}
}
