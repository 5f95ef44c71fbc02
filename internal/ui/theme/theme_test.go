package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/dori/homeroom/internal/model"
	"github.com/dori/homeroom/internal/stats"
)

func TestPalettesAreComplete(t *testing.T) {
	for _, th := range Available() {
		assert.NotEmpty(t, th.Name)
		for _, c := range []lipgloss.Color{
			th.Background, th.Foreground, th.Subtle, th.Highlight, th.Border,
			th.Primary, th.Secondary, th.Success, th.Warning, th.Error, th.Info,
			th.TrendUp, th.TrendDown, th.TrendFlat, th.KindHomework, th.KindReminder, th.Pinned,
		} {
			assert.Len(t, string(c), 7, th.Name)
		}
	}
}

func TestByNameAndNext(t *testing.T) {
	th, ok := ByName("Dracula")
	assert.True(t, ok)
	assert.Equal(t, "dracula", th.Name)

	_, ok = ByName("solarized")
	assert.False(t, ok)

	assert.Equal(t, "dracula", Next("nord").Name)
	assert.Equal(t, "nord", Next("catppuccin").Name)
	assert.Equal(t, "nord", Next("unknown").Name)
}

func TestBarColors(t *testing.T) {
	points := []stats.Point{{Score: 10}, {Score: 50}, {Score: 50}, {Score: 20}}
	assert.Equal(t,
		[]lipgloss.Color{Nord.TrendFlat, Nord.TrendUp, Nord.TrendFlat, Nord.TrendDown},
		Nord.BarColors(points))
	assert.Empty(t, Nord.BarColors(nil))
}

func TestKindAndSubjectColor(t *testing.T) {
	assert.Equal(t, Nord.KindReminder, Nord.KindColor(model.KindReminder))
	assert.Equal(t, Nord.KindHomework, Nord.KindColor(model.KindHomework))
	assert.Equal(t, lipgloss.Color("#ff0000"), SubjectColor(model.Color{R: 1, A: 1}))
}
