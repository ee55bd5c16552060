package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAny(t *testing.T) {
	assert.Equal(t, []string{"Community", "Book Club", "Friendship"}, SplitAny("Community; Book Club|Friendship", ",;|"))
	assert.Equal(t, []string{"a", "b"}, SplitAny(" a ,, ;b; ", ",;|"))
	assert.Empty(t, SplitAny("", ",;|"))
}

func TestTitleWords(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "tel aviv", want: "Tel Aviv"},
		{in: "MONTREAL", want: "Montreal"},
		{in: "new  haven", want: "New  Haven"},
		{in: "online", want: "Online"},
		{in: "winston-salem", want: "Winston-salem"},
		{in: "o'FALLON", want: "O'fallon"},
		{in: "émile", want: "Émile"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, TitleWords(tc.in))
		})
	}
}

func TestCell(t *testing.T) {
	row := []string{" a ", "b"}
	assert.Equal(t, "a", Cell(row, 0))
	assert.Equal(t, "", Cell(row, 5))
	assert.Equal(t, "", Cell(row, -1))
}

func TestTrimTrailingEmpty(t *testing.T) {
	rows := [][]string{{"h1", "h2", ""}, {"v", "", ""}, {"", ""}, {}}
	assert.Equal(t, [][]string{{"h1", "h2"}, {"v"}}, TrimTrailingEmpty(rows))
}
