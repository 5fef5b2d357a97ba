package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want CommandMsg
	}{
		{line: "", want: CommandMsg{}},
		{line: "   ", want: CommandMsg{}},
		{line: "new", want: CommandMsg{Name: NewQuest, Args: []string{}}},
		{line: "Status Active", want: CommandMsg{Name: Status, Args: []string{"Active"}}},
		{line: " new  The Lost Amulet ", want: CommandMsg{Name: NewQuest, Args: []string{"The", "Lost", "Amulet"}}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.line))
		})
	}
}
