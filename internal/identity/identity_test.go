package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBearer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		header    string
		wantToken string
		wantOK    bool
	}{
		{"empty header", "", "", false},
		{"well-formed", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"lowercase scheme", "bearer abc", "abc", true},
		{"mixed-case scheme", "BeArEr abc", "abc", true},
		{"wrong scheme", "Token abc", "", false},
		{"scheme only", "Bearer", "", false},
		{"scheme with trailing space only", "Bearer ", "", false},
		{"too many segments", "Bearer abc def", "", false},
		{"bare token without scheme", "abc.def.ghi", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			token, ok := ExtractBearer(tt.header)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}
