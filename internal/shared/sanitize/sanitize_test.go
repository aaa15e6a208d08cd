package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextSanitizer_Clean(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "rebooted the DNS server", "rebooted the DNS server"},
		{"tags stripped", "<p>Reset <b>password</b> for user</p>", "Reset password for user"},
		{"entities unescaped", "ping &lt;host&gt; &amp; traceroute", "ping <host> & traceroute"},
		{"surrounding whitespace trimmed", "  <div> fixed printer </div>  ", "fixed printer"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Clean(tt.input))
		})
	}
}
