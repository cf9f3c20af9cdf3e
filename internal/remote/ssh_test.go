package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWildcardCommand(t *testing.T) {
	cmd := wildcardCommand("/var/www/*/public_html")

	assert.Equal(t, "ls -d /var/www/*/public_html 2>/dev/null", cmd)
}

func TestParseWildcardOutput(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		want   []string
	}{
		{
			name:   "plain listing",
			stdout: "/var/www/a/public_html\n/var/www/b/public_html\n",
			want:   []string{"/var/www/a/public_html", "/var/www/b/public_html"},
		},
		{
			name:   "trailing slashes trimmed",
			stdout: "/var/www/a/public_html/\n/var/www/b/public_html/\n",
			want:   []string{"/var/www/a/public_html", "/var/www/b/public_html"},
		},
		{
			name:   "no match yields nothing",
			stdout: "",
			want:   nil,
		},
		{
			name:   "blank and padded lines dropped",
			stdout: "\n  /var/www/a/public_html  \n\n",
			want:   []string{"/var/www/a/public_html"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseWildcardOutput(tt.stdout))
		})
	}
}
