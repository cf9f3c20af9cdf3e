package integrity

import (
	"regexp"
)

// coreFiles are the WordPress paths every verification checks against the
// stored baseline, relative to the site root.
var coreFiles = []string{
	"index.php",
	"wp-activate.php",
	"wp-blog-header.php",
	"wp-comments-post.php",
	"wp-config-sample.php",
	"wp-cron.php",
	"wp-links-opml.php",
	"wp-load.php",
	"wp-login.php",
	"wp-mail.php",
	"wp-settings.php",
	"wp-signup.php",
	"wp-trackback.php",
	"xmlrpc.php",
	"wp-admin/index.php",
	"wp-admin/admin.php",
	"wp-admin/admin-ajax.php",
	"wp-includes/version.php",
	"wp-includes/functions.php",
	"wp-includes/load.php",
	"wp-includes/pluggable.php",
}

// suspiciousExtensions are filename suffixes that never belong in a healthy
// install. Any hit is flagged high risk.
var suspiciousExtensions = []string{
	".php.suspected",
	".suspected",
	".php_",
	".php.bak",
	".php.old",
	".php.save",
	".pht",
	".phtml",
	".php3",
	".php4",
	".php5",
	".shtml",
}

// malwarePattern pairs a human-readable signature name with its compiled
// regex. The name ends up in the finding's reason.
type malwarePattern struct {
	name string
	re   *regexp.Regexp
}

var malwarePatterns = []malwarePattern{
	{"eval of base64-decoded payload", regexp.MustCompile(`(?i)eval\s*\(\s*base64_decode\s*\(`)},
	{"eval of gzinflated payload", regexp.MustCompile(`(?i)eval\s*\(\s*gzinflate\s*\(`)},
	{"eval of rot13 payload", regexp.MustCompile(`(?i)eval\s*\(\s*str_rot13\s*\(`)},
	{"eval of request input", regexp.MustCompile(`(?i)eval\s*\(\s*\$_(GET|POST|REQUEST|COOKIE)`)},
	{"assert of request input", regexp.MustCompile(`(?i)assert\s*\(\s*\$_(GET|POST|REQUEST|COOKIE)`)},
	{"preg_replace with eval modifier", regexp.MustCompile(`(?i)preg_replace\s*\(\s*['"][^'"]*['"]*\s*\.\s*['"]e|preg_replace\s*\(\s*['"][^'"]*/[a-z]*e[a-z]*['"]`)},
	{"shell execution of request input", regexp.MustCompile(`(?i)(shell_exec|system|exec|passthru|popen|proc_open)\s*\(\s*\$_(GET|POST|REQUEST|COOKIE)`)},
	{"runtime function construction", regexp.MustCompile(`(?i)create_function\s*\(`)},
	{"callback invocation of request input", regexp.MustCompile(`(?i)call_user_func(_array)?\s*\(\s*\$_(GET|POST|REQUEST|COOKIE)`)},
	{"remote content fetch", regexp.MustCompile(`(?i)(file_get_contents|curl_exec|fopen)\s*\(\s*['"]https?://`)},
	{"mail abuse with request input", regexp.MustCompile(`(?i)mail\s*\([^)]*\$_(GET|POST|REQUEST)`)},
	{"uploaded file moved from request", regexp.MustCompile(`(?i)move_uploaded_file\s*\(\s*\$_FILES`)},
}

// superglobalRe gates the weaker signatures: a remote fetch only counts as
// malware when the same content also touches user-controlled input.
var superglobalRe = regexp.MustCompile(`\$_(GET|POST|REQUEST|COOKIE)\b`)

// conditionalPatterns only fire together with a superglobal reference.
var conditionalPatterns = map[string]bool{
	"remote content fetch":          true,
	"runtime function construction": true,
}

// MatchMalware returns the names of every malicious-code signature found in
// content, in catalog order. An empty slice means clean.
func MatchMalware(content string) []string {
	hasSuperglobal := superglobalRe.MatchString(content)

	var matched []string
	for _, p := range malwarePatterns {
		if !p.re.MatchString(content) {
			continue
		}
		if conditionalPatterns[p.name] && !hasSuperglobal {
			continue
		}
		matched = append(matched, p.name)
	}
	return matched
}
