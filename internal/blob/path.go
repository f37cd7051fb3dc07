package blob

import (
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectPath builds "{prefix}/{unixMillis}_{token}_{filename}" for a new
// upload. The random token keeps same-named files uploaded in the same
// millisecond from overwriting each other.
func ObjectPath(prefix, filename string, now time.Time) string {
	return objectPath(prefix, filename, now, uploadToken())
}

func uploadToken() string {
	id := uuid.New()
	return hex.EncodeToString(id[:4])
}

func objectPath(prefix, filename string, now time.Time, token string) string {
	prefix = strings.Trim(prefix, "/")
	name := fmt.Sprintf("%d_%s_%s", now.UnixMilli(), token, sanitize(filename))
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

func sanitize(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}
