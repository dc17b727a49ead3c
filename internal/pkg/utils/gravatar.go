package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

const defaultGravatarSize = 200

// GetGravatarURL builds the Gravatar URL shown for members who have not
// uploaded an avatar. Gravatar hashes the trimmed, lowercased address; the
// "mp" default serves a neutral silhouette for unregistered mails.
func GetGravatarURL(email string, size int) string {
	if size <= 0 {
		size = defaultGravatarSize
	}

	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))

	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&d=mp", hex.EncodeToString(sum[:]), size)
}
