package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const dateFormat = "2006-01-02"

// EncodeEntryToken creates a base64 encoded cursor from the last entry's date and id.
// Journal listings are ordered by (entry_date DESC, entry_id DESC).
func EncodeEntryToken(entryDate time.Time, entryID string) string {
	tokenStr := fmt.Sprintf("%s|%s", entryDate.UTC().Format(dateFormat), entryID)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeEntryToken parses a cursor produced by EncodeEntryToken.
func DecodeEntryToken(token string) (time.Time, string, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (split)")
	}

	entryDate, err := time.Parse(dateFormat, parts[0])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}
	return entryDate, parts[1], nil
}

// EncodeAccountToken creates a cursor from the last account's id and name.
// The id goes first because names may contain the separator.
func EncodeAccountToken(name, accountID string) string {
	tokenStr := accountID + "|" + name
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeAccountToken parses a cursor produced by EncodeAccountToken.
func DecodeAccountToken(token string) (name string, accountID string, err error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", "", fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("invalid pagination token format (split)")
	}
	return parts[1], parts[0], nil
}
