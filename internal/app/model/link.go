package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Link is a bookmarked URL stored inside one of its owner's folders.
// UserID must equal the owning folder's UserID; this is checked by the service
// on every create and update, not by a database constraint.
type Link struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;index"`
	FolderID  string    `json:"folder_id" gorm:"size:36;not null;index"`
	Title     string    `json:"title" gorm:"type:text;not null"`
	URL       string    `json:"url" gorm:"type:text;not null"`
	Keywords  Keywords  `json:"keywords" gorm:"type:jsonb;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`
}

// LinkWithFolder is a search hit annotated with its folder's display name.
type LinkWithFolder struct {
	Link
	FolderName string `json:"folder_name"`
}

// UnknownFolderName is reported for links whose folder no longer exists.
const UnknownFolderName = "Unknown"

// Keywords is an ordered list of free-text tags persisted as a JSON array.
type Keywords []string

// Value implements driver.Valuer. A nil list is stored as an empty array.
func (k Keywords) Value() (driver.Value, error) {
	if k == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(k))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (k *Keywords) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*k = Keywords{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("keywords: unsupported scan type %T", src)
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("keywords: decode: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*k = out
	return nil
}

// MarshalJSON always renders an array, never null.
func (k Keywords) MarshalJSON() ([]byte, error) {
	if k == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(k))
}
