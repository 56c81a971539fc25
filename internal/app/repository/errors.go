package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrUserNotFound signals that no user matched the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser signals a unique-index violation on username or email.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrSessionNotFound signals that no session holds the token.
	ErrSessionNotFound = errors.New("session not found")
	// ErrFolderNotFound signals that the requested folder does not exist.
	ErrFolderNotFound = errors.New("folder not found")
	// ErrDuplicateFolder signals a (user_id, name) unique-index violation.
	ErrDuplicateFolder = errors.New("folder name already exists")
	// ErrLinkNotFound signals that the requested link does not exist.
	ErrLinkNotFound = errors.New("link not found")
)

// translate maps GORM errors onto repository sentinels. The DB must be opened
// with TranslateError so that unique violations surface as gorm.ErrDuplicatedKey.
func translate(err error, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case duplicate != nil && errors.Is(err, gorm.ErrDuplicatedKey):
		return duplicate
	default:
		return err
	}
}
