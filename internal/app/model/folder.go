package model

import "time"

// Folder groups a user's links. Names are unique per owner.
type Folder struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_folders_user_name,priority:1"`
	Name      string    `json:"name" gorm:"size:255;not null;uniqueIndex:idx_folders_user_name,priority:2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`
}

// FolderWithLinks is a folder together with its links, newest first.
type FolderWithLinks struct {
	Folder
	Links []Link `json:"links"`
}
