package view

import (
	"bytes"
	"html/template"
	"sort"
	"strings"

	"github.com/sifan077/LinkMe/internal/app/model"
)

// BookmarkFolder is one <H3> section of an exported bookmark file.
type BookmarkFolder struct {
	Name         string
	AddDate      int64
	LastModified int64
	Links        []BookmarkLink
}

// BookmarkLink is one <A> entry of an exported bookmark file.
type BookmarkLink struct {
	Title        string
	URL          string
	AddDate      int64
	LastModified int64
	Tags         string
}

// BookmarksData provides the dynamic fields required by the bookmarks template.
type BookmarksData struct {
	Title   string
	Folders []BookmarkFolder
}

var bookmarksTmpl = template.Must(template.New("bookmarks").Parse(`<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>{{.Title}}</TITLE>
<H1>{{.Title}}</H1>
<DL><p>
{{- range .Folders}}
    <DT><H3 ADD_DATE="{{.AddDate}}" LAST_MODIFIED="{{.LastModified}}">{{.Name}}</H3>
    <DL><p>
    {{- range .Links}}
        <DT><A HREF="{{.URL}}" ADD_DATE="{{.AddDate}}" LAST_MODIFIED="{{.LastModified}}"{{if .Tags}} TAGS="{{.Tags}}"{{end}}>{{.Title}}</A>
    {{- end}}
    </DL><p>
{{- end}}
</DL><p>
`))

// NewBookmarksData groups links under their folders. Folders keep the given
// order; links without a matching folder are dropped.
func NewBookmarksData(folders []model.Folder, links []model.Link) BookmarksData {
	byFolder := make(map[string][]model.Link, len(folders))
	for _, link := range links {
		byFolder[link.FolderID] = append(byFolder[link.FolderID], link)
	}

	data := BookmarksData{Title: "LinkMe Bookmarks", Folders: make([]BookmarkFolder, 0, len(folders))}
	for _, folder := range folders {
		group := byFolder[folder.ID]
		sort.SliceStable(group, func(i, j int) bool { return group[i].UpdatedAt.After(group[j].UpdatedAt) })

		entry := BookmarkFolder{
			Name:         folder.Name,
			AddDate:      folder.CreatedAt.Unix(),
			LastModified: folder.UpdatedAt.Unix(),
			Links:        make([]BookmarkLink, 0, len(group)),
		}
		for _, link := range group {
			entry.Links = append(entry.Links, BookmarkLink{
				Title:        link.Title,
				URL:          link.URL,
				AddDate:      link.CreatedAt.Unix(),
				LastModified: link.UpdatedAt.Unix(),
				Tags:         strings.Join(link.Keywords, ","),
			})
		}
		data.Folders = append(data.Folders, entry)
	}
	return data
}

// RenderBookmarks expands the bookmarks template with the provided data.
func RenderBookmarks(data BookmarksData) (string, error) {
	if data.Title == "" {
		data.Title = "Bookmarks"
	}
	var buf bytes.Buffer
	if err := bookmarksTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
