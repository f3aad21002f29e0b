package sharepoint

import (
	"strings"
	"time"

	"github.com/voltfolio/evisync/internal/core/domain"
)

// driveItem is the subset of the Graph drive item payload the engine needs.
type driveItem struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	WebURL               string    `json:"webUrl"`
	DownloadURL          string    `json:"@microsoft.graph.downloadUrl"`
	Size                 int64     `json:"size"`
	CreatedDateTime      time.Time `json:"createdDateTime"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`

	File *struct {
		MimeType string `json:"mimeType"`
	} `json:"file"`

	Folder *struct {
		ChildCount int `json:"childCount"`
	} `json:"folder"`

	ParentReference *struct {
		ID   string `json:"id"`
		Path string `json:"path"`
	} `json:"parentReference"`
}

// itemList is the envelope for children and search responses.
type itemList struct {
	Value []driveItem `json:"value"`
}

// uploadSession is the remote-issued handle for a chunked upload. The URL is
// single-use and pre-authenticated.
type uploadSession struct {
	UploadURL          string    `json:"uploadUrl"`
	ExpirationDateTime time.Time `json:"expirationDateTime"`
}

// graphError is the Graph API error envelope.
type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// fieldMap carries the structured fields attached to a drive item's list
// item. Field names vary with the age of the record, so values are looked up
// through the variant tables in metadata.go.
type fieldMap map[string]any

// hierarchyPath derives the slash-separated path of an item under the
// document root from its parent reference path, which looks like
// "/drives/<id>/root:/Evidence/NETP3-01/1_1". Returns "" when the parent
// path is absent or not under the root.
func (d *driveItem) hierarchyPath() string {
	if d.ParentReference == nil {
		return ""
	}
	parent := d.ParentReference.Path
	idx := strings.Index(parent, "root:")
	if idx < 0 {
		return ""
	}
	parent = strings.Trim(strings.TrimPrefix(parent[idx:], "root:"), "/")
	if parent == "" {
		return d.Name
	}
	return parent + "/" + d.Name
}

// toRemoteFile converts a drive item to the domain representation.
func (d *driveItem) toRemoteFile() domain.RemoteFile {
	f := domain.RemoteFile{
		ID:          d.ID,
		Name:        d.Name,
		WebURL:      d.WebURL,
		DownloadURL: d.DownloadURL,
		Size:        d.Size,
		CreatedAt:   d.CreatedDateTime,
		ModifiedAt:  d.LastModifiedDateTime,
		Path:        d.hierarchyPath(),
		IsFolder:    d.Folder != nil,
	}
	if d.File != nil {
		f.MIMEType = d.File.MimeType
	}
	return f
}
