package sharepoint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// folderServer simulates the drive's folder surface: path-addressed fetches
// plus child creation under the root or an item id.
type folderServer struct {
	t *testing.T

	// byPath maps hierarchy paths to folder ids for GET /root:/{path}.
	byPath map[string]string

	// conflictOn returns 409 nameAlreadyExists for this folder name.
	conflictOn string

	created []string // creation order, as "parentID/name"
	nextID  int
}

func (s *folderServer) handler(w http.ResponseWriter, r *http.Request) {
	path := drivePath(r)

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/root:/"):
		p := strings.TrimPrefix(path, "/root:/")
		if id, ok := s.byPath[p]; ok {
			writeJSON(w, http.StatusOK, fmt.Sprintf(`{"id":%q,"name":%q,"folder":{}}`, id, p))
			return
		}
		writeGraphError(w, http.StatusNotFound, "itemNotFound", "not found")

	case r.Method == http.MethodPost && (path == "/root/children" || strings.HasSuffix(path, "/children")):
		var body struct {
			Name             string         `json:"name"`
			Folder           map[string]any `json:"folder"`
			ConflictBehavior string         `json:"@microsoft.graph.conflictBehavior"`
		}
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(s.t, "replace", body.ConflictBehavior)
		assert.NotNil(s.t, body.Folder)

		if body.Name == s.conflictOn {
			writeGraphError(w, http.StatusConflict, "nameAlreadyExists", "name already exists")
			return
		}

		parent := "root"
		if strings.HasPrefix(path, "/items/") {
			parent = strings.TrimSuffix(strings.TrimPrefix(path, "/items/"), "/children")
		}
		s.nextID++
		id := fmt.Sprintf("folder-%d", s.nextID)
		s.created = append(s.created, parent+"/"+body.Name)
		writeJSON(w, http.StatusCreated, fmt.Sprintf(`{"id":%q,"name":%q,"folder":{}}`, id, body.Name))

	default:
		s.t.Errorf("unexpected request: %s %s", r.Method, path)
		w.WriteHeader(http.StatusTeapot)
	}
}

func TestEnsureFolderCreatesMissingSegments(t *testing.T) {
	srv := &folderServer{t: t, byPath: map[string]string{}}
	client := newTestClient(t, srv.handler)

	id, err := client.EnsureFolder(context.Background(), "Evidence/ELTK_03/1_2")
	require.NoError(t, err)
	assert.Equal(t, "folder-3", id)
	assert.Equal(t, []string{
		"root/Evidence",
		"folder-1/ELTK_03",
		"folder-2/1_2",
	}, srv.created)
}

func TestEnsureFolderReusesExistingPrefix(t *testing.T) {
	srv := &folderServer{t: t, byPath: map[string]string{
		"Evidence":         "id-ev",
		"Evidence/ELTK_03": "id-unit",
	}}
	client := newTestClient(t, srv.handler)

	id, err := client.EnsureFolder(context.Background(), "Evidence/ELTK_03/1_2")
	require.NoError(t, err)
	assert.Equal(t, "folder-1", id)
	assert.Equal(t, []string{"id-unit/1_2"}, srv.created)
}

func TestEnsureFolderFullyExisting(t *testing.T) {
	srv := &folderServer{t: t, byPath: map[string]string{
		"Evidence":             "id-ev",
		"Evidence/ELTK_03":     "id-unit",
		"Evidence/ELTK_03/1_2": "id-crit",
	}}
	client := newTestClient(t, srv.handler)

	id, err := client.EnsureFolder(context.Background(), "Evidence/ELTK_03/1_2")
	require.NoError(t, err)
	assert.Equal(t, "id-crit", id)
	assert.Empty(t, srv.created)
}

func TestEnsureFolderAdoptsConflictingSibling(t *testing.T) {
	// The fetch misses, the create reports a duplicate (a concurrent caller
	// won the race), and the refetch adopts the winner's folder.
	fetches := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path := drivePath(r)
		switch {
		case r.Method == http.MethodGet && path == "/root:/Evidence":
			fetches++
			if fetches == 1 {
				writeGraphError(w, http.StatusNotFound, "itemNotFound", "not found")
				return
			}
			writeJSON(w, http.StatusOK, `{"id":"id-winner","name":"Evidence","folder":{}}`)
		case r.Method == http.MethodPost && path == "/root/children":
			writeGraphError(w, http.StatusConflict, "nameAlreadyExists", "name already exists")
		default:
			t.Errorf("unexpected request: %s %s", r.Method, path)
		}
	})

	id, err := client.EnsureFolder(context.Background(), "Evidence")
	require.NoError(t, err)
	assert.Equal(t, "id-winner", id)
	assert.Equal(t, 2, fetches)
}

func TestEnsureFolderAbortsOnPermissionError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeGraphError(w, http.StatusForbidden, "accessDenied", "denied")
	})

	_, err := client.EnsureFolder(context.Background(), "Evidence/ELTK_03")
	require.Error(t, err)
	assert.True(t, IsPermission(err))
}

func TestEnsureFolderRejectsEmptyPath(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := client.EnsureFolder(context.Background(), "")
	assert.Error(t, err)
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "Evidence/ELTK_03/1_2", escapePath("Evidence/ELTK_03/1_2"))
	assert.Equal(t, "Evidence/wiring%20report.pdf", escapePath("Evidence/wiring report.pdf"))
}
