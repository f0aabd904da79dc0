package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createGroup(t *testing.T, env *testEnv, name string) string {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/v1/groups", `{"name":`+quote(name)+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp GroupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func addTag(t *testing.T, env *testEnv, groupID, name string) string {
	t.Helper()

	w := env.do(t, http.MethodPost, "/api/v1/groups/"+groupID+"/tags", `{"name":`+quote(name)+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp TagResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func TestGroupEndpoints(t *testing.T) {
	t.Run("create and list", func(t *testing.T) {
		env := setupServer(t, 80)

		groupID := createGroup(t, env, "Family")
		tagID := addTag(t, env, groupID, "Mom")

		w := env.do(t, http.MethodGet, "/api/v1/groups", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp ListGroupsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Groups, 1)
		assert.Equal(t, "Family", resp.Groups[0].Name)
		require.Len(t, resp.Groups[0].Tags, 1)
		assert.Equal(t, tagID, resp.Groups[0].Tags[0].ID)
		assert.Equal(t, groupID, resp.Groups[0].Tags[0].GroupID)
	})

	t.Run("blank group name is rejected", func(t *testing.T) {
		env := setupServer(t, 80)

		w := env.do(t, http.MethodPost, "/api/v1/groups", `{"name":""}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(t, http.MethodPost, "/api/v1/groups", `{"name":"   "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("filter narrows groups to matching tags", func(t *testing.T) {
		env := setupServer(t, 80)

		family := createGroup(t, env, "Family")
		addTag(t, env, family, "Mom")
		addTag(t, env, family, "Dad")
		places := createGroup(t, env, "Places")
		addTag(t, env, places, "Beach")

		w := env.do(t, http.MethodGet, "/api/v1/groups?query=mo", "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp ListGroupsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Groups, 1)
		assert.Equal(t, "Family", resp.Groups[0].Name)
		require.Len(t, resp.Groups[0].Tags, 1)
		assert.Equal(t, "Mom", resp.Groups[0].Tags[0].Name)
	})

	t.Run("delete group", func(t *testing.T) {
		env := setupServer(t, 80)
		groupID := createGroup(t, env, "Family")

		w := env.do(t, http.MethodDelete, "/api/v1/groups/"+groupID, "")
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/api/v1/groups", "")
		var resp ListGroupsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Groups)
	})

	t.Run("delete unknown group is 404", func(t *testing.T) {
		env := setupServer(t, 80)

		w := env.do(t, http.MethodDelete, "/api/v1/groups/grp-missing", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete group drops its tags from open selections", func(t *testing.T) {
		env := setupServer(t, 80)

		groupID := createGroup(t, env, "Family")
		tagID := addTag(t, env, groupID, "Mom")
		imageID := env.captureImage(t)

		w := env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection", "")
		require.Equal(t, http.StatusOK, w.Code)

		toggle := `{"group_id":` + quote(groupID) + `,"tag":{"id":` + quote(tagID) + `,"name":"Mom"}}`
		w = env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection/toggle", toggle)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodDelete, "/api/v1/groups/"+groupID, "")
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/api/v1/images/"+imageID+"/selection", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), tagID)
	})

	t.Run("delete tag drops it from open selections", func(t *testing.T) {
		env := setupServer(t, 80)

		groupID := createGroup(t, env, "Family")
		tagID := addTag(t, env, groupID, "Mom")
		imageID := env.captureImage(t)

		env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection", "")
		toggle := `{"group_id":` + quote(groupID) + `,"tag":{"id":` + quote(tagID) + `,"name":"Mom"}}`
		env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection/toggle", toggle)

		w := env.do(t, http.MethodDelete, "/api/v1/groups/"+groupID+"/tags/"+tagID, "")
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/api/v1/images/"+imageID+"/selection", "")
		assert.NotContains(t, w.Body.String(), tagID)
	})
}
