package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeSelection(t *testing.T, body []byte) SelectionResponse {
	t.Helper()
	var env struct {
		Data SelectionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	return env.Data
}

func TestSelectionEndpoints(t *testing.T) {
	t.Run("open seeds from saved tags", func(t *testing.T) {
		env := setupServer(t, 80)
		imageID := env.captureImage(t)

		w := env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection", "")
		require.Equal(t, http.StatusOK, w.Code)

		sel := decodeSelection(t, w.Body.Bytes())
		assert.Equal(t, imageID, sel.ImageID)
		assert.Empty(t, sel.Tags)
	})

	t.Run("toggle adds then removes", func(t *testing.T) {
		env := setupServer(t, 80)
		imageID := env.captureImage(t)
		env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection", "")

		toggle := `{"group_id":"g1","tag":{"id":"t1","name":"Mom"}}`

		w := env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection/toggle", toggle)
		require.Equal(t, http.StatusOK, w.Code)
		sel := decodeSelection(t, w.Body.Bytes())
		require.Len(t, sel.Tags, 1)
		assert.Equal(t, "g1", sel.Tags[0].GroupID)

		w = env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection/toggle", toggle)
		require.Equal(t, http.StatusOK, w.Code)
		sel = decodeSelection(t, w.Body.Bytes())
		assert.Empty(t, sel.Tags)
	})

	t.Run("time tag is exclusive", func(t *testing.T) {
		env := setupServer(t, 80)
		imageID := env.captureImage(t)
		env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection", "")

		w := env.do(t, http.MethodPut, "/api/v1/images/"+imageID+"/selection/time-tag", `{"text":"2024-06"}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodPut, "/api/v1/images/"+imageID+"/selection/time-tag", `{"text":"2024-07"}`)
		require.Equal(t, http.StatusOK, w.Code)

		sel := decodeSelection(t, w.Body.Bytes())
		require.Len(t, sel.Tags, 1)
		assert.True(t, sel.Tags[0].IsTimeTag)
		assert.Equal(t, "2024-07", sel.Tags[0].Name)
	})

	t.Run("remove time tag", func(t *testing.T) {
		env := setupServer(t, 80)
		imageID := env.captureImage(t)
		env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection", "")
		env.do(t, http.MethodPut, "/api/v1/images/"+imageID+"/selection/time-tag", `{"text":"2024-06"}`)

		w := env.do(t, http.MethodDelete, "/api/v1/images/"+imageID+"/selection/time-tag", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decodeSelection(t, w.Body.Bytes()).Tags)
	})

	t.Run("clear requires confirmation", func(t *testing.T) {
		env := setupServer(t, 80)
		imageID := env.captureImage(t)
		env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection", "")
		env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection/toggle", `{"group_id":"g1","tag":{"id":"t1","name":"Mom"}}`)

		w := env.do(t, http.MethodDelete, "/api/v1/images/"+imageID+"/selection/tags", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.do(t, http.MethodDelete, "/api/v1/images/"+imageID+"/selection/tags?confirm=true", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"cleared":true`)
	})

	t.Run("commit sorts and saves", func(t *testing.T) {
		env := setupServer(t, 80)
		imageID := env.captureImage(t)
		env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection", "")

		// Toggle in reverse alphabetical order, then add a time tag.
		env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection/toggle", `{"group_id":"g1","tag":{"id":"t2","name":"Zoo"}}`)
		env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection/toggle", `{"group_id":"g1","tag":{"id":"t1","name":"Beach"}}`)
		env.do(t, http.MethodPut, "/api/v1/images/"+imageID+"/selection/time-tag", `{"text":"2024-06"}`)

		w := env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection/commit", "")
		require.Equal(t, http.StatusOK, w.Code)

		sel := decodeSelection(t, w.Body.Bytes())
		require.Len(t, sel.Tags, 3)
		assert.True(t, sel.Tags[0].IsTimeTag)
		assert.Equal(t, "Beach", sel.Tags[1].Name)
		assert.Equal(t, "Zoo", sel.Tags[2].Name)

		// Commit closes the selection and persists the tags.
		w = env.do(t, http.MethodGet, "/api/v1/images/"+imageID+"/selection", "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = env.do(t, http.MethodGet, "/api/v1/images", "")
		assert.Contains(t, w.Body.String(), "Beach")
	})

	t.Run("commit without open selection is 404", func(t *testing.T) {
		env := setupServer(t, 80)
		imageID := env.captureImage(t)

		w := env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection/commit", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("discard drops unsaved work", func(t *testing.T) {
		env := setupServer(t, 80)
		imageID := env.captureImage(t)
		env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection", "")
		env.do(t, http.MethodPost, "/api/v1/images/"+imageID+"/selection/toggle", `{"group_id":"g1","tag":{"id":"t1","name":"Mom"}}`)

		w := env.do(t, http.MethodDelete, "/api/v1/images/"+imageID+"/selection", "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = env.do(t, http.MethodGet, "/api/v1/images", "")
		assert.NotContains(t, w.Body.String(), "Mom")
	})
}
