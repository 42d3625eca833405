package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientSearch(t *testing.T) {
	db := SetupTestDB(t)
	router := SetupTestRouter(t, db)

	CreateTestIngredient(t, db, "sugar", "g")
	CreateTestIngredient(t, db, "sunflower oil", "ml")
	CreateTestIngredient(t, db, "salt", "g")

	type ingredient struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	t.Run("prefix match", func(t *testing.T) {
		w := PerformRequest(router, http.MethodGet, "/api/v1/ingredients?name=su", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var got []ingredient
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "sugar", got[0].Name)
		assert.Equal(t, "sunflower oil", got[1].Name)
	})

	t.Run("no match", func(t *testing.T) {
		w := PerformRequest(router, http.MethodGet, "/api/v1/ingredients?name=zz", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var got []ingredient
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Empty(t, got)
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		w := PerformRequest(router, http.MethodGet, "/api/v1/ingredients?name=%25", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var got []ingredient
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Empty(t, got)
	})

	t.Run("full listing", func(t *testing.T) {
		w := PerformRequest(router, http.MethodGet, "/api/v1/ingredients", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var got []ingredient
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got, 3)
	})
}

func TestTagEndpoints(t *testing.T) {
	db := SetupTestDB(t)
	router := SetupTestRouter(t, db)

	tag := CreateTestTag(t, db, "Breakfast", "green", "breakfast")

	t.Run("list", func(t *testing.T) {
		w := PerformRequest(router, http.MethodGet, "/api/v1/tags", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var got []struct {
			Slug  string `json:"slug"`
			Color string `json:"color"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "breakfast", got[0].Slug)
		assert.Equal(t, "green", got[0].Color)
	})

	t.Run("get", func(t *testing.T) {
		w := PerformRequest(router, http.MethodGet, "/api/v1/tags/"+tag.ID.String(), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := PerformRequest(router, http.MethodGet, "/api/v1/tags/"+uuid.NewString(), nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealthEndpoint(t *testing.T) {
	db := SetupTestDB(t)
	router := SetupTestRouter(t, db)

	w := PerformRequest(router, http.MethodGet, "/api/v1/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
