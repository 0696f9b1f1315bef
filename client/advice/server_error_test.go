package advice

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"agriassist/client/api"
	"agriassist/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerErrorSurfacesSpecificDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/weather":
			_, _ = io.WriteString(w, `{"latitude":35.01,"longitude":135.77,"current_weather":{"temperature":12,"windspeed":3}}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":"generation failed","detail":"runtime error: invalid memory address"}`)
		}
	}))
	defer srv.Close()

	client := api.New(srv.URL)
	orch := NewOrchestrator(client, client, nil, nil)
	loc := models.LocationSelection{Lat: 35.01, Lon: 135.77, Name: "Kyoto, Japan", HasCoordinates: true}

	out, err := orch.Generate(context.Background(), "when to transplant rice", loc)

	assert.Nil(t, out)
	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "runtime error: invalid memory address", genErr.Detail)
	assert.Equal(t, "Generation failed: runtime error: invalid memory address", genErr.Message)
	assert.Empty(t, orch.AdviceText())
}
