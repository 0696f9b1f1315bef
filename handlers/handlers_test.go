package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agriassist/models"
	"agriassist/services/geo"
	"agriassist/services/speech"
	"agriassist/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeGeo struct {
	results  json.RawMessage
	forecast json.RawMessage
	err      error
	queries  []string
}

func (f *fakeGeo) Geocode(_ context.Context, q, lang string) (json.RawMessage, error) {
	f.queries = append(f.queries, q+"|"+lang)
	return f.results, f.err
}

func (f *fakeGeo) Forecast(_ context.Context, lat, lon float64) (json.RawMessage, error) {
	return f.forecast, f.err
}

type fakeAdvice struct {
	result models.AdviceResult
	got    models.AdviceRequest
	panics bool
}

func (f *fakeAdvice) Generate(_ context.Context, req models.AdviceRequest) models.AdviceResult {
	if f.panics {
		panic("provider exploded")
	}
	f.got = req
	return f.result
}

func (f *fakeAdvice) ProviderName() string { return "stub" }

type fakeTranscriber struct {
	text string
	err  error
	lang models.Language
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ io.Reader, lang models.Language) (string, error) {
	f.lang = lang
	return f.text, f.err
}

type HandlersSuite struct {
	suite.Suite
	geo        *fakeGeo
	advice     *fakeAdvice
	transcribe *fakeTranscriber
	router     *gin.Engine
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}

func (s *HandlersSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.geo = &fakeGeo{}
	s.advice = &fakeAdvice{}
	s.transcribe = &fakeTranscriber{}
	s.router = s.newRouter(s.transcribe)
}

func (s *HandlersSuite) newRouter(t speech.Transcriber) *gin.Engine {
	bundle := NewHandlerBundle(s.geo, s.advice, t)
	r := gin.New()
	r.Use(utils.ErrorHandler())
	r.GET("/api/geocode", bundle.GeocodeHandler)
	r.GET("/api/weather", bundle.WeatherHandler)
	r.POST("/api/generate", bundle.GenerateHandler)
	r.POST("/api/transcribe", bundle.TranscribeHandler)
	r.GET("/api/health", bundle.HealthHandler)
	return r
}

func (s *HandlersSuite) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersSuite) TestGeocodeRequiresQuery() {
	w := s.do(httptest.NewRequest(http.MethodGet, "/api/geocode?q=%20%20", nil))
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"error":"q query param required"}`, w.Body.String())
	s.Empty(s.geo.queries)
}

func (s *HandlersSuite) TestGeocodeSuccess() {
	s.geo.results = json.RawMessage(`[{"name":"Sapporo","latitude":43.06,"longitude":141.35}]`)
	w := s.do(httptest.NewRequest(http.MethodGet, "/api/geocode?q=Sapporo&lang=ja", nil))
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"results":[{"name":"Sapporo","latitude":43.06,"longitude":141.35}]}`, w.Body.String())
	s.Equal([]string{"Sapporo|ja"}, s.geo.queries)
}

func (s *HandlersSuite) TestGeocodeFailure() {
	s.geo.err = &geo.UpstreamError{Status: 503, Body: json.RawMessage(`{"reason":"down"}`)}
	w := s.do(httptest.NewRequest(http.MethodGet, "/api/geocode?q=Sapporo", nil))
	s.Equal(http.StatusInternalServerError, w.Code)
	s.JSONEq(`{"error":"geocoding failed","detail":{"reason":"down"}}`, w.Body.String())
}

func (s *HandlersSuite) TestWeatherValidation() {
	w := s.do(httptest.NewRequest(http.MethodGet, "/api/weather?lat=10", nil))
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"error":"lat and lon required"}`, w.Body.String())

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/weather?lat=north&lon=2", nil))
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersSuite) TestWeatherPassthrough() {
	s.geo.forecast = json.RawMessage(`{"latitude":1.5,"current_weather":{"temperature":30.1}}`)
	w := s.do(httptest.NewRequest(http.MethodGet, "/api/weather?lat=1.5&lon=2", nil))
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"latitude":1.5,"current_weather":{"temperature":30.1}}`, w.Body.String())
}

func (s *HandlersSuite) TestWeatherFailureReturnsFallback() {
	s.geo.err = errors.New("dial tcp: i/o timeout")
	w := s.do(httptest.NewRequest(http.MethodGet, "/api/weather?lat=1.5&lon=2", nil))
	s.Equal(http.StatusBadGateway, w.Code)
	s.JSONEq(`{"error":"weather fetch failed","detail":"dial tcp: i/o timeout","fallback":{"latitude":"1.5","longitude":"2","current_weather":null}}`, w.Body.String())
}

func (s *HandlersSuite) TestGenerateReturnsResult() {
	s.advice.result = models.AdviceResult{Text: "• a", Source: models.SourceLocalFallback, Provider: "local", ProviderError: "openrouter status 401"}
	body := `{"text":"when to harvest","lat":12.5,"lon":77.1,"locationName":"","weatherSummary":"Now: 25°C","language":"hi"}`

	w := s.do(httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body)))

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"result":"• a","source":"local","provider":"local","error":"openrouter status 401"}`, w.Body.String())
	s.Equal("when to harvest", s.advice.got.TranscriptText)
	s.True(s.advice.got.Location.HasCoordinates)
	s.Equal(models.LanguageHindi, s.advice.got.Language)
	s.Equal("12.5,77.1", s.advice.got.Location.Label())
}

func (s *HandlersSuite) TestGenerateMalformedBody() {
	w := s.do(httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"text":`)))
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersSuite) TestGeneratePanicIsFatal() {
	s.advice.panics = true
	w := s.do(httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"text":"hi"}`)))
	s.Equal(http.StatusInternalServerError, w.Code)

	var resp utils.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("generation failed", resp.Error)
	s.Equal("provider exploded", resp.Detail)
}

func (s *HandlersSuite) TestHealth() {
	w := s.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"status":"ok"`)
}

func multipartAudio(t *testing.T, filename, language string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", filename)
	require.NoError(t, err)
	_, _ = part.Write([]byte("RIFF...."))
	if language != "" {
		require.NoError(t, mw.WriteField("language", language))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (s *HandlersSuite) TestTranscribe() {
	s.transcribe.text = "मिट्टी सूखी है"
	w := s.do(multipartAudio(s.T(), "clip.WAV", "hi"))
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"transcription":"मिट्टी सूखी है"}`, w.Body.String())
	s.Equal(models.LanguageHindi, s.transcribe.lang)
}

func (s *HandlersSuite) TestTranscribeRejectsExtension() {
	w := s.do(multipartAudio(s.T(), "clip.mp3", ""))
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersSuite) TestTranscribeTooLong() {
	s.transcribe.err = speech.ErrAudioTooLong
	w := s.do(multipartAudio(s.T(), "clip.wav", "en"))
	s.Equal(http.StatusBadRequest, w.Code)
}

func TestTranscribeDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bundle := NewHandlerBundle(&fakeGeo{}, &fakeAdvice{}, nil)
	r := gin.New()
	r.POST("/api/transcribe", bundle.TranscribeHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartAudio(t, "clip.wav", "en"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
