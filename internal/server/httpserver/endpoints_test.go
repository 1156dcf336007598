package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/identinet/did-web-server/internal/server/apiv1"
	"github.com/identinet/did-web-server/pkg/helpers"
	"github.com/identinet/did-web-server/pkg/httphelpers"
	"github.com/identinet/did-web-server/pkg/logger"
	"github.com/identinet/did-web-server/pkg/model"
	"github.com/identinet/did-web-server/pkg/trace"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	getReply    *model.Document
	getErr      error
	paramsReply *model.ProofParameters
	paramsErr   error
	createReply *model.ProofParameters
	createErr   error
	updateReply *model.ProofParameters
	updateErr   error
	deleteReply *model.ProofParameters
	deleteErr   error

	lastPath string
	lastBody []byte
}

func (m *mockAPI) Get(ctx context.Context, req *apiv1.GetRequest) (*model.Document, error) {
	m.lastPath = req.Path
	return m.getReply, m.getErr
}

func (m *mockAPI) ProofParameters(ctx context.Context, req *apiv1.ProofParametersRequest) (*model.ProofParameters, error) {
	m.lastPath = req.Path
	return m.paramsReply, m.paramsErr
}

func (m *mockAPI) Create(ctx context.Context, req *apiv1.CreateRequest) (*model.ProofParameters, error) {
	m.lastPath = req.Path
	m.lastBody = req.Presentation
	return m.createReply, m.createErr
}

func (m *mockAPI) Update(ctx context.Context, req *apiv1.UpdateRequest) (*model.ProofParameters, error) {
	m.lastPath = req.Path
	m.lastBody = req.Presentation
	return m.updateReply, m.updateErr
}

func (m *mockAPI) Delete(ctx context.Context, req *apiv1.DeleteRequest) (*model.ProofParameters, error) {
	m.lastPath = req.Path
	m.lastBody = req.Presentation
	return m.deleteReply, m.deleteErr
}

func newTestService(t *testing.T, api Apiv1) *Service {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	cfg := &model.Cfg{
		ExternalHostname: "localhost",
		ExternalPort:     "8000",
		Owner:            "did:key:z6MksRCeBVzFcsnR4Ao7YurYSJEVxNzUPnBNkXAcQdvwmwLR",
		APIServer:        model.APIServer{Addr: "127.0.0.1:0"},
	}

	log := logger.NewSimple("test")
	tracer, err := trace.New(ctx, cfg, "test", log)
	require.NoError(t, err)

	s := &Service{
		cfg:    cfg,
		log:    log,
		apiv1:  api,
		gin:    gin.New(),
		tracer: tracer,
		server: &http.Server{},
	}

	s.httpHelpers, err = httphelpers.New(ctx, tracer, cfg, log)
	require.NoError(t, err)

	rgRoot, err := s.httpHelpers.Server.Default(ctx, s.server, s.gin, cfg.APIServer.Addr)
	require.NoError(t, err)

	s.httpHelpers.Server.RegEndpoint(ctx, rgRoot, http.MethodGet, "health", http.StatusOK, s.endpointHealth)
	s.gin.NoRoute(s.endpointDID(ctx))

	return s
}

func perform(s *Service, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestEndpointHealth(t *testing.T) {
	s := newTestService(t, &mockAPI{})

	w := perform(s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "STATUS_OK")
}

func TestEndpointGetDocument(t *testing.T) {
	api := &mockAPI{getReply: &model.Document{ID: "did:web:localhost%3A8000:valid-did"}}
	s := newTestService(t, api)

	w := perform(s, http.MethodGet, "/valid-did/did.json", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/valid-did/did.json", api.lastPath)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/did+ld+json")

	doc := &model.Document{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), doc))
	assert.Equal(t, "did:web:localhost%3A8000:valid-did", doc.ID)
}

func TestEndpointGetAbsent(t *testing.T) {
	api := &mockAPI{getErr: helpers.NewErrorDetails(helpers.ErrDIDNotFound.Title, "DID not found")}
	s := newTestService(t, api)

	w := perform(s, http.MethodGet, "/.well-known/did.json", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, w.Body.String(), helpers.ErrDIDNotFound.Title)
}

func TestEndpointProofParametersQuery(t *testing.T) {
	api := &mockAPI{paramsReply: &model.ProofParameters{
		Challenge:    "d992a52400965351e261fdcfa47469cb3e0fa06cc658208c3c95bddf577dc29a",
		Domain:       "localhost",
		ProofPurpose: "authentication",
		DID:          "did:web:localhost%3A8000:valid-did",
	}}
	s := newTestService(t, api)

	w := perform(s, http.MethodGet, "/valid-did/did.json?proofParameters", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	params := &model.ProofParameters{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), params))
	assert.Equal(t, "localhost", params.Domain)
	assert.Equal(t, "authentication", params.ProofPurpose)
}

func TestEndpointCreate(t *testing.T) {
	api := &mockAPI{createReply: &model.ProofParameters{Domain: "localhost", ProofPurpose: "authentication", DID: "did:web:localhost%3A8000:valid-did"}}
	s := newTestService(t, api)

	w := perform(s, http.MethodPost, "/valid-did/did.json", []byte(`{"type":["VerifiablePresentation"]}`))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"type":["VerifiablePresentation"]}`, string(api.lastBody))
}

func TestEndpointStatusMapping(t *testing.T) {
	tts := []struct {
		name   string
		method string
		api    *mockAPI
		want   int
	}{
		{name: "create conflict", method: http.MethodPost, api: &mockAPI{createErr: helpers.ErrDIDExists}, want: http.StatusConflict},
		{name: "create unauthorized", method: http.MethodPost, api: &mockAPI{createErr: helpers.ErrPresentationInvalid}, want: http.StatusUnauthorized},
		{name: "create missing doc credential", method: http.MethodPost, api: &mockAPI{createErr: helpers.ErrDIDDocMissing}, want: http.StatusBadRequest},
		{name: "update absent", method: http.MethodPut, api: &mockAPI{updateErr: helpers.ErrDIDNotFound}, want: http.StatusNotFound},
		{name: "update unauthorized", method: http.MethodPut, api: &mockAPI{updateErr: helpers.ErrPresentationInvalid}, want: http.StatusUnauthorized},
		{name: "delete absent", method: http.MethodDelete, api: &mockAPI{deleteErr: helpers.ErrDIDNotFound}, want: http.StatusNotFound},
		{name: "delete unauthorized", method: http.MethodDelete, api: &mockAPI{deleteErr: helpers.ErrPresentationInvalid}, want: http.StatusUnauthorized},
	}

	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t, tt.api)
			w := perform(s, tt.method, "/valid-did/did.json", []byte(`{}`))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestEndpointUpdateSuccessIsOK(t *testing.T) {
	api := &mockAPI{updateReply: &model.ProofParameters{Domain: "localhost", ProofPurpose: "authentication"}}
	s := newTestService(t, api)

	w := perform(s, http.MethodPut, "/valid-did/did.json", []byte(`{}`))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEndpointMethodNotAllowed(t *testing.T) {
	s := newTestService(t, &mockAPI{})

	w := perform(s, http.MethodPatch, "/valid-did/did.json", []byte(`{}`))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
