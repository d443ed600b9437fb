package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/mehy12/edumate/apps/api/echo"
	"github.com/mehy12/edumate/core"
	"github.com/mehy12/edumate/core/activity"
	"github.com/mehy12/edumate/core/enrollment"
	"github.com/mehy12/edumate/core/quiz"
	metricsvc "github.com/mehy12/edumate/services/metrics"
	"github.com/mehy12/edumate/storage/database/dummy"
	"github.com/mehy12/edumate/testutil"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errInvalidToken = httpErr{Error: "invalid or expired jwt"}
	errNotFound     = httpErr{Error: "not found"}

	learner = core.Identity{ID: "7c1b1e0e-learner", Username: "awe", Email: "awe@test.cd"}
	other   = core.Identity{ID: "0f4e3d2c-other", Username: "lol", Email: "lol@test.cd"}
)

type deps struct {
	conf    *core.Config
	enrRepo enrollment.Repository
	actRepo activity.Repository
	metrics *metricsvc.Metrics
	logger  *testutil.Logger
}

func setup(t *testing.T) (*Server, deps) {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger()
	validate, translator := testutil.NewValidator()

	// set up DB & repos
	db := dummydb.Open()
	d := deps{
		conf:    conf,
		enrRepo: dummydb.NewEnrollmentRepository(db),
		actRepo: dummydb.NewActivityRepository(db),
		metrics: metricsvc.New(),
		logger:  logger,
	}

	// set up services
	actSvc := activity.NewService(d.actRepo, logger)
	enrSvc := enrollment.NewService(d.enrRepo, actSvc, d.metrics)

	// set up server
	return NewServer(
		ServerDeps{
			Conf:          conf,
			Logger:        logger,
			EnrollmentSvc: enrSvc,
			ActivitySvc:   actSvc,
			QuizSvc:       quiz.NewService(actSvc),
			Validate:      validate,
			Translator:    translator,
		},
	), d
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte // nil: only the status code is checked
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, id core.Identity) string {
	token, err := GenerateToken(conf, GetUserClaims(conf, id))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func unmarchall(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if _, ok := j1.([]interface{}); !ok {
		return false, nil
	}
	if _, ok := j2.([]interface{}); !ok {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, server *Server, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
