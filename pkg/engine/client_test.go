package engine

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"autoscaler/object"
	"autoscaler/pkg/config"
)

func testConfig(host string) config.EngineConfig {
	return config.EngineConfig{
		Host:            host,
		ScalingEndpoint: "resources",
		NameEndpoint:    "namefromid",
		Secret:          "engine-secret",
		TimeoutSeconds:  5,
	}
}

func TestScale(t *testing.T) {
	var gotPath, gotSecret, gotContentType string
	var gotOrder object.ScalingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSecret = r.Header.Get("secret")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotOrder)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	status, err := client.Scale("resource-1", map[string]string{"platform": "test"}, 4)
	assert.NilError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/resources/resource-1", gotPath)
	assert.Equal(t, "engine-secret", gotSecret)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, 4, gotOrder.NewInstances)
	assert.Equal(t, "test", gotOrder.Context["platform"])
}

func TestScaleDefaultsScheme(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// strip the scheme, the client has to put http:// back
	host := strings.TrimPrefix(server.URL, "http://")
	client := NewClient(testConfig(host))
	status, err := client.Scale("resource-1", nil, 2)
	assert.NilError(t, err)
	assert.Equal(t, http.StatusOK, status)
}

func TestScaleReportsServerStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	status, err := client.Scale("resource-1", nil, 2)
	assert.NilError(t, err)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestScaleTransportError(t *testing.T) {
	client := NewClient(testConfig("localhost:1"))
	_, err := client.Scale("resource-1", nil, 2)
	assert.Assert(t, err != nil)
}

func TestResolveName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		request := object.ApplicationNameRequest{}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &request)
		request.Name = "resolved-name"
		answer, _ := json.Marshal(request)
		_, _ = w.Write(answer)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	name, err := client.ResolveName("resource-1", nil)
	assert.NilError(t, err)
	assert.Equal(t, "resolved-name", name)
}

func TestResolveNameBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.ResolveName("resource-1", nil)
	assert.Assert(t, err != nil)
}
