package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"autoscaler/object"
	"autoscaler/pkg/config"
	"autoscaler/pkg/klog"
)

// Client wraps the outgoing HTTP communication with the scaling engine.
type Client struct {
	host            string
	scalingEndpoint string
	nameEndpoint    string
	secret          string
	httpClient      *http.Client
}

func NewClient(cfg config.EngineConfig) *Client {
	return &Client{
		host:            cfg.Host,
		scalingEndpoint: cfg.ScalingEndpoint,
		nameEndpoint:    cfg.NameEndpoint,
		secret:          cfg.Secret,
		httpClient:      &http.Client{Timeout: cfg.Timeout()},
	}
}

// buildUrl joins host, endpoint and resource id, defaulting the scheme
// to http when none is configured.
func (c *Client) buildUrl(endpoint, resourceId string) string {
	url := fmt.Sprintf("%s/%s/%s", c.host, endpoint, resourceId)
	if !(strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")) {
		url = "http://" + url
	}
	return url
}

func (c *Client) post(url string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}
	request, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Add("secret", c.secret)
	request.Header.Add("Content-Type", "application/json")
	return c.httpClient.Do(request)
}

// Scale sends a scaling order for the resource and returns the engine's
// status code. A transport failure returns an error; status codes are
// left to the caller to judge.
func (c *Client) Scale(resourceId string, bindingContext map[string]string, newInstances int) (int, error) {
	url := c.buildUrl(c.scalingEndpoint, resourceId)
	order := &object.ScalingRequest{
		NewInstances: newInstances,
		Context:      bindingContext,
	}
	klog.Debugf("Engine : sending scaling request to %s : %+v\n", url, order)
	response, err := c.post(url, order)
	if err != nil {
		return 0, errors.Wrap(err, "send scaling request")
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)
	return response.StatusCode, nil
}

// ResolveName asks the engine for the name of the resource.
func (c *Client) ResolveName(resourceId string, bindingContext map[string]string) (string, error) {
	url := c.buildUrl(c.nameEndpoint, resourceId)
	nameRequest := &object.ApplicationNameRequest{
		ResourceId: resourceId,
		Name:       "",
		Context:    bindingContext,
	}
	klog.Debugf("Engine : sending name request to %s : %+v\n", url, nameRequest)
	response, err := c.post(url, nameRequest)
	if err != nil {
		return "", errors.Wrap(err, "send name request")
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return "", errors.Errorf("name request answered with status %d", response.StatusCode)
	}
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return "", errors.Wrap(err, "read name response")
	}
	answer := &object.ApplicationNameRequest{}
	if err := json.Unmarshal(data, answer); err != nil {
		return "", errors.Wrap(err, "decode name response")
	}
	return answer.Name, nil
}
