package designtool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFileDecodesTree(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/files/abc", r.URL.Path)
		fmt.Fprint(w, `{"name":"Brand","version":"7","document":{"id":"0:0","type":"DOCUMENT","children":[
			{"id":"1:1","name":"Primary","type":"RECTANGLE","fills":[{"type":"SOLID","color":{"r":1,"g":0,"b":0,"a":1}}]}
		]}}`)
	}))
	defer server.Close()

	c := NewClient(Config{APIURL: server.URL})
	f, err := c.File(context.Background(), "tok", "abc")
	require.NoError(t, err)
	assert.Equal(t, "Brand", f.Name)
	require.Len(t, f.Document.Children, 1)
	assert.Equal(t, 1.0, f.Document.Children[0].Fills[0].Color.R)
}

func TestClientNodesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1:1,2:2", r.URL.Query().Get("ids"))
		fmt.Fprint(w, `{"name":"Brand","nodes":{"1:1":{"document":{"id":"1:1","name":"Logo","type":"FRAME"}},"2:2":null}}`)
	}))
	defer server.Close()

	c := NewClient(Config{APIURL: server.URL})
	out, err := c.Nodes(context.Background(), "tok", "abc", []string{"1:1", "2:2"})
	require.NoError(t, err)
	assert.Equal(t, "Logo", out.Nodes["1:1"].Document.Name)
	assert.Nil(t, out.Nodes["2:2"])

	raw, err := c.NodesRaw(context.Background(), "tok", "abc", []string{"1:1", "2:2"})
	require.NoError(t, err)
	assert.True(t, json.Valid(raw))
}

func TestClientImagesOptions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "png", r.URL.Query().Get("format"))
		assert.Equal(t, "2", r.URL.Query().Get("scale"))
		fmt.Fprint(w, `{"err":null,"images":{"1:1":"https://img/1.png"}}`)
	}))
	defer server.Close()

	c := NewClient(Config{APIURL: server.URL})
	out, err := c.Images(context.Background(), "tok", "abc", []string{"1:1"}, ImageOptions{Format: "png", Scale: 2})
	require.NoError(t, err)
	assert.Equal(t, "https://img/1.png", *out.Images["1:1"])
}

func TestClientPostComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body CommentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "looks good", body.Message)
		fmt.Fprint(w, `{"id":"c1","message":"looks good"}`)
	}))
	defer server.Close()

	c := NewClient(Config{APIURL: server.URL})
	raw, err := c.PostComment(context.Background(), "tok", "abc", CommentRequest{Message: "looks good"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1","message":"looks good"}`, string(raw))
}

func TestClientAPIError(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   string
	}{
		{http.StatusForbidden, `{"status":403,"err":"Invalid token"}`, "Invalid token"},
		{http.StatusNotFound, `{"status":404,"message":"Not found"}`, "Not found"},
		{http.StatusBadGateway, `upstream down`, "upstream down"},
	}
	for _, tc := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			fmt.Fprint(w, tc.body)
		}))
		c := NewClient(Config{APIURL: server.URL})
		_, err := c.Styles(context.Background(), "tok", "abc")
		server.Close()

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr), "status %d", tc.status)
		assert.Equal(t, tc.status, apiErr.StatusCode)
		assert.Equal(t, tc.want, apiErr.Message)
	}
}

func TestClientMissingToken(t *testing.T) {
	c := NewClient(Config{APIURL: "http://127.0.0.1:0"})
	_, err := c.Versions(context.Background(), "", "abc")
	assert.ErrorIs(t, err, ErrMissingToken)
}
