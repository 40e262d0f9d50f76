package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	errUtils "github.com/cloudposse/pomgraph/errors"
)

func response(code int, body string) *http.Response {
	return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(body))}
}

func TestGet(t *testing.T) {
	tests := []struct {
		name     string
		resp     *http.Response
		err      error
		want     string
		wantErr  error
		notFound bool
	}{
		{name: "ok", resp: response(http.StatusOK, "artifactId: core\n"), want: "artifactId: core\n"},
		{name: "not found", resp: response(http.StatusNotFound, ""), wantErr: errUtils.ErrUnexpectedHTTPState, notFound: true},
		{name: "server error", resp: response(http.StatusBadGateway, ""), wantErr: errUtils.ErrUnexpectedHTTPState},
		{name: "transport error", err: errors.New("connection refused"), wantErr: errUtils.ErrHTTPRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := NewMockClient(ctrl)
			client.EXPECT().Do(gomock.Any()).DoAndReturn(func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, userAgent, req.Header.Get("User-Agent"))
				return tt.resp, tt.err
			})

			body, err := Get(context.Background(), "https://repo.example.com/a.pom.yaml", client)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.notFound, IsNotFound(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestGet_NilClient(t *testing.T) {
	_, err := Get(context.Background(), "https://repo.example.com", nil)
	assert.ErrorIs(t, err, errUtils.ErrNilHTTPClient)
}

func TestStatusErrorClassification(t *testing.T) {
	assert.True(t, IsClientError(&StatusError{Code: http.StatusForbidden}))
	assert.False(t, IsClientError(&StatusError{Code: http.StatusServiceUnavailable}))
	assert.False(t, IsNotFound(errors.New("404")))
	assert.Contains(t, (&StatusError{URL: "u", Code: 404}).Error(), "Not Found")
}

func TestTokenTransport(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	host := strings.Split(strings.TrimPrefix(server.URL, "http://"), ":")[0]
	client := NewDefaultClient(WithTimeout(time.Second), WithToken(host, "secret"))

	body, err := Get(context.Background(), server.URL, client)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, "Bearer secret", got)

	got = ""
	other := NewDefaultClient(WithToken("elsewhere.example.com", "secret"))
	_, err = Get(context.Background(), server.URL, other)
	require.NoError(t, err)
	assert.Empty(t, got, "tokens are only sent to their host")
}
