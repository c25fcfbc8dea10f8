package licenseserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error when base url missing")
	}
	if _, err := NewClient(Config{BaseURL: "localhost:3100"}); err == nil {
		t.Fatal("expected error for non-absolute url")
	}
	if _, err := NewClient(Config{BaseURL: "http://localhost:3100"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequestCodeForwardsPayload(t *testing.T) {
	var gotPath, gotContentType string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := client.RequestCode(context.Background(), "u@x.com")
	require.NoError(t, err)

	assert.Equal(t, "/api/portal/auth/request-code", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]string{"email": "u@x.com"}, gotBody)
	assert.True(t, resp.OK())
	assert.JSONEq(t, `{"success":true}`, string(resp.Body))
}

func TestVerifyCodeRelaysRemoteRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_code"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := client.VerifyCode(context.Background(), "u@x.com", "000000")
	require.NoError(t, err, "remote rejection is data, not a transport error")

	assert.False(t, resp.OK())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"invalid_code"}`, string(resp.Body))
}

func TestAuthenticatedCallsAttachBearer(t *testing.T) {
	var gotAuth []string
	var gotPaths []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		gotPaths = append(gotPaths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = client.Me(ctx, "T1")
	require.NoError(t, err)
	_, err = client.Licenses(ctx, "T1")
	require.NoError(t, err)
	_, err = client.LicenseKey(ctx, "T1", "lic1")
	require.NoError(t, err)
	_, err = client.LicenseDownload(ctx, "T1", "lic1")
	require.NoError(t, err)

	require.Len(t, gotAuth, 4)
	for _, auth := range gotAuth {
		assert.Equal(t, "Bearer T1", auth)
	}
	assert.Equal(t, []string{
		"/api/portal/me",
		"/api/portal/licenses",
		"/api/portal/licenses/lic1/key",
		"/api/portal/licenses/lic1/download",
	}, gotPaths)
}

func TestLicenseIDIsPathEscaped(t *testing.T) {
	var gotRawPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.LicenseKey(context.Background(), "T1", "a/b c")
	require.NoError(t, err)
	assert.Equal(t, "/api/portal/licenses/a%2Fb%20c/key", gotRawPath)
}

func TestTransportFailureReturnsError(t *testing.T) {
	// Port 1 refuses connections.
	client, err := NewClient(Config{
		BaseURL: "http://127.0.0.1:1",
		Timeout: 200 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = client.Me(context.Background(), "T1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "license server request failed")
}

func TestBasePathPreserved(t *testing.T) {
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL + "/backend/"})
	require.NoError(t, err)

	_, err = client.Me(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, "/backend/api/portal/me", gotPath)
}
