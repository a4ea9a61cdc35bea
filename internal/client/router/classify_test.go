package router

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	origin, _ := url.Parse("https://app.example")

	tests := []struct {
		name   string
		method string
		url    string
		want   Class
	}{
		{"same-origin image", "GET", "https://app.example/logo.png", ClassImage},
		{"image ext is case-insensitive", "GET", "https://app.example/img/Banner.JPEG", ClassImage},
		{"cross-origin image is not image", "GET", "https://other.example/logo.png", ClassDefaultCross},
		{"same-origin font", "GET", "https://app.example/fonts/inter.woff2", ClassFont},
		{"root path", "GET", "https://app.example/", ClassStatic},
		{"empty path", "GET", "https://app.example", ClassStatic},
		{"script", "GET", "https://app.example/assets/index-abc.js", ClassStatic},
		{"manifest", "GET", "https://app.example/manifest.json", ClassStatic},
		{"web manifest", "GET", "https://app.example/site.webmanifest", ClassStatic},
		{"api", "GET", "https://app.example/api/feed", ClassAPI},
		{"cross-origin api", "GET", "https://backend.example/api/feed", ClassAPI},
		{"rpc", "POST", "https://app.example/rpc/call", ClassAPI},
		{"api wins over post marker", "GET", "https://app.example/api/posts", ClassAPI},
		{"post path", "GET", "https://app.example/posts/123", ClassPost},
		{"event in query", "GET", "https://relay.example/q?eventId=1", ClassPost},
		{"note path", "GET", "https://app.example/note/abc", ClassPost},
		{"relay in host only is not post", "GET", "https://relay.example/info", ClassDefaultCross},
		{"cdn module", "GET", "https://esm.sh/preact@10", ClassModule},
		{"google fonts", "GET", "https://fonts.gstatic.com/s/inter.woff2", ClassModule},
		{"skypack", "GET", "https://cdn.skypack.dev/lit", ClassModule},
		{"same-origin default", "GET", "https://app.example/profile/alice", ClassDefaultSame},
		{"cross-origin default", "GET", "https://other.example/anything", ClassDefaultCross},
		{"different port is cross-origin", "GET", "https://app.example:8443/profile", ClassDefaultCross},
		{"non-http scheme", "GET", "file:///etc/hosts", ClassPassthrough},
		{"websocket", "GET", "wss://relay.example/", ClassPassthrough},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, tt.url, nil)
			if err != nil {
				t.Fatalf("new request: %v", err)
			}
			assert.Equal(t, tt.want, Classify(req, origin))
		})
	}
}

func TestClassify_Malformed(t *testing.T) {
	assert.Equal(t, ClassPassthrough, Classify(nil, nil))
	assert.Equal(t, ClassPassthrough, Classify(&http.Request{}, nil))
	assert.Equal(t, ClassPassthrough, Classify(&http.Request{URL: &url.URL{Scheme: "https"}}, nil))
}

func TestClassify_NoOriginMeansEverythingIsCrossOrigin(t *testing.T) {
	req, _ := http.NewRequest("GET", "https://app.example/logo.png", nil)
	assert.Equal(t, ClassDefaultCross, Classify(req, nil))
}

func TestStrategyFor(t *testing.T) {
	assert.Equal(t, CacheFirst, StrategyFor(ClassImage, "GET"))
	assert.Equal(t, CacheFirst, StrategyFor(ClassFont, "GET"))
	assert.Equal(t, CacheFirst, StrategyFor(ClassModule, "HEAD"))
	assert.Equal(t, StaleWhileRevalidate, StrategyFor(ClassStatic, "GET"))
	assert.Equal(t, StaleWhileRevalidate, StrategyFor(ClassDefaultCross, "GET"))
	assert.Equal(t, NetworkFirst, StrategyFor(ClassAPI, "GET"))
	assert.Equal(t, NetworkFirst, StrategyFor(ClassDefaultSame, "GET"))
	assert.Equal(t, ReadThrough, StrategyFor(ClassPost, "GET"))
	assert.Equal(t, NetworkOnly, StrategyFor(ClassPost, "POST"))
	assert.Equal(t, NetworkOnly, StrategyFor(ClassImage, "DELETE"))
	assert.Equal(t, NetworkOnly, StrategyFor(ClassPassthrough, "GET"))
}

func TestBucketName(t *testing.T) {
	assert.Equal(t, "image-v3", BucketName(ClassImage, 3))
	assert.Equal(t, "default-v1", BucketName(ClassDefaultSame, 1))
	assert.Equal(t, "default-v1", BucketName(ClassDefaultCross, 1))
}
