package router

import (
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Class is the request category that selects a bucket and a strategy.
type Class string

const (
	ClassImage        Class = "image"
	ClassFont         Class = "font"
	ClassStatic       Class = "static"
	ClassAPI          Class = "api"
	ClassPost         Class = "post"
	ClassModule       Class = "module"
	ClassDefaultSame  Class = "default-same-origin"
	ClassDefaultCross Class = "default-cross-origin"
	ClassPassthrough  Class = "passthrough"
)

// Classes lists every class that owns a bucket.
func Classes() []Class {
	return []Class{ClassImage, ClassFont, ClassStatic, ClassAPI, ClassPost, ClassModule, ClassDefaultSame, ClassDefaultCross}
}

// Strategy is the caching algorithm applied to a class.
type Strategy string

const (
	CacheFirst           Strategy = "cache-first"
	StaleWhileRevalidate Strategy = "stale-while-revalidate"
	NetworkFirst         Strategy = "network-first"
	ReadThrough          Strategy = "read-through"
	NetworkOnly          Strategy = "network-only"
)

var (
	imageExt  = set(".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico", ".avif", ".bmp")
	fontExt   = set(".woff", ".woff2", ".ttf", ".otf", ".eot")
	staticExt = set(".js", ".mjs", ".css", ".html", ".htm", ".webmanifest")

	postMarkers = []string{"post", "event", "note", "relay"}

	moduleHosts = []string{
		"esm.sh",
		"unpkg.com",
		"cdn.jsdelivr.net",
		"cdnjs.cloudflare.com",
		"fonts.googleapis.com",
		"fonts.gstatic.com",
		"cdn.skypack.dev",
	}
)

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

// Classify maps a request to its class. The first matching rule wins.
// Requests that are not http(s) or lack a host are ClassPassthrough. A request
// that matches nothing specific falls back to the default class for its
// origin; that is never an error.
func Classify(req *http.Request, origin *url.URL) Class {
	if req == nil || req.URL == nil {
		return ClassPassthrough
	}
	u := req.URL
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return ClassPassthrough
	}

	same := origin != nil &&
		strings.EqualFold(origin.Scheme, scheme) &&
		strings.EqualFold(origin.Host, u.Host)
	p := strings.ToLower(u.Path)
	ext := path.Ext(p)

	if same {
		if _, ok := imageExt[ext]; ok {
			return ClassImage
		}
		if _, ok := fontExt[ext]; ok {
			return ClassFont
		}
		if _, ok := staticExt[ext]; ok || p == "" || p == "/" || strings.HasSuffix(p, "/manifest.json") {
			return ClassStatic
		}
	}
	if strings.Contains(p, "/api/") || strings.Contains(p, "/rpc") {
		return ClassAPI
	}
	if mentionsPost(p, u.Query()) {
		return ClassPost
	}
	if isModuleHost(u.Hostname()) {
		return ClassModule
	}
	if same {
		return ClassDefaultSame
	}
	return ClassDefaultCross
}

func mentionsPost(p string, q url.Values) bool {
	for _, m := range postMarkers {
		if strings.Contains(p, m) {
			return true
		}
		for k := range q {
			if strings.Contains(strings.ToLower(k), m) {
				return true
			}
		}
	}
	return false
}

func isModuleHost(host string) bool {
	host = strings.ToLower(host)
	for _, h := range moduleHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return strings.Contains(host, "skypack")
}

// StrategyFor returns the strategy for class and method. Only GET and HEAD
// are ever cached; every other method goes straight to the network.
func StrategyFor(class Class, method string) Strategy {
	if !cacheable(method) {
		return NetworkOnly
	}
	switch class {
	case ClassImage, ClassFont, ClassModule:
		return CacheFirst
	case ClassStatic, ClassDefaultCross:
		return StaleWhileRevalidate
	case ClassAPI, ClassDefaultSame:
		return NetworkFirst
	case ClassPost:
		return ReadThrough
	default:
		return NetworkOnly
	}
}

func cacheable(method string) bool {
	return method == "" || method == http.MethodGet || method == http.MethodHead
}
