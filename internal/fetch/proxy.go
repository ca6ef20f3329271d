package fetch

import (
	"cmp"
	"net/http"
	"net/url"
)

// NewProxyFunc returns the proxy selector for outbound requests.
// httpsProxy falls back to httpProxy. Schemes with no configured proxy use
// HTTP_PROXY/HTTPS_PROXY/NO_PROXY from the environment.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	bySchema := map[string]string{
		"http":  httpProxy,
		"https": cmp.Or(httpsProxy, httpProxy),
	}
	if bySchema["https"] == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if raw := bySchema[req.URL.Scheme]; raw != "" {
			return url.Parse(raw)
		}
		return http.ProxyFromEnvironment(req)
	}
}
