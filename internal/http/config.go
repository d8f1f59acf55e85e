package httpclient

import (
	"net/http"
	"net/url"
	"time"
)

//grpc design pattern(func opton pattern) for config mgt

type HttpFuncOption func(*HttpClientWrapper)

type HttpClientWrapper struct {
	client            *http.Client
	contextTimeout    time.Duration
	maxRetries        int
	initialRetryDelay time.Duration
	userAgent         string
}

func defaultHttpConfig() HttpClientWrapper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 10
	t.MaxIdleConnsPerHost = 10
	t.IdleConnTimeout = 90 * time.Second
	t.DisableKeepAlives = false

	return HttpClientWrapper{
		client:            &http.Client{Transport: t},
		contextTimeout:    5 * time.Minute,
		maxRetries:        2,
		initialRetryDelay: 2 * time.Second,
		userAgent:         "tripsync",
	}
}

// WithCtxTimeout bounds a single attempt, body download included.
func WithCtxTimeout(ctxTimeout time.Duration) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		httpConfig.contextTimeout = ctxTimeout
	}
}

func WithMaxRetries(maxRetries int) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		httpConfig.maxRetries = maxRetries
	}
}

func WithRetryDelay(delay time.Duration) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		httpConfig.initialRetryDelay = delay
	}
}

func WithUserAgent(agent string) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		httpConfig.userAgent = agent
	}
}

func WithMaxIdleConns(max int) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		if transport, ok := httpConfig.client.Transport.(*http.Transport); ok {
			transport.MaxIdleConns = max
		}
	}
}

func WithIdleConnTimeout(timeout time.Duration) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		if transport, ok := httpConfig.client.Transport.(*http.Transport); ok {
			transport.IdleConnTimeout = timeout
		}
	}
}

func WithProxySetup(proxyAddress *url.URL) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		if transport, ok := httpConfig.client.Transport.(*http.Transport); ok {
			transport.Proxy = http.ProxyURL(proxyAddress)
		}
	}
}

// WithTransport swaps the round tripper, mostly for tests.
func WithTransport(rt http.RoundTripper) HttpFuncOption {
	return func(httpConfig *HttpClientWrapper) {
		httpConfig.client.Transport = rt
	}
}

type HttpClient struct {
	HttpClientWrapper
}

// Constructor to create an instance of the HttpClientWrapper
func CreateHttpClientInstance(httpConfig ...HttpFuncOption) *HttpClient {
	d := defaultHttpConfig()
	for _, fn := range httpConfig {
		fn(&d)
	}
	return &HttpClient{d}
}
