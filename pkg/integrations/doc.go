// Package integrations holds the HTTP plumbing shared by registry clients.
//
// [Client] wraps an http.Client with default headers, status code
// classification ([ErrNotFound] for 404, retryable errors for 5xx and
// 429), and a read-through cache backed by any [cache.Cache]. Concrete
// registry clients such as the npm client embed it.
package integrations
