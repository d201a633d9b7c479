// Package httputil provides HTTP utilities for registry clients.
//
// # Retry
//
// [Retry] runs an operation up to a fixed number of attempts with
// exponential backoff. Only errors wrapped in [RetryableError] trigger
// another attempt; everything else is returned immediately. Registry
// clients wrap network failures and 5xx responses, and leave 404s and
// other client errors unwrapped:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// [RetryableStatus] classifies a response status code the same way.
package httputil
