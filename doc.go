/*
Package envcors decides which [Cross-Origin Resource Sharing (CORS)] response
headers an identity and access management server writes for each exchange,
and lets operators narrow a wildcard origin policy from the environment.

A [Cors] is obtained from a [CorsFactory] for each request/response exchange.
The host then configures it (whether the exchange is a [CORS-preflight]
exchange, whether it is authenticated, which origins and methods are allowed,
which response headers are exposed) before calling [Cors.Add], which writes
the CORS response headers, if any, and reports the [Decision] it made.

Whenever the allowed origins contain [Wildcard] and the environment variable
named by [EnvAllowOrigins] lists at least one origin, the wildcard is replaced
by the listed origins. The variable is read at decision time, so operators
can lock a deployment down to a fixed set of origins without reconfiguring
any client:

	CORS_ALLOW_ORIGINS="https://app.example.com, https://admin.example.com"

The Access-Control-Allow-Origin header, when written, always echoes the
request's origin rather than the wildcard, which keeps responses compatible
with credentialed requests. Note that responses to preflight requests are
granted regardless of the origin policy; the host is expected to only mark
exchanges as preflight on endpoints that are meant to be reachable
cross-origin.

Rejections are not errors: [Cors.Add] then simply writes no CORS headers,
and browsers enforce the consequences.

The default [Factory] is registered under [ProviderID]; see [Lookup].
For [net/http] servers, [NewMiddleware] applies a provider to a handler.

[CORS-preflight]: https://developer.mozilla.org/en-US/docs/Glossary/Preflight_request
[Cross-Origin Resource Sharing (CORS)]: https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS
*/
package envcors
