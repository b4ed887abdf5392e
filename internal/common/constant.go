package common

// AuthorizationHeaderName is the gRPC metadata key carrying the bearer token.
// gRPC lower-cases metadata keys, so this is the canonical form.
const AuthorizationHeaderName = "authorization"

// BearerScheme prefixes the token inside the authorization header.
const BearerScheme = "Bearer "
