/*
Package oidc looks up an OpenID provider's discovery document.

The remote key provider uses it to find the provider's jwks_uri when no
explicit key set URI is configured:

	endpoints, err := oidc.GetWellKnownEndpointsFromIssuerURL(ctx, client, *issuerURL, issuerURL.String())
	if err != nil {
	    return err
	}
	jwksURI := endpoints.JWKSURI

The document must be served with status 200 and must name the expected
issuer. The encryption algorithm lists are informational; the engine's
allow-list is configured separately.
*/
package oidc
