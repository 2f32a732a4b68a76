// Package jwegrpc provides gRPC server interceptors that decrypt JWE tokens
// from call metadata and make their claims available to handlers.
//
//	d, err := decrypter.New(
//	    decrypter.WithEngine(engine),
//	    decrypter.WithResolver(provider),
//	    decrypter.WithIssuer("https://idp.example.com"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	interceptor, err := jwegrpc.New(
//	    jwegrpc.WithDecrypter(d),
//	    jwegrpc.WithExcludedMethods("/grpc.health.v1.Health/Check"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	server := grpc.NewServer(
//	    grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
//	    grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
//	)
//
// Handlers read the claims with GetClaims:
//
//	decrypted, err := jwegrpc.GetClaims[*decrypter.DecryptedClaims](ctx)
//	if err != nil {
//	    return nil, status.Error(codes.Internal, "failed to get claims")
//	}
//	sub, _ := decrypted.Claims.GetSubject()
//
// DefaultErrorHandler returns Unauthenticated for missing or undecryptable
// tokens, PermissionDenied for issuer and audience mismatches and
// InvalidArgument for malformed metadata or tokens.
package jwegrpc
